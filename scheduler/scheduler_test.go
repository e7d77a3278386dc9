package scheduler

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Candra0x6/BusinessScap-Maps/config"
	"github.com/Candra0x6/BusinessScap-Maps/models"
	"github.com/Candra0x6/BusinessScap-Maps/scraper"
)

func testConfig() *config.Config {
	cfg := config.GetDefaultConfig()
	cfg.Scraper.KeywordDelayMs = 0
	return cfg
}

type fakeSink struct {
	mu        sync.Mutex
	started   []string
	keywords  []string
	records   map[string]int
	batches   int
	summaries []models.KeywordSummary
	fail      bool
}

func newFakeSink() *fakeSink {
	return &fakeSink{records: map[string]int{}}
}

func (s *fakeSink) Name() string { return "fake" }

func (s *fakeSink) KeywordStarted(keyword string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errors.New("sink down")
	}
	s.started = append(s.started, keyword)
	return nil
}

func (s *fakeSink) WriteKeyword(summary models.KeywordSummary, records []models.BusinessRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errors.New("sink down")
	}
	s.keywords = append(s.keywords, summary.Keyword)
	s.records[summary.Keyword] = len(records)
	return nil
}

func (s *fakeSink) WriteBatch(summaries []models.KeywordSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errors.New("sink down")
	}
	s.batches++
	s.summaries = summaries
	return nil
}

func recordsFor(n int) []models.BusinessRecord {
	records := make([]models.BusinessRecord, n)
	for i := range records {
		records[i] = models.BusinessRecord{Name: fmt.Sprintf("Business %03d", i)}
	}
	return records
}

func TestRunStatusesPerKeyword(t *testing.T) {
	run := func(keyword string) ([]models.BusinessRecord, scraper.Stats, error) {
		switch keyword {
		case "good":
			return recordsFor(4), scraper.Stats{Attempted: 4, Succeeded: 4}, nil
		case "thin":
			return recordsFor(2), scraper.Stats{Attempted: 7, Succeeded: 2, Skipped: 5, Degraded: true}, nil
		case "empty":
			return nil, scraper.Stats{}, nil
		default:
			return recordsFor(1), scraper.Stats{Attempted: 2, Succeeded: 1, Skipped: 1}, errors.New("browser crashed")
		}
	}

	sink := newFakeSink()
	summaries := NewScheduler(testConfig(), run, sink).Run(
		[]string{"good", "thin", "empty", "broken"}, 1)

	require.Len(t, summaries, 4)
	assert.Equal(t, StatusDone, summaries[0].Status)
	assert.Equal(t, StatusDegraded, summaries[1].Status)
	assert.Equal(t, StatusNoResults, summaries[2].Status)
	assert.Equal(t, StatusFailed, summaries[3].Status)

	assert.Equal(t, "good", summaries[0].Keyword)
	assert.Equal(t, 4, summaries[0].Records)
	assert.Equal(t, 2, summaries[1].Records)
	assert.Equal(t, 5, summaries[1].Skipped)

	// Sinks see every keyword, in input order, including partial and
	// empty outcomes.
	assert.Equal(t, []string{"good", "thin", "empty", "broken"}, sink.started)
	assert.Equal(t, []string{"good", "thin", "empty", "broken"}, sink.keywords)
	assert.Equal(t, 4, sink.records["good"])
	assert.Equal(t, 0, sink.records["empty"])
	assert.Equal(t, 1, sink.records["broken"])
	assert.Equal(t, 1, sink.batches)
	assert.Len(t, sink.summaries, 4)
}

func TestRunTruncatesOversizedBatch(t *testing.T) {
	keywords := make([]string, MaxKeywordsPerBatch+25)
	for i := range keywords {
		keywords[i] = fmt.Sprintf("keyword %d", i)
	}

	var mu sync.Mutex
	ran := 0
	run := func(string) ([]models.BusinessRecord, scraper.Stats, error) {
		mu.Lock()
		ran++
		mu.Unlock()
		return recordsFor(1), scraper.Stats{Attempted: 1, Succeeded: 1}, nil
	}

	summaries := NewScheduler(testConfig(), run).Run(keywords, 1)

	assert.Len(t, summaries, MaxKeywordsPerBatch)
	assert.Equal(t, MaxKeywordsPerBatch, ran)
}

func TestRunParallelWorkers(t *testing.T) {
	// Every runner invocation blocks until all three are in flight, so
	// the test completes only when three workers run concurrently.
	var barrier sync.WaitGroup
	barrier.Add(3)

	run := func(keyword string) ([]models.BusinessRecord, scraper.Stats, error) {
		barrier.Done()
		barrier.Wait()
		return recordsFor(1), scraper.Stats{Attempted: 1, Succeeded: 1}, nil
	}

	summaries := NewScheduler(testConfig(), run).Run([]string{"a", "b", "c"}, 3)

	require.Len(t, summaries, 3)
	for i, keyword := range []string{"a", "b", "c"} {
		assert.Equal(t, keyword, summaries[i].Keyword)
		assert.Equal(t, StatusDone, summaries[i].Status)
	}
}

type eventSink struct {
	mu     sync.Mutex
	events []string
}

func (s *eventSink) Name() string { return "events" }

func (s *eventSink) KeywordStarted(keyword string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, "start:"+keyword)
	return nil
}

func (s *eventSink) WriteKeyword(summary models.KeywordSummary, records []models.BusinessRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, "write:"+summary.Keyword)
	return nil
}

func (s *eventSink) WriteBatch(summaries []models.KeywordSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, "batch")
	return nil
}

func TestRunSignalsStartBeforeResults(t *testing.T) {
	run := func(string) ([]models.BusinessRecord, scraper.Stats, error) {
		return recordsFor(1), scraper.Stats{Attempted: 1, Succeeded: 1}, nil
	}

	sink := &eventSink{}
	NewScheduler(testConfig(), run, sink).Run([]string{"a", "b"}, 1)

	assert.Equal(t, []string{"start:a", "write:a", "start:b", "write:b", "batch"}, sink.events)
}

func TestRunSinkFailureDoesNotAbortBatch(t *testing.T) {
	run := func(string) ([]models.BusinessRecord, scraper.Stats, error) {
		return recordsFor(1), scraper.Stats{Attempted: 1, Succeeded: 1}, nil
	}

	sink := newFakeSink()
	sink.fail = true

	summaries := NewScheduler(testConfig(), run, sink).Run([]string{"a", "b"}, 1)

	require.Len(t, summaries, 2)
	assert.Equal(t, StatusDone, summaries[0].Status)
	assert.Equal(t, StatusDone, summaries[1].Status)
}
