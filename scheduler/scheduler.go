package scheduler

import (
	"log"
	"sync"
	"time"

	"github.com/Candra0x6/BusinessScap-Maps/config"
	"github.com/Candra0x6/BusinessScap-Maps/models"
	"github.com/Candra0x6/BusinessScap-Maps/scraper"
)

// MaxKeywordsPerBatch caps one batch; longer keyword lists are
// truncated with a warning.
const MaxKeywordsPerBatch = 100

// Keyword run outcomes as recorded in summaries and the store.
const (
	StatusDone      = "done"
	StatusDegraded  = "degraded"
	StatusNoResults = "no_results"
	StatusFailed    = "failed"
)

// RunFunc scrapes one keyword end to end. Implementations own the
// whole browser lifecycle for the keyword, so parallel workers never
// share a session.
type RunFunc func(keyword string) ([]models.BusinessRecord, scraper.Stats, error)

// Sink persists keyword results. Sink errors are logged, never fatal:
// one broken exporter must not lose a batch.
type Sink interface {
	// Name identifies the sink in log output.
	Name() string

	// KeywordStarted marks the start of one keyword's run, before the
	// browser goes up. Stateful sinks open their run record here so an
	// interrupted batch leaves an in-progress trace.
	KeywordStarted(keyword string) error

	// WriteKeyword persists one keyword's outcome.
	WriteKeyword(summary models.KeywordSummary, records []models.BusinessRecord) error

	// WriteBatch persists the batch-level summary.
	WriteBatch(summaries []models.KeywordSummary) error
}

// Scheduler runs a keyword batch through RunFunc and fans results out
// to the configured sinks.
type Scheduler struct {
	cfg   *config.Config
	run   RunFunc
	sinks []Sink
}

// NewScheduler creates a Scheduler.
func NewScheduler(cfg *config.Config, run RunFunc, sinks ...Sink) *Scheduler {
	return &Scheduler{cfg: cfg, run: run, sinks: sinks}
}

// Run processes keywords with the given number of workers (minimum 1)
// and returns one summary per keyword, in input order. Each worker
// paces itself between keywords; per-keyword failures are recorded in
// the summary and the batch continues.
func (s *Scheduler) Run(keywords []string, parallel int) []models.KeywordSummary {
	if len(keywords) > MaxKeywordsPerBatch {
		log.Printf("Warning: %d keywords given, truncating batch to %d\n", len(keywords), MaxKeywordsPerBatch)
		keywords = keywords[:MaxKeywordsPerBatch]
	}
	if parallel < 1 {
		parallel = 1
	}
	if parallel > len(keywords) {
		parallel = len(keywords)
	}

	log.Printf("Starting batch: %d keywords, %d worker(s)\n", len(keywords), parallel)

	summaries := make([]models.KeywordSummary, len(keywords))
	jobs := make(chan int)
	var wg sync.WaitGroup

	for w := 0; w < parallel; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			first := true
			for idx := range jobs {
				if !first {
					time.Sleep(s.cfg.Scraper.KeywordDelay())
				}
				first = false
				summaries[idx] = s.processKeyword(keywords[idx])
			}
		}()
	}

	for i := range keywords {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	for _, sink := range s.sinks {
		if err := sink.WriteBatch(summaries); err != nil {
			log.Printf("Warning: %s batch summary failed: %v\n", sink.Name(), err)
		}
	}

	return summaries
}

func (s *Scheduler) processKeyword(keyword string) models.KeywordSummary {
	log.Printf("Processing keyword %q\n", keyword)
	for _, sink := range s.sinks {
		if err := sink.KeywordStarted(keyword); err != nil {
			log.Printf("Warning: %s sink failed to start %q: %v\n", sink.Name(), keyword, err)
		}
	}
	start := time.Now()

	records, stats, err := s.run(keyword)

	summary := models.KeywordSummary{
		Keyword:   keyword,
		Records:   len(records),
		Attempted: stats.Attempted,
		Skipped:   stats.Skipped,
		Duration:  time.Since(start),
	}

	switch {
	case err != nil:
		// Partial records from a dead session still get persisted below.
		summary.Status = StatusFailed
		log.Printf("Keyword %q failed: %v\n", keyword, err)
	case stats.Degraded:
		summary.Status = StatusDegraded
	case len(records) == 0:
		summary.Status = StatusNoResults
	default:
		summary.Status = StatusDone
	}

	for _, sink := range s.sinks {
		if err := sink.WriteKeyword(summary, records); err != nil {
			log.Printf("Warning: %s sink failed for %q: %v\n", sink.Name(), keyword, err)
		}
	}

	log.Printf("Keyword %q: %s, %d records, %d skipped in %s\n",
		keyword, summary.Status, summary.Records, summary.Skipped,
		summary.Duration.Round(time.Second))

	return summary
}
