package scraper

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrchestratorCapsResults(t *testing.T) {
	sess := newFakeSession(makeItems(10))
	cfg := testScraperConfig()
	cfg.MaxResultsPerKeyword = 5

	records, stats, err := NewOrchestrator(sess, cfg).Run("coffee jakarta")
	require.NoError(t, err)

	assert.Equal(t, []string{"coffee jakarta"}, sess.searched)
	require.Len(t, records, 5)
	for i, rec := range records {
		assert.Equal(t, fmt.Sprintf("Business %03d", i), rec.Name)
	}
	assert.Equal(t, Stats{Attempted: 5, Succeeded: 5}, stats)
}

func TestOrchestratorStaleAtPositionDoesNotTruncate(t *testing.T) {
	// The historical defect: a stale handle partway through the walk
	// silently dropped every later position. With re-resolution the run
	// must still deliver the full cap.
	sess := newFakeSession(makeItems(60))
	sess.staleRemaining[38] = 1
	cfg := testScraperConfig()

	records, stats, err := NewOrchestrator(sess, cfg).Run("coffee")
	require.NoError(t, err)

	require.Len(t, records, 50)
	assert.Equal(t, "Business 038", records[38].Name)
	assert.Equal(t, 0, stats.Skipped)
	assert.Equal(t, 50, stats.Succeeded)
	assert.Equal(t, 1, stats.Retried)
	assert.Equal(t, 1, sess.openCount[38], "position 38 opens once the view settles")
}

func TestOrchestratorSkipsBadListingAndMovesOn(t *testing.T) {
	sess := newFakeSession(makeItems(5))
	sess.timeoutAlways[2] = true

	records, stats, err := NewOrchestrator(sess, testScraperConfig()).Run("coffee")
	require.NoError(t, err)

	require.Len(t, records, 4)
	assert.Equal(t, "Business 003", records[2].Name, "walk continues past the skip")
	assert.Equal(t, Stats{Attempted: 5, Succeeded: 4, Skipped: 1}, stats)
}

func TestOrchestratorSkipsListingWithoutName(t *testing.T) {
	items := makeItems(4)
	items[1].name = ""
	sess := newFakeSession(items)

	records, stats, err := NewOrchestrator(sess, testScraperConfig()).Run("coffee")
	require.NoError(t, err)

	assert.Len(t, records, 3)
	assert.Equal(t, 1, stats.Skipped)
}

func TestOrchestratorSessionDeathReturnsPartialResults(t *testing.T) {
	sess := newFakeSession(makeItems(10))
	sess.killAt = 3

	records, stats, err := NewOrchestrator(sess, testScraperConfig()).Run("coffee")

	assert.True(t, IsKind(err, SessionFailure))
	assert.Len(t, records, 3)
	assert.Equal(t, 3, stats.Succeeded)
}

func TestOrchestratorZeroResults(t *testing.T) {
	sess := newFakeSession(nil)

	records, stats, err := NewOrchestrator(sess, testScraperConfig()).Run("asdfghjkl")
	require.NoError(t, err)

	assert.Empty(t, records)
	assert.Equal(t, Stats{}, stats)
}

func TestOrchestratorDegradedRunKeepsPartialResults(t *testing.T) {
	sess := newFakeSession(makeItems(30))
	cfg := testScraperConfig()
	// Positions 2..6 stay stale through every retry.
	for i := 2; i <= 6; i++ {
		sess.staleRemaining[i] = 100
	}

	records, stats, err := NewOrchestrator(sess, cfg).Run("coffee")
	require.NoError(t, err)

	assert.True(t, stats.Degraded)
	assert.Len(t, records, 2)
	assert.Equal(t, 5, stats.Skipped)
	assert.Equal(t, stats.Succeeded+stats.Skipped, stats.Attempted)
}

func TestOrchestratorSearchFailurePropagates(t *testing.T) {
	sess := newFakeSession(makeItems(5))
	sess.searchErr = assert.AnError

	_, _, err := NewOrchestrator(sess, testScraperConfig()).Run("coffee")
	assert.ErrorIs(t, err, assert.AnError)
}

func TestOrchestratorIdempotentOnStaticListing(t *testing.T) {
	cfg := testScraperConfig()
	cfg.MaxResultsPerKeyword = 8

	first, _, err := NewOrchestrator(newFakeSession(makeItems(8)), cfg).Run("coffee")
	require.NoError(t, err)
	second, _, err := NewOrchestrator(newFakeSession(makeItems(8)), cfg).Run("coffee")
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
