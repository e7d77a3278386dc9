package notify

import (
	"strings"
	"testing"
	"time"

	"github.com/Candra0x6/BusinessScap-Maps/models"
	"github.com/Candra0x6/BusinessScap-Maps/scheduler"
)

func TestBatchTextCountsFailures(t *testing.T) {
	summaries := []models.KeywordSummary{
		{Keyword: "coffee shop jakarta", Records: 12, Skipped: 1, Status: scheduler.StatusDone, Duration: 3 * time.Second},
		{Keyword: "barber bandung", Status: scheduler.StatusFailed},
		{Keyword: "laundry surabaya", Records: 4, Skipped: 2, Status: scheduler.StatusDegraded},
	}

	text := batchText("batch-1", summaries)

	for _, want := range []string{
		"Batch batch-1 finished",
		"Keywords: 3 (failed: 1)",
		"Records: 16, skipped listings: 3",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("batchText() missing %q in:\n%s", want, text)
		}
	}
}
