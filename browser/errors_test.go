package browser

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/Candra0x6/BusinessScap-Maps/scraper"
)

func TestClassifyErr(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want scraper.FailureKind
	}{
		{"deadline", context.DeadlineExceeded, scraper.InteractionTimeout},
		{"wrapped deadline", fmt.Errorf("eval: %w", context.DeadlineExceeded), scraper.InteractionTimeout},
		{"canceled", context.Canceled, scraper.SessionFailure},
		{"detached node", errors.New("Node is detached from document"), scraper.StaleReference},
		{"destroyed context", errors.New("Execution context was destroyed"), scraper.StaleReference},
		{"missing context", errors.New("Cannot find context with specified id"), scraper.StaleReference},
		{"websocket gone", errors.New("websocket: close 1006 (abnormal closure)"), scraper.SessionFailure},
		{"closed connection", errors.New("read tcp: use of closed network connection"), scraper.SessionFailure},
		{"target closed", errors.New("rod: Target closed"), scraper.SessionFailure},
		{"unknown", errors.New("something odd happened"), scraper.InteractionTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifyErr(tt.err, 7)
			if !scraper.IsKind(got, tt.want) {
				t.Errorf("classifyErr(%v) = %v, want kind %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestClassifyErrKeepsExistingFailure(t *testing.T) {
	orig := scraper.NewFailure(scraper.StaleReference, 3, errors.New("gone"))
	if got := classifyErr(orig, 9); got != error(orig) {
		t.Errorf("classifyErr rewrapped an already classified failure: %v", got)
	}
}

func TestClassifyErrNil(t *testing.T) {
	if got := classifyErr(nil, 0); got != nil {
		t.Errorf("classifyErr(nil) = %v, want nil", got)
	}
}
