package browser

import (
	"context"
	"errors"
	"strings"

	"github.com/Candra0x6/BusinessScap-Maps/scraper"
)

var errListingVanished = errors.New("listing index past the freshly resolved collection")

// Substrings CDP puts in errors when a node died under us.
var staleMarkers = []string{
	"detached",
	"cannot find context",
	"node with given id does not belong",
	"object couldn't be returned",
	"execution context was destroyed",
}

// Substrings that mean the browser connection itself is gone.
var sessionMarkers = []string{
	"websocket",
	"use of closed network connection",
	"target closed",
	"session closed",
	"browser has disconnected",
	"connection refused",
}

// classifyErr maps a raw rod/CDP error onto the engine's failure
// taxonomy. Deadline expiry is a timeout, a dead node is stale, a dead
// connection is fatal; anything unrecognized is treated as a timeout so
// the extractor's bounded retry gets a chance before the listing is
// skipped.
func classifyErr(err error, position int) error {
	if err == nil {
		return nil
	}

	var f *scraper.Failure
	if errors.As(err, &f) {
		return err
	}

	if errors.Is(err, context.Canceled) {
		return scraper.NewFailure(scraper.SessionFailure, position, err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return scraper.NewFailure(scraper.InteractionTimeout, position, err)
	}

	msg := strings.ToLower(err.Error())
	for _, marker := range staleMarkers {
		if strings.Contains(msg, marker) {
			return scraper.NewFailure(scraper.StaleReference, position, err)
		}
	}
	for _, marker := range sessionMarkers {
		if strings.Contains(msg, marker) {
			return scraper.NewFailure(scraper.SessionFailure, position, err)
		}
	}

	return scraper.NewFailure(scraper.InteractionTimeout, position, err)
}
