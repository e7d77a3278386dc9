package scraper

// Session is the capability set the engine needs from a live map view.
// The browser package provides the production implementation; tests use
// scripted fakes. Element access is index-addressed: handles are never
// retained across steps, the provider re-resolves the collection fresh
// on every call.
type Session interface {
	// Search navigates to the map view, submits the keyword into the
	// search control and waits for the results panel to render.
	Search(keyword string) error

	// ScrollExtent measures the current scroll extent of the results
	// panel. Growth between measurements means more items loaded.
	ScrollExtent() (int, error)

	// ScrollToBottom commands the results panel to scroll to its end,
	// prompting the view to load more items.
	ScrollToBottom() error

	// ListingCount freshly counts the listing elements present now.
	ListingCount() (int, error)

	// EndOfResults reports whether the view shows its terminal
	// "end of the list" marker.
	EndOfResults() (bool, error)

	// OpenListing re-resolves the listing collection, scrolls the
	// element at index into view and opens its detail panel. A listing
	// that vanished between resolution and interaction is reported as a
	// StaleReference failure.
	OpenListing(index int) error

	// ReadText returns the trimmed text of the first node matching the
	// selector in the detail panel, or "" without error when absent.
	ReadText(selector string) (string, error)

	// ReadAttr returns an attribute of the first node matching the
	// selector, or "" without error when the node or attribute is absent.
	ReadAttr(selector, attr string) (string, error)

	// Location returns the current navigation URL.
	Location() (string, error)
}

// Handle identifies one listing by its position in the live results
// collection. It deliberately carries no element reference: the position
// is re-resolved against the live view at every use.
type Handle struct {
	Position int
}
