package enrich

import (
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"

	"github.com/Candra0x6/BusinessScap-Maps/config"
)

// ErrNoEmail means the crawl finished without finding a usable address.
var ErrNoEmail = errors.New("no email found")

// Enricher crawls a business website looking for a contact email.
// Contact-ish pages are visited first; the crawl is bounded by
// max_pages_per_site.
type Enricher struct {
	cfg *config.EnrichConfig

	// checkMX validates the email's domain; swapped out in tests.
	checkMX func(email string) bool
}

// New creates an Enricher.
func New(cfg *config.EnrichConfig) *Enricher {
	e := &Enricher{cfg: cfg, checkMX: hasMXRecords}
	if !cfg.CheckMX {
		e.checkMX = func(string) bool { return true }
	}
	return e
}

// FindEmail crawls website and returns the first valid email it finds,
// preferring mailto links over addresses scraped from page text.
// ErrNoEmail is returned when the page budget runs out empty-handed.
func (e *Enricher) FindEmail(website string) (string, error) {
	root, err := url.Parse(ensureScheme(website))
	if err != nil || root.Host == "" {
		return "", fmt.Errorf("invalid website %q", website)
	}

	host := root.Hostname()
	c := colly.NewCollector(
		colly.UserAgent("Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
		colly.AllowedDomains(host, strings.TrimPrefix(host, "www."), "www."+strings.TrimPrefix(host, "www.")),
		colly.MaxBodySize(2<<20),
	)
	c.SetRequestTimeout(e.cfg.RequestTimeout())
	c.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: 1,
		Delay:       e.cfg.Delay(),
	})

	var (
		found string
		pages int
	)

	c.OnRequest(func(r *colly.Request) {
		if found != "" || pages >= e.cfg.MaxPagesPerSite {
			r.Abort()
			return
		}
		pages++
	})

	c.OnError(func(r *colly.Response, err error) {
		log.Printf("Warning: Fetching %s failed: %v\n", r.Request.URL, err)
	})

	c.OnResponse(func(r *colly.Response) {
		if found != "" {
			return
		}

		doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(r.Body)))
		if err != nil {
			return
		}

		if email := emailFromMailtos(doc, e.checkMX); email != "" {
			found = email
			return
		}
		if email := emailFromText(string(r.Body), e.checkMX); email != "" {
			found = email
			return
		}

		// Nothing on this page; queue the contact-ish links.
		for _, link := range candidateLinks(doc, r.Request.URL, root) {
			r.Request.Visit(link)
		}
	})

	if err := c.Visit(root.String()); err != nil {
		return "", fmt.Errorf("failed to visit %s: %w", root, err)
	}
	c.Wait()

	if found == "" {
		return "", ErrNoEmail
	}
	return found, nil
}

func ensureScheme(raw string) string {
	if strings.HasPrefix(strings.ToLower(raw), "http://") || strings.HasPrefix(strings.ToLower(raw), "https://") {
		return raw
	}
	return "https://" + strings.TrimLeft(raw, "/")
}
