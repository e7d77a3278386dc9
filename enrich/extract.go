package enrich

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/miekg/dns"
)

var emailPattern = regexp.MustCompile(`(?i)[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}`)

// Anchor texts and path fragments that usually lead to a page with
// contact details.
var contactKeywords = []string{
	"contact", "kontakt", "impressum", "about", "team", "support", "imprint",
}

// Filename suffixes that the email regexp tends to false-match inside
// asset URLs.
var assetSuffixes = []string{".png", ".jpg", ".jpeg", ".gif", ".svg", ".webp", ".css", ".js"}

// sanitizeEmail normalizes a raw candidate (mailto prefix, query
// suffix) and rejects obvious non-addresses. Returns "" when unusable.
func sanitizeEmail(raw string) string {
	email := strings.TrimSpace(raw)
	email = strings.TrimPrefix(strings.ToLower(email), "mailto:")
	if idx := strings.Index(email, "?"); idx != -1 {
		email = email[:idx]
	}

	match := emailPattern.FindString(email)
	if match == "" {
		return ""
	}
	for _, suffix := range assetSuffixes {
		if strings.HasSuffix(match, suffix) {
			return ""
		}
	}
	return match
}

// emailFromMailtos returns the first valid mailto: address in the
// document.
func emailFromMailtos(doc *goquery.Document, valid func(string) bool) string {
	email := ""
	doc.Find("a[href]").EachWithBreak(func(i int, sel *goquery.Selection) bool {
		href, _ := sel.Attr("href")
		if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(href)), "mailto:") {
			return true
		}
		if e := sanitizeEmail(href); e != "" && valid(e) {
			email = e
			return false
		}
		return true
	})
	return email
}

// emailFromText scans raw page text for the first valid address.
func emailFromText(text string, valid func(string) bool) string {
	for _, match := range emailPattern.FindAllString(text, -1) {
		if e := sanitizeEmail(match); e != "" && valid(e) {
			return e
		}
	}
	return ""
}

// candidateLinks returns same-host links worth visiting next,
// contact-ish ones first. When no link looks contact-ish the first
// couple of same-host links serve as a fallback.
func candidateLinks(doc *goquery.Document, pageURL *url.URL, root *url.URL) []string {
	var prioritized, fallback []string
	seen := map[string]bool{}

	doc.Find("a[href]").Each(func(i int, sel *goquery.Selection) {
		href := strings.TrimSpace(sel.AttrOr("href", ""))
		if href == "" || strings.HasPrefix(strings.ToLower(href), "mailto:") ||
			strings.HasPrefix(strings.ToLower(href), "tel:") ||
			strings.HasPrefix(href, "#") {
			return
		}

		resolved, err := pageURL.Parse(href)
		if err != nil {
			return
		}
		resolved.Fragment = ""
		if !sameHost(root, resolved) {
			return
		}

		abs := resolved.String()
		if seen[abs] {
			return
		}
		seen[abs] = true

		text := strings.ToLower(strings.TrimSpace(sel.Text()))
		if isContactish(text, strings.ToLower(abs)) {
			prioritized = append(prioritized, abs)
		} else if len(fallback) < 2 {
			fallback = append(fallback, abs)
		}
	})

	if len(prioritized) > 0 {
		return prioritized
	}
	return fallback
}

func isContactish(text, href string) bool {
	combined := text + " " + href
	for _, kw := range contactKeywords {
		if strings.Contains(combined, kw) {
			return true
		}
	}
	return false
}

func sameHost(root, candidate *url.URL) bool {
	a := strings.TrimPrefix(strings.ToLower(root.Hostname()), "www.")
	b := strings.TrimPrefix(strings.ToLower(candidate.Hostname()), "www.")
	return a == b
}

// hasMXRecords checks that the email's domain publishes MX records,
// filtering out scraped garbage before it reaches the store.
func hasMXRecords(email string) bool {
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return false
	}
	domain := strings.TrimSpace(parts[1])
	if domain == "" {
		return false
	}

	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(domain), dns.TypeMX)
	msg.RecursionDesired = true

	client := new(dns.Client)
	for _, server := range []string{"8.8.8.8:53", "1.1.1.1:53"} {
		if resp, _, err := client.Exchange(msg, server); err == nil {
			if resp != nil && resp.Rcode == dns.RcodeSuccess && len(resp.Answer) > 0 {
				return true
			}
		}
	}
	return false
}
