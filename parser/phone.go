package parser

import (
	"regexp"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// Label prefixes the maps UI puts in front of phone numbers, by locale.
var phoneLabelPrefixes = []string{"phone:", "telepon:", "tel:", "call:"}

// phonePattern matches the phone-like run inside a labeled string:
// an optional plus or opening parenthesis, then digits with common
// separators, ending in a digit.
var phonePattern = regexp.MustCompile(`[+(]?\d[\d\s\-().\/]*\d`)

// NormalizePhone turns a raw phone string from the detail panel into a
// stable form. Label prefixes are stripped and the phone-like substring
// extracted; numbers that parse for the given region are formatted as
// E.164, everything else is returned cleaned but unformatted.
// region is an ISO 3166-1 alpha-2 code such as "ID" or "US".
func NormalizePhone(raw, region string) string {
	phone := strings.TrimSpace(raw)
	if phone == "" {
		return ""
	}

	for _, prefix := range phoneLabelPrefixes {
		if len(phone) > len(prefix) && strings.EqualFold(phone[:len(prefix)], prefix) {
			phone = strings.TrimSpace(phone[len(prefix):])
			break
		}
	}

	if m := phonePattern.FindString(phone); m != "" {
		phone = strings.TrimSpace(m)
	}

	if parsed, err := phonenumbers.Parse(phone, region); err == nil {
		if phonenumbers.IsValidNumber(parsed) {
			return phonenumbers.Format(parsed, phonenumbers.E164)
		}
	}

	return phone
}
