package ingest

import "time"

// dateLayouts are the report date formats seen in the wild, tried in
// order. ISO first so the common case stays a cheap round trip.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"01-02-2006",
	"Jan 2, 2006",
	"2 Jan 2006",
}

// NormalizeDate converts a date string to ISO "YYYY-MM-DD". Strings in
// no recognized format are returned unchanged; the validator flags
// empties, and unparseable dates are preserved rather than guessed at.
func NormalizeDate(raw string) string {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return raw
}
