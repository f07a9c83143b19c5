package blogpodcast

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// dateLayouts are tried in order when parsing a publicationDate.
var dateLayouts = []string{
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
	time.RFC1123Z,
	time.RFC1123,
	time.RFC822Z,
	time.RFC822,
	"January 2, 2006",
	"Jan 2, 2006",
}

var errNoTimestamp = errors.New("no publication date or modification time")

// ParseDate parses a publicationDate in any of the accepted layouts.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date format %q", s)
}

// ResolveTimestamp returns the time a document sorts by: its publication
// date when present, otherwise its modification time. A publication date
// that does not parse is an error even when a modification time exists.
func ResolveTimestamp(d Document) (time.Time, error) {
	if d.Metadata.PublicationDate != "" {
		return ParseDate(d.Metadata.PublicationDate)
	}
	if d.ModTime.IsZero() {
		return time.Time{}, errNoTimestamp
	}
	return d.ModTime, nil
}

type stamped struct {
	doc Document
	at  time.Time
}

// Assemble orders docs newest first, skips startAt entries and keeps at
// most maxEntries (zero or negative keeps everything). Every document is
// resolved before failing, so a DateResolutionError names all offenders.
// The input slice is left untouched. Documents with equal timestamps keep
// their input order, which makes Assemble idempotent.
func Assemble(docs []Document, startAt, maxEntries int) ([]Document, error) {
	items := make([]stamped, 0, len(docs))
	var problems []DateProblem
	for _, d := range docs {
		at, err := ResolveTimestamp(d)
		if err != nil {
			problems = append(problems, DateProblem{
				VPath: d.VPath,
				Value: d.Metadata.PublicationDate,
				Err:   err,
			})
			continue
		}
		items = append(items, stamped{doc: d, at: at})
	}
	if len(problems) > 0 {
		return nil, &DateResolutionError{Problems: problems}
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].at.After(items[j].at)
	})

	if startAt > 0 {
		if startAt >= len(items) {
			items = nil
		} else {
			items = items[startAt:]
		}
	}
	if maxEntries > 0 && len(items) > maxEntries {
		items = items[:maxEntries]
	}

	out := make([]Document, len(items))
	for i, it := range items {
		out[i] = it.doc
	}
	return out, nil
}
