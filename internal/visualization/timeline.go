package visualization

import (
	"strings"
	"time"
)

const (
	colorOutside = "#cccccc"
	colorTerm    = "#ff9800"
	colorRenewal = "#4caf50"

	labelLayout = "2006-01-02"
)

// dateLayouts are the date spellings accepted for contract dates.
var dateLayouts = []string{
	"2006-01-02",
	"01/02/2006",
	"1/2/2006",
	time.RFC3339,
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
	"2006/01/02",
}

// Segment is one colored span of the contract timeline.
type Segment struct {
	Name  string    `json:"name"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Label string    `json:"label"`
	Color string    `json:"color"`
}

// Timeline spans one year before the contract start to one year after its end.
type Timeline struct {
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	Segments []Segment `json:"segments"`
}

// ParseDate parses a contract date in any accepted layout, in UTC.
func ParseDate(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// BuildTimeline derives the timeline from effective dates and optional
// renewal dates. It reports false when the effective dates are unusable.
func BuildTimeline(effective, renewal []string) (Timeline, bool) {
	if len(effective) < 2 {
		return Timeline{}, false
	}
	start, ok := ParseDate(effective[0])
	if !ok {
		return Timeline{}, false
	}
	end, ok := ParseDate(effective[1])
	if !ok {
		return Timeline{}, false
	}

	before := start.AddDate(-1, 0, 0)
	after := end.AddDate(1, 0, 0)
	segments := []Segment{
		newSegment("Pre-contract", before, start, colorOutside),
		newSegment("Contract Term", start, end, colorTerm),
	}
	if len(renewal) >= 2 {
		rs, okStart := ParseDate(renewal[0])
		re, okEnd := ParseDate(renewal[1])
		if okStart && okEnd {
			segments = append(segments, newSegment("Renewal Period", rs, re, colorRenewal))
		}
	}
	segments = append(segments, newSegment("Post-contract", end, after, colorOutside))

	return Timeline{Start: before, End: after, Segments: segments}, true
}

func newSegment(name string, start, end time.Time, color string) Segment {
	return Segment{
		Name:  name,
		Start: start,
		End:   end,
		Label: start.Format(labelLayout) + " - " + end.Format(labelLayout),
		Color: color,
	}
}
