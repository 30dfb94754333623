package search

// Segment is one run of text, either matched or plain. Consumers render
// matched runs with emphasis.
type Segment struct {
	Text    string `json:"text"`
	Matched bool   `json:"matched"`
}

// Highlight splits text into alternating plain/matched segments.
// Out-of-range or overlapping ranges are clamped or skipped: stale
// ranges against changed text must degrade gracefully, not panic.
func Highlight(text string, ranges []MatchRange) []Segment {
	if text == "" {
		return nil
	}
	if len(ranges) == 0 {
		return []Segment{{Text: text}}
	}

	segments := make([]Segment, 0, 2*len(ranges)+1)
	cursor := 0
	for _, r := range ranges {
		start, end := r.Start, r.End
		if start < cursor {
			start = cursor
		}
		if end > len(text) {
			end = len(text)
		}
		if start >= end || start >= len(text) {
			continue
		}
		if start > cursor {
			segments = append(segments, Segment{Text: text[cursor:start]})
		}
		segments = append(segments, Segment{Text: text[start:end], Matched: true})
		cursor = end
	}
	if cursor < len(text) {
		segments = append(segments, Segment{Text: text[cursor:]})
	}
	if len(segments) == 0 {
		return []Segment{{Text: text}}
	}
	return segments
}
