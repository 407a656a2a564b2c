// Package format turns raw AI reply text into typed segments.
package format

import (
	"regexp"
	"strings"

	"github.com/sprite-ai/revchat/internal/model"
)

// fencePattern matches a triple-backtick fence whose body holds no backtick.
var fencePattern = regexp.MustCompile("```([^`]*)```")

// markerPattern has one capture group per issue kind, in IssueKind order.
var markerPattern = regexp.MustCompile(
	`(❗\x{FE0F}?\s*Issue:)|(⚠\x{FE0F}?\s*Warning:)|(✅\x{FE0F}?\s*Good:)|(📝\x{FE0F}?\s*Suggestion:)`,
)

// markerGlyphs end an annotation body.
const markerGlyphs = "❗⚠✅📝"

var markerKinds = []model.IssueKind{
	model.IssueIssue,
	model.IssueWarning,
	model.IssueGood,
	model.IssueSuggestion,
}

// Segments returns the segments for content as shown in the given mode.
// Chat replies are never parsed.
func Segments(content string, mode model.AgentMode) []model.Segment {
	if mode != model.ModeCodeReview {
		return []model.Segment{model.Text(content)}
	}
	return Scan(content)
}

// Scan splits content into text, fenced code and annotation segments.
// It never fails: anything that is not a well-formed fence or marker stays
// text, so concatenating Raw() over the result gives back content.
func Scan(content string) []model.Segment {
	var blocks []model.Segment
	last := 0
	for _, m := range fencePattern.FindAllStringSubmatchIndex(content, -1) {
		if m[0] > last {
			blocks = append(blocks, model.Text(content[last:m[0]]))
		}
		blocks = append(blocks, model.Code(content[m[2]:m[3]]))
		last = m[1]
	}
	if last < len(content) {
		blocks = append(blocks, model.Text(content[last:]))
	}
	if len(blocks) == 0 {
		return []model.Segment{model.Text(content)}
	}

	// Markers are only recognised outside code blocks.
	segments := make([]model.Segment, 0, len(blocks))
	for _, b := range blocks {
		if b.Kind != model.SegmentText {
			segments = append(segments, b)
			continue
		}
		segments = append(segments, annotate(b.Value)...)
	}
	return segments
}

// annotate splits one text span on issue markers. A span without markers is
// returned as the single original segment.
func annotate(text string) []model.Segment {
	var out []model.Segment
	last := 0
	for last < len(text) {
		loc := markerPattern.FindStringSubmatchIndex(text[last:])
		if loc == nil {
			break
		}
		start, end := last+loc[0], last+loc[1]

		// Any glyph ends the body, even one not followed by its word.
		bodyEnd := len(text)
		if i := strings.IndexAny(text[end:], markerGlyphs); i >= 0 {
			bodyEnd = end + i
		}

		if start > last {
			out = append(out, model.Text(text[last:start]))
		}
		out = append(out, model.Segment{
			Kind:   model.SegmentAnnotation,
			Issue:  kindOf(loc),
			Marker: text[start:end],
			Value:  text[end:bodyEnd],
		})
		last = bodyEnd
	}

	if len(out) == 0 {
		return []model.Segment{model.Text(text)}
	}
	if last < len(text) {
		out = append(out, model.Text(text[last:]))
	}
	return out
}

func kindOf(loc []int) model.IssueKind {
	for i, kind := range markerKinds {
		if loc[2+2*i] >= 0 {
			return kind
		}
	}
	return model.IssueSuggestion
}
