package model

import "encoding/json"

// SegmentKind tags the variant held by a Segment.
type SegmentKind int

const (
	SegmentText SegmentKind = iota
	SegmentCode
	SegmentAnnotation
)

func (k SegmentKind) String() string {
	switch k {
	case SegmentText:
		return "text"
	case SegmentCode:
		return "code"
	case SegmentAnnotation:
		return "annotation"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k SegmentKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// IssueKind is the category of a review annotation.
type IssueKind int

const (
	IssueIssue IssueKind = iota
	IssueWarning
	IssueGood
	IssueSuggestion
)

func (k IssueKind) String() string {
	switch k {
	case IssueIssue:
		return "issue"
	case IssueWarning:
		return "warning"
	case IssueGood:
		return "good"
	case IssueSuggestion:
		return "suggestion"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k IssueKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Canonical marker text for each issue kind.
const (
	MarkerIssue      = "❗ Issue:"
	MarkerWarning    = "⚠️ Warning:"
	MarkerGood       = "✅ Good:"
	MarkerSuggestion = "📝 Suggestion:"
)

// Marker returns the canonical marker for the kind.
func (k IssueKind) Marker() string {
	switch k {
	case IssueIssue:
		return MarkerIssue
	case IssueWarning:
		return MarkerWarning
	case IssueGood:
		return MarkerGood
	default:
		return MarkerSuggestion
	}
}

// Segment is a classified contiguous span of message content.
//
// For SegmentText and SegmentCode, Value is the span's text (fences stripped
// for code). For SegmentAnnotation, Value is the body following the marker,
// Issue is its category and Marker is the marker exactly as it appeared.
type Segment struct {
	Kind   SegmentKind
	Value  string
	Issue  IssueKind
	Marker string
}

type segmentJSON struct {
	Kind   SegmentKind `json:"kind"`
	Value  string      `json:"value"`
	Issue  *IssueKind  `json:"issue,omitempty"`
	Marker string      `json:"marker,omitempty"`
}

// MarshalJSON emits issue and marker only for annotations.
func (s Segment) MarshalJSON() ([]byte, error) {
	out := segmentJSON{Kind: s.Kind, Value: s.Value}
	if s.Kind == SegmentAnnotation {
		issue := s.Issue
		out.Issue = &issue
		out.Marker = s.Marker
	}
	return json.Marshal(out)
}

// Text returns a plain text segment.
func Text(s string) Segment {
	return Segment{Kind: SegmentText, Value: s}
}

// Code returns a code block segment.
func Code(body string) Segment {
	return Segment{Kind: SegmentCode, Value: body}
}

// Annotation returns an annotation segment using the canonical marker.
func Annotation(kind IssueKind, body string) Segment {
	return Segment{Kind: SegmentAnnotation, Value: body, Issue: kind, Marker: kind.Marker()}
}

// Raw returns the source text the segment was parsed from.
func (s Segment) Raw() string {
	switch s.Kind {
	case SegmentCode:
		return "```" + s.Value + "```"
	case SegmentAnnotation:
		return s.Marker + s.Value
	default:
		return s.Value
	}
}
