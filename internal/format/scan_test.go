package format

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sprite-ai/revchat/internal/model"
)

func TestScan(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []model.Segment
	}{
		{
			name:    "fenced code between text",
			content: "before ```print(1)``` after",
			want: []model.Segment{
				model.Text("before "),
				model.Code("print(1)"),
				model.Text(" after"),
			},
		},
		{
			name:    "annotations only",
			content: "❗ Issue: bad name ✅ Good: use x",
			want: []model.Segment{
				model.Annotation(model.IssueIssue, " bad name "),
				model.Annotation(model.IssueGood, " use x"),
			},
		},
		{
			name:    "no markup",
			content: "just words",
			want:    []model.Segment{model.Text("just words")},
		},
		{
			name:    "empty content",
			content: "",
			want:    []model.Segment{model.Text("")},
		},
		{
			name:    "empty fence is kept",
			content: "a``````b",
			want: []model.Segment{
				model.Text("a"),
				model.Code(""),
				model.Text("b"),
			},
		},
		{
			name:    "unpaired final fence is literal",
			content: "```one``` and ```two",
			want: []model.Segment{
				model.Code("one"),
				model.Text(" and ```two"),
			},
		},
		{
			name:    "single fence is literal",
			content: "```go fmt",
			want:    []model.Segment{model.Text("```go fmt")},
		},
		{
			name:    "markers inside code are ignored",
			content: "```❗ Issue: not parsed```",
			want:    []model.Segment{model.Code("❗ Issue: not parsed")},
		},
		{
			name:    "text before and after annotation",
			content: "Summary:\n⚠️ Warning: slow loop\n✅ done",
			want: []model.Segment{
				model.Text("Summary:\n"),
				model.Annotation(model.IssueWarning, " slow loop\n"),
				model.Text("✅ done"),
			},
		},
		{
			name:    "adjacent markers give empty body",
			content: "❗ Issue:📝 Suggestion: rename",
			want: []model.Segment{
				model.Annotation(model.IssueIssue, ""),
				model.Annotation(model.IssueSuggestion, " rename"),
			},
		},
		{
			name:    "marker whitespace and missing variation selector",
			content: "⚠\t Warning: x",
			want: []model.Segment{
				{Kind: model.SegmentAnnotation, Issue: model.IssueWarning, Marker: "⚠\t Warning:", Value: " x"},
			},
		},
		{
			name:    "annotations around code",
			content: "📝 Suggestion: use\n```x := 1```\n❗ Issue: leak",
			want: []model.Segment{
				model.Annotation(model.IssueSuggestion, " use\n"),
				model.Code("x := 1"),
				model.Text("\n"),
				model.Annotation(model.IssueIssue, " leak"),
			},
		},
		{
			name:    "bare glyph ends annotation body",
			content: "❗ Issue: done ✅ yes",
			want: []model.Segment{
				model.Annotation(model.IssueIssue, " done "),
				model.Text("✅ yes"),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Scan(tt.content)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Scan(%q) mismatch (-want +got):\n%s", tt.content, diff)
			}
		})
	}
}

func TestSegmentsChatBypass(t *testing.T) {
	content := "plain ```code``` ❗ Issue: not parsed"
	got := Segments(content, model.ModeChat)
	want := []model.Segment{model.Text(content)}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("chat mode should not parse (-want +got):\n%s", diff)
	}

	if got := Segments("plain text", model.ModeChat); len(got) != 1 || got[0].Value != "plain text" {
		t.Errorf("unexpected chat segments: %v", got)
	}
}

func TestScanCountsFences(t *testing.T) {
	bodies := []string{"a := 1", "", "fmt.Println(x)\n", "  spaced  "}
	var b strings.Builder
	for i, body := range bodies {
		b.WriteString("text ")
		b.WriteString(strings.Repeat("x", i))
		b.WriteString("```" + body + "```")
	}
	b.WriteString(" tail")

	var got []string
	for _, seg := range Scan(b.String()) {
		if seg.Kind == model.SegmentCode {
			got = append(got, seg.Value)
		}
	}
	if diff := cmp.Diff(bodies, got); diff != "" {
		t.Errorf("code bodies mismatch (-want +got):\n%s", diff)
	}
}

var roundTripInputs = []string{
	"",
	"plain",
	"before ```print(1)``` after",
	"❗ Issue: bad name ✅ Good: use x",
	"````four``` ``` odd",
	"⚠️Warning:x⚠️ Warning: y ❗ stray 📝 Suggestion:",
	"```a```❗ Issue: in text```b``` ✅  Good: end",
	"emoji 🎉 and ✅ alone",
	"line\n📝   Suggestion: multi\nline body\n```\ncode\n```\n",
}

func TestScanRoundTrip(t *testing.T) {
	for _, in := range roundTripInputs {
		var b strings.Builder
		for _, seg := range Scan(in) {
			b.WriteString(seg.Raw())
		}
		if b.String() != in {
			t.Errorf("round trip mismatch:\n got %q\nwant %q", b.String(), in)
		}
	}
}

func TestScanDeterministic(t *testing.T) {
	for _, in := range roundTripInputs {
		first := Scan(in)
		second := Scan(in)
		if diff := cmp.Diff(first, second); diff != "" {
			t.Errorf("Scan(%q) not deterministic:\n%s", in, diff)
		}
	}
}

func TestScanNoEmptyTextSegments(t *testing.T) {
	for _, in := range roundTripInputs[1:] {
		for _, seg := range Scan(in) {
			if seg.Kind == model.SegmentText && seg.Value == "" {
				t.Errorf("Scan(%q) produced an empty text segment", in)
			}
		}
	}
}
