package analysis

import (
	"strings"

	"github.com/bluekeyes/go-gitdiff/gitdiff"
	"github.com/sprite-ai/revchat/internal/diff"
)

// Line is one line of submitted code. Num is the line number in the new
// version of File, or in the snippet when File is empty.
type Line struct {
	File string
	Num  int
	Text string
}

// Source is what the passes inspect: the added lines of a diff, or every
// line of a plain snippet.
type Source struct {
	Files  []string
	Lines  []Line
	IsDiff bool
}

// FromSubmission builds a source from review input, treating it as a diff
// when it parses as one.
func FromSubmission(text string) *Source {
	if diff.LooksLikeDiff(text) {
		if ds, err := diff.Parse(text); err == nil {
			return FromDiff(ds)
		}
	}
	return FromSnippet(text)
}

// FromDiff collects the added lines of every file in ds.
func FromDiff(ds *diff.DiffSet) *Source {
	src := &Source{IsDiff: true}
	for _, f := range ds.Files {
		name := f.Name()
		src.Files = append(src.Files, name)
		for _, frag := range f.Fragments {
			lineNum := int(frag.NewPosition)
			for _, line := range frag.Lines {
				if line.Op == gitdiff.OpAdd {
					src.Lines = append(src.Lines, Line{
						File: name,
						Num:  lineNum,
						Text: strings.TrimSuffix(line.Line, "\n"),
					})
				}
				if line.Op == gitdiff.OpAdd || line.Op == gitdiff.OpContext {
					lineNum++
				}
			}
		}
	}
	return src
}

// FromSnippet numbers every line of text from 1.
func FromSnippet(text string) *Source {
	src := &Source{}
	for i, l := range strings.Split(text, "\n") {
		src.Lines = append(src.Lines, Line{Num: i + 1, Text: strings.TrimSuffix(l, "\r")})
	}
	return src
}

// byFile splits the lines into per-file runs, keeping their order.
func (s *Source) byFile() [][]Line {
	var groups [][]Line
	for i, l := range s.Lines {
		if i == 0 || l.File != s.Lines[i-1].File {
			groups = append(groups, nil)
		}
		groups[len(groups)-1] = append(groups[len(groups)-1], l)
	}
	return groups
}
