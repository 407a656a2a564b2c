// Package diff parses unified git diffs submitted for review.
package diff

import (
	"bytes"
	"fmt"
	"os/exec"
	"strings"

	"github.com/bluekeyes/go-gitdiff/gitdiff"
)

// LooksLikeDiff reports whether text parses as a unified diff with at least
// one file. Arbitrary code snippets and prose return false.
func LooksLikeDiff(text string) bool {
	if !strings.Contains(text, "\n+++ ") && !strings.HasPrefix(text, "diff --git ") {
		return false
	}
	ds, err := Parse(text)
	return err == nil && len(ds.Files) > 0
}

// File is one file of a submitted diff.
type File struct {
	OldName      string
	NewName      string
	IsNew        bool
	IsDeleted    bool
	IsRenamed    bool
	Fragments    []*gitdiff.TextFragment
	AddedLines   int
	DeletedLines int
}

// Summary returns the file name with its line counts, e.g. "main.go (+3 -1)".
func (f *File) Summary() string {
	return fmt.Sprintf("%s (+%d -%d)", f.Name(), f.AddedLines, f.DeletedLines)
}

// Name is the path shown for the file: the new path, the old one for
// deletions, both for renames.
func (f *File) Name() string {
	switch {
	case f.IsRenamed:
		return f.OldName + " -> " + f.NewName
	case f.IsDeleted, f.NewName == "":
		return f.OldName
	default:
		return f.NewName
	}
}

// DiffSet is a parsed diff.
type DiffSet struct {
	Files []*File
}

// Stats returns the file count and total added and deleted lines.
func (ds *DiffSet) Stats() (files, added, deleted int) {
	for _, f := range ds.Files {
		added += f.AddedLines
		deleted += f.DeletedLines
	}
	return len(ds.Files), added, deleted
}

// Parse reads a unified diff. Binary files are listed without fragments.
func Parse(raw string) (*DiffSet, error) {
	parsed, _, err := gitdiff.Parse(strings.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parsing diff: %w", err)
	}

	ds := &DiffSet{Files: make([]*File, 0, len(parsed))}
	for _, f := range parsed {
		ds.Files = append(ds.Files, newFile(f))
	}
	return ds, nil
}

func newFile(f *gitdiff.File) *File {
	df := &File{
		OldName:   f.OldName,
		NewName:   f.NewName,
		IsNew:     f.IsNew,
		IsDeleted: f.IsDelete,
		IsRenamed: f.IsRename,
		Fragments: f.TextFragments,
	}
	for _, frag := range f.TextFragments {
		df.AddedLines += int(frag.LinesAdded)
		df.DeletedLines += int(frag.LinesDeleted)
	}
	return df
}

// GitDiffHead returns the diff of HEAD against its parent.
func GitDiffHead(repoDir string, contextLines int) (string, error) {
	return gitDiff(repoDir, contextLines, "HEAD~1", "HEAD")
}

// GitDiffStaged returns the diff of the index against HEAD.
func GitDiffStaged(repoDir string, contextLines int) (string, error) {
	return gitDiff(repoDir, contextLines, "--cached")
}

// GitDiffRange returns the diff for a commit range like "main...HEAD".
func GitDiffRange(repoDir string, commitRange string, contextLines int) (string, error) {
	return gitDiff(repoDir, contextLines, commitRange)
}

func gitDiff(repoDir string, contextLines int, args ...string) (string, error) {
	cmd := exec.Command("git", append([]string{"diff", fmt.Sprintf("-U%d", contextLines)}, args...)...)
	cmd.Dir = repoDir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("git diff: %w: %s", err, msg)
		}
		return "", fmt.Errorf("git diff: %w", err)
	}
	return string(out), nil
}
