package backend

import (
	"fmt"
	"strings"

	"github.com/sprite-ai/revchat/internal/diff"
)

const reviewPromptPrefix = "Please review the following code:\n\n"

// DefaultReviewSystemPrompt asks the model to use the annotation markers the
// front-end understands.
const DefaultReviewSystemPrompt = `You are a meticulous senior code reviewer.
Review the code the user submits and report each finding on its own line,
starting with exactly one of these markers:

❗ Issue: a bug, security problem or other defect that must be fixed
⚠️ Warning: risky or fragile code that should be reconsidered
📝 Suggestion: an improvement to readability, naming or structure
✅ Good: something done well that is worth keeping

Put every code example between triple backticks. Do not use the marker
symbols anywhere except at the start of a finding.`

// BuildReviewPrompt frames a submission for the review model. Diffs get a
// per-file summary ahead of the raw text.
func BuildReviewPrompt(code string) string {
	var b strings.Builder
	b.WriteString(reviewPromptPrefix)

	if diff.LooksLikeDiff(code) {
		if ds, err := diff.Parse(code); err == nil {
			files, added, deleted := ds.Stats()
			b.WriteString("Changed files:\n")
			for _, f := range ds.Files {
				b.WriteString("- ")
				b.WriteString(f.Summary())
				b.WriteByte('\n')
			}
			b.WriteString(diffTotals(files, added, deleted))
			b.WriteString("\n\n")
		}
	}

	b.WriteString(code)
	return b.String()
}

func diffTotals(files, added, deleted int) string {
	noun := "files"
	if files == 1 {
		noun = "file"
	}
	return fmt.Sprintf("%d %s, +%d -%d", files, noun, added, deleted)
}
