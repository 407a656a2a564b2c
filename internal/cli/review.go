package cli

import (
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/spf13/cobra"
	"github.com/sprite-ai/revchat/internal/conversation"
	"github.com/sprite-ai/revchat/internal/diff"
	"github.com/sprite-ai/revchat/internal/format"
	"github.com/sprite-ai/revchat/internal/model"
)

var reviewCmd = &cobra.Command{
	Use:   "review [commit-range|-]",
	Short: "Send a diff to the code review agent",
	Long: `Send a git diff to the code review agent and print the annotated
reply. By default, reviews the last commit. Optionally specify a commit
range, or "-" to read any diff or code snippet from stdin.

Examples:
  revchat review                     # last commit
  revchat review main...HEAD         # branch vs main
  revchat review --staged            # staged changes
  git diff | revchat review -        # pipe any diff
  revchat review --provider local    # static checks only, no API call`,
	Args: cobra.MaximumNArgs(1),
	RunE: runReview,
}

func init() {
	reviewCmd.Flags().IntP("context", "C", 3, "lines of context around changes")
	reviewCmd.Flags().Bool("staged", false, "review staged changes instead of a commit")
	reviewCmd.Flags().Bool("stat", false, "print diff stats and exit without reviewing")
	reviewCmd.Flags().String("provider", "", "review provider: openai, local or none (default from review.provider)")
	reviewCmd.Flags().StringP("output", "o", "", "print segments instead of the reply: text, json")
}

func runReview(cmd *cobra.Command, args []string) error {
	contextLines, _ := cmd.Flags().GetInt("context")
	staged, _ := cmd.Flags().GetBool("staged")

	raw, err := getDiff(cmd, args, contextLines, staged)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if strings.TrimSpace(raw) == "" {
		fmt.Fprintln(out, "No changes to review.")
		return nil
	}

	if stat, _ := cmd.Flags().GetBool("stat"); stat {
		ds, err := diff.Parse(raw)
		if err != nil {
			return fmt.Errorf("parsing diff: %w", err)
		}
		printStat(out, ds)
		return nil
	}

	rc := cfg.Review
	if cmd.Flags().Changed("provider") {
		rc.Provider, _ = cmd.Flags().GetString("provider")
	}
	review, err := newReviewBackend(rc)
	if err != nil {
		return err
	}

	reply, err := reviewOnce(cmd, review, raw)
	if err != nil {
		return err
	}

	segs := format.Segments(reply.Content, model.ModeCodeReview)
	if output, _ := cmd.Flags().GetString("output"); output != "" {
		return writeSegments(out, segs, output)
	}
	writeReply(out, segs)
	return nil
}

// reviewOnce runs a single review-mode request and returns the reply.
func reviewOnce(cmd *cobra.Command, review conversation.ReviewBackend, code string) (model.Message, error) {
	orch := conversation.NewOrchestrator(conversation.NewStore(model.ModeCodeReview), nil, review)
	done, err := orch.Submit(cmd.Context(), code)
	if err != nil {
		return model.Message{}, err
	}
	<-done

	msgs := orch.Store().Messages()
	reply := msgs[len(msgs)-1]
	if reply.Sender != model.SenderAI {
		return model.Message{}, fmt.Errorf("review produced no reply")
	}
	return reply, nil
}

func getDiff(cmd *cobra.Command, args []string, contextLines int, staged bool) (string, error) {
	// Read from stdin if "-" is passed
	if len(args) == 1 && args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}

	// Find repo root
	repoDir, err := gitRepoRoot()
	if err != nil {
		return "", fmt.Errorf("not in a git repository (or git not installed): %w", err)
	}

	switch {
	case len(args) == 1:
		return diff.GitDiffRange(repoDir, args[0], contextLines)
	case staged:
		return diff.GitDiffStaged(repoDir, contextLines)
	default:
		return diff.GitDiffHead(repoDir, contextLines)
	}
}

func printStat(w io.Writer, ds *diff.DiffSet) {
	files, added, deleted := ds.Stats()
	fmt.Fprintf(w, "%d file(s) changed, %d insertions(+), %d deletions(-)\n\n", files, added, deleted)
	for _, f := range ds.Files {
		status := "M"
		if f.IsNew {
			status = "A"
		} else if f.IsDeleted {
			status = "D"
		} else if f.IsRenamed {
			status = "R"
		}
		fmt.Fprintf(w, "  %s %-50s +%-4d -%d\n", status, f.Name(), f.AddedLines, f.DeletedLines)
	}
}

func gitRepoRoot() (string, error) {
	cmd := exec.Command("git", "rev-parse", "--show-toplevel")
	out, err := cmd.Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}
