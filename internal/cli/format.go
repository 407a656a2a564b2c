package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/sprite-ai/revchat/internal/format"
	"github.com/sprite-ai/revchat/internal/model"
)

var formatCmd = &cobra.Command{
	Use:   "format [file|-]",
	Short: "Split content into text, code and annotation segments",
	Long: `Run content through the reply formatter and print the segments.
Reads stdin when no file or "-" is given.

Examples:
  revchat format review.txt
  revchat format --output json < reply.txt
  echo 'hi ` + "```x```" + `' | revchat format --mode chat`,
	Args: cobra.MaximumNArgs(1),
	RunE: runFormat,
}

func init() {
	formatCmd.Flags().StringP("mode", "m", "review", "formatting mode: chat or review")
	formatCmd.Flags().StringP("output", "o", "text", "output format: text, json")
}

func runFormat(cmd *cobra.Command, args []string) error {
	modeName, _ := cmd.Flags().GetString("mode")
	mode, err := model.ParseAgentMode(modeName)
	if err != nil {
		return err
	}

	content, err := readInput(cmd, args)
	if err != nil {
		return err
	}

	output, _ := cmd.Flags().GetString("output")
	return writeSegments(cmd.OutOrStdout(), format.Segments(content, mode), output)
}

// readInput reads the named file, or stdin for "-" or no argument.
func readInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", args[0], err)
	}
	return string(data), nil
}

func writeSegments(w io.Writer, segs []model.Segment, output string) error {
	switch output {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(segs)
	case "text", "":
		for _, seg := range segs {
			if seg.Kind == model.SegmentAnnotation {
				fmt.Fprintf(w, "%-10s %-10s %q\n", seg.Kind, seg.Issue, seg.Value)
				continue
			}
			fmt.Fprintf(w, "%-10s %q\n", seg.Kind, seg.Value)
		}
		return nil
	default:
		return fmt.Errorf("unknown output format %q (want text or json)", output)
	}
}

// writeReply prints segments as readable text: annotations and code blocks
// start on their own line.
func writeReply(w io.Writer, segs []model.Segment) {
	var b strings.Builder
	for _, seg := range segs {
		switch seg.Kind {
		case model.SegmentCode:
			ensureNewline(&b)
			b.WriteString("```")
			b.WriteString(seg.Value)
			b.WriteString("```\n")
		case model.SegmentAnnotation:
			ensureNewline(&b)
			b.WriteString(seg.Marker)
			b.WriteString(strings.TrimRight(seg.Value, "\n"))
			b.WriteByte('\n')
		default:
			b.WriteString(seg.Value)
		}
	}
	ensureNewline(&b)
	fmt.Fprint(w, b.String())
}

func ensureNewline(b *strings.Builder) {
	if b.Len() > 0 && !strings.HasSuffix(b.String(), "\n") {
		b.WriteByte('\n')
	}
}
