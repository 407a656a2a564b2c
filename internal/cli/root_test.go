package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/sprite-ai/revchat/internal/config"
	"github.com/sprite-ai/revchat/internal/format"
	"github.com/sprite-ai/revchat/internal/model"
)

// isolate keeps the developer's config and keys out of a test.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())
	for _, name := range []string{"DEEPSEEK_API_KEY", "OPENAI_API_KEY", "REVCHAT_REVIEW_API_KEY", "REVCHAT_REVIEW_PROVIDER", "REVCHAT_LOG_FILE"} {
		t.Setenv(name, "")
	}
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetIn(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func TestRootCommandHasSubcommands(t *testing.T) {
	cmds := rootCmd.Commands()
	names := make(map[string]bool)
	for _, c := range cmds {
		names[c.Name()] = true
	}

	for _, want := range []string{"chat", "serve", "format", "review", "version"} {
		if !names[want] {
			t.Errorf("root command missing subcommand %q", want)
		}
	}
}

func TestVersionOutput(t *testing.T) {
	// version vars are set via ldflags; in tests they have their defaults
	if version != "dev" {
		t.Errorf("expected default version %q, got %q", "dev", version)
	}

	out, err := execute(t, "", "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.HasPrefix(out, "revchat dev") {
		t.Errorf("unexpected version output %q", out)
	}
}

func TestWriteSegmentsText(t *testing.T) {
	var buf bytes.Buffer
	segs := format.Segments("Look ```x``` ✅ Good: tidy", model.ModeCodeReview)
	if err := writeSegments(&buf, segs, "text"); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected one line per segment, got %q", buf.String())
	}
	if !strings.HasPrefix(lines[1], "code") || !strings.Contains(lines[1], `"x"`) {
		t.Errorf("unexpected code line %q", lines[1])
	}
	if !strings.Contains(lines[3], "good") || !strings.Contains(lines[3], `" tidy"`) {
		t.Errorf("unexpected annotation line %q", lines[3])
	}
}

func TestWriteSegmentsUnknownOutput(t *testing.T) {
	if err := writeSegments(&bytes.Buffer{}, nil, "yaml"); err == nil {
		t.Error("expected an error for an unknown output format")
	}
}

func TestWriteReply(t *testing.T) {
	var buf bytes.Buffer
	writeReply(&buf, format.Segments("Summary ❗ Issue: leak```defer f.Close()```done", model.ModeCodeReview))

	want := "Summary \n❗ Issue: leak\n```defer f.Close()```\ndone\n"
	if buf.String() != want {
		t.Errorf("writeReply:\n got %q\nwant %q", buf.String(), want)
	}
}

func TestFormatCommandJSON(t *testing.T) {
	isolate(t)

	out, err := execute(t, "⚠️ Warning: slow loop", "format", "--output", "json", "-")
	if err != nil {
		t.Fatalf("format: %v", err)
	}

	var segs []struct {
		Kind  string `json:"kind"`
		Value string `json:"value"`
		Issue string `json:"issue"`
	}
	if err := json.Unmarshal([]byte(out), &segs); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if len(segs) != 1 || segs[0].Kind != "annotation" || segs[0].Issue != "warning" || segs[0].Value != " slow loop" {
		t.Errorf("unexpected segments %+v", segs)
	}
}

func TestReviewCommandLocal(t *testing.T) {
	isolate(t)

	code := "password := os.Getenv(\"DB_PASSWORD\")\n"
	out, err := execute(t, code, "review", "--provider", "local", "-")
	if err != nil {
		t.Fatalf("review: %v", err)
	}
	if !strings.Contains(out, "Static review:") || !strings.Contains(out, model.MarkerIssue) {
		t.Errorf("expected annotated static review, got %q", out)
	}
}

func TestNewReviewBackend(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.ReviewConfig
		wantNil bool
	}{
		{"none", config.ReviewConfig{Provider: "none"}, true},
		{"local", config.ReviewConfig{Provider: "local"}, false},
		{"openai without key is unavailable", config.ReviewConfig{Provider: "openai"}, true},
		{"openai with key", config.ReviewConfig{Provider: "openai", APIKey: "sk-test"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := newReviewBackend(tt.cfg)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if (got == nil) != tt.wantNil {
				t.Errorf("got backend %v, want nil=%v", got, tt.wantNil)
			}
		})
	}
}
