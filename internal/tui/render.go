package tui

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/charmbracelet/lipgloss"
	"github.com/sprite-ai/revchat/internal/format"
	"github.com/sprite-ai/revchat/internal/model"
)

// renderTranscript renders every message for a viewport of the given width.
func renderTranscript(msgs []model.Message, mode model.AgentMode, cache *format.Cache, width int) string {
	parts := make([]string, 0, len(msgs))
	for _, msg := range msgs {
		parts = append(parts, renderMessage(msg, mode, cache, width))
	}
	return strings.Join(parts, "\n\n")
}

func renderMessage(msg model.Message, mode model.AgentMode, cache *format.Cache, width int) string {
	var b strings.Builder

	label := aiLabelStyle.Render("AI")
	if msg.Sender == model.SenderUser {
		label = userLabelStyle.Render("You")
	}
	b.WriteString(label)
	if !msg.Timestamp.IsZero() {
		b.WriteString(" ")
		b.WriteString(timestampStyle.Render(msg.Timestamp.Format("15:04")))
	}
	b.WriteByte('\n')

	if msg.Sender == model.SenderUser {
		b.WriteString(userTextStyle.Width(width).Render(msg.Content))
		return b.String()
	}
	b.WriteString(renderSegments(cache.Get(msg.Content, mode), width))
	return b.String()
}

// renderSegments lays segments out in order. Text runs inline; code blocks
// and annotations start on their own line.
func renderSegments(segs []model.Segment, width int) string {
	var b strings.Builder
	for i, seg := range segs {
		block := seg.Kind != model.SegmentText
		if i > 0 && block && !strings.HasSuffix(b.String(), "\n") {
			b.WriteByte('\n')
		}
		b.WriteString(renderSegment(seg, width))
		if block && i < len(segs)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func renderSegment(seg model.Segment, width int) string {
	switch seg.Kind {
	case model.SegmentCode:
		return renderCode(seg.Value, width)
	case model.SegmentAnnotation:
		marker := markerStyle(seg.Issue).Render(strings.TrimSpace(seg.Marker))
		body := strings.TrimRight(seg.Value, "\n")
		return annotationStyle(seg.Issue).Width(max(width-2, 1)).Render(marker + body)
	default:
		return textStyle.Render(seg.Value)
	}
}

func renderCode(body string, width int) string {
	lang, code := codeLanguage(body)
	code = strings.Trim(code, "\n")
	box := codeBoxStyle.Width(max(width-2, 1)).Render(code)
	return codeLabelStyle.Render(lang) + "\n" + box
}

// codeLanguage names the language of a code block body. A leading line that
// is exactly a known language name is used as the label and dropped from the
// displayed code; otherwise the content is analysed. Unknown code is "code".
func codeLanguage(body string) (label, code string) {
	first, rest, found := strings.Cut(body, "\n")
	if found {
		if name := strings.TrimSpace(first); name != "" && !strings.ContainsAny(name, " \t") {
			if lexer := lexers.Get(name); lexer != nil {
				return lexerName(lexer), rest
			}
		}
	}
	if lexer := lexers.Analyse(body); lexer != nil {
		return lexerName(lexer), body
	}
	return "code", body
}

func lexerName(l chroma.Lexer) string {
	return strings.ToLower(l.Config().Name)
}

func renderErrorBanner(info *model.ErrorInfo, width int) string {
	text := "Something went wrong! " + info.Message
	if info.NetworkDetail != "" {
		text += "\n" + errorDetailStyle.Render("Network error: "+info.NetworkDetail)
	}
	return errorBannerStyle.Width(max(width-2, 1)).Render(text)
}

func renderHeader(mode model.AgentMode, width int) string {
	tab := func(m model.AgentMode, name string) string {
		if m == mode {
			return modeActiveStyle.Render(name)
		}
		return modeInactiveStyle.Render(name)
	}
	left := headerStyle.Render("revchat")
	right := tab(model.ModeChat, "Chat") + tab(model.ModeCodeReview, "Code Review")
	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}
