package analysis

import (
	"crypto/sha256"
	"fmt"
	"regexp"
	"strings"

	"github.com/sprite-ai/revchat/internal/model"
)

// Anti-pattern regexes.
var (
	// Broad exception handling
	broadExceptPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)except\s*:`),                           // Python: bare except
		regexp.MustCompile(`(?i)except\s+Exception\s*:`),               // Python: catch-all
		regexp.MustCompile(`(?i)catch\s*\(\s*(Exception|Error|e)\s*\)`), // Java/C#
		regexp.MustCompile(`(?i)catch\s*\(\s*err(?:or)?\s*\)\s*\{`),    // JS/TS: catch (err) {
		regexp.MustCompile(`(?i)catch\s*\{`),                           // Scala/Kotlin bare catch
		regexp.MustCompile(`(?i)rescue\s*$`),                           // Ruby: bare rescue
		regexp.MustCompile(`(?i)rescue\s+StandardError`),               // Ruby: catch-all
		regexp.MustCompile(`\.catch\(\s*(?:_|err|\(\s*\))\s*=>`),       // JS: .catch((_) => or .catch(() =>
	}

	// Commented-out code patterns (lines that look like disabled code, not natural comments)
	commentedCodePatterns = []*regexp.Regexp{
		regexp.MustCompile(`^\s*(?://|#)\s*(?:func |def |class |if |for |while |return |import |from |const |let |var |pub fn )`),
		regexp.MustCompile(`^\s*(?://|#)\s*\w+\s*[({=]`),
		regexp.MustCompile(`^\s*{?/\*.*\b(?:func|def|class|return)\b.*\*/}?`),
	}

	// Work markers left behind
	todoPattern = regexp.MustCompile(`(?i)\b(TODO|FIXME|HACK|XXX|TEMP|TEMPORARY)\b`)
)

// AntiPatternPass detects habits that tend to slip through review.
func AntiPatternPass(src *Source) []Finding {
	var findings []Finding

	for _, line := range src.Lines {
		if f, ok := checkBroadException(line); ok {
			findings = append(findings, f)
		}
		if f, ok := checkCommentedCode(line); ok {
			findings = append(findings, f)
		}
		if f, ok := checkTodo(line); ok {
			findings = append(findings, f)
		}
	}

	findings = append(findings, checkDuplication(src)...)
	return findings
}

func checkBroadException(line Line) (Finding, bool) {
	for _, pat := range broadExceptPatterns {
		if pat.MatchString(line.Text) {
			return Finding{
				Pass:     "anti_patterns",
				File:     line.File,
				Line:     line.Num,
				Message:  fmt.Sprintf("Broad exception handling: %s", strings.TrimSpace(line.Text)),
				Severity: model.SeverityWarning,
				Risk:     model.RiskMedium,
			}, true
		}
	}
	return Finding{}, false
}

func checkCommentedCode(line Line) (Finding, bool) {
	for _, pat := range commentedCodePatterns {
		if pat.MatchString(line.Text) {
			return Finding{
				Pass:     "anti_patterns",
				File:     line.File,
				Line:     line.Num,
				Message:  fmt.Sprintf("Commented-out code: %s", strings.TrimSpace(line.Text)),
				Severity: model.SeverityWarning,
				Risk:     model.RiskLow,
			}, true
		}
	}
	return Finding{}, false
}

func checkTodo(line Line) (Finding, bool) {
	m := todoPattern.FindString(line.Text)
	if m == "" {
		return Finding{}, false
	}
	return Finding{
		Pass:     "anti_patterns",
		File:     line.File,
		Line:     line.Num,
		Message:  fmt.Sprintf("%s marker left in code: %s", strings.ToUpper(m), strings.TrimSpace(line.Text)),
		Severity: model.SeverityInfo,
		Risk:     model.RiskLow,
	}, true
}

// checkDuplication hashes a sliding window of non-trivial lines per file and
// reports every repeat of an earlier window.
func checkDuplication(src *Source) []Finding {
	const windowSize = 4

	type blockLoc struct {
		file string
		line int
	}
	blocks := make(map[string][]blockLoc)
	var order []string

	for _, group := range src.byFile() {
		var kept []Line
		for _, l := range group {
			switch strings.TrimSpace(l.Text) {
			case "", "{", "}", "(", ")":
				continue
			}
			kept = append(kept, l)
		}

		for i := 0; i+windowSize <= len(kept); i++ {
			window := make([]string, windowSize)
			for j := range window {
				window[j] = strings.TrimSpace(kept[i+j].Text)
			}
			h := hashBlock(window)
			if _, ok := blocks[h]; !ok {
				order = append(order, h)
			}
			blocks[h] = append(blocks[h], blockLoc{file: kept[i].File, line: kept[i].Num})
		}
	}

	var findings []Finding
	for _, h := range order {
		locs := blocks[h]
		for _, loc := range locs[1:] {
			first := locs[0]
			where := fmt.Sprintf("line %d", first.line)
			if first.file != "" {
				where = fmt.Sprintf("%s:%d", first.file, first.line)
			}
			findings = append(findings, Finding{
				Pass:     "anti_patterns",
				File:     loc.file,
				Line:     loc.line,
				Message:  fmt.Sprintf("Near-duplicate code block (also at %s)", where),
				Severity: model.SeverityWarning,
				Risk:     model.RiskMedium,
			})
		}
	}
	return findings
}

func hashBlock(lines []string) string {
	h := sha256.New()
	for _, l := range lines {
		h.Write([]byte(l))
		h.Write([]byte{'\n'})
	}
	return fmt.Sprintf("%x", h.Sum(nil))[:16]
}
