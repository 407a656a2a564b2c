// Package analysis runs static checks over code submitted for review.
package analysis

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sprite-ai/revchat/internal/model"
)

// Finding is a single result attached to a file and line.
type Finding struct {
	Pass     string // which pass produced this
	File     string // empty for snippets
	Line     int    // 0 if file-level
	Message  string
	Severity model.Severity
	Risk     model.RiskLevel
}

func (f Finding) String() string {
	var loc string
	switch {
	case f.File == "" && f.Line > 0:
		loc = fmt.Sprintf("line %d", f.Line)
	case f.Line > 0:
		loc = fmt.Sprintf("%s:%d", f.File, f.Line)
	default:
		loc = f.File
	}
	if loc == "" {
		return fmt.Sprintf("[%s] %s", f.Pass, f.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", f.Pass, loc, f.Message)
}

// Results holds all findings from running analysis passes.
type Results struct {
	Findings []Finding
}

// ByFile returns findings grouped by file path.
func (r *Results) ByFile() map[string][]Finding {
	m := make(map[string][]Finding)
	for _, f := range r.Findings {
		m[f.File] = append(m[f.File], f)
	}
	return m
}

// ByRisk returns findings at or above the given risk level.
func (r *Results) ByRisk(minRisk model.RiskLevel) []Finding {
	var result []Finding
	for _, f := range r.Findings {
		if f.Risk >= minRisk {
			result = append(result, f)
		}
	}
	return result
}

// MaxRisk returns the highest risk level among all findings.
func (r *Results) MaxRisk() model.RiskLevel {
	max := model.RiskInfo
	for _, f := range r.Findings {
		if f.Risk > max {
			max = f.Risk
		}
	}
	return max
}

// Summary returns a one-line summary of findings.
func (r *Results) Summary() string {
	if len(r.Findings) == 0 {
		return "No issues found"
	}

	counts := make(map[model.RiskLevel]int)
	for _, f := range r.Findings {
		counts[f.Risk]++
	}

	var parts []string
	for _, level := range []model.RiskLevel{model.RiskCritical, model.RiskHigh, model.RiskMedium, model.RiskLow, model.RiskInfo} {
		if c := counts[level]; c > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", c, level))
		}
	}
	return strings.Join(parts, ", ")
}

// IssueKind maps a risk level to the annotation used to present it.
func IssueKind(risk model.RiskLevel) model.IssueKind {
	switch {
	case risk >= model.RiskHigh:
		return model.IssueIssue
	case risk == model.RiskMedium:
		return model.IssueWarning
	default:
		return model.IssueSuggestion
	}
}

// Annotated renders the findings as review text, one marker per finding,
// highest risk first. A clean result is a single Good annotation.
func (r *Results) Annotated() string {
	if len(r.Findings) == 0 {
		return model.MarkerGood + " No issues found by the static checks.\n"
	}

	sorted := make([]Finding, len(r.Findings))
	copy(sorted, r.Findings)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Risk > sorted[j].Risk })

	var b strings.Builder
	fmt.Fprintf(&b, "Static review: %s\n\n", r.Summary())
	for _, f := range sorted {
		b.WriteString(IssueKind(f.Risk).Marker())
		b.WriteByte(' ')
		b.WriteString(sanitize(f.String()))
		b.WriteByte('\n')
	}
	return b.String()
}

// sanitize keeps quoted source from being read back as markup: marker
// glyphs would split the annotation and fences would open a code block.
func sanitize(s string) string {
	s = strings.Map(func(r rune) rune {
		switch r {
		case '❗', '⚠', '✅', '📝', '\uFE0F':
			return -1
		}
		return r
	}, s)
	return strings.ReplaceAll(s, "```", "'''")
}

// Pass analyzes a source and returns findings.
type Pass func(src *Source) []Finding

type namedPass struct {
	name string
	run  Pass
}

// passes run in this order.
var passes = []namedPass{
	{"security", SecuritySurfacePass},
	{"schema", SchemaChangePass},
	{"anti_patterns", AntiPatternPass},
}

// PassNames returns the names accepted by Run's skip list, in run order.
func PassNames() []string {
	names := make([]string, len(passes))
	for i, p := range passes {
		names[i] = p.name
	}
	return names
}

// Run executes all passes not named in skip and returns the aggregated results.
func Run(src *Source, skip []string) *Results {
	skipSet := make(map[string]bool)
	for _, s := range skip {
		skipSet[s] = true
	}

	results := &Results{}
	for _, p := range passes {
		if skipSet[p.name] {
			continue
		}
		results.Findings = append(results.Findings, p.run(src)...)
	}
	results.Findings = deduplicateFindings(results.Findings)
	return results
}

// deduplicateFindings removes findings with the same file+line+message.
func deduplicateFindings(findings []Finding) []Finding {
	seen := make(map[string]bool)
	var result []Finding
	for _, f := range findings {
		key := fmt.Sprintf("%s:%d:%s", f.File, f.Line, f.Message)
		if !seen[key] {
			seen[key] = true
			result = append(result, f)
		}
	}
	return result
}
