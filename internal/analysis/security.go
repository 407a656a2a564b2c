package analysis

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/sprite-ai/revchat/internal/model"
)

// Security-sensitive patterns grouped by category.
var securityPatterns = []struct {
	category string
	patterns []*regexp.Regexp
	risk     model.RiskLevel
}{
	{
		category: "authentication",
		patterns: compilePatterns(
			`(?i)(auth|login|logout|signin|signup|password|credential|token|jwt|oauth|session|cookie)`,
		),
		risk: model.RiskHigh,
	},
	{
		category: "authorization",
		patterns: compilePatterns(
			`(?i)(permission|role|access.?control|rbac|acl|authorize|forbidden|is.?admin|can.?access)`,
		),
		risk: model.RiskHigh,
	},
	{
		category: "SQL/database",
		patterns: compilePatterns(
			`(?i)(db\.exec|db\.query|\.prepare\(|raw.?sql|sql\.)`,
			`(?i)(\bSELECT\b|\bINSERT\b|\bUPDATE\b|\bDELETE\b|\bDROP\b|\bALTER\b)\s`,
			`(?i)(connection\.execute|cursor\.execute)`,
		),
		risk: model.RiskHigh,
	},
	{
		category: "cryptography",
		patterns: compilePatterns(
			`(?i)(encrypt|decrypt|hash|hmac|cipher|aes|rsa|sha256|sha512|bcrypt|argon|scrypt|pbkdf)`,
			`(?i)(private.?key|public.?key|secret.?key|signing.?key|crypto\.)`,
		),
		risk: model.RiskHigh,
	},
	{
		category: "file system",
		patterns: compilePatterns(
			`(?i)(os\.Remove|os\.Rename|os\.Chmod|os\.Chown|os\.MkdirAll|os\.WriteFile|ioutil\.WriteFile)`,
			`(?i)(unlink|rmdir|chmod|chown|write_file|open.*[\"']w)`,
			`(?i)(path\.join|filepath\.join).*\.\.|\.\.\/`,
		),
		risk: model.RiskMedium,
	},
	{
		category: "environment/secrets",
		patterns: compilePatterns(
			`(?i)(os\.Getenv|os\.environ|process\.env|ENV\[|getenv)`,
			`(?i)(api.?key|secret|password|token)\s*[:=]`,
			`(?i)(PRIVATE|SECRET|PASSWORD|TOKEN|KEY)\s*=\s*["']`,
		),
		risk: model.RiskMedium,
	},
	{
		category: "network/HTTP",
		patterns: compilePatterns(
			`(?i)(http\.ListenAndServe|\.listen\(|cors|origin|allow.?origin)`,
			`(?i)(tls\.Config|InsecureSkipVerify|disable.?ssl|verify.?ssl.*false)`,
		),
		risk: model.RiskMedium,
	},
	{
		category: "subprocess/exec",
		patterns: compilePatterns(
			`(?i)(exec\.Command|os\.system|subprocess|child_process|shell_exec|system\()`,
			`(?i)(eval\(|exec\(|compile\()`,
		),
		risk: model.RiskHigh,
	},
}

func compilePatterns(patterns ...string) []*regexp.Regexp {
	var compiled []*regexp.Regexp
	for _, p := range patterns {
		compiled = append(compiled, regexp.MustCompile(p))
	}
	return compiled
}

// SecuritySurfacePass flags added code that touches security-sensitive APIs,
// at most one finding per category per line.
func SecuritySurfacePass(src *Source) []Finding {
	var findings []Finding

	for _, line := range src.Lines {
		if isCommentLine(line.Text) {
			continue
		}
		trimmed := strings.TrimSpace(line.Text)
		for _, sp := range securityPatterns {
			for _, re := range sp.patterns {
				if re.MatchString(line.Text) {
					findings = append(findings, Finding{
						Pass:     "security",
						File:     line.File,
						Line:     line.Num,
						Message:  fmt.Sprintf("Security-sensitive change (%s): %s", sp.category, trimmed),
						Severity: model.SeverityWarning,
						Risk:     sp.risk,
					})
					break
				}
			}
		}
	}

	return findings
}

func isCommentLine(text string) bool {
	trimmed := strings.TrimSpace(text)
	for _, prefix := range []string{"//", "#", "*", "/*", "--"} {
		if strings.HasPrefix(trimmed, prefix) {
			return true
		}
	}
	return false
}
