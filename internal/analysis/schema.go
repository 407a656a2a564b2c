package analysis

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/sprite-ai/revchat/internal/model"
)

// Schema/migration file patterns.
var schemaPatterns = []struct {
	pattern     *regexp.Regexp
	description string
}{
	{regexp.MustCompile(`(?i)migrat`), "database migration"},
	{regexp.MustCompile(`(?i)schema`), "schema definition"},
	{regexp.MustCompile(`\.proto$`), "protobuf definition"},
	{regexp.MustCompile(`(?i)(openapi|swagger)\.(ya?ml|json)$`), "OpenAPI spec"},
	{regexp.MustCompile(`(?i)\.(graphql|gql)$`), "GraphQL schema"},
	{regexp.MustCompile(`\.prisma$`), "Prisma schema"},
	{regexp.MustCompile(`(?i)alembic.*\.py$`), "Alembic migration"},
	{regexp.MustCompile(`(?i)flyway`), "Flyway migration"},
	{regexp.MustCompile(`(?i)knex.*migrat`), "Knex migration"},
	{regexp.MustCompile(`(?i)sequel.*migrat`), "Sequel migration"},
	{regexp.MustCompile(`(?i)active_record.*migrat`), "ActiveRecord migration"},
	{regexp.MustCompile(`(?i)ecto.*migrat`), "Ecto migration"},
}

// SQL DDL keywords in added lines.
var ddlPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(CREATE|ALTER|DROP)\s+(TABLE|INDEX|VIEW|SCHEMA|DATABASE|TYPE|SEQUENCE)\b`),
	regexp.MustCompile(`(?i)\bADD\s+COLUMN\b`),
	regexp.MustCompile(`(?i)\bDROP\s+COLUMN\b`),
	regexp.MustCompile(`(?i)\bRENAME\s+(TABLE|COLUMN)\b`),
	regexp.MustCompile(`(?i)\bMODIFY\s+COLUMN\b`),
}

// SchemaChangePass flags schema, migration and API spec files in a diff, and
// DDL statements in any submission.
func SchemaChangePass(src *Source) []Finding {
	var findings []Finding

	for _, name := range src.Files {
		for _, sp := range schemaPatterns {
			if sp.pattern.MatchString(name) {
				findings = append(findings, Finding{
					Pass:     "schema",
					File:     name,
					Message:  fmt.Sprintf("Changes to %s file", sp.description),
					Severity: model.SeverityWarning,
					Risk:     model.RiskHigh,
				})
				break
			}
		}
	}

	for _, line := range src.Lines {
		for _, pat := range ddlPatterns {
			if pat.MatchString(line.Text) {
				findings = append(findings, Finding{
					Pass:     "schema",
					File:     line.File,
					Line:     line.Num,
					Message:  fmt.Sprintf("DDL statement: %s", strings.TrimSpace(line.Text)),
					Severity: model.SeverityWarning,
					Risk:     model.RiskHigh,
				})
				break
			}
		}
	}

	return findings
}
