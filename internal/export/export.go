// Package export renders finished check results for delivery: stable JSON
// for APIs and a self-contained HTML report for humans.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"sort"
	"strings"

	"github.com/a11ycheck/a11ycheck/internal/accessibility"
)

// JSON renders the result as indented JSON with a trailing newline.
func JSON(result accessibility.CheckResult) ([]byte, error) {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}
	return append(data, '\n'), nil
}

// HTML renders the result as a standalone report page.
func HTML(result accessibility.CheckResult) ([]byte, error) {
	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, newReportData(result)); err != nil {
		return nil, fmt.Errorf("render report: %w", err)
	}
	return buf.Bytes(), nil
}

// reportData flattens the result maps into template-friendly slices with a
// stable order.
type reportData struct {
	Result     accessibility.CheckResult
	Grade      string
	Categories []accessibility.CategoryScore
}

func newReportData(result accessibility.CheckResult) reportData {
	cats := make([]accessibility.CategoryScore, 0, len(result.CategoryScores))
	for _, cs := range result.CategoryScores {
		cats = append(cats, cs)
	}
	sort.Slice(cats, func(i, j int) bool { return cats[i].Category < cats[j].Category })

	return reportData{
		Result:     result,
		Grade:      result.Summary.OverallGrade,
		Categories: cats,
	}
}

var reportTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"title": func(s string) string {
		if s == "" {
			return s
		}
		return strings.ToUpper(s[:1]) + s[1:]
	},
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Accessibility report for {{.Result.URL}}</title>
<style>
body { font-family: sans-serif; margin: 2rem auto; max-width: 60rem; color: #1a1a1a; }
h1 { font-size: 1.4rem; }
.score { font-size: 2.5rem; font-weight: bold; }
.grade { display: inline-block; padding: 0.2rem 0.8rem; border-radius: 4px; background: #eee; font-size: 1.6rem; }
table { border-collapse: collapse; width: 100%; margin: 1rem 0; }
th, td { text-align: left; padding: 0.4rem 0.6rem; border-bottom: 1px solid #ddd; }
.sev-critical { color: #a40000; font-weight: bold; }
.sev-high { color: #c4420d; }
.sev-medium { color: #8a6d00; }
.sev-low { color: #555; }
code { background: #f4f4f4; padding: 0.1rem 0.3rem; word-break: break-all; }
footer { margin-top: 2rem; color: #777; font-size: 0.85rem; }
</style>
</head>
<body>
<h1>Accessibility report for {{.Result.URL}}</h1>
<p><span class="score">{{printf "%.1f" .Result.TotalScore}}</span> / 100
<span class="grade">{{.Grade}}</span></p>
<p>{{.Result.Summary.TotalIssues}} issues found
({{.Result.Summary.CriticalIssues}} critical) across
{{.Result.Summary.CategoriesChecked}} categories.</p>

<h2>Category scores</h2>
<table>
<tr><th>Category</th><th>Score</th><th>Issues</th><th>Checks passed</th></tr>
{{range .Categories}}
<tr>
<td>{{title (printf "%s" .Category)}}</td>
<td>{{printf "%.1f" .Score}}</td>
<td>{{.IssuesCount}}</td>
<td>{{.PassedChecks}}/{{.TotalChecks}}</td>
</tr>
{{end}}
</table>

<h2>Issues</h2>
{{if .Result.Issues}}
<table>
<tr><th>Severity</th><th>Category</th><th>Finding</th><th>Recommendation</th></tr>
{{range .Result.Issues}}
<tr>
<td class="sev-{{.Severity}}">{{.Severity}}</td>
<td>{{.Category}}</td>
<td>{{.Message}}{{if .Element}}<br><code>{{.Element}}</code>{{end}}{{if .WCAGReference}}<br><small>{{.WCAGReference}}</small>{{end}}</td>
<td>{{.Recommendation}}</td>
</tr>
{{end}}
</table>
{{else}}
<p>No issues found.</p>
{{end}}

<footer>Run {{.Result.RunID}} · checked {{.Result.CheckedAt.Format "2006-01-02 15:04:05 MST"}} · {{printf "%.1f" .Result.CheckDuration}}s</footer>
</body>
</html>
`))
