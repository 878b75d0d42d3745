// Package accessibility defines core types shared across subsystems.
package accessibility

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Severity ranks how strongly an issue impacts users of assistive technology.
type Severity string

// Severity values carried on every issue.
const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Category identifies the checker module that owns an issue.
type Category string

// The closed set of checker categories.
const (
	CategoryARIA     Category = "aria"
	CategorySemantic Category = "semantic"
	CategoryImage    Category = "image"
	CategoryMedia    Category = "media"
	CategoryVisual   Category = "visual"
	CategoryKeyboard Category = "keyboard"
)

// Categories returns every category in stable evaluation order.
func Categories() []Category {
	return []Category{
		CategoryARIA,
		CategorySemantic,
		CategoryImage,
		CategoryMedia,
		CategoryVisual,
		CategoryKeyboard,
	}
}

// Issue is one discrete accessibility finding with remediation guidance.
// Issues are immutable once emitted by a checker.
type Issue struct {
	Category       Category `json:"type"`
	Severity       Severity `json:"severity"`
	Message        string   `json:"message"`
	Description    string   `json:"description"`
	Element        string   `json:"element,omitempty"`
	Line           int      `json:"line_number,omitempty"`
	Recommendation string   `json:"recommendation"`
	WCAGReference  string   `json:"wcag_reference,omitempty"`

	// Penalty overrides the configured severity-band midpoint when a rule
	// knows its own magnitude. Zero means "use the band midpoint".
	Penalty float64 `json:"-"`
}

// CategoryScore aggregates one category's findings into a 0-100 score.
type CategoryScore struct {
	Category     Category `json:"category"`
	Score        float64  `json:"score"`
	MaxScore     float64  `json:"max_score"`
	IssuesCount  int      `json:"issues_count"`
	PassedChecks int      `json:"passed_checks"`
	TotalChecks  int      `json:"total_checks"`
}

// Summary condenses a check run for dashboards and exports.
type Summary struct {
	TotalIssues       int    `json:"total_issues"`
	CriticalIssues    int    `json:"critical_issues"`
	CategoriesChecked int    `json:"categories_checked"`
	OverallGrade      string `json:"overall_grade"`
}

// CheckResult is the immutable unit stored in the cache and handed to
// export collaborators.
type CheckResult struct {
	RunID          string                     `json:"run_id"`
	URL            string                     `json:"url"`
	TotalScore     float64                    `json:"total_score"`
	CategoryScores map[Category]CategoryScore `json:"category_scores"`
	Issues         []Issue                    `json:"issues"`
	Summary        Summary                    `json:"summary"`
	CheckedAt      time.Time                  `json:"checked_at"`
	CheckDuration  float64                    `json:"check_duration"`
}

// CheckOptions are supplied by the caller per request and never mutated by
// the engine. A nil Categories map enables every registered category.
type CheckOptions struct {
	Categories         map[Category]bool `json:"categories,omitempty"`
	IncludeScreenshots bool              `json:"include_screenshots"`
	WaitTime           int               `json:"wait_time"`
}

// Enabled reports whether the given category should be evaluated.
func (o CheckOptions) Enabled(cat Category) bool {
	if o.Categories == nil {
		return true
	}
	enabled, ok := o.Categories[cat]
	return ok && enabled
}

// WaitDuration converts the settle budget into a duration, applying the
// fallback when the caller left it unset.
func (o CheckOptions) WaitDuration(fallback time.Duration) time.Duration {
	if o.WaitTime <= 0 {
		return fallback
	}
	return time.Duration(o.WaitTime) * time.Second
}

// Fingerprint serializes the options canonically so equivalent requests
// produce identical cache keys regardless of map ordering.
func (o CheckOptions) Fingerprint() string {
	var b strings.Builder
	if o.Categories == nil {
		b.WriteString("cats=all")
	} else {
		keys := make([]string, 0, len(o.Categories))
		for cat := range o.Categories {
			keys = append(keys, string(cat))
		}
		sort.Strings(keys)
		b.WriteString("cats=")
		for i, k := range keys {
			if i > 0 {
				b.WriteByte(',')
			}
			fmt.Fprintf(&b, "%s:%t", k, o.Categories[Category(k)])
		}
	}
	fmt.Fprintf(&b, ";screenshots=%t;wait=%d", o.IncludeScreenshots, o.WaitTime)
	return b.String()
}
