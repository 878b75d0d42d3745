// Package scoring turns checker findings into per-category and overall
// scores with letter grades.
package scoring

import (
	"fmt"
	"math"
	"sort"

	"github.com/a11ycheck/a11ycheck/internal/accessibility"
)

// Default category weights. Categories a run skips are excluded from the
// weighted average rather than scored as perfect.
var defaultWeights = map[accessibility.Category]float64{
	accessibility.CategoryARIA:     0.25,
	accessibility.CategorySemantic: 0.20,
	accessibility.CategoryImage:    0.15,
	accessibility.CategoryMedia:    0.15,
	accessibility.CategoryVisual:   0.10,
	accessibility.CategoryKeyboard: 0.15,
}

// Default severity penalty bands. An issue without an explicit penalty
// costs the midpoint of its band, keeping identical findings worth
// identical points.
var defaultPenalties = map[accessibility.Severity]float64{
	accessibility.SeverityCritical: 15.0,
	accessibility.SeverityHigh:     7.5,
	accessibility.SeverityMedium:   3.5,
	accessibility.SeverityLow:      1.5,
}

// Default grade ladder, letter keyed by its minimum total score.
var defaultGrades = map[string]float64{
	"A": 90,
	"B": 80,
	"C": 70,
	"D": 60,
	"F": 0,
}

// Config carries the tunable scoring tables. Zero value means defaults.
type Config struct {
	// Weights are per-category weights for the overall score.
	Weights map[accessibility.Category]float64
	// Penalties are per-severity point costs for issues without an
	// explicit penalty.
	Penalties map[accessibility.Severity]float64
	// Grades maps each letter to the minimum total score that earns it.
	Grades map[string]float64
}

type gradeBand struct {
	min   float64
	grade string
}

// Engine computes scores from issues. Safe for concurrent use.
type Engine struct {
	weights   map[accessibility.Category]float64
	penalties map[accessibility.Severity]float64
	bands     []gradeBand
}

// NewEngine validates the configured tables and returns an engine.
func NewEngine(cfg Config) (*Engine, error) {
	weights := cfg.Weights
	if len(weights) == 0 {
		weights = defaultWeights
	}
	var total float64
	for cat, w := range weights {
		if w < 0 {
			return nil, fmt.Errorf("weight for %s must be non-negative, got %v", cat, w)
		}
		total += w
	}
	if total <= 0 {
		return nil, fmt.Errorf("category weights must sum to a positive value")
	}

	penalties := cfg.Penalties
	if len(penalties) == 0 {
		penalties = defaultPenalties
	}
	for sev, p := range penalties {
		if p < 0 {
			return nil, fmt.Errorf("penalty for %s must be non-negative, got %v", sev, p)
		}
	}

	grades := cfg.Grades
	if len(grades) == 0 {
		grades = defaultGrades
	}
	bands := make([]gradeBand, 0, len(grades))
	for grade, min := range grades {
		if grade == "" {
			return nil, fmt.Errorf("grade letters must be non-empty")
		}
		if min < 0 || min > 100 {
			return nil, fmt.Errorf("grade threshold for %s must be in [0, 100], got %v", grade, min)
		}
		bands = append(bands, gradeBand{min: min, grade: grade})
	}
	sort.Slice(bands, func(i, j int) bool {
		if bands[i].min != bands[j].min {
			return bands[i].min > bands[j].min
		}
		return bands[i].grade < bands[j].grade
	})

	copiedWeights := make(map[accessibility.Category]float64, len(weights))
	for cat, w := range weights {
		copiedWeights[cat] = w
	}
	copiedPenalties := make(map[accessibility.Severity]float64, len(penalties))
	for sev, p := range penalties {
		copiedPenalties[sev] = p
	}

	return &Engine{
		weights:   copiedWeights,
		penalties: copiedPenalties,
		bands:     bands,
	}, nil
}

// Penalty returns the point cost of one issue.
func (e *Engine) Penalty(issue accessibility.Issue) float64 {
	if issue.Penalty > 0 {
		return issue.Penalty
	}
	if p, ok := e.penalties[issue.Severity]; ok {
		return p
	}
	return e.penalties[accessibility.SeverityMedium]
}

// ScoreCategory folds one category's issues into its 0-100 score.
// totalChecks is how many rules the checker evaluated.
func (e *Engine) ScoreCategory(cat accessibility.Category, issues []accessibility.Issue, totalChecks int) accessibility.CategoryScore {
	var deducted float64
	count := 0
	for _, issue := range issues {
		if issue.Category != cat {
			continue
		}
		deducted += e.Penalty(issue)
		count++
	}

	score := 100.0 - deducted
	if score < 0 {
		score = 0
	}

	passed := totalChecks - count
	if passed < 0 {
		passed = 0
	}

	return accessibility.CategoryScore{
		Category:     cat,
		Score:        round1(score),
		MaxScore:     100,
		IssuesCount:  count,
		PassedChecks: passed,
		TotalChecks:  totalChecks,
	}
}

// Total computes the weighted overall score from category scores. Only
// categories present in the map participate; their weights are
// renormalized so skipping a category never inflates the result.
func (e *Engine) Total(scores map[accessibility.Category]accessibility.CategoryScore) float64 {
	var weighted, weightSum float64
	for cat, cs := range scores {
		w, ok := e.weights[cat]
		if !ok || w == 0 {
			continue
		}
		weighted += cs.Score * w
		weightSum += w
	}
	if weightSum == 0 {
		return 0
	}
	return round1(weighted / weightSum)
}

// Grade maps a total score onto the configured ladder. Totals below every
// threshold take the lowest band's grade.
func (e *Engine) Grade(total float64) string {
	for _, band := range e.bands {
		if total >= band.min {
			return band.grade
		}
	}
	return e.bands[len(e.bands)-1].grade
}

// Summarize builds the report summary from the final issue list and scores.
func (e *Engine) Summarize(issues []accessibility.Issue, scores map[accessibility.Category]accessibility.CategoryScore, total float64) accessibility.Summary {
	critical := 0
	for _, issue := range issues {
		if issue.Severity == accessibility.SeverityCritical {
			critical++
		}
	}
	return accessibility.Summary{
		TotalIssues:       len(issues),
		CriticalIssues:    critical,
		CategoriesChecked: len(scores),
		OverallGrade:      e.Grade(total),
	}
}

// SortIssues orders issues by severity, most impactful first, then by
// category for a stable report layout.
func SortIssues(issues []accessibility.Issue) {
	rank := map[accessibility.Severity]int{
		accessibility.SeverityCritical: 0,
		accessibility.SeverityHigh:     1,
		accessibility.SeverityMedium:   2,
		accessibility.SeverityLow:      3,
	}
	sort.SliceStable(issues, func(i, j int) bool {
		ri, rj := rank[issues[i].Severity], rank[issues[j].Severity]
		if ri != rj {
			return ri < rj
		}
		return issues[i].Category < issues[j].Category
	})
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
