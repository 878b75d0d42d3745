package scoring

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/a11ycheck/a11ycheck/internal/accessibility"
)

func newEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine(Config{})
	require.NoError(t, err)
	return e
}

func TestNewEngineRejectsBadWeights(t *testing.T) {
	t.Parallel()

	_, err := NewEngine(Config{Weights: map[accessibility.Category]float64{
		accessibility.CategoryARIA: -1,
	}})
	require.Error(t, err)

	_, err = NewEngine(Config{Weights: map[accessibility.Category]float64{
		accessibility.CategoryARIA: 0,
	}})
	require.Error(t, err)
}

func TestNewEngineRejectsBadPenaltiesAndGrades(t *testing.T) {
	t.Parallel()

	_, err := NewEngine(Config{Penalties: map[accessibility.Severity]float64{
		accessibility.SeverityHigh: -2,
	}})
	require.Error(t, err)

	_, err = NewEngine(Config{Grades: map[string]float64{"A": 120}})
	require.Error(t, err)

	_, err = NewEngine(Config{Grades: map[string]float64{"": 50}})
	require.Error(t, err)
}

func TestConfiguredPenaltyBands(t *testing.T) {
	t.Parallel()

	e, err := NewEngine(Config{Penalties: map[accessibility.Severity]float64{
		accessibility.SeverityCritical: 20,
		accessibility.SeverityHigh:     10,
		accessibility.SeverityMedium:   5,
		accessibility.SeverityLow:      2,
	}})
	require.NoError(t, err)

	issues := []accessibility.Issue{
		{Category: accessibility.CategoryImage, Severity: accessibility.SeverityCritical},
		{Category: accessibility.CategoryImage, Severity: accessibility.SeverityLow},
	}
	cs := e.ScoreCategory(accessibility.CategoryImage, issues, 4)
	require.Equal(t, 78.0, cs.Score)
}

func TestConfiguredGradeLadder(t *testing.T) {
	t.Parallel()

	e, err := NewEngine(Config{Grades: map[string]float64{
		"pass": 50,
		"fail": 0,
	}})
	require.NoError(t, err)

	require.Equal(t, "pass", e.Grade(50))
	require.Equal(t, "fail", e.Grade(49.9))
}

func TestPenalty(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		issue accessibility.Issue
		want  float64
	}{
		{name: "critical midpoint", issue: accessibility.Issue{Severity: accessibility.SeverityCritical}, want: 15},
		{name: "high midpoint", issue: accessibility.Issue{Severity: accessibility.SeverityHigh}, want: 7.5},
		{name: "medium midpoint", issue: accessibility.Issue{Severity: accessibility.SeverityMedium}, want: 3.5},
		{name: "low midpoint", issue: accessibility.Issue{Severity: accessibility.SeverityLow}, want: 1.5},
		{name: "explicit penalty wins", issue: accessibility.Issue{Severity: accessibility.SeverityHigh, Penalty: 9}, want: 9},
	}
	e := newEngine(t)
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, e.Penalty(tt.issue))
		})
	}
}

func TestScoreCategoryNoIssues(t *testing.T) {
	t.Parallel()

	cs := newEngine(t).ScoreCategory(accessibility.CategoryImage, nil, 4)
	require.Equal(t, 100.0, cs.Score)
	require.Equal(t, 0, cs.IssuesCount)
	require.Equal(t, 4, cs.PassedChecks)
	require.Equal(t, 4, cs.TotalChecks)
}

func TestScoreCategoryDeductsPenalties(t *testing.T) {
	t.Parallel()

	issues := []accessibility.Issue{
		{Category: accessibility.CategoryImage, Severity: accessibility.SeverityCritical},
		{Category: accessibility.CategoryImage, Severity: accessibility.SeverityLow},
		{Category: accessibility.CategoryARIA, Severity: accessibility.SeverityCritical},
	}
	cs := newEngine(t).ScoreCategory(accessibility.CategoryImage, issues, 4)
	// 100 - 15 - 1.5, the ARIA issue does not count here.
	require.Equal(t, 83.5, cs.Score)
	require.Equal(t, 2, cs.IssuesCount)
	require.Equal(t, 2, cs.PassedChecks)
}

func TestScoreCategoryClampsAtZero(t *testing.T) {
	t.Parallel()

	issues := make([]accessibility.Issue, 10)
	for i := range issues {
		issues[i] = accessibility.Issue{
			Category: accessibility.CategoryARIA,
			Severity: accessibility.SeverityCritical,
		}
	}
	cs := newEngine(t).ScoreCategory(accessibility.CategoryARIA, issues, 5)
	require.Equal(t, 0.0, cs.Score)
	require.Equal(t, 10, cs.IssuesCount)
	require.Equal(t, 0, cs.PassedChecks)
}

func TestTotalWeightsCategories(t *testing.T) {
	t.Parallel()

	e := newEngine(t)
	scores := map[accessibility.Category]accessibility.CategoryScore{}
	for _, cat := range accessibility.Categories() {
		scores[cat] = accessibility.CategoryScore{Category: cat, Score: 100}
	}
	require.Equal(t, 100.0, e.Total(scores))

	scores[accessibility.CategoryARIA] = accessibility.CategoryScore{
		Category: accessibility.CategoryARIA, Score: 0,
	}
	// ARIA is a quarter of the weight.
	require.Equal(t, 75.0, e.Total(scores))
}

func TestTotalRenormalizesSkippedCategories(t *testing.T) {
	t.Parallel()

	e := newEngine(t)
	scores := map[accessibility.Category]accessibility.CategoryScore{
		accessibility.CategoryARIA:     {Category: accessibility.CategoryARIA, Score: 80},
		accessibility.CategorySemantic: {Category: accessibility.CategorySemantic, Score: 60},
	}
	// (80*.25 + 60*.20) / .45 = 71.1
	require.Equal(t, 71.1, e.Total(scores))
}

func TestTotalEmpty(t *testing.T) {
	t.Parallel()

	require.Equal(t, 0.0, newEngine(t).Total(nil))
}

func TestGradeLadder(t *testing.T) {
	t.Parallel()

	tests := []struct {
		score float64
		want  string
	}{
		{100, "A"}, {90, "A"}, {89.9, "B"}, {80, "B"},
		{79.9, "C"}, {70, "C"}, {69.9, "D"}, {60, "D"},
		{59.9, "F"}, {0, "F"},
	}
	e := newEngine(t)
	for _, tt := range tests {
		require.Equal(t, tt.want, e.Grade(tt.score), "score %v", tt.score)
	}
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	issues := []accessibility.Issue{
		{Severity: accessibility.SeverityCritical},
		{Severity: accessibility.SeverityCritical},
		{Severity: accessibility.SeverityLow},
	}
	scores := map[accessibility.Category]accessibility.CategoryScore{
		accessibility.CategoryARIA:  {},
		accessibility.CategoryImage: {},
	}
	s := newEngine(t).Summarize(issues, scores, 85)
	require.Equal(t, 3, s.TotalIssues)
	require.Equal(t, 2, s.CriticalIssues)
	require.Equal(t, 2, s.CategoriesChecked)
	require.Equal(t, "B", s.OverallGrade)
}

func TestSortIssues(t *testing.T) {
	t.Parallel()

	issues := []accessibility.Issue{
		{Category: accessibility.CategoryVisual, Severity: accessibility.SeverityLow},
		{Category: accessibility.CategoryImage, Severity: accessibility.SeverityCritical},
		{Category: accessibility.CategoryARIA, Severity: accessibility.SeverityHigh},
		{Category: accessibility.CategoryARIA, Severity: accessibility.SeverityCritical},
	}
	SortIssues(issues)

	require.Equal(t, accessibility.SeverityCritical, issues[0].Severity)
	require.Equal(t, accessibility.CategoryARIA, issues[0].Category)
	require.Equal(t, accessibility.SeverityCritical, issues[1].Severity)
	require.Equal(t, accessibility.CategoryImage, issues[1].Category)
	require.Equal(t, accessibility.SeverityHigh, issues[2].Severity)
	require.Equal(t, accessibility.SeverityLow, issues[3].Severity)
}
