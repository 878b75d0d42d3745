package checker

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/a11ycheck/a11ycheck/internal/accessibility"
)

func TestARIACleanPageHasNoIssues(t *testing.T) {
	t.Parallel()

	snap := mustSnapshot(t, `<!DOCTYPE html>
<html lang="en"><head><title>Accessible example page</title></head><body>
<a href="#main-content">Skip to main content</a>
<nav><a href="/about">About our company</a></nav>
<main id="main-content">
  <h1>Welcome</h1>
  <button aria-label="Close dialog">X</button>
</main>
</body></html>`)

	issues := NewARIA().Evaluate(snap)
	require.Empty(t, issues)
}

func TestARIAUnnamedControls(t *testing.T) {
	t.Parallel()

	snap := mustSnapshot(t, `<body>
<button></button>
<input type="text">
<input type="submit" value="Go">
<select aria-label="Country"><option>NZ</option></select>
<label>Name <input type="email"></label>
</body>`)

	issues := withMessage(NewARIA().Evaluate(snap), "no accessible name")
	require.Len(t, issues, 2)
	for _, issue := range issues {
		require.Equal(t, accessibility.CategoryARIA, issue.Category)
		require.Equal(t, accessibility.SeverityHigh, issue.Severity)
	}
}

func TestARIARoleValidation(t *testing.T) {
	t.Parallel()

	snap := mustSnapshot(t, `<body>
<div role="buton">Save</div>
<div role="slider" tabindex="0" aria-label="Volume"></div>
<div role="checkbox" aria-checked="true" tabindex="0" aria-label="Agree"></div>
</body>`)

	issues := NewARIA().Evaluate(snap)
	require.Len(t, withMessage(issues, `Invalid role value: "buton"`), 1)
	// Slider needs valuemin, valuemax, and valuenow.
	require.Len(t, withMessage(issues, "missing required attribute"), 3)
}

func TestARIAAttributeValues(t *testing.T) {
	t.Parallel()

	snap := mustSnapshot(t, `<body>
<div aria-label="">Card</div>
<button aria-expanded="maybe">Menu</button>
<button aria-pressed="true">Bold</button>
</body>`)

	issues := NewARIA().Evaluate(snap)
	require.Len(t, withMessage(issues, "Empty ARIA attribute"), 1)

	invalid := withMessage(issues, "Invalid ARIA boolean value")
	require.Len(t, invalid, 1)
	require.Contains(t, invalid[0].Message, "aria-expanded")
}

func TestARIALandmarks(t *testing.T) {
	t.Parallel()

	snap := mustSnapshot(t, `<body><p>Just text</p></body>`)
	issues := NewARIA().Evaluate(snap)
	require.Len(t, withMessage(issues, "No main landmark"), 1)
	require.Len(t, withMessage(issues, "No navigation landmark"), 1)

	snap = mustSnapshot(t, `<body><nav></nav><main>One</main><main>Two</main></body>`)
	issues = NewARIA().Evaluate(snap)
	require.Len(t, withMessage(issues, "Multiple main elements"), 1)
}

func TestARIAHiddenFocusable(t *testing.T) {
	t.Parallel()

	snap := mustSnapshot(t, `<body>
<a href="/offer" aria-hidden="true">Hidden offer</a>
<a href="/other" aria-hidden="true" tabindex="-1">Properly removed</a>
</body>`)

	issues := withMessage(NewARIA().Evaluate(snap), "aria-hidden")
	require.Len(t, issues, 1)
	require.Equal(t, accessibility.SeverityHigh, issues[0].Severity)
}

func TestARIALiveRegionValues(t *testing.T) {
	t.Parallel()

	snap := mustSnapshot(t, `<body>
<div aria-live="polite">Status</div>
<div aria-live="loud">Alert</div>
</body>`)

	issues := withMessage(NewARIA().Evaluate(snap), "Invalid aria-live value")
	require.Len(t, issues, 1)
	require.Contains(t, issues[0].Message, "loud")
}

func TestARIADanglingIDReferences(t *testing.T) {
	t.Parallel()

	snap := mustSnapshot(t, `<body>
<p id="hint">Use your work email.</p>
<input type="email" aria-label="Email" aria-describedby="hint missing-id">
</body>`)

	issues := withMessage(NewARIA().Evaluate(snap), "missing ID")
	require.Len(t, issues, 1)
	require.Contains(t, issues[0].Message, "missing-id")
}

func TestARIATabindexMustParse(t *testing.T) {
	t.Parallel()

	snap := mustSnapshot(t, `<body>
<div tabindex="first">Bad</div>
<div tabindex="2">Legal here</div>
</body>`)

	issues := withMessage(NewARIA().Evaluate(snap), "Invalid tabindex")
	require.Len(t, issues, 1)
}

func TestARIASkipLink(t *testing.T) {
	t.Parallel()

	snap := mustSnapshot(t, `<body><nav></nav><main><h1>Hi</h1></main></body>`)
	require.Len(t, withMessage(NewARIA().Evaluate(snap), "No skip link"), 1)

	snap = mustSnapshot(t, `<body>
<a href="#content">Skip navigation</a>
<nav></nav><main id="content"><h1>Hi</h1></main>
</body>`)
	require.Empty(t, withMessage(NewARIA().Evaluate(snap), "No skip link"))
}
