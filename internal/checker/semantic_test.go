package checker

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/a11ycheck/a11ycheck/internal/accessibility"
)

func TestSemanticHeadingLevelSkip(t *testing.T) {
	t.Parallel()

	snap := mustSnapshot(t, `<body><main>
<h1>Annual report</h1>
<h3>Financials</h3>
</main></body>`)

	issues := withMessage(NewSemantic().Evaluate(snap), "Heading level skip")
	require.Len(t, issues, 1)
	require.Equal(t, accessibility.CategorySemantic, issues[0].Category)
	require.Contains(t, issues[0].Message, "h1 followed by h3")
}

func TestSemanticHeadingPresence(t *testing.T) {
	t.Parallel()

	snap := mustSnapshot(t, `<body><main><p>No headings at all.</p></main></body>`)
	require.Len(t, withMessage(NewSemantic().Evaluate(snap), "No heading elements"), 1)

	snap = mustSnapshot(t, `<body><main>
<h2>Section</h2>
<h1>First</h1>
<h1>Second</h1>
<h2></h2>
</main></body>`)
	issues := NewSemantic().Evaluate(snap)
	require.Len(t, withMessage(issues, "Multiple h1 elements"), 1)
	require.Len(t, withMessage(issues, "Empty heading"), 1)
}

func TestSemanticLists(t *testing.T) {
	t.Parallel()

	snap := mustSnapshot(t, `<body><main><h1>Lists</h1>
<ul><div>not a list item</div><li>ok</li></ul>
<ol></ol>
<dl><dt>Term</dt></dl>
<ul><li>fine</li></ul>
</main></body>`)

	issues := NewSemantic().Evaluate(snap)
	require.Len(t, withMessage(issues, "non-li direct children"), 1)
	require.Len(t, withMessage(issues, "Empty ol element"), 1)
	require.Len(t, withMessage(issues, "dl element is missing"), 1)
}

func TestSemanticTables(t *testing.T) {
	t.Parallel()

	snap := mustSnapshot(t, `<body><main><h1>Data</h1>
<table><tr><td>1</td><td>2</td></tr></table>
</main></body>`)

	issues := NewSemantic().Evaluate(snap)
	require.Len(t, withMessage(issues, "Table has no caption"), 1)
	require.Len(t, withMessage(issues, "Table has no header cells"), 1)
	require.Len(t, withMessage(issues, "used for layout"), 1)

	snap = mustSnapshot(t, `<body><main><h1>Data</h1>
<table>
<caption>Quarterly revenue</caption>
<tr><th scope="col">Quarter</th><th>Revenue</th></tr>
<tr><td>Q1</td><td>10</td></tr>
</table>
</main></body>`)

	issues = NewSemantic().Evaluate(snap)
	require.Empty(t, withMessage(issues, "Table has no caption"))
	scoped := withMessage(issues, "no scope attribute")
	require.Len(t, scoped, 1)
}

func TestSemanticForms(t *testing.T) {
	t.Parallel()

	snap := mustSnapshot(t, `<body><main><h1>Sign up</h1>
<form>
  <input type="text" name="a">
  <label for="b">Email</label><input type="email" id="b">
  <input type="password" name="c" aria-label="Password">
  <input type="text" name="d" aria-label="Nickname">
</form>
</main></body>`)

	issues := NewSemantic().Evaluate(snap)
	require.Len(t, withMessage(issues, "no fieldset grouping"), 1)
	require.Len(t, withMessage(issues, "no associated label"), 1)
}

func TestSemanticRequiredIndicator(t *testing.T) {
	t.Parallel()

	snap := mustSnapshot(t, `<body><main><h1>Form</h1>
<div><label for="a">Name</label><input type="text" id="a" required></div>
<div><label for="b">Email *</label><input type="email" id="b" required></div>
<div><label for="c">Phone</label><input type="tel" id="c" required aria-required="true"></div>
</main></body>`)

	issues := withMessage(NewSemantic().Evaluate(snap), "Required field")
	require.Len(t, issues, 1)
}

func TestSemanticLinkText(t *testing.T) {
	t.Parallel()

	snap := mustSnapshot(t, `<body><main><h1>Links</h1>
<a href="/pricing">Click here</a>
<a href="/report"></a>
<a href="/logo"><img src="logo.png" alt="Company home"></a>
<a href="/docs">Read the installation guide</a>
</main></body>`)

	issues := NewSemantic().Evaluate(snap)

	vague := withMessage(issues, "Vague link text")
	require.Len(t, vague, 1)
	require.Equal(t, accessibility.SeverityMedium, vague[0].Severity)

	empty := withMessage(issues, "Empty link text")
	require.Len(t, empty, 1)
	require.Equal(t, accessibility.SeverityHigh, empty[0].Severity)
}

func TestSemanticLanguage(t *testing.T) {
	t.Parallel()

	snap := mustSnapshot(t, `<html><body><main><h1>Hi there</h1></main></body></html>`)
	require.Len(t, withMessage(NewSemantic().Evaluate(snap), "no lang attribute"), 1)

	snap = mustSnapshot(t, `<html lang="e"><body><main><h1>Hi there</h1></main></body></html>`)
	require.Len(t, withMessage(NewSemantic().Evaluate(snap), "Invalid lang attribute"), 1)

	snap = mustSnapshot(t, `<html lang="en-US"><body><main><h1>Hi there</h1></main></body></html>`)
	issues := NewSemantic().Evaluate(snap)
	require.Empty(t, withMessage(issues, "lang attribute"))
}

func TestSemanticTitle(t *testing.T) {
	t.Parallel()

	snap := mustSnapshot(t, `<html lang="en"><head></head><body><main><h1>Hi</h1></main></body></html>`)
	require.Len(t, withMessage(NewSemantic().Evaluate(snap), "Missing title element"), 1)

	snap = mustSnapshot(t, `<html lang="en"><head><title>Hi</title></head><body><main><h1>Hi</h1></main></body></html>`)
	issues := withMessage(NewSemantic().Evaluate(snap), "very short")
	require.Len(t, issues, 1)
	require.Equal(t, accessibility.SeverityLow, issues[0].Severity)
}

func TestSemanticDivSoup(t *testing.T) {
	t.Parallel()

	snap := mustSnapshot(t, `<body><main><h1>Page</h1>
<div class="site-header">top</div>
<div class="nav-menu">menu</div>
<div class="content">body</div>
</main></body>`)

	issues := withMessage(NewSemantic().Evaluate(snap), "could use semantic tags")
	require.Len(t, issues, 1)
	require.Contains(t, issues[0].Message, "2 div elements")
}
