package checker

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/a11ycheck/a11ycheck/internal/accessibility"
	"github.com/a11ycheck/a11ycheck/internal/snapshot"
)

// newIssue builds a finding with the element excerpt filled in.
func newIssue(cat accessibility.Category, sev accessibility.Severity, msg, desc, rec string, sel *goquery.Selection, wcag string) accessibility.Issue {
	return accessibility.Issue{
		Category:       cat,
		Severity:       sev,
		Message:        msg,
		Description:    desc,
		Recommendation: rec,
		Element:        snapshot.Excerpt(sel),
		WCAGReference:  wcag,
	}
}

// interactiveSelector matches natively focusable, operable elements.
const interactiveSelector = "a[href], button, input, select, textarea, [role=button], [role=link], [role=checkbox], [role=menuitem], [role=tab]"

// hasAccessibleName reports whether assistive technology can derive a name
// for the element from its content or naming attributes.
func hasAccessibleName(sel *goquery.Selection) bool {
	if strings.TrimSpace(sel.Text()) != "" {
		return true
	}
	for _, attr := range []string{"aria-label", "aria-labelledby", "title"} {
		if v, ok := sel.Attr(attr); ok && strings.TrimSpace(v) != "" {
			return true
		}
	}
	// Inputs can be named by value or an associated label.
	if goquery.NodeName(sel) == "input" {
		if v, ok := sel.Attr("value"); ok && strings.TrimSpace(v) != "" {
			typ, _ := sel.Attr("type")
			switch strings.ToLower(typ) {
			case "submit", "reset", "button":
				return true
			}
		}
		if v, ok := sel.Attr("alt"); ok && strings.TrimSpace(v) != "" {
			return true
		}
	}
	// An image child with alt names a link or button.
	named := false
	sel.Find("img[alt]").EachWithBreak(func(_ int, img *goquery.Selection) bool {
		if alt, _ := img.Attr("alt"); strings.TrimSpace(alt) != "" {
			named = true
			return false
		}
		return true
	})
	if named {
		return true
	}
	// Likewise an svg child with an accessible title.
	sel.Find("svg").EachWithBreak(func(_ int, svg *goquery.Selection) bool {
		if l, ok := svg.Attr("aria-label"); ok && strings.TrimSpace(l) != "" {
			named = true
			return false
		}
		if strings.TrimSpace(svg.Find("title").Text()) != "" {
			named = true
			return false
		}
		return true
	})
	return named
}

// isFocusable reports whether the element participates in tab order.
func isFocusable(sel *goquery.Selection) bool {
	if tab, ok := sel.Attr("tabindex"); ok {
		if n, err := strconv.Atoi(strings.TrimSpace(tab)); err == nil {
			return n >= 0
		}
		return false
	}
	switch goquery.NodeName(sel) {
	case "a":
		_, hasHref := sel.Attr("href")
		return hasHref
	case "button", "input", "select", "textarea", "summary":
		return true
	}
	return false
}

// attrTrimmed returns a whitespace-trimmed attribute value.
func attrTrimmed(sel *goquery.Selection, name string) (string, bool) {
	v, ok := sel.Attr(name)
	return strings.TrimSpace(v), ok
}

// hasAnyAttr reports whether any of the named attributes is present with a
// non-empty value.
func hasAnyAttr(sel *goquery.Selection, names ...string) bool {
	for _, name := range names {
		if v, ok := attrTrimmed(sel, name); ok && v != "" {
			return true
		}
	}
	return false
}
