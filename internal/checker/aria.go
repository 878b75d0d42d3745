package checker

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/a11ycheck/a11ycheck/internal/accessibility"
	"github.com/a11ycheck/a11ycheck/internal/snapshot"
)

// ARIA validates WAI-ARIA usage: naming, roles, states, and landmarks.
type ARIA struct {
	validRoles    map[string]struct{}
	requiredProps map[string][]string
	booleanProps  map[string]struct{}
}

// NewARIA builds the ARIA module with its role vocabulary.
func NewARIA() *ARIA {
	roles := []string{
		// widget roles
		"button", "checkbox", "combobox", "gridcell", "link", "menuitem",
		"menuitemcheckbox", "menuitemradio", "option", "radio", "searchbox",
		"slider", "spinbutton", "switch", "tab", "textbox", "treeitem",
		// landmark roles
		"banner", "complementary", "contentinfo", "form", "main",
		"navigation", "region", "search",
		// structure and live-region roles
		"alert", "alertdialog", "application", "article", "cell",
		"columnheader", "definition", "dialog", "directory", "document",
		"figure", "group", "heading", "img", "list", "listitem", "log",
		"marquee", "math", "note", "presentation", "progressbar", "row",
		"rowgroup", "rowheader", "scrollbar", "separator", "status",
		"table", "tablist", "tabpanel", "term", "timer", "toolbar",
		"tooltip", "tree", "treegrid", "none",
	}
	valid := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		valid[r] = struct{}{}
	}

	return &ARIA{
		validRoles: valid,
		requiredProps: map[string][]string{
			"checkbox":         {"aria-checked"},
			"combobox":         {"aria-expanded"},
			"gridcell":         {"aria-selected"},
			"menuitemcheckbox": {"aria-checked"},
			"menuitemradio":    {"aria-checked"},
			"radio":            {"aria-checked"},
			"slider":           {"aria-valuemin", "aria-valuemax", "aria-valuenow"},
			"spinbutton":       {"aria-valuemin", "aria-valuemax", "aria-valuenow"},
			"switch":           {"aria-checked"},
			"tab":              {"aria-selected"},
			"treeitem":         {"aria-selected"},
		},
		booleanProps: map[string]struct{}{
			"aria-checked": {}, "aria-disabled": {}, "aria-expanded": {},
			"aria-hidden": {}, "aria-invalid": {}, "aria-pressed": {},
			"aria-readonly": {}, "aria-required": {}, "aria-selected": {},
		},
	}
}

func (c *ARIA) Category() accessibility.Category { return accessibility.CategoryARIA }

func (c *ARIA) Weight() float64 { return 0.25 }

func (c *ARIA) Rules() []Rule {
	return []Rule{
		{ID: "aria-name", Description: "Interactive controls have accessible names"},
		{ID: "aria-role", Description: "role values are valid and carry required states"},
		{ID: "aria-value", Description: "aria-* attributes have valid, non-empty values"},
		{ID: "aria-landmark", Description: "main and navigation landmarks are present"},
		{ID: "aria-hidden-focus", Description: "aria-hidden does not hide focusable content"},
		{ID: "aria-live", Description: "aria-live uses off, polite, or assertive"},
		{ID: "aria-refs", Description: "aria-describedby and aria-labelledby reference existing IDs"},
		{ID: "aria-tabindex", Description: "tabindex values parse as integers"},
		{ID: "aria-skip-link", Description: "A skip link leads to the main content"},
	}
}

func (c *ARIA) Evaluate(snap *snapshot.Snapshot) []accessibility.Issue {
	doc := snap.Doc()
	var issues []accessibility.Issue
	issues = append(issues, c.checkNames(doc)...)
	issues = append(issues, c.checkRoles(doc)...)
	issues = append(issues, c.checkAttrValues(doc)...)
	issues = append(issues, c.checkLandmarks(doc)...)
	issues = append(issues, c.checkHiddenFocusable(doc)...)
	issues = append(issues, c.checkLiveRegions(doc)...)
	issues = append(issues, c.checkIDReferences(doc)...)
	issues = append(issues, c.checkTabindex(doc)...)
	issues = append(issues, c.checkSkipLink(doc)...)
	return issues
}

func (c *ARIA) checkNames(doc *goquery.Document) []accessibility.Issue {
	var issues []accessibility.Issue
	doc.Find("button, input, select, textarea").Each(func(_ int, sel *goquery.Selection) {
		tag := goquery.NodeName(sel)
		if tag == "input" {
			typ, _ := attrTrimmed(sel, "type")
			switch strings.ToLower(typ) {
			case "hidden", "submit", "button", "reset":
				return
			}
		}
		if hasAccessibleName(sel) || hasAssociatedLabel(doc, sel) {
			return
		}
		issues = append(issues, newIssue(
			accessibility.CategoryARIA,
			accessibility.SeverityHigh,
			fmt.Sprintf("%s element has no accessible name", tag),
			fmt.Sprintf("The <%s> element needs an aria-label, aria-labelledby, or an associated label", tag),
			"Add an aria-label attribute or associate a label element",
			sel,
			"WCAG 2.1 - 4.1.2 Name, Role, Value",
		))
	})
	return issues
}

func (c *ARIA) checkRoles(doc *goquery.Document) []accessibility.Issue {
	var issues []accessibility.Issue
	doc.Find("[role]").Each(func(_ int, sel *goquery.Selection) {
		role, _ := attrTrimmed(sel, "role")
		role = strings.ToLower(role)

		if _, ok := c.validRoles[role]; !ok {
			issues = append(issues, newIssue(
				accessibility.CategoryARIA,
				accessibility.SeverityMedium,
				fmt.Sprintf("Invalid role value: %q", role),
				fmt.Sprintf("%q is not a valid ARIA role", role),
				"Use a valid ARIA role",
				sel,
				"WCAG 2.1 - 4.1.2 Name, Role, Value",
			))
			return
		}

		for _, prop := range c.requiredProps[role] {
			if v, ok := attrTrimmed(sel, prop); !ok || v == "" {
				issues = append(issues, newIssue(
					accessibility.CategoryARIA,
					accessibility.SeverityHigh,
					fmt.Sprintf("role=%q is missing required attribute %q", role, prop),
					fmt.Sprintf("Elements with the %s role must carry the %s attribute", role, prop),
					fmt.Sprintf("Add the %s attribute", prop),
					sel,
					"WCAG 2.1 - 4.1.2 Name, Role, Value",
				))
			}
		}
	})
	return issues
}

func (c *ARIA) checkAttrValues(doc *goquery.Document) []accessibility.Issue {
	var issues []accessibility.Issue
	doc.Find("*").Each(func(_ int, sel *goquery.Selection) {
		node := sel.Get(0)
		for _, attr := range node.Attr {
			name := strings.ToLower(attr.Key)
			if !strings.HasPrefix(name, "aria-") {
				continue
			}
			value := strings.TrimSpace(attr.Val)

			if value == "" {
				issues = append(issues, newIssue(
					accessibility.CategoryARIA,
					accessibility.SeverityMedium,
					fmt.Sprintf("Empty ARIA attribute: %s", name),
					fmt.Sprintf("The %s attribute needs a meaningful value", name),
					fmt.Sprintf("Set a proper value for %s or remove it", name),
					sel,
					"WCAG 2.1 - 4.1.2 Name, Role, Value",
				))
				continue
			}

			if _, isBool := c.booleanProps[name]; isBool && value != "true" && value != "false" {
				issues = append(issues, newIssue(
					accessibility.CategoryARIA,
					accessibility.SeverityMedium,
					fmt.Sprintf("Invalid ARIA boolean value: %s=%q", name, value),
					fmt.Sprintf("The %s attribute only accepts 'true' or 'false'", name),
					fmt.Sprintf("Set %s to 'true' or 'false'", name),
					sel,
					"WCAG 2.1 - 4.1.1 Parsing",
				))
			}
		}
	})
	return issues
}

func (c *ARIA) checkLandmarks(doc *goquery.Document) []accessibility.Issue {
	var issues []accessibility.Issue

	mains := doc.Find("main, [role=main]").Length()
	switch {
	case mains == 0:
		issues = append(issues, newIssue(
			accessibility.CategoryARIA,
			accessibility.SeverityMedium,
			"No main landmark found",
			"The page has no main element or role='main'",
			"Wrap the primary content in a <main> element or add role='main'",
			nil,
			"WCAG 2.1 - 2.4.1 Bypass Blocks",
		))
	case doc.Find("main").Length() > 1:
		issues = append(issues, newIssue(
			accessibility.CategoryARIA,
			accessibility.SeverityMedium,
			"Multiple main elements found",
			"A page must contain exactly one main element",
			"Keep a single main element",
			nil,
			"WCAG 2.1 - 2.4.1 Bypass Blocks",
		))
	}

	if doc.Find("nav, [role=navigation]").Length() == 0 {
		issues = append(issues, newIssue(
			accessibility.CategoryARIA,
			accessibility.SeverityLow,
			"No navigation landmark found",
			"The page has no nav element or role='navigation'",
			"Wrap navigation menus in a <nav> element or add role='navigation'",
			nil,
			"WCAG 2.1 - 2.4.1 Bypass Blocks",
		))
	}

	return issues
}

func (c *ARIA) checkHiddenFocusable(doc *goquery.Document) []accessibility.Issue {
	var issues []accessibility.Issue
	doc.Find("[aria-hidden=true]").Each(func(_ int, sel *goquery.Selection) {
		if !isFocusable(sel) {
			return
		}
		issues = append(issues, newIssue(
			accessibility.CategoryARIA,
			accessibility.SeverityHigh,
			"Focusable element has aria-hidden='true'",
			"Elements that can receive focus must not be hidden from assistive technology",
			"Remove aria-hidden='true' or add tabindex='-1'",
			sel,
			"WCAG 2.1 - 4.1.2 Name, Role, Value",
		))
	})
	return issues
}

func (c *ARIA) checkLiveRegions(doc *goquery.Document) []accessibility.Issue {
	var issues []accessibility.Issue
	doc.Find("[aria-live]").Each(func(_ int, sel *goquery.Selection) {
		value, _ := attrTrimmed(sel, "aria-live")
		switch strings.ToLower(value) {
		case "off", "polite", "assertive":
			return
		}
		issues = append(issues, newIssue(
			accessibility.CategoryARIA,
			accessibility.SeverityMedium,
			fmt.Sprintf("Invalid aria-live value: %q", value),
			"The aria-live attribute only accepts 'off', 'polite', or 'assertive'",
			"Set aria-live to 'off', 'polite', or 'assertive'",
			sel,
			"WCAG 2.1 - 4.1.3 Status Messages",
		))
	})
	return issues
}

func (c *ARIA) checkIDReferences(doc *goquery.Document) []accessibility.Issue {
	ids := make(map[string]struct{})
	doc.Find("[id]").Each(func(_ int, sel *goquery.Selection) {
		if id, ok := attrTrimmed(sel, "id"); ok && id != "" {
			ids[id] = struct{}{}
		}
	})

	var issues []accessibility.Issue
	for _, attr := range []string{"aria-describedby", "aria-labelledby"} {
		doc.Find("[" + attr + "]").Each(func(_ int, sel *goquery.Selection) {
			value, _ := attrTrimmed(sel, attr)
			for _, ref := range strings.Fields(value) {
				if _, ok := ids[ref]; ok {
					continue
				}
				issues = append(issues, newIssue(
					accessibility.CategoryARIA,
					accessibility.SeverityMedium,
					fmt.Sprintf("%s references a missing ID: %q", attr, ref),
					fmt.Sprintf("%s=%q points to an element that does not exist on the page", attr, ref),
					fmt.Sprintf("Add an element with ID %q or fix the %s value", ref, attr),
					sel,
					"WCAG 2.1 - 4.1.2 Name, Role, Value",
				))
			}
		})
	}
	return issues
}

func (c *ARIA) checkTabindex(doc *goquery.Document) []accessibility.Issue {
	var issues []accessibility.Issue
	doc.Find("[tabindex]").Each(func(_ int, sel *goquery.Selection) {
		value, _ := attrTrimmed(sel, "tabindex")
		if _, err := strconv.Atoi(value); err != nil {
			issues = append(issues, newIssue(
				accessibility.CategoryARIA,
				accessibility.SeverityMedium,
				fmt.Sprintf("Invalid tabindex value: %q", value),
				"tabindex values must be integers",
				"Set tabindex to an integer value",
				sel,
				"WCAG 2.1 - 4.1.1 Parsing",
			))
		}
	})
	return issues
}

func (c *ARIA) checkSkipLink(doc *goquery.Document) []accessibility.Issue {
	hasSkipLink := false
	doc.Find(`a[href^="#"]`).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href, _ := attrTrimmed(sel, "href")
		text := strings.ToLower(strings.TrimSpace(sel.Text()))
		if strings.Contains(text, "skip") || strings.Contains(strings.ToLower(href), "main") {
			hasSkipLink = true
			return false
		}
		return true
	})
	if hasSkipLink {
		return nil
	}
	return []accessibility.Issue{newIssue(
		accessibility.CategoryARIA,
		accessibility.SeverityLow,
		"No skip link found",
		"The page start needs a link that jumps to the main content",
		"Add a 'skip to main content' link at the top of the page",
		nil,
		"WCAG 2.1 - 2.4.1 Bypass Blocks",
	)}
}

// hasAssociatedLabel reports whether a form control is named by a label
// element, either wrapping it or referencing its ID.
func hasAssociatedLabel(doc *goquery.Document, sel *goquery.Selection) bool {
	if sel.ParentsFiltered("label").Length() > 0 {
		return true
	}
	id, ok := attrTrimmed(sel, "id")
	if !ok || id == "" {
		return false
	}
	found := false
	doc.Find("label[for]").EachWithBreak(func(_ int, label *goquery.Selection) bool {
		if forID, _ := attrTrimmed(label, "for"); forID == id {
			found = true
			return false
		}
		return true
	})
	return found
}
