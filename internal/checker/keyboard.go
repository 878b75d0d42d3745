package checker

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/a11ycheck/a11ycheck/internal/accessibility"
	"github.com/a11ycheck/a11ycheck/internal/snapshot"
)

// Keyboard validates that every interactive element is reachable and
// operable without a pointer.
type Keyboard struct{}

// NewKeyboard builds the keyboard operability module.
func NewKeyboard() *Keyboard { return &Keyboard{} }

func (c *Keyboard) Category() accessibility.Category { return accessibility.CategoryKeyboard }

func (c *Keyboard) Weight() float64 { return 0.15 }

func (c *Keyboard) Rules() []Rule {
	return []Rule{
		{ID: "keyboard-tabindex-positive", Description: "No positive tabindex values disrupt natural tab order"},
		{ID: "keyboard-tabindex-negative", Description: "Native controls are not removed from tab order"},
		{ID: "keyboard-mouse-only", Description: "Click targets are operable from the keyboard"},
		{ID: "keyboard-focus-trap", Description: "Focus is never forcibly held on an element"},
		{ID: "keyboard-accesskey", Description: "Access keys are unique"},
		{ID: "keyboard-hidden-interactive", Description: "Interactive elements are not hidden from assistive technology"},
	}
}

func (c *Keyboard) Evaluate(snap *snapshot.Snapshot) []accessibility.Issue {
	doc := snap.Doc()
	var issues []accessibility.Issue
	issues = append(issues, c.checkTabindex(doc)...)
	issues = append(issues, c.checkMouseOnlyHandlers(doc)...)
	issues = append(issues, c.checkFocusTraps(doc)...)
	issues = append(issues, c.checkAccessKeys(doc)...)
	issues = append(issues, c.checkHiddenInteractive(doc)...)
	return issues
}

func (c *Keyboard) checkTabindex(doc *goquery.Document) []accessibility.Issue {
	var issues []accessibility.Issue
	doc.Find("[tabindex]").Each(func(_ int, sel *goquery.Selection) {
		raw, _ := attrTrimmed(sel, "tabindex")
		n, err := strconv.Atoi(raw)
		if err != nil {
			return
		}

		if n > 0 {
			issues = append(issues, newIssue(
				accessibility.CategoryKeyboard,
				accessibility.SeverityMedium,
				fmt.Sprintf("Positive tabindex value: %d", n),
				"Positive tabindex values override the natural tab order and confuse keyboard navigation",
				"Use tabindex=0 and rely on document order",
				sel,
				"WCAG 2.1 - 2.4.3 Focus Order",
			))
			return
		}

		if n < 0 && isNativelyInteractive(sel) {
			issues = append(issues, newIssue(
				accessibility.CategoryKeyboard,
				accessibility.SeverityHigh,
				fmt.Sprintf("%s removed from tab order", goquery.NodeName(sel)),
				"A negative tabindex makes the native control unreachable by keyboard",
				"Remove the tabindex attribute or set it to 0",
				sel,
				"WCAG 2.1 - 2.1.1 Keyboard",
			))
		}
	})
	return issues
}

var keyHandlerAttrs = []string{"onkeydown", "onkeyup", "onkeypress"}

func (c *Keyboard) checkMouseOnlyHandlers(doc *goquery.Document) []accessibility.Issue {
	var issues []accessibility.Issue
	selector := "[onclick], [onmousedown], [onmouseup], [ondblclick]"
	doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
		if isNativelyInteractive(sel) {
			return
		}
		if _, ok := sel.Attr("role"); ok {
			if isFocusable(sel) {
				return
			}
		}
		if hasAnyAttr(sel, keyHandlerAttrs...) && isFocusable(sel) {
			return
		}
		issues = append(issues, newIssue(
			accessibility.CategoryKeyboard,
			accessibility.SeverityHigh,
			fmt.Sprintf("Mouse-only click target: %s", goquery.NodeName(sel)),
			"The element handles pointer events but cannot be reached or activated by keyboard",
			"Use a button, or add tabindex=0, an appropriate role, and a key handler",
			sel,
			"WCAG 2.1 - 2.1.1 Keyboard",
		))
	})
	return issues
}

func (c *Keyboard) checkFocusTraps(doc *goquery.Document) []accessibility.Issue {
	var issues []accessibility.Issue
	doc.Find("[onblur]").Each(func(_ int, sel *goquery.Selection) {
		handler, _ := sel.Attr("onblur")
		if !strings.Contains(strings.ToLower(handler), "focus") {
			return
		}
		issues = append(issues, newIssue(
			accessibility.CategoryKeyboard,
			accessibility.SeverityHigh,
			"Element refocuses itself on blur",
			"Re-focusing on blur traps keyboard users on the element",
			"Remove the blur handler; validate without stealing focus",
			sel,
			"WCAG 2.1 - 2.1.2 No Keyboard Trap",
		))
	})
	return issues
}

func (c *Keyboard) checkAccessKeys(doc *goquery.Document) []accessibility.Issue {
	var issues []accessibility.Issue
	seen := make(map[string]bool)
	doc.Find("[accesskey]").Each(func(_ int, sel *goquery.Selection) {
		key, _ := attrTrimmed(sel, "accesskey")
		key = strings.ToLower(key)
		if key == "" {
			return
		}
		if seen[key] {
			issues = append(issues, newIssue(
				accessibility.CategoryKeyboard,
				accessibility.SeverityMedium,
				fmt.Sprintf("Duplicate accesskey %q", key),
				"Multiple elements share the same access key, so only one can be reached",
				"Assign each access key to a single element",
				sel,
				"WCAG 2.1 - 2.1.1 Keyboard",
			))
			return
		}
		seen[key] = true
	})
	return issues
}

func (c *Keyboard) checkHiddenInteractive(doc *goquery.Document) []accessibility.Issue {
	var issues []accessibility.Issue
	doc.Find("[aria-hidden=true]").Each(func(_ int, hidden *goquery.Selection) {
		// Elements inside a hidden subtree stay focusable unless each one
		// also opts out of tab order.
		hidden.Find(interactiveSelector).Each(func(_ int, sel *goquery.Selection) {
			if !isFocusable(sel) {
				return
			}
			issues = append(issues, newIssue(
				accessibility.CategoryKeyboard,
				accessibility.SeverityHigh,
				fmt.Sprintf("Focusable %s inside aria-hidden subtree", goquery.NodeName(sel)),
				"Keyboard focus can land on content that assistive technology cannot announce",
				"Add tabindex=-1 to focusable descendants of aria-hidden containers, or unhide the subtree",
				sel,
				"WCAG 2.1 - 4.1.2 Name, Role, Value",
			))
		})
	})
	return issues
}

// isNativelyInteractive reports whether the element is interactive by its
// tag alone, ignoring tabindex.
func isNativelyInteractive(sel *goquery.Selection) bool {
	switch goquery.NodeName(sel) {
	case "a":
		_, hasHref := sel.Attr("href")
		return hasHref
	case "button", "input", "select", "textarea", "summary":
		return true
	}
	return false
}
