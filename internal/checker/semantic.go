package checker

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/a11ycheck/a11ycheck/internal/accessibility"
	"github.com/a11ycheck/a11ycheck/internal/snapshot"
)

// Semantic validates document structure: headings, landmarks, lists,
// tables, forms, links, language, and title.
type Semantic struct{}

// NewSemantic builds the semantic structure module.
func NewSemantic() *Semantic { return &Semantic{} }

func (c *Semantic) Category() accessibility.Category { return accessibility.CategorySemantic }

func (c *Semantic) Weight() float64 { return 0.20 }

func (c *Semantic) Rules() []Rule {
	return []Rule{
		{ID: "semantic-structure", Description: "Document has html, head, and body elements"},
		{ID: "semantic-headings", Description: "Headings exist, start at h1, and do not skip levels"},
		{ID: "semantic-landmarks", Description: "Semantic landmarks are used instead of class-named divs"},
		{ID: "semantic-lists", Description: "Lists contain only li children and dl elements pair dt with dd"},
		{ID: "semantic-tables", Description: "Data tables carry captions and scoped header cells"},
		{ID: "semantic-forms", Description: "Form controls are labelled and large forms grouped"},
		{ID: "semantic-links", Description: "Link text describes the link purpose"},
		{ID: "semantic-lang", Description: "The html element declares a valid language"},
		{ID: "semantic-title", Description: "The page has a descriptive title"},
	}
}

func (c *Semantic) Evaluate(snap *snapshot.Snapshot) []accessibility.Issue {
	doc := snap.Doc()
	var issues []accessibility.Issue
	issues = append(issues, c.checkStructure(doc)...)
	issues = append(issues, c.checkHeadings(doc)...)
	issues = append(issues, c.checkLandmarkUsage(doc)...)
	issues = append(issues, c.checkLists(doc)...)
	issues = append(issues, c.checkTables(doc)...)
	issues = append(issues, c.checkForms(doc)...)
	issues = append(issues, c.checkLinks(doc)...)
	issues = append(issues, c.checkLanguage(doc)...)
	issues = append(issues, c.checkTitle(doc)...)
	return issues
}

func (c *Semantic) checkStructure(doc *goquery.Document) []accessibility.Issue {
	var issues []accessibility.Issue
	for _, tag := range []string{"html", "head", "body"} {
		if doc.Find(tag).Length() > 0 {
			continue
		}
		issues = append(issues, newIssue(
			accessibility.CategorySemantic,
			accessibility.SeverityHigh,
			fmt.Sprintf("Missing %s element", tag),
			fmt.Sprintf("The document has no <%s> element", tag),
			fmt.Sprintf("Add a <%s> element to the document", tag),
			nil,
			"WCAG 2.1 - 4.1.1 Parsing",
		))
	}
	return issues
}

func (c *Semantic) checkHeadings(doc *goquery.Document) []accessibility.Issue {
	var issues []accessibility.Issue

	headings := doc.Find("h1, h2, h3, h4, h5, h6")
	if headings.Length() == 0 {
		return []accessibility.Issue{newIssue(
			accessibility.CategorySemantic,
			accessibility.SeverityMedium,
			"No heading elements found",
			"The page has no heading elements (h1-h6)",
			"Add headings that reflect the content structure",
			nil,
			"WCAG 2.1 - 2.4.6 Headings and Labels",
		)}
	}

	h1Count := doc.Find("h1").Length()
	if h1Count == 0 {
		issues = append(issues, newIssue(
			accessibility.CategorySemantic,
			accessibility.SeverityMedium,
			"No h1 element found",
			"The page has no h1 element",
			"Add an h1 element as the page's primary heading",
			nil,
			"WCAG 2.1 - 2.4.6 Headings and Labels",
		))
	} else if h1Count > 1 {
		issues = append(issues, newIssue(
			accessibility.CategorySemantic,
			accessibility.SeverityLow,
			"Multiple h1 elements found",
			fmt.Sprintf("The page has %d h1 elements", h1Count),
			"Use a single h1 element per page",
			nil,
			"WCAG 2.1 - 2.4.6 Headings and Labels",
		))
	}

	prevLevel := 0
	headings.Each(func(_ int, sel *goquery.Selection) {
		name := goquery.NodeName(sel)
		level, err := strconv.Atoi(strings.TrimPrefix(name, "h"))
		if err != nil {
			return
		}

		if strings.TrimSpace(sel.Text()) == "" {
			issues = append(issues, newIssue(
				accessibility.CategorySemantic,
				accessibility.SeverityMedium,
				fmt.Sprintf("Empty heading: %s", name),
				fmt.Sprintf("The %s element has no text content", name),
				"Add meaningful text to the heading",
				sel,
				"WCAG 2.1 - 2.4.6 Headings and Labels",
			))
		}

		if prevLevel > 0 && level > prevLevel+1 {
			issues = append(issues, newIssue(
				accessibility.CategorySemantic,
				accessibility.SeverityLow,
				fmt.Sprintf("Heading level skip: h%d followed by h%d", prevLevel, level),
				"Heading levels must increase one step at a time",
				fmt.Sprintf("Use h%d or adjust the preceding heading level", prevLevel+1),
				sel,
				"WCAG 2.1 - 2.4.6 Headings and Labels",
			))
		}
		prevLevel = level
	})

	return issues
}

func (c *Semantic) checkLandmarkUsage(doc *goquery.Document) []accessibility.Issue {
	var issues []accessibility.Issue

	if doc.Find("main").Length() == 0 {
		issues = append(issues, newIssue(
			accessibility.CategorySemantic,
			accessibility.SeverityMedium,
			"Missing main element",
			"The page has no <main> element",
			"Wrap the primary content in a <main> element",
			nil,
			"WCAG 2.1 - 2.4.1 Bypass Blocks",
		))
	}

	// Nested header/footer inside articles and sections is fine; only
	// page-level duplicates are flagged.
	for _, tag := range []string{"main", "header", "footer"} {
		pageLevel := 0
		doc.Find(tag).Each(func(_ int, sel *goquery.Selection) {
			if sel.ParentsFiltered("main, header, footer, article, section, aside").Length() == 0 {
				pageLevel++
			}
		})
		if pageLevel > 1 {
			issues = append(issues, newIssue(
				accessibility.CategorySemantic,
				accessibility.SeverityLow,
				fmt.Sprintf("Multiple %s elements found", tag),
				fmt.Sprintf("The page has %d page-level <%s> elements", pageLevel, tag),
				fmt.Sprintf("Keep a single page-level <%s> element", tag),
				nil,
				"WCAG 2.1 - 4.1.1 Parsing",
			))
		}
	}

	semanticClassTokens := []string{"header", "nav", "main", "section", "article", "aside", "footer"}
	replaceable := 0
	doc.Find("div[class]").Each(func(_ int, sel *goquery.Selection) {
		class, _ := sel.Attr("class")
		lower := strings.ToLower(class)
		for _, token := range semanticClassTokens {
			if strings.Contains(lower, token) {
				replaceable++
				return
			}
		}
	})
	if replaceable > 0 {
		issues = append(issues, newIssue(
			accessibility.CategorySemantic,
			accessibility.SeverityLow,
			fmt.Sprintf("%d div elements could use semantic tags", replaceable),
			"Divs with semantic class names suggest missing semantic elements",
			"Replace with the matching semantic element (header, nav, main, section, article, aside, footer)",
			nil,
			"WCAG 2.1 - 4.1.2 Name, Role, Value",
		))
	}

	return issues
}

func (c *Semantic) checkLists(doc *goquery.Document) []accessibility.Issue {
	var issues []accessibility.Issue

	doc.Find("ul, ol").Each(func(_ int, sel *goquery.Selection) {
		name := goquery.NodeName(sel)

		invalidChildren := sel.ChildrenFiltered("*").Not("li, script, template").Length()
		if invalidChildren > 0 {
			issues = append(issues, newIssue(
				accessibility.CategorySemantic,
				accessibility.SeverityMedium,
				fmt.Sprintf("%s element has non-li direct children", name),
				fmt.Sprintf("Direct children of <%s> must be <li> elements", name),
				"Use only li elements as direct children",
				sel,
				"WCAG 2.1 - 4.1.1 Parsing",
			))
		}

		if sel.Find("li").Length() == 0 {
			issues = append(issues, newIssue(
				accessibility.CategorySemantic,
				accessibility.SeverityLow,
				fmt.Sprintf("Empty %s element", name),
				fmt.Sprintf("The <%s> element contains no list items", name),
				"Add li items or remove the empty list",
				sel,
				"WCAG 2.1 - 4.1.1 Parsing",
			))
		}
	})

	doc.Find("dl").Each(func(_ int, sel *goquery.Selection) {
		if sel.Find("dt").Length() == 0 || sel.Find("dd").Length() == 0 {
			issues = append(issues, newIssue(
				accessibility.CategorySemantic,
				accessibility.SeverityMedium,
				"dl element is missing dt or dd",
				"Definition lists must pair dt terms with dd descriptions",
				"Use dt and dd elements together",
				sel,
				"WCAG 2.1 - 4.1.1 Parsing",
			))
		}
	})

	return issues
}

func (c *Semantic) checkTables(doc *goquery.Document) []accessibility.Issue {
	var issues []accessibility.Issue

	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		if table.Find("caption").Length() == 0 {
			issues = append(issues, newIssue(
				accessibility.CategorySemantic,
				accessibility.SeverityMedium,
				"Table has no caption",
				"The table lacks a caption describing its purpose",
				"Add a <caption> element describing the table",
				table,
				"WCAG 2.1 - 1.3.1 Info and Relationships",
			))
		}

		ths := table.Find("th")
		if ths.Length() == 0 {
			issues = append(issues, newIssue(
				accessibility.CategorySemantic,
				accessibility.SeverityHigh,
				"Table has no header cells",
				"The table has no th elements",
				"Use <th> elements for table headers",
				table,
				"WCAG 2.1 - 1.3.1 Info and Relationships",
			))
		} else {
			ths.Each(func(_ int, th *goquery.Selection) {
				if v, ok := attrTrimmed(th, "scope"); !ok || v == "" {
					issues = append(issues, newIssue(
						accessibility.CategorySemantic,
						accessibility.SeverityMedium,
						"th element has no scope attribute",
						"Header cells need a scope so screen readers can relate them to data cells",
						"Add scope='col' or scope='row' to the th element",
						th,
						"WCAG 2.1 - 1.3.1 Info and Relationships",
					))
				}
			})
		}

		if isLayoutTable(table) {
			issues = append(issues, newIssue(
				accessibility.CategorySemantic,
				accessibility.SeverityLow,
				"Table appears to be used for layout",
				"The table looks like a layout aid rather than tabular data",
				"Use CSS for layout and reserve tables for tabular data",
				table,
				"WCAG 2.1 - 1.3.1 Info and Relationships",
			))
		}
	})

	return issues
}

func (c *Semantic) checkForms(doc *goquery.Document) []accessibility.Issue {
	var issues []accessibility.Issue

	doc.Find("form").Each(func(_ int, form *goquery.Selection) {
		if form.Find("input, select, textarea").Length() > 3 && form.Find("fieldset").Length() == 0 {
			issues = append(issues, newIssue(
				accessibility.CategorySemantic,
				accessibility.SeverityLow,
				"Complex form has no fieldset grouping",
				"A form with many fields lacks fieldset grouping",
				"Group related fields with <fieldset> and <legend>",
				form,
				"WCAG 2.1 - 1.3.1 Info and Relationships",
			))
		}
	})

	doc.Find("input").Each(func(_ int, input *goquery.Selection) {
		typ, _ := attrTrimmed(input, "type")
		typ = strings.ToLower(typ)
		if typ == "" {
			typ = "text"
		}
		switch typ {
		case "hidden", "submit", "button", "reset":
			return
		}

		labelled := hasAssociatedLabel(doc, input) || hasAnyAttr(input, "aria-label", "aria-labelledby")
		if !labelled {
			issues = append(issues, newIssue(
				accessibility.CategorySemantic,
				accessibility.SeverityHigh,
				"Input element has no associated label",
				fmt.Sprintf("The type=%q input has no label", typ),
				"Associate a <label> element with the input or add aria-label",
				input,
				"WCAG 2.1 - 1.3.1 Info and Relationships",
			))
		}

		if _, required := input.Attr("required"); required {
			parentText := strings.ToLower(input.Parent().Text())
			ariaRequired, _ := attrTrimmed(input, "aria-required")
			indicated := strings.Contains(parentText, "*") ||
				strings.Contains(parentText, "required") ||
				ariaRequired == "true"
			if !indicated {
				issues = append(issues, newIssue(
					accessibility.CategorySemantic,
					accessibility.SeverityMedium,
					"Required field is not clearly indicated",
					"A required input has no visible or programmatic required marker",
					"Mark required fields visually (*) and set aria-required='true'",
					input,
					"WCAG 2.1 - 3.3.2 Labels or Instructions",
				))
			}
		}
	})

	return issues
}

// vagueLinkTexts are link labels that carry no standalone meaning.
var vagueLinkTexts = map[string]struct{}{
	"click": {}, "click here": {}, "here": {}, "more": {},
	"read more": {}, "learn more": {}, "link": {}, "view": {},
	"details": {}, "go": {}, "this": {},
}

func (c *Semantic) checkLinks(doc *goquery.Document) []accessibility.Issue {
	var issues []accessibility.Issue

	doc.Find("a[href]").Each(func(_ int, link *goquery.Selection) {
		text := strings.TrimSpace(link.Text())

		if text == "" {
			// An image with alt text can name the link.
			if alt, ok := link.Find("img").First().Attr("alt"); ok && strings.TrimSpace(alt) != "" {
				return
			}
			if hasAnyAttr(link, "aria-label", "aria-labelledby", "title") {
				return
			}
			issues = append(issues, newIssue(
				accessibility.CategorySemantic,
				accessibility.SeverityHigh,
				"Empty link text",
				"The link has no text content",
				"Add text describing the link destination",
				link,
				"WCAG 2.1 - 2.4.4 Link Purpose",
			))
			return
		}

		if _, vague := vagueLinkTexts[strings.ToLower(text)]; vague {
			issues = append(issues, newIssue(
				accessibility.CategorySemantic,
				accessibility.SeverityMedium,
				fmt.Sprintf("Vague link text: %q", text),
				"The link text does not convey the link's purpose",
				"Use text that clearly describes the link destination",
				link,
				"WCAG 2.1 - 2.4.4 Link Purpose",
			))
		}
	})

	return issues
}

func (c *Semantic) checkLanguage(doc *goquery.Document) []accessibility.Issue {
	htmlSel := doc.Find("html").First()
	if htmlSel.Length() == 0 {
		return nil
	}
	lang, ok := attrTrimmed(htmlSel, "lang")
	if !ok || lang == "" {
		return []accessibility.Issue{newIssue(
			accessibility.CategorySemantic,
			accessibility.SeverityMedium,
			"html element has no lang attribute",
			"The document's primary language is not declared",
			"Add a lang attribute to the <html> element (for example lang='en')",
			nil,
			"WCAG 2.1 - 3.1.1 Language of Page",
		)}
	}
	if len(lang) < 2 {
		return []accessibility.Issue{newIssue(
			accessibility.CategorySemantic,
			accessibility.SeverityMedium,
			fmt.Sprintf("Invalid lang attribute value: %q", lang),
			"The lang value is not a valid language code",
			"Use a valid language code such as 'en' or 'en-US'",
			nil,
			"WCAG 2.1 - 3.1.1 Language of Page",
		)}
	}
	return nil
}

func (c *Semantic) checkTitle(doc *goquery.Document) []accessibility.Issue {
	titleSel := doc.Find("title").First()
	if titleSel.Length() == 0 {
		return []accessibility.Issue{newIssue(
			accessibility.CategorySemantic,
			accessibility.SeverityHigh,
			"Missing title element",
			"The document has no <title> element",
			"Add a <title> element in the head section",
			nil,
			"WCAG 2.1 - 2.4.2 Page Titled",
		)}
	}

	title := strings.TrimSpace(titleSel.Text())
	if title == "" {
		return []accessibility.Issue{newIssue(
			accessibility.CategorySemantic,
			accessibility.SeverityHigh,
			"Empty title element",
			"The title element has no text",
			"Add a title describing the page's purpose",
			nil,
			"WCAG 2.1 - 2.4.2 Page Titled",
		)}
	}
	if len(title) < 10 {
		return []accessibility.Issue{newIssue(
			accessibility.CategorySemantic,
			accessibility.SeverityLow,
			"Page title is very short",
			fmt.Sprintf("The title is only %d characters long", len(title)),
			"Use a title that fully describes the page content and purpose",
			nil,
			"WCAG 2.1 - 2.4.2 Page Titled",
		)}
	}
	return nil
}

// isLayoutTable guesses whether a table is used for layout rather than
// data: few or no header cells, or zeroed presentational attributes.
func isLayoutTable(table *goquery.Selection) bool {
	thCount := table.Find("th").Length()
	tdCount := table.Find("td").Length()
	if thCount == 0 || (tdCount > 0 && float64(thCount)/float64(tdCount) < 0.1) {
		return true
	}
	for _, attr := range []string{"border", "cellpadding", "cellspacing"} {
		if v, ok := table.Attr(attr); ok && v == "0" {
			return true
		}
	}
	return false
}
