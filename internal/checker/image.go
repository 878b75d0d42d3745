package checker

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/a11ycheck/a11ycheck/internal/accessibility"
	"github.com/a11ycheck/a11ycheck/internal/snapshot"
)

// Image validates text alternatives for images, SVGs, and informative
// backgrounds.
type Image struct{}

// NewImage builds the image alternative-text module.
func NewImage() *Image { return &Image{} }

func (c *Image) Category() accessibility.Category { return accessibility.CategoryImage }

func (c *Image) Weight() float64 { return 0.15 }

func (c *Image) Rules() []Rule {
	return []Rule{
		{ID: "image-alt", Description: "Every img carries an alt attribute"},
		{ID: "image-alt-quality", Description: "Alt text is meaningful, concise, and free of filenames"},
		{ID: "image-decorative", Description: "Decorative images use empty alt or role=presentation"},
		{ID: "image-complex", Description: "Charts and diagrams carry extended descriptions"},
		{ID: "image-background", Description: "Informative CSS backgrounds have text alternatives"},
		{ID: "image-link", Description: "Image-only links have accessible names"},
		{ID: "image-figure", Description: "figure elements carry non-empty figcaptions"},
		{ID: "image-svg", Description: "Informative inline SVGs have accessible names"},
	}
}

// Token lists driving the decorative and complex-image heuristics.
var (
	decorativeTokens = []string{
		"decoration", "decorative", "ornament", "ornamental", "bg",
		"background", "spacer", "divider", "separator", "bullet",
		"icon-bg", "pattern",
	}
	meaninglessAltTokens = []string{
		"image", "img", "picture", "pic", "photo", "graphic", "untitled",
		"no title", "no name", "default", "placeholder", "temp", "test",
	}
	complexImageTokens = []string{"chart", "graph", "diagram", "infographic", "map"}
	redundantPrefixes  = []string{
		"image of", "picture of", "photo of", "graphic of", "illustration of",
	}
	imageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp", ".svg"}
)

func (c *Image) Evaluate(snap *snapshot.Snapshot) []accessibility.Issue {
	doc := snap.Doc()
	var issues []accessibility.Issue
	issues = append(issues, c.checkAltPresence(doc)...)
	issues = append(issues, c.checkAltQuality(doc)...)
	issues = append(issues, c.checkDecorative(doc)...)
	issues = append(issues, c.checkComplex(doc)...)
	issues = append(issues, c.checkBackgrounds(doc)...)
	issues = append(issues, c.checkImageLinks(doc)...)
	issues = append(issues, c.checkFigures(doc)...)
	issues = append(issues, c.checkSVGs(doc)...)
	return issues
}

func (c *Image) checkAltPresence(doc *goquery.Document) []accessibility.Issue {
	var issues []accessibility.Issue
	doc.Find("img").Each(func(_ int, img *goquery.Selection) {
		src, _ := img.Attr("src")
		alt, hasAlt := img.Attr("alt")

		if !hasAlt {
			issues = append(issues, newIssue(
				accessibility.CategoryImage,
				accessibility.SeverityHigh,
				"img element has no alt attribute",
				fmt.Sprintf("The image %q has no alt attribute", src),
				"Add an alt attribute to every image; use alt='' for decorative images",
				img,
				"WCAG 2.1 - 1.1.1 Non-text Content",
			))
			return
		}

		role, _ := attrTrimmed(img, "role")
		if strings.TrimSpace(alt) == "" || role == "presentation" {
			// Decorative, nothing more to check here.
			return
		}

		if isMeaninglessAlt(alt, src) {
			issues = append(issues, newIssue(
				accessibility.CategoryImage,
				accessibility.SeverityMedium,
				fmt.Sprintf("Meaningless alt text: %q", alt),
				"The alt text does not describe the image's content or purpose",
				"Write alt text that clearly describes what the image shows or does",
				img,
				"WCAG 2.1 - 1.1.1 Non-text Content",
			))
		}

		if len(alt) > 125 {
			issues = append(issues, newIssue(
				accessibility.CategoryImage,
				accessibility.SeverityLow,
				fmt.Sprintf("Alt text is too long (%d characters)", len(alt)),
				"Alt text exceeds 125 characters",
				"Keep alt text concise; move detailed descriptions to nearby text or aria-describedby",
				img,
				"WCAG 2.1 - 1.1.1 Non-text Content",
			))
		}

		lowerAlt := strings.ToLower(alt)
		for _, ext := range imageExtensions {
			if strings.Contains(lowerAlt, ext) {
				issues = append(issues, newIssue(
					accessibility.CategoryImage,
					accessibility.SeverityLow,
					"Alt text contains a file extension",
					"The alt text includes an image file extension",
					"Remove the file extension from the alt text",
					img,
					"WCAG 2.1 - 1.1.1 Non-text Content",
				))
				break
			}
		}
	})
	return issues
}

func (c *Image) checkAltQuality(doc *goquery.Document) []accessibility.Issue {
	var issues []accessibility.Issue
	doc.Find("img[alt]").Each(func(_ int, img *goquery.Selection) {
		alt, _ := attrTrimmed(img, "alt")
		if alt == "" {
			return
		}
		src, _ := img.Attr("src")

		lowerAlt := strings.ToLower(alt)
		for _, prefix := range redundantPrefixes {
			if strings.HasPrefix(lowerAlt, prefix) {
				issues = append(issues, newIssue(
					accessibility.CategoryImage,
					accessibility.SeverityLow,
					fmt.Sprintf("Redundant alt text prefix: %q", prefix),
					"Screen readers already announce images, so prefixes like 'image of' add noise",
					"Drop the prefix and describe the image content directly",
					img,
					"WCAG 2.1 - 1.1.1 Non-text Content",
				))
				break
			}
		}

		if base := fileBaseName(src); len(base) >= 3 && strings.Contains(lowerAlt, base) {
			issues = append(issues, newIssue(
				accessibility.CategoryImage,
				accessibility.SeverityMedium,
				"Alt text mirrors the filename",
				"The alt text appears to repeat the image filename",
				"Describe the image's content or purpose instead of its filename",
				img,
				"WCAG 2.1 - 1.1.1 Non-text Content",
			))
		}
	})
	return issues
}

func (c *Image) checkDecorative(doc *goquery.Document) []accessibility.Issue {
	var issues []accessibility.Issue
	doc.Find("img").Each(func(_ int, img *goquery.Selection) {
		if !isLikelyDecorative(img) {
			return
		}
		alt, hasAlt := img.Attr("alt")
		role, _ := attrTrimmed(img, "role")
		if hasAlt && strings.TrimSpace(alt) != "" && role != "presentation" {
			issues = append(issues, newIssue(
				accessibility.CategoryImage,
				accessibility.SeverityMedium,
				"Decorative image has alt text",
				"An apparently decorative image carries alt text, which adds noise for screen readers",
				"Use alt='' or role='presentation' on decorative images",
				img,
				"WCAG 2.1 - 1.1.1 Non-text Content",
			))
		}
	})
	return issues
}

func (c *Image) checkComplex(doc *goquery.Document) []accessibility.Issue {
	var issues []accessibility.Issue
	doc.Find("img").Each(func(_ int, img *goquery.Selection) {
		src, _ := img.Attr("src")
		alt, _ := img.Attr("alt")
		if !isComplexImage(src, alt) {
			return
		}
		if hasAnyAttr(img, "longdesc", "aria-describedby") || hasNearbyDescription(img) {
			return
		}
		issues = append(issues, newIssue(
			accessibility.CategoryImage,
			accessibility.SeverityMedium,
			"Complex image has no extended description",
			"A chart, graph, or diagram lacks a detailed text alternative",
			"Link a detailed description with aria-describedby or add explanatory text near the image",
			img,
			"WCAG 2.1 - 1.1.1 Non-text Content",
		))
	})
	return issues
}

func (c *Image) checkBackgrounds(doc *goquery.Document) []accessibility.Issue {
	var issues []accessibility.Issue
	doc.Find("[style]").Each(func(_ int, sel *goquery.Selection) {
		style, _ := sel.Attr("style")
		if !strings.Contains(strings.ToLower(style), "background-image") {
			return
		}
		if !isInformativeBackground(sel) {
			return
		}
		if hasAnyAttr(sel, "aria-label", "aria-labelledby") || strings.TrimSpace(sel.Text()) != "" {
			return
		}
		issues = append(issues, newIssue(
			accessibility.CategoryImage,
			accessibility.SeverityMedium,
			"Informative background image has no text alternative",
			"A CSS background image that conveys information lacks a text alternative",
			"Add an aria-label or provide the image's information as text",
			sel,
			"WCAG 2.1 - 1.1.1 Non-text Content",
		))
	})
	return issues
}

func (c *Image) checkImageLinks(doc *goquery.Document) []accessibility.Issue {
	var issues []accessibility.Issue
	doc.Find("a[href]").Each(func(_ int, link *goquery.Selection) {
		imgs := link.Find("img")
		if imgs.Length() == 0 || strings.TrimSpace(link.Text()) != "" {
			return
		}

		named := false
		imgs.EachWithBreak(func(_ int, img *goquery.Selection) bool {
			if alt, _ := attrTrimmed(img, "alt"); alt != "" {
				named = true
				return false
			}
			return true
		})
		if !named && hasAnyAttr(link, "aria-label", "aria-labelledby") {
			named = true
		}
		if named {
			return
		}
		issues = append(issues, newIssue(
			accessibility.CategoryImage,
			accessibility.SeverityHigh,
			"Image link has no accessible name",
			"A link containing only images has no accessible name",
			"Give the image meaningful alt text or set aria-label on the link",
			link,
			"WCAG 2.1 - 2.4.4 Link Purpose",
		))
	})
	return issues
}

func (c *Image) checkFigures(doc *goquery.Document) []accessibility.Issue {
	var issues []accessibility.Issue
	doc.Find("figure").Each(func(_ int, figure *goquery.Selection) {
		caption := figure.Find("figcaption").First()
		if caption.Length() == 0 {
			issues = append(issues, newIssue(
				accessibility.CategoryImage,
				accessibility.SeverityLow,
				"figure element has no figcaption",
				"The figure lacks a figcaption describing its content",
				"Add a figcaption to the figure element",
				figure,
				"WCAG 2.1 - 1.1.1 Non-text Content",
			))
			return
		}
		if strings.TrimSpace(caption.Text()) == "" {
			issues = append(issues, newIssue(
				accessibility.CategoryImage,
				accessibility.SeverityLow,
				"Empty figcaption element",
				"The figcaption has no text content",
				"Add text describing the figure to its figcaption",
				caption,
				"WCAG 2.1 - 1.1.1 Non-text Content",
			))
		}
	})
	return issues
}

func (c *Image) checkSVGs(doc *goquery.Document) []accessibility.Issue {
	var issues []accessibility.Issue
	doc.Find("svg").Each(func(_ int, svg *goquery.Selection) {
		role, _ := attrTrimmed(svg, "role")
		hidden, _ := attrTrimmed(svg, "aria-hidden")
		if role == "presentation" || role == "none" || hidden == "true" {
			return
		}
		if svg.ChildrenFiltered("title").Length() > 0 || hasAnyAttr(svg, "aria-label", "aria-labelledby") {
			return
		}
		issues = append(issues, newIssue(
			accessibility.CategoryImage,
			accessibility.SeverityMedium,
			"SVG element has no accessible name",
			"An informative inline SVG has no title or label",
			"Add a <title> element or aria-label to the SVG and set role='img'",
			svg,
			"WCAG 2.1 - 1.1.1 Non-text Content",
		))
	})
	return issues
}

func isMeaninglessAlt(alt, src string) bool {
	lower := strings.ToLower(strings.TrimSpace(alt))
	for _, token := range meaninglessAltTokens {
		if strings.Contains(lower, token) {
			return true
		}
	}
	// Very short basenames match almost anything.
	if base := fileBaseName(src); len(base) >= 3 && strings.Contains(lower, base) {
		return true
	}
	return false
}

// fileBaseName extracts the filename without extension, normalized for
// comparison against alt text.
func fileBaseName(src string) string {
	if src == "" {
		return ""
	}
	name := src
	if idx := strings.LastIndex(name, "/"); idx >= 0 {
		name = name[idx+1:]
	}
	if idx := strings.Index(name, "."); idx >= 0 {
		name = name[:idx]
	}
	name = strings.ToLower(name)
	name = strings.ReplaceAll(name, "-", " ")
	name = strings.ReplaceAll(name, "_", " ")
	return strings.TrimSpace(name)
}

func isLikelyDecorative(img *goquery.Selection) bool {
	src, _ := img.Attr("src")
	lowerSrc := strings.ToLower(src)
	for _, token := range decorativeTokens {
		if strings.Contains(lowerSrc, token) {
			return true
		}
	}

	if class, ok := img.Attr("class"); ok {
		lowerClass := strings.ToLower(class)
		for _, token := range decorativeTokens {
			if strings.Contains(lowerClass, token) {
				return true
			}
		}
	}

	// Tiny images are usually spacers.
	w, wok := img.Attr("width")
	h, hok := img.Attr("height")
	if wok && hok {
		wi, werr := strconv.Atoi(strings.TrimSpace(w))
		hi, herr := strconv.Atoi(strings.TrimSpace(h))
		if werr == nil && herr == nil && (wi <= 5 || hi <= 5) {
			return true
		}
	}
	return false
}

func isComplexImage(src, alt string) bool {
	lowerSrc := strings.ToLower(src)
	lowerAlt := strings.ToLower(alt)
	for _, token := range complexImageTokens {
		if strings.Contains(lowerSrc, token) || strings.Contains(lowerAlt, token) {
			return true
		}
	}
	return false
}

// hasNearbyDescription looks for substantial prose in the next few
// siblings of the image's parent.
func hasNearbyDescription(img *goquery.Selection) bool {
	found := false
	img.Parent().NextAll().EachWithBreak(func(i int, sibling *goquery.Selection) bool {
		if i >= 3 {
			return false
		}
		if len(strings.TrimSpace(sibling.Text())) > 50 {
			found = true
			return false
		}
		return true
	})
	return found
}

func isInformativeBackground(sel *goquery.Selection) bool {
	if strings.TrimSpace(sel.Text()) == "" {
		return true
	}
	class, _ := sel.Attr("class")
	lowerClass := strings.ToLower(class)
	for _, token := range []string{"logo", "banner", "hero", "chart", "graph"} {
		if strings.Contains(lowerClass, token) {
			return true
		}
	}
	return false
}
