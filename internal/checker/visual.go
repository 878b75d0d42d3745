package checker

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/a11ycheck/a11ycheck/internal/accessibility"
	"github.com/a11ycheck/a11ycheck/internal/snapshot"
)

// Visual validates presentation: contrast, color reliance, text spacing,
// zoom, focus visibility, and motion.
type Visual struct{}

// NewVisual builds the visual presentation module.
func NewVisual() *Visual { return &Visual{} }

func (c *Visual) Category() accessibility.Category { return accessibility.CategoryVisual }

func (c *Visual) Weight() float64 { return 0.10 }

func (c *Visual) Rules() []Rule {
	return []Rule{
		{ID: "visual-contrast", Description: "Text meets WCAG AA contrast ratios"},
		{ID: "visual-color-only", Description: "Information is not conveyed by color alone"},
		{ID: "visual-spacing", Description: "Line height and letter spacing support readability"},
		{ID: "visual-zoom", Description: "User zoom is not blocked and font sizes scale"},
		{ID: "visual-focus", Description: "Focus indicators are not removed without replacement"},
		{ID: "visual-motion", Description: "Animation respects reduced-motion preferences"},
		{ID: "visual-flashing", Description: "No blinking, scrolling, or sub-half-second animation"},
		{ID: "visual-layout", Description: "Line length and alignment support readability"},
	}
}

func (c *Visual) Evaluate(snap *snapshot.Snapshot) []accessibility.Issue {
	doc := snap.Doc()
	var issues []accessibility.Issue
	issues = append(issues, c.checkContrast(doc, snap.StyleSamples())...)
	issues = append(issues, c.checkColorOnly(doc)...)
	issues = append(issues, c.checkSpacing(doc)...)
	issues = append(issues, c.checkZoom(doc)...)
	issues = append(issues, c.checkFocus(doc, snap.StyleSamples())...)
	issues = append(issues, c.checkMotion(doc)...)
	issues = append(issues, c.checkFlashing(doc)...)
	issues = append(issues, c.checkLayout(doc)...)
	return issues
}

// checkContrast prefers computed-style samples from the browser and falls
// back to inline styles when no samples were captured.
func (c *Visual) checkContrast(doc *goquery.Document, samples []snapshot.StyleSample) []accessibility.Issue {
	var issues []accessibility.Issue

	if len(samples) > 0 {
		for _, sample := range samples {
			if sample.Text == "" {
				continue
			}
			fg, okFg := ParseColor(sample.Color)
			bg, okBg := ParseColor(sample.Background)
			if !okFg || !okBg {
				continue
			}
			ratio := ContrastRatio(fg, bg)
			large := isLargeText(sample.FontSizePx, sample.FontWeight >= 700)
			min := contrastMinimum(large)
			if ratio >= min {
				continue
			}
			issues = append(issues, accessibility.Issue{
				Category:       accessibility.CategoryVisual,
				Severity:       accessibility.SeverityMedium,
				Message:        fmt.Sprintf("Insufficient color contrast: %.1f:1 (minimum %.1f:1)", ratio, min),
				Description:    "The text color does not meet the WCAG AA contrast ratio against its background",
				Element:        snapshot.Truncate(sample.Excerpt),
				Recommendation: fmt.Sprintf("Adjust the colors to reach at least %.1f:1 contrast", min),
				WCAGReference:  "WCAG 2.1 - 1.4.3 Contrast (Minimum)",
			})
		}
	} else {
		doc.Find("[style]").Each(func(_ int, sel *goquery.Selection) {
			style, _ := sel.Attr("style")
			fgRaw, bgRaw := inlineColors(style)
			if fgRaw == "" || bgRaw == "" {
				return
			}
			fg, okFg := ParseColor(fgRaw)
			bg, okBg := ParseColor(bgRaw)
			if !okFg || !okBg {
				return
			}
			ratio := ContrastRatio(fg, bg)
			sizePx, bold := inlineFont(style)
			min := contrastMinimum(isLargeText(sizePx, bold))
			if ratio >= min {
				return
			}
			issues = append(issues, newIssue(
				accessibility.CategoryVisual,
				accessibility.SeverityMedium,
				fmt.Sprintf("Insufficient color contrast: %.1f:1 (minimum %.1f:1)", ratio, min),
				"The text color does not meet the WCAG AA contrast ratio against its background",
				fmt.Sprintf("Adjust the colors to reach at least %.1f:1 contrast", min),
				sel,
				"WCAG 2.1 - 1.4.3 Contrast (Minimum)",
			))
		})
	}

	// Links need a non-color cue when styled inline.
	doc.Find("a[href][style]").Each(func(_ int, link *goquery.Selection) {
		style, _ := link.Attr("style")
		if !strings.Contains(strings.ToLower(style), "color") {
			return
		}
		if hasNonColorDistinction(style) {
			return
		}
		issues = append(issues, newIssue(
			accessibility.CategoryVisual,
			accessibility.SeverityLow,
			"Link is distinguished by color alone",
			"The link relies on color only, which colorblind users may not perceive",
			"Add an underline, weight change, or border in addition to color",
			link,
			"WCAG 2.1 - 1.4.1 Use of Color",
		))
	})

	return issues
}

var colorDependentPatterns = []struct {
	pattern *regexp.Regexp
	context string
}{
	{regexp.MustCompile(`(?i)red.*required`), "required field indication"},
	{regexp.MustCompile(`(?i)green.*success`), "success state indication"},
	{regexp.MustCompile(`(?i)red.*error`), "error state indication"},
}

func (c *Visual) checkColorOnly(doc *goquery.Document) []accessibility.Issue {
	var issues []accessibility.Issue

	pageText := doc.Text()
	for _, p := range colorDependentPatterns {
		if p.pattern.MatchString(pageText) {
			issues = append(issues, newIssue(
				accessibility.CategoryVisual,
				accessibility.SeverityMedium,
				fmt.Sprintf("Information conveyed by color alone: %s", p.context),
				"The page describes state using color references only",
				"Pair color with text, icons, or patterns",
				nil,
				"WCAG 2.1 - 1.4.1 Use of Color",
			))
		}
	}

	doc.Find("[class*=chart], [class*=graph]").Each(func(_ int, chart *goquery.Selection) {
		if hasChartLabels(chart) {
			return
		}
		issues = append(issues, newIssue(
			accessibility.CategoryVisual,
			accessibility.SeverityMedium,
			"Chart or graph has no text labels",
			"The chart appears to convey information through color alone",
			"Add text labels, patterns, or a data table alongside the chart",
			chart,
			"WCAG 2.1 - 1.4.1 Use of Color",
		))
	})

	return issues
}

var (
	lineHeightPattern    = regexp.MustCompile(`(?i)line-height\s*:\s*([^;]+)`)
	letterSpacingPattern = regexp.MustCompile(`(?i)letter-spacing\s*:\s*([^;]+)`)
)

func (c *Visual) checkSpacing(doc *goquery.Document) []accessibility.Issue {
	var issues []accessibility.Issue
	doc.Find("[style]").Each(func(_ int, sel *goquery.Selection) {
		style, _ := sel.Attr("style")

		if m := lineHeightPattern.FindStringSubmatch(style); m != nil {
			value := strings.TrimSpace(m[1])
			if isInsufficientLineHeight(value) {
				issues = append(issues, newIssue(
					accessibility.CategoryVisual,
					accessibility.SeverityLow,
					fmt.Sprintf("Insufficient line height: %s", value),
					"The line height is below 1.5 times the font size",
					"Set line-height to at least 1.5",
					sel,
					"WCAG 2.1 - 1.4.12 Text Spacing",
				))
			}
		}

		if m := letterSpacingPattern.FindStringSubmatch(style); m != nil {
			if strings.HasPrefix(strings.TrimSpace(m[1]), "-") {
				issues = append(issues, newIssue(
					accessibility.CategoryVisual,
					accessibility.SeverityLow,
					"Negative letter spacing",
					"Negative letter-spacing hurts readability",
					"Set letter-spacing to zero or a positive value",
					sel,
					"WCAG 2.1 - 1.4.12 Text Spacing",
				))
			}
		}
	})
	return issues
}

var maxScalePattern = regexp.MustCompile(`maximum-scale\s*=\s*([0-9.]+)`)

func (c *Visual) checkZoom(doc *goquery.Document) []accessibility.Issue {
	var issues []accessibility.Issue

	doc.Find("meta[name=viewport]").Each(func(_ int, meta *goquery.Selection) {
		content, _ := meta.Attr("content")
		lower := strings.ToLower(content)

		if strings.Contains(lower, "user-scalable=no") || strings.Contains(lower, "user-scalable=0") {
			issues = append(issues, newIssue(
				accessibility.CategoryVisual,
				accessibility.SeverityHigh,
				"User zoom is disabled",
				"The viewport meta tag blocks user scaling",
				"Remove user-scalable=no or set it to yes",
				meta,
				"WCAG 2.1 - 1.4.4 Resize text",
			))
		}

		if m := maxScalePattern.FindStringSubmatch(lower); m != nil {
			if scale, err := strconv.ParseFloat(m[1], 64); err == nil && scale < 2.0 {
				issues = append(issues, newIssue(
					accessibility.CategoryVisual,
					accessibility.SeverityMedium,
					fmt.Sprintf("Maximum zoom is limited to %s", m[1]),
					"maximum-scale below 2.0 prevents sufficient text enlargement",
					"Set maximum-scale to 2.0 or higher, or remove it",
					meta,
					"WCAG 2.1 - 1.4.4 Resize text",
				))
			}
		}
	})

	fixedFontPattern := regexp.MustCompile(`(?i)font-size\s*:\s*[\d.]+px`)
	doc.Find("[style]").Each(func(_ int, sel *goquery.Selection) {
		style, _ := sel.Attr("style")
		if !fixedFontPattern.MatchString(style) {
			return
		}
		issues = append(issues, newIssue(
			accessibility.CategoryVisual,
			accessibility.SeverityLow,
			"Fixed pixel font size",
			"Pixel font sizes do not scale with user preferences",
			"Use relative units such as em, rem, or %",
			sel,
			"WCAG 2.1 - 1.4.4 Resize text",
		))
	})

	return issues
}

func (c *Visual) checkFocus(doc *goquery.Document, samples []snapshot.StyleSample) []accessibility.Issue {
	var issues []accessibility.Issue

	doc.Find("style").Each(func(_ int, styleTag *goquery.Selection) {
		css := strings.ReplaceAll(styleTag.Text(), " ", "")
		if !strings.Contains(css, "outline:none") && !strings.Contains(css, "outline:0") {
			return
		}
		issues = append(issues, newIssue(
			accessibility.CategoryVisual,
			accessibility.SeverityMedium,
			"Stylesheet removes focus outlines",
			"Removing outlines leaves keyboard users without a visible focus position",
			"Provide a custom focus style instead of removing the outline",
			styleTag,
			"WCAG 2.1 - 2.4.7 Focus Visible",
		))
	})

	doc.Find("a[style], button[style], input[style], select[style], textarea[style]").Each(func(_ int, sel *goquery.Selection) {
		style, _ := sel.Attr("style")
		compact := strings.ReplaceAll(strings.ToLower(style), " ", "")
		if !strings.Contains(compact, "outline:none") && !strings.Contains(compact, "outline:0") {
			return
		}
		if hasReplacementFocusStyle(style) {
			return
		}
		issues = append(issues, newIssue(
			accessibility.CategoryVisual,
			accessibility.SeverityMedium,
			"Focus indicator removed from interactive element",
			"The element removes its outline without a replacement focus style",
			"Provide a visible custom focus style",
			sel,
			"WCAG 2.1 - 2.4.7 Focus Visible",
		))
	})

	// Computed samples catch interactive elements whose stylesheet removed
	// the outline.
	for _, sample := range samples {
		if !sample.Interactive {
			continue
		}
		if sample.OutlineStyle != "none" || sample.OutlineWidth != "0px" {
			continue
		}
		issues = append(issues, accessibility.Issue{
			Category:       accessibility.CategoryVisual,
			Severity:       accessibility.SeverityMedium,
			Message:        "Interactive element renders without a focus outline",
			Description:    "The computed style removes the focus outline entirely",
			Element:        snapshot.Truncate(sample.Excerpt),
			Recommendation: "Restore the outline or add a :focus-visible style",
			WCAGReference:  "WCAG 2.1 - 2.4.7 Focus Visible",
		})
	}

	return issues
}

func (c *Visual) checkMotion(doc *goquery.Document) []accessibility.Issue {
	var issues []accessibility.Issue

	doc.Find("style").Each(func(_ int, styleTag *goquery.Selection) {
		css := strings.ToLower(styleTag.Text())
		if !strings.Contains(css, "@keyframes") && !strings.Contains(css, "animation:") {
			return
		}
		if strings.Contains(css, "prefers-reduced-motion") {
			return
		}
		issues = append(issues, newIssue(
			accessibility.CategoryVisual,
			accessibility.SeverityLow,
			"Animation ignores reduced-motion preference",
			"CSS animations run without a prefers-reduced-motion media query",
			"Wrap animations in @media (prefers-reduced-motion: no-preference) or disable them under reduce",
			styleTag,
			"WCAG 2.1 - 2.3.3 Animation from Interactions",
		))
	})

	doc.Find("[class*=carousel], [class*=slider], [class*=slideshow]").Each(func(_ int, carousel *goquery.Selection) {
		if hasCarouselControls(carousel) {
			return
		}
		issues = append(issues, newIssue(
			accessibility.CategoryVisual,
			accessibility.SeverityMedium,
			"Auto-rotating content has no controls",
			"Automatically changing content offers no pause or stop mechanism",
			"Provide pause, stop, or hide buttons",
			carousel,
			"WCAG 2.1 - 2.2.2 Pause, Stop, Hide",
		))
	})

	return issues
}

var fastAnimationPattern = regexp.MustCompile(`animation-duration\s*:\s*0\.[0-4]s`)

func (c *Visual) checkFlashing(doc *goquery.Document) []accessibility.Issue {
	var issues []accessibility.Issue

	if blink := doc.Find("blink").First(); blink.Length() > 0 {
		issues = append(issues, newIssue(
			accessibility.CategoryVisual,
			accessibility.SeverityHigh,
			"blink element in use",
			"Blinking content can trigger seizures",
			"Remove the blink element",
			blink,
			"WCAG 2.1 - 2.3.1 Three Flashes or Below Threshold",
		))
	}

	if marquee := doc.Find("marquee").First(); marquee.Length() > 0 {
		issues = append(issues, newIssue(
			accessibility.CategoryVisual,
			accessibility.SeverityMedium,
			"marquee element in use",
			"Scrolling marquee content causes accessibility problems",
			"Replace marquee with CSS animation that honors prefers-reduced-motion",
			marquee,
			"WCAG 2.1 - 2.2.2 Pause, Stop, Hide",
		))
	}

	doc.Find("style").Each(func(_ int, styleTag *goquery.Selection) {
		if !fastAnimationPattern.MatchString(styleTag.Text()) {
			return
		}
		issues = append(issues, newIssue(
			accessibility.CategoryVisual,
			accessibility.SeverityMedium,
			"Very fast animation",
			"Animations faster than half a second can trigger seizures",
			"Slow the animation down and honor prefers-reduced-motion",
			styleTag,
			"WCAG 2.1 - 2.3.1 Three Flashes or Below Threshold",
		))
	})

	return issues
}

var widthPattern = regexp.MustCompile(`(?i)width\s*:\s*([^;]+)`)

func (c *Visual) checkLayout(doc *goquery.Document) []accessibility.Issue {
	var issues []accessibility.Issue
	doc.Find("[style]").Each(func(_ int, sel *goquery.Selection) {
		style, _ := sel.Attr("style")

		if m := widthPattern.FindStringSubmatch(style); m != nil {
			width := strings.TrimSpace(m[1])
			if isExcessiveWidth(width) && len(strings.TrimSpace(sel.Text())) > 100 {
				issues = append(issues, newIssue(
					accessibility.CategoryVisual,
					accessibility.SeverityLow,
					fmt.Sprintf("Text lines are too long: %s", width),
					"Long text lines reduce readability",
					"Limit text containers to roughly 80 characters per line",
					sel,
					"WCAG 2.1 - 1.4.8 Visual Presentation",
				))
			}
		}

		if strings.Contains(strings.ReplaceAll(style, " ", ""), "text-align:justify") {
			issues = append(issues, newIssue(
				accessibility.CategoryVisual,
				accessibility.SeverityLow,
				"Justified text alignment",
				"Justified text creates uneven word spacing that hurts readability",
				"Use left-aligned text",
				sel,
				"WCAG 2.1 - 1.4.8 Visual Presentation",
			))
		}
	})
	return issues
}

func hasNonColorDistinction(style string) bool {
	lower := strings.ToLower(style)
	if strings.Contains(lower, "text-decoration") && !strings.Contains(lower, "none") {
		return true
	}
	if strings.Contains(lower, "font-weight") {
		for _, weight := range []string{"bold", "700", "800", "900"} {
			if strings.Contains(lower, weight) {
				return true
			}
		}
	}
	if strings.Contains(lower, "border") && !strings.Contains(lower, "none") {
		return true
	}
	return false
}

func hasChartLabels(chart *goquery.Selection) bool {
	if len(strings.TrimSpace(chart.Text())) > 20 {
		return true
	}
	parent := chart.Parent()
	if parent.Length() == 0 {
		return false
	}
	return parent.Find("table, ul, ol, dl").Length() > 0
}

func isInsufficientLineHeight(value string) bool {
	value = strings.TrimSpace(value)
	if strings.HasSuffix(value, "%") {
		if f, err := strconv.ParseFloat(strings.TrimSuffix(value, "%"), 64); err == nil {
			return f < 150
		}
		return false
	}
	if f, err := strconv.ParseFloat(value, 64); err == nil {
		return f < 1.5
	}
	// Absolute units depend on the font size; skip them.
	return false
}

func hasReplacementFocusStyle(style string) bool {
	lower := strings.ToLower(style)
	for _, prop := range []string{"border", "box-shadow", "background"} {
		if strings.Contains(lower, prop) {
			return true
		}
	}
	return false
}

func hasCarouselControls(carousel *goquery.Selection) bool {
	keywords := []string{"pause", "stop", "play", "prev", "next"}
	found := false
	carousel.Find("button").EachWithBreak(func(_ int, button *goquery.Selection) bool {
		ariaLabel, _ := button.Attr("aria-label")
		title, _ := button.Attr("title")
		label := strings.ToLower(button.Text() + " " + ariaLabel + " " + title)
		for _, keyword := range keywords {
			if strings.Contains(label, keyword) {
				found = true
				return false
			}
		}
		return true
	})
	return found
}

func isExcessiveWidth(width string) bool {
	parse := func(suffix string) (float64, bool) {
		if !strings.HasSuffix(width, suffix) {
			return 0, false
		}
		f, err := strconv.ParseFloat(strings.TrimSuffix(width, suffix), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	if v, ok := parse("px"); ok {
		return v > 1200
	}
	if v, ok := parse("vw"); ok {
		return v > 80
	}
	if v, ok := parse("%"); ok {
		return v > 80
	}
	return false
}
