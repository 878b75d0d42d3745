package checker

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// WCAG AA contrast minimums.
const (
	contrastNormalAA = 4.5
	contrastLargeAA  = 3.0
)

// RGB is a parsed sRGB color.
type RGB struct {
	R, G, B int
}

var colorKeywords = map[string]string{
	"red": "#ff0000", "green": "#008000", "blue": "#0000ff",
	"yellow": "#ffff00", "orange": "#ffa500", "purple": "#800080",
	"pink": "#ffc0cb", "brown": "#a52a2a", "gray": "#808080",
	"grey": "#808080", "black": "#000000", "white": "#ffffff",
}

var rgbPattern = regexp.MustCompile(`rgba?\s*\(\s*(\d+)\s*,\s*(\d+)\s*,\s*(\d+)`)

// ParseColor converts a CSS color (hex, rgb()/rgba(), or keyword) into RGB.
func ParseColor(value string) (RGB, bool) {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" || value == "transparent" {
		return RGB{}, false
	}

	if hex, ok := colorKeywords[value]; ok {
		value = hex
	}

	if strings.HasPrefix(value, "#") {
		return parseHex(value)
	}

	if m := rgbPattern.FindStringSubmatch(value); m != nil {
		r, _ := strconv.Atoi(m[1])
		g, _ := strconv.Atoi(m[2])
		b, _ := strconv.Atoi(m[3])
		if r > 255 || g > 255 || b > 255 {
			return RGB{}, false
		}
		return RGB{R: r, G: g, B: b}, true
	}

	return RGB{}, false
}

func parseHex(value string) (RGB, bool) {
	hex := strings.TrimPrefix(value, "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return RGB{}, false
	}
	n, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return RGB{}, false
	}
	return RGB{
		R: int(n >> 16 & 0xff),
		G: int(n >> 8 & 0xff),
		B: int(n & 0xff),
	}, true
}

// Luminance computes WCAG relative luminance for a color.
func Luminance(c RGB) float64 {
	linear := func(v int) float64 {
		f := float64(v) / 255.0
		if f <= 0.03928 {
			return f / 12.92
		}
		return math.Pow((f+0.055)/1.055, 2.4)
	}
	return 0.2126*linear(c.R) + 0.7152*linear(c.G) + 0.0722*linear(c.B)
}

// ContrastRatio computes the WCAG contrast ratio between two colors,
// always at least 1.
func ContrastRatio(a, b RGB) float64 {
	la, lb := Luminance(a), Luminance(b)
	lighter, darker := la, lb
	if lb > la {
		lighter, darker = lb, la
	}
	return (lighter + 0.05) / (darker + 0.05)
}

// isLargeText applies the WCAG large-text rule: at least 24px (18pt), or
// bold and at least 18.66px (14pt).
func isLargeText(fontSizePx float64, bold bool) bool {
	if fontSizePx >= 24 {
		return true
	}
	return bold && fontSizePx >= 18
}

// contrastMinimum returns the AA threshold for the given text size.
func contrastMinimum(large bool) float64 {
	if large {
		return contrastLargeAA
	}
	return contrastNormalAA
}

var (
	cssColorPattern    = regexp.MustCompile(`(?i)(?:^|;)\s*color\s*:\s*([^;]+)`)
	cssBgColorPattern  = regexp.MustCompile(`(?i)background(?:-color)?\s*:\s*([^;]+)`)
	cssFontSizePattern = regexp.MustCompile(`(?i)font-size\s*:\s*([\d.]+)\s*(px|pt)`)
	cssBoldPattern     = regexp.MustCompile(`(?i)font-weight\s*:\s*(bold|[789]00)`)
	colorTokenPattern  = regexp.MustCompile(`#[0-9a-fA-F]{3,6}|rgba?\([^)]*\)|hsla?\([^)]*\)`)
)

// inlineColors extracts foreground and background colors from an inline
// style attribute. Shorthand background declarations are scanned for a
// color token.
func inlineColors(style string) (fg, bg string) {
	if m := cssColorPattern.FindStringSubmatch(style); m != nil {
		fg = strings.TrimSpace(m[1])
	}
	if m := cssBgColorPattern.FindStringSubmatch(style); m != nil {
		value := strings.TrimSpace(m[1])
		if token := colorTokenPattern.FindString(value); token != "" {
			bg = token
		} else {
			for keyword := range colorKeywords {
				if strings.Contains(strings.ToLower(value), keyword) {
					bg = keyword
					break
				}
			}
			if bg == "" {
				bg = value
			}
		}
	}
	return fg, bg
}

// inlineFont extracts the pixel size and boldness from an inline style.
// Point sizes are converted to pixels (1pt = 4/3px).
func inlineFont(style string) (sizePx float64, bold bool) {
	if m := cssFontSizePattern.FindStringSubmatch(style); m != nil {
		v, err := strconv.ParseFloat(m[1], 64)
		if err == nil {
			if strings.EqualFold(m[2], "pt") {
				v = v * 4 / 3
			}
			sizePx = v
		}
	}
	bold = cssBoldPattern.MatchString(style)
	return sizePx, bold
}
