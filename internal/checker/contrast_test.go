package checker

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseColor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  RGB
		ok    bool
	}{
		{name: "six digit hex", input: "#ff8000", want: RGB{R: 255, G: 128, B: 0}, ok: true},
		{name: "three digit hex", input: "#f80", want: RGB{R: 255, G: 136, B: 0}, ok: true},
		{name: "uppercase hex", input: "#FFFFFF", want: RGB{R: 255, G: 255, B: 255}, ok: true},
		{name: "rgb function", input: "rgb(12, 34, 56)", want: RGB{R: 12, G: 34, B: 56}, ok: true},
		{name: "rgba function", input: "rgba(12, 34, 56, 0.5)", want: RGB{R: 12, G: 34, B: 56}, ok: true},
		{name: "keyword", input: "white", want: RGB{R: 255, G: 255, B: 255}, ok: true},
		{name: "keyword case", input: "Black", want: RGB{}, ok: true},
		{name: "transparent", input: "transparent", ok: false},
		{name: "empty", input: "", ok: false},
		{name: "out of range", input: "rgb(300, 0, 0)", ok: false},
		{name: "garbage", input: "not-a-color", ok: false},
		{name: "bad hex", input: "#zzzzzz", ok: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := ParseColor(tt.input)
			require.Equal(t, tt.ok, ok)
			if tt.ok {
				require.Equal(t, tt.want, got)
			}
		})
	}
}

func TestLuminanceAndContrast(t *testing.T) {
	t.Parallel()

	black := RGB{}
	white := RGB{R: 255, G: 255, B: 255}

	require.InDelta(t, 0.0, Luminance(black), 1e-9)
	require.InDelta(t, 1.0, Luminance(white), 1e-9)

	require.InDelta(t, 21.0, ContrastRatio(black, white), 0.01)
	// Order must not matter.
	require.InDelta(t, ContrastRatio(white, black), ContrastRatio(black, white), 1e-9)
	require.InDelta(t, 1.0, ContrastRatio(white, white), 1e-9)
}

func TestLargeTextRule(t *testing.T) {
	t.Parallel()

	require.True(t, isLargeText(24, false))
	require.True(t, isLargeText(18, true))
	require.False(t, isLargeText(18, false))
	require.False(t, isLargeText(16, true))
	require.False(t, isLargeText(0, false))

	require.InDelta(t, 3.0, contrastMinimum(true), 1e-9)
	require.InDelta(t, 4.5, contrastMinimum(false), 1e-9)
}

func TestInlineColors(t *testing.T) {
	t.Parallel()

	fg, bg := inlineColors("color: #fff; background-color: #000")
	require.Equal(t, "#fff", fg)
	require.Equal(t, "#000", bg)

	fg, bg = inlineColors("background: url(tile.png) red; color: rgb(0, 0, 0)")
	require.Equal(t, "rgb(0, 0, 0)", fg)
	require.Equal(t, "red", bg)

	fg, bg = inlineColors("font-size: 14px")
	require.Empty(t, fg)
	require.Empty(t, bg)
}

func TestInlineFont(t *testing.T) {
	t.Parallel()

	size, bold := inlineFont("font-size: 18pt; font-weight: bold")
	require.InDelta(t, 24.0, size, 1e-9)
	require.True(t, bold)

	size, bold = inlineFont("font-size: 16px; font-weight: 400")
	require.InDelta(t, 16.0, size, 1e-9)
	require.False(t, bold)

	size, bold = inlineFont("color: red")
	require.Zero(t, size)
	require.False(t, bold)
}
