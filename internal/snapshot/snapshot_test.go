package snapshot

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/require"

	"github.com/a11ycheck/a11ycheck/internal/accessibility"
)

const samplePage = `<!DOCTYPE html>
<html lang="en">
<head><title> Example Page </title></head>
<body>
  <main>
    <h1 id="top">Welcome</h1>
    <p class="intro">Hello <strong>world</strong></p>
    <img src="logo.png" alt="Company logo">
  </main>
</body>
</html>`

func mustParse(t *testing.T, htmlText string) *Snapshot {
	t.Helper()
	snap, err := Parse(PageData{
		URL:        "https://example.com/",
		FinalURL:   "https://example.com/",
		StatusCode: 200,
		HTML:       htmlText,
		RenderedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	return snap
}

func TestParseMetadata(t *testing.T) {
	t.Parallel()

	snap := mustParse(t, samplePage)
	require.Equal(t, "https://example.com/", snap.URL())
	require.Equal(t, 200, snap.StatusCode())
	require.Equal(t, "Example Page", snap.Title())
	require.Equal(t, "en", snap.Lang())
	require.Equal(t, 2026, snap.RenderedAt().Year())
}

func TestParseMissingTitleAndLang(t *testing.T) {
	t.Parallel()

	snap := mustParse(t, `<html><body><p>hi</p></body></html>`)
	require.Empty(t, snap.Title())
	require.Empty(t, snap.Lang())
}

func TestParseDocQueries(t *testing.T) {
	t.Parallel()

	snap := mustParse(t, samplePage)

	require.Equal(t, 1, snap.Doc().Find("h1").Length())
	alt, ok := snap.Doc().Find("img").First().Attr("alt")
	require.True(t, ok)
	require.Equal(t, "Company logo", alt)
}

func TestParseTree(t *testing.T) {
	t.Parallel()

	snap := mustParse(t, samplePage)
	root := snap.Root()
	require.NotNil(t, root)

	var h1 *Node
	var walk func(n *Node)
	walk = func(n *Node) {
		if n.Tag == "h1" {
			h1 = n
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(root)

	require.NotNil(t, h1)
	require.Equal(t, "Welcome", h1.Text)
	id, ok := h1.Attr("id")
	require.True(t, ok)
	require.Equal(t, "top", id)
}

func TestParseTreeLowercasesAttrs(t *testing.T) {
	t.Parallel()

	snap := mustParse(t, `<html><body><div DATA-Role="Banner">x</div></body></html>`)

	var div *Node
	var walk func(n *Node)
	walk = func(n *Node) {
		if n.Tag == "div" {
			div = n
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(snap.Root())

	require.NotNil(t, div)
	v, ok := div.Attr("data-role")
	require.True(t, ok)
	require.Equal(t, "Banner", v)
}

func TestExcerptTruncates(t *testing.T) {
	t.Parallel()

	long := `<p>` + strings.Repeat("a", 500) + `</p>`
	snap := mustParse(t, `<html><body>`+long+`</body></html>`)

	excerpt := Excerpt(snap.Doc().Find("p"))
	require.Len(t, excerpt, 203)
	require.True(t, strings.HasSuffix(excerpt, "..."))
}

func TestExcerptEmptySelection(t *testing.T) {
	t.Parallel()

	snap := mustParse(t, samplePage)
	require.Empty(t, Excerpt(snap.Doc().Find("video")))
	require.Empty(t, Excerpt(nil))
}

func TestTruncateShortString(t *testing.T) {
	t.Parallel()

	require.Equal(t, "short", Truncate("short"))
}

func TestTruncateKeepsRuneBoundaries(t *testing.T) {
	t.Parallel()

	// 199 ASCII bytes followed by a three-byte rune straddling the limit.
	straddled := strings.Repeat("a", 199) + strings.Repeat("日", 40)
	got := Truncate(straddled)
	require.True(t, utf8.ValidString(got))
	require.True(t, strings.HasSuffix(got, "a..."))

	multibyte := strings.Repeat("é", 300)
	got = Truncate(multibyte)
	require.True(t, utf8.ValidString(got))
	require.True(t, strings.HasSuffix(got, "..."))
}

func TestClassifyRenderError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want error
	}{
		{
			name: "deadline",
			err:  contextDeadline(),
			want: accessibility.ErrRenderTimeout,
		},
		{
			name: "dns failure",
			err:  errString("page load error net::ERR_NAME_NOT_RESOLVED"),
			want: accessibility.ErrNavigation,
		},
		{
			name: "connection refused",
			err:  errString("chromedp run: net::ERR_CONNECTION_REFUSED"),
			want: accessibility.ErrNavigation,
		},
		{
			name: "websocket teardown",
			err:  errString("websocket: close 1006 (abnormal closure)"),
			want: accessibility.ErrRenderCrash,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := classifyRenderError(tt.err)
			require.ErrorIs(t, got, tt.want)
		})
	}
}

func TestClassifyRenderErrorNil(t *testing.T) {
	t.Parallel()

	require.NoError(t, classifyRenderError(nil))
}

func contextDeadline() error {
	return fmt.Errorf("chromedp run: %w", context.DeadlineExceeded)
}

type errString string

func (e errString) Error() string { return string(e) }

