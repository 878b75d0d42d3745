// Package snapshot turns a rendered page into an immutable document model
// that checkers can query concurrently.
package snapshot

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// maxExcerptLen caps element excerpts attached to issues.
const maxExcerptLen = 200

// StyleSample is one rendered element's computed style, captured in the
// browser after layout. Colors arrive in the rgb()/rgba() form computed
// styles use.
type StyleSample struct {
	Tag          string  `json:"tag"`
	Excerpt      string  `json:"excerpt"`
	Text         string  `json:"text"`
	Color        string  `json:"color"`
	Background   string  `json:"background"`
	FontSizePx   float64 `json:"fontSize"`
	FontWeight   int     `json:"fontWeight"`
	OutlineStyle string  `json:"outlineStyle"`
	OutlineWidth string  `json:"outlineWidth"`
	Interactive  bool    `json:"interactive"`
}

// PageData is everything the builder hands over from the browser.
type PageData struct {
	URL          string
	FinalURL     string
	StatusCode   int
	HTML         string
	Screenshot   []byte
	StyleSamples []StyleSample
	RenderedAt   time.Time
}

// Node is one element in the immutable document tree. Attribute keys are
// lowercased at build time.
type Node struct {
	Tag      string
	Attrs    map[string]string
	Text     string
	Children []*Node
}

// Attr returns the attribute value and whether it was present.
func (n *Node) Attr(key string) (string, bool) {
	v, ok := n.Attrs[key]
	return v, ok
}

// Snapshot is the immutable view of one rendered page. All accessors are
// safe for concurrent use; callers must not mutate the returned document.
type Snapshot struct {
	url          string
	finalURL     string
	statusCode   int
	htmlText     string
	title        string
	lang         string
	screenshot   []byte
	styleSamples []StyleSample
	renderedAt   time.Time

	doc  *goquery.Document
	root *Node
}

// Parse builds a snapshot from rendered page data. The HTML is parsed once;
// checkers share the resulting document.
func Parse(data PageData) (*Snapshot, error) {
	rootNode, err := html.Parse(strings.NewReader(data.HTML))
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	doc := goquery.NewDocumentFromNode(rootNode)

	s := &Snapshot{
		url:          data.URL,
		finalURL:     data.FinalURL,
		statusCode:   data.StatusCode,
		htmlText:     data.HTML,
		screenshot:   data.Screenshot,
		styleSamples: append([]StyleSample(nil), data.StyleSamples...),
		renderedAt:   data.RenderedAt,
		doc:          doc,
		root:         buildTree(rootNode),
	}

	s.title = strings.TrimSpace(doc.Find("title").First().Text())
	if lang, ok := doc.Find("html").First().Attr("lang"); ok {
		s.lang = strings.TrimSpace(lang)
	}

	return s, nil
}

// URL returns the requested URL.
func (s *Snapshot) URL() string { return s.url }

// FinalURL returns the post-redirect URL.
func (s *Snapshot) FinalURL() string { return s.finalURL }

// StatusCode returns the document response status.
func (s *Snapshot) StatusCode() int { return s.statusCode }

// Title returns the trimmed document title, empty when absent.
func (s *Snapshot) Title() string { return s.title }

// Lang returns the html element's lang attribute, empty when absent.
func (s *Snapshot) Lang() string { return s.lang }

// HTML returns the full rendered markup.
func (s *Snapshot) HTML() string { return s.htmlText }

// Screenshot returns the captured PNG, nil when not requested.
func (s *Snapshot) Screenshot() []byte { return s.screenshot }

// StyleSamples returns the computed-style samples captured after layout.
func (s *Snapshot) StyleSamples() []StyleSample { return s.styleSamples }

// RenderedAt returns when the browser finished rendering.
func (s *Snapshot) RenderedAt() time.Time { return s.renderedAt }

// Doc exposes the shared parsed document. Callers must treat it as
// read-only.
func (s *Snapshot) Doc() *goquery.Document { return s.doc }

// Root returns the immutable element tree.
func (s *Snapshot) Root() *Node { return s.root }

// buildTree converts the parse tree into the immutable Node form in a
// single walk. Text nodes fold into their parent's Text field.
func buildTree(n *html.Node) *Node {
	node := &Node{
		Attrs: make(map[string]string, len(n.Attr)),
	}
	if n.Type == html.ElementNode {
		node.Tag = strings.ToLower(n.Data)
	}
	for _, attr := range n.Attr {
		node.Attrs[strings.ToLower(attr.Key)] = attr.Val
	}

	var text strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			text.WriteString(c.Data)
		case html.ElementNode:
			node.Children = append(node.Children, buildTree(c))
		case html.DocumentNode:
		default:
		}
	}
	node.Text = strings.TrimSpace(text.String())
	return node
}

// Excerpt renders the selection's outer HTML truncated for issue reports.
func Excerpt(sel *goquery.Selection) string {
	if sel == nil || sel.Length() == 0 {
		return ""
	}
	raw, err := goquery.OuterHtml(sel.First())
	if err != nil {
		return ""
	}
	return Truncate(strings.TrimSpace(raw))
}

// Truncate caps a string at the excerpt limit, appending an ellipsis when
// cut. The cut backs up to a rune boundary so excerpts stay valid UTF-8.
func Truncate(s string) string {
	if len(s) <= maxExcerptLen {
		return s
	}
	cut := maxExcerptLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
