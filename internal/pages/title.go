package pages

import (
	"bytes"
	"path"
	"strings"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"git.home.luguber.info/inful/sitegen/internal/ordering"
)

var titleCaser = cases.Title(language.English)

// Humanize turns a slug or identifier into a title: "getting-started" becomes
// "Getting Started". Only the last path segment is used.
func Humanize(s string) string {
	s = path.Base(strings.TrimSuffix(s, "/"))
	s = strings.NewReplacer("-", " ", "_", " ").Replace(s)
	return titleCaser.String(strings.Join(strings.Fields(s), " "))
}

// HumanizeIdentifier humanizes the leaf of an identifier, optionally
// dropping its numeric ordering prefix first.
func HumanizeIdentifier(identifier string, stripPrefix bool) string {
	if stripPrefix {
		identifier = ordering.StripNumericPrefix(identifier)
	}
	return Humanize(identifier)
}

// markdownH1 returns the text of the first level-1 heading in a Markdown body.
func markdownH1(body []byte) string {
	root := goldmark.New().Parser().Parse(text.NewReader(body))

	var title string
	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		h, ok := n.(*gmast.Heading)
		if !ok || h.Level != 1 {
			return gmast.WalkContinue, nil
		}
		title = strings.TrimSpace(nodeText(h, body))
		return gmast.WalkStop, nil
	})
	return title
}

func nodeText(n gmast.Node, src []byte) string {
	var buf bytes.Buffer
	_ = gmast.Walk(n, func(c gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *gmast.Text:
			buf.Write(t.Segment.Value(src))
			if t.SoftLineBreak() {
				buf.WriteByte(' ')
			}
		case *gmast.String:
			buf.Write(t.Value)
		}
		return gmast.WalkContinue, nil
	})
	return buf.String()
}

// templateH1 returns the static text of the first <h1> in a template, or ""
// when the heading is computed by template actions.
func templateH1(body []byte) string {
	z := html.NewTokenizer(bytes.NewReader(body))
	inH1 := false
	var buf strings.Builder
	for {
		switch z.Next() {
		case html.ErrorToken:
			return ""
		case html.StartTagToken:
			if tok := z.Token(); tok.DataAtom == atom.H1 {
				inH1 = true
			}
		case html.TextToken:
			if inH1 {
				buf.Write(z.Text())
			}
		case html.EndTagToken:
			if tok := z.Token(); inH1 && tok.DataAtom == atom.H1 {
				title := strings.TrimSpace(buf.String())
				if strings.Contains(title, "{{") {
					return ""
				}
				return title
			}
		}
	}
}
