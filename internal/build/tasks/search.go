package tasks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"git.home.luguber.info/inful/sitegen/internal/pagetype"
)

// SearchName is the task name of the documentation search index.
const SearchName = "search"

// SearchEntry is one document of the search index.
type SearchEntry struct {
	Slug        string `json:"slug"`
	Title       string `json:"title"`
	Content     string `json:"content"`
	Destination string `json:"destination"`
}

// Search writes a JSON index of the text of every documentation page, read
// back from the compiled HTML.
type Search struct{}

func (Search) Name() string { return SearchName }

func (Search) Run(ctx context.Context, tc *Context) error {
	entries := []SearchEntry{}
	for _, r := range tc.Routes.ByType(pagetype.Documentation) {
		if err := ctx.Err(); err != nil {
			return err
		}
		// #nosec G304 -- path comes from the route table.
		raw, err := os.ReadFile(tc.OutputPath(r.OutputPath))
		if err != nil {
			return fmt.Errorf("read %s: %w", r.OutputPath, err)
		}
		content, err := ExtractText(raw)
		if err != nil {
			return fmt.Errorf("extract text from %s: %w", r.OutputPath, err)
		}
		entries = append(entries, SearchEntry{
			Slug:        path.Base(r.Key),
			Title:       r.Page().Title(),
			Content:     content,
			Destination: r.URI,
		})
	}

	body, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode search index: %w", err)
	}
	dest := path.Join(tc.Config.Docs.OutputDirectory, tc.Config.Search.Filename)
	return tc.WriteArtifact(dest, append(body, '\n'))
}

var skippedElements = map[atom.Atom]bool{
	atom.Script: true, atom.Style: true, atom.Nav: true,
	atom.Header: true, atom.Footer: true, atom.Aside: true, atom.Head: true,
}

// ExtractText returns the whitespace-normalized text of an HTML document's
// <main> element, or of <body> when there is none. Navigation chrome is skipped.
func ExtractText(doc []byte) (string, error) {
	root, err := html.Parse(bytes.NewReader(doc))
	if err != nil {
		return "", err
	}
	start := findElement(root, atom.Main)
	if start == nil {
		start = findElement(root, atom.Body)
	}
	if start == nil {
		start = root
	}

	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && skippedElements[n.DataAtom] {
			return
		}
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(start)
	return strings.Join(strings.Fields(b.String()), " "), nil
}

func findElement(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, a); found != nil {
			return found
		}
	}
	return nil
}
