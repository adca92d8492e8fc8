package tasks

import (
	"context"
	"encoding/xml"
	"fmt"
	"time"
)

// SitemapName is the task and file name of the sitemap.
const SitemapName = "sitemap"

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}

// Sitemap writes sitemap.xml listing every route except the 404 page.
type Sitemap struct{}

func (Sitemap) Name() string { return SitemapName }

func (Sitemap) Run(_ context.Context, tc *Context) error {
	set := sitemapURLSet{XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9"}
	for _, r := range tc.Routes.All() {
		if r.Key == "404" {
			continue
		}
		u := sitemapURL{Loc: tc.AbsoluteURL(r.URI), ChangeFreq: "daily", Priority: sitemapPriority(r.Key)}
		if tc.Lastmod != nil {
			if t, ok := tc.Lastmod.LastModified(r.SourcePath); ok {
				u.LastMod = t.UTC().Format(time.RFC3339)
			}
		}
		set.URLs = append(set.URLs, u)
	}

	body, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return fmt.Errorf("encode sitemap: %w", err)
	}
	return tc.WriteArtifact("sitemap.xml", append([]byte(xml.Header), append(body, '\n')...))
}

func sitemapPriority(key string) string {
	if key == "index" {
		return "1.0"
	}
	return "0.5"
}
