package tasks

import (
	"context"
	"encoding/xml"
	"fmt"
	"sort"
	"time"

	"git.home.luguber.info/inful/sitegen/internal/pagetype"
	"git.home.luguber.info/inful/sitegen/internal/routes"
)

// FeedName is the task name of the RSS feed.
const FeedName = "feed"

type rss struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Language    string    `xml:"language,omitempty"`
	PubDate     string    `xml:"pubDate,omitempty"`
	Items       []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	GUID        string `xml:"guid"`
	PubDate     string `xml:"pubDate,omitempty"`
	Description string `xml:"description,omitempty"`
}

// Feed writes an RSS 2.0 feed of blog posts, newest first.
type Feed struct{}

func (Feed) Name() string { return FeedName }

func (Feed) Run(_ context.Context, tc *Context) error {
	posts := tc.Routes.ByType(pagetype.MarkdownPost)
	sort.SliceStable(posts, func(i, j int) bool {
		di, dj := postDate(posts[i]), postDate(posts[j])
		if !di.Equal(dj) {
			return di.After(dj)
		}
		return posts[i].Key < posts[j].Key
	})

	cfg := tc.Config
	channel := rssChannel{
		Title:       cfg.Feed.Title,
		Link:        tc.AbsoluteURL("/"),
		Description: cfg.Feed.Description,
		Language:    cfg.Site.Language,
	}
	if channel.Description == "" {
		channel.Description = cfg.Site.Name
	}
	for i, r := range posts {
		p := r.Page()
		item := rssItem{
			Title:       p.Title(),
			Link:        tc.AbsoluteURL(r.URI),
			GUID:        tc.AbsoluteURL(r.URI),
			Description: p.Description(),
		}
		if d := postDate(r); !d.IsZero() {
			item.PubDate = d.Format(time.RFC1123Z)
			if i == 0 {
				channel.PubDate = item.PubDate
			}
		}
		channel.Items = append(channel.Items, item)
	}

	body, err := xml.MarshalIndent(rss{Version: "2.0", Channel: channel}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode feed: %w", err)
	}
	return tc.WriteArtifact(cfg.Feed.Filename, append([]byte(xml.Header), append(body, '\n')...))
}

func postDate(r routes.Route) time.Time {
	d, _ := r.Page().Date()
	return d
}
