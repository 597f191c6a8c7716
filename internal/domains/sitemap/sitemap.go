// Package sitemap renders sitemap.xml for the public site from the stored
// content.
package sitemap

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/url"
	"strings"
	"time"

	"tovakustatus-backend/internal/localstore"
	"tovakustatus-backend/internal/model"
)

const xmlns = "http://www.sitemaps.org/schemas/sitemap/0.9"

type URL struct {
	Loc        string  `xml:"loc"`
	LastMod    string  `xml:"lastmod,omitempty"`
	ChangeFreq string  `xml:"changefreq,omitempty"`
	Priority   float64 `xml:"priority,omitempty"`
}

type URLSet struct {
	XMLName xml.Name `xml:"urlset"`
	Xmlns   string   `xml:"xmlns,attr"`
	URLs    []URL    `xml:"url"`
}

var staticPages = []struct {
	path     string
	freq     string
	priority float64
}{
	{"/", "daily", 1.0},
	{"/about", "monthly", 0.8},
	{"/talents", "weekly", 0.9},
	{"/projects", "weekly", 0.8},
	{"/events", "daily", 0.9},
	{"/blog", "daily", 0.9},
	{"/media", "weekly", 0.6},
	{"/contact", "yearly", 0.5},
}

type Generator struct {
	siteURL  string
	talents  *localstore.Repository[model.Talent, *model.Talent]
	projects *localstore.Repository[model.Project, *model.Project]
	events   *localstore.Repository[model.Event, *model.Event]
	blogs    *localstore.Repository[model.BlogPost, *model.BlogPost]
	now      func() time.Time
}

func NewGenerator(siteURL string, store *localstore.Store) *Generator {
	return &Generator{
		siteURL:  strings.TrimRight(siteURL, "/"),
		talents:  localstore.NewRepository[model.Talent](store, localstore.KeyTalents),
		projects: localstore.NewRepository[model.Project](store, localstore.KeyProjects),
		events:   localstore.NewRepository[model.Event](store, localstore.KeyEvents),
		blogs:    localstore.NewRepository[model.BlogPost](store, localstore.KeyBlogPosts),
		now:      time.Now,
	}
}

// Build lists the static pages followed by one entry per stored record.
func (g *Generator) Build(ctx context.Context) (*URLSet, error) {
	today := g.now().UTC().Format("2006-01-02")
	set := &URLSet{Xmlns: xmlns}

	for _, p := range staticPages {
		set.URLs = append(set.URLs, URL{Loc: g.loc(p.path), LastMod: today, ChangeFreq: p.freq, Priority: p.priority})
	}

	talents, err := g.talents.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("sitemap talents: %w", err)
	}
	for _, t := range talents {
		set.URLs = append(set.URLs, URL{Loc: g.loc("/talents/" + url.PathEscape(t.ID)), ChangeFreq: "monthly", Priority: 0.7})
	}

	projects, err := g.projects.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("sitemap projects: %w", err)
	}
	for _, p := range projects {
		set.URLs = append(set.URLs, URL{Loc: g.loc("/projects/" + url.PathEscape(p.ID)), ChangeFreq: "monthly", Priority: 0.6})
	}

	events, err := g.events.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("sitemap events: %w", err)
	}
	for _, e := range events {
		freq := "weekly"
		if e.Status == model.EventPast {
			freq = "yearly"
		}
		set.URLs = append(set.URLs, URL{Loc: g.loc("/events/" + url.PathEscape(e.ID)), ChangeFreq: freq, Priority: 0.6})
	}

	blogs, err := g.blogs.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("sitemap blogs: %w", err)
	}
	for _, b := range blogs {
		set.URLs = append(set.URLs, URL{Loc: g.loc("/blog/" + url.PathEscape(b.ID)), ChangeFreq: "monthly", Priority: 0.7})
	}

	return set, nil
}

// Render returns the encoded document including the XML header.
func (g *Generator) Render(ctx context.Context) ([]byte, error) {
	set, err := g.Build(ctx)
	if err != nil {
		return nil, err
	}
	body, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode sitemap: %w", err)
	}
	return append([]byte(xml.Header), body...), nil
}

func (g *Generator) loc(path string) string {
	return g.siteURL + path
}
