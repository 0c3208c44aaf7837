package selector

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mohammad-safakhou/wayfarer/internal/helpers"
	"github.com/mohammad-safakhou/wayfarer/tools/web_fetch/models"
	"github.com/mohammad-safakhou/wayfarer/tools/web_fetch/page"
	"golang.org/x/net/html"
)

// noise is removed before any content is selected.
const noise = "script, style, noscript, iframe, nav, footer, header, aside"

// ContentSelectors are tried in order; the first one with visible text wins.
var ContentSelectors = []string{
	"article",
	"main",
	`[role="main"]`,
	".content",
	".post-content",
	".entry-content",
	".article-content",
	".main-content",
	"#content",
	"#main",
}

type Fetch struct {
	Client    *http.Client
	UserAgent string
}

func (f Fetch) Exec(ctx context.Context, url string, maxChars int) models.Result {
	t0 := time.Now()
	body, status, err := page.Fetch(ctx, f.Client, url, f.UserAgent)
	if err != nil {
		return models.Failed(url, status, err)
	}

	title, text, err := Extract(body)
	res := models.Result{URL: url, Status: status, RenderMS: int(time.Since(t0) / time.Millisecond)}
	if err != nil {
		res.Err = err
		return res
	}
	res.Title = title
	res.Text = helpers.Truncate(text, maxChars)
	return res
}

// Extract parses an HTML document and returns its title and the normalised
// visible text of its main content block.
func Extract(body []byte) (string, string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", "", fmt.Errorf("parse html: %w", err)
	}
	title := strings.TrimSpace(doc.Find("title").First().Text())
	doc.Find(noise).Remove()

	block := mainBlock(doc)
	text := helpers.NormalizeText(visibleText(block))
	if text == "" {
		return title, "", errors.New("no visible text")
	}
	return title, text, nil
}

func mainBlock(doc *goquery.Document) *goquery.Selection {
	for _, sel := range ContentSelectors {
		s := doc.Find(sel).First()
		if s.Length() > 0 && strings.TrimSpace(s.Text()) != "" {
			return s
		}
	}
	if body := doc.Find("body"); body.Length() > 0 {
		return body
	}
	return doc.Selection
}

var blockElements = map[string]bool{
	"address": true, "article": true, "blockquote": true, "br": true, "dd": true,
	"div": true, "dl": true, "dt": true, "figcaption": true, "h1": true, "h2": true,
	"h3": true, "h4": true, "h5": true, "h6": true, "hr": true, "li": true,
	"main": true, "ol": true, "p": true, "pre": true, "section": true, "table": true,
	"td": true, "th": true, "tr": true, "ul": true,
}

// visibleText walks the selection keeping block boundaries as line breaks,
// which goquery's Text() would otherwise glue together.
func visibleText(s *goquery.Selection) string {
	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			b.WriteString(n.Data)
			return
		case html.CommentNode:
			return
		}
		block := n.Type == html.ElementNode && blockElements[n.Data]
		if block {
			b.WriteByte('\n')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if block {
			b.WriteByte('\n')
		}
	}
	for _, n := range s.Nodes {
		walk(n)
	}
	return b.String()
}
