package models

import "github.com/mohammad-safakhou/wayfarer/internal/helpers"

// Result is one ranked search hit. Content is filled in by enrichment when the
// linked page could be extracted; IsLinkOnly marks hits that carry neither a
// snippet nor content.
type Result struct {
	Title      string `json:"title"`
	Snippet    string `json:"snippet"`
	Link       string `json:"link"`
	Content    string `json:"content,omitempty"`
	IsLinkOnly bool   `json:"isLinkOnly,omitempty"`
}

// Reference is the {title, link} pair returned to API clients.
type Reference struct {
	Title string `json:"title"`
	Link  string `json:"link"`
}

func (r Result) Reference() Reference { return Reference{Title: r.Title, Link: r.Link} }

// References lists the references of results in order.
func References(results []Result) []Reference {
	out := make([]Reference, 0, len(results))
	for _, r := range results {
		out = append(out, r.Reference())
	}
	return out
}

// NewResult builds a result from raw provider fields, reducing HTML in the
// title and snippet to plain text. It reports false for links that are not
// absolute http(s) URLs.
func NewResult(title, link, snippet string) (Result, bool) {
	u, err := helpers.ParseHTTPURL(link)
	if err != nil {
		return Result{}, false
	}
	return Result{Title: helpers.PlainText(title), Snippet: helpers.PlainText(snippet), Link: u.String()}, true
}
