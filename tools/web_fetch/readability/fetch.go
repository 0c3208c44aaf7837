package readability

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-shiori/go-readability"
	"github.com/mohammad-safakhou/wayfarer/internal/helpers"
	"github.com/mohammad-safakhou/wayfarer/tools/web_fetch/models"
	"github.com/mohammad-safakhou/wayfarer/tools/web_fetch/page"
)

type Fetch struct {
	Client    *http.Client
	UserAgent string
}

func (f Fetch) Exec(ctx context.Context, rawURL string, maxChars int) models.Result {
	t0 := time.Now()
	body, status, err := page.Fetch(ctx, f.Client, rawURL, f.UserAgent)
	if err != nil {
		return models.Failed(rawURL, status, err)
	}

	pageURL, err := helpers.ParseHTTPURL(rawURL)
	if err != nil {
		return models.Failed(rawURL, status, err)
	}
	article, err := readability.FromReader(bytes.NewReader(body), pageURL)
	if err != nil {
		return models.Failed(rawURL, status, fmt.Errorf("readability: %w", err))
	}
	text := helpers.NormalizeText(article.TextContent)
	if text == "" {
		return models.Failed(rawURL, status, errors.New("no readable content"))
	}
	return models.Result{
		URL:      rawURL,
		Title:    strings.TrimSpace(article.Title),
		Text:     helpers.Truncate(text, maxChars),
		Status:   status,
		RenderMS: int(time.Since(t0) / time.Millisecond),
	}
}
