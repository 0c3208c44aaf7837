package web_fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/mohammad-safakhou/wayfarer/config"
	"github.com/mohammad-safakhou/wayfarer/internal/helpers"
	"github.com/mohammad-safakhou/wayfarer/tools/web_fetch/models"
	"github.com/mohammad-safakhou/wayfarer/tools/web_fetch/page"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFetcher(t *testing.T, engine string, timeout time.Duration) WebFetcher {
	t.Helper()
	f, err := NewWebFetcher(config.ExtractConfig{Engine: engine, Timeout: timeout}, nil)
	require.NoError(t, err)
	return f
}

func TestExecExtractsAndTruncates(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(`<html><body><main><p>` + strings.Repeat("word ", 100) + `</p></main></body></html>`))
	}))
	defer srv.Close()

	res := newFetcher(t, config.ExtractEngineSelector, time.Second).Exec(context.Background(), srv.URL, 20)
	require.True(t, res.Ok(), "unexpected failure: %v", res.Err)
	assert.Equal(t, http.StatusOK, res.Status)
	assert.True(t, strings.HasSuffix(res.Text, helpers.TruncationMarker))
	assert.LessOrEqual(t, len([]rune(res.Text)), 20+len(helpers.TruncationMarker))
	assert.Contains(t, gotUA, "Mozilla/5.0")
}

func TestExecFailuresBecomeEmptyResults(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"not found", func(w http.ResponseWriter, r *http.Request) { http.NotFound(w, r) }},
		{"server error", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusBadGateway) }},
		{"binary content", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/pdf")
			_, _ = w.Write([]byte("%PDF-1.4"))
		}},
		{"slow page", func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-time.After(time.Second):
			case <-r.Context().Done():
			}
		}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()
			res := newFetcher(t, config.ExtractEngineSelector, 100*time.Millisecond).Exec(context.Background(), srv.URL, 100)
			assert.False(t, res.Ok())
			assert.Error(t, res.Err)
			assert.Empty(t, res.Text)
		})
	}
}

func TestExecUnreachableHost(t *testing.T) {
	res := newFetcher(t, config.ExtractEngineSelector, 100*time.Millisecond).Exec(context.Background(), "http://127.0.0.1:1/", 100)
	assert.False(t, res.Ok())
}

func TestExecRejectsNonHTTPLinks(t *testing.T) {
	f := newFetcher(t, config.ExtractEngineSelector, 100*time.Millisecond)
	for _, link := range []string{"", "javascript:void(0)", "/relative", "mailto:someone@example.com"} {
		res := f.Exec(context.Background(), link, 100)
		assert.False(t, res.Ok(), link)
		assert.Equal(t, page.StatusFailed, res.Status, link)
	}
}

func TestReadabilityEngine(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><head><title>Kyoto food</title></head><body><article><h1>Kyoto food</h1>` +
			strings.Repeat(`<p>Kaiseki dinners and nishiki market snacks are a highlight of any visit to the old capital, with tofu and matcha everywhere.</p>`, 8) +
			`</article></body></html>`))
	}))
	defer srv.Close()

	res := newFetcher(t, config.ExtractEngineReadability, time.Second).Exec(context.Background(), srv.URL, 1500)
	require.True(t, res.Ok(), "unexpected failure: %v", res.Err)
	assert.Contains(t, res.Text, "Kaiseki dinners")
}

func TestExecDecodesDeclaredCharset(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		head        string
		body        []byte
		want        string
	}{
		// 京都旅游
		{"gbk header", "text/html; charset=gbk", "", []byte{0xbe, 0xa9, 0xb6, 0xbc, 0xc2, 0xc3, 0xd3, 0xce}, "京都旅游"},
		// 京都
		{"shift_jis header", "text/html; charset=Shift_JIS", "", []byte{0x8b, 0x9e, 0x93, 0x73}, "京都"},
		{"latin-1 meta tag", "text/html", `<meta charset="iso-8859-1">`, []byte("Caf\xe9 du Port"), "Café du Port"},
	}
	for _, tt := range tests {
		tt := tt
		for _, engine := range []string{config.ExtractEngineSelector, config.ExtractEngineReadability} {
			engine := engine
			t.Run(tt.name+"/"+engine, func(t *testing.T) {
				srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					w.Header().Set("Content-Type", tt.contentType)
					_, _ = w.Write([]byte("<html><head>" + tt.head + "<title>t</title></head><body><article><p>"))
					_, _ = w.Write(tt.body)
					_, _ = w.Write([]byte("</p></article></body></html>"))
				}))
				defer srv.Close()

				res := newFetcher(t, engine, time.Second).Exec(context.Background(), srv.URL, 500)
				require.True(t, res.Ok(), "unexpected failure: %v", res.Err)
				assert.True(t, utf8.ValidString(res.Text), "invalid utf-8: %q", res.Text)
				assert.Contains(t, res.Text, tt.want)
			})
		}
	}
}

type panicky struct{}

func (panicky) Exec(ctx context.Context, url string, maxChars int) models.Result { panic("boom") }

func TestGuardedRecoversPanics(t *testing.T) {
	res := guarded{inner: panicky{}, engine: "test"}.Exec(context.Background(), "https://example.com", 10)
	assert.False(t, res.Ok())
	assert.ErrorContains(t, res.Err, "panic")
}

func TestNewWebFetcherRejectsUnknownEngine(t *testing.T) {
	_, err := NewWebFetcher(config.ExtractConfig{Engine: "chromedp"}, nil)
	assert.Error(t, err)
}
