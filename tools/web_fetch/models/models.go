package models

// Result is the outcome of one extraction. Either Text is set or Err explains
// why the page yielded nothing; it is never both.
type Result struct {
	URL      string `json:"url"`
	Title    string `json:"title,omitempty"`
	Text     string `json:"text,omitempty"`
	Status   int    `json:"status"`
	RenderMS int    `json:"render_ms"`
	Err      error  `json:"-"`
}

// Ok reports whether the extraction produced usable text.
func (r Result) Ok() bool { return r.Err == nil && r.Text != "" }

// Failed builds a Result carrying err.
func Failed(url string, status int, err error) Result {
	return Result{URL: url, Status: status, Err: err}
}
