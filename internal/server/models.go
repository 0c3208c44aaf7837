package server

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/mohammad-safakhou/wayfarer/tools/web_search/models"
)

// Days accepts a JSON number or a numeric string ("3"). Raw keeps the
// original token so that presence and validity can be told apart.
type Days struct {
	Raw json.RawMessage
}

func (d *Days) UnmarshalJSON(b []byte) error {
	d.Raw = append(d.Raw[:0], b...)
	return nil
}

// Present reports whether days was given a non-empty value.
func (d Days) Present() bool {
	raw := bytes.TrimSpace(d.Raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s) != ""
	}
	return true
}

// Int returns the number of days, or false when the value is not a whole number.
func (d Days) Int() (int, bool) {
	raw := bytes.TrimSpace(d.Raw)
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		raw = []byte(strings.TrimSpace(s))
	}
	n, err := strconv.Atoi(string(raw))
	if err != nil {
		f, ferr := strconv.ParseFloat(string(raw), 64)
		if ferr != nil || f != float64(int(f)) {
			return 0, false
		}
		n = int(f)
	}
	return n, true
}

// PlanRequest is the body of /api/generate-plan and /api/travel-info.
type PlanRequest struct {
	Days        Days   `json:"days"`
	Destination string `json:"destination"`
	Budget      string `json:"budget,omitempty"`
	Preferences string `json:"preferences,omitempty"`
}

// SearchRequest is the body of /api/search.
type SearchRequest struct {
	Query string `json:"query"`
}

// PlanResponse answers /api/generate-plan.
type PlanResponse struct {
	Success    bool               `json:"success"`
	Plan       string             `json:"plan,omitempty"`
	Error      string             `json:"error,omitempty"`
	References []models.Reference `json:"references"`
}

// SearchResponse answers /api/search. SummaryError marks a response whose
// summary could not be generated; the references are still included.
type SearchResponse struct {
	Success      bool               `json:"success"`
	Summary      string             `json:"summary,omitempty"`
	References   []models.Reference `json:"references,omitempty"`
	Error        string             `json:"error,omitempty"`
	UsingAPI     bool               `json:"usingApi,omitempty"`
	SummaryError bool               `json:"summaryError,omitempty"`
}

// TravelInfoResponse answers /api/travel-info.
type TravelInfoResponse struct {
	Success    bool               `json:"success"`
	References []models.Reference `json:"references"`
	Results    []models.Result    `json:"results"`
}

// ErrorResponse is the envelope rendered by the HTTP error handler.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}
