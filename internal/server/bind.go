package server

import (
	"bytes"
	"encoding/json"
	"io"
	"mime"

	"github.com/labstack/echo/v4"
	"github.com/mohammad-safakhou/wayfarer/internal/failures"
)

// bindJSON decodes a non-empty JSON object body into v. Anything else is a
// validation failure.
func bindJSON(c echo.Context, v any) error {
	req := c.Request()
	mediaType, _, err := mime.ParseMediaType(req.Header.Get(echo.HeaderContentType))
	if err != nil || mediaType != echo.MIMEApplicationJSON {
		return failures.New(failures.Validation, "request body must be JSON")
	}
	body, err := io.ReadAll(req.Body)
	if err != nil {
		return failures.Wrap(failures.Validation, "could not read request body", err)
	}
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return failures.New(failures.Validation, "request body is empty")
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return failures.Wrap(failures.Validation, "request body must be a JSON object", err)
	}
	if len(fields) == 0 {
		return failures.New(failures.Validation, "request body is empty")
	}
	if err := json.Unmarshal(body, v); err != nil {
		return failures.Wrap(failures.Validation, "request body has invalid fields", err)
	}
	return nil
}
