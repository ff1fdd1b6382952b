// Package http provides the JSON API server and its handlers.
//
// This file implements utilities for parsing and validating request data:
// JSON bodies with a size cap, and the query parameters shared by the
// read endpoints.
package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"finsimples/internal/core"
)

// maxJSONBody caps JSON request bodies.
const maxJSONBody = 1 << 20

var errTrailingData = errors.New("unexpected data after JSON body")

// ReportParams holds the year and month of a report request. Month is 0 for
// the whole year.
type ReportParams struct {
	Year  int
	Month int
}

// ParseReportParams reads year and month from the query. Year defaults to
// now's year; month accepts 1..12, and an empty value, "all" or 0 selects the
// whole year.
func ParseReportParams(query url.Values, now time.Time) (ReportParams, error) {
	params := ReportParams{Year: now.Year()}

	if v := strings.TrimSpace(query.Get("year")); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil || y < 1 || y > 9999 {
			return ReportParams{}, fmt.Errorf("invalid year %q", v)
		}
		params.Year = y
	}
	switch v := strings.ToLower(strings.TrimSpace(query.Get("month"))); v {
	case "", "all":
	default:
		m, err := strconv.Atoi(v)
		if err != nil || m < 0 || m > 12 {
			return ReportParams{}, fmt.Errorf("invalid month %q", v)
		}
		params.Month = m
	}
	return params, nil
}

// ParsePeriod reads the period query parameter. Unknown values mean all time.
func ParsePeriod(query url.Values) core.Period {
	return core.ParsePeriod(query.Get("period"))
}

// ParseType reads an optional transaction type filter.
func ParseType(query url.Values) (core.TransactionType, error) {
	v := core.TransactionType(strings.ToLower(strings.TrimSpace(query.Get("type"))))
	if v != "" && !v.Valid() {
		return "", fmt.Errorf("%w: %q", core.ErrInvalidType, v)
	}
	return v, nil
}

// DecodeJSON reads a single JSON value from the body into v.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err := dec.Decode(v); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errTrailingData
	}
	return nil
}
