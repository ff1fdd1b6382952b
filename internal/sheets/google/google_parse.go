package google

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"finsimples/internal/sheets"
)

// valuesToTable converts a values matrix as returned by the Sheets API.
func valuesToTable(values [][]interface{}) (sheets.Table, error) {
	raw := make([][]string, len(values))
	for i, row := range values {
		raw[i] = toStrings(row)
	}
	return sheets.NewTable(raw)
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		if v == nil {
			continue
		}
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

// ParseSpreadsheetID accepts a bare id or a URL like
// https://docs.google.com/spreadsheets/d/<id>/edit#gid=0.
func ParseSpreadsheetID(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", errors.New("missing spreadsheet id")
	}
	if !strings.Contains(s, "/") {
		return s, nil
	}
	u, err := url.Parse(s)
	if err != nil {
		return "", fmt.Errorf("parse spreadsheet url: %w", err)
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i := 0; i+1 < len(parts); i++ {
		if parts[i] == "d" && parts[i+1] != "" {
			return parts[i+1], nil
		}
	}
	return "", fmt.Errorf("no spreadsheet id in %q", s)
}
