package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"
	goauth "golang.org/x/oauth2/google"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"finsimples/internal/sheets"
)

// Credentials selects how the client authenticates. A service account
// (inline JSON or file) takes precedence over an OAuth client and token pair
// produced by cmd/oauth-init.
type Credentials struct {
	ServiceAccountJSON string
	ServiceAccountFile string
	OAuthClientFile    string
	OAuthTokenFile     string
}

var ErrNoCredentials = errors.New("missing Google credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_OAUTH_CLIENT_FILE and GOOGLE_OAUTH_TOKEN_FILE)")

// Client reads spreadsheet ranges for import.
type Client struct {
	svc *gsheet.Service
}

// New creates a read-only Sheets client.
func New(ctx context.Context, creds Credentials) (*Client, error) {
	svc, err := newSheetsService(ctx, creds)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return &Client{svc: svc}, nil
}

func newSheetsService(ctx context.Context, creds Credentials) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(creds.ServiceAccountJSON)
	serviceAccountFile := strings.TrimSpace(creds.ServiceAccountFile)

	switch {
	case serviceAccountJSON != "" || serviceAccountFile != "":
		credentialsJSON := []byte(serviceAccountJSON)
		if serviceAccountJSON == "" {
			b, err := os.ReadFile(serviceAccountFile)
			if err != nil {
				return nil, fmt.Errorf("read service account file: %w", err)
			}
			credentialsJSON = b
		}
		slog.InfoContext(ctx, "Creating Google Sheets service with Service Account",
			"credentials_size", len(credentialsJSON),
			"scope", gsheet.SpreadsheetsReadonlyScope)
		return gsheet.NewService(ctx,
			goption.WithCredentialsJSON(credentialsJSON),
			goption.WithScopes(gsheet.SpreadsheetsReadonlyScope))

	case creds.OAuthClientFile != "" || creds.OAuthTokenFile != "":
		client, err := oauthHTTPClient(ctx, creds.OAuthClientFile, creds.OAuthTokenFile)
		if err != nil {
			return nil, err
		}
		slog.InfoContext(ctx, "Creating Google Sheets service with OAuth token")
		return gsheet.NewService(ctx, goption.WithHTTPClient(client))
	}
	return nil, ErrNoCredentials
}

func oauthHTTPClient(ctx context.Context, clientFile, tokenFile string) (*http.Client, error) {
	if clientFile == "" {
		return nil, errors.New("missing oauth client (set GOOGLE_OAUTH_CLIENT_FILE)")
	}
	if tokenFile == "" {
		return nil, errors.New("missing oauth token (set GOOGLE_OAUTH_TOKEN_FILE)")
	}

	b, err := os.ReadFile(clientFile)
	if err != nil {
		return nil, fmt.Errorf("read oauth client file: %w", err)
	}
	cfg, err := goauth.ConfigFromJSON(b, gsheet.SpreadsheetsReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("oauth config: %w", err)
	}

	tb, err := os.ReadFile(tokenFile)
	if err != nil {
		return nil, fmt.Errorf("read oauth token file: %w", err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(tb, &tok); err != nil {
		return nil, fmt.Errorf("parse oauth token: %w", err)
	}

	// Token refreshes go through the pooled transport too.
	ctx = context.WithValue(ctx, oauth2.HTTPClient, newHTTPClientWithPooling())
	return oauth2.NewClient(ctx, cfg.TokenSource(ctx, &tok)), nil
}

// newHTTPClientWithPooling creates an HTTP client for the Sheets API with
// connection pooling and bounded timeouts.
func newHTTPClientWithPooling() *http.Client {
	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	transport := &http.Transport{
		DialContext:         dialer.DialContext,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		MaxConnsPerHost:     50,
		IdleConnTimeout:     90 * time.Second,

		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,

		ForceAttemptHTTP2: true,
	}

	return &http.Client{
		Transport: transport,
		Timeout:   60 * time.Second,
	}
}

// Range returns a reader for one range of a spreadsheet. spreadsheet may be
// the id or a full docs.google.com URL.
func (c *Client) Range(spreadsheet, rng string) (*RangeReader, error) {
	id, err := ParseSpreadsheetID(spreadsheet)
	if err != nil {
		return nil, err
	}
	rng = strings.TrimSpace(rng)
	if rng == "" {
		return nil, errors.New("missing sheet range")
	}
	return &RangeReader{client: c, spreadsheetID: id, rng: rng}, nil
}

// RangeReader reads a spreadsheet range whose first row holds the column names.
type RangeReader struct {
	client        *Client
	spreadsheetID string
	rng           string
}

var _ sheets.TableReader = (*RangeReader)(nil)

func (r *RangeReader) ReadTable(ctx context.Context) (sheets.Table, error) {
	if r.client == nil || r.client.svc == nil {
		return sheets.Table{}, errors.New("sheets service not initialized")
	}
	resp, err := r.client.svc.Spreadsheets.Values.Get(r.spreadsheetID, r.rng).
		ValueRenderOption("FORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		return sheets.Table{}, fmt.Errorf("read %s: %w", r.rng, err)
	}
	return valuesToTable(resp.Values)
}
