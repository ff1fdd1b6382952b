// Command oauth-init runs the OAuth consent flow once and stores the token
// the server uses to read spreadsheets for import.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/caarlos0/env/v8"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/sheets/v4"

	"finsimples/internal/cli"
)

type options struct {
	ClientJSON   string `env:"GOOGLE_OAUTH_CLIENT_JSON"`
	ClientFile   string `env:"GOOGLE_OAUTH_CLIENT_FILE"`
	TokenFile    string `env:"GOOGLE_OAUTH_TOKEN_FILE" envDefault:"token.json"`
	RedirectPort string `env:"OAUTH_REDIRECT_PORT" envDefault:"8085"`
}

func main() {
	cli.LoadEnvFile()

	var opts options
	if err := env.Parse(&opts); err != nil {
		slog.Error("Failed to parse environment", "error", err)
		os.Exit(1)
	}

	ctx, stop := cli.SignalContext(context.Background())
	defer stop()

	if err := run(ctx, opts); err != nil {
		slog.Error("Authorization failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options) error {
	var b []byte
	switch {
	case opts.ClientJSON != "":
		b = []byte(opts.ClientJSON)
	case opts.ClientFile != "":
		var err error
		if b, err = os.ReadFile(opts.ClientFile); err != nil {
			return fmt.Errorf("read client file: %w", err)
		}
	default:
		return errors.New("set GOOGLE_OAUTH_CLIENT_JSON or GOOGLE_OAUTH_CLIENT_FILE")
	}

	cfg, err := google.ConfigFromJSON(b, sheets.SpreadsheetsReadonlyScope)
	if err != nil {
		return fmt.Errorf("oauth config: %w", err)
	}
	// The OAuth client must list this URI among its authorized redirect URIs.
	cfg.RedirectURL = "http://localhost:" + opts.RedirectPort + "/callback"

	state := uuid.NewString()
	codeCh := make(chan string, 1)
	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if e := q.Get("error"); e != "" {
			http.Error(w, "OAuth error: "+e, http.StatusBadRequest)
			return
		}
		if q.Get("state") != state {
			http.Error(w, "state mismatch", http.StatusBadRequest)
			return
		}
		fmt.Fprintln(w, "You may close this window and return to the terminal.")
		select {
		case codeCh <- q.Get("code"):
		default:
		}
	})
	srv := &http.Server{Addr: ":" + opts.RedirectPort, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Callback server error", "error", err)
		}
	}()
	defer srv.Close()

	fmt.Printf("Open this URL to authorize:\n%s\n", cfg.AuthCodeURL(state, oauth2.AccessTypeOffline))

	var code string
	select {
	case code = <-codeCh:
	case <-time.After(5 * time.Minute):
		return errors.New("authorization timed out")
	case <-ctx.Done():
		return errors.New("interrupted")
	}

	tok, err := cfg.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("token exchange: %w", err)
	}
	f, err := os.OpenFile(opts.TokenFile, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("open token file: %w", err)
	}
	defer f.Close()
	if err := json.NewEncoder(f).Encode(tok); err != nil {
		return fmt.Errorf("write token: %w", err)
	}
	slog.Info("Saved token", "path", opts.TokenFile)
	return nil
}
