package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"finsimples/internal/config"
)

func TestLoadAndValidateConfig(t *testing.T) {
	t.Setenv("JWT_SECRET", strings.Repeat("s", 32))
	for key, val := range map[string]string{
		"DATA_BACKEND": "memory", "PORT": "8081", "AMQP_URL": "",
		"LOG_LEVEL": "info", "LOG_FORMAT": "text", "CATEGORY_DELETE_POLICY": "orphan",
	} {
		t.Setenv(key, val)
	}
	if _, err := LoadAndValidateConfig(); err != nil {
		t.Fatalf("LoadAndValidateConfig() error = %v", err)
	}

	t.Setenv("CATEGORY_DELETE_POLICY", "shred")
	if _, err := LoadAndValidateConfig(); err == nil {
		t.Error("LoadAndValidateConfig() expected error for unknown delete policy")
	}
}

func TestSetupLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := SetupLogger(&config.Config{LogLevel: "debug", LogFormat: "json"}, &buf)
	if err != nil {
		t.Fatalf("SetupLogger() error = %v", err)
	}
	logger.Debug("ready")
	if !strings.Contains(buf.String(), `"msg":"ready"`) {
		t.Errorf("output = %q", buf.String())
	}

	if _, err := SetupLogger(&config.Config{LogLevel: "info", LogFormat: "yaml"}, &buf); err == nil {
		t.Error("SetupLogger() expected error for unknown format")
	}
}

func TestGracefulShutdown(t *testing.T) {
	var buf bytes.Buffer
	logger, _ := SetupLogger(&config.Config{LogLevel: "info", LogFormat: "text"}, &buf)

	var order []string
	step := func(name string, err error) func(context.Context) error {
		return func(context.Context) error {
			order = append(order, name)
			return err
		}
	}
	GracefulShutdown(logger, time.Second, step("server", nil), nil, step("broker", errors.New("already closed")), step("store", nil))

	if strings.Join(order, ",") != "server,broker,store" {
		t.Errorf("order = %v", order)
	}
	out := buf.String()
	if !strings.Contains(out, "already closed") || !strings.Contains(out, "Shutdown complete") {
		t.Errorf("output = %q", out)
	}
}
