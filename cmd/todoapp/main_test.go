package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/example/weather-todo/internal/config"
)

func newUpstream(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") == "Nowhere" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`{"main":{"temp":7.5},"weather":[{"description":"overcast clouds","icon":"04d"}]}`))
	}))
	t.Cleanup(server.Close)
	return server
}

func testConfig(t *testing.T, upstream string) config.Config {
	cfg := config.Defaults()
	cfg.SQLiteDSN = filepath.Join(t.TempDir(), "todo.db")
	cfg.WeatherAPIKey = "test-key"
	cfg.WeatherBaseURL = upstream
	cfg.WeatherIconBaseURL = "http://icons.test"
	return cfg
}

func startServer(t *testing.T, cfg config.Config) (string, context.CancelFunc, <-chan error) {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- run(ctx, cfg, logger, listener) }()

	base := "http://" + listener.Addr().String()
	waitForHealthy(t, base)
	return base, cancel, done
}

func waitForHealthy(t *testing.T, base string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := http.Get(base + "/healthz")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("server at %s never became healthy", base)
}

func stopServer(t *testing.T, cancel context.CancelFunc, done <-chan error) {
	t.Helper()
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("server did not stop")
	}
}

func postJSON(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestRun_ServesAndPersistsAcrossRestarts(t *testing.T) {
	upstream := newUpstream(t)
	cfg := testConfig(t, upstream.URL)

	base, cancel, done := startServer(t, cfg)

	if resp := postJSON(t, base+"/login", `{"username":"alice","password":"pw"}`); resp.StatusCode != http.StatusOK {
		t.Fatalf("login returned %d", resp.StatusCode)
	}

	resp := postJSON(t, base+"/weather", `{"city":"Berlin"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("weather returned %d", resp.StatusCode)
	}
	var weatherBody struct {
		Weather struct {
			Temperature float64 `json:"temperature"`
			IconURL     string  `json:"iconUrl"`
		} `json:"weather"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&weatherBody); err != nil {
		t.Fatalf("decode weather: %v", err)
	}
	if weatherBody.Weather.Temperature != 7.5 || weatherBody.Weather.IconURL != "http://icons.test/img/wn/04d@2x.png" {
		t.Fatalf("unexpected weather %#v", weatherBody)
	}

	if resp := postJSON(t, base+"/todos", `{"title":"Buy milk","priority":"High"}`); resp.StatusCode != http.StatusCreated {
		t.Fatalf("create todo returned %d", resp.StatusCode)
	}

	if resp := postJSON(t, base+"/weather", `{"city":"Nowhere"}`); resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("expected 502 for unknown city, got %d", resp.StatusCode)
	}

	stopServer(t, cancel, done)

	base, cancel, done = startServer(t, cfg)
	defer stopServer(t, cancel, done)

	sessionResp, err := http.Get(base + "/session")
	if err != nil {
		t.Fatalf("GET /session: %v", err)
	}
	defer sessionResp.Body.Close()
	var session struct {
		Authenticated bool `json:"authenticated"`
	}
	if err := json.NewDecoder(sessionResp.Body).Decode(&session); err != nil || !session.Authenticated {
		t.Fatalf("expected session restored after restart, got %#v (%v)", session, err)
	}

	listResp, err := http.Get(base + "/todos")
	if err != nil {
		t.Fatalf("GET /todos: %v", err)
	}
	defer listResp.Body.Close()
	var list struct {
		Todos []struct {
			Title       string `json:"title"`
			WeatherInfo *struct {
				Description string `json:"description"`
			} `json:"weatherInfo"`
		} `json:"todos"`
	}
	if err := json.NewDecoder(listResp.Body).Decode(&list); err != nil {
		t.Fatalf("decode todos: %v", err)
	}
	if len(list.Todos) != 1 || list.Todos[0].Title != "Buy milk" {
		t.Fatalf("expected todo restored after restart, got %#v", list.Todos)
	}
	if list.Todos[0].WeatherInfo == nil || list.Todos[0].WeatherInfo.Description != "overcast clouds" {
		t.Fatalf("expected weather info restored, got %#v", list.Todos[0].WeatherInfo)
	}
}

func TestRun_FailsOnUnusableDatabasePath(t *testing.T) {
	cfg := testConfig(t, "http://127.0.0.1:1")
	blocker := filepath.Join(t.TempDir(), "file")
	if err := writeFile(blocker); err != nil {
		t.Fatalf("write blocker: %v", err)
	}
	cfg.SQLiteDSN = filepath.Join(blocker, "todo.db")

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if err := run(context.Background(), cfg, logger, listener); err == nil {
		t.Fatalf("expected error for unusable database path")
	}
}

func writeFile(path string) error {
	return os.WriteFile(path, []byte("not a directory"), 0o600)
}

func TestOpenStorage_ReportsSchemaAndStoredKeys(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "todo.db")

	first, err := openStorage(ctx, dsn, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("openStorage: %v", err)
	}
	if err := first.Put(ctx, "todos", []byte(`[]`)); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	var logs bytes.Buffer
	second, err := openStorage(ctx, dsn, slog.New(slog.NewJSONHandler(&logs, nil)))
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer second.Close()

	out := logs.String()
	if !strings.Contains(out, `"schema_version":1`) || !strings.Contains(out, `"stored_keys":["todos"]`) {
		t.Fatalf("expected schema version and stored keys in %s", out)
	}
}
