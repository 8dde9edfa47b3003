package e2e_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sagarc03/bluelist"
	"github.com/sagarc03/bluelist/client"
	"github.com/sagarc03/bluelist/database"
	bluelisthttp "github.com/sagarc03/bluelist/http"
	"github.com/sagarc03/bluelist/keybackend"
)

const (
	contextRoot = "/v1/apps/bluelist"
	testBucket  = "bluelist-uploads"
	testAccess  = "AKIAE2ETEST"
	testSecret  = "e2e-secret-key"
)

// gateway is a running gateway over a real document store.
type gateway struct {
	client  *client.Client
	baseURL string
}

// sqliteConfig returns an in-memory sqlite store config.
func sqliteConfig() database.Config {
	return database.Config{
		Type:        "sqlite",
		DSN:         ":memory:",
		Tables:      bluelist.Tables{Items: "items"},
		AutoMigrate: true,
	}
}

// startGateway connects the store named by dbCfg, mounts the full router
// on an httptest server and returns a client for it.
func startGateway(t *testing.T, dbCfg database.Config, configure ...func(*bluelisthttp.HandlerConfig)) *gateway {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, closeStore, err := database.Connect(ctx, dbCfg)
	require.NoError(t, err)
	t.Cleanup(closeStore)

	keysPath := filepath.Join(t.TempDir(), "keys.yaml")
	require.NoError(t, keybackend.SaveKeyPair(keysPath, keybackend.KeyPair{AccessKey: testAccess, SecretKey: testSecret}))

	secrets, err := keybackend.NewSecretStore(keybackend.KeysConfig{File: keysPath})
	require.NoError(t, err)

	signer, err := bluelist.NewPolicySigner(testBucket, testAccess, secrets)
	require.NoError(t, err)

	handlerCfg := &bluelisthttp.HandlerConfig{
		ContextRoot:    contextRoot,
		BackendTimeout: 10 * time.Second,
		MaxBodySize:    1 << 20,
		Logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, fn := range configure {
		fn(handlerCfg)
	}

	handler := bluelisthttp.NewHandler(handlerCfg, store, signer)
	server := httptest.NewServer(handler.Router())
	t.Cleanup(server.Close)

	c, err := client.New(&client.Config{Endpoint: server.URL, ContextRoot: contextRoot})
	require.NoError(t, err)

	return &gateway{client: c, baseURL: server.URL}
}

// writeStaticFile creates a file under a fresh static directory.
func writeStaticFile(t *testing.T, name, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
	return dir
}

// rawRequest sends body to url and returns the status and body verbatim.
func rawRequest(t *testing.T, method, url, body string) (int, string) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(data)
}
