package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/Jiffye-m/chatapp/internal/config"
	"github.com/Jiffye-m/chatapp/internal/database"
	"github.com/Jiffye-m/chatapp/internal/realtime"
	"github.com/Jiffye-m/chatapp/internal/router"
	"github.com/Jiffye-m/chatapp/internal/upload"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type testEnv struct {
	srv *httptest.Server
	hub *realtime.Hub
	db  *gorm.DB
}

// newTestEnv spins up the full router against a throwaway SQLite database
// and a local-disk uploader. Options tweak the config before the router is built.
func newTestEnv(t *testing.T, opts ...func(*config.Config)) *testEnv {
	t.Helper()

	dir := t.TempDir()
	db, err := database.Init(config.DatabaseConfig{Path: filepath.Join(dir, "test.db")})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	cfg := &config.Config{
		Server: config.ServerConfig{
			Mode:       "test",
			CORSOrigin: "http://localhost:5173",
		},
		JWT: config.JWTConfig{
			Secret:      "test-secret",
			ExpireHours: 1,
		},
		Security: config.SecurityConfig{
			BcryptCost: bcrypt.MinCost,
		},
		Upload: config.UploadConfig{
			Driver:  "local",
			Dir:     filepath.Join(dir, "uploads"),
			BaseURL: "http://localhost/uploads",
		},
	}

	for _, opt := range opts {
		opt(cfg)
	}

	up, err := upload.New(t.Context(), cfg.Upload)
	require.NoError(t, err)

	hub := realtime.NewHub(zap.NewNop(), prometheus.NewRegistry())

	srv := httptest.NewServer(router.SetupRouter(cfg, db, hub, up, zap.NewNop()))
	t.Cleanup(srv.Close)

	return &testEnv{srv: srv, hub: hub, db: db}
}

// newSession returns an HTTP client with its own cookie jar.
func (e *testEnv) newSession(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar}
}

// doJSON issues a JSON request and decodes the body into a generic map.
func doJSON(t *testing.T, c *http.Client, method, url string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]interface{}
	// list responses won't decode into a map; callers needing them decode themselves
	_ = json.NewDecoder(resp.Body).Decode(&decoded)
	return resp, decoded
}

// doJSONInto issues a JSON request and decodes the body into out.
func doJSONInto(t *testing.T, c *http.Client, method, url string, body, out interface{}) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

// signup registers a user through the API and returns its id.
func (e *testEnv) signup(t *testing.T, c *http.Client, email, fullName, password string) uint {
	t.Helper()

	resp, body := doJSON(t, c, http.MethodPost, e.srv.URL+"/api/auth/signup", map[string]string{
		"email":    email,
		"fullName": fullName,
		"password": password,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, "signup %s: %v", email, body)

	user, ok := body["user"].(map[string]interface{})
	require.True(t, ok, "signup response has no user object")
	id, ok := user["id"].(float64)
	require.True(t, ok, "signup user has no id")
	return uint(id)
}

func apiURL(e *testEnv, format string, args ...interface{}) string {
	return e.srv.URL + fmt.Sprintf(format, args...)
}
