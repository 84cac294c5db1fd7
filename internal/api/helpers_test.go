package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bookshop/internal/auth"
	"bookshop/internal/config"
	"bookshop/internal/db"
	"bookshop/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testServer struct {
	router   *gin.Engine
	store    *db.Store
	conn     *gorm.DB
	sessions *auth.Sessions
	cfg      *config.Config
}

func newTestServer(t *testing.T, mutate ...func(*config.Config)) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Defaults()
	cfg.Server.SessionSecret = "test-secret"
	for _, m := range mutate {
		m(cfg)
	}

	conn := testutil.NewDB(t)
	rdb, _ := testutil.NewRedis(t)
	store := db.NewStore(conn)
	sessions := auth.NewSessions(rdb, cfg.Server.SessionSecret, time.Hour)
	r := SetupRouter(Deps{
		Config:   cfg,
		Store:    store,
		Sessions: sessions,
		Auth:     auth.NewSessionAuthenticator(sessions, store),
	})
	return &testServer{router: r, store: store, conn: conn, sessions: sessions, cfg: cfg}
}

// do sends body (marshalled unless it is already a string) with an optional session cookie.
func (s *testServer) do(method, path string, body any, cookie *http.Cookie) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, _ := json.Marshal(b)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) doWithHeader(method, path, key, value string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set(key, value)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

// signup registers username and returns its id and session cookie.
func (s *testServer) signup(t *testing.T, username string) (uint, *http.Cookie) {
	t.Helper()
	w := s.do(http.MethodPost, "/signup", gin.H{
		"username":              username,
		"email":                 username + "@example.com",
		"password":              "pw",
		"password_confirmation": "pw",
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var body struct {
		ID uint `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.ID, sessionCookie(t, w)
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == auth.CookieName {
			return c
		}
	}
	t.Fatalf("no session cookie in response")
	return nil
}

func decodeMap(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &m), w.Body.String())
	return m
}

func decodeList(t *testing.T, w *httptest.ResponseRecorder) []map[string]any {
	t.Helper()
	var l []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &l), w.Body.String())
	return l
}

func keysOf(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func toStrUint(x uint) string {
	return fmt.Sprintf("%d", x)
}
