package integration_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/geocoder89/notehub/internal/auth"
	"github.com/geocoder89/notehub/internal/config"
	"github.com/geocoder89/notehub/internal/db"
	apphttp "github.com/geocoder89/notehub/internal/http"
	"github.com/geocoder89/notehub/internal/http/handlers"
	"github.com/geocoder89/notehub/internal/notes"
	"github.com/geocoder89/notehub/internal/observability"
	"github.com/geocoder89/notehub/internal/otp"
	"github.com/geocoder89/notehub/internal/redisclient"
	"github.com/geocoder89/notehub/internal/repo/postgres"
	"github.com/geocoder89/notehub/internal/security"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/crypto/bcrypt"
)

func testConfig() config.Config {
	return config.Config{
		Env:            "test",
		JWTSecret:      "test-secret-key",
		SessionTTL:     24 * time.Hour,
		AllowedOrigins: []string{"http://localhost:3000"},
		MaxBodyBytes:   1 << 20,
		LoginRateLimit: 1000,
		OTPRateLimit:   1000,
		APIRateLimit:   1000,
		RateWindow:     time.Minute,
		OTPTTL:         time.Minute,
		OTPMaxAttempts: 3,
	}
}

// mailbox records the last code sent to each address.
type mailbox struct {
	mu    sync.Mutex
	codes map[string]string
}

func (m *mailbox) SendOTP(_ context.Context, email, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.codes == nil {
		m.codes = map[string]string{}
	}
	m.codes[email] = code
	return nil
}

func (m *mailbox) last(email string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.codes[email]
}

type testEnv struct {
	router *gin.Engine
	pool   *pgxpool.Pool
	mail   *mailbox
}

// setupTestEnv wires the real router to PostgreSQL. OTP codes go to Redis
// when TEST_REDIS_ADDR is set and to the in-memory store otherwise.
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}

	ctx := context.Background()

	pool, err := db.NewPool(ctx, dsn, 4)
	if err != nil {
		t.Fatalf("Failed to create pgx pool: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := db.Migrate(ctx, pool); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	resetDB(t, pool)
	t.Cleanup(func() { resetDB(t, pool) })

	checks := map[string]handlers.Check{"db": pool.Ping}

	var store otp.Store = otp.NewMemoryStore()
	if addr := os.Getenv("TEST_REDIS_ADDR"); addr != "" {
		rc, err := redisclient.Connect(ctx, redisclient.Config{Addr: addr}, 2*time.Second)
		if err != nil {
			t.Fatalf("redis: %v", err)
		}
		t.Cleanup(func() { _ = rc.Close() })

		store = otp.NewRedisStore(rc.Raw())
		checks["redis"] = rc.Ping
	}

	cfg := testConfig()
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))
	prom := observability.NewProm(prometheus.NewRegistry())
	tokens := auth.NewManager(cfg.JWTSecret, cfg.SessionTTL)
	mail := &mailbox{}

	router := apphttp.NewRouter(apphttp.Deps{
		Log:      logger,
		Config:   cfg,
		Prom:     prom,
		Accounts: auth.NewService(postgres.NewUsersRepo(pool, prom), security.NewHasher(bcrypt.MinCost), tokens, prom),
		Sessions: tokens,
		OTP:      otp.NewService(store, mail, otp.Config{TTL: cfg.OTPTTL, MaxAttempts: cfg.OTPMaxAttempts}, prom),
		Notes:    notes.NewEngine(postgres.NewNotesRepo(pool, prom)),
		Checks:   checks,
	})

	return &testEnv{router: router, pool: pool, mail: mail}
}

func resetDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	_, err := pool.Exec(context.Background(), `
		TRUNCATE notes, users
		RESTART IDENTITY CASCADE
	`)
	if err != nil {
		t.Fatalf("failed to truncate tables: %v", err)
	}
}

// doRequest runs a request and returns the recorder and parsed response for cookies.
func doRequest(router http.Handler, method, path string, body string, cookies ...*http.Cookie) (*httptest.ResponseRecorder, *http.Response) {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))

	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	for _, c := range cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	return w, w.Result()
}

func mustReadJSON[T any](t *testing.T, w *httptest.ResponseRecorder, out *T) {
	t.Helper()
	err := json.Unmarshal(w.Body.Bytes(), out)
	if err != nil {
		t.Fatalf("failed to unmarshal json: %v, body=%s", err, w.Body.String())
	}
}

func sessionCookie(t *testing.T, response *http.Response) *http.Cookie {
	t.Helper()

	for _, c := range response.Cookies() {
		if c.Name == "token" {
			return c
		}
	}

	t.Fatalf("token cookie not found in response")
	return nil
}
