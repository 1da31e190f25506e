package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/drfrankproulx-cmd/OProom/internal/config"
	"github.com/drfrankproulx-cmd/OProom/internal/repository/memory"
	"github.com/drfrankproulx-cmd/OProom/pkg/metrics"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type client struct {
	t      *testing.T
	engine http.Handler
	token  string
}

func (c *client) do(method, path string, body interface{}) (int, envelope) {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	w := httptest.NewRecorder()
	c.engine.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 && w.Header().Get("Content-Type") != "" {
		_ = json.Unmarshal(w.Body.Bytes(), &env)
	}
	return w.Code, env
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	t.Setenv("OPROOM_DATABASE_DRIVER", "memory")
	cfg, err := config.LoadConfig("")
	require.NoError(t, err)
	cfg.JWT.Secret = "test-secret"
	return cfg
}

func newTestApp(t *testing.T) (*App, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	a, err := New(Deps{
		Config:     testConfig(t),
		Store:      memory.NewStore(),
		Metrics:    metrics.NewMetrics("oproom_test", reg),
		Gatherer:   reg,
		BcryptCost: bcrypt.MinCost,
	})
	require.NoError(t, err)
	t.Cleanup(a.Notifications.Wait)
	return a, reg
}

func TestNewRequiresJWTSecret(t *testing.T) {
	cfg := testConfig(t)
	cfg.JWT.Secret = ""
	_, err := New(Deps{Config: cfg, Store: memory.NewStore()})
	assert.ErrorContains(t, err, "token service")
}

func TestNewRejectsUnknownTimezone(t *testing.T) {
	cfg := testConfig(t)
	cfg.Calendar.Timezone = "Mars/Olympus_Mons"
	_, err := New(Deps{Config: cfg, Store: memory.NewStore()})
	assert.ErrorContains(t, err, "timezone")
}

func TestPatientLifecycleOverHTTP(t *testing.T) {
	a, _ := newTestApp(t)
	c := &client{t: t, engine: a.Router.Engine()}

	code, env := c.do(http.MethodPost, "/api/auth/register", map[string]string{
		"email":     "chief@umn.edu",
		"password":  "correct-horse",
		"full_name": "Chief Resident",
	})
	require.Equal(t, http.StatusCreated, code)
	var tok struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &tok))
	assert.Equal(t, "bearer", tok.TokenType)

	code, _ = c.do(http.MethodGet, "/api/patients", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	c.token = tok.AccessToken

	code, _ = c.do(http.MethodPost, "/api/patients", map[string]string{
		"mrn":          "M1",
		"patient_name": "Jane Roe",
		"dob":          "1980-02-01",
		"diagnosis":    "Mandible fracture",
	})
	require.Equal(t, http.StatusCreated, code)

	code, _ = c.do(http.MethodPost, "/api/patients", map[string]string{
		"mrn":          "M1",
		"patient_name": "Duplicate",
		"dob":          "1980-02-01",
	})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = c.do(http.MethodPost, "/api/patients/M1/mark-complete", nil)
	require.Equal(t, http.StatusOK, code)

	code, env = c.do(http.MethodPost, "/api/patients/auto-archive?delay_hours=0", nil)
	require.Equal(t, http.StatusOK, code)
	var sweep struct {
		ArchivedCount int `json:"archived_count"`
		DelayHours    int `json:"delay_hours"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &sweep))
	assert.Equal(t, 1, sweep.ArchivedCount)
	assert.Equal(t, 0, sweep.DelayHours)

	code, _ = c.do(http.MethodGet, "/api/patients/M1", nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, env = c.do(http.MethodGet, "/api/patients/archived", nil)
	require.Equal(t, http.StatusOK, code)
	var archived []struct {
		MRN            string `json:"mrn"`
		Status         string `json:"status"`
		ArchivedReason string `json:"archived_reason"`
		ArchivedBy     string `json:"archived_by"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &archived))
	require.Len(t, archived, 1)
	assert.Equal(t, "M1", archived[0].MRN)
	assert.Equal(t, "completed", archived[0].Status)
	assert.Equal(t, "auto_archive_after_0h", archived[0].ArchivedReason)
	assert.Equal(t, "system_auto_archive", archived[0].ArchivedBy)

	code, _ = c.do(http.MethodPost, "/api/patients/M1/restore", nil)
	require.Equal(t, http.StatusOK, code)
	code, _ = c.do(http.MethodGet, "/api/patients/M1", nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestAutoArchiveRejectsBadDelay(t *testing.T) {
	a, _ := newTestApp(t)
	c := &client{t: t, engine: a.Router.Engine()}
	_, env := c.do(http.MethodPost, "/api/auth/register", map[string]string{
		"email":     "r1@umn.edu",
		"password":  "correct-horse",
		"full_name": "R One",
	})
	var tok struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &tok))
	c.token = tok.AccessToken

	code, _ := c.do(http.MethodPost, "/api/patients/auto-archive?delay_hours=soon", nil)
	assert.Equal(t, http.StatusBadRequest, code)
	code, _ = c.do(http.MethodPost, "/api/patients/auto-archive?delay_hours=-1", nil)
	assert.Equal(t, http.StatusBadRequest, code)
	code, _ = c.do(http.MethodPost, "/api/patients/auto-archive?delay_hours=3000000", nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestHealthAndMetricsArePublic(t *testing.T) {
	a, _ := newTestApp(t)
	c := &client{t: t, engine: a.Router.Engine()}

	code, _ := c.do(http.MethodGet, "/api/health/ready", nil)
	assert.Equal(t, http.StatusOK, code)

	req := httptest.NewRequest(http.MethodGet, "/api/health/metrics", nil)
	w := httptest.NewRecorder()
	a.Router.Engine().ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "oproom_test_http_requests_total")
}

func TestSweepFromServiceMatchesConfiguredDelay(t *testing.T) {
	a, _ := newTestApp(t)
	assert.Equal(t, 48, a.Patients.DelayHours())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	n, err := a.Patients.AutoArchiveSweep(ctx, a.Patients.DelayHours())
	require.NoError(t, err)
	assert.Zero(t, n)
}
