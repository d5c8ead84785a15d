package api_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/perspectra/portal/internal/api"
	"github.com/perspectra/portal/internal/api/response"
	"github.com/perspectra/portal/internal/authtest"
	"github.com/perspectra/portal/internal/catalog"
	"github.com/perspectra/portal/internal/factory"
	"github.com/perspectra/portal/internal/model"
	"github.com/perspectra/portal/internal/storage/memory"
)

// testServer wires the router against an in-process auth service
type testServer struct {
	handler http.Handler
	auth    *authtest.Server
	storage *memory.Storage
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	authServer := authtest.NewServer()
	authHTTP := httptest.NewServer(authServer.Handler())
	t.Cleanup(authHTTP.Close)

	// API tests are integration tests - use production factory with real random/clock
	app, err := factory.New(factory.Config{AuthURL: authHTTP.URL})
	require.NoError(t, err)

	router := api.NewRouter(api.RouterConfig{
		Logger:         logger,
		AuthClient:     app.AuthClient,
		SessionManager: app.SessionManager,
		LedgerService:  app.LedgerService,
		StatsService:   app.StatsService,
		Gate:           app.Gate,
		Storage:        app.Storage,
	})

	return &testServer{
		handler: router,
		auth:    authServer,
		storage: app.Storage.(*memory.Storage),
	}
}

func (ts *testServer) request(method, path string, body any, token string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		b, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(b)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

// login seeds an account on the auth service and logs it in, returning
// the session token
func (ts *testServer) login(t *testing.T, email string, role model.Role) string {
	t.Helper()

	require.NoError(t, ts.auth.Seed(email, "secret123", "Test Account", role))

	body := map[string]string{"email": email, "password": "secret123"}
	rr := ts.request(http.MethodPost, "/api/v1/auth/login", body, "")
	require.Equal(t, http.StatusOK, rr.Code)

	var resp response.AuthResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.SessionToken)
	return resp.SessionToken
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/health", nil, "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "ok")
}

func TestScenarioCatalogIsPublic(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/scenarios", nil, "")
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp response.ScenarioList
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Len(t, resp.Scenarios, catalog.ScenarioCount())
	assert.NotEmpty(t, resp.Scenarios[0].Choices)
}

func TestRegisterAndLogin(t *testing.T) {
	ts := newTestServer(t)

	registerBody := map[string]string{
		"email":     "new.learner@example.com",
		"password":  "secret123",
		"full_name": "New Learner",
		"role":      "individual",
	}
	rr := ts.request(http.MethodPost, "/api/v1/auth/register", registerBody, "")
	require.Equal(t, http.StatusCreated, rr.Code)

	var registerResp response.AuthResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &registerResp))
	assert.Equal(t, "new.learner@example.com", registerResp.Account.Email)
	assert.Equal(t, "individual", registerResp.Account.Role)
	assert.NotEmpty(t, registerResp.SessionToken)

	// Login with the same credentials
	loginBody := map[string]string{
		"email":    "new.learner@example.com",
		"password": "secret123",
	}
	rr = ts.request(http.MethodPost, "/api/v1/auth/login", loginBody, "")
	require.Equal(t, http.StatusOK, rr.Code)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	ts := newTestServer(t)

	body := map[string]string{
		"email":     "dup@example.com",
		"password":  "secret123",
		"full_name": "Dup",
	}
	rr := ts.request(http.MethodPost, "/api/v1/auth/register", body, "")
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = ts.request(http.MethodPost, "/api/v1/auth/register", body, "")
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Contains(t, rr.Body.String(), "EMAIL_EXISTS")
}

func TestLoginBadCredentials(t *testing.T) {
	ts := newTestServer(t)

	body := map[string]string{
		"email":    "nobody@example.com",
		"password": "wrong",
	}
	rr := ts.request(http.MethodPost, "/api/v1/auth/login", body, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Contains(t, rr.Body.String(), "INVALID_CREDENTIALS")
}

func TestConcurrentLoginsForDifferentAccounts(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	authServer := authtest.NewServer()
	require.NoError(t, authServer.Seed("liam.park@perspectra.example", "secret123", "Liam Park", model.RoleEmployee))
	require.NoError(t, authServer.Seed("priya.nair@perspectra.example", "secret123", "Priya Nair", model.RoleEmployee))

	// Hold each login until both have reached the auth backend, so the
	// second login is processed while the first is still pending
	var barrier sync.WaitGroup
	barrier.Add(2)
	inner := authServer.Handler()
	authHTTP := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		barrier.Done()
		barrier.Wait()
		inner.ServeHTTP(w, r)
	}))
	t.Cleanup(authHTTP.Close)

	app, err := factory.New(factory.Config{AuthURL: authHTTP.URL})
	require.NoError(t, err)
	router := api.NewRouter(api.RouterConfig{
		Logger:         logger,
		AuthClient:     app.AuthClient,
		SessionManager: app.SessionManager,
		LedgerService:  app.LedgerService,
		StatsService:   app.StatsService,
		Gate:           app.Gate,
		Storage:        app.Storage,
	})
	ts := &testServer{handler: router, auth: authServer, storage: app.Storage.(*memory.Storage)}

	codes := make([]int, 2)
	var wg sync.WaitGroup
	for i, email := range []string{"liam.park@perspectra.example", "priya.nair@perspectra.example"} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			body := map[string]string{"email": email, "password": "secret123"}
			codes[i] = ts.request(http.MethodPost, "/api/v1/auth/login", body, "").Code
		}()
	}
	wg.Wait()

	assert.Equal(t, []int{http.StatusOK, http.StatusOK}, codes)
}

func TestLoginRoleMismatchSameShapeAsBadPassword(t *testing.T) {
	ts := newTestServer(t)
	require.NoError(t, ts.auth.Seed("liam.park@perspectra.example", "secret123", "Liam Park", model.RoleEmployee))

	roleBody := map[string]string{
		"email":    "liam.park@perspectra.example",
		"password": "secret123",
		"role":     "hr",
	}
	roleRR := ts.request(http.MethodPost, "/api/v1/auth/login", roleBody, "")

	passBody := map[string]string{
		"email":    "liam.park@perspectra.example",
		"password": "wrong",
	}
	passRR := ts.request(http.MethodPost, "/api/v1/auth/login", passBody, "")

	assert.Equal(t, http.StatusUnauthorized, roleRR.Code)
	assert.Equal(t, passRR.Code, roleRR.Code)
	assert.Equal(t, passRR.Body.String(), roleRR.Body.String())
}

func TestMeRequiresSession(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/me", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Contains(t, rr.Body.String(), "UNAUTHENTICATED")
}

func TestMeReturnsAccount(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login(t, "liam.park@perspectra.example", model.RoleEmployee)

	rr := ts.request(http.MethodGet, "/api/v1/me", nil, token)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp response.Account
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "liam.park@perspectra.example", resp.Email)
	assert.Equal(t, "employee", resp.Role)
}

func TestLogoutEndsSession(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login(t, "liam.park@perspectra.example", model.RoleEmployee)

	rr := ts.request(http.MethodPost, "/api/v1/auth/logout", nil, token)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = ts.request(http.MethodGet, "/api/v1/me", nil, token)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestSessionTokenViaCookie(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login(t, "liam.park@perspectra.example", model.RoleEmployee)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: token})
	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestGateRedirectsHTMLClients(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	req.Header.Set("Accept", "text/html")
	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/login?reason=unauthenticated", rr.Header().Get("Location"))
}

// Progress

func TestProgressLedgerInitializedOnFirstVisit(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login(t, "liam.park@perspectra.example", model.RoleEmployee)

	rr := ts.request(http.MethodGet, "/api/v1/progress", nil, token)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp response.Ledger
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "liam.park@perspectra.example", resp.Email)
	require.Len(t, resp.Scenarios, catalog.ScenarioCount())
	for _, entry := range resp.Scenarios {
		assert.Equal(t, "not_started", entry.Status)
		assert.Equal(t, 0, entry.ProgressPct)
	}
}

func TestProgressForbiddenForHR(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login(t, "maya.chen@perspectra.example", model.RoleHR)

	rr := ts.request(http.MethodGet, "/api/v1/progress", nil, token)
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Contains(t, rr.Body.String(), "UNAUTHORIZED")
}

func TestStartScenario(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login(t, "liam.park@perspectra.example", model.RoleEmployee)

	rr := ts.request(http.MethodPost, "/api/v1/progress/interruption/start", nil, token)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp response.ProgressEntry
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "interruption", resp.ScenarioID)
	assert.Equal(t, "in_progress", resp.Status)
	assert.Equal(t, 40, resp.ProgressPct)
}

func TestStartScenarioWithExplicitPct(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login(t, "liam.park@perspectra.example", model.RoleEmployee)

	body := map[string]int{"pct": 65}
	rr := ts.request(http.MethodPost, "/api/v1/progress/interruption/start", body, token)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp response.ProgressEntry
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, 65, resp.ProgressPct)
}

func TestStartUnknownScenario(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login(t, "liam.park@perspectra.example", model.RoleEmployee)

	rr := ts.request(http.MethodPost, "/api/v1/progress/nonexistent/start", nil, token)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "UNKNOWN_SCENARIO")
}

func TestCompleteScenario(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login(t, "liam.park@perspectra.example", model.RoleEmployee)

	rr := ts.request(http.MethodPost, "/api/v1/progress/interruption/complete", nil, token)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp response.ProgressEntry
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "complete", resp.Status)
	assert.Equal(t, 100, resp.ProgressPct)
}

func TestRecordChoice(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login(t, "liam.park@perspectra.example", model.RoleEmployee)

	body := map[string]string{"choice": "speak-up"}
	rr := ts.request(http.MethodPut, "/api/v1/progress/interruption/choice", body, token)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp response.ProgressEntry
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "speak-up", resp.SelectedChoice)

	// The choice shows up in the full ledger
	rr = ts.request(http.MethodGet, "/api/v1/progress", nil, token)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "speak-up")
}

func TestRecordUnknownChoice(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login(t, "liam.park@perspectra.example", model.RoleEmployee)

	body := map[string]string{"choice": "not-an-option"}
	rr := ts.request(http.MethodPut, "/api/v1/progress/interruption/choice", body, token)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "INVALID_REQUEST")
}

// Stats

func TestOrgStatsRequiresHR(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login(t, "liam.park@perspectra.example", model.RoleEmployee)

	rr := ts.request(http.MethodGet, "/api/v1/stats/org", nil, token)
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestOrgStats(t *testing.T) {
	ts := newTestServer(t)

	// One rostered employee completes everything
	empToken := ts.login(t, "liam.park@perspectra.example", model.RoleEmployee)
	for _, sc := range catalog.Scenarios() {
		rr := ts.request(http.MethodPost, "/api/v1/progress/"+string(sc.ID)+"/complete", nil, empToken)
		require.Equal(t, http.StatusOK, rr.Code)
	}

	hrToken := ts.login(t, "maya.chen@perspectra.example", model.RoleHR)
	rr := ts.request(http.MethodGet, "/api/v1/stats/org", nil, hrToken)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp response.OrgStats
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, 5, resp.Enrolled)
	assert.Equal(t, 1, resp.CompletedAll)
	assert.Equal(t, 4, resp.NotStarted)
	assert.Equal(t, 20, resp.CompletionPct)
}

func TestTeamStatsRequiresManager(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login(t, "maya.chen@perspectra.example", model.RoleHR)

	rr := ts.request(http.MethodGet, "/api/v1/stats/team", nil, token)
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestTeamStats(t *testing.T) {
	ts := newTestServer(t)

	// One of Daniel's reports starts a scenario
	empToken := ts.login(t, "liam.park@perspectra.example", model.RoleEmployee)
	rr := ts.request(http.MethodPost, "/api/v1/progress/interruption/start", nil, empToken)
	require.Equal(t, http.StatusOK, rr.Code)

	mgrToken := ts.login(t, "daniel.okafor@perspectra.example", model.RoleManager)
	rr = ts.request(http.MethodGet, "/api/v1/stats/team", nil, mgrToken)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp response.TeamStats
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp.Team, 3)

	states := map[string]string{}
	for _, row := range resp.Team {
		states[row.Email] = row.State
	}
	assert.Equal(t, "In progress", states["liam.park@perspectra.example"])
	assert.Equal(t, "Not started", states["amara.diallo@perspectra.example"])
	assert.Equal(t, "Not started", states["jonas.weber@perspectra.example"])
}

func TestTeamStatsManagerNotOnRoster(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login(t, "unknown.manager@example.com", model.RoleManager)

	rr := ts.request(http.MethodGet, "/api/v1/stats/team", nil, token)
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Contains(t, rr.Body.String(), "NOT_ROSTER_MEMBER")
}

// Notes and preferences

func TestNotesRoundTrip(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login(t, "liam.park@perspectra.example", model.RoleEmployee)

	// Empty before any save
	rr := ts.request(http.MethodGet, "/api/v1/notes", nil, token)
	require.Equal(t, http.StatusOK, rr.Code)
	var notes response.Notes
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &notes))
	assert.Empty(t, notes.Notes)

	body := map[string]string{"notes": "follow up with the team"}
	rr = ts.request(http.MethodPut, "/api/v1/notes", body, token)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = ts.request(http.MethodGet, "/api/v1/notes", nil, token)
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &notes))
	assert.Equal(t, "follow up with the team", notes.Notes)
}

func TestPreferencesRoundTrip(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login(t, "liam.park@perspectra.example", model.RoleEmployee)

	body := map[string]any{"preferences": map[string]bool{"reduced_motion": true}}
	rr := ts.request(http.MethodPut, "/api/v1/preferences", body, token)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = ts.request(http.MethodGet, "/api/v1/preferences", nil, token)
	require.Equal(t, http.StatusOK, rr.Code)

	var prefs response.Preferences
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &prefs))
	assert.True(t, prefs.Preferences["reduced_motion"])
}

func TestNotesAreScopedPerAccount(t *testing.T) {
	ts := newTestServer(t)
	liamToken := ts.login(t, "liam.park@perspectra.example", model.RoleEmployee)
	amaraToken := ts.login(t, "amara.diallo@perspectra.example", model.RoleEmployee)

	body := map[string]string{"notes": "liam's private notes"}
	rr := ts.request(http.MethodPut, "/api/v1/notes", body, liamToken)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = ts.request(http.MethodGet, "/api/v1/notes", nil, amaraToken)
	require.Equal(t, http.StatusOK, rr.Code)
	var notes response.Notes
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &notes))
	assert.Empty(t, notes.Notes)
}
