package router_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/records-portal/internal/handler"
	authHandler "github.com/jwalitptl/records-portal/internal/handler/auth"
	"github.com/jwalitptl/records-portal/internal/handler/doctor"
	"github.com/jwalitptl/records-portal/internal/handler/patient"
	"github.com/jwalitptl/records-portal/internal/handler/record"
	"github.com/jwalitptl/records-portal/internal/middleware"
	"github.com/jwalitptl/records-portal/internal/model"
	"github.com/jwalitptl/records-portal/internal/recordsapi"
	"github.com/jwalitptl/records-portal/internal/router"
	authService "github.com/jwalitptl/records-portal/internal/service/auth"
	recordsService "github.com/jwalitptl/records-portal/internal/service/records"
	"github.com/jwalitptl/records-portal/internal/session"
	"github.com/jwalitptl/records-portal/internal/templates"
	"github.com/jwalitptl/records-portal/internal/view"
	"github.com/jwalitptl/records-portal/pkg/metrics"
	"github.com/jwalitptl/records-portal/pkg/validator"
)

type account struct {
	password string
	role     string
	token    string
}

// recordsAPI is an in-memory stand-in for the records API.
type recordsAPI struct {
	mu            sync.Mutex
	calls         []string
	accounts      map[string]account
	records       []model.MedicalRecord
	nextID        int64
	logs          map[int64][]string
	logsForbidden bool
}

func (f *recordsAPI) callLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (f *recordsAPI) handler() http.Handler {
	mux := http.NewServeMux()
	track := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			f.mu.Lock()
			f.calls = append(f.calls, r.Method+" "+r.URL.Path)
			f.mu.Unlock()
			next(w, r)
		}
	}

	mux.HandleFunc("POST /login/", track(func(w http.ResponseWriter, r *http.Request) {
		var req model.LoginRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		acc, ok := f.accounts[req.Email]
		if !ok || acc.password != req.Password {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Invalid credentials"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"access_token": acc.token, "token_type": "bearer", "role": acc.role})
	}))
	mux.HandleFunc("GET /records/patient/{id}", track(func(w http.ResponseWriter, r *http.Request) {
		id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
		f.mu.Lock()
		out := []map[string]interface{}{}
		for _, rec := range f.records {
			if rec.PatientID == id {
				out = append(out, map[string]interface{}{
					"id":             rec.ID,
					"patient_id":     rec.PatientID,
					"doctor_id":      rec.DoctorID,
					"record_details": rec.RecordDetails,
					"timestamp":      "2024-05-01T10:00:00.123456",
				})
			}
		}
		f.mu.Unlock()
		writeJSON(w, http.StatusOK, out)
	}))
	mux.HandleFunc("POST /records/", track(func(w http.ResponseWriter, r *http.Request) {
		var req model.CreateRecordRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		f.mu.Lock()
		f.nextID++
		rec := model.MedicalRecord{ID: f.nextID, PatientID: req.PatientID, DoctorID: 42, RecordDetails: req.RecordDetails}
		f.records = append(f.records, rec)
		f.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]interface{}{"id": rec.ID, "patient_id": rec.PatientID, "doctor_id": 42, "record_details": rec.RecordDetails})
	}))
	mux.HandleFunc("PUT /records/update/{id}", track(func(w http.ResponseWriter, r *http.Request) {
		id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
		var req model.UpdateRecordRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		f.mu.Lock()
		defer f.mu.Unlock()
		for i := range f.records {
			if f.records[i].ID == id {
				f.records[i].RecordDetails = req.RecordDetails
				writeJSON(w, http.StatusOK, map[string]interface{}{"id": id, "record_details": req.RecordDetails})
				return
			}
		}
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Record not found"})
	}))
	mux.HandleFunc("DELETE /records/delete/{id}", track(func(w http.ResponseWriter, r *http.Request) {
		id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
		f.mu.Lock()
		defer f.mu.Unlock()
		for i := range f.records {
			if f.records[i].ID == id {
				f.records = append(f.records[:i], f.records[i+1:]...)
				writeJSON(w, http.StatusOK, map[string]string{"message": "deleted"})
				return
			}
		}
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Record not found"})
	}))
	mux.HandleFunc("GET /immdb/log/{id}", track(func(w http.ResponseWriter, r *http.Request) {
		if f.logsForbidden {
			writeJSON(w, http.StatusForbidden, map[string]string{"detail": "You can only view your own logs"})
			return
		}
		id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
		entries := f.logs[id]
		if len(entries) == 0 {
			writeJSON(w, http.StatusOK, map[string]string{"message": "No logs found for this patient."})
			return
		}
		out := make([]map[string]interface{}, 0, len(entries))
		for _, e := range entries {
			out = append(out, map[string]interface{}{"Patient": id, "log": e})
		}
		writeJSON(w, http.StatusOK, out)
	}))
	return mux
}

func signToken(t *testing.T, sub, name, role string, exp time.Time) string {
	t.Helper()
	claims := model.TokenClaims{
		Name: name,
		Role: model.Role(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("api-secret"))
	require.NoError(t, err)
	return token
}

type portal struct {
	api    *recordsAPI
	engine http.Handler
	server *httptest.Server
	client *http.Client
}

func newPortal(t *testing.T, loginOrigins []string) *portal {
	t.Helper()
	gin.SetMode(gin.TestMode)

	future := time.Now().Add(time.Hour)
	api := &recordsAPI{
		accounts: map[string]account{
			"doc@example.com":     {password: "pw", role: "doctor", token: signToken(t, "42", "Alice", "doctor", future)},
			"other@example.com":   {password: "pw", role: "doctor", token: signToken(t, "43", "Carol", "doctor", future)},
			"patient@example.com": {password: "pw", role: "patient", token: signToken(t, "7", "Bob", "patient", future)},
			"admin@example.com":   {password: "pw", role: "admin", token: signToken(t, "1", "Root", "admin", future)},
			"stale@example.com":   {password: "pw", role: "doctor", token: signToken(t, "42", "Alice", "doctor", time.Now().Add(-time.Minute))},
		},
		records: []model.MedicalRecord{
			{ID: 1, PatientID: 7, DoctorID: 42, RecordDetails: "Seasonal allergies"},
			{ID: 2, PatientID: 7, DoctorID: 43, RecordDetails: "Sprained ankle"},
			{ID: 3, PatientID: 8, DoctorID: 42, RecordDetails: "Annual checkup"},
		},
		nextID: 3,
		logs:   map[int64][]string{7: {"Doctor 42 added medical record of Patient 7 at 2024-05-01."}},
	}
	apiSrv := httptest.NewServer(api.handler())
	t.Cleanup(apiSrv.Close)

	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics("portal", "test", reg)
	log := zerolog.Nop()

	store := session.Instrument(session.NewMemoryStore(time.Hour, time.Hour), m)
	client := recordsapi.NewClient(recordsapi.Config{BaseURL: apiSrv.URL, Timeout: 2 * time.Second}, log, m)
	v := validator.New()
	authSvc := authService.NewService(client, store, v, loginOrigins, log, m)
	recordsSvc := recordsService.NewService(client, client, store, v, log)

	tmpl, err := templates.Load()
	require.NoError(t, err)

	auth := middleware.NewAuthMiddleware(store, session.NewAuthenticator(store, log, m), middleware.CookieConfig{Name: "portal_session"}, log)
	r := router.NewRouter(auth, router.Handlers{
		Auth: authHandler.NewHandler(authSvc),
		Doctor: []router.Handler{
			doctor.NewHandler(recordsSvc),
			record.NewHandler(recordsSvc, view.ModeUpdate),
			record.NewHandler(recordsSvc, view.ModeDelete),
		},
		Patient: patient.NewHandler(recordsSvc),
		Health:  handler.NewHandler(store, reg),
	}, router.RouterConfig{
		RequestTimeout: 5 * time.Second,
		MetricsPrefix:  "portal_test",
		Registerer:     reg,
		Templates:      tmpl,
	})
	r.Setup()

	srv := httptest.NewServer(r.Engine())
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &portal{
		api:    api,
		engine: r.Engine(),
		server: srv,
		client: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

type page struct {
	status   int
	location string
	body     string
}

func (p *portal) do(t *testing.T, req *http.Request) page {
	t.Helper()
	resp, err := p.client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return page{status: resp.StatusCode, location: resp.Header.Get("Location"), body: string(body)}
}

func (p *portal) get(t *testing.T, path string) page {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, p.server.URL+path, nil)
	require.NoError(t, err)
	return p.do(t, req)
}

func (p *portal) post(t *testing.T, path string, form url.Values) page {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, p.server.URL+path, strings.NewReader(form.Encode()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return p.do(t, req)
}

func (p *portal) login(t *testing.T, email string) page {
	t.Helper()
	return p.post(t, "/login", url.Values{"email": {email}, "password": {"pw"}})
}

func TestRootRedirectsToLogin(t *testing.T) {
	p := newPortal(t, nil)

	res := p.get(t, "/")
	assert.Equal(t, http.StatusSeeOther, res.status)
	assert.Equal(t, "/login", res.location)

	res = p.get(t, "/login")
	assert.Equal(t, http.StatusOK, res.status)
	assert.Contains(t, res.body, `action="/login"`)
}

func TestLogin_RedirectsByRole(t *testing.T) {
	tests := []struct {
		email string
		want  string
	}{
		{"doc@example.com", "/dashboard/doctor"},
		{"patient@example.com", "/dashboard/patient"},
	}
	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			p := newPortal(t, nil)
			res := p.login(t, tt.email)
			assert.Equal(t, http.StatusSeeOther, res.status)
			assert.Equal(t, tt.want, res.location)
		})
	}
}

func TestLogin_ShowsServerDetail(t *testing.T) {
	p := newPortal(t, nil)

	res := p.post(t, "/login", url.Values{"email": {"doc@example.com"}, "password": {"wrong"}})
	assert.Equal(t, http.StatusOK, res.status)
	assert.Contains(t, res.body, "Invalid credentials")
	assert.Contains(t, res.body, `value="doc@example.com"`)
}

func TestLogin_MissingCredentials(t *testing.T) {
	p := newPortal(t, nil)

	res := p.post(t, "/login", url.Values{"email": {"  "}, "password": {"pw"}})
	assert.Contains(t, res.body, view.MsgCredentialsReq)
	assert.Empty(t, p.api.callLog())
}

func TestLogin_ForeignOriginDenied(t *testing.T) {
	p := newPortal(t, []string{"http://127.0.0.1:8000"})

	res := p.login(t, "doc@example.com")
	assert.Equal(t, http.StatusOK, res.status)
	assert.Contains(t, res.body, view.MsgAccessDenied)
	assert.Empty(t, p.api.callLog())
}

func TestLogin_UnknownRole(t *testing.T) {
	p := newPortal(t, nil)

	res := p.login(t, "admin@example.com")
	assert.Contains(t, res.body, view.MsgInvalidRole)

	res = p.get(t, "/dashboard/doctor")
	assert.Equal(t, http.StatusSeeOther, res.status)
	assert.Equal(t, "/login?notice=unauthorized", res.location)
}

func TestProtectedPages_RequireRole(t *testing.T) {
	p := newPortal(t, nil)

	for _, path := range []string{"/dashboard/doctor", "/dashboard/patient", "/records/update", "/records/delete"} {
		res := p.get(t, path)
		assert.Equal(t, http.StatusSeeOther, res.status, path)
		assert.Equal(t, "/login?notice=unauthorized", res.location, path)
	}

	p.login(t, "patient@example.com")
	res := p.get(t, "/dashboard/doctor")
	assert.Equal(t, "/login?notice=unauthorized", res.location)

	res = p.get(t, "/login?notice=unauthorized")
	assert.Contains(t, res.body, view.MsgUnauthorized)
}

func TestExpiredToken_RedirectsOnce(t *testing.T) {
	p := newPortal(t, nil)

	res := p.login(t, "stale@example.com")
	require.Equal(t, "/dashboard/doctor", res.location)

	res = p.get(t, "/dashboard/doctor")
	assert.Equal(t, http.StatusSeeOther, res.status)
	assert.Equal(t, "/login?notice=expired", res.location)

	res = p.get(t, "/login?notice=expired")
	assert.Contains(t, res.body, view.MsgSessionExpired)

	// The session was cleared, so the next visit is plainly unauthorized.
	res = p.get(t, "/dashboard/doctor")
	assert.Equal(t, "/login?notice=unauthorized", res.location)
}

func TestLogout_ClearsSession(t *testing.T) {
	p := newPortal(t, nil)
	p.login(t, "doc@example.com")

	res := p.post(t, "/logout", nil)
	assert.Equal(t, http.StatusSeeOther, res.status)
	assert.Equal(t, "/login?notice=logout", res.location)

	res = p.get(t, "/dashboard/doctor")
	assert.Equal(t, "/login?notice=unauthorized", res.location)
}

func TestDoctorDashboard_ListsAllRecords(t *testing.T) {
	p := newPortal(t, nil)
	p.login(t, "doc@example.com")

	res := p.get(t, "/dashboard/doctor")
	assert.Equal(t, http.StatusOK, res.status)
	assert.Contains(t, res.body, "Welcome Dr. Alice")
	assert.NotContains(t, res.body, "Seasonal allergies")

	res = p.get(t, "/dashboard/doctor?patient_id=7")
	assert.Contains(t, res.body, "Seasonal allergies")
	assert.Contains(t, res.body, "Sprained ankle")
	assert.Contains(t, res.body, "2024-05-01 10:00:00 UTC")
	assert.NotContains(t, res.body, "Select</button>")

	res = p.get(t, "/dashboard/doctor?patient_id=+")
	assert.Contains(t, res.body, view.MsgPatientIDPrompt)
}

func TestAddRecord_RefetchesListing(t *testing.T) {
	p := newPortal(t, nil)
	p.login(t, "doc@example.com")

	res := p.post(t, "/dashboard/doctor/records", url.Values{"patient_id": {"7"}, "record_details": {"Flu shot"}})
	assert.Equal(t, http.StatusOK, res.status)
	assert.Contains(t, res.body, view.MsgAdded)
	assert.Contains(t, res.body, "Flu shot")

	calls := p.api.callLog()
	require.Len(t, calls, 3)
	assert.Equal(t, []string{"POST /records/", "GET /records/patient/7"}, calls[1:])
}

func TestAddRecord_Validation(t *testing.T) {
	p := newPortal(t, nil)
	p.login(t, "doc@example.com")

	res := p.post(t, "/dashboard/doctor/records", url.Values{"patient_id": {"seven"}, "record_details": {"Flu shot"}})
	assert.Contains(t, res.body, view.MsgPatientIDNumeric)
	assert.Contains(t, res.body, "Flu shot")

	res = p.post(t, "/dashboard/doctor/records", url.Values{"patient_id": {"7"}})
	assert.Contains(t, res.body, view.MsgAddRequired)
	assert.Len(t, p.api.callLog(), 1)
}

func TestAddRecord_UnreadableForm(t *testing.T) {
	p := newPortal(t, nil)
	p.login(t, "doc@example.com")
	before := len(p.api.callLog())

	// No Content-Length, so only the body reader's cap stops it.
	body := "patient_id=7&record_details=" + strings.Repeat("a", 80<<10)
	req := httptest.NewRequest(http.MethodPost, "/dashboard/doctor/records", io.NopCloser(strings.NewReader(body)))
	req.ContentLength = -1
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(&http.Cookie{Name: "portal_session", Value: p.sessionCookie(t)})

	w := httptest.NewRecorder()
	p.engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), view.MsgBadForm)
	assert.NotContains(t, w.Body.String(), view.MsgAddRequired)
	assert.Len(t, p.api.callLog(), before)
}

func TestUpdatePage_ShowsOwnRecordsOnly(t *testing.T) {
	p := newPortal(t, nil)
	p.login(t, "doc@example.com")

	res := p.get(t, "/records/update?patient_id=7")
	assert.Equal(t, http.StatusOK, res.status)
	assert.Contains(t, res.body, "Seasonal allergies")
	assert.NotContains(t, res.body, "Sprained ankle")
	assert.Contains(t, res.body, `action="/records/update/select"`)
}

func TestUpdateRecord_Flow(t *testing.T) {
	p := newPortal(t, nil)
	p.login(t, "doc@example.com")

	res := p.post(t, "/records/update", url.Values{"patient_id": {"7"}, "record_details": {"Changed"}})
	assert.Contains(t, res.body, view.MsgNoRecordSelected)

	res = p.post(t, "/records/update/select", url.Values{"patient_id": {"7"}, "record_id": {"1"}})
	assert.Contains(t, res.body, "Update record 1")
	assert.Contains(t, res.body, ">Seasonal allergies</textarea>")

	res = p.post(t, "/records/update", url.Values{"patient_id": {"7"}, "record_details": {"  "}})
	assert.Contains(t, res.body, view.MsgUpdateRequired)

	before := len(p.api.callLog())
	res = p.post(t, "/records/update", url.Values{"patient_id": {"7"}, "record_details": {"Pollen allergy"}})
	assert.Contains(t, res.body, view.MsgUpdated)
	assert.Contains(t, res.body, "Pollen allergy")
	assert.NotContains(t, res.body, "Update record 1")
	assert.Equal(t, []string{"PUT /records/update/1", "GET /records/patient/7"}, p.api.callLog()[before:])

	// The selection does not survive a successful update.
	res = p.post(t, "/records/update", url.Values{"patient_id": {"7"}, "record_details": {"Again"}})
	assert.Contains(t, res.body, view.MsgNoRecordSelected)
}

func TestDeleteRecord_Flow(t *testing.T) {
	p := newPortal(t, nil)
	p.login(t, "doc@example.com")

	res := p.post(t, "/records/delete/select", url.Values{"patient_id": {"7"}, "record_id": {"1"}})
	assert.Contains(t, res.body, "Delete record 1?")

	before := len(p.api.callLog())
	res = p.post(t, "/records/delete", url.Values{"patient_id": {"7"}})
	assert.Contains(t, res.body, view.MsgDeleted)
	assert.NotContains(t, res.body, "Seasonal allergies")
	assert.Equal(t, []string{"DELETE /records/delete/1", "GET /records/patient/7"}, p.api.callLog()[before:])
}

func TestSelect_ForeignRecordRejected(t *testing.T) {
	p := newPortal(t, nil)
	p.login(t, "doc@example.com")

	// Record 2 was written by doctor 43.
	res := p.post(t, "/records/delete/select", url.Values{"patient_id": {"7"}, "record_id": {"2"}})
	assert.Equal(t, http.StatusOK, res.status)
	assert.Contains(t, res.body, view.MsgNoRecordSelected)
	assert.NotContains(t, res.body, "Delete record 2?")
	assert.NotContains(t, res.body, "Sprained ankle")

	before := len(p.api.callLog())
	res = p.post(t, "/records/delete", url.Values{"patient_id": {"7"}})
	assert.Contains(t, res.body, view.MsgNoRecordSelected)
	for _, call := range p.api.callLog()[before:] {
		assert.NotEqual(t, "DELETE /records/delete/2", call)
	}

	// A foreign id also drops an earlier, valid selection.
	p.post(t, "/records/update/select", url.Values{"patient_id": {"7"}, "record_id": {"1"}})
	res = p.post(t, "/records/update/select", url.Values{"patient_id": {"7"}, "record_id": {"2"}})
	assert.Contains(t, res.body, view.MsgNoRecordSelected)
	res = p.post(t, "/records/update", url.Values{"patient_id": {"7"}, "record_details": {"Changed"}})
	assert.Contains(t, res.body, view.MsgNoRecordSelected)
	assert.NotContains(t, p.api.callLog(), "PUT /records/update/2")
	assert.NotContains(t, p.api.callLog(), "PUT /records/update/1")
}

func TestCancelSelection(t *testing.T) {
	p := newPortal(t, nil)
	p.login(t, "doc@example.com")

	p.post(t, "/records/delete/select", url.Values{"patient_id": {"7"}, "record_id": {"1"}})
	res := p.post(t, "/records/delete/cancel", url.Values{"patient_id": {"7"}})
	assert.Equal(t, http.StatusSeeOther, res.status)
	assert.Equal(t, "/records/delete?patient_id=7", res.location)

	res = p.post(t, "/records/delete", url.Values{"patient_id": {"7"}})
	assert.Contains(t, res.body, view.MsgNoRecordSelected)
}

func TestPatientDashboard(t *testing.T) {
	p := newPortal(t, nil)
	p.login(t, "patient@example.com")

	res := p.get(t, "/dashboard/patient")
	assert.Equal(t, http.StatusOK, res.status)
	assert.Contains(t, res.body, "Welcome Bob, your Patient ID is: 7")
	assert.Contains(t, res.body, "Seasonal allergies")
	assert.Contains(t, res.body, "Doctor 42 added medical record of Patient 7")
}

func TestPatientDashboard_LogsDenied(t *testing.T) {
	p := newPortal(t, nil)
	p.api.logsForbidden = true
	p.login(t, "patient@example.com")

	res := p.get(t, "/dashboard/patient")
	assert.Contains(t, res.body, view.MsgLogsDenied)
	assert.Contains(t, res.body, "Seasonal allergies")
}

func TestSessionCookie(t *testing.T) {
	p := newPortal(t, nil)

	resp, err := p.client.Get(p.server.URL + "/login")
	require.NoError(t, err)
	resp.Body.Close()

	var found *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == "portal_session" {
			found = c
		}
	}
	require.NotNil(t, found)
	assert.True(t, found.HttpOnly)
	assert.Zero(t, found.MaxAge)
	assert.Equal(t, http.SameSiteLaxMode, found.SameSite)
	assert.Equal(t, "no-store", resp.Header.Get("Cache-Control"))
}

func (p *portal) sessionCookie(t *testing.T) string {
	t.Helper()
	u, err := url.Parse(p.server.URL)
	require.NoError(t, err)
	for _, c := range p.client.Jar.Cookies(u) {
		if c.Name == "portal_session" {
			return c.Value
		}
	}
	return ""
}

func TestLogin_RotatesSessionCookie(t *testing.T) {
	p := newPortal(t, nil)

	p.get(t, "/login")
	planted := p.sessionCookie(t)
	require.NotEmpty(t, planted)

	res := p.login(t, "doc@example.com")
	require.Equal(t, "/dashboard/doctor", res.location)
	rotated := p.sessionCookie(t)
	assert.NotEqual(t, planted, rotated)

	res = p.get(t, "/dashboard/doctor")
	assert.Equal(t, http.StatusOK, res.status)

	// A second browser still holding the pre-login id gets nothing.
	req, err := http.NewRequest(http.MethodGet, p.server.URL+"/dashboard/doctor", nil)
	require.NoError(t, err)
	req.AddCookie(&http.Cookie{Name: "portal_session", Value: planted})
	resp, err := http.DefaultTransport.RoundTrip(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login?notice=unauthorized", resp.Header.Get("Location"))
}

func TestHealthAndMetrics(t *testing.T) {
	p := newPortal(t, nil)

	assert.Equal(t, http.StatusOK, p.get(t, "/health/live").status)
	assert.Equal(t, http.StatusOK, p.get(t, "/health/ready").status)

	p.get(t, "/login")
	res := p.get(t, "/metrics")
	assert.Equal(t, http.StatusOK, res.status)
	assert.Contains(t, res.body, "portal_test_requests_total")
}

func TestNoRoute(t *testing.T) {
	p := newPortal(t, nil)

	res := p.get(t, "/nope")
	assert.Equal(t, http.StatusNotFound, res.status)
	assert.Contains(t, res.body, "Page not found")
}
