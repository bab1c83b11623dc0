package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appcases "github.com/IvanGD/engine-diagnostic-site/internal/application/cases"
	appusers "github.com/IvanGD/engine-diagnostic-site/internal/application/users"
	domcases "github.com/IvanGD/engine-diagnostic-site/internal/domain/cases"
	domusers "github.com/IvanGD/engine-diagnostic-site/internal/domain/users"
	"github.com/IvanGD/engine-diagnostic-site/internal/domain/diagnosis"
)

type memCaseRepo struct {
	nextID int64
	stored []*domcases.Case
}

func (m *memCaseRepo) Insert(_ context.Context, c *domcases.Case) (domcases.CaseID, error) {
	m.nextID++
	cp := *c
	cp.ID = domcases.CaseID(m.nextID)
	m.stored = append(m.stored, &cp)
	return cp.ID, nil
}

func (m *memCaseRepo) GetByOwner(_ context.Context, id domcases.CaseID, ownerID int64) (*domcases.Case, error) {
	for _, c := range m.stored {
		if c.ID == id && c.OwnerID == ownerID {
			return c, nil
		}
	}
	return nil, domcases.ErrNotFound
}

func (m *memCaseRepo) ListByOwner(_ context.Context, ownerID int64) ([]*domcases.Case, error) {
	var out []*domcases.Case
	for i := len(m.stored) - 1; i >= 0; i-- {
		if m.stored[i].OwnerID == ownerID {
			out = append(out, m.stored[i])
		}
	}
	return out, nil
}

type memUserRepo struct {
	nextID int64
	byName map[string]*domusers.User
}

func (m *memUserRepo) Create(_ context.Context, u *domusers.User) (int64, error) {
	if _, ok := m.byName[u.Username]; ok {
		return 0, domusers.ErrUsernameTaken
	}
	m.nextID++
	cp := *u
	cp.ID = m.nextID
	m.byName[u.Username] = &cp
	return cp.ID, nil
}

func (m *memUserRepo) GetByUsername(_ context.Context, username string) (*domusers.User, error) {
	u, ok := m.byName[username]
	if !ok {
		return nil, domusers.ErrNotFound
	}
	return u, nil
}

type memImages struct{}

func (memImages) Put(_ context.Context, key string, _ io.Reader, _ int64, _ string) (string, error) {
	return "http://minio.local/case-images/" + key, nil
}

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()
	sessions := appusers.NewSessionStore(time.Hour)
	casesSvc := &appcases.Service{
		Repo:   &memCaseRepo{},
		Diag:   diagnosis.NewRuleEngine(),
		Images: memImages{},
		Clock:  appclock{},
	}
	usersSvc := &appusers.Service{
		Repo:     &memUserRepo{byName: make(map[string]*domusers.User)},
		Sessions: sessions,
		Clock:    appclock{},
	}
	return NewRouter(casesSvc, usersSvc, sessions)
}

type appclock struct{}

func (appclock) Now() time.Time { return time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC) }

func doJSON(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func registerAndLogin(t *testing.T, h http.Handler, username string) string {
	t.Helper()
	creds := map[string]string{"username": username, "password": "pw"}

	rec := doJSON(t, h, http.MethodPost, "/v1/auth/register", "", creds)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doJSON(t, h, http.MethodPost, "/v1/auth/login", "", creds)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func TestRegister_DuplicateUsernameConflicts(t *testing.T) {
	h := newTestHandler(t)

	creds := map[string]string{"username": "chief", "password": "pw"}
	rec := doJSON(t, h, http.MethodPost, "/v1/auth/register", "", creds)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/v1/auth/register", "", creds)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRegister_BadUsernameRejected(t *testing.T) {
	h := newTestHandler(t)

	rec := doJSON(t, h, http.MethodPost, "/v1/auth/register", "",
		map[string]string{"username": "no spaces allowed", "password": "pw"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogin_BadPasswordUnauthorized(t *testing.T) {
	h := newTestHandler(t)
	registerAndLogin(t, h, "chief")

	rec := doJSON(t, h, http.MethodPost, "/v1/auth/login", "",
		map[string]string{"username": "chief", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCases_RequireSession(t *testing.T) {
	h := newTestHandler(t)

	rec := doJSON(t, h, http.MethodGet, "/v1/cases", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/v1/cases", "bogus-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSubmitCase_JSON(t *testing.T) {
	h := newTestHandler(t)
	token := registerAndLogin(t, h, "chief")

	rec := doJSON(t, h, http.MethodPost, "/v1/cases", token, map[string]string{
		"engine_type": "Marine Diesel",
		"symptoms":    "black smoke and overheating",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var c domcases.Case
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &c))
	assert.Equal(t, domcases.CaseID(1), c.ID)
	assert.Contains(t, c.DiagnosisReport, "over-fuelling")
	assert.Contains(t, c.DiagnosisReport, "cooling water flow")
	assert.Contains(t, c.DiagnosisReport, "sea-water inlet")
}

func TestSubmitCase_EmptySymptomsBadRequest(t *testing.T) {
	h := newTestHandler(t)
	token := registerAndLogin(t, h, "chief")

	rec := doJSON(t, h, http.MethodPost, "/v1/cases", token, map[string]string{
		"engine_type": "Marine Diesel",
		"symptoms":    "   ",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubmitCase_MultipartWithImage(t *testing.T) {
	h := newTestHandler(t)
	token := registerAndLogin(t, h, "chief")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("engine_type", "marine"))
	require.NoError(t, mw.WriteField("symptoms", "white smoke on cold start"))
	fw, err := mw.CreateFormFile("image", "exhaust.jpg")
	require.NoError(t, err)
	_, err = fw.Write([]byte("fake-jpeg-bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/v1/cases", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var c domcases.Case
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &c))
	assert.Contains(t, c.ImageRef, "http://minio.local/case-images/1/")
	assert.Contains(t, c.DiagnosisReport, "unburned fuel")
}

func TestSubmitCase_MultipartBadImageExtension(t *testing.T) {
	h := newTestHandler(t)
	token := registerAndLogin(t, h, "chief")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("symptoms", "knocking"))
	fw, err := mw.CreateFormFile("image", "malware.exe")
	require.NoError(t, err)
	_, err = fw.Write([]byte("MZ"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/v1/cases", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetCase_ForeignOwnerNotFound(t *testing.T) {
	h := newTestHandler(t)
	owner := registerAndLogin(t, h, "owner")
	other := registerAndLogin(t, h, "other")

	rec := doJSON(t, h, http.MethodPost, "/v1/cases", owner, map[string]string{"symptoms": "no start"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/v1/cases/1", other, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/v1/cases/1", owner, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGetCase_MalformedID(t *testing.T) {
	h := newTestHandler(t)
	token := registerAndLogin(t, h, "chief")

	rec := doJSON(t, h, http.MethodGet, "/v1/cases/not-a-number", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListCases_DescendingAndScoped(t *testing.T) {
	h := newTestHandler(t)
	owner := registerAndLogin(t, h, "owner")
	other := registerAndLogin(t, h, "other")

	for _, symptoms := range []string{"knocking", "white smoke", "low power"} {
		rec := doJSON(t, h, http.MethodPost, "/v1/cases", owner, map[string]string{"symptoms": symptoms})
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := doJSON(t, h, http.MethodGet, "/v1/cases", owner, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var list []*domcases.Case
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 3)
	assert.Equal(t, domcases.CaseID(3), list[0].ID)
	assert.Equal(t, domcases.CaseID(2), list[1].ID)
	assert.Equal(t, domcases.CaseID(1), list[2].ID)

	rec = doJSON(t, h, http.MethodGet, "/v1/cases", other, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var otherList []*domcases.Case
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &otherList))
	assert.Empty(t, otherList)
}

func TestLogout_EndsSession(t *testing.T) {
	h := newTestHandler(t)
	token := registerAndLogin(t, h, "chief")

	rec := doJSON(t, h, http.MethodPost, "/v1/auth/logout", token, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/v1/cases", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
