// internal/api/handler_test.go
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "chronocost/internal/common/errors"
	"chronocost/internal/common/logger"
	"chronocost/internal/docstore"
	"chronocost/internal/historical"
	"chronocost/internal/models"
	"chronocost/internal/submission"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ==========================
// Fakes
// ==========================

type fakeSubmitter struct {
	requests []submission.Request
	err      error
	project  *models.Project
}

func (f *fakeSubmitter) Submit(_ context.Context, req submission.Request) (*submission.Result, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	return &submission.Result{
		ProjectID: "p-1",
		Location:  submission.ProjectLocation("p-1"),
		Record:    models.ProjectRecord{RiskScore: 0.72},
	}, nil
}

func (f *fakeSubmitter) Get(_ context.Context, userID, projectID string) (*models.Project, error) {
	if f.project == nil || f.project.ID != projectID || f.project.UserID != userID {
		return nil, fmt.Errorf("%w: %s", submission.ErrProjectNotFound, projectID)
	}
	return f.project, nil
}

type fakeSearcher struct {
	userID string
	query  string
	err    error
}

func (f *fakeSearcher) Search(_ context.Context, userID, query string, _ int) ([]docstore.SearchHit, error) {
	f.userID, f.query = userID, query
	if f.err != nil {
		return nil, f.err
	}
	return []docstore.SearchHit{{ID: "p-1", Score: 1.2}}, nil
}

// ==========================
// Helpers
// ==========================

type upload struct {
	filename    string
	contentType string
	content     string
}

func multipartBody(t *testing.T, fields map[string]string, file *upload) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if file != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="csvFile"; filename="%s"`, file.filename))
		h.Set("Content-Type", file.contentType)
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write([]byte(file.content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func validFields() map[string]string {
	return map[string]string{
		"companyName":       "Acme",
		"projectName":       "Ring Road",
		"projectType":       "Construction",
		"location":          "Delhi",
		"terrain":           "hilly",
		"estimatedBudget":   "1000",
		"estimatedDuration": "12",
	}
}

func newTestRouter(t *testing.T, sub Submitter, search Searcher, checks map[string]Check) *gin.Engine {
	t.Helper()
	log := logger.NewTestLogger(t)
	return NewRouter(NewProjectHandler(sub, search, 1<<20, log), checks, log)
}

func postProject(t *testing.T, r http.Handler, fields map[string]string, file *upload) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := multipartBody(t, fields, file)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/projects", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set(UserIDHeader, "user-1")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

// ==========================
// Submit
// ==========================

func TestSubmit_Created(t *testing.T) {
	sub := &fakeSubmitter{}
	r := newTestRouter(t, sub, nil, nil)

	rec := postProject(t, r, validFields(), nil)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "/projects/p-1", rec.Header().Get("Location"))
	resp := decode(t, rec)
	assert.Equal(t, 0, resp.Code)
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "p-1", data["projectId"])
	assert.Equal(t, "/projects/p-1", data["location"])

	require.Len(t, sub.requests, 1)
	got := sub.requests[0]
	assert.Equal(t, "user-1", got.UserID)
	assert.Equal(t, "hilly", got.Form.Terrain)
	assert.Nil(t, got.CSV)
}

func TestSubmit_WithCSV(t *testing.T) {
	sub := &fakeSubmitter{}
	r := newTestRouter(t, sub, nil, nil)

	fields := validFields()
	fields["hasHistoricalData"] = "on"
	rec := postProject(t, r, fields, &upload{"history.csv", "text/csv", "duration\n3"})

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.Len(t, sub.requests, 1)
	require.NotNil(t, sub.requests[0].CSV)
	assert.Equal(t, "duration\n3", string(sub.requests[0].CSV.Content))
	assert.True(t, sub.requests[0].Form.HasHistoricalData)
}

func TestSubmit_SoftwareTerrain(t *testing.T) {
	sub := &fakeSubmitter{}
	r := newTestRouter(t, sub, nil, nil)

	fields := validFields()
	fields["projectType"] = "Software"
	delete(fields, "terrain")
	rec := postProject(t, r, fields, nil)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, models.TerrainNotApplicable, sub.requests[0].Form.Terrain)
}

func TestSubmit_NonCSVRejected(t *testing.T) {
	sub := &fakeSubmitter{}
	r := newTestRouter(t, sub, nil, nil)

	rec := postProject(t, r, validFields(), &upload{"report.pdf", "application/pdf", "%PDF-1.4"})

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	resp := decode(t, rec)
	assert.Equal(t, "Please upload a CSV file", resp.Msg)
	assert.Equal(t, apperrors.ErrCodeInvalidFileType, resp.Error)
	assert.Empty(t, sub.requests)
}

func TestSubmit_ValidationFailure(t *testing.T) {
	sub := &fakeSubmitter{}
	r := newTestRouter(t, sub, nil, nil)

	fields := validFields()
	fields["estimatedDuration"] = "0"
	rec := postProject(t, r, fields, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decode(t, rec)
	assert.Equal(t, -1, resp.Code)
	assert.Equal(t, "Form validation failed", resp.Msg)
	assert.Equal(t, apperrors.ErrCodeFormValidationFailed, resp.Error)
	require.IsType(t, []interface{}{}, resp.Data)
	first := resp.Data.([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "estimatedDuration", first["field"])
	assert.Empty(t, sub.requests)
}

func TestSubmit_HistoryWithoutFile(t *testing.T) {
	sub := &fakeSubmitter{}
	r := newTestRouter(t, sub, nil, nil)

	fields := validFields()
	fields["hasHistoricalData"] = "on"
	rec := postProject(t, r, fields, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, sub.requests)
}

func TestSubmit_ServiceErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		msg    string
		code   apperrors.ErrorCode
	}{
		{"in progress", submission.ErrSubmissionInProgress, http.StatusConflict, "A submission is already in progress", apperrors.ErrCodeSubmissionInProgress},
		{"store down", fmt.Errorf("%w: connection refused", submission.ErrSubmissionFailed), http.StatusInternalServerError, "Failed to submit project", apperrors.ErrCodeSubmissionFailed},
		{"anything else", errors.New("boom"), http.StatusInternalServerError, "Failed to submit project", apperrors.ErrCodeSubmissionFailed},
		{"csv refused by service", historical.ErrInvalidFileType, http.StatusUnsupportedMediaType, "Please upload a CSV file", apperrors.ErrCodeInvalidFileType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRouter(t, &fakeSubmitter{err: tt.err}, nil, nil)

			rec := postProject(t, r, validFields(), nil)

			assert.Equal(t, tt.status, rec.Code)
			resp := decode(t, rec)
			assert.Equal(t, tt.msg, resp.Msg)
			assert.Equal(t, tt.code, resp.Error)
		})
	}
}

func TestSubmit_RequiresUser(t *testing.T) {
	r := newTestRouter(t, &fakeSubmitter{}, nil, nil)

	body, contentType := multipartBody(t, validFields(), nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/projects", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// ==========================
// Get / List
// ==========================

func TestGet(t *testing.T) {
	sub := &fakeSubmitter{project: &models.Project{
		ID:            "p-1",
		CreatedAt:     "2026-03-01T10:00:00Z",
		ProjectRecord: models.ProjectRecord{UserID: "user-1", ProjectName: "Ring Road"},
	}}
	r := newTestRouter(t, sub, nil, nil)

	get := func(user, id string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/projects/"+id, nil)
		req.Header.Set(UserIDHeader, user)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec
	}

	rec := get("user-1", "p-1")
	require.Equal(t, http.StatusOK, rec.Code)
	data := decode(t, rec).Data.(map[string]interface{})
	assert.Equal(t, "Ring Road", data["projectName"])
	assert.Equal(t, "p-1", data["id"])

	rec = get("user-2", "p-1")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, apperrors.ErrCodeProjectNotFound, decode(t, rec).Error)
	assert.Equal(t, http.StatusNotFound, get("user-1", "p-2").Code)
}

func TestList(t *testing.T) {
	search := &fakeSearcher{}
	r := newTestRouter(t, &fakeSubmitter{}, search, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/projects?q=ring", nil)
	req.Header.Set(UserIDHeader, "user-1")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-1", search.userID)
	assert.Equal(t, "ring", search.query)
	data := decode(t, rec).Data.(map[string]interface{})
	assert.Equal(t, float64(1), data["total"])
}

func TestList_SearchDisabled(t *testing.T) {
	r := newTestRouter(t, &fakeSubmitter{}, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/projects", nil)
	req.Header.Set(UserIDHeader, "user-1")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

// ==========================
// Probes
// ==========================

func TestHealthAndReady(t *testing.T) {
	checks := map[string]Check{
		"postgres": func(context.Context) error { return nil },
	}
	r := newTestRouter(t, &fakeSubmitter{}, nil, checks)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	checks["redis"] = func(context.Context) error { return errors.New("dial tcp: refused") }
	r = newTestRouter(t, &fakeSubmitter{}, nil, checks)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "refused")
}

func TestMetricsEndpoint(t *testing.T) {
	r := newTestRouter(t, &fakeSubmitter{}, nil, nil)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
