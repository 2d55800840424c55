// internal/api/handler.go
package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "chronocost/internal/common/errors"
	"chronocost/internal/common/logger"
	"chronocost/internal/common/validation"
	"chronocost/internal/docstore"
	"chronocost/internal/historical"
	"chronocost/internal/models"
	"chronocost/internal/submission"
)

const (
	UserIDHeader = "X-User-ID"
	csvFileField = "csvFile"
)

// formFields are applied in order: projectType before terrain, so an
// explicit terrain wins over the type coupling.
var formFields = []string{
	"companyName", "projectName", "projectType", "location", "terrain",
	"estimatedBudget", "estimatedDuration", "scopeDescription",
	"riskFactors", "categories", "hasHistoricalData",
}

// Submitter is the submission service as seen by the handlers.
type Submitter interface {
	Submit(ctx context.Context, req submission.Request) (*submission.Result, error)
	Get(ctx context.Context, userID, projectID string) (*models.Project, error)
}

// Searcher queries the project search index.
type Searcher interface {
	Search(ctx context.Context, userID, query string, size int) ([]docstore.SearchHit, error)
}

type ProjectHandler struct {
	projects       Submitter
	search         Searcher
	maxUploadBytes int64
	log            logger.Logger
}

// NewProjectHandler builds the project endpoints. search may be nil when
// the index is disabled.
func NewProjectHandler(projects Submitter, search Searcher, maxUploadBytes int64, log logger.Logger) *ProjectHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = 10 << 20
	}
	return &ProjectHandler{
		projects:       projects,
		search:         search,
		maxUploadBytes: maxUploadBytes,
		log:            log.WithFields(map[string]interface{}{"component": "api"}),
	}
}

// Submit handles the intake form post.
func (h *ProjectHandler) Submit(c *gin.Context) {
	userID := c.GetString(userIDKey)

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	if err := c.Request.ParseMultipartForm(h.maxUploadBytes); err != nil {
		Fail(c, http.StatusBadRequest, "invalid multipart form")
		return
	}

	form := models.NewForm()
	for _, name := range formFields {
		values, ok := c.Request.PostForm[name]
		if !ok || len(values) == 0 {
			continue
		}
		if err := form.Set(name, values[0]); err != nil {
			Fail(c, http.StatusBadRequest, err.Error())
			return
		}
	}

	attachment, err := readAttachment(c)
	if err != nil {
		h.log.Warn("Failed to read uploaded file", map[string]interface{}{"userId": userID, "error": err.Error()})
		Fail(c, http.StatusBadRequest, "invalid file upload")
		return
	}
	if attachment != nil {
		if err := form.AttachCSV(attachment); err != nil {
			FailWithError(c, http.StatusUnsupportedMediaType, apperrors.NewInvalidFileTypeError(attachment.ContentType), nil)
			return
		}
	}

	result := validation.ValidateProjectForm(form.Input, form.CSVFile != nil)
	if !result.Valid {
		stdErr := apperrors.NewFormValidationFailedError(strings.Join(result.GetErrorMessages(), "; "))
		FailWithError(c, http.StatusBadRequest, stdErr, result.Errors)
		return
	}

	res, err := h.projects.Submit(c.Request.Context(), submission.Request{
		UserID: userID,
		Form:   form.Input,
		CSV:    form.CSVFile,
	})
	if err != nil {
		switch {
		case errors.Is(err, historical.ErrInvalidFileType):
			var contentType string
			if form.CSVFile != nil {
				contentType = form.CSVFile.ContentType
			}
			FailWithError(c, http.StatusUnsupportedMediaType, apperrors.NewInvalidFileTypeError(contentType), nil)
		case errors.Is(err, submission.ErrSubmissionInProgress):
			FailWithError(c, http.StatusConflict, apperrors.NewSubmissionInProgressError(userID), nil)
		default:
			FailWithError(c, http.StatusInternalServerError, apperrors.NewSubmissionFailedError(err), nil)
		}
		return
	}

	Created(c, res.Location, gin.H{
		"projectId": res.ProjectID,
		"location":  res.Location,
		"riskScore": res.Record.RiskScore,
	})
}

func readAttachment(c *gin.Context) (*models.Attachment, error) {
	file, header, err := c.Request.FormFile(csvFileField)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	att := &models.Attachment{Filename: header.Filename, ContentType: contentType}
	// leave the bytes unread for files the intake will refuse anyway
	if historical.CheckContentType(contentType) != nil {
		return att, nil
	}
	content, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}
	att.Content = content
	return att, nil
}

// Get returns one of the caller's projects.
func (h *ProjectHandler) Get(c *gin.Context) {
	project, err := h.projects.Get(c.Request.Context(), c.GetString(userIDKey), c.Param("id"))
	if err != nil {
		if errors.Is(err, submission.ErrProjectNotFound) {
			FailWithError(c, http.StatusNotFound, apperrors.NewProjectNotFoundError(c.Param("id")), nil)
			return
		}
		h.log.Error("Failed to load project", map[string]interface{}{"projectId": c.Param("id"), "error": err.Error()})
		Fail(c, http.StatusInternalServerError, "failed to load project")
		return
	}
	Success(c, project)
}

// List searches the caller's projects; q may be empty.
func (h *ProjectHandler) List(c *gin.Context) {
	if h.search == nil {
		Fail(c, http.StatusServiceUnavailable, "search is disabled")
		return
	}

	size, _ := strconv.Atoi(c.Query("size"))
	hits, err := h.search.Search(c.Request.Context(), c.GetString(userIDKey), c.Query("q"), size)
	if err != nil {
		h.log.Error("Failed to search projects", map[string]interface{}{"error": err.Error()})
		Fail(c, http.StatusBadGateway, "failed to search projects")
		return
	}
	Success(c, gin.H{"total": len(hits), "hits": hits})
}
