// Package handler exposes the import pipeline over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	activitymodels "aims/internal/activity/models"
	"aims/internal/activity/store"
	"aims/internal/iati/importer"
	"aims/internal/iati/service"
	"aims/internal/importlog"
	"aims/internal/platform/middleware"
	"aims/internal/registry"
	dErrors "aims/pkg/domain-errors"
	"aims/pkg/platform/httputil"
	"aims/pkg/platform/sentinel"
)

// maxDocumentBytes bounds uploaded IATI documents.
const maxDocumentBytes = 16 << 20

// PipelineService runs previews and imports.
type PipelineService interface {
	Preview(ctx context.Context, activityID uuid.UUID, raw []byte) (*service.PreviewResult, error)
	Import(ctx context.Context, activityID uuid.UUID, raw []byte, accepted []string) (*importer.Manifest, error)
}

// OrgResolver resolves organisation refs through the registry.
type OrgResolver interface {
	Resolve(ctx context.Context, ref string) (*registry.OrgInfo, error)
}

// Handler handles activity and import endpoints.
type Handler struct {
	logger     *slog.Logger
	pipeline   PipelineService
	gateway    store.Gateway
	logs       importlog.Store
	orgs       OrgResolver
	adminToken string
}

// Option configures the Handler.
type Option func(*Handler)

// WithOrgResolver enables the organisation lookup endpoint.
func WithOrgResolver(orgs OrgResolver) Option {
	return func(h *Handler) { h.orgs = orgs }
}

// WithImportLog enables the import history endpoint.
func WithImportLog(logs importlog.Store) Option {
	return func(h *Handler) { h.logs = logs }
}

// WithAdminToken guards all routes with a static bearer token.
func WithAdminToken(token string) Option {
	return func(h *Handler) { h.adminToken = token }
}

// New creates a Handler.
func New(pipeline PipelineService, gateway store.Gateway, logger *slog.Logger, opts ...Option) *Handler {
	h := &Handler{
		logger:   logger,
		pipeline: pipeline,
		gateway:  gateway,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register registers the import routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	router := chi.NewRouter()
	router.Use(middleware.Recovery(h.logger))
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(h.logger))
	router.Use(middleware.Timeout(60 * time.Second))
	router.Use(middleware.RequireToken(h.adminToken, h.logger))

	router.Post("/activities", h.handleCreateActivity)
	router.Post("/activities/{id}/import/preview", h.handlePreview)
	router.Post("/activities/{id}/import", h.handleImport)
	router.Get("/activities/{id}/imports", h.handleListImports)
	router.Get("/organizations/{ref}", h.handleResolveOrg)

	r.Mount("/", router)
}

func (h *Handler) handleCreateActivity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CreateActivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if err := req.Validate(); err != nil {
		httputil.WriteError(w, err)
		return
	}

	activity := &activitymodels.Activity{
		ID:             uuid.New(),
		IATIIdentifier: req.IATIIdentifier,
	}
	if err := h.gateway.CreateActivity(ctx, activity); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			httputil.WriteError(w, dErrors.New(dErrors.CodeConflict, "iati_identifier is already registered"))
			return
		}
		h.logger.ErrorContext(ctx, "failed to create activity", "error", err)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "failed to create activity"))
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, activity)
}

func (h *Handler) handlePreview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	activityID, ok := h.activityID(w, r)
	if !ok {
		return
	}

	raw, err := io.ReadAll(io.LimitReader(r.Body, maxDocumentBytes))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "failed to read document"))
		return
	}

	result, err := h.pipeline.Preview(ctx, activityID, raw)
	if err != nil {
		h.writePipelineError(ctx, w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

// importResponse pairs the manifest with the error that aborted the run, so a
// partially applied merge is still visible to the caller.
type importResponse struct {
	Manifest *importer.Manifest `json:"manifest"`
	Error    string             `json:"error,omitempty"`
}

func (h *Handler) handleImport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	activityID, ok := h.activityID(w, r)
	if !ok {
		return
	}

	var req ImportRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxDocumentBytes)).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if err := req.Validate(); err != nil {
		httputil.WriteError(w, err)
		return
	}

	manifest, err := h.pipeline.Import(ctx, activityID, []byte(req.Document), req.Accepted)
	if err != nil {
		if manifest == nil {
			h.writePipelineError(ctx, w, err)
			return
		}
		h.logger.ErrorContext(ctx, "import aborted partway", "activity_id", activityID, "error", err)
		status := http.StatusInternalServerError
		var de *dErrors.Error
		if errors.As(err, &de) {
			status = dErrors.ToHTTPStatus(de.Code)
		}
		httputil.WriteJSON(w, status, importResponse{Manifest: manifest, Error: "import aborted partway; see manifest"})
		return
	}
	httputil.WriteJSON(w, http.StatusOK, importResponse{Manifest: manifest})
}

func (h *Handler) handleListImports(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.logs == nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "import history is not enabled"))
		return
	}
	activityID, ok := h.activityID(w, r)
	if !ok {
		return
	}
	records, err := h.logs.ListByActivity(ctx, activityID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list imports", "activity_id", activityID, "error", err)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "failed to list imports"))
		return
	}
	if records == nil {
		records = []*importlog.Record{}
	}
	httputil.WriteJSON(w, http.StatusOK, records)
}

func (h *Handler) handleResolveOrg(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.orgs == nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "organisation lookup is not enabled"))
		return
	}
	ref := chi.URLParam(r, "ref")
	info, err := h.orgs.Resolve(ctx, ref)
	if err != nil {
		h.writePipelineError(ctx, w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, info)
}

func (h *Handler) activityID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "activity id must be a UUID"))
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) writePipelineError(ctx context.Context, w http.ResponseWriter, err error) {
	var de *dErrors.Error
	if errors.As(err, &de) {
		if de.Code == dErrors.CodeInternal || de.Code == dErrors.CodeUnavailable {
			h.logger.ErrorContext(ctx, "pipeline failure", "error", err)
		}
		httputil.WriteError(w, err)
		return
	}
	h.logger.ErrorContext(ctx, "unexpected pipeline failure", "error", err)
	httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "internal error"))
}
