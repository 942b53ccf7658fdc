// Package service orchestrates the import pipeline: parse, validate, diff and
// merge, with logging, metrics, tracing and audit around the edges.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	activitymodels "aims/internal/activity/models"
	"aims/internal/activity/store"
	"aims/internal/audit"
	"aims/internal/iati/diff"
	"aims/internal/iati/importer"
	"aims/internal/iati/metrics"
	"aims/internal/iati/models"
	"aims/internal/iati/parser"
	"aims/internal/iati/validate"
	"aims/internal/importlog"
	dErrors "aims/pkg/domain-errors"
	"aims/pkg/platform/sentinel"
)

// AuditPublisher emits pipeline audit events.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service runs the import pipeline against one persistence gateway.
type Service struct {
	gateway store.Gateway
	logs    importlog.Store
	logger  *slog.Logger
	audit   AuditPublisher
	metrics *metrics.Metrics
	tracer  trace.Tracer
}

// Option configures the Service.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) { s.audit = publisher }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithImportLog(logs importlog.Store) Option {
	return func(s *Service) { s.logs = logs }
}

// New constructs a Service.
func New(gateway store.Gateway, opts ...Option) *Service {
	s := &Service{
		gateway: gateway,
		tracer:  otel.Tracer("aims/import"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PreviewResult is what a reviewer sees before deciding what to accept.
type PreviewResult struct {
	ActivityID     uuid.UUID              `json:"activity_id"`
	IATIIdentifier string                 `json:"iati_identifier"`
	Descriptors    []diff.FieldDescriptor `json:"fields"`
	ErrorCount     int                    `json:"error_count"`
	WarningCount   int                    `json:"warning_count"`
}

// Preview parses and validates a document against the stored activity and
// returns the field descriptors without writing anything.
func (s *Service) Preview(ctx context.Context, activityID uuid.UUID, raw []byte) (*PreviewResult, error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "import.preview",
		trace.WithAttributes(attribute.String("activity.id", activityID.String())))
	defer span.End()

	snap, parsed, descriptors, err := s.evaluate(ctx, activityID, raw)
	if err != nil {
		return nil, err
	}

	result := &PreviewResult{
		ActivityID:     activityID,
		IATIIdentifier: parsed.IATIIdentifier,
		Descriptors:    descriptors,
	}
	for _, d := range descriptors {
		result.ErrorCount += len(d.Errors)
		result.WarningCount += len(d.Warnings)
	}

	s.emitAudit(ctx, audit.Event{
		Action:         audit.ActionPreviewed,
		ActivityID:     activityID.String(),
		IATIIdentifier: snap.Activity.IATIIdentifier,
	})
	if s.metrics != nil {
		s.metrics.ObservePreview(start)
	}
	return result, nil
}

// Import runs the full pipeline and merges the accepted fields. The manifest
// is returned even when a storage failure aborts the run partway.
func (s *Service) Import(ctx context.Context, activityID uuid.UUID, raw []byte, accepted []string) (*importer.Manifest, error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "import.merge",
		trace.WithAttributes(
			attribute.String("activity.id", activityID.String()),
			attribute.Int("accepted.count", len(accepted)),
		))
	defer span.End()

	snap, parsed, descriptors, err := s.evaluate(ctx, activityID, raw)
	if err != nil {
		s.emitAudit(ctx, audit.Event{
			Action:     audit.ActionRejected,
			ActivityID: activityID.String(),
			Detail:     err.Error(),
		})
		return nil, err
	}

	manifest, mergeErr := importer.Merge(ctx, s.gateway, parsed, descriptors, accepted, activityID)

	if s.metrics != nil {
		s.metrics.FieldsWritten.Add(float64(len(manifest.Written)))
		s.metrics.FieldsSkipped.Add(float64(len(manifest.Skipped)))
		s.metrics.ContactsDeduped.Add(float64(manifest.Deduplicated))
		s.metrics.ObserveImport(start)
	}
	s.recordRun(ctx, snap, manifest)
	s.emitAudit(ctx, audit.Event{
		Action:         audit.ActionMerged,
		ActivityID:     activityID.String(),
		IATIIdentifier: snap.Activity.IATIIdentifier,
		Fields:         manifest.Written,
		Detail:         mergeDetail(mergeErr),
	})
	if s.logger != nil {
		s.logger.InfoContext(ctx, "import merged",
			"activity_id", activityID,
			"written", len(manifest.Written),
			"skipped", len(manifest.Skipped),
			"failed", len(manifest.Failed),
			"deduplicated", manifest.Deduplicated,
		)
	}
	return manifest, mergeErr
}

// evaluate runs the read-only half of the pipeline shared by Preview and Import.
func (s *Service) evaluate(ctx context.Context, activityID uuid.UUID, raw []byte) (*activitymodels.Snapshot, *models.ParsedActivity, []diff.FieldDescriptor, error) {
	if len(strings.TrimSpace(string(raw))) == 0 {
		return nil, nil, nil, dErrors.New(dErrors.CodeBadRequest, "document body is required")
	}

	snap, err := s.gateway.ReadSnapshot(ctx, activityID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, nil, nil, dErrors.Newf(dErrors.CodeNotFound, "activity %s not found", activityID)
		}
		return nil, nil, nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "read activity snapshot")
	}

	parsed, err := parser.ParseOne(raw, snap.Activity.IATIIdentifier)
	if err != nil {
		if s.metrics != nil {
			s.metrics.ParseFailures.Inc()
		}
		return nil, nil, nil, dErrors.Wrap(err, dErrors.CodeValidation, "document is not importable")
	}
	if s.metrics != nil {
		s.metrics.ActivitiesParsed.Inc()
	}

	outcomes := validate.Activity(ctx, parsed)
	if s.metrics != nil {
		total := 0
		for _, o := range outcomes {
			total += len(o.Errors)
		}
		s.metrics.ValidationErrors.Add(float64(total))
	}

	descriptors, err := diff.Detect(parsed, snap, outcomes)
	if err != nil {
		return nil, nil, nil, dErrors.Wrap(err, dErrors.CodeInternal, "build field descriptors")
	}
	return snap, parsed, descriptors, nil
}

func (s *Service) recordRun(ctx context.Context, snap *activitymodels.Snapshot, manifest *importer.Manifest) {
	if s.logs == nil {
		return
	}
	record := &importlog.Record{
		ActivityID:     manifest.ActivityID,
		IATIIdentifier: snap.Activity.IATIIdentifier,
		Written:        manifest.Written,
		SkippedCount:   len(manifest.Skipped),
		FailedCount:    len(manifest.Failed),
		Created:        manifest.Created,
		Updated:        manifest.Updated,
		Deduplicated:   manifest.Deduplicated,
	}
	if err := s.logs.Append(ctx, record); err != nil && s.logger != nil {
		s.logger.ErrorContext(ctx, "import log append failed", "activity_id", manifest.ActivityID, "error", err)
	}
}

func (s *Service) emitAudit(ctx context.Context, event audit.Event) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Emit(ctx, event); err != nil && s.logger != nil {
		s.logger.ErrorContext(ctx, "audit emit failed", "action", event.Action, "error", err)
	}
}

func mergeDetail(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
