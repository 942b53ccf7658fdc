package registry

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	activitymodels "aims/internal/activity/models"
	"aims/internal/iati/codelists"
	dErrors "aims/pkg/domain-errors"
	"aims/pkg/platform/sentinel"
)

// ErrUnknownOrg means the registry has no publisher under the given ref.
var ErrUnknownOrg = errors.New("organisation not found in registry")

// Lookuper fetches a registry record for one organisation identifier.
type Lookuper interface {
	Lookup(ctx context.Context, ref string) (*OrgInfo, error)
}

// OrganizationSaver persists resolved organisations locally.
type OrganizationSaver interface {
	SaveOrganization(ctx context.Context, org *activitymodels.Organization) error
}

// Service resolves organisation refs through cache, registry and local store,
// in that order.
type Service struct {
	client Lookuper
	cache  Cache
	saver  OrganizationSaver
	logger *slog.Logger
}

// Option configures the Service.
type Option func(*Service)

// WithLogger sets a logger for cache and registry failures.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithSaver persists every resolved organisation into the local store so
// participating-org refs resolve on the next import.
func WithSaver(saver OrganizationSaver) Option {
	return func(s *Service) { s.saver = saver }
}

// New constructs a Service.
func New(client Lookuper, cache Cache, opts ...Option) *Service {
	s := &Service{client: client, cache: cache}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Resolve returns the organisation behind ref. Cache failures degrade to a
// registry call; an unknown ref maps to a not-found domain error.
func (s *Service) Resolve(ctx context.Context, ref string) (*OrgInfo, error) {
	if ref == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "organisation ref is required")
	}

	if s.cache != nil {
		info, err := s.cache.Get(ctx, ref)
		if err == nil {
			return info, nil
		}
		if !errors.Is(err, sentinel.ErrNotFound) && s.logger != nil {
			s.logger.WarnContext(ctx, "registry cache read failed", "ref", ref, "error", err)
		}
	}

	info, err := s.client.Lookup(ctx, ref)
	if err != nil {
		if errors.Is(err, ErrUnknownOrg) {
			return nil, dErrors.Newf(dErrors.CodeNotFound, "organisation %q not found in registry", ref)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "registry lookup failed")
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, info); err != nil && s.logger != nil {
			s.logger.WarnContext(ctx, "registry cache write failed", "ref", ref, "error", err)
		}
	}
	if s.saver != nil {
		org := &activitymodels.Organization{
			ID:   uuid.New(),
			Ref:  info.Ref,
			Name: info.Name,
			Type: codelists.MapOrganisationType(info.Type),
		}
		if err := s.saver.SaveOrganization(ctx, org); err != nil && s.logger != nil {
			s.logger.WarnContext(ctx, "organisation save failed", "ref", ref, "error", err)
		}
	}
	return info, nil
}
