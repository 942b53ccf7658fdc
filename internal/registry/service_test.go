package registry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/suite"

	"aims/internal/activity/store"
	dErrors "aims/pkg/domain-errors"
)

type RegistrySuite struct {
	suite.Suite
	ctx     context.Context
	server  *httptest.Server
	calls   atomic.Int64
	known   map[string]string
	client  *Client
	cache   *MemoryCache
	gateway *store.Memory
}

func (s *RegistrySuite) SetupTest() {
	s.ctx = context.Background()
	s.calls.Store(0)
	s.known = map[string]string{
		"XM-DAC-41114": "United Nations Development Programme",
	}
	s.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.calls.Add(1)
		ref := r.URL.Query().Get("id")
		title, ok := s.known[ref]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"result":{"name":"undp","title":"` + title + `","publisher_organization_type":"40"}}`))
	}))
	s.T().Cleanup(s.server.Close)

	s.client = NewClient(WithBaseURL(s.server.URL))
	s.cache = NewMemoryCache(0)
	s.gateway = store.NewMemory()
}

func TestRegistrySuite(t *testing.T) {
	suite.Run(t, new(RegistrySuite))
}

// TestResolve verifies the cache, registry and store layering.
func (s *RegistrySuite) TestResolve() {
	svc := New(s.client, s.cache, WithSaver(s.gateway))

	s.Run("resolves through the registry and prefers the title", func() {
		info, err := svc.Resolve(s.ctx, "XM-DAC-41114")
		s.Require().NoError(err)
		s.Equal("United Nations Development Programme", info.Name)
		s.Equal("40", info.Type)
		s.EqualValues(1, s.calls.Load())
	})

	s.Run("a second resolve is served from cache", func() {
		info, err := svc.Resolve(s.ctx, "XM-DAC-41114")
		s.Require().NoError(err)
		s.Equal("United Nations Development Programme", info.Name)
		s.EqualValues(1, s.calls.Load(), "no extra registry call")
	})

	s.Run("the resolved organisation is saved locally with a mapped type", func() {
		org, err := s.gateway.FindOrganizationByRef(s.ctx, "XM-DAC-41114")
		s.Require().NoError(err)
		s.Equal("United Nations Development Programme", org.Name)
		s.Equal("multilateral", org.Type)
	})

	s.Run("an empty ref is a bad request", func() {
		_, err := svc.Resolve(s.ctx, "")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	s.Run("an unknown ref maps to not found", func() {
		_, err := svc.Resolve(s.ctx, "XX-NOBODY")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

// TestRegistryDown verifies transport failures surface as unavailable.
func (s *RegistrySuite) TestRegistryDown() {
	down := NewClient(WithBaseURL("http://127.0.0.1:1"))
	svc := New(down, NewMemoryCache(0))

	_, err := svc.Resolve(s.ctx, "XM-DAC-41114")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))
}

// TestClientLookup verifies the wire-level response handling.
func (s *RegistrySuite) TestClientLookup() {
	s.Run("falls back to name when title is empty", func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"success":true,"result":{"name":"short-name","title":"","publisher_organization_type":"22"}}`))
		}))
		defer server.Close()

		info, err := NewClient(WithBaseURL(server.URL)).Lookup(s.ctx, "ref-1")
		s.Require().NoError(err)
		s.Equal("short-name", info.Name)
	})

	s.Run("success false means unknown", func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"success":false}`))
		}))
		defer server.Close()

		_, err := NewClient(WithBaseURL(server.URL)).Lookup(s.ctx, "ref-1")
		s.Require().ErrorIs(err, ErrUnknownOrg)
	})

	s.Run("unexpected status is an error but not unknown", func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		_, err := NewClient(WithBaseURL(server.URL)).Lookup(s.ctx, "ref-1")
		s.Require().Error(err)
		s.NotErrorIs(err, ErrUnknownOrg)
	})
}

// TestMemoryCache verifies miss and hit behavior.
func (s *RegistrySuite) TestMemoryCache() {
	cache := NewMemoryCache(0)

	_, err := cache.Get(s.ctx, "ref-1")
	s.Require().Error(err)

	s.Require().NoError(cache.Set(s.ctx, &OrgInfo{Ref: "ref-1", Name: "Org One"}))
	info, err := cache.Get(s.ctx, "ref-1")
	s.Require().NoError(err)
	s.Equal("Org One", info.Name)
}
