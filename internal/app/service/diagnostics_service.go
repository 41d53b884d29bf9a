package service

import (
	"context"
	"time"

	"github.com/amaretto/amaretto-backend/internal/app/repository"
)

// StoreDiagnostics describes both catalog backends as seen right now
type StoreDiagnostics struct {
	PrimaryReachable bool                   `json:"primary_reachable"`
	PrimaryLatencyMS int64                  `json:"primary_latency_ms"`
	PrimaryError     string                 `json:"primary_error,omitempty"`
	ActiveBackend    repository.BackendKind `json:"active_backend"`
	PrimaryProducts  *int64                 `json:"primary_products,omitempty"`
	FallbackProducts *int64                 `json:"fallback_products,omitempty"`
	FallbackError    string                 `json:"fallback_error,omitempty"`
}

type DiagnosticsService interface {
	Store(ctx context.Context) StoreDiagnostics
}

type diagnosticsService struct {
	prober       Prober
	primary      repository.ProductRepository
	fallback     repository.ProductRepository
	probeTimeout time.Duration
}

func NewDiagnosticsService(prober Prober, primary, fallback repository.ProductRepository, probeTimeout time.Duration) DiagnosticsService {
	if probeTimeout <= 0 {
		probeTimeout = 2 * time.Second
	}
	return &diagnosticsService{prober: prober, primary: primary, fallback: fallback, probeTimeout: probeTimeout}
}

func (s *diagnosticsService) Store(ctx context.Context) StoreDiagnostics {
	var d StoreDiagnostics

	probeCtx, cancel := context.WithTimeout(ctx, s.probeTimeout)
	start := time.Now()
	err := s.prober.Ping(probeCtx)
	cancel()
	d.PrimaryLatencyMS = time.Since(start).Milliseconds()

	if err != nil {
		d.PrimaryError = err.Error()
		d.ActiveBackend = repository.BackendFallback
	} else {
		d.PrimaryReachable = true
		d.ActiveBackend = repository.BackendPrimary
		if n, err := s.primary.Count(ctx); err == nil {
			d.PrimaryProducts = &n
		}
	}

	if n, err := s.fallback.Count(ctx); err != nil {
		d.FallbackError = err.Error()
	} else {
		d.FallbackProducts = &n
	}
	return d
}
