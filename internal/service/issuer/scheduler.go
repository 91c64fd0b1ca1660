package issuer

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"gitlab.lucky-team.pro/luckyads/go.cert-issuer/internal/entities"
)

// Run executes the issuance saga for every target under the configured
// concurrency ceiling. A failing domain is recorded and never affects
// its siblings; the returned result always satisfies
// Succeeded+Failed == Total.
func (s Service) Run(ctx context.Context, targets []entities.DomainTarget) entities.BatchResult {
	result := entities.BatchResult{
		Total:  len(targets),
		Errors: make(map[entities.DomainTarget]error),
	}
	if len(targets) == 0 {
		return result
	}

	if s.conf.DryRun {
		for _, target := range targets {
			s.logger.Info("dry-run: would issue certificate",
				zap.String("domain", target.Domain),
				zap.String("gateway", target.GatewayName),
			)
		}
		result.Succeeded = result.Total
		return result
	}

	limit := s.conf.MaxConcurrency
	if limit <= 0 {
		limit = DefaultMaxConcurrency
	}

	var mu sync.Mutex
	gr := &errgroup.Group{}
	gr.SetLimit(limit)

	for _, target := range targets {
		target := target
		gr.Go(func() error {
			if s.conf.Hooks.SagaStarted != nil {
				s.conf.Hooks.SagaStarted(target)
			}

			res, err := s.issueSafely(ctx, target)

			if s.conf.Hooks.SagaFinished != nil {
				s.conf.Hooks.SagaFinished(target)
			}

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				s.logger.Error("failed to issue certificate",
					zap.String("domain", target.Domain),
					zap.String("gateway", target.GatewayName),
					zap.Error(err),
				)
				result.Failed++
				result.Errors[target] = err
				return nil
			}

			if res.CleanupWarning != nil {
				s.logger.Warn("certificate issued, temporary route left behind",
					zap.String("domain", target.Domain),
					zap.Error(res.CleanupWarning),
				)
			}
			result.Succeeded++
			return nil
		})
	}

	gr.Wait() //nolint:errcheck // saga errors are captured per target

	s.logger.Info("batch finished",
		zap.Int("total", result.Total),
		zap.Int("succeeded", result.Succeeded),
		zap.Int("failed", result.Failed),
	)
	return result
}

// issueSafely shields siblings from a panicking saga.
func (s Service) issueSafely(ctx context.Context, target entities.DomainTarget) (res Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("saga panicked: %v", r)
		}
	}()
	return s.Issue(ctx, target)
}
