// Package sweeper removes temporary challenge routes left behind by
// interrupted issuance runs.
package sweeper

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"gitlab.lucky-team.pro/luckyads/go.cert-issuer/internal/entities"
	"gitlab.lucky-team.pro/luckyads/go.cert-issuer/internal/gateway"
	"gitlab.lucky-team.pro/luckyads/go.cert-issuer/internal/storage"
)

// Report is the outcome of one sweep across all gateways.
type Report struct {
	Found   int
	Removed int
}

// Service is designed to find and delete orphaned challenge rules.
type Service struct {
	storage  storage.Common
	gateways gateway.Factory
	logger   *zap.Logger
}

// New returns new Service ready to use.
func New(storage storage.Common, gateways gateway.Factory, logger *zap.Logger) Service {
	return Service{
		storage:  storage,
		gateways: gateways,
		logger:   logger,
	}
}

// Sweep deletes every path rule carrying the challenge prefix on every
// gateway the targets live on. Rules that disappear between listing
// and deletion still count as removed.
func (s Service) Sweep(ctx context.Context) (Report, error) {
	targets, err := s.storage.GetTargets(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("failed to get targets list: %w", err)
	}

	var report Report
	seen := make(map[string]struct{})
	for _, target := range targets {
		if _, ok := seen[target.GatewayName]; ok {
			continue
		}
		seen[target.GatewayName] = struct{}{}

		found, removed := s.sweepGateway(ctx, target.GatewayName)
		report.Found += found
		report.Removed += removed
	}

	if report.Found > 0 {
		s.logger.Info("sweep finished",
			zap.Int("found", report.Found),
			zap.Int("removed", report.Removed),
		)
	}
	return report, nil
}

func (s Service) sweepGateway(ctx context.Context, gatewayName string) (found, removed int) {
	logger := s.logger.With(zap.String("gateway", gatewayName))

	gw := s.gateways(gatewayName)
	rules, err := gw.ListChallengeRules(ctx)
	if err != nil {
		logger.Error("failed to list challenge rules", zap.Error(err))
		return 0, 0
	}

	for _, rule := range rules {
		// ListChallengeRules already filters by prefix; keep the guard
		// so a sweep can never touch a production routing rule.
		if !entities.IsChallengeRule(rule) {
			continue
		}
		found++

		if err := gw.DeletePathRoute(ctx, rule); err != nil && !errors.Is(err, gateway.ErrRouteNotFound) {
			logger.Error("failed to delete orphaned challenge rule",
				zap.String("rule", rule),
				zap.Error(err),
			)
			continue
		}
		removed++
		logger.Info("removed orphaned challenge rule", zap.String("rule", rule))
	}

	return found, removed
}
