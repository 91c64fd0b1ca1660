// Package renewal decides which targets need a fresh certificate and
// hands them to the issuance batch.
package renewal

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"gitlab.lucky-team.pro/luckyads/go.cert-issuer/internal/entities"
	"gitlab.lucky-team.pro/luckyads/go.cert-issuer/internal/gateway"
	"gitlab.lucky-team.pro/luckyads/go.cert-issuer/internal/storage"
)

// DefaultRenewBeforeDays is the renewal threshold applied when the
// configured value is missing or nonsensical.
const DefaultRenewBeforeDays = 30

const hoursPerDay = 24

// Batcher runs the issuance saga for a set of targets.
type Batcher interface {
	Run(ctx context.Context, targets []entities.DomainTarget) entities.BatchResult
}

// Config carries renewal tunables.
type Config struct {
	RenewBeforeDays int
	Force           bool
}

// Summary is the outcome of one renewal cycle.
type Summary struct {
	Total   int
	Due     int
	Skipped int
	Failed  int
}

// Service is designed to renew certificates before they expire.
type Service struct {
	storage  storage.Common
	gateways gateway.Factory
	batcher  Batcher
	logger   *zap.Logger
	conf     Config
	now      func() time.Time
}

// New returns new Service ready to use.
func New(storage storage.Common, gateways gateway.Factory, batcher Batcher, logger *zap.Logger, conf Config) Service {
	if conf.RenewBeforeDays <= 0 {
		conf.RenewBeforeDays = DefaultRenewBeforeDays
	}
	return Service{
		storage:  storage,
		gateways: gateways,
		batcher:  batcher,
		logger:   logger,
		conf:     conf,
		now:      time.Now,
	}
}

// RenewDue inspects every target's deployed certificate and runs the
// issuance batch for the ones inside the renewal window. Targets whose
// certificate is absent from the gateway, or whose expiry the gateway
// does not expose, are skipped.
func (s Service) RenewDue(ctx context.Context) (Summary, error) {
	targets, err := s.storage.GetTargets(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to get targets list: %w", err)
	}

	summary := Summary{Total: len(targets)}

	inventories := make(map[string]map[string]entities.GatewayCertificate)
	var due []entities.DomainTarget
	for _, target := range targets {
		inventory, ok := inventories[target.GatewayName]
		if !ok {
			inventory, err = s.certInventory(ctx, target.GatewayName)
			if err != nil {
				s.logger.Error("failed to list gateway certificates",
					zap.String("gateway", target.GatewayName),
					zap.Error(err),
				)
				summary.Failed++
				continue
			}
			inventories[target.GatewayName] = inventory
		}

		if s.isDue(target, inventory) {
			due = append(due, target)
		} else {
			summary.Skipped++
		}
	}

	summary.Due = len(due)
	if len(due) == 0 {
		return summary, nil
	}

	result := s.batcher.Run(ctx, due)
	summary.Failed += result.Failed

	s.logger.Info("renewal cycle finished",
		zap.Int("total", summary.Total),
		zap.Int("due", summary.Due),
		zap.Int("skipped", summary.Skipped),
		zap.Int("failed", summary.Failed),
	)
	return summary, nil
}

// isDue applies the renewal window to one target.
func (s Service) isDue(target entities.DomainTarget, inventory map[string]entities.GatewayCertificate) bool {
	logger := s.logger.With(
		zap.String("domain", target.Domain),
		zap.String("gateway", target.GatewayName),
	)

	cert, ok := inventory[entities.CertName(target.Domain)]
	if !ok {
		logger.Warn("certificate is not deployed on the gateway, skipping")
		return false
	}
	if cert.Expiry == nil {
		logger.Warn("gateway does not expose certificate expiry, skipping")
		return false
	}

	days := daysRemaining(*cert.Expiry, s.now())
	if s.conf.Force {
		logger.Info("renewal forced", zap.Int("days_remaining", days))
		return true
	}
	if days > s.conf.RenewBeforeDays {
		logger.Debug("certificate is fresh enough", zap.Int("days_remaining", days))
		return false
	}

	logger.Info("certificate is due for renewal", zap.Int("days_remaining", days))
	return true
}

// Statuses reports every certificate found on the gateways the targets
// live on, classified against the renewal threshold.
func (s Service) Statuses(ctx context.Context) ([]entities.CertStatus, error) {
	targets, err := s.storage.GetTargets(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get targets list: %w", err)
	}

	seen := make(map[string]struct{})
	var statuses []entities.CertStatus
	for _, target := range targets {
		if _, ok := seen[target.GatewayName]; ok {
			continue
		}
		seen[target.GatewayName] = struct{}{}

		inventory, err := s.certInventory(ctx, target.GatewayName)
		if err != nil {
			return nil, fmt.Errorf("failed to list certificates on %q: %w", target.GatewayName, err)
		}
		for _, cert := range inventory {
			statuses = append(statuses, s.classify(target.GatewayName, cert))
		}
	}

	sort.Slice(statuses, func(i, j int) bool {
		if statuses[i].Gateway != statuses[j].Gateway {
			return statuses[i].Gateway < statuses[j].Gateway
		}
		return statuses[i].Name < statuses[j].Name
	})
	return statuses, nil
}

func (s Service) classify(gatewayName string, cert entities.GatewayCertificate) entities.CertStatus {
	status := entities.CertStatus{
		Gateway: gatewayName,
		Name:    cert.Name,
		Expiry:  cert.Expiry,
		// Unknown expiry is not a failure state.
		Status: entities.StatusValid,
	}
	if cert.Expiry == nil {
		return status
	}

	days := daysRemaining(*cert.Expiry, s.now())
	status.DaysRemaining = &days
	switch {
	case days < 0:
		status.Status = entities.StatusExpired
	case days <= s.conf.RenewBeforeDays:
		status.Status = entities.StatusExpiringSoon
	}
	return status
}

func (s Service) certInventory(ctx context.Context, gatewayName string) (map[string]entities.GatewayCertificate, error) {
	certs, err := s.gateways(gatewayName).ListCertificates(ctx)
	if err != nil {
		return nil, err
	}

	inventory := make(map[string]entities.GatewayCertificate, len(certs))
	for _, cert := range certs {
		inventory[cert.Name] = cert
	}
	return inventory, nil
}

func daysRemaining(expiry, now time.Time) int {
	return int(expiry.Sub(now).Hours() / hoursPerDay)
}
