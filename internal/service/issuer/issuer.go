// Package issuer drives ACME HTTP-01 certificate issuance sagas
// against a certificate authority and a gateway control plane.
package issuer

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"gitlab.lucky-team.pro/luckyads/go.cert-issuer/internal/ca"
	"gitlab.lucky-team.pro/luckyads/go.cert-issuer/internal/entities"
	"gitlab.lucky-team.pro/luckyads/go.cert-issuer/internal/gateway"
	"gitlab.lucky-team.pro/luckyads/go.cert-issuer/internal/retry"
)

// DefaultMaxConcurrency is the batch concurrency ceiling used when the
// configured value is missing or nonsensical.
const DefaultMaxConcurrency = 3

// cleanupTimeout bounds the route removal call; it runs on a fresh
// context so an expired saga context cannot leave the rule behind.
const cleanupTimeout = 2 * time.Minute

// Hooks observes saga lifecycle transitions. Used by tests and metrics;
// nil funcs are skipped.
type Hooks struct {
	SagaStarted  func(target entities.DomainTarget)
	SagaFinished func(target entities.DomainTarget)
}

// Config carries issuance tunables.
type Config struct {
	ResponderName    string
	ResponderBackend string
	PollInterval     time.Duration
	PollTimeout      time.Duration
	CARetry          retry.Policy
	GatewayRetry     retry.Policy
	MaxConcurrency   int
	DryRun           bool
	Hooks            Hooks
}

// Service is designed to issue and deploy certificates for domains.
type Service struct {
	caClient ca.Client
	gateways gateway.Factory
	logger   *zap.Logger
	conf     Config
	now      func() time.Time
}

// New returns new Service ready to use.
func New(caClient ca.Client, gateways gateway.Factory, logger *zap.Logger, conf Config) Service {
	return Service{
		caClient: caClient,
		gateways: gateways,
		logger:   logger,
		conf:     conf,
		now:      time.Now,
	}
}

// Result is the outcome of one successful or partially successful saga.
type Result struct {
	Target           entities.DomainTarget
	CertificateName  string
	ReboundListeners []string
	CleanupWarning   error
}

// CleanupWarning reports that temporary route removal failed after the
// saga already had an outcome. It never supersedes that outcome.
type CleanupWarning struct {
	RuleName string
	Err      error
}

func (w *CleanupWarning) Error() string {
	return fmt.Sprintf("failed to remove temporary route %q: %v", w.RuleName, w.Err)
}

func (w *CleanupWarning) Unwrap() error {
	return w.Err
}
