package gateway

import (
	"context"
	"errors"
	"fmt"

	"gitlab.lucky-team.pro/luckyads/go.cert-issuer/internal/entities"
)

//go:generate mockgen -source=gateway.go -package=gateway -destination=gateway_mock.go

// Client defines the control plane surface of a single gateway.
// Every method maps to one control plane call; errors marked transient
// (rate limits, 5xx) may be retried by the caller.
type Client interface {
	// UploadCertificate deploys a certificate object onto the gateway.
	UploadCertificate(ctx context.Context, artifact entities.CertificateArtifact) error
	// CreatePathRoute creates a path-based rule forwarding
	// /.well-known/acme-challenge/* for domain to backendFQDN.
	CreatePathRoute(ctx context.Context, ruleName, domain, backendFQDN string) error
	// DeletePathRoute removes a path rule. Returns an error wrapping
	// ErrRouteNotFound when the rule does not exist.
	DeletePathRoute(ctx context.Context, ruleName string) error
	// ListListenersByCertificateName returns the names of listeners
	// currently bound to the named certificate. Empty is not an error.
	ListListenersByCertificateName(ctx context.Context, certName string) ([]string, error)
	// RebindListenerCertificate points a listener at a different certificate.
	RebindListenerCertificate(ctx context.Context, listenerName, certName string) error
	// PublishChallengeValue writes settings on the named challenge responder app.
	PublishChallengeValue(ctx context.Context, responderName string, settings map[string]string) error
	// ListCertificates enumerates certificates attached to the gateway.
	ListCertificates(ctx context.Context) ([]entities.GatewayCertificate, error)
	// ListChallengeRules returns the names of all path rules carrying
	// the temporary challenge prefix.
	ListChallengeRules(ctx context.Context) ([]string, error)
}

// Factory returns a Client bound to the named gateway. Concurrent
// sagas obtain independent clients so per-gateway state never leaks
// between domains.
type Factory func(gatewayName string) Client

// ErrRouteNotFound is reported by DeletePathRoute when the rule is
// already absent. Callers treat it as success during cleanup.
var ErrRouteNotFound = errors.New("path rule not found")

// APIError is any control plane call failure. Rate-limit and server
// errors are transient and eligible for retry.
type APIError struct {
	Op         string
	Gateway    string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("gateway %q: %s failed with status %d: %s", e.Gateway, e.Op, e.StatusCode, e.Message)
}

// Transient reports whether the call may succeed on retry.
func (e *APIError) Transient() bool {
	return e.StatusCode == 429 || e.StatusCode >= 500
}
