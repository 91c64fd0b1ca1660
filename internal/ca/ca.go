package ca

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gitlab.lucky-team.pro/luckyads/go.cert-issuer/internal/entities"
)

//go:generate mockgen -source=ca.go -package=ca -destination=ca_mock.go

// Order is a CA-tracked unit of work for one domain's certificate.
// CertChainPEM is populated by FinalizeOrder.
type Order struct {
	Domain       string
	URI          string
	FinalizeURL  string
	AuthzURLs    []string
	CertChainPEM []byte
}

// Client defines the certificate authority surface the issuance saga
// drives. Implementations classify their transient failures so the
// retry layer knows what is worth another attempt.
type Client interface {
	// CreateOrder opens a new certificate order for domain.
	CreateOrder(ctx context.Context, domain string) (*Order, error)
	// HTTP01Challenge extracts the HTTP-01 token and key authorization
	// for domain from the order's authorizations.
	HTTP01Challenge(ctx context.Context, order *Order, domain string) (entities.ChallengeContext, error)
	// AnswerChallenge tells the CA the challenge response is deployed.
	AnswerChallenge(ctx context.Context, challenge entities.ChallengeContext) error
	// PollUntilValid waits for the order to validate, sleeping interval
	// between polls. Returns TimeoutError when timeout elapses first.
	PollUntilValid(ctx context.Context, order *Order, timeout, interval time.Duration) error
	// FinalizeOrder submits the CSR and stores the signed chain on the order.
	FinalizeOrder(ctx context.Context, order *Order, csrDER []byte) error
	// DownloadCertificate returns the PEM chain of a finalized order.
	DownloadCertificate(order *Order) ([]byte, error)
}

// ErrNoHTTP01Challenge is returned when the CA offers no HTTP-01
// challenge for the requested domain. Permanent.
var ErrNoHTTP01Challenge = errors.New("no http-01 challenge found for domain")

// ErrCertificateUnavailable is returned by DownloadCertificate before
// the order has been finalized.
var ErrCertificateUnavailable = errors.New("certificate is not available in the order")

// ProtocolError is a CA-side failure of one order step. Retryable is
// set for rate-limit and server-busy class failures only.
type ProtocolError struct {
	Op        string
	Retryable bool
	Err       error
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("acme %s: %v", e.Op, e.Err)
}

func (e *ProtocolError) Unwrap() error {
	return e.Err
}

// Transient reports whether the step may succeed on retry.
func (e *ProtocolError) Transient() bool {
	return e.Retryable
}

// TimeoutError means order validation did not complete inside the
// polling window. It is never retried.
type TimeoutError struct {
	Domain string
	Window time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("order for %q did not reach valid status within %s", e.Domain, e.Window)
}
