// Package acmev2 implements ca.Client on top of the RFC 8555 protocol
// client from golang.org/x/crypto/acme.
package acmev2

import (
	"bytes"
	"context"
	"crypto"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/acme"

	"gitlab.lucky-team.pro/luckyads/go.cert-issuer/internal/ca"
	"gitlab.lucky-team.pro/luckyads/go.cert-issuer/internal/config"
	"gitlab.lucky-team.pro/luckyads/go.cert-issuer/internal/entities"
)

const challengeTypeHTTP01 = "http-01"

var pemCertPrefix = []byte("-----BEGIN CERTIFICATE-----")

// Client is an RFC 8555 implementation of ca.Client.
type Client struct {
	inner  *acme.Client
	logger *zap.Logger
}

// New loads the PEM account key from conf.AccountKeyPath and returns a
// Client bound to conf.DirectoryURL. Account registration is a one-time
// external step; a missing key file is an error here.
func New(conf *config.ACME, logger *zap.Logger) (*Client, error) {
	key, err := loadAccountKey(conf.AccountKeyPath)
	if err != nil {
		return nil, err
	}

	return &Client{
		inner: &acme.Client{
			Key:          key,
			DirectoryURL: conf.DirectoryURL,
		},
		logger: logger,
	}, nil
}

// CreateOrder opens a new certificate order for domain.
func (c *Client) CreateOrder(ctx context.Context, domain string) (*ca.Order, error) {
	order, err := c.inner.AuthorizeOrder(ctx, acme.DomainIDs(domain))
	if err != nil {
		return nil, newProtocolError("create order", err)
	}

	c.logger.Debug("created acme order", zap.String("domain", domain), zap.String("order", order.URI))

	return &ca.Order{
		Domain:      domain,
		URI:         order.URI,
		FinalizeURL: order.FinalizeURL,
		AuthzURLs:   order.AuthzURLs,
	}, nil
}

// HTTP01Challenge extracts the HTTP-01 challenge material for domain.
func (c *Client) HTTP01Challenge(ctx context.Context, order *ca.Order, domain string) (entities.ChallengeContext, error) {
	for _, authzURL := range order.AuthzURLs {
		authz, err := c.inner.GetAuthorization(ctx, authzURL)
		if err != nil {
			return entities.ChallengeContext{}, newProtocolError("fetch authorization", err)
		}
		if authz.Identifier.Value != domain {
			continue
		}

		for _, challenge := range authz.Challenges {
			if challenge.Type != challengeTypeHTTP01 {
				continue
			}

			keyAuth, err := c.inner.HTTP01ChallengeResponse(challenge.Token)
			if err != nil {
				return entities.ChallengeContext{}, newProtocolError("compute key authorization", err)
			}

			return entities.ChallengeContext{
				Token:            challenge.Token,
				KeyAuthorization: keyAuth,
				ChallengeURL:     challenge.URI,
			}, nil
		}
	}

	return entities.ChallengeContext{}, &ca.ProtocolError{
		Op:  "find http-01 challenge",
		Err: fmt.Errorf("domain %q: %w", domain, ca.ErrNoHTTP01Challenge),
	}
}

// AnswerChallenge tells the CA the challenge response is deployed.
func (c *Client) AnswerChallenge(ctx context.Context, challenge entities.ChallengeContext) error {
	_, err := c.inner.Accept(ctx, &acme.Challenge{
		Type:  challengeTypeHTTP01,
		URI:   challenge.ChallengeURL,
		Token: challenge.Token,
	})
	if err != nil {
		return newProtocolError("answer challenge", err)
	}
	return nil
}

// PollUntilValid polls the order at a fixed interval until it validates,
// the window elapses, or the CA reports the order invalid. Polling runs
// its own bounded loop and is never routed through the retry layer.
func (c *Client) PollUntilValid(ctx context.Context, order *ca.Order, timeout, interval time.Duration) error {
	deadline := time.Now().Add(timeout)

	for {
		current, err := c.inner.GetOrder(ctx, order.URI)
		if err != nil {
			return newProtocolError("poll order", err)
		}

		switch current.Status {
		case acme.StatusValid, acme.StatusReady:
			c.logger.Debug("acme order validated", zap.String("domain", order.Domain))
			return nil
		case acme.StatusInvalid:
			return &ca.ProtocolError{
				Op:  "poll order",
				Err: fmt.Errorf("order %q moved to invalid status", order.URI),
			}
		}

		if time.Now().Add(interval).After(deadline) {
			return &ca.TimeoutError{Domain: order.Domain, Window: timeout}
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("poll order: %w", ctx.Err())
		case <-time.After(interval):
		}
	}
}

// FinalizeOrder submits the CSR and stores the signed PEM chain on the order.
func (c *Client) FinalizeOrder(ctx context.Context, order *ca.Order, csrDER []byte) error {
	chain, _, err := c.inner.CreateOrderCert(ctx, order.FinalizeURL, csrDER, true)
	if err != nil {
		return newProtocolError("finalize order", err)
	}

	var buf bytes.Buffer
	for _, der := range chain {
		if err := pem.Encode(&buf, &pem.Block{Type: "CERTIFICATE", Bytes: der}); err != nil {
			return fmt.Errorf("failed to encode certificate chain: %w", err)
		}
	}

	order.CertChainPEM = buf.Bytes()
	c.logger.Debug("acme order finalized",
		zap.String("domain", order.Domain),
		zap.Int("chain_bytes", buf.Len()),
	)
	return nil
}

// DownloadCertificate returns the PEM chain of a finalized order.
func (c *Client) DownloadCertificate(order *ca.Order) ([]byte, error) {
	if len(order.CertChainPEM) == 0 {
		return nil, ca.ErrCertificateUnavailable
	}
	if !bytes.HasPrefix(bytes.TrimSpace(order.CertChainPEM), pemCertPrefix) {
		return nil, fmt.Errorf("downloaded certificate does not look like PEM")
	}
	return order.CertChainPEM, nil
}

// newProtocolError wraps err and classifies rate-limit, server-busy
// and network-timeout failures as retryable.
func newProtocolError(op string, err error) *ca.ProtocolError {
	return &ca.ProtocolError{Op: op, Retryable: retryable(err), Err: err}
}

func retryable(err error) bool {
	var acmeErr *acme.Error
	if errors.As(err, &acmeErr) {
		return acmeErr.StatusCode == http.StatusTooManyRequests || acmeErr.StatusCode >= http.StatusInternalServerError
	}

	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func loadAccountKey(path string) (crypto.Signer, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read account key: %w", err)
	}

	block, _ := pem.Decode(raw)
	if block == nil {
		return nil, fmt.Errorf("account key at %q is not PEM", path)
	}

	if key, err := x509.ParsePKCS8PrivateKey(block.Bytes); err == nil {
		signer, ok := key.(crypto.Signer)
		if !ok {
			return nil, fmt.Errorf("account key at %q does not support signing", path)
		}
		return signer, nil
	}
	if key, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		return key, nil
	}
	if key, err := x509.ParseECPrivateKey(block.Bytes); err == nil {
		return key, nil
	}

	return nil, fmt.Errorf("account key at %q is not a supported private key", path)
}
