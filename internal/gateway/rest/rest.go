// Package rest implements gateway.Client against the JSON control
// plane API. Reads go through a single gateway snapshot endpoint,
// mutations are targeted calls:
//
//	GET    /gateways/{gw}                         configuration snapshot
//	PUT    /gateways/{gw}/certificates/{name}     upload certificate
//	POST   /gateways/{gw}/path-rules              create path rule
//	DELETE /gateways/{gw}/path-rules/{name}       delete path rule
//	PUT    /gateways/{gw}/listeners/{name}/certificate  rebind listener
//	PUT    /responders/{name}/settings            publish responder settings
package rest

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"gitlab.lucky-team.pro/luckyads/go.cert-issuer/internal/certutil"
	"gitlab.lucky-team.pro/luckyads/go.cert-issuer/internal/config"
	"gitlab.lucky-team.pro/luckyads/go.cert-issuer/internal/entities"
	"gitlab.lucky-team.pro/luckyads/go.cert-issuer/internal/gateway"
)

// ChallengePath is the well-known path pattern routed to the responder.
const ChallengePath = "/.well-known/acme-challenge/*"

const maxErrorBody = 4 << 10

// Client talks to the control plane for a single gateway.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	token       string
	gatewayName string
	logger      *zap.Logger
}

// New returns a Client bound to gatewayName.
func New(conf *config.Gateway, logger *zap.Logger, gatewayName string) *Client {
	return &Client{
		httpClient:  &http.Client{Timeout: conf.Timeout},
		baseURL:     strings.TrimRight(conf.Endpoint, "/"),
		token:       conf.Token,
		gatewayName: gatewayName,
		logger:      logger,
	}
}

// NewFactory returns a gateway.Factory producing clients bound to
// individual gateways over the same control plane endpoint.
func NewFactory(conf *config.Gateway, logger *zap.Logger) gateway.Factory {
	return func(gatewayName string) gateway.Client {
		return New(conf, logger, gatewayName)
	}
}

type (
	snapshot struct {
		SSLCertificates []snapshotCertificate `json:"sslCertificates"`
		HTTPListeners   []snapshotListener    `json:"httpListeners"`
		PathRules       []snapshotPathRule    `json:"pathRules"`
	}

	snapshotCertificate struct {
		Name           string `json:"name"`
		PublicCertData string `json:"publicCertData"`
	}

	snapshotListener struct {
		Name               string `json:"name"`
		SSLCertificateName string `json:"sslCertificateName"`
	}

	snapshotPathRule struct {
		Name string `json:"name"`
	}

	uploadCertificateRequest struct {
		Data     string `json:"data"`
		Password string `json:"password"`
	}

	createPathRuleRequest struct {
		Name        string   `json:"name"`
		Hostname    string   `json:"hostname"`
		Paths       []string `json:"paths"`
		BackendFQDN string   `json:"backendFqdn"`
	}

	rebindListenerRequest struct {
		CertificateName string `json:"certificateName"`
	}

	publishSettingsRequest struct {
		Settings map[string]string `json:"settings"`
	}
)

// UploadCertificate deploys a PKCS#12 certificate object onto the gateway.
func (c *Client) UploadCertificate(ctx context.Context, artifact entities.CertificateArtifact) error {
	path := fmt.Sprintf("/gateways/%s/certificates/%s", url.PathEscape(c.gatewayName), url.PathEscape(artifact.Name))
	body := uploadCertificateRequest{
		Data:     base64.StdEncoding.EncodeToString(artifact.Data),
		Password: artifact.Password,
	}

	if err := c.do(ctx, http.MethodPut, path, "upload certificate", body, nil); err != nil {
		return err
	}

	c.logger.Info("uploaded certificate",
		zap.String("gateway", c.gatewayName),
		zap.String("certificate", artifact.Name),
	)
	return nil
}

// CreatePathRoute creates the challenge path rule pointing at backendFQDN.
func (c *Client) CreatePathRoute(ctx context.Context, ruleName, domain, backendFQDN string) error {
	path := fmt.Sprintf("/gateways/%s/path-rules", url.PathEscape(c.gatewayName))
	body := createPathRuleRequest{
		Name:        ruleName,
		Hostname:    domain,
		Paths:       []string{ChallengePath},
		BackendFQDN: backendFQDN,
	}

	return c.do(ctx, http.MethodPost, path, "create path rule", body, nil)
}

// DeletePathRoute removes a path rule; a missing rule is reported as
// gateway.ErrRouteNotFound so cleanup can tolerate double invocation.
func (c *Client) DeletePathRoute(ctx context.Context, ruleName string) error {
	path := fmt.Sprintf("/gateways/%s/path-rules/%s", url.PathEscape(c.gatewayName), url.PathEscape(ruleName))
	return c.do(ctx, http.MethodDelete, path, "delete path rule", nil, nil)
}

// ListListenersByCertificateName scans the gateway snapshot for listeners
// bound to certName.
func (c *Client) ListListenersByCertificateName(ctx context.Context, certName string) ([]string, error) {
	snap, err := c.getSnapshot(ctx)
	if err != nil {
		return nil, err
	}

	var listeners []string
	for _, listener := range snap.HTTPListeners {
		if listener.SSLCertificateName == certName {
			listeners = append(listeners, listener.Name)
		}
	}

	return listeners, nil
}

// RebindListenerCertificate points a listener at a different certificate.
func (c *Client) RebindListenerCertificate(ctx context.Context, listenerName, certName string) error {
	path := fmt.Sprintf("/gateways/%s/listeners/%s/certificate",
		url.PathEscape(c.gatewayName), url.PathEscape(listenerName))

	if err := c.do(ctx, http.MethodPut, path, "rebind listener", rebindListenerRequest{CertificateName: certName}, nil); err != nil {
		return err
	}

	c.logger.Info("rebound listener",
		zap.String("gateway", c.gatewayName),
		zap.String("listener", listenerName),
		zap.String("certificate", certName),
	)
	return nil
}

// PublishChallengeValue writes settings on the named challenge responder app.
func (c *Client) PublishChallengeValue(ctx context.Context, responderName string, settings map[string]string) error {
	path := fmt.Sprintf("/responders/%s/settings", url.PathEscape(responderName))
	return c.do(ctx, http.MethodPut, path, "publish challenge value", publishSettingsRequest{Settings: settings}, nil)
}

// ListCertificates enumerates certificates attached to the gateway with
// their parsed expiry, when the public data is exposed.
func (c *Client) ListCertificates(ctx context.Context) ([]entities.GatewayCertificate, error) {
	snap, err := c.getSnapshot(ctx)
	if err != nil {
		return nil, err
	}

	certs := make([]entities.GatewayCertificate, 0, len(snap.SSLCertificates))
	for _, cert := range snap.SSLCertificates {
		certs = append(certs, entities.GatewayCertificate{
			Name:   cert.Name,
			Expiry: certutil.ExpiryFromBase64DER(cert.PublicCertData),
		})
	}

	return certs, nil
}

// ListChallengeRules returns names of path rules with the temporary
// challenge prefix.
func (c *Client) ListChallengeRules(ctx context.Context) ([]string, error) {
	snap, err := c.getSnapshot(ctx)
	if err != nil {
		return nil, err
	}

	var rules []string
	for _, rule := range snap.PathRules {
		if strings.HasPrefix(rule.Name, entities.RoutePrefix) {
			rules = append(rules, rule.Name)
		}
	}

	return rules, nil
}

func (c *Client) getSnapshot(ctx context.Context) (*snapshot, error) {
	var snap snapshot
	path := "/gateways/" + url.PathEscape(c.gatewayName)
	if err := c.do(ctx, http.MethodGet, path, "fetch gateway snapshot", nil, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (c *Client) do(ctx context.Context, method, path, op string, in, out any) error {
	var body io.Reader
	if in != nil {
		encoded, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode %s request: %w", op, err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", op, err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode == http.StatusNotFound && method == http.MethodDelete {
		return fmt.Errorf("%s %q: %w", op, path, gateway.ErrRouteNotFound)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		message, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &gateway.APIError{
			Op:         op,
			Gateway:    c.gatewayName,
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(message)),
		}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode %s response: %w", op, err)
		}
	}

	return nil
}
