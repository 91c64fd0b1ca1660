package issuer

import (
	"context"

	"go.uber.org/zap"

	"gitlab.lucky-team.pro/luckyads/go.cert-issuer/internal/entities"
	"gitlab.lucky-team.pro/luckyads/go.cert-issuer/internal/gateway"
	"gitlab.lucky-team.pro/luckyads/go.cert-issuer/internal/retry"
)

// certificateDeployer gets a signed certificate bound onto gateway
// listeners.
type certificateDeployer struct {
	gw     gateway.Client
	logger *zap.Logger
	policy retry.Policy
}

// deploy uploads the certificate object to the gateway.
func (d *certificateDeployer) deploy(ctx context.Context, artifact entities.CertificateArtifact) error {
	return retry.DoVoid(ctx, d.logger, d.policy, "upload certificate", func() error {
		return d.gw.UploadCertificate(ctx, artifact)
	})
}

// rebindListeners repoints every listener bound to oldCert at newCert
// and returns the listeners actually changed. No bindings is a valid
// first-issuance state, not an error.
func (d *certificateDeployer) rebindListeners(ctx context.Context, oldCert, newCert string) ([]string, error) {
	listeners, err := retry.Do(ctx, d.logger, d.policy, "list listeners", func() ([]string, error) {
		return d.gw.ListListenersByCertificateName(ctx, oldCert)
	})
	if err != nil {
		return nil, err
	}

	var rebound []string
	for _, listener := range listeners {
		listener := listener
		err := retry.DoVoid(ctx, d.logger, d.policy, "rebind listener", func() error {
			return d.gw.RebindListenerCertificate(ctx, listener, newCert)
		})
		if err != nil {
			return rebound, err
		}
		rebound = append(rebound, listener)
	}

	return rebound, nil
}
