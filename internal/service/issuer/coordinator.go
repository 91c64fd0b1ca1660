package issuer

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"gitlab.lucky-team.pro/luckyads/go.cert-issuer/internal/ca"
	"gitlab.lucky-team.pro/luckyads/go.cert-issuer/internal/certutil"
	"gitlab.lucky-team.pro/luckyads/go.cert-issuer/internal/entities"
	"gitlab.lucky-team.pro/luckyads/go.cert-issuer/internal/retry"
)

const artifactPasswordBytes = 32

// Issue drives one domain through the full issuance saga: order,
// HTTP-01 challenge, temporary route, validation, finalization,
// deployment and listener rebind. Once the temporary route exists its
// removal is guaranteed on every exit path; a removal failure is
// reported as Result.CleanupWarning and never replaces the saga's own
// outcome.
func (s Service) Issue(ctx context.Context, target entities.DomainTarget) (res Result, err error) {
	logger := s.logger.With(
		zap.String("domain", target.Domain),
		zap.String("gateway", target.GatewayName),
	)
	res = Result{
		Target:          target,
		CertificateName: entities.CertName(target.Domain),
	}

	gw := s.gateways(target.GatewayName)
	router := &challengeRouter{
		gw:            gw,
		logger:        logger,
		policy:        s.conf.GatewayRetry,
		responderName: s.conf.ResponderName,
		backendFQDN:   s.conf.ResponderBackend,
		now:           func() int64 { return s.now().Unix() },
	}
	deployer := &certificateDeployer{
		gw:     gw,
		logger: logger,
		policy: s.conf.GatewayRetry,
	}

	order, err := retry.Do(ctx, logger, s.conf.CARetry, "create order", func() (*ca.Order, error) {
		return s.caClient.CreateOrder(ctx, target.Domain)
	})
	if err != nil {
		return res, fmt.Errorf("failed to create order: %w", err)
	}

	challenge, err := retry.Do(ctx, logger, s.conf.CARetry, "obtain challenge", func() (entities.ChallengeContext, error) {
		return s.caClient.HTTP01Challenge(ctx, order, target.Domain)
	})
	if err != nil {
		return res, fmt.Errorf("failed to obtain http-01 challenge: %w", err)
	}

	if err := router.publish(ctx, challenge); err != nil {
		return res, fmt.Errorf("failed to publish challenge value: %w", err)
	}

	route, err := router.establishRoute(ctx, target.Domain)
	if err != nil {
		return res, fmt.Errorf("failed to establish challenge route: %w", err)
	}

	// The route exists on the gateway now. Removal must run no matter
	// how the remaining steps end, on a fresh context so an expired
	// saga context cannot block it.
	defer func() {
		cleanupCtx, cancel := context.WithTimeout(context.Background(), cleanupTimeout)
		defer cancel()

		if cerr := router.removeRoute(cleanupCtx, route); cerr != nil {
			logger.Warn("failed to remove temporary challenge route",
				zap.String("rule", route.RuleName),
				zap.Error(cerr),
			)
			res.CleanupWarning = &CleanupWarning{RuleName: route.RuleName, Err: cerr}
		}
	}()

	err = retry.DoVoid(ctx, logger, s.conf.CARetry, "answer challenge", func() error {
		return s.caClient.AnswerChallenge(ctx, challenge)
	})
	if err != nil {
		return res, fmt.Errorf("failed to answer challenge: %w", err)
	}

	// Validation polling runs its own bounded wait loop; a timeout is
	// final and must not be retried.
	if err := s.caClient.PollUntilValid(ctx, order, s.conf.PollTimeout, s.conf.PollInterval); err != nil {
		return res, fmt.Errorf("failed to validate order: %w", err)
	}

	key, err := certutil.NewPrivateKey()
	if err != nil {
		return res, fmt.Errorf("failed to generate certificate key: %w", err)
	}

	csr, err := certutil.GenerateCSR([]string{target.Domain}, key)
	if err != nil {
		return res, fmt.Errorf("failed to generate csr: %w", err)
	}

	err = retry.DoVoid(ctx, logger, s.conf.CARetry, "finalize order", func() error {
		return s.caClient.FinalizeOrder(ctx, order, csr)
	})
	if err != nil {
		return res, fmt.Errorf("failed to finalize order: %w", err)
	}

	chainPEM, err := s.caClient.DownloadCertificate(order)
	if err != nil {
		return res, fmt.Errorf("failed to download certificate: %w", err)
	}

	password, err := certutil.RandomPassword(artifactPasswordBytes)
	if err != nil {
		return res, fmt.Errorf("failed to generate artifact password: %w", err)
	}

	pfx, err := certutil.PEMToPFX(chainPEM, key, password)
	if err != nil {
		return res, fmt.Errorf("failed to convert certificate: %w", err)
	}

	artifact := entities.CertificateArtifact{
		Name:     res.CertificateName,
		Data:     pfx,
		Password: password,
	}
	if err := deployer.deploy(ctx, artifact); err != nil {
		return res, fmt.Errorf("failed to deploy certificate: %w", err)
	}

	rebound, err := deployer.rebindListeners(ctx, res.CertificateName, res.CertificateName)
	if err != nil {
		return res, fmt.Errorf("failed to rebind listeners: %w", err)
	}
	res.ReboundListeners = rebound

	logger.Info("certificate issued and deployed",
		zap.String("certificate", res.CertificateName),
		zap.Int("listeners_rebound", len(rebound)),
	)
	return res, nil
}
