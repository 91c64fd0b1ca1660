package issuer

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"errors"
	"math/big"
	"net/http"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"gitlab.lucky-team.pro/luckyads/go.cert-issuer/internal/ca"
	"gitlab.lucky-team.pro/luckyads/go.cert-issuer/internal/entities"
	"gitlab.lucky-team.pro/luckyads/go.cert-issuer/internal/gateway"
	"gitlab.lucky-team.pro/luckyads/go.cert-issuer/internal/retry"
)

func testConfig() Config {
	return Config{
		ResponderName:    "acme-responder",
		ResponderBackend: "responder.example.net",
		PollInterval:     time.Millisecond,
		PollTimeout:      50 * time.Millisecond,
		CARetry:          retry.Policy{MaxAttempts: 3, BaseDelay: time.Millisecond},
		GatewayRetry:     retry.Policy{MaxAttempts: 3, BaseDelay: time.Millisecond},
		MaxConcurrency:   3,
	}
}

// chainPEM returns a self-signed certificate chain for test issuance.
func chainPEM(t *testing.T, cn string) []byte {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	template := x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: cn},
		DNSNames:     []string{cn},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(90 * 24 * time.Hour),
	}
	der, err := x509.CreateCertificate(rand.Reader, &template, &template, &key.PublicKey, key)
	require.NoError(t, err)

	return pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
}

func transientAPIError(op string) *gateway.APIError {
	return &gateway.APIError{Op: op, Gateway: "gw-prod", StatusCode: http.StatusServiceUnavailable, Message: "busy"}
}

func expectHappyCA(t *testing.T, caClient *ca.MockClient, domain string, chain []byte) entities.ChallengeContext {
	t.Helper()

	order := &ca.Order{Domain: domain, URI: "https://ca.test/order/1", FinalizeURL: "https://ca.test/finalize/1"}
	challenge := entities.ChallengeContext{
		Token:            "tok-" + domain,
		KeyAuthorization: "tok-" + domain + ".thumbprint-secret",
		ChallengeURL:     "https://ca.test/chal/1",
	}

	caClient.EXPECT().CreateOrder(gomock.Any(), domain).Return(order, nil)
	caClient.EXPECT().HTTP01Challenge(gomock.Any(), order, domain).Return(challenge, nil)
	caClient.EXPECT().AnswerChallenge(gomock.Any(), challenge).Return(nil)
	caClient.EXPECT().PollUntilValid(gomock.Any(), order, gomock.Any(), gomock.Any()).Return(nil)
	caClient.EXPECT().FinalizeOrder(gomock.Any(), order, gomock.Any()).Return(nil)
	caClient.EXPECT().DownloadCertificate(order).Return(chain, nil)

	return challenge
}

func TestIssue(t *testing.T) {
	t.Parallel()

	target := entities.DomainTarget{GatewayName: "gw-prod", Domain: "api.example.com"}
	routePattern := regexp.MustCompile(`^acme-challenge-api-example-com-\d+$`)

	t.Run("check missing cert scenario completes end to end", func(t *testing.T) {
		t.Parallel()

		ctrl := gomock.NewController(t)
		caClient := ca.NewMockClient(ctrl)
		gw := gateway.NewMockClient(ctrl)
		chain := chainPEM(t, target.Domain)

		challenge := expectHappyCA(t, caClient, target.Domain, chain)

		var ruleName string
		gw.EXPECT().PublishChallengeValue(gomock.Any(), "acme-responder", map[string]string{
			"ACME_CHALLENGE_RESPONSE": challenge.KeyAuthorization,
		}).Return(nil)
		gw.EXPECT().CreatePathRoute(gomock.Any(), gomock.Any(), target.Domain, "responder.example.net").
			DoAndReturn(func(_ context.Context, rule, _, _ string) error {
				ruleName = rule
				return nil
			})
		var uploaded entities.CertificateArtifact
		gw.EXPECT().UploadCertificate(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, artifact entities.CertificateArtifact) error {
				uploaded = artifact
				return nil
			})
		gw.EXPECT().ListListenersByCertificateName(gomock.Any(), "api-example-com-cert").Return(nil, nil)
		gw.EXPECT().DeletePathRoute(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, rule string) error {
				require.Equal(t, ruleName, rule)
				return nil
			}).Times(1)

		service := New(caClient, func(string) gateway.Client { return gw }, zap.NewNop(), testConfig())
		res, err := service.Issue(context.Background(), target)

		require.NoError(t, err)
		require.Nil(t, res.CleanupWarning)
		require.Equal(t, "api-example-com-cert", res.CertificateName)
		require.Empty(t, res.ReboundListeners)
		require.Regexp(t, routePattern, ruleName)
		require.Equal(t, "api-example-com-cert", uploaded.Name)
		require.NotEmpty(t, uploaded.Data)
		require.NotEmpty(t, uploaded.Password)
	})

	t.Run("check existing listeners are rebound", func(t *testing.T) {
		t.Parallel()

		ctrl := gomock.NewController(t)
		caClient := ca.NewMockClient(ctrl)
		gw := gateway.NewMockClient(ctrl)

		challenge := expectHappyCA(t, caClient, target.Domain, chainPEM(t, target.Domain))

		gw.EXPECT().PublishChallengeValue(gomock.Any(), "acme-responder", map[string]string{
			"ACME_CHALLENGE_RESPONSE": challenge.KeyAuthorization,
		}).Return(nil)
		gw.EXPECT().CreatePathRoute(gomock.Any(), gomock.Any(), target.Domain, "responder.example.net").Return(nil)
		gw.EXPECT().UploadCertificate(gomock.Any(), gomock.Any()).Return(nil)
		gw.EXPECT().ListListenersByCertificateName(gomock.Any(), "api-example-com-cert").
			Return([]string{"listener-a", "listener-b"}, nil)
		gw.EXPECT().RebindListenerCertificate(gomock.Any(), "listener-a", "api-example-com-cert").Return(nil)
		gw.EXPECT().RebindListenerCertificate(gomock.Any(), "listener-b", "api-example-com-cert").Return(nil)
		gw.EXPECT().DeletePathRoute(gomock.Any(), gomock.Any()).Return(nil).Times(1)

		service := New(caClient, func(string) gateway.Client { return gw }, zap.NewNop(), testConfig())
		res, err := service.Issue(context.Background(), target)

		require.NoError(t, err)
		require.Equal(t, []string{"listener-a", "listener-b"}, res.ReboundListeners)
	})

	t.Run("check route is cleaned up when validation times out", func(t *testing.T) {
		t.Parallel()

		ctrl := gomock.NewController(t)
		caClient := ca.NewMockClient(ctrl)
		gw := gateway.NewMockClient(ctrl)

		order := &ca.Order{Domain: target.Domain}
		challenge := entities.ChallengeContext{Token: "tok", KeyAuthorization: "tok.secret"}
		caClient.EXPECT().CreateOrder(gomock.Any(), target.Domain).Return(order, nil)
		caClient.EXPECT().HTTP01Challenge(gomock.Any(), order, target.Domain).Return(challenge, nil)
		caClient.EXPECT().AnswerChallenge(gomock.Any(), challenge).Return(nil)
		caClient.EXPECT().PollUntilValid(gomock.Any(), order, gomock.Any(), gomock.Any()).
			Return(&ca.TimeoutError{Domain: target.Domain, Window: time.Minute})

		gw.EXPECT().PublishChallengeValue(gomock.Any(), "acme-responder", gomock.Any()).Return(nil)
		gw.EXPECT().CreatePathRoute(gomock.Any(), gomock.Any(), target.Domain, "responder.example.net").Return(nil)
		gw.EXPECT().DeletePathRoute(gomock.Any(), gomock.Any()).Return(nil).Times(1)

		service := New(caClient, func(string) gateway.Client { return gw }, zap.NewNop(), testConfig())
		_, err := service.Issue(context.Background(), target)

		var timeoutErr *ca.TimeoutError
		require.ErrorAs(t, err, &timeoutErr)
		require.Equal(t, target.Domain, timeoutErr.Domain)
	})

	t.Run("check no cleanup before route establishment", func(t *testing.T) {
		t.Parallel()

		ctrl := gomock.NewController(t)
		caClient := ca.NewMockClient(ctrl)
		gw := gateway.NewMockClient(ctrl)

		cause := &ca.ProtocolError{Op: "create order", Err: errors.New("domain rejected")}
		caClient.EXPECT().CreateOrder(gomock.Any(), target.Domain).Return(nil, cause).Times(1)

		service := New(caClient, func(string) gateway.Client { return gw }, zap.NewNop(), testConfig())
		_, err := service.Issue(context.Background(), target)

		require.ErrorIs(t, err, cause)
	})

	t.Run("check transient publish failure exhausts three attempts", func(t *testing.T) {
		t.Parallel()

		ctrl := gomock.NewController(t)
		caClient := ca.NewMockClient(ctrl)
		gw := gateway.NewMockClient(ctrl)

		order := &ca.Order{Domain: target.Domain}
		challenge := entities.ChallengeContext{Token: "tok", KeyAuthorization: "tok.secret"}
		caClient.EXPECT().CreateOrder(gomock.Any(), target.Domain).Return(order, nil)
		caClient.EXPECT().HTTP01Challenge(gomock.Any(), order, target.Domain).Return(challenge, nil)

		gw.EXPECT().PublishChallengeValue(gomock.Any(), "acme-responder", gomock.Any()).
			Return(transientAPIError("publish challenge value")).Times(3)

		service := New(caClient, func(string) gateway.Client { return gw }, zap.NewNop(), testConfig())
		_, err := service.Issue(context.Background(), target)

		var exhausted *retry.ExhaustedError
		require.ErrorAs(t, err, &exhausted)
		require.Equal(t, 3, exhausted.Attempts)

		var apiErr *gateway.APIError
		require.ErrorAs(t, err, &apiErr)
	})

	t.Run("check cleanup-only failure is a warning, not an error", func(t *testing.T) {
		t.Parallel()

		ctrl := gomock.NewController(t)
		caClient := ca.NewMockClient(ctrl)
		gw := gateway.NewMockClient(ctrl)

		challenge := expectHappyCA(t, caClient, target.Domain, chainPEM(t, target.Domain))

		gw.EXPECT().PublishChallengeValue(gomock.Any(), "acme-responder", map[string]string{
			"ACME_CHALLENGE_RESPONSE": challenge.KeyAuthorization,
		}).Return(nil)
		gw.EXPECT().CreatePathRoute(gomock.Any(), gomock.Any(), target.Domain, "responder.example.net").Return(nil)
		gw.EXPECT().UploadCertificate(gomock.Any(), gomock.Any()).Return(nil)
		gw.EXPECT().ListListenersByCertificateName(gomock.Any(), "api-example-com-cert").Return(nil, nil)
		gw.EXPECT().DeletePathRoute(gomock.Any(), gomock.Any()).
			Return(&gateway.APIError{Op: "delete path rule", StatusCode: http.StatusConflict}).Times(1)

		service := New(caClient, func(string) gateway.Client { return gw }, zap.NewNop(), testConfig())
		res, err := service.Issue(context.Background(), target)

		require.NoError(t, err)

		var warning *CleanupWarning
		require.ErrorAs(t, res.CleanupWarning, &warning)
	})

	t.Run("check already absent route is clean success", func(t *testing.T) {
		t.Parallel()

		ctrl := gomock.NewController(t)
		caClient := ca.NewMockClient(ctrl)
		gw := gateway.NewMockClient(ctrl)

		challenge := expectHappyCA(t, caClient, target.Domain, chainPEM(t, target.Domain))

		gw.EXPECT().PublishChallengeValue(gomock.Any(), "acme-responder", map[string]string{
			"ACME_CHALLENGE_RESPONSE": challenge.KeyAuthorization,
		}).Return(nil)
		gw.EXPECT().CreatePathRoute(gomock.Any(), gomock.Any(), target.Domain, "responder.example.net").Return(nil)
		gw.EXPECT().UploadCertificate(gomock.Any(), gomock.Any()).Return(nil)
		gw.EXPECT().ListListenersByCertificateName(gomock.Any(), "api-example-com-cert").Return(nil, nil)
		gw.EXPECT().DeletePathRoute(gomock.Any(), gomock.Any()).
			Return(gateway.ErrRouteNotFound).Times(1)

		service := New(caClient, func(string) gateway.Client { return gw }, zap.NewNop(), testConfig())
		res, err := service.Issue(context.Background(), target)

		require.NoError(t, err)
		require.Nil(t, res.CleanupWarning)
	})
}

func TestIssueSecrecy(t *testing.T) {
	t.Parallel()

	target := entities.DomainTarget{GatewayName: "gw-prod", Domain: "www.example.com"}

	core, logs := observer.New(zap.DebugLevel)
	logger := zap.New(core)

	ctrl := gomock.NewController(t)
	caClient := ca.NewMockClient(ctrl)
	gw := gateway.NewMockClient(ctrl)

	challenge := expectHappyCA(t, caClient, target.Domain, chainPEM(t, target.Domain))

	var uploaded entities.CertificateArtifact
	gw.EXPECT().PublishChallengeValue(gomock.Any(), "acme-responder", gomock.Any()).Return(nil)
	gw.EXPECT().CreatePathRoute(gomock.Any(), gomock.Any(), target.Domain, "responder.example.net").Return(nil)
	gw.EXPECT().UploadCertificate(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, artifact entities.CertificateArtifact) error {
			uploaded = artifact
			return nil
		})
	gw.EXPECT().ListListenersByCertificateName(gomock.Any(), "www-example-com-cert").Return(nil, nil)
	gw.EXPECT().DeletePathRoute(gomock.Any(), gomock.Any()).Return(nil)

	service := New(caClient, func(string) gateway.Client { return gw }, logger, testConfig())
	_, err := service.Issue(context.Background(), target)
	require.NoError(t, err)
	require.NotEmpty(t, uploaded.Password)

	for _, entry := range logs.All() {
		line := entry.Message
		for _, field := range entry.Context {
			line += " " + field.Key + "=" + field.String
		}
		require.False(t, strings.Contains(line, challenge.KeyAuthorization),
			"key authorization leaked into log line %q", line)
		require.False(t, strings.Contains(line, uploaded.Password),
			"artifact password leaked into log line %q", line)
	}
}
