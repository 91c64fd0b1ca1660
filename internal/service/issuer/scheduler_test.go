package issuer

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"gitlab.lucky-team.pro/luckyads/go.cert-issuer/internal/ca"
	"gitlab.lucky-team.pro/luckyads/go.cert-issuer/internal/entities"
	"gitlab.lucky-team.pro/luckyads/go.cert-issuer/internal/gateway"
)

// fakeCA is a scriptable in-memory certificate authority. Per-domain
// poll outcomes let batch tests fail one saga without touching its
// siblings.
type fakeCA struct {
	chain    []byte
	pollWork time.Duration
	failPoll map[string]error
}

func (f *fakeCA) CreateOrder(_ context.Context, domain string) (*ca.Order, error) {
	return &ca.Order{Domain: domain, URI: "https://ca.test/order/" + domain}, nil
}

func (f *fakeCA) HTTP01Challenge(_ context.Context, _ *ca.Order, domain string) (entities.ChallengeContext, error) {
	return entities.ChallengeContext{
		Token:            "tok-" + domain,
		KeyAuthorization: "tok-" + domain + ".thumbprint",
	}, nil
}

func (f *fakeCA) AnswerChallenge(context.Context, entities.ChallengeContext) error {
	return nil
}

func (f *fakeCA) PollUntilValid(_ context.Context, order *ca.Order, _, _ time.Duration) error {
	if f.pollWork > 0 {
		time.Sleep(f.pollWork)
	}
	if err, ok := f.failPoll[order.Domain]; ok {
		return err
	}
	return nil
}

func (f *fakeCA) FinalizeOrder(_ context.Context, order *ca.Order, _ []byte) error {
	order.CertChainPEM = f.chain
	return nil
}

func (f *fakeCA) DownloadCertificate(order *ca.Order) ([]byte, error) {
	return order.CertChainPEM, nil
}

// fakeGateway records control plane calls under a lock so concurrent
// sagas can be inspected afterwards.
type fakeGateway struct {
	mu       sync.Mutex
	created  []string
	deleted  []string
	uploaded []entities.CertificateArtifact
}

func (f *fakeGateway) UploadCertificate(_ context.Context, artifact entities.CertificateArtifact) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploaded = append(f.uploaded, artifact)
	return nil
}

func (f *fakeGateway) CreatePathRoute(_ context.Context, ruleName, _, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, ruleName)
	return nil
}

func (f *fakeGateway) DeletePathRoute(_ context.Context, ruleName string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, ruleName)
	return nil
}

func (f *fakeGateway) ListListenersByCertificateName(context.Context, string) ([]string, error) {
	return nil, nil
}

func (f *fakeGateway) RebindListenerCertificate(context.Context, string, string) error {
	return nil
}

func (f *fakeGateway) PublishChallengeValue(context.Context, string, map[string]string) error {
	return nil
}

func (f *fakeGateway) ListCertificates(context.Context) ([]entities.GatewayCertificate, error) {
	return nil, nil
}

func (f *fakeGateway) ListChallengeRules(context.Context) ([]string, error) {
	return nil, nil
}

func batchTargets(n int) []entities.DomainTarget {
	targets := make([]entities.DomainTarget, 0, n)
	for i := 0; i < n; i++ {
		targets = append(targets, entities.DomainTarget{
			GatewayName: "gw-prod",
			Domain:      fmt.Sprintf("site-%d.example.com", i),
		})
	}
	return targets
}

func TestRun(t *testing.T) {
	t.Parallel()

	t.Run("check one failing domain never affects siblings", func(t *testing.T) {
		t.Parallel()

		targets := batchTargets(5)
		failing := targets[1]

		caClient := &fakeCA{
			chain: chainPEM(t, "batch.example.com"),
			failPoll: map[string]error{
				failing.Domain: &ca.TimeoutError{Domain: failing.Domain, Window: time.Minute},
			},
		}
		gw := &fakeGateway{}

		service := New(caClient, func(string) gateway.Client { return gw }, zap.NewNop(), testConfig())
		result := service.Run(context.Background(), targets)

		require.Equal(t, 5, result.Total)
		require.Equal(t, 4, result.Succeeded)
		require.Equal(t, 1, result.Failed)
		require.Len(t, result.Errors, 1)

		var timeoutErr *ca.TimeoutError
		require.ErrorAs(t, result.Errors[failing], &timeoutErr)
		require.Equal(t, failing.Domain, timeoutErr.Domain)

		// Every established route was removed, including the failed saga's.
		require.ElementsMatch(t, gw.created, gw.deleted)
		require.Len(t, gw.uploaded, 4)
	})

	t.Run("check concurrency never exceeds the configured ceiling", func(t *testing.T) {
		t.Parallel()

		var active, peak int32
		conf := testConfig()
		conf.MaxConcurrency = 3
		conf.Hooks = Hooks{
			SagaStarted: func(entities.DomainTarget) {
				cur := atomic.AddInt32(&active, 1)
				for {
					known := atomic.LoadInt32(&peak)
					if cur <= known || atomic.CompareAndSwapInt32(&peak, known, cur) {
						break
					}
				}
			},
			SagaFinished: func(entities.DomainTarget) {
				atomic.AddInt32(&active, -1)
			},
		}

		caClient := &fakeCA{chain: chainPEM(t, "batch.example.com"), pollWork: 20 * time.Millisecond}
		gw := &fakeGateway{}

		service := New(caClient, func(string) gateway.Client { return gw }, zap.NewNop(), conf)
		result := service.Run(context.Background(), batchTargets(10))

		require.Equal(t, 10, result.Succeeded)
		require.LessOrEqual(t, atomic.LoadInt32(&peak), int32(3))
		require.Zero(t, atomic.LoadInt32(&active))
	})

	t.Run("check empty batch is a zero result", func(t *testing.T) {
		t.Parallel()

		service := New(&fakeCA{}, func(string) gateway.Client { return &fakeGateway{} }, zap.NewNop(), testConfig())
		result := service.Run(context.Background(), nil)

		require.Zero(t, result.Total)
		require.Zero(t, result.Succeeded)
		require.Zero(t, result.Failed)
		require.Empty(t, result.Errors)
	})

	t.Run("check dry run plans without touching collaborators", func(t *testing.T) {
		t.Parallel()

		conf := testConfig()
		conf.DryRun = true

		gw := &fakeGateway{}
		service := New(&fakeCA{}, func(string) gateway.Client { return gw }, zap.NewNop(), conf)
		result := service.Run(context.Background(), batchTargets(4))

		require.Equal(t, 4, result.Total)
		require.Equal(t, 4, result.Succeeded)
		require.Empty(t, gw.created)
		require.Empty(t, gw.uploaded)
	})

	t.Run("check counters always reconcile with total", func(t *testing.T) {
		t.Parallel()

		targets := batchTargets(7)
		caClient := &fakeCA{
			chain: chainPEM(t, "batch.example.com"),
			failPoll: map[string]error{
				targets[0].Domain: &ca.ProtocolError{Op: "poll", Err: fmt.Errorf("order invalid")},
				targets[4].Domain: &ca.TimeoutError{Domain: targets[4].Domain, Window: time.Minute},
			},
		}

		service := New(caClient, func(string) gateway.Client { return &fakeGateway{} }, zap.NewNop(), testConfig())
		result := service.Run(context.Background(), targets)

		require.Equal(t, result.Total, result.Succeeded+result.Failed)
		require.Equal(t, result.Failed, len(result.Errors))
	})
}
