package issuer

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"gitlab.lucky-team.pro/luckyads/go.cert-issuer/internal/entities"
	"gitlab.lucky-team.pro/luckyads/go.cert-issuer/internal/gateway"
	"gitlab.lucky-team.pro/luckyads/go.cert-issuer/internal/retry"
)

// challengeSettingKey is the responder app setting the CA's outbound
// HTTP check reads the key authorization from.
const challengeSettingKey = "ACME_CHALLENGE_RESPONSE"

// challengeRouter owns challenge-value publication and the
// temporary-route lifecycle for one gateway.
type challengeRouter struct {
	gw            gateway.Client
	logger        *zap.Logger
	policy        retry.Policy
	responderName string
	backendFQDN   string
	now           func() int64
}

// publish writes the key authorization to the challenge responder.
// The value itself is never logged.
func (r *challengeRouter) publish(ctx context.Context, challenge entities.ChallengeContext) error {
	settings := map[string]string{challengeSettingKey: challenge.KeyAuthorization}
	return retry.DoVoid(ctx, r.logger, r.policy, "publish challenge value", func() error {
		return r.gw.PublishChallengeValue(ctx, r.responderName, settings)
	})
}

// establishRoute creates the temporary challenge path rule and returns
// the handle needed for removal. The rule name embeds the creation
// timestamp so concurrent runs for the same domain never collide.
func (r *challengeRouter) establishRoute(ctx context.Context, domain string) (entities.TemporaryRoute, error) {
	route := entities.TemporaryRoute{
		RuleName:    entities.RouteName(domain, r.now()),
		Domain:      domain,
		BackendFQDN: r.backendFQDN,
	}

	err := retry.DoVoid(ctx, r.logger, r.policy, "create path rule", func() error {
		return r.gw.CreatePathRoute(ctx, route.RuleName, domain, r.backendFQDN)
	})
	if err != nil {
		return entities.TemporaryRoute{}, err
	}

	route.Established = true
	r.logger.Info("established temporary challenge route",
		zap.String("domain", domain),
		zap.String("rule", route.RuleName),
	)
	return route, nil
}

// removeRoute deletes the temporary rule. An already absent rule is
// success, so double invocation during failure recovery is harmless.
func (r *challengeRouter) removeRoute(ctx context.Context, route entities.TemporaryRoute) error {
	if !route.Established {
		return nil
	}

	err := r.gw.DeletePathRoute(ctx, route.RuleName)
	if err != nil && !errors.Is(err, gateway.ErrRouteNotFound) {
		return err
	}

	r.logger.Info("removed temporary challenge route",
		zap.String("domain", route.Domain),
		zap.String("rule", route.RuleName),
	)
	return nil
}
