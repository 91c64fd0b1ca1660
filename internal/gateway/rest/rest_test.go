package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"gitlab.lucky-team.pro/luckyads/go.cert-issuer/internal/config"
	"gitlab.lucky-team.pro/luckyads/go.cert-issuer/internal/entities"
	"gitlab.lucky-team.pro/luckyads/go.cert-issuer/internal/gateway"
	"gitlab.lucky-team.pro/luckyads/go.cert-issuer/internal/retry"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	conf := &config.Gateway{Endpoint: srv.URL, Token: "test-token", Timeout: 5 * time.Second}
	return New(conf, zap.NewNop(), "gw-prod")
}

func TestClient(t *testing.T) {
	t.Parallel()

	t.Run("check listeners are filtered by certificate name", func(t *testing.T) {
		t.Parallel()

		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodGet, r.Method)
			require.Equal(t, "/gateways/gw-prod", r.URL.Path)
			require.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

			json.NewEncoder(w).Encode(map[string]any{ //nolint:errcheck
				"httpListeners": []map[string]string{
					{"name": "listener-a", "sslCertificateName": "www-example-com-cert"},
					{"name": "listener-b", "sslCertificateName": "other-cert"},
					{"name": "listener-c", "sslCertificateName": "www-example-com-cert"},
				},
			})
		}))

		listeners, err := client.ListListenersByCertificateName(context.Background(), "www-example-com-cert")
		require.NoError(t, err)
		require.Equal(t, []string{"listener-a", "listener-c"}, listeners)
	})

	t.Run("check challenge rules are matched by prefix", func(t *testing.T) {
		t.Parallel()

		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{ //nolint:errcheck
				"pathRules": []map[string]string{
					{"name": "acme-challenge-www-example-com-1709030400"},
					{"name": "default-rule"},
					{"name": "acme-challenge-api-example-com-1709031111"},
				},
			})
		}))

		rules, err := client.ListChallengeRules(context.Background())
		require.NoError(t, err)
		require.Equal(t, []string{
			"acme-challenge-www-example-com-1709030400",
			"acme-challenge-api-example-com-1709031111",
		}, rules)
	})

	t.Run("check delete of absent rule maps to ErrRouteNotFound", func(t *testing.T) {
		t.Parallel()

		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))

		err := client.DeletePathRoute(context.Background(), "acme-challenge-gone-1")
		require.ErrorIs(t, err, gateway.ErrRouteNotFound)
	})

	t.Run("check server error is transient api error", func(t *testing.T) {
		t.Parallel()

		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "backend busy", http.StatusServiceUnavailable)
		}))

		err := client.CreatePathRoute(context.Background(), "acme-challenge-x-1", "x.example.com", "responder.example.net")

		var apiErr *gateway.APIError
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, http.StatusServiceUnavailable, apiErr.StatusCode)
		require.True(t, retry.IsTransient(err))
	})

	t.Run("check client error is not transient", func(t *testing.T) {
		t.Parallel()

		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "bad rule", http.StatusBadRequest)
		}))

		err := client.CreatePathRoute(context.Background(), "bad", "x.example.com", "responder.example.net")
		require.Error(t, err)
		require.False(t, retry.IsTransient(err))
	})

	t.Run("check certificate upload request layout", func(t *testing.T) {
		t.Parallel()

		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPut, r.Method)
			require.Equal(t, "/gateways/gw-prod/certificates/api-example-com-cert", r.URL.Path)

			var body struct {
				Data     string `json:"data"`
				Password string `json:"password"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			require.NotEmpty(t, body.Data)
			require.Equal(t, "s3cret", body.Password)
		}))

		err := client.UploadCertificate(context.Background(), entities.CertificateArtifact{
			Name:     "api-example-com-cert",
			Data:     []byte{0x30, 0x82},
			Password: "s3cret",
		})
		require.NoError(t, err)
	})
}
