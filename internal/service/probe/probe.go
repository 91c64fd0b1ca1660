// Package probe checks which certificate the balancers actually serve
// for each target domain and records the observation.
package probe

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/geozo-tech/go-curl"
	"go.uber.org/zap"

	"gitlab.lucky-team.pro/luckyads/go.cert-issuer/internal/entities"
	"gitlab.lucky-team.pro/luckyads/go.cert-issuer/internal/storage"
)

const parseDateFormat = "Jan 2 15:04:05 2006 MST"

const connectTimeoutSeconds = 5

var (
	errMissingExpireDate = fmt.Errorf("expire date is not found in cert info")
	errNoCertInfo        = fmt.Errorf("no cert info")
)

// Service is designed to probe served certificates for targets.
type Service struct {
	storage storage.Common
	logger  *zap.Logger
}

// New returns new Service ready to use.
func New(storage storage.Common, logger *zap.Logger) Service {
	return Service{
		storage: storage,
		logger:  logger,
	}
}

// RefreshAll probes every target over all of its balancer IPs and
// stores the merged observation. An unreachable domain is logged and
// skipped; a storage failure aborts the run.
func (s Service) RefreshAll(ctx context.Context) error {
	targets, err := s.storage.GetTargets(ctx)
	if err != nil {
		return fmt.Errorf("failed to get targets list: %w", err)
	}

	for _, target := range targets {
		ipList, err := net.LookupIP(target.Domain)
		if err != nil {
			s.logger.Error(
				"failed to get domain's balancers list",
				zap.String("domain", target.Domain),
				zap.Error(err),
			)
			continue
		}

		info, ok := s.observe(target.Domain, ipList)
		if !ok {
			continue
		}

		if err := s.storage.UpdateCertStatus(ctx, target, info); err != nil {
			return fmt.Errorf("failed to update %q cert status: %w", target.Domain, err)
		}
		s.logger.Info("updated served certificate info",
			zap.String("domain", target.Domain),
			zap.Bool("valid", info.Valid),
		)
	}

	return nil
}

// observe merges per-balancer observations for one domain: the domain
// is valid only when every reachable balancer serves a valid
// certificate, and the earliest expiry wins.
func (s Service) observe(domain string, ipList []net.IP) (entities.CertInfo, bool) {
	merged := entities.CertInfo{Valid: true}
	observed := false

	for _, ip := range ipList {
		sIP := ip.String()
		info, err := getServedCertInfo(sIP, domain)
		if err != nil {
			s.logger.Error("failed to find certificate info",
				zap.String("domain", domain),
				zap.String("ip", sIP),
				zap.Error(err),
			)
			continue
		}

		observed = true
		if !info.Valid {
			merged.Valid = false
		}
		if merged.ExpiredAt == nil ||
			(info.ExpiredAt != nil && info.ExpiredAt.Before(*merged.ExpiredAt)) {
			merged.ExpiredAt = info.ExpiredAt
		}
	}

	return merged, observed
}

// getServedCertInfo performs a TLS handshake against one balancer IP
// using the domain for SNI and reads the certificate info back.
func getServedCertInfo(IP string, domain string) (entities.CertInfo, error) { //nolint:gocritic
	easy := curl.EasyInit()
	defer easy.Cleanup()

	if err := easy.Setopt(curl.OPT_URL, "https://"+domain); err != nil {
		return entities.CertInfo{}, fmt.Errorf("failed append param url: %w", err)
	}
	if err := easy.Setopt(curl.OPT_CONNECT_TO, []string{fmt.Sprintf("%s:443:%s:443", domain, IP)}); err != nil {
		return entities.CertInfo{}, fmt.Errorf("failed append param connect to: %w", err)
	}
	if err := easy.Setopt(curl.OPT_SSL_VERIFYPEER, true); err != nil {
		return entities.CertInfo{}, fmt.Errorf("failed append param verifypeer: %w", err)
	}
	if err := easy.Setopt(curl.OPT_SSL_VERIFYHOST, true); err != nil {
		return entities.CertInfo{}, fmt.Errorf("failed append param verifyhost: %w", err)
	}
	if err := easy.Setopt(curl.OPT_TIMEOUT, connectTimeoutSeconds); err != nil {
		return entities.CertInfo{}, fmt.Errorf("failed append param timeout: %w", err)
	}
	if err := easy.Setopt(curl.OPT_CERTINFO, true); err != nil {
		return entities.CertInfo{}, fmt.Errorf("failed append param certinfo: %w", err)
	}
	if err := easy.Setopt(curl.OPT_NOPROGRESS, true); err != nil {
		return entities.CertInfo{}, fmt.Errorf("failed append param noprogress: %w", err)
	}
	if err := easy.Setopt(curl.OPT_NOBODY, true); err != nil {
		return entities.CertInfo{}, fmt.Errorf("failed append param nobody: %w", err)
	}
	if err := easy.Perform(); err != nil {
		return entities.CertInfo{}, fmt.Errorf("failed to send curl: %w", err)
	}

	info, err := easy.Getinfo(curl.INFO_CERTINFO)
	if err != nil {
		return entities.CertInfo{}, fmt.Errorf("failed to get info: %w", err)
	}

	switch certs := info.(type) {
	case []string:
		return parseCertInfo(certs)
	default:
		return entities.CertInfo{}, errors.New("unsupported certificate info format") //nolint:goerr113
	}
}

// parseCertInfo extracts the expire date from curl's textual cert dump
// and classifies the leaf certificate.
func parseCertInfo(certs []string) (entities.CertInfo, error) {
	lc := len([]byte("Expire date")) + 1
	for _, cert := range certs {
		matchExpiredAt := strings.Index(cert, "Expire date")
		if matchExpiredAt == -1 {
			return entities.CertInfo{}, errMissingExpireDate
		}

		certT := strings.Split(cert[matchExpiredAt+lc:], "\n")[0]

		expiredAt, err := time.Parse(parseDateFormat, certT)
		if err != nil {
			return entities.CertInfo{}, fmt.Errorf("parse date error: %w", err)
		}

		return entities.CertInfo{
			ExpiredAt: &expiredAt,
			Valid:     expiredAt.After(time.Now()),
		}, nil
	}

	return entities.CertInfo{}, errNoCertInfo
}
