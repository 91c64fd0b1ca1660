package entities

import "time"

// ChallengeContext carries the HTTP-01 challenge material for one domain.
// KeyAuthorization is secret-adjacent: it must never be persisted or logged.
type ChallengeContext struct {
	Token            string
	KeyAuthorization string
	ChallengeURL     string
}

// String redacts the key authorization.
func (c ChallengeContext) String() string {
	return "http-01 challenge token=" + c.Token
}

// TemporaryRoute is the gateway path rule created for one saga attempt.
type TemporaryRoute struct {
	RuleName    string
	Domain      string
	BackendFQDN string
	Established bool
}

// CertificateArtifact is a deployable certificate. Password is generated
// fresh per issuance, lives only in memory and is never logged.
type CertificateArtifact struct {
	Name     string
	Data     []byte
	Password string
}

// String redacts the password and raw bytes.
func (a CertificateArtifact) String() string {
	return "certificate artifact " + a.Name
}

// ListenerBinding is a gateway listener together with the certificate
// it currently terminates TLS with.
type ListenerBinding struct {
	ListenerName    string
	CertificateName string
}

// Certificate status labels used by status reporting.
const (
	StatusValid        = "valid"
	StatusExpiringSoon = "expiring_soon"
	StatusExpired      = "expired"
)

// CertInfo is the last observed state of the certificate a domain
// actually serves, written back to storage by the probe.
type CertInfo struct {
	ExpiredAt   *time.Time `json:"expired_at"`
	Valid       bool       `json:"valid"`
	Fingerprint string     `json:"fingerprint,omitempty"`
}

// GatewayCertificate is a certificate as reported by the gateway
// control plane. Expiry is nil when the public certificate data is
// not exposed (e.g. vault-referenced certificates).
type GatewayCertificate struct {
	Name   string
	Expiry *time.Time
}

// CertStatus describes one certificate found on a gateway.
// Expiry is nil when the gateway does not expose the public
// certificate data (e.g. vault-referenced certificates).
type CertStatus struct {
	Gateway       string     `json:"gateway"`
	Name          string     `json:"name"`
	Expiry        *time.Time `json:"expiry"`
	DaysRemaining *int       `json:"days_remaining"`
	Status        string     `json:"status"`
}
