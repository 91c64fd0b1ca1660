// Package certutil holds the pure in-memory pieces of the certificate
// pipeline: key and CSR generation, PEM to PKCS#12 conversion for
// gateway upload, and certificate inspection for renewal decisions.
// Private key material never touches disk here.
package certutil

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/base64"
	"encoding/hex"
	"encoding/pem"
	"errors"
	"fmt"
	"time"

	"software.sslmate.com/src/go-pkcs12"
)

const rsaKeyBits = 2048

var errNoCertificate = errors.New("no certificate found in PEM data")

// NewPrivateKey generates a fresh RSA-2048 key.
func NewPrivateKey() (*rsa.PrivateKey, error) {
	key, err := rsa.GenerateKey(rand.Reader, rsaKeyBits)
	if err != nil {
		return nil, fmt.Errorf("failed to generate rsa key: %w", err)
	}
	return key, nil
}

// GenerateCSR builds a DER-encoded certificate signing request with the
// given domains as DNS subject alternative names. The first domain is
// also used as the common name.
func GenerateCSR(domains []string, key *rsa.PrivateKey) ([]byte, error) {
	if len(domains) == 0 {
		return nil, errors.New("at least one domain is required")
	}

	template := x509.CertificateRequest{
		Subject:  pkix.Name{CommonName: domains[0]},
		DNSNames: domains,
	}

	der, err := x509.CreateCertificateRequest(rand.Reader, &template, key)
	if err != nil {
		return nil, fmt.Errorf("failed to create csr: %w", err)
	}

	return der, nil
}

// PEMToPFX converts a PEM certificate chain and private key to PKCS#12
// bytes encrypted with password, suitable for gateway upload.
func PEMToPFX(certPEM []byte, key *rsa.PrivateKey, password string) ([]byte, error) {
	certs, err := parseCertChain(certPEM)
	if err != nil {
		return nil, err
	}

	pfx, err := pkcs12.Modern.Encode(key, certs[0], certs[1:], password)
	if err != nil {
		return nil, fmt.Errorf("failed to encode pkcs12: %w", err)
	}

	return pfx, nil
}

// Fingerprint returns the lowercase hex SHA-256 digest of the leaf
// certificate in certPEM.
func Fingerprint(certPEM []byte) (string, error) {
	certs, err := parseCertChain(certPEM)
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(certs[0].Raw)
	return hex.EncodeToString(sum[:]), nil
}

// Expiry returns the notAfter of the leaf certificate in certPEM, in UTC.
func Expiry(certPEM []byte) (time.Time, error) {
	certs, err := parseCertChain(certPEM)
	if err != nil {
		return time.Time{}, err
	}

	return certs[0].NotAfter.UTC(), nil
}

// ExpiryFromBase64DER parses the expiry from base64 DER certificate data
// as returned by the gateway control plane. Returns nil when the data is
// empty or unparsable, matching how vault-referenced certificates look.
func ExpiryFromBase64DER(data string) *time.Time {
	if data == "" {
		return nil
	}

	der, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil
	}

	cert, err := x509.ParseCertificate(der)
	if err != nil {
		return nil
	}

	expiry := cert.NotAfter.UTC()
	return &expiry
}

// RandomPassword returns a fresh URL-safe password with n bytes of
// entropy. Used for the ephemeral PFX passphrase.
func RandomPassword(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func parseCertChain(certPEM []byte) ([]*x509.Certificate, error) {
	var certs []*x509.Certificate
	rest := certPEM
	for {
		var block *pem.Block
		block, rest = pem.Decode(rest)
		if block == nil {
			break
		}
		if block.Type != "CERTIFICATE" {
			continue
		}

		cert, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("failed to parse certificate: %w", err)
		}
		certs = append(certs, cert)
	}

	if len(certs) == 0 {
		return nil, errNoCertificate
	}

	return certs, nil
}
