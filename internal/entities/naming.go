package entities

import (
	"strconv"
	"strings"
)

// RoutePrefix marks every temporary challenge path rule this service
// creates. The orphan sweeper matches on it.
const RoutePrefix = "acme-challenge-"

// SanitizeDomain replaces dots with hyphens so a FQDN can be embedded
// in gateway resource names.
func SanitizeDomain(domain string) string {
	return strings.ReplaceAll(domain, ".", "-")
}

// CertName derives the gateway certificate name for a domain:
// "www.example.com" -> "www-example-com-cert". External tooling scans
// gateway state by this exact convention, do not change it.
func CertName(domain string) string {
	return SanitizeDomain(domain) + "-cert"
}

// RouteName derives the temporary challenge rule name for a domain and
// creation time: "www.example.com", 1709030400 ->
// "acme-challenge-www-example-com-1709030400". The timestamp keeps
// concurrent or repeated runs for the same domain from colliding.
func RouteName(domain string, createdUnix int64) string {
	return RoutePrefix + SanitizeDomain(domain) + "-" + strconv.FormatInt(createdUnix, 10)
}

// IsChallengeRule reports whether a path rule name belongs to this
// service's temporary challenge routes.
func IsChallengeRule(ruleName string) bool {
	return strings.HasPrefix(ruleName, RoutePrefix)
}
