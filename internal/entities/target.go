package entities

// DomainTarget identifies one unit of issuance work: a single
// domain hosted on a named gateway.
type DomainTarget struct {
	GatewayName string
	Domain      string
}

// String returns the gateway-qualified domain, e.g. "www.example.com@gw-prod".
func (t DomainTarget) String() string {
	return t.Domain + "@" + t.GatewayName
}

// BatchResult is the aggregate outcome of one scheduler run.
// Succeeded+Failed always equals Total.
type BatchResult struct {
	Total     int
	Succeeded int
	Failed    int
	Errors    map[DomainTarget]error
}
