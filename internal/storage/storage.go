package storage

import (
	"context"

	"gitlab.lucky-team.pro/luckyads/go.cert-issuer/internal/entities"
)

//go:generate mockgen -source=storage.go -package=storage -destination=storage_mock.go

// Common defines interface to the common persistent storage.
type Common interface {
	// GetTargets returns all issuance targets in the system.
	// Any error returned is internal.
	GetTargets(ctx context.Context) ([]entities.DomainTarget, error)
	// UpdateCertStatus records the last observed certificate state for a target.
	// Any error returned is internal.
	UpdateCertStatus(ctx context.Context, target entities.DomainTarget, info entities.CertInfo) error
}
