package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"
	"go.uber.org/zap"

	"gitlab.lucky-team.pro/luckyads/go.cert-issuer/internal/config"
	"gitlab.lucky-team.pro/luckyads/go.cert-issuer/internal/entities"
)

// Storage is a postgres-based implementation of storage.Common.
type Storage struct {
	mainDB *pgxpool.Pool
	logger *zap.Logger
}

// New connects to postgres. Context is used during dial only,
// connString may contain pgx specific parameters.
func New(ctx context.Context, logger *zap.Logger, conf *config.Postgres) (Storage, error) {
	mainDB, err := pgxpool.Connect(ctx, conf.MainDBConnectionString)
	if err != nil {
		return Storage{}, fmt.Errorf("failed to create mainDB pgx pool: %w", err)
	}

	return Storage{
		mainDB: mainDB,
		logger: logger,
	}, nil
}

// GetTargets returns all issuance targets in the system.
// Any error returned is internal.
func (s *Storage) GetTargets(ctx context.Context) ([]entities.DomainTarget, error) {
	rows, err := s.mainDB.Query(ctx, `
		SELECT
			gateway,
			domain
		FROM
			system.gateway_domains
		WHERE
			deleted_at IS NULL
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query targets: %w", err)
	}
	defer rows.Close()

	var targets []entities.DomainTarget
	for rows.Next() {
		var target entities.DomainTarget
		if err := rows.Scan(
			&target.GatewayName,
			&target.Domain,
		); err != nil {
			return nil, fmt.Errorf("failed to scan target: %w", err)
		}

		targets = append(targets, target)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read target list: %w", err)
	}

	return targets, nil
}

// UpdateCertStatus records the last observed certificate state for a target.
// Any error returned is internal.
func (s *Storage) UpdateCertStatus(
	ctx context.Context,
	target entities.DomainTarget,
	info entities.CertInfo,
) error {
	_, err := s.mainDB.Exec(ctx, `
		UPDATE
			system.gateway_domains
		SET
			ssl = $1
		WHERE
			gateway = $2
			AND domain = $3
	`, info, target.GatewayName, target.Domain)
	if err != nil {
		return fmt.Errorf("failed to update cert status for %q: %w", target.Domain, err)
	}

	return nil
}

// Close releases underlying db resources.
func (s *Storage) Close() error {
	s.mainDB.Close()
	return nil
}
