package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/smartmemorandum/contract-analyzer/internal/domain/contracts"
)

// SourceRepository is the read-only Postgres flavour of the contract
// source corpus lookup.
type SourceRepository struct{ db *sql.DB }

func NewSourceRepository(db *sql.DB) *SourceRepository { return &SourceRepository{db: db} }

func (r *SourceRepository) FetchSource(ctx context.Context, address string, network contracts.Network) (string, error) {
	const q = `
SELECT source_code
FROM contract_sources
WHERE network = $1 AND LOWER(address) = $2
LIMIT 1`

	var src sql.NullString
	addr := strings.ToLower(strings.TrimSpace(address))
	err := r.db.QueryRowContext(ctx, q, string(network), addr).Scan(&src)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return "", nil
	case err != nil:
		return "", eris.Wrapf(err, "postgres: fetch source %s/%s", network, address)
	}
	return src.String, nil
}

func (r *SourceRepository) Check(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
