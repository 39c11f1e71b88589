package mysql

import (
	"context"
	"database/sql"
	"errors"

	"github.com/rotisserie/eris"

	"github.com/smartmemorandum/contract-analyzer/internal/domain/contracts"
)

// SourceRepository reads verified sources from a pre-populated
// contract_sources table. It never writes.
type SourceRepository struct {
	db *sql.DB
}

func NewSourceRepository(db *sql.DB) *SourceRepository {
	return &SourceRepository{db: db}
}

// FetchSource implements contracts.SourceFetcher; a missing row is an
// absent source, not an error.
func (r *SourceRepository) FetchSource(ctx context.Context, address string, network contracts.Network) (string, error) {
	const q = `
SELECT source_code
FROM contract_sources
WHERE network = ? AND LOWER(address) = ?
LIMIT 1`

	var src sql.NullString
	err := r.db.QueryRowContext(ctx, q, string(network), normalizeAddress(address)).Scan(&src)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", eris.Wrapf(err, "mysql: fetch source %s/%s", network, address)
	}
	return src.String, nil
}

// Check pings the database for the health endpoint.
func (r *SourceRepository) Check(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
