// internal/adapters/out/db/issuance_repository_pg.go
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	dbcommon "minter/internal/adapters/out/db/common"
	issuancedom "minter/internal/domain/issuance"
)

// IssuancesTableDDL は issuances テーブルの定義です。
// amount は u64 全域を保持するため NUMERIC(20,0) にしています。
const IssuancesTableDDL = `
CREATE TABLE IF NOT EXISTS issuances (
  id            TEXT PRIMARY KEY,
  kind          TEXT NOT NULL,
  status        TEXT NOT NULL,
  mint_address  TEXT NOT NULL,
  authority     TEXT NOT NULL,
  token_account TEXT NOT NULL,
  metadata      TEXT NOT NULL,
  edition       TEXT,
  name          TEXT NOT NULL,
  symbol        TEXT NOT NULL,
  uri           TEXT NOT NULL,
  decimals      SMALLINT NOT NULL,
  amount        NUMERIC(20,0) NOT NULL,
  steps         TEXT[] NOT NULL DEFAULT '{}',
  failed_step   TEXT,
  error         TEXT,
  signature     TEXT,
  created_at    TIMESTAMPTZ NOT NULL,
  submitted_at  TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS issuances_mint_address_idx ON issuances (mint_address, created_at DESC);
`

// IssuanceRepositoryPG implements issuance.RecordRepository with PostgreSQL.
type IssuanceRepositoryPG struct {
	DB *sql.DB
}

var _ issuancedom.RecordRepository = (*IssuanceRepositoryPG)(nil)

func NewIssuanceRepositoryPG(db *sql.DB) *IssuanceRepositoryPG {
	return &IssuanceRepositoryPG{DB: db}
}

// EnsureSchema は issuances テーブルが無ければ作成します。
func (r *IssuanceRepositoryPG) EnsureSchema(ctx context.Context) error {
	if _, err := r.DB.ExecContext(ctx, IssuancesTableDDL); err != nil {
		return fmt.Errorf("IssuanceRepositoryPG.EnsureSchema: %w", err)
	}
	return nil
}

const issuanceColumns = `
  id, kind, status, mint_address, authority, token_account, metadata, edition,
  name, symbol, uri, decimals, amount, steps, failed_step, error, signature,
  created_at, submitted_at`

// ===============================
// RecordRepository impl
// ===============================

// Save は id をキーに upsert します。
func (r *IssuanceRepositoryPG) Save(ctx context.Context, rec issuancedom.Record) (issuancedom.Record, error) {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	if err := rec.Validate(); err != nil {
		return issuancedom.Record{}, err
	}

	run := dbcommon.GetRunner(ctx, r.DB)
	q := `
INSERT INTO issuances (` + issuanceColumns + `
) VALUES (
  $1, $2, $3, $4, $5, $6, $7, $8,
  $9, $10, $11, $12, $13::numeric, $14, $15, $16, $17,
  $18, $19
)
ON CONFLICT (id) DO UPDATE SET
  status       = EXCLUDED.status,
  steps        = EXCLUDED.steps,
  failed_step  = EXCLUDED.failed_step,
  error        = EXCLUDED.error,
  signature    = EXCLUDED.signature,
  submitted_at = EXCLUDED.submitted_at
RETURNING` + issuanceColumns

	steps := rec.Steps
	if steps == nil {
		steps = []string{}
	}

	row := run.QueryRowContext(ctx, q,
		strings.TrimSpace(rec.ID),
		rec.Kind,
		string(rec.Status),
		rec.MintAddress,
		rec.Authority,
		rec.TokenAcct,
		rec.Metadata,
		dbcommon.NullIfBlank(rec.Edition),
		rec.Name,
		rec.Symbol,
		rec.URI,
		int16(rec.Decimals),
		dbcommon.Uint64ToNumeric(rec.Amount),
		pq.Array(steps),
		dbcommon.NullIfBlank(rec.FailedStep),
		dbcommon.NullIfBlank(rec.Error),
		dbcommon.NullIfBlank(rec.Signature),
		rec.CreatedAt.UTC(),
		dbcommon.ToDBTime(rec.SubmittedAt),
	)
	out, err := scanIssuance(row)
	if err != nil {
		return issuancedom.Record{}, fmt.Errorf("IssuanceRepositoryPG.Save: %w", err)
	}
	return out, nil
}

func (r *IssuanceRepositoryPG) GetByID(ctx context.Context, id string) (issuancedom.Record, error) {
	run := dbcommon.GetRunner(ctx, r.DB)
	q := `SELECT` + issuanceColumns + `
FROM issuances
WHERE id = $1
LIMIT 1`
	row := run.QueryRowContext(ctx, q, strings.TrimSpace(id))
	rec, err := scanIssuance(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return issuancedom.Record{}, issuancedom.ErrNotFound
		}
		return issuancedom.Record{}, err
	}
	return rec, nil
}

func (r *IssuanceRepositoryPG) ListByMint(ctx context.Context, mintAddress string) ([]issuancedom.Record, error) {
	run := dbcommon.GetRunner(ctx, r.DB)
	q := `SELECT` + issuanceColumns + `
FROM issuances
WHERE mint_address = $1
ORDER BY created_at DESC, id DESC`

	rows, err := run.QueryContext(ctx, q, strings.TrimSpace(mintAddress))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]issuancedom.Record, 0)
	for rows.Next() {
		rec, err := scanIssuance(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ===============================
// helpers
// ===============================

func scanIssuance(s dbcommon.RowScanner) (issuancedom.Record, error) {
	var (
		rec         issuancedom.Record
		status      string
		amount      string
		decimals    int16
		edition     sql.NullString
		failedStep  sql.NullString
		errMsg      sql.NullString
		signature   sql.NullString
		steps       []string
		submittedAt sql.NullTime
	)
	if err := s.Scan(
		&rec.ID, &rec.Kind, &status, &rec.MintAddress, &rec.Authority, &rec.TokenAcct, &rec.Metadata, &edition,
		&rec.Name, &rec.Symbol, &rec.URI, &decimals, &amount, pq.Array(&steps), &failedStep, &errMsg, &signature,
		&rec.CreatedAt, &submittedAt,
	); err != nil {
		return issuancedom.Record{}, err
	}

	n, err := dbcommon.NumericToUint64(amount)
	if err != nil {
		return issuancedom.Record{}, fmt.Errorf("scan issuance %s: amount: %w", rec.ID, err)
	}

	rec.Status = issuancedom.Status(status)
	rec.Decimals = uint8(decimals)
	rec.Amount = n
	rec.Edition = edition.String
	rec.FailedStep = failedStep.String
	rec.Error = errMsg.String
	rec.Signature = signature.String
	rec.CreatedAt = rec.CreatedAt.UTC()
	rec.SubmittedAt = dbcommon.FromNullTime(submittedAt)
	rec.Steps = steps
	if rec.Steps == nil {
		rec.Steps = []string{}
	}
	return rec, nil
}
