// internal/adapters/out/db/common/sqlutil.go
package common

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// RowScanner は *sql.Row / *sql.Rows の Scan です。
type RowScanner interface {
	Scan(dest ...any) error
}

// Runner は *sql.DB と *sql.Tx の両方が満たすクエリ実行面です。
type Runner interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type txKey struct{}

// CtxWithTx は呼び出し側のトランザクションを ctx に載せます。
func CtxWithTx(ctx context.Context, tx *sql.Tx) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// GetRunner は ctx にトランザクションがあればそれを使い、無ければ db を使います。
func GetRunner(ctx context.Context, db *sql.DB) Runner {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok && tx != nil {
		return tx
	}
	return db
}

// ------------------------------
// 値変換
// ------------------------------

// NullIfBlank: "" / 空白のみ → NULL
func NullIfBlank(s string) sql.NullString {
	if s = strings.TrimSpace(s); s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// ToDBTime: nil / ゼロ値 → NULL、それ以外は UTC
func ToDBTime(p *time.Time) any {
	if p == nil || p.IsZero() {
		return nil
	}
	return p.UTC()
}

// FromNullTime: NULL → nil
func FromNullTime(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	v := nt.Time.UTC()
	return &v
}

// Uint64ToNumeric は u64 を NUMERIC(20,0) 列に渡す文字列にします。
// BIGINT は符号付きなので 2^63 以上が入りません。
func Uint64ToNumeric(n uint64) string {
	return strconv.FormatUint(n, 10)
}

// NumericToUint64 は NUMERIC(20,0) 列の文字列表現を u64 に戻します。
func NumericToUint64(s string) (uint64, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("numeric %q: %w", s, err)
	}
	return n, nil
}
