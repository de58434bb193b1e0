package issuance

import (
	"errors"
	"fmt"
)

// ------------------------------------------------------
// Errors
// ------------------------------------------------------

var (
	// 構築時 (ledger 呼び出し前) のエラー
	ErrMissingResource     = errors.New("issuance: missing resource")
	ErrUnexpectedResource  = errors.New("issuance: unexpected resource")
	ErrInvalidVariant      = errors.New("issuance: invalid variant")
	ErrLedgerNotConfigured = errors.New("issuance: ledger client is nil")

	// エントリポイントと payload のタグ不一致
	ErrVariantMismatch = errors.New("issuance: variant mismatch")

	// パイプライン実行時のエラー
	ErrMasterEditionMissing = errors.New("issuance: master edition handle is missing")

	ErrNotFound = errors.New("issuance: not found")
)

// ConstructionError はリソースバンドルの不備を表します。
// 呼び出し側はバンドルを直して再試行できます。
type ConstructionError struct {
	Slot string // 最初に欠けている / 余分なスロット名
	Want int
	Got  int
	Err  error
}

func (e *ConstructionError) Error() string {
	return fmt.Sprintf("%v: slot=%s want=%d got=%d", e.Err, e.Slot, e.Want, e.Got)
}

func (e *ConstructionError) Unwrap() error { return e.Err }

// StepError はパイプラインの途中で失敗したステップとその原因を保持します。
type StepError struct {
	Step Step
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("issuance: step %s failed: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// FailedStep は err が StepError なら失敗ステップを返します。
func FailedStep(err error) (Step, bool) {
	var se *StepError
	if errors.As(err, &se) {
		return se.Step, true
	}
	return 0, false
}
