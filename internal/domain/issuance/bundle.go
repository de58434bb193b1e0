package issuance

import "fmt"

// ------------------------------------------------------
// Resource Handle Bundle
// ------------------------------------------------------
//
// 呼び出し側が解決済みのアドレスを以下の順で並べて渡します (append-only)。
//
//	0 mint
//	1 token account (authority の ATA)
//	2 mint authority
//	3 metadata (PDA)
//	4 [master edition (PDA)]   ← 10 件のときだけ存在
//	  rent sysvar
//	  system program
//	  token program
//	  associated token program
//	  token metadata program

const (
	// edition を含まない最小件数
	MinBundleSize = 9
	// edition を含む件数
	MaxBundleSize = 10
)

var requiredSlots = [MinBundleSize]string{
	"mint",
	"token_account",
	"authority",
	"metadata",
	"rent_sysvar",
	"system_program",
	"token_program",
	"associated_token_program",
	"metadata_program",
}

// Bundle は 1 回の発行で使うリソースハンドルの値オブジェクトです。
// Run 中は変更されません。
type Bundle struct {
	Mint         Address
	TokenAccount Address
	Authority    Address
	Metadata     Address
	Edition      *Address

	RentSysvar             Address
	SystemProgram          Address
	TokenProgram           Address
	AssociatedTokenProgram Address
	MetadataProgram        Address
}

// ParseBundle は位置ベースのハンドル列を Bundle に変換します。
// 名前ではなく件数と順序だけを見るアリティチェックです。
func ParseBundle(handles []Address) (Bundle, error) {
	n := len(handles)
	if n < MinBundleSize {
		return Bundle{}, &ConstructionError{
			Slot: requiredSlots[n],
			Want: MinBundleSize,
			Got:  n,
			Err:  ErrMissingResource,
		}
	}
	if n > MaxBundleSize {
		return Bundle{}, &ConstructionError{
			Slot: fmt.Sprintf("handle[%d]", MaxBundleSize),
			Want: MaxBundleSize,
			Got:  n,
			Err:  ErrUnexpectedResource,
		}
	}

	b := Bundle{
		Mint:         handles[0],
		TokenAccount: handles[1],
		Authority:    handles[2],
		Metadata:     handles[3],
	}

	rest := handles[4:]
	if n == MaxBundleSize {
		ed := handles[4]
		b.Edition = &ed
		rest = handles[5:]
	}

	b.RentSysvar = rest[0]
	b.SystemProgram = rest[1]
	b.TokenProgram = rest[2]
	b.AssociatedTokenProgram = rest[3]
	b.MetadataProgram = rest[4]

	return b, nil
}

// Handles は ParseBundle と同じ順序の位置リストを返します。
func (b Bundle) Handles() []Address {
	out := make([]Address, 0, MaxBundleSize)
	out = append(out, b.Mint, b.TokenAccount, b.Authority, b.Metadata)
	if b.Edition != nil {
		out = append(out, *b.Edition)
	}
	out = append(out,
		b.RentSysvar,
		b.SystemProgram,
		b.TokenProgram,
		b.AssociatedTokenProgram,
		b.MetadataProgram,
	)
	return out
}

// HasEdition は master edition のハンドルが渡されているかを返します。
func (b Bundle) HasEdition() bool { return b.Edition != nil }
