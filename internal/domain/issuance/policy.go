package issuance

import "fmt"

// policy はバリアントごとの差分だけを集めたものです。
// パイプライン本体 (Run) は全バリアントで共通です。
type policy struct {
	decimals      func(Variant) uint8
	amount        func(Variant) (uint64, error)
	freeze        func(Variant) bool
	descriptor    func(Variant) MintDescriptor
	masterEdition bool
}

var policies = map[Kind]policy{
	KindFungible: {
		decimals: func(v Variant) uint8 { return v.(Fungible).Decimals },
		amount: func(v Variant) (uint64, error) {
			f := v.(Fungible)
			amt, ok := scaleSupply(f.InitialSupply, f.Decimals)
			if !ok {
				return 0, fmt.Errorf("%w: supply overflow", ErrInvalidVariant)
			}
			return amt, nil
		},
		freeze:     func(v Variant) bool { return v.(Fungible).FreezeAfterMint },
		descriptor: Project,
	},
	KindFungibleAsset: {
		decimals:   func(v Variant) uint8 { return v.(FungibleAsset).Decimals },
		amount:     func(v Variant) (uint64, error) { return v.(FungibleAsset).Quantity, nil },
		freeze:     func(Variant) bool { return true },
		descriptor: Project,
	},
	KindNonFungible: {
		decimals:      func(Variant) uint8 { return 0 },
		amount:        func(Variant) (uint64, error) { return 1, nil },
		freeze:        func(Variant) bool { return true },
		descriptor:    Project,
		masterEdition: true,
	},
}

func policyFor(v Variant) (policy, error) {
	switch v.(type) {
	case Fungible, FungibleAsset, NonFungible:
	case nil:
		return policy{}, fmt.Errorf("%w: variant is nil", ErrInvalidVariant)
	default:
		// *Fungible なども Kind() を持つが、テーブルは値型のみを扱う
		return policy{}, fmt.Errorf("%w: unsupported variant %T", ErrInvalidVariant, v)
	}
	p, ok := policies[v.Kind()]
	if !ok {
		return policy{}, fmt.Errorf("%w: no policy for %s", ErrInvalidVariant, v.Kind())
	}
	return p, nil
}

// MintAmount はミントステップで発行する最小単位の数量です。
func MintAmount(v Variant) (uint64, error) {
	p, err := policyFor(v)
	if err != nil {
		return 0, err
	}
	return p.amount(v)
}

// FreezesAfterMint はミント後に holding account を freeze するかを返します。
func FreezesAfterMint(v Variant) bool {
	p, err := policyFor(v)
	if err != nil {
		return false
	}
	return p.freeze(v)
}
