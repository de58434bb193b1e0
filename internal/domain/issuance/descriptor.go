// internal/domain/issuance/descriptor.go
package issuance

// ------------------------------------------------------
// MintDescriptor: オンチェーン metadata レコードの正規形
// ------------------------------------------------------

// UseMethod は Token Metadata の uses.useMethod に対応します。
type UseMethod uint8

const (
	UseBurn UseMethod = iota
	UseMultiple
	UseSingle
)

func (m UseMethod) String() string {
	switch m {
	case UseBurn:
		return "burn"
	case UseMultiple:
		return "multiple"
	case UseSingle:
		return "single"
	default:
		return "unknown"
	}
}

type Creator struct {
	Address  Address
	Share    uint8
	Verified bool
}

type Uses struct {
	Total     uint64
	Remaining uint64
	Method    UseMethod
}

type Collection struct {
	Address  Address
	Verified bool
}

// MintDescriptor は Project の出力です。
// Creators / Uses / Collection の nil は「フィールドなし」を意味します。
type MintDescriptor struct {
	Name               string
	Symbol             string
	URI                string
	RoyaltyBasisPoints uint16
	Creators           []Creator
	Uses               *Uses
	Collection         *Collection
}

// TotalShare は creators の share 合計です (creators なしなら 0)。
func (d MintDescriptor) TotalShare() int {
	total := 0
	for _, c := range d.Creators {
		total += int(c.Share)
	}
	return total
}

// ------------------------------------------------------
// Metadata Projection
// ------------------------------------------------------

// Project は Variant を MintDescriptor に写像する純粋関数です。
//
// creators の share は floor(100 / N) で、端数は切り捨てます
// (N=3 なら 33,33,33 で合計 99)。
func Project(v Variant) MintDescriptor {
	switch t := v.(type) {
	case Fungible:
		return MintDescriptor{
			Name:   t.Metadata.Name,
			Symbol: t.Metadata.Symbol,
			URI:    t.Metadata.URI,
		}

	case FungibleAsset:
		d := MintDescriptor{
			Name:   t.Metadata.Name,
			Symbol: t.Metadata.Symbol,
			URI:    t.Metadata.URI,
		}
		if n := t.Metadata.UseCount; n > 0 {
			d.Uses = &Uses{Total: n, Remaining: n, Method: UseBurn}
		}
		return d

	case NonFungible:
		m := t.Metadata
		d := MintDescriptor{
			Name:               m.Name,
			Symbol:             m.Symbol,
			URI:                m.URI,
			RoyaltyBasisPoints: m.RoyaltyBasisPoints,
		}
		if m.CreatorAddresses != nil {
			d.Creators = make([]Creator, 0, len(m.CreatorAddresses))
			share := creatorShare(len(m.CreatorAddresses))
			for _, addr := range m.CreatorAddresses {
				d.Creators = append(d.Creators, Creator{Address: addr, Share: share})
			}
		}
		if m.CollectionAddress != nil {
			d.Collection = &Collection{Address: *m.CollectionAddress}
		}
		return d
	}

	return MintDescriptor{}
}

func creatorShare(n int) uint8 {
	if n <= 0 {
		return 0
	}
	return uint8(100 / n)
}
