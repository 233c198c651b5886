package pool

import (
	"bytes"

	bin "github.com/gagliardetto/binary"

	"github.com/code-payments/index-fund/pkg/solana/borsh"
)

// Basket is the signed quantity of each pool asset, in pool asset order,
// exchanged for a creation or redemption.
type Basket struct {
	Quantities []int64
}

func (b *Basket) Marshal() []byte {
	var buf bytes.Buffer
	_ = borsh.WriteInt64Vec(bin.NewBinEncoder(&buf), b.Quantities)
	return buf.Bytes()
}

func (b *Basket) Unmarshal(data []byte) error {
	dec := bin.NewBinDecoder(data)

	var err error
	if b.Quantities, err = borsh.ReadInt64Vec(dec); err != nil {
		return err
	}
	return borsh.ExpectEOF(dec)
}
