package pool

import (
	"bytes"
	"encoding/binary"

	bin "github.com/gagliardetto/binary"

	"github.com/code-payments/index-fund/pkg/solana"
	"github.com/code-payments/index-fund/pkg/solana/borsh"
)

type RequestType uint8

const (
	RequestTypeInitialize RequestType = iota
	RequestTypeGetBasket
	// Creation and redemption execution lives outside this module.
	RequestTypeExecute
)

type Action uint8

const (
	ActionCreate Action = iota
	ActionRedeem
)

// InitializeRequest configures a new pool. CustomData is handed to the
// pool implementation untouched.
type InitializeRequest struct {
	VaultSignerNonce uint8
	AssetsLength     uint8
	PoolName         string
	FeeRate          uint32
	CustomData       []byte
}

type GetBasketRequest struct {
	Action Action
	Size   uint64
}

// Request is a pool framework request. Exactly one of the request bodies is
// set, according to Type.
type Request struct {
	Type       RequestType
	Initialize *InitializeRequest
	GetBasket  *GetBasketRequest
}

// IsRequest reports whether the instruction data is addressed to the pool
// framework rather than the pool implementation.
func IsRequest(data []byte) bool {
	return len(data) >= 8 && binary.LittleEndian.Uint64(data) == RequestTag
}

// DecodeRequest decodes a pool request. Every malformed or unsupported
// request fails with solana.ErrInvalidInstructionData.
func DecodeRequest(data []byte) (*Request, error) {
	req, err := decodeRequest(data)
	if err != nil {
		return nil, solana.ErrInvalidInstructionData
	}
	return req, nil
}

func decodeRequest(data []byte) (*Request, error) {
	if !IsRequest(data) {
		return nil, solana.ErrInvalidInstructionData
	}

	dec := bin.NewBinDecoder(data[8:])

	index, err := dec.ReadUint8()
	if err != nil {
		return nil, err
	}

	req := &Request{Type: RequestType(index)}
	switch req.Type {
	case RequestTypeInitialize:
		var body InitializeRequest
		if body.VaultSignerNonce, err = dec.ReadUint8(); err != nil {
			return nil, err
		}
		if body.AssetsLength, err = dec.ReadUint8(); err != nil {
			return nil, err
		}
		if body.PoolName, err = borsh.ReadString(dec); err != nil {
			return nil, err
		}
		if body.FeeRate, err = dec.ReadUint32(binary.LittleEndian); err != nil {
			return nil, err
		}
		if body.CustomData, err = borsh.ReadBytes(dec); err != nil {
			return nil, err
		}
		req.Initialize = &body
	case RequestTypeGetBasket:
		var body GetBasketRequest
		action, err := dec.ReadUint8()
		if err != nil {
			return nil, err
		}
		body.Action = Action(action)
		if body.Action != ActionCreate && body.Action != ActionRedeem {
			return nil, solana.ErrInvalidInstructionData
		}
		if body.Size, err = dec.ReadUint64(binary.LittleEndian); err != nil {
			return nil, err
		}
		req.GetBasket = &body
	default:
		return nil, solana.ErrInvalidInstructionData
	}

	if err := borsh.ExpectEOF(dec); err != nil {
		return nil, err
	}
	return req, nil
}

func (r *Request) Marshal() []byte {
	var buf bytes.Buffer
	enc := bin.NewBinEncoder(&buf)

	_ = enc.WriteUint64(RequestTag, binary.LittleEndian)
	_ = enc.WriteUint8(uint8(r.Type))

	switch {
	case r.Type == RequestTypeInitialize && r.Initialize != nil:
		_ = enc.WriteUint8(r.Initialize.VaultSignerNonce)
		_ = enc.WriteUint8(r.Initialize.AssetsLength)
		_ = borsh.WriteString(enc, r.Initialize.PoolName)
		_ = enc.WriteUint32(r.Initialize.FeeRate, binary.LittleEndian)
		_ = borsh.WriteBytes(enc, r.Initialize.CustomData)
	case r.Type == RequestTypeGetBasket && r.GetBasket != nil:
		_ = enc.WriteUint8(uint8(r.GetBasket.Action))
		_ = enc.WriteUint64(r.GetBasket.Size, binary.LittleEndian)
	}

	return buf.Bytes()
}
