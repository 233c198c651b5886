package solana

import (
	"bytes"
	"crypto/ed25519"
)

// AccountInfo is the view of an account that a program is handed while it
// processes an instruction. Programs mutate Data and Lamports in place; the
// host decides whether those mutations are committed.
type AccountInfo struct {
	Key        ed25519.PublicKey
	Owner      ed25519.PublicKey
	Lamports   uint64
	Data       []byte
	Executable bool

	IsSigner   bool
	IsWritable bool
}

// HasKey reports whether the account lives at the provided address.
func (a *AccountInfo) HasKey(key ed25519.PublicKey) bool {
	return bytes.Equal(a.Key, key)
}

// IsOwnedBy reports whether the provided program owns the account.
func (a *AccountInfo) IsOwnedBy(program ed25519.PublicKey) bool {
	return bytes.Equal(a.Owner, program)
}

// Clone returns a deep copy of the account.
func (a *AccountInfo) Clone() *AccountInfo {
	cloned := *a
	cloned.Key = append(ed25519.PublicKey{}, a.Key...)
	cloned.Owner = append(ed25519.PublicKey{}, a.Owner...)
	cloned.Data = append([]byte{}, a.Data...)
	return &cloned
}

// AccountIterator walks the positional account list of an instruction.
type AccountIterator struct {
	accounts []*AccountInfo
	next     int
}

func NewAccountIterator(accounts []*AccountInfo) *AccountIterator {
	return &AccountIterator{accounts: accounts}
}

// Next returns the next account, or ErrNotEnoughAccountKeys once the list
// is exhausted.
func (it *AccountIterator) Next() (*AccountInfo, error) {
	if it.next >= len(it.accounts) {
		return nil, ErrNotEnoughAccountKeys
	}

	account := it.accounts[it.next]
	it.next++
	return account, nil
}

// Remaining returns the accounts that have not been consumed yet.
func (it *AccountIterator) Remaining() []*AccountInfo {
	return it.accounts[it.next:]
}

// Consumed returns the accounts that have already been returned by Next.
func (it *AccountIterator) Consumed() []*AccountInfo {
	return it.accounts[:it.next]
}

// FindAccount returns the account with the provided key, if present.
func FindAccount(accounts []*AccountInfo, key ed25519.PublicKey) (*AccountInfo, bool) {
	for _, account := range accounts {
		if account.HasKey(key) {
			return account, true
		}
	}
	return nil, false
}
