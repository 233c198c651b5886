package token

import (
	"encoding/hex"
	"testing"

	"github.com/mr-tron/base58/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/index-fund/pkg/solana"
)

func TestAccount_Unmarshal(t *testing.T) {
	data, err := hex.DecodeString("118a08c9d4cc46c576282e0daf050bbdb04f03313e35e5db3f3def69fa1eeec42b15a9cd4bef2cd809e464570d2a6cbd9bcc64e32ea4ebbcf748757bbb3dd5bd000084e2506ce67c000000000000000000000000000000000000000000000000000000000000000000000000010000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000")
	require.NoError(t, err)

	mint, err := base58.Decode("2BU1Xgyzqixhjaq9Pa5cNsaa1gSejLeNtDaDRv29qoZm")
	require.NoError(t, err)

	var a Account
	require.NoError(t, a.Unmarshal(data))
	assert.Equal(t, mint, []byte(a.Mint))
	assert.Equal(t, uint64(9e13*1e5), a.Amount)
	assert.Equal(t, AccountStateInitialized, a.State)
	assert.Empty(t, a.Delegate)
	assert.Empty(t, a.CloseAuthority)
	assert.Nil(t, a.IsNative)
	assert.False(t, a.HasActiveDelegate())

	assert.Equal(t, data, a.Marshal())
}

func TestAccount_RoundTrip(t *testing.T) {
	keys := generateKeys(t, 4)

	isNative := uint64(2)
	expected := Account{
		Mint:            keys[0],
		Owner:           keys[1],
		Amount:          10,
		Delegate:        keys[2],
		State:           AccountStateFrozen,
		IsNative:        &isNative,
		DelegatedAmount: 7,
		CloseAuthority:  keys[3],
	}

	encoded := expected.Marshal()
	require.Len(t, encoded, AccountSize)

	var actual Account
	require.NoError(t, actual.Unmarshal(encoded))
	assert.Equal(t, expected, actual)
	assert.True(t, actual.HasActiveDelegate())
}

func TestAccount_UnmarshalInvalid(t *testing.T) {
	var a Account
	assert.Equal(t, ErrInvalidAccountSize, a.Unmarshal(make([]byte, AccountSize-1)))

	valid := (&Account{Mint: generateKeys(t, 1)[0], State: AccountStateInitialized}).Marshal()

	badOption := append([]byte{}, valid...)
	badOption[72] = 2
	assert.Error(t, a.Unmarshal(badOption))

	badState := append([]byte{}, valid...)
	badState[108] = 3
	assert.Error(t, a.Unmarshal(badState))
}

func TestMint_RoundTrip(t *testing.T) {
	keys := generateKeys(t, 1)

	for _, expected := range []Mint{
		{MintAuthority: keys[0], Supply: 1_000_000, Decimals: 6, IsInitialized: true},
		{Supply: 42, Decimals: 9, IsInitialized: true, FreezeAuthority: keys[0]},
		{},
	} {
		encoded := expected.Marshal()
		require.Len(t, encoded, MintSize)

		var actual Mint
		require.NoError(t, actual.Unmarshal(encoded))
		assert.Equal(t, expected, actual)
	}

	var m Mint
	assert.Equal(t, ErrInvalidAccountSize, m.Unmarshal(make([]byte, MintSize+1)))
}

func TestParseAccount(t *testing.T) {
	keys := generateKeys(t, 3)

	data := (&Account{Mint: keys[0], Owner: keys[1], Amount: 5, State: AccountStateInitialized}).Marshal()

	parsed, err := ParseAccount(&solana.AccountInfo{Key: keys[2], Owner: ProgramKey, Data: data})
	require.NoError(t, err)
	assert.EqualValues(t, 5, parsed.Amount)

	_, err = ParseAccount(&solana.AccountInfo{Key: keys[2], Owner: keys[1], Data: data})
	assert.Equal(t, solana.ErrIncorrectProgramID, err)

	_, err = ParseAccount(&solana.AccountInfo{Key: keys[2], Owner: ProgramKey, Data: data[:10]})
	assert.Equal(t, solana.ErrInvalidAccountData, err)

	_, err = ParseAccount(&solana.AccountInfo{Key: keys[2], Owner: ProgramKey, Data: make([]byte, AccountSize)})
	assert.Equal(t, solana.ErrUninitializedAccount, err)
}

func TestParseMint(t *testing.T) {
	keys := generateKeys(t, 1)

	data := (&Mint{Supply: 3, IsInitialized: true}).Marshal()
	parsed, err := ParseMint(&solana.AccountInfo{Key: keys[0], Owner: ProgramKey, Data: data})
	require.NoError(t, err)
	assert.EqualValues(t, 3, parsed.Supply)

	_, err = ParseMint(&solana.AccountInfo{Key: keys[0], Owner: ProgramKey, Data: make([]byte, MintSize)})
	assert.Equal(t, solana.ErrUninitializedAccount, err)
}
