package auth

import (
	"testing"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// signMessage produces a personal-message signature the way browser wallets
// do, including the 27/28 recovery id convention.
func signMessage(t *testing.T, keyHex, message string) (address, signature string) {
	t.Helper()

	key, err := crypto.HexToECDSA(keyHex)
	require.NoError(t, err)

	sig, err := crypto.Sign(accounts.TextHash([]byte(message)), key)
	require.NoError(t, err)
	sig[crypto.RecoveryIDOffset] += 27

	return crypto.PubkeyToAddress(key.PublicKey).Hex(), hexutil.Encode(sig)
}

const testKeyHex = "b71c71a67e1177ad4e901695e1b4b9ee17ae16c6668d313eac2f96dbcda3f291"

func TestRecoverAddressRoundTrip(t *testing.T) {
	address, signature := signMessage(t, testKeyHex, "challenge-nonce-1")

	recovered, err := RecoverAddress("challenge-nonce-1", signature)
	require.NoError(t, err)
	assert.True(t, AddressesEqual(recovered.Hex(), address))
}

func TestRecoverAddressDifferentMessageDifferentSigner(t *testing.T) {
	address, signature := signMessage(t, testKeyHex, "challenge-nonce-1")

	recovered, err := RecoverAddress("another-message", signature)
	require.NoError(t, err)
	assert.False(t, AddressesEqual(recovered.Hex(), address))
}

func TestRecoverAddressRejectsMalformedInput(t *testing.T) {
	_, err := RecoverAddress("msg", "not-hex")
	assert.Error(t, err)

	_, err = RecoverAddress("msg", "0xdeadbeef")
	assert.Error(t, err)
}

func TestAddressesEqualIgnoresCase(t *testing.T) {
	assert.True(t, AddressesEqual(
		"0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed",
		"0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed",
	))
	assert.False(t, AddressesEqual(
		"0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed",
		"0x1111111111111111111111111111111111111111",
	))
}
