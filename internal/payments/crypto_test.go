package payments

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testWorkingKey = "0123456789ABCDEF0123456789ABCDEF"

func TestNewCodecKeyValidation(t *testing.T) {
	_, err := NewCodec("short")
	assert.ErrorIs(t, err, ErrInvalidKey)

	_, err = NewCodec(strings.Repeat("k", 33))
	assert.ErrorIs(t, err, ErrInvalidKey)

	_, err = NewCodec("0123456789ABCDEF")
	assert.NoError(t, err)

	_, err = NewCodec(testWorkingKey)
	assert.NoError(t, err)
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	codec, err := NewCodec(testWorkingKey)
	require.NoError(t, err)

	plaintexts := []string{
		"a",
		"order_id=BK1731558000000_X7KQ&order_status=Success&amount=1000.00",
		strings.Repeat("x", 16),  // exactly one block
		strings.Repeat("y", 17),  // one block plus one byte
		strings.Repeat("z", 512), // multi-block
		"unicode ₹1101 नमस्ते",
	}

	for _, plain := range plaintexts {
		enc, err := codec.Encrypt(plain)
		require.NoError(t, err)
		assert.NotEqual(t, plain, enc)

		dec, err := codec.Decrypt(enc)
		require.NoError(t, err)
		assert.Equal(t, plain, dec)
	}
}

func TestEncryptDeterministic(t *testing.T) {
	codec, err := NewCodec(testWorkingKey)
	require.NoError(t, err)

	// The gateway derives the same IV, so equal inputs must produce
	// equal ciphertexts
	a, err := codec.Encrypt("merchant_id=12345&order_id=BK1")
	require.NoError(t, err)
	b, err := codec.Encrypt("merchant_id=12345&order_id=BK1")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestEncryptEmptyPlaintext(t *testing.T) {
	codec, err := NewCodec(testWorkingKey)
	require.NoError(t, err)

	_, err = codec.Encrypt("")
	assert.ErrorIs(t, err, ErrEmptyPlaintext)
}

func TestDecryptRejectsGarbage(t *testing.T) {
	codec, err := NewCodec(testWorkingKey)
	require.NoError(t, err)

	cases := []string{
		"not-base64!!!",
		"",
		"YWJj", // valid base64, not block aligned
	}
	for _, in := range cases {
		_, err := codec.Decrypt(in)
		var decryptErr *DecryptError
		require.ErrorAs(t, err, &decryptErr, "input %q", in)
	}
}

func TestDecryptWrongKey(t *testing.T) {
	codec, err := NewCodec(testWorkingKey)
	require.NoError(t, err)
	other, err := NewCodec("FEDCBA9876543210FEDCBA9876543210")
	require.NoError(t, err)

	enc, err := codec.Encrypt("order_id=BK1&order_status=Success")
	require.NoError(t, err)

	dec, err := other.Decrypt(enc)
	if err == nil {
		// Padding can decode by chance; the plaintext must still differ
		assert.NotEqual(t, "order_id=BK1&order_status=Success", dec)
	}
}

func TestDecryptErrorLeaksNothing(t *testing.T) {
	codec, err := NewCodec(testWorkingKey)
	require.NoError(t, err)

	_, err = codec.Decrypt("####")
	require.Error(t, err)
	assert.NotContains(t, err.Error(), testWorkingKey)
	assert.NotContains(t, err.Error(), "####")
}

func TestParamsCodec(t *testing.T) {
	params := map[string]string{
		"order_id":     "BK1731558000000_X7KQ",
		"amount":       "1000.00",
		"order_status": "Success",
	}

	encoded := EncodeParams(params)
	assert.Equal(t, "amount=1000.00&order_id=BK1731558000000_X7KQ&order_status=Success&", encoded)

	parsed := ParseParams(encoded)
	assert.Equal(t, params, parsed)
}

func TestParseParamsTolerant(t *testing.T) {
	parsed := ParseParams("order_id=BK1&&garbage&status_message=Declined by bank=really")
	assert.Equal(t, "BK1", parsed["order_id"])
	assert.Equal(t, "Declined by bank=really", parsed["status_message"])
	assert.NotContains(t, parsed, "garbage")
}
