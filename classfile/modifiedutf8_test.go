package classfile

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestModifiedUTF8RoundtripASCII(t *testing.T) {
	buf := encodeModifiedUTF8(nil, "java/lang/Object")
	s, n, err := decodeModifiedUTF8(buf, 0)
	require.NoError(t, err)
	require.Equal(t, "java/lang/Object", s)
	require.Equal(t, len(buf), n)
}

func TestModifiedUTF8EncodesNULAsTwoBytes(t *testing.T) {
	buf := encodeModifiedUTF8(nil, "a\x00b")
	require.Equal(t, []byte{0, 4, 'a', 0xC0, 0x80, 'b'}, buf)

	s, n, err := decodeModifiedUTF8(buf, 0)
	require.NoError(t, err)
	require.Equal(t, "a\x00b", s)
	require.Equal(t, len(buf), n)
}

func TestModifiedUTF8SurrogatePairRoundtrip(t *testing.T) {
	// U+1F600 (outside the BMP) must round-trip through a surrogate pair,
	// each half its own 3-byte sequence, not a single 4-byte UTF-8 run.
	s := string(rune(0x1F600))
	buf := encodeModifiedUTF8(nil, s)
	require.Equal(t, 2+6, len(buf), "two 3-byte surrogate halves plus the u2 length prefix")

	decoded, n, err := decodeModifiedUTF8(buf, 0)
	require.NoError(t, err)
	require.Equal(t, s, decoded)
	require.Equal(t, len(buf), n)
}

func TestModifiedUTF8TruncatedPayloadErrors(t *testing.T) {
	_, _, err := decodeModifiedUTF8([]byte{0, 5, 'a'}, 0)
	require.ErrorIs(t, err, ErrMalformedInput)
}
