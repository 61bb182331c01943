package tangle

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntToTrytes(t *testing.T) {
	tests := []struct {
		name string
		in   int64
		want string
	}{
		{"零", 0, "999"},
		{"一", 1, "A99"},
		{"负一", -1, "Z99"},
		{"十三", 13, "M99"},
		{"十四进位", 14, "NA9"},
		{"负十四", -14, "MZ9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IntToTrytes(tt.in, 3)
			assert.Equal(t, tt.want, got)

			back, err := TrytesToInt(got)
			require.NoError(t, err)
			assert.Equal(t, tt.in, back)
		})
	}
}

func TestTrytesToInt_Invalid(t *testing.T) {
	_, err := TrytesToInt("AB1")
	assert.ErrorIs(t, err, ErrInvalidTrytes)
}

func TestNewHash(t *testing.T) {
	_, err := NewHash(strings.Repeat("A", HashTrytesSize))
	assert.NoError(t, err)

	_, err = NewHash("ABC")
	assert.ErrorIs(t, err, ErrInvalidHash)

	_, err = NewHash(strings.Repeat("a", HashTrytesSize))
	assert.ErrorIs(t, err, ErrInvalidHash)
}

func TestParseTransaction(t *testing.T) {
	hash := Hash(strings.Repeat("H", HashTrytesSize))
	tx := &Transaction{
		Address:             Hash(strings.Repeat("A", HashTrytesSize)),
		Value:               -1500,
		Timestamp:           1545000000,
		CurrentIndex:        1,
		LastIndex:           3,
		Bundle:              Hash(strings.Repeat("B", HashTrytesSize)),
		TrunkTransaction:    Hash(strings.Repeat("T", HashTrytesSize)),
		BranchTransaction:   Hash(strings.Repeat("R", HashTrytesSize)),
		Tag:                 "WALLET",
		AttachmentTimestamp: 1545000000123,
	}

	encoded := tx.Trytes()
	require.Len(t, encoded, TransactionTrytesSize)

	decoded, err := ParseTransaction(encoded, hash)
	require.NoError(t, err)
	assert.Equal(t, hash, decoded.Hash)
	assert.Equal(t, tx.Address, decoded.Address)
	assert.Equal(t, tx.Value, decoded.Value)
	assert.Equal(t, tx.Timestamp, decoded.Timestamp)
	assert.Equal(t, tx.Bundle, decoded.Bundle)
	assert.Equal(t, tx.TrunkTransaction, decoded.TrunkTransaction)
	assert.Equal(t, int64(3), decoded.LastIndex)
	assert.Equal(t, tx.AttachmentTimestamp, decoded.AttachmentTimestamp)
	assert.False(t, decoded.IsTail())
	assert.Nil(t, decoded.Confirmed)
	assert.True(t, strings.HasPrefix(decoded.Tag, "WALLET"))
}

func TestParseTransaction_Errors(t *testing.T) {
	_, err := ParseTransaction(strings.Repeat("9", TransactionTrytesSize), "")
	assert.ErrorIs(t, err, ErrEmptyTransaction)

	_, err = ParseTransaction("ABC", "")
	assert.ErrorIs(t, err, ErrInvalidTrytes)

	_, err = ParseTransaction(strings.Repeat("a", TransactionTrytesSize), "")
	assert.ErrorIs(t, err, ErrInvalidTrytes)
}

func TestBundleTail(t *testing.T) {
	var empty Bundle
	assert.Nil(t, empty.Tail())
	assert.Equal(t, Hash(""), empty.Hash())

	b := Bundle{Transactions: []*Transaction{{Hash: "T0", Bundle: "B"}, {Hash: "T1", Bundle: "B", CurrentIndex: 1}}}
	assert.Equal(t, Hash("T0"), b.Tail().Hash)
	assert.Equal(t, Hash("B"), b.Hash())
}
