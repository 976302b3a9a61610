package mqtt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPacketIDAllocate(t *testing.T) {
	m := NewPacketIDManager()

	id1, err := m.Allocate()
	require.NoError(t, err)
	id2, err := m.Allocate()
	require.NoError(t, err)

	assert.NotZero(t, id1)
	assert.NotZero(t, id2)
	assert.NotEqual(t, id1, id2)
	assert.True(t, m.IsUsed(id1))
	assert.Equal(t, 2, m.InUse())
}

func TestPacketIDReleaseAndReuse(t *testing.T) {
	m := NewPacketIDManager()

	id, err := m.Allocate()
	require.NoError(t, err)
	require.NoError(t, m.Release(id))

	assert.False(t, m.IsUsed(id))
	assert.Zero(t, m.InUse())

	assert.ErrorIs(t, m.Release(id), ErrPacketIDNotFound)
}

func TestPacketIDExhaustion(t *testing.T) {
	m := NewPacketIDManager()

	seen := make(map[uint16]struct{})
	for i := 0; i < maxUint16; i++ {
		id, err := m.Allocate()
		require.NoError(t, err)
		_, dup := seen[id]
		require.False(t, dup, "identifier %d allocated twice", id)
		seen[id] = struct{}{}
	}

	_, err := m.Allocate()
	assert.ErrorIs(t, err, ErrPacketIDExhausted)

	// A single release makes exactly that identifier available again.
	require.NoError(t, m.Release(1234))
	id, err := m.Allocate()
	require.NoError(t, err)
	assert.Equal(t, uint16(1234), id)
}

func TestPacketIDReserve(t *testing.T) {
	m := NewPacketIDManager()

	require.NoError(t, m.Reserve(42))
	assert.True(t, m.IsUsed(42))

	assert.ErrorIs(t, m.Reserve(42), ErrProtocolViolation)
	assert.ErrorIs(t, m.Reserve(0), ErrPacketIDNotFound)

	// Allocation skips the reserved identifier.
	for i := 0; i < 100; i++ {
		id, err := m.Allocate()
		require.NoError(t, err)
		require.NotEqual(t, uint16(42), id)
	}
}
