package mqtt

import (
	"errors"
	"sync"
)

// Packet identifier errors.
var ErrPacketIDNotFound = errors.New("mqtt: packet ID not found")

// PacketIDManager manages allocation and release of packet identifiers
// (1-65535). An identifier is a scarce resource: an outbound exchange
// reserves one until its acknowledgement flow completes; reuse of an
// identifier still in flight is an error.
type PacketIDManager struct {
	mu   sync.Mutex
	used map[uint16]struct{}
	next uint16
}

// NewPacketIDManager creates a new packet ID manager.
func NewPacketIDManager() *PacketIDManager {
	return &PacketIDManager{
		used: make(map[uint16]struct{}),
		next: 1,
	}
}

// Allocate returns the next available packet ID, or ErrPacketIDExhausted
// when all 65535 identifiers are in flight.
func (m *PacketIDManager) Allocate() (uint16, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.used) >= maxUint16 {
		return 0, ErrPacketIDExhausted
	}

	start := m.next
	for {
		if _, ok := m.used[m.next]; !ok {
			id := m.next
			m.used[id] = struct{}{}
			m.advance()
			return id, nil
		}
		m.advance()
		if m.next == start {
			return 0, ErrPacketIDExhausted
		}
	}
}

// advance moves the cursor, skipping the reserved zero value.
func (m *PacketIDManager) advance() {
	m.next++
	if m.next == 0 {
		m.next = 1
	}
}

// Reserve marks a specific packet ID as in use, for resuming a session
// whose exchanges still hold their original identifiers.
func (m *PacketIDManager) Reserve(id uint16) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id == 0 {
		return ErrPacketIDNotFound
	}
	if _, ok := m.used[id]; ok {
		return violationf("packet ID %d already in flight", id)
	}
	m.used[id] = struct{}{}
	return nil
}

// Release releases a packet ID for reuse.
func (m *PacketIDManager) Release(id uint16) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.used[id]; !ok {
		return ErrPacketIDNotFound
	}
	delete(m.used, id)
	return nil
}

// IsUsed returns true if the packet ID is currently in use.
func (m *PacketIDManager) IsUsed(id uint16) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.used[id]
	return ok
}

// InUse returns the count of packet IDs currently in use.
func (m *PacketIDManager) InUse() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.used)
}
