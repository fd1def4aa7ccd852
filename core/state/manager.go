package state

import (
	"errors"
	"fmt"
	"sort"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"

	"nftmarket/storage"
)

// ErrClosed is returned once a manager has been committed or discarded.
var ErrClosed = errors.New("state: manager already committed or discarded")

// Manager is a write overlay over the durable store. Reads fall through to
// the database; writes stay in memory until Commit applies them as a single
// batch. A manager is used for exactly one invocation.
type Manager struct {
	db     storage.Database
	dirty  map[string][]byte
	closed bool
}

// NewManager creates an empty overlay on db.
func NewManager(db storage.Database) *Manager {
	return &Manager{db: db, dirty: make(map[string][]byte)}
}

func kvKey(key []byte) []byte {
	return ethcrypto.Keccak256(key)
}

func (m *Manager) get(hashed []byte) ([]byte, error) {
	if m.closed {
		return nil, ErrClosed
	}
	if value, ok := m.dirty[string(hashed)]; ok {
		return value, nil
	}
	value, err := m.db.Get(hashed)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	return value, err
}

func (m *Manager) put(hashed []byte, value []byte) error {
	if m.closed {
		return ErrClosed
	}
	m.dirty[string(hashed)] = value
	return nil
}

// KVPut stores the provided value under the supplied key using RLP encoding.
// The key is hashed with keccak256 before it reaches the store.
func (m *Manager) KVPut(key []byte, value interface{}) error {
	if len(key) == 0 {
		return fmt.Errorf("kv: key must not be empty")
	}
	encoded, err := rlp.EncodeToBytes(value)
	if err != nil {
		return err
	}
	return m.put(kvKey(key), encoded)
}

// KVGet retrieves the value stored under the supplied key and decodes it into
// the provided destination. The boolean return value indicates whether the key
// existed in state.
func (m *Manager) KVGet(key []byte, out interface{}) (bool, error) {
	if len(key) == 0 {
		return false, fmt.Errorf("kv: key must not be empty")
	}
	data, err := m.get(kvKey(key))
	if err != nil {
		return false, err
	}
	if len(data) == 0 {
		return false, nil
	}
	if out == nil {
		return true, nil
	}
	if err := rlp.DecodeBytes(data, out); err != nil {
		return false, err
	}
	return true, nil
}

// Pending reports how many keys the overlay will write on Commit.
func (m *Manager) Pending() int { return len(m.dirty) }

// Commit writes every pending change in one batch and closes the manager.
func (m *Manager) Commit() error {
	if m.closed {
		return ErrClosed
	}
	m.closed = true
	if len(m.dirty) == 0 {
		return nil
	}
	keys := make([]string, 0, len(m.dirty))
	for key := range m.dirty {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	batch := m.db.NewBatch()
	for _, key := range keys {
		batch.Put([]byte(key), m.dirty[key])
	}
	m.dirty = nil
	return batch.Write()
}

// Discard drops every pending change and closes the manager.
func (m *Manager) Discard() {
	m.closed = true
	m.dirty = nil
}
