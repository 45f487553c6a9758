package core

import (
	"github.com/pkg/errors"
)

// Ledger is the host platform capability surface the processor consumes.
// All methods are synchronous; any failure is surfaced to callers of
// Process as CodeExternalFailure, and the host is expected to roll back
// the whole invocation.
type Ledger interface {
	// Now returns the current ledger time in unix seconds. It must stay
	// constant within one invocation.
	Now() uint64

	// Read returns the record bytes of a storage slot, nil when the slot
	// has never been allocated.
	Read(key PubKey) ([]byte, error)

	// Write replaces the record bytes of an allocated slot.
	Write(key PubKey, data []byte) error

	// CreateAccount allocates a storage slot of the given size, funded by
	// payer and owned by owner. It fails on an occupied slot.
	CreateAccount(payer, newAccount PubKey, size uint64, owner PubKey) error

	// Transfer moves native token balance between accounts.
	Transfer(from, to PubKey, amount uint64) error
}

var _ Ledger = (*MockLedger)(nil)

// MockLedger is an in-memory Ledger for tests: a flat account map, a
// settable clock, and switches to force collaborator failures.
type MockLedger struct {
	Time     uint64
	Accounts map[PubKey]*MockAccount

	// FailTransfer and FailCreate, when set, are returned by the
	// corresponding operation before any effect.
	FailTransfer error
	FailCreate   error
}

type MockAccount struct {
	Balance uint64
	Owner   PubKey
	Size    uint64
	Data    []byte
}

func NewMockLedger() *MockLedger {
	return &MockLedger{
		Time:     1_700_000_000,
		Accounts: make(map[PubKey]*MockAccount),
	}
}

func (m *MockLedger) Now() uint64 {
	return m.Time
}

func (m *MockLedger) Read(key PubKey) ([]byte, error) {
	acct, ok := m.Accounts[key]
	if !ok {
		return nil, nil
	}
	return acct.Data, nil
}

func (m *MockLedger) Write(key PubKey, data []byte) error {
	acct, ok := m.Accounts[key]
	if !ok {
		return errors.Errorf("write to unallocated account %s", key)
	}
	if uint64(len(data)) > acct.Size {
		return errors.Errorf("record of %d bytes exceeds allocation of %d", len(data), acct.Size)
	}
	acct.Data = data
	return nil
}

func (m *MockLedger) CreateAccount(payer, newAccount PubKey, size uint64, owner PubKey) error {
	if m.FailCreate != nil {
		return m.FailCreate
	}
	if acct, ok := m.Accounts[newAccount]; ok && acct.Size > 0 {
		return errors.Errorf("account %s already exists", newAccount)
	}
	existing := m.Accounts[newAccount]
	acct := &MockAccount{Size: size, Owner: owner}
	if existing != nil {
		acct.Balance = existing.Balance
	}
	m.Accounts[newAccount] = acct
	return nil
}

func (m *MockLedger) Transfer(from, to PubKey, amount uint64) error {
	if m.FailTransfer != nil {
		return m.FailTransfer
	}
	src, ok := m.Accounts[from]
	if !ok {
		src = &MockAccount{}
		m.Accounts[from] = src
	}
	if src.Balance < amount {
		return errors.Errorf("insufficient funds in %s", from)
	}
	dst, ok := m.Accounts[to]
	if !ok {
		dst = &MockAccount{}
		m.Accounts[to] = dst
	}
	src.Balance -= amount
	dst.Balance += amount
	return nil
}

// Credit funds an account out of thin air, the test-side faucet.
func (m *MockLedger) Credit(key PubKey, amount uint64) {
	acct, ok := m.Accounts[key]
	if !ok {
		acct = &MockAccount{}
		m.Accounts[key] = acct
	}
	acct.Balance += amount
}

// Balance reports an account balance, zero for unknown accounts.
func (m *MockLedger) Balance(key PubKey) uint64 {
	if acct, ok := m.Accounts[key]; ok {
		return acct.Balance
	}
	return 0
}
