package ledger

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/axiomesh/axiom-kit/storage"
	"github.com/axiomesh/axiom-kit/storage/leveldb"
	"github.com/pkg/errors"

	"github.com/nam2ee/turtle/core"
)

// Ledger simulates the host platform the bounty state machine runs on:
// an account store with balances and sized record slots, a clock, and
// per-invocation atomicity through journaled transactions. Accounts are
// persisted in leveldb; the same store also backs the off-ledger mirror
// tables the gateway uses for identity-to-slot indexes and profiles.

const (
	accountKeyPrefix = "acct:"
	mirrorKeyPrefix  = "mirror:"
)

// Clock supplies ledger time in unix seconds.
type Clock func() uint64

type Ledger struct {
	db    storage.Storage
	clock Clock

	// One invocation at a time: the platform's single-writer guarantee.
	mu sync.Mutex
}

// New opens (or creates) a ledger under the given repo root.
func New(repoRoot string) (*Ledger, error) {
	db, err := leveldb.New(filepath.Join(repoRoot, "leveldb"))
	if err != nil {
		return nil, errors.Wrap(err, "open ledger storage")
	}
	return &Ledger{
		db: db,
		clock: func() uint64 {
			return uint64(time.Now().Unix())
		},
	}, nil
}

// SetClock replaces the time source, used by tests for deterministic
// timing semantics.
func (l *Ledger) SetClock(c Clock) {
	l.clock = c
}

func accountKey(key core.PubKey) []byte {
	return append([]byte(accountKeyPrefix), key[:]...)
}

func (l *Ledger) loadAccount(key core.PubKey) (*Account, error) {
	data := l.db.Get(accountKey(key))
	if data == nil {
		return nil, nil
	}
	return decodeAccount(data)
}

// Begin opens a journaled transaction. The ledger lock is held until
// Commit or Discard, so no other invocation observes intermediate state.
func (l *Ledger) Begin() *Txn {
	l.mu.Lock()
	return &Txn{
		l:       l,
		now:     l.clock(),
		touched: make(map[core.PubKey]*Account),
	}
}

// Credit funds an account outside any invocation, the host-side faucet.
func (l *Ledger) Credit(key core.PubKey, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	acct, err := l.loadAccount(key)
	if err != nil {
		return err
	}
	if acct == nil {
		acct = &Account{}
	}
	acct.Balance += amount
	l.db.Put(accountKey(key), encodeAccount(acct))
	return nil
}

// Account returns a committed account snapshot, nil when unknown.
func (l *Ledger) Account(key core.PubKey) (*Account, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loadAccount(key)
}

// MirrorPut stores an off-ledger key/value pair under a named table,
// mirroring state that is too awkward to resolve from record slots
// alone (identity-to-slot indexes, profiles).
func (l *Ledger) MirrorPut(table, key string, value []byte) {
	l.db.Put([]byte(mirrorKeyPrefix+table+":"+key), value)
}

// MirrorGet fetches an off-ledger value, nil when absent.
func (l *Ledger) MirrorGet(table, key string) []byte {
	return l.db.Get([]byte(mirrorKeyPrefix + table + ":" + key))
}

var _ core.Ledger = (*Txn)(nil)

// Txn is the core.Ledger view of one invocation. Reads pull committed
// accounts into a journal on first touch; writes stay in the journal
// until Commit. Discard drops everything, which is how a refused
// external operation rolls back an entire invocation.
type Txn struct {
	l       *Ledger
	now     uint64
	touched map[core.PubKey]*Account
	done    bool
}

func (t *Txn) account(key core.PubKey) (*Account, error) {
	if acct, ok := t.touched[key]; ok {
		return acct, nil
	}
	acct, err := t.l.loadAccount(key)
	if err != nil {
		return nil, err
	}
	if acct != nil {
		t.touched[key] = acct
	}
	return acct, nil
}

func (t *Txn) Now() uint64 {
	return t.now
}

func (t *Txn) Read(key core.PubKey) ([]byte, error) {
	acct, err := t.account(key)
	if err != nil {
		return nil, err
	}
	if acct == nil {
		return nil, nil
	}
	return acct.Data, nil
}

func (t *Txn) Write(key core.PubKey, data []byte) error {
	acct, err := t.account(key)
	if err != nil {
		return err
	}
	if acct == nil || !acct.allocated() {
		return errors.Errorf("write to unallocated account %s", key)
	}
	if uint64(len(data)) > acct.Size {
		return errors.Errorf("record of %d bytes exceeds allocation of %d", len(data), acct.Size)
	}
	acct.Data = data
	return nil
}

func (t *Txn) CreateAccount(payer, newAccount core.PubKey, size uint64, owner core.PubKey) error {
	if size == 0 {
		return errors.New("zero-size allocation")
	}
	acct, err := t.account(newAccount)
	if err != nil {
		return err
	}
	if acct != nil && acct.allocated() {
		return errors.Errorf("account %s already exists", newAccount)
	}
	created := &Account{Size: size, Owner: owner}
	if acct != nil {
		// A bare balance holder can be promoted to a record slot.
		created.Balance = acct.Balance
	}
	t.touched[newAccount] = created
	return nil
}

func (t *Txn) Transfer(from, to core.PubKey, amount uint64) error {
	src, err := t.account(from)
	if err != nil {
		return err
	}
	if src == nil {
		src = &Account{}
		t.touched[from] = src
	}
	if src.Balance < amount {
		return errors.Errorf("insufficient funds in %s", from)
	}
	dst, err := t.account(to)
	if err != nil {
		return err
	}
	if dst == nil {
		dst = &Account{}
		t.touched[to] = dst
	}
	src.Balance -= amount
	dst.Balance += amount
	return nil
}

// Commit flushes every touched account and releases the ledger.
func (t *Txn) Commit() error {
	if t.done {
		return errors.New("transaction already finished")
	}
	for key, acct := range t.touched {
		t.l.db.Put(accountKey(key), encodeAccount(acct))
	}
	t.finish()
	return nil
}

// Discard drops the journal and releases the ledger.
func (t *Txn) Discard() {
	if t.done {
		return
	}
	t.finish()
}

func (t *Txn) finish() {
	t.touched = nil
	t.done = true
	t.l.mu.Unlock()
}
