package core

import (
	"fmt"

	"github.com/mr-tron/base58"
)

const (
	// DepositLockPeriod is how long a deposit is locked after each top-up,
	// one week in seconds.
	DepositLockPeriod uint64 = 7 * 24 * 60 * 60

	// MinVotingPeriod is the shortest voting period a proposal may declare,
	// one week in seconds.
	MinVotingPeriod uint64 = 7 * 24 * 60 * 60
)

// PubKey is a raw 32-byte ledger account key. The text form is base58,
// matching how account keys circulate off-ledger.
type PubKey [32]byte

func (k PubKey) String() string {
	return base58.Encode(k[:])
}

func (k PubKey) IsZero() bool {
	return k == PubKey{}
}

// PubKeyFromBytes copies b into a PubKey and rejects any other length.
func PubKeyFromBytes(b []byte) (PubKey, error) {
	var k PubKey
	if len(b) != len(k) {
		return k, fmt.Errorf("pubkey must be %d bytes, got %d", len(k), len(b))
	}
	copy(k[:], b)
	return k, nil
}

// PubKeyFromBase58 parses the base58 text form of an account key.
func PubKeyFromBase58(s string) (PubKey, error) {
	b, err := base58.Decode(s)
	if err != nil {
		return PubKey{}, fmt.Errorf("decode pubkey %q: %w", s, err)
	}
	return PubKeyFromBytes(b)
}

type ProposalType uint8

const (
	// ProposalTimeLimit changes the countdown the bounty timer resets to.
	ProposalTimeLimit ProposalType = iota

	// ProposalBaseFee changes the submission fee.
	ProposalBaseFee

	// ProposalAiModeration toggles the moderation flag, any non-zero
	// new value enables it.
	ProposalAiModeration
)

func (t ProposalType) String() string {
	switch t {
	case ProposalTimeLimit:
		return "time_limit"
	case ProposalBaseFee:
		return "base_fee"
	case ProposalAiModeration:
		return "ai_moderation"
	default:
		return "unknown"
	}
}

func (t ProposalType) valid() bool {
	return t <= ProposalAiModeration
}

// DaoState is the singleton record of a bounty instance. Every handler
// except a non-executing Vote mutates it; it is never deleted.
type DaoState struct {
	Admin                 PubKey
	TimeLimit             uint64
	BaseFee               uint64
	AiModeration          bool
	DepositShare          uint8
	LastActivityTimestamp uint64
	TotalDeposit          uint64
	ActiveProposalCount   uint64
	ContentCount          uint64
	DepositorCount        uint64
}

// Content is written once at submission and only read afterwards. Its
// Timestamp equals the DaoState's LastActivityTimestamp at submission
// time, which is what later proves "this is the last submission".
type Content struct {
	Author      PubKey
	ContentHash string
	ContentURI  string
	Timestamp   uint64

	// Votes is a reserved accumulator, nothing writes it yet.
	Votes uint64
}

// Depositor tracks cumulative deposits per identity. Voting power always
// equals the cumulative amount. There is no withdrawal path, so
// LockedUntil is written and never read.
type Depositor struct {
	PubKey      PubKey
	Amount      uint64
	LockedUntil uint64
	VotingPower uint64
}

// Proposal is a governance ballot. IsExecuted latches false to true at
// most once and never reverts; a proposal whose deadline passes with
// yes <= no simply stays unexecuted forever.
type Proposal struct {
	ID            uint64
	Type          ProposalType
	NewValue      uint64
	VotingEndTime uint64
	YesVotes      uint64
	NoVotes       uint64
	IsExecuted    bool
}
