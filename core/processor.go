package core

import (
	"github.com/axiomesh/axiom-kit/log"
	"github.com/sirupsen/logrus"
)

// Processor is the instruction-processing state machine. It holds no
// state of its own: every Process call is a pure function of the records
// reachable through the supplied ledger, the instruction, the caller
// identity asserted by the account metas, and the ledger clock.
type Processor struct {
	logger *logrus.Logger
}

func NewProcessor(logger *logrus.Logger) *Processor {
	if logger == nil {
		logger = log.New()
	}
	return &Processor{logger: logger}
}

// Process decodes the opcode-tagged instruction and applies exactly one
// handler. On any typed failure no record mutation may be considered
// committed; the host discards the invocation's writes.
func (p *Processor) Process(l Ledger, programID PubKey, accounts []AccountMeta, data []byte) error {
	if len(data) == 0 {
		return newError(CodeMalformedInstruction, "empty instruction data")
	}
	r := newRecReader(data[1:])
	op := Opcode(data[0])

	switch op {
	case OpInitializeDao:
		args, err := decodeInitializeDao(r)
		if err != nil {
			return newError(CodeMalformedInstruction, "%s", err)
		}
		return p.initializeDao(l, programID, accounts, args)
	case OpSubmitContent:
		args, err := decodeSubmitContent(r)
		if err != nil {
			return newError(CodeMalformedInstruction, "%s", err)
		}
		return p.submitContent(l, programID, accounts, args)
	case OpDeposit:
		args, err := decodeDeposit(r)
		if err != nil {
			return newError(CodeMalformedInstruction, "%s", err)
		}
		return p.deposit(l, programID, accounts, args)
	case OpClaimReward:
		if err := r.finish("claim_reward"); err != nil {
			return newError(CodeMalformedInstruction, "%s", err)
		}
		return p.claimReward(l, programID, accounts)
	case OpCreateVote:
		args, err := decodeCreateVote(r)
		if err != nil {
			return newError(CodeMalformedInstruction, "%s", err)
		}
		return p.createVote(l, programID, accounts, args)
	case OpVote:
		args, err := decodeVote(r)
		if err != nil {
			return newError(CodeMalformedInstruction, "%s", err)
		}
		return p.vote(l, programID, accounts, args)
	case OpDistributeQualityRewards:
		args, err := decodeDistributeQualityRewards(r)
		if err != nil {
			return newError(CodeMalformedInstruction, "%s", err)
		}
		return p.distributeQualityRewards(l, programID, accounts, args)
	default:
		return newError(CodeMalformedInstruction, "unknown opcode %d", data[0])
	}
}

// accountIter walks the ordered account list the way the handlers
// consume it, positionally.
type accountIter struct {
	accounts []AccountMeta
	next     int
}

func (it *accountIter) take() (AccountMeta, error) {
	if it.next >= len(it.accounts) {
		return AccountMeta{}, newError(CodeMalformedInstruction, "account %d missing", it.next)
	}
	meta := it.accounts[it.next]
	it.next++
	return meta, nil
}

func requireSigner(meta AccountMeta) error {
	if !meta.Signer {
		return newError(CodeMissingSignature, "account %s must sign", meta.Key)
	}
	return nil
}

// requireDepositorIdentity proves the caller holds deposit standing: the
// supplied record must decode and carry the caller's own identity.
func requireDepositorIdentity(l Ledger, slot, caller PubKey) (*Depositor, error) {
	data, err := l.Read(slot)
	if err != nil {
		return nil, wrapExternal(err, "read depositor record")
	}
	dep, err := DecodeDepositor(data)
	if err != nil {
		return nil, newError(CodeInvalidAccountData, "%s", err)
	}
	if dep.PubKey != caller {
		return nil, newError(CodeNotAuthorized, "depositor record belongs to %s, not %s", dep.PubKey, caller)
	}
	return dep, nil
}

func readDaoState(l Ledger, slot PubKey) (*DaoState, error) {
	data, err := l.Read(slot)
	if err != nil {
		return nil, wrapExternal(err, "read dao state")
	}
	s, err := DecodeDaoState(data)
	if err != nil {
		return nil, newError(CodeInvalidAccountData, "%s", err)
	}
	return s, nil
}

func writeDaoState(l Ledger, slot PubKey, s *DaoState) error {
	if err := l.Write(slot, EncodeDaoState(s)); err != nil {
		return wrapExternal(err, "write dao state")
	}
	return nil
}
