package core

import (
	"github.com/sirupsen/logrus"
)

// Governance: CreateVote opens a weighted proposal, Vote tallies voting
// power and doubles as the execution trigger. There is no scheduler;
// an approved proposal only executes as a side effect of some vote
// arriving at or after its deadline.

func (p *Processor) createVote(l Ledger, programID PubKey, accounts []AccountMeta, args CreateVoteArgs) error {
	it := &accountIter{accounts: accounts}

	proposer, err := it.take()
	if err != nil {
		return err
	}
	daoAccount, err := it.take()
	if err != nil {
		return err
	}
	depositorAccount, err := it.take()
	if err != nil {
		return err
	}
	proposalAccount, err := it.take()
	if err != nil {
		return err
	}

	if err := requireSigner(proposer); err != nil {
		return err
	}
	// Deposit standing is the only requirement to propose.
	if _, err := requireDepositorIdentity(l, depositorAccount.Key, proposer.Key); err != nil {
		return err
	}
	if !args.Type.valid() {
		return newError(CodeInvalidProposal, "unknown proposal type %d", args.Type)
	}
	if args.VotingPeriod < MinVotingPeriod {
		return newError(CodeInvalidProposal, "voting period %d below minimum %d", args.VotingPeriod, MinVotingPeriod)
	}

	state, err := readDaoState(l, daoAccount.Key)
	if err != nil {
		return err
	}

	if err := l.CreateAccount(proposer.Key, proposalAccount.Key, ProposalSize, programID); err != nil {
		return wrapExternal(err, "create proposal account")
	}

	proposal := &Proposal{
		ID:            state.ActiveProposalCount,
		Type:          args.Type,
		NewValue:      args.NewValue,
		VotingEndTime: l.Now() + args.VotingPeriod,
	}
	if err := l.Write(proposalAccount.Key, EncodeProposal(proposal)); err != nil {
		return wrapExternal(err, "write proposal record")
	}

	state.ActiveProposalCount++
	if err := writeDaoState(l, daoAccount.Key, state); err != nil {
		return err
	}

	p.logger.WithFields(logrus.Fields{
		"proposal": proposal.ID,
		"type":     proposal.Type,
	}).Info("proposal created")
	return nil
}

func (p *Processor) vote(l Ledger, programID PubKey, accounts []AccountMeta, args VoteArgs) error {
	it := &accountIter{accounts: accounts}

	voter, err := it.take()
	if err != nil {
		return err
	}
	daoAccount, err := it.take()
	if err != nil {
		return err
	}
	depositorAccount, err := it.take()
	if err != nil {
		return err
	}
	proposalAccount, err := it.take()
	if err != nil {
		return err
	}

	if err := requireSigner(voter); err != nil {
		return err
	}
	record, err := requireDepositorIdentity(l, depositorAccount.Key, voter.Key)
	if err != nil {
		return err
	}

	state, err := readDaoState(l, daoAccount.Key)
	if err != nil {
		return err
	}
	proposalData, err := l.Read(proposalAccount.Key)
	if err != nil {
		return wrapExternal(err, "read proposal record")
	}
	proposal, err := DecodeProposal(proposalData)
	if err != nil {
		return newError(CodeInvalidAccountData, "%s", err)
	}

	if proposal.ID != args.ProposalID {
		return newError(CodeInvalidProposal, "account holds proposal %d, not %d", proposal.ID, args.ProposalID)
	}

	// Strictly greater: a vote landing in the exact closing second still
	// counts, and is also what triggers execution below.
	now := l.Now()
	if now > proposal.VotingEndTime {
		return newError(CodeInvalidProposal, "voting closed at %d", proposal.VotingEndTime)
	}

	if args.Approve {
		proposal.YesVotes += record.VotingPower
	} else {
		proposal.NoVotes += record.VotingPower
	}

	executed := false
	if now >= proposal.VotingEndTime && !proposal.IsExecuted {
		if proposal.YesVotes > proposal.NoVotes {
			switch proposal.Type {
			case ProposalTimeLimit:
				state.TimeLimit = proposal.NewValue
			case ProposalBaseFee:
				state.BaseFee = proposal.NewValue
			case ProposalAiModeration:
				state.AiModeration = proposal.NewValue != 0
			}
			if err := writeDaoState(l, daoAccount.Key, state); err != nil {
				return err
			}
			proposal.IsExecuted = true
			executed = true
		}
		// A tie or a no-majority leaves IsExecuted false for good;
		// rejected proposals are never retried.
	}

	if err := l.Write(proposalAccount.Key, EncodeProposal(proposal)); err != nil {
		return wrapExternal(err, "write proposal record")
	}

	p.logger.WithFields(logrus.Fields{
		"proposal": proposal.ID,
		"voter":    voter.Key,
		"approve":  args.Approve,
		"weight":   record.VotingPower,
		"executed": executed,
	}).Info("vote recorded")
	return nil
}
