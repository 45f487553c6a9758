package core

import (
	"github.com/sirupsen/logrus"
)

// Bounty lifecycle: Initialize creates the singleton DAO record,
// SubmitContent resets the countdown, ClaimReward pays the last
// submitter once the countdown has run out.

func (p *Processor) initializeDao(l Ledger, programID PubKey, accounts []AccountMeta, args InitializeDaoArgs) error {
	it := &accountIter{accounts: accounts}

	payer, err := it.take()
	if err != nil {
		return err
	}
	daoAccount, err := it.take()
	if err != nil {
		return err
	}

	if err := requireSigner(payer); err != nil {
		return err
	}
	if args.DepositShare > 100 {
		return newError(CodeInvalidParameter, "deposit share %d exceeds 100", args.DepositShare)
	}

	if err := l.CreateAccount(payer.Key, daoAccount.Key, DaoStateSize, programID); err != nil {
		return wrapExternal(err, "create dao account")
	}

	state := &DaoState{
		Admin:                 payer.Key,
		TimeLimit:             args.TimeLimit,
		BaseFee:               args.BaseFee,
		AiModeration:          args.AiModeration,
		DepositShare:          args.DepositShare,
		LastActivityTimestamp: l.Now(),
	}
	if err := writeDaoState(l, daoAccount.Key, state); err != nil {
		return err
	}

	p.logger.WithFields(logrus.Fields{
		"dao":        daoAccount.Key,
		"time_limit": args.TimeLimit,
		"base_fee":   args.BaseFee,
	}).Info("dao initialized")
	return nil
}

func (p *Processor) submitContent(l Ledger, programID PubKey, accounts []AccountMeta, args SubmitContentArgs) error {
	it := &accountIter{accounts: accounts}

	submitter, err := it.take()
	if err != nil {
		return err
	}
	daoAccount, err := it.take()
	if err != nil {
		return err
	}
	contentAccount, err := it.take()
	if err != nil {
		return err
	}

	if err := requireSigner(submitter); err != nil {
		return err
	}

	state, err := readDaoState(l, daoAccount.Key)
	if err != nil {
		return err
	}

	now := l.Now()

	// Fee first, then allocation, then the record writes. The host's
	// atomicity guarantee unwinds everything if any step refuses.
	if err := l.Transfer(submitter.Key, daoAccount.Key, state.BaseFee); err != nil {
		return wrapExternal(err, "transfer base fee")
	}
	size := ContentSize(args.ContentHash, args.ContentURI)
	if err := l.CreateAccount(submitter.Key, contentAccount.Key, size, programID); err != nil {
		return wrapExternal(err, "create content account")
	}

	content := &Content{
		Author:      submitter.Key,
		ContentHash: args.ContentHash,
		ContentURI:  args.ContentURI,
		Timestamp:   now,
	}
	if err := l.Write(contentAccount.Key, EncodeContent(content)); err != nil {
		return wrapExternal(err, "write content record")
	}

	// The timer reset: every submission restarts the countdown.
	state.LastActivityTimestamp = now
	state.ContentCount++
	if err := writeDaoState(l, daoAccount.Key, state); err != nil {
		return err
	}

	p.logger.WithFields(logrus.Fields{
		"author":  submitter.Key,
		"content": contentAccount.Key,
	}).Info("content submitted, timer reset")
	return nil
}

func (p *Processor) claimReward(l Ledger, programID PubKey, accounts []AccountMeta) error {
	it := &accountIter{accounts: accounts}

	claimer, err := it.take()
	if err != nil {
		return err
	}
	daoAccount, err := it.take()
	if err != nil {
		return err
	}
	contentAccount, err := it.take()
	if err != nil {
		return err
	}

	if err := requireSigner(claimer); err != nil {
		return err
	}

	state, err := readDaoState(l, daoAccount.Key)
	if err != nil {
		return err
	}
	contentData, err := l.Read(contentAccount.Key)
	if err != nil {
		return wrapExternal(err, "read content record")
	}
	content, err := DecodeContent(contentData)
	if err != nil {
		return newError(CodeInvalidAccountData, "%s", err)
	}

	if content.Author != claimer.Key {
		return newError(CodeNotAuthorized, "content belongs to %s", content.Author)
	}

	// The deadline and the last-submitter proof are both re-checked at
	// execution time against the freshly read state: a submission landing
	// between claim submission and claim execution moves
	// LastActivityTimestamp and invalidates this claim.
	now := l.Now()
	if now < state.LastActivityTimestamp+state.TimeLimit {
		return newError(CodeTimeLimitNotReached, "countdown ends at %d, now %d",
			state.LastActivityTimestamp+state.TimeLimit, now)
	}
	if content.Timestamp != state.LastActivityTimestamp {
		return newError(CodeInvalidContent, "content is not the last submission")
	}

	// Truncating division: the remainder of the quality share stays in
	// the pool for later distribution.
	qualityShare := state.TotalDeposit * uint64(state.DepositShare) / 100
	reward := state.TotalDeposit - qualityShare

	if err := l.Transfer(daoAccount.Key, claimer.Key, reward); err != nil {
		return wrapExternal(err, "transfer reward")
	}

	state.TotalDeposit = qualityShare
	if err := writeDaoState(l, daoAccount.Key, state); err != nil {
		return err
	}

	p.logger.WithFields(logrus.Fields{
		"claimer": claimer.Key,
		"reward":  reward,
		"reserve": qualityShare,
	}).Info("reward claimed")
	return nil
}
