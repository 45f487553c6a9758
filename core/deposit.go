package core

import (
	"github.com/sirupsen/logrus"
)

// Deposit upserts the caller's depositor record. The record is keyed by
// a caller-supplied storage slot; the slot may hold either nothing (first
// deposit) or a record carrying the caller's own identity. Voting power
// is recomputed to the cumulative amount, never accumulated separately.
func (p *Processor) deposit(l Ledger, programID PubKey, accounts []AccountMeta, args DepositArgs) error {
	it := &accountIter{accounts: accounts}

	depositor, err := it.take()
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

	if err := requireSigner(depositor); err != nil {
		return err
	}

	state, err := readDaoState(l, daoAccount.Key)
	if err != nil {
		return err
	}

	if err := l.Transfer(depositor.Key, daoAccount.Key, args.Amount); err != nil {
		return wrapExternal(err, "transfer deposit")
	}

	now := l.Now()

	recordData, err := l.Read(depositorAccount.Key)
	if err != nil {
		return wrapExternal(err, "read depositor record")
	}
	if len(recordData) > 0 {
		record, err := DecodeDepositor(recordData)
		if err != nil {
			return newError(CodeInvalidAccountData, "%s", err)
		}
		if record.PubKey != depositor.Key {
			return newError(CodeInvalidAccountData, "slot occupied by depositor %s", record.PubKey)
		}
		record.Amount += args.Amount
		record.LockedUntil = now + DepositLockPeriod
		record.VotingPower = record.Amount
		if err := l.Write(depositorAccount.Key, EncodeDepositor(record)); err != nil {
			return wrapExternal(err, "write depositor record")
		}
	} else {
		if err := l.CreateAccount(depositor.Key, depositorAccount.Key, DepositorSize, programID); err != nil {
			return wrapExternal(err, "create depositor account")
		}
		record := &Depositor{
			PubKey:      depositor.Key,
			Amount:      args.Amount,
			LockedUntil: now + DepositLockPeriod,
			VotingPower: args.Amount,
		}
		if err := l.Write(depositorAccount.Key, EncodeDepositor(record)); err != nil {
			return wrapExternal(err, "write depositor record")
		}
		state.DepositorCount++
	}

	state.TotalDeposit += args.Amount
	if err := writeDaoState(l, daoAccount.Key, state); err != nil {
		return err
	}

	p.logger.WithFields(logrus.Fields{
		"depositor": depositor.Key,
		"amount":    args.Amount,
	}).Info("deposit recorded")
	return nil
}
