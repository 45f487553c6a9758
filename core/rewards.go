package core

import (
	"github.com/sirupsen/logrus"
)

// distributeQualityRewards pays the reserved quality share out to the
// listed creators by weight. Per-entry truncation may strand a few units;
// they are discarded when the pool is zeroed at the end, never carried
// forward.
func (p *Processor) distributeQualityRewards(l Ledger, programID PubKey, accounts []AccountMeta, args DistributeQualityRewardsArgs) error {
	it := &accountIter{accounts: accounts}

	admin, err := it.take()
	if err != nil {
		return err
	}
	daoAccount, err := it.take()
	if err != nil {
		return err
	}

	if err := requireSigner(admin); err != nil {
		return err
	}

	state, err := readDaoState(l, daoAccount.Key)
	if err != nil {
		return err
	}
	if state.Admin != admin.Key {
		return newError(CodeNotAdmin, "admin is %s", state.Admin)
	}

	var sum uint64
	for _, w := range args.Weights {
		sum += uint64(w)
	}
	if sum != 100 {
		return newError(CodeInvalidDistribution, "weights sum to %d, want 100", sum)
	}
	if len(args.Creators) != len(args.Weights) {
		return newError(CodeInvalidDistribution, "%d creators but %d weights", len(args.Creators), len(args.Weights))
	}

	pool := state.TotalDeposit
	for i, creator := range args.Creators {
		meta, err := it.take()
		if err != nil {
			return err
		}
		if meta.Key != creator {
			return newError(CodeInvalidParameter, "account %s does not match creator %s at position %d", meta.Key, creator, i)
		}

		reward := pool * uint64(args.Weights[i]) / 100
		if err := l.Transfer(daoAccount.Key, meta.Key, reward); err != nil {
			return wrapExternal(err, "transfer creator reward")
		}

		p.logger.WithFields(logrus.Fields{
			"creator": creator,
			"reward":  reward,
		}).Debug("quality reward paid")
	}

	state.TotalDeposit = 0
	if err := writeDaoState(l, daoAccount.Key, state); err != nil {
		return err
	}

	p.logger.WithField("pool", pool).Info("quality rewards distributed")
	return nil
}
