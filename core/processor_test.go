package core

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func testKey(b byte) PubKey {
	var k PubKey
	k[0] = b
	return k
}

var (
	testProgram = testKey(0xaa)
	testDao     = testKey(0xbb)
	testAdmin   = testKey(0x01)
)

func initDao(t *testing.T, l *MockLedger, timeLimit, baseFee uint64, share uint8) *Processor {
	t.Helper()
	p := NewProcessor(nil)
	ins := NewInitializeDaoInstruction(testProgram, testAdmin, testDao, InitializeDaoArgs{
		TimeLimit:    timeLimit,
		BaseFee:      baseFee,
		DepositShare: share,
	})
	err := p.Process(l, ins.ProgramID, ins.Accounts, ins.Data)
	assert.Nil(t, err)
	return p
}

func daoState(t *testing.T, l *MockLedger) *DaoState {
	t.Helper()
	data, err := l.Read(testDao)
	assert.Nil(t, err)
	s, err := DecodeDaoState(data)
	assert.Nil(t, err)
	return s
}

func TestInitializeDao(t *testing.T) {
	l := NewMockLedger()
	initDao(t, l, 3600, 50, 20)

	s := daoState(t, l)
	assert.Equal(t, testAdmin, s.Admin)
	assert.Equal(t, uint64(3600), s.TimeLimit)
	assert.Equal(t, uint64(50), s.BaseFee)
	assert.Equal(t, uint8(20), s.DepositShare)
	assert.Equal(t, l.Time, s.LastActivityTimestamp)
	assert.Equal(t, uint64(0), s.TotalDeposit)
}

func TestInitializeDaoShareOutOfRange(t *testing.T) {
	l := NewMockLedger()
	p := NewProcessor(nil)
	ins := NewInitializeDaoInstruction(testProgram, testAdmin, testDao, InitializeDaoArgs{
		TimeLimit:    3600,
		DepositShare: 101,
	})
	err := p.Process(l, ins.ProgramID, ins.Accounts, ins.Data)
	assert.Equal(t, CodeInvalidParameter, CodeOf(err))
}

func TestInitializeDaoRequiresSignature(t *testing.T) {
	l := NewMockLedger()
	p := NewProcessor(nil)
	ins := NewInitializeDaoInstruction(testProgram, testAdmin, testDao, InitializeDaoArgs{TimeLimit: 3600})
	ins.Accounts[0].Signer = false
	err := p.Process(l, ins.ProgramID, ins.Accounts, ins.Data)
	assert.Equal(t, CodeMissingSignature, CodeOf(err))
}

func TestSubmitContentResetsTimer(t *testing.T) {
	l := NewMockLedger()
	p := initDao(t, l, 3600, 50, 20)

	author := testKey(0x02)
	l.Credit(author, 1000)

	l.Time += 100
	content := testKey(0xc1)
	ins := NewSubmitContentInstruction(testProgram, author, testDao, content, SubmitContentArgs{
		ContentHash: "Qmhash",
		ContentURI:  "ipfs://Qmhash",
	})
	err := p.Process(l, ins.ProgramID, ins.Accounts, ins.Data)
	assert.Nil(t, err)

	s := daoState(t, l)
	assert.Equal(t, l.Time, s.LastActivityTimestamp)
	assert.Equal(t, uint64(1), s.ContentCount)
	assert.Equal(t, uint64(950), l.Balance(author))
	assert.Equal(t, uint64(50), l.Balance(testDao))

	data, err := l.Read(content)
	assert.Nil(t, err)
	ct, err := DecodeContent(data)
	assert.Nil(t, err)
	assert.Equal(t, author, ct.Author)
	assert.Equal(t, "Qmhash", ct.ContentHash)
	assert.Equal(t, l.Time, ct.Timestamp)
}

func TestSubmitContentInsufficientFee(t *testing.T) {
	l := NewMockLedger()
	p := initDao(t, l, 3600, 50, 20)

	author := testKey(0x02)
	ins := NewSubmitContentInstruction(testProgram, author, testDao, testKey(0xc1), SubmitContentArgs{
		ContentHash: "h", ContentURI: "u",
	})
	err := p.Process(l, ins.ProgramID, ins.Accounts, ins.Data)
	assert.Equal(t, CodeExternalFailure, CodeOf(err))
}

func submit(t *testing.T, p *Processor, l *MockLedger, author, content PubKey) {
	t.Helper()
	ins := NewSubmitContentInstruction(testProgram, author, testDao, content, SubmitContentArgs{
		ContentHash: "h", ContentURI: "u",
	})
	err := p.Process(l, ins.ProgramID, ins.Accounts, ins.Data)
	assert.Nil(t, err)
}

func deposit(t *testing.T, p *Processor, l *MockLedger, identity, slot PubKey, amount uint64) error {
	t.Helper()
	ins := NewDepositInstruction(testProgram, identity, testDao, slot, DepositArgs{Amount: amount})
	return p.Process(l, ins.ProgramID, ins.Accounts, ins.Data)
}

func TestClaimRewardSplitsPool(t *testing.T) {
	l := NewMockLedger()
	p := initDao(t, l, 3600, 0, 20)

	funder := testKey(0x03)
	l.Credit(funder, 1_000_000_000)
	assert.Nil(t, deposit(t, p, l, funder, testKey(0xd1), 1_000_000_000))

	author := testKey(0x02)
	content := testKey(0xc1)
	submit(t, p, l, author, content)

	l.Time += 3600
	ins := NewClaimRewardInstruction(testProgram, author, testDao, content)
	err := p.Process(l, ins.ProgramID, ins.Accounts, ins.Data)
	assert.Nil(t, err)

	// 20% quality share stays behind, 80% pays out.
	assert.Equal(t, uint64(800_000_000), l.Balance(author))
	assert.Equal(t, uint64(200_000_000), l.Balance(testDao))
	assert.Equal(t, uint64(200_000_000), daoState(t, l).TotalDeposit)
}

func TestClaimRewardBeforeDeadline(t *testing.T) {
	l := NewMockLedger()
	p := initDao(t, l, 3600, 0, 0)

	author := testKey(0x02)
	content := testKey(0xc1)
	submit(t, p, l, author, content)

	l.Time += 3599
	ins := NewClaimRewardInstruction(testProgram, author, testDao, content)
	err := p.Process(l, ins.ProgramID, ins.Accounts, ins.Data)
	assert.Equal(t, CodeTimeLimitNotReached, CodeOf(err))
}

func TestClaimRewardWrongAuthor(t *testing.T) {
	l := NewMockLedger()
	p := initDao(t, l, 3600, 0, 0)

	author := testKey(0x02)
	content := testKey(0xc1)
	submit(t, p, l, author, content)

	l.Time += 3600
	other := testKey(0x04)
	ins := NewClaimRewardInstruction(testProgram, other, testDao, content)
	err := p.Process(l, ins.ProgramID, ins.Accounts, ins.Data)
	assert.Equal(t, CodeNotAuthorized, CodeOf(err))
}

func TestClaimRewardOnlyLastSubmission(t *testing.T) {
	l := NewMockLedger()
	p := initDao(t, l, 3600, 0, 0)

	first := testKey(0x02)
	firstContent := testKey(0xc1)
	submit(t, p, l, first, firstContent)

	// A later submission moves the countdown and orphans the first claim.
	l.Time += 100
	second := testKey(0x03)
	submit(t, p, l, second, testKey(0xc2))

	l.Time += 3600
	ins := NewClaimRewardInstruction(testProgram, first, testDao, firstContent)
	err := p.Process(l, ins.ProgramID, ins.Accounts, ins.Data)
	assert.Equal(t, CodeInvalidContent, CodeOf(err))
}

func TestClaimRewardReplayPaysNothing(t *testing.T) {
	l := NewMockLedger()
	p := initDao(t, l, 3600, 0, 0)

	funder := testKey(0x03)
	l.Credit(funder, 500)
	assert.Nil(t, deposit(t, p, l, funder, testKey(0xd1), 500))

	author := testKey(0x02)
	content := testKey(0xc1)
	submit(t, p, l, author, content)

	l.Time += 3600
	ins := NewClaimRewardInstruction(testProgram, author, testDao, content)
	assert.Nil(t, p.Process(l, ins.ProgramID, ins.Accounts, ins.Data))
	assert.Equal(t, uint64(500), l.Balance(author))

	// With a zero share the pool is fully drained; the claim replays
	// cleanly but moves nothing.
	assert.Nil(t, p.Process(l, ins.ProgramID, ins.Accounts, ins.Data))
	assert.Equal(t, uint64(500), l.Balance(author))
	assert.Equal(t, uint64(0), daoState(t, l).TotalDeposit)
}

func TestDepositCreatesRecord(t *testing.T) {
	l := NewMockLedger()
	p := initDao(t, l, 3600, 0, 0)

	identity := testKey(0x05)
	slot := testKey(0xd1)
	l.Credit(identity, 1000)

	assert.Nil(t, deposit(t, p, l, identity, slot, 400))

	data, err := l.Read(slot)
	assert.Nil(t, err)
	rec, err := DecodeDepositor(data)
	assert.Nil(t, err)
	assert.Equal(t, identity, rec.PubKey)
	assert.Equal(t, uint64(400), rec.Amount)
	assert.Equal(t, uint64(400), rec.VotingPower)
	assert.Equal(t, l.Time+DepositLockPeriod, rec.LockedUntil)

	s := daoState(t, l)
	assert.Equal(t, uint64(400), s.TotalDeposit)
	assert.Equal(t, uint64(1), s.DepositorCount)
	assert.Equal(t, uint64(400), l.Balance(testDao))
}

func TestDepositAccumulates(t *testing.T) {
	l := NewMockLedger()
	p := initDao(t, l, 3600, 0, 0)

	identity := testKey(0x05)
	slot := testKey(0xd1)
	l.Credit(identity, 1000)

	assert.Nil(t, deposit(t, p, l, identity, slot, 400))
	l.Time += 1000
	assert.Nil(t, deposit(t, p, l, identity, slot, 100))

	data, _ := l.Read(slot)
	rec, err := DecodeDepositor(data)
	assert.Nil(t, err)
	assert.Equal(t, uint64(500), rec.Amount)
	assert.Equal(t, uint64(500), rec.VotingPower)
	// Each top-up restarts the lock.
	assert.Equal(t, l.Time+DepositLockPeriod, rec.LockedUntil)

	s := daoState(t, l)
	assert.Equal(t, uint64(500), s.TotalDeposit)
	assert.Equal(t, uint64(1), s.DepositorCount)
}

func TestDepositSecondIdentityDistinctSlot(t *testing.T) {
	l := NewMockLedger()
	p := initDao(t, l, 3600, 0, 0)

	first := testKey(0x05)
	firstSlot := testKey(0xd1)
	l.Credit(first, 1000)
	assert.Nil(t, deposit(t, p, l, first, firstSlot, 400))

	second := testKey(0x06)
	secondSlot := testKey(0xd2)
	l.Credit(second, 1000)
	assert.Nil(t, deposit(t, p, l, second, secondSlot, 300))

	// The first record is untouched by the second identity's deposit.
	data, _ := l.Read(firstSlot)
	rec, err := DecodeDepositor(data)
	assert.Nil(t, err)
	assert.Equal(t, first, rec.PubKey)
	assert.Equal(t, uint64(400), rec.Amount)
	assert.Equal(t, uint64(400), rec.VotingPower)

	data, _ = l.Read(secondSlot)
	rec, err = DecodeDepositor(data)
	assert.Nil(t, err)
	assert.Equal(t, second, rec.PubKey)
	assert.Equal(t, uint64(300), rec.Amount)

	s := daoState(t, l)
	assert.Equal(t, uint64(2), s.DepositorCount)
	assert.Equal(t, uint64(700), s.TotalDeposit)
}

func TestDepositSlotOwnedByOther(t *testing.T) {
	l := NewMockLedger()
	p := initDao(t, l, 3600, 0, 0)

	first := testKey(0x05)
	slot := testKey(0xd1)
	l.Credit(first, 1000)
	assert.Nil(t, deposit(t, p, l, first, slot, 400))

	second := testKey(0x06)
	l.Credit(second, 1000)
	err := deposit(t, p, l, second, slot, 100)
	assert.Equal(t, CodeInvalidAccountData, CodeOf(err))
}

func TestDepositInsufficientFunds(t *testing.T) {
	l := NewMockLedger()
	p := initDao(t, l, 3600, 0, 0)

	identity := testKey(0x05)
	err := deposit(t, p, l, identity, testKey(0xd1), 400)
	assert.Equal(t, CodeExternalFailure, CodeOf(err))
}

func TestCollaboratorFailureSurfaces(t *testing.T) {
	l := NewMockLedger()
	p := initDao(t, l, 3600, 50, 0)

	l.FailTransfer = errors.New("rpc unavailable")
	author := testKey(0x02)
	l.Credit(author, 1000)
	ins := NewSubmitContentInstruction(testProgram, author, testDao, testKey(0xc1), SubmitContentArgs{
		ContentHash: "h", ContentURI: "u",
	})
	err := p.Process(l, ins.ProgramID, ins.Accounts, ins.Data)
	assert.Equal(t, CodeExternalFailure, CodeOf(err))
}

func TestUnknownOpcode(t *testing.T) {
	l := NewMockLedger()
	p := NewProcessor(nil)
	err := p.Process(l, testProgram, nil, []byte{0x7f})
	assert.Equal(t, CodeMalformedInstruction, CodeOf(err))

	err = p.Process(l, testProgram, nil, nil)
	assert.Equal(t, CodeMalformedInstruction, CodeOf(err))
}

func TestTruncatedInstruction(t *testing.T) {
	l := NewMockLedger()
	p := NewProcessor(nil)
	// Deposit carries a u64 amount; a single trailing byte cannot decode.
	err := p.Process(l, testProgram, nil, []byte{byte(OpDeposit), 0x01})
	assert.Equal(t, CodeMalformedInstruction, CodeOf(err))
}

func TestOverlongInstructionRejected(t *testing.T) {
	l := NewMockLedger()
	p := NewProcessor(nil)

	// Payloads must be consumed exactly; trailing bytes are refused.
	data := append(EncodeDeposit(DepositArgs{Amount: 5}), 0x00)
	err := p.Process(l, testProgram, nil, data)
	assert.Equal(t, CodeMalformedInstruction, CodeOf(err))

	data = append(EncodeClaimReward(), 0x01)
	err = p.Process(l, testProgram, nil, data)
	assert.Equal(t, CodeMalformedInstruction, CodeOf(err))
}
