package core

// Instructions arrive as an opcode byte followed by the argument fields
// in declaration order, using the same binary layout as the records.

type Opcode uint8

const (
	OpInitializeDao Opcode = iota
	OpSubmitContent
	OpDeposit
	OpClaimReward
	OpCreateVote
	OpVote
	OpDistributeQualityRewards
)

func (o Opcode) String() string {
	switch o {
	case OpInitializeDao:
		return "initialize_dao"
	case OpSubmitContent:
		return "submit_content"
	case OpDeposit:
		return "deposit"
	case OpClaimReward:
		return "claim_reward"
	case OpCreateVote:
		return "create_vote"
	case OpVote:
		return "vote"
	case OpDistributeQualityRewards:
		return "distribute_quality_rewards"
	default:
		return "unknown"
	}
}

// AccountMeta is one entry of the ordered account list delivered with an
// instruction. Signer and Writable are asserted by the host platform.
type AccountMeta struct {
	Key      PubKey
	Signer   bool
	Writable bool
}

// Instruction pairs the encoded payload with the accounts it touches,
// ready to hand to a processor.
type Instruction struct {
	ProgramID PubKey
	Accounts  []AccountMeta
	Data      []byte
}

type InitializeDaoArgs struct {
	TimeLimit    uint64
	BaseFee      uint64
	AiModeration bool
	DepositShare uint8
}

type SubmitContentArgs struct {
	ContentHash string
	ContentURI  string
}

type DepositArgs struct {
	Amount uint64
}

type CreateVoteArgs struct {
	Type         ProposalType
	NewValue     uint64
	VotingPeriod uint64
}

type VoteArgs struct {
	ProposalID uint64
	Approve    bool
}

type DistributeQualityRewardsArgs struct {
	Creators []PubKey
	Weights  []uint8
}

func EncodeInitializeDao(a InitializeDaoArgs) []byte {
	w := &recWriter{}
	w.writeByte(byte(OpInitializeDao))
	w.writeUint64(a.TimeLimit)
	w.writeUint64(a.BaseFee)
	w.writeBool(a.AiModeration)
	w.writeByte(a.DepositShare)
	return w.bytes()
}

func EncodeSubmitContent(a SubmitContentArgs) []byte {
	w := &recWriter{}
	w.writeByte(byte(OpSubmitContent))
	w.writeString(a.ContentHash)
	w.writeString(a.ContentURI)
	return w.bytes()
}

func EncodeDeposit(a DepositArgs) []byte {
	w := &recWriter{}
	w.writeByte(byte(OpDeposit))
	w.writeUint64(a.Amount)
	return w.bytes()
}

func EncodeClaimReward() []byte {
	return []byte{byte(OpClaimReward)}
}

func EncodeCreateVote(a CreateVoteArgs) []byte {
	w := &recWriter{}
	w.writeByte(byte(OpCreateVote))
	w.writeByte(byte(a.Type))
	w.writeUint64(a.NewValue)
	w.writeUint64(a.VotingPeriod)
	return w.bytes()
}

func EncodeVote(a VoteArgs) []byte {
	w := &recWriter{}
	w.writeByte(byte(OpVote))
	w.writeUint64(a.ProposalID)
	w.writeBool(a.Approve)
	return w.bytes()
}

func EncodeDistributeQualityRewards(a DistributeQualityRewardsArgs) []byte {
	w := &recWriter{}
	w.writeByte(byte(OpDistributeQualityRewards))
	w.writeUint32(uint32(len(a.Creators)))
	for _, c := range a.Creators {
		w.writePubKey(c)
	}
	w.writeUint32(uint32(len(a.Weights)))
	for _, v := range a.Weights {
		w.writeByte(v)
	}
	return w.bytes()
}

func decodeInitializeDao(r *recReader) (InitializeDaoArgs, error) {
	a := InitializeDaoArgs{
		TimeLimit:    r.readUint64(),
		BaseFee:      r.readUint64(),
		AiModeration: r.readBool(),
		DepositShare: r.readByte(),
	}
	return a, r.finish("initialize_dao")
}

func decodeSubmitContent(r *recReader) (SubmitContentArgs, error) {
	a := SubmitContentArgs{
		ContentHash: r.readString(),
		ContentURI:  r.readString(),
	}
	return a, r.finish("submit_content")
}

func decodeDeposit(r *recReader) (DepositArgs, error) {
	a := DepositArgs{Amount: r.readUint64()}
	return a, r.finish("deposit")
}

func decodeCreateVote(r *recReader) (CreateVoteArgs, error) {
	a := CreateVoteArgs{
		Type:         ProposalType(r.readByte()),
		NewValue:     r.readUint64(),
		VotingPeriod: r.readUint64(),
	}
	return a, r.finish("create_vote")
}

func decodeVote(r *recReader) (VoteArgs, error) {
	a := VoteArgs{
		ProposalID: r.readUint64(),
		Approve:    r.readBool(),
	}
	return a, r.finish("vote")
}

func decodeDistributeQualityRewards(r *recReader) (DistributeQualityRewardsArgs, error) {
	var a DistributeQualityRewardsArgs
	n := r.readUint32()
	for i := uint32(0); i < n && !r.bad; i++ {
		a.Creators = append(a.Creators, r.readPubKey())
	}
	m := r.readUint32()
	for i := uint32(0); i < m && !r.bad; i++ {
		a.Weights = append(a.Weights, r.readByte())
	}
	return a, r.finish("distribute_quality_rewards")
}

// Client-side builders. Account order is part of the protocol: the
// processor consumes the list positionally.

func NewInitializeDaoInstruction(programID, payer, daoAccount PubKey, args InitializeDaoArgs) Instruction {
	return Instruction{
		ProgramID: programID,
		Accounts: []AccountMeta{
			{Key: payer, Signer: true},
			{Key: daoAccount, Writable: true},
		},
		Data: EncodeInitializeDao(args),
	}
}

func NewSubmitContentInstruction(programID, submitter, daoAccount, contentAccount PubKey, args SubmitContentArgs) Instruction {
	return Instruction{
		ProgramID: programID,
		Accounts: []AccountMeta{
			{Key: submitter, Signer: true, Writable: true},
			{Key: daoAccount, Writable: true},
			{Key: contentAccount, Writable: true},
		},
		Data: EncodeSubmitContent(args),
	}
}

func NewDepositInstruction(programID, depositor, daoAccount, depositorAccount PubKey, args DepositArgs) Instruction {
	return Instruction{
		ProgramID: programID,
		Accounts: []AccountMeta{
			{Key: depositor, Signer: true, Writable: true},
			{Key: daoAccount, Writable: true},
			{Key: depositorAccount, Writable: true},
		},
		Data: EncodeDeposit(args),
	}
}

func NewClaimRewardInstruction(programID, claimer, daoAccount, contentAccount PubKey) Instruction {
	return Instruction{
		ProgramID: programID,
		Accounts: []AccountMeta{
			{Key: claimer, Signer: true, Writable: true},
			{Key: daoAccount, Writable: true},
			{Key: contentAccount},
		},
		Data: EncodeClaimReward(),
	}
}

func NewCreateVoteInstruction(programID, proposer, daoAccount, depositorAccount, proposalAccount PubKey, args CreateVoteArgs) Instruction {
	return Instruction{
		ProgramID: programID,
		Accounts: []AccountMeta{
			{Key: proposer, Signer: true, Writable: true},
			{Key: daoAccount, Writable: true},
			{Key: depositorAccount},
			{Key: proposalAccount, Writable: true},
		},
		Data: EncodeCreateVote(args),
	}
}

func NewVoteInstruction(programID, voter, daoAccount, depositorAccount, proposalAccount PubKey, args VoteArgs) Instruction {
	return Instruction{
		ProgramID: programID,
		Accounts: []AccountMeta{
			{Key: voter, Signer: true},
			{Key: daoAccount, Writable: true},
			{Key: depositorAccount},
			{Key: proposalAccount, Writable: true},
		},
		Data: EncodeVote(args),
	}
}

func NewDistributeQualityRewardsInstruction(programID, admin, daoAccount PubKey, args DistributeQualityRewardsArgs) Instruction {
	accounts := []AccountMeta{
		{Key: admin, Signer: true},
		{Key: daoAccount, Writable: true},
	}
	for _, c := range args.Creators {
		accounts = append(accounts, AccountMeta{Key: c, Writable: true})
	}
	return Instruction{
		ProgramID: programID,
		Accounts:  accounts,
		Data:      EncodeDistributeQualityRewards(args),
	}
}
