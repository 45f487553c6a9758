package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContentRoundTrip(t *testing.T) {
	in := &Content{
		Author:      testKey(0x02),
		ContentHash: "QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG",
		ContentURI:  "ipfs://QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG",
		Timestamp:   1_700_000_123,
		Votes:       7,
	}
	data := EncodeContent(in)
	assert.Equal(t, ContentSize(in.ContentHash, in.ContentURI), uint64(len(data)))

	out, err := DecodeContent(data)
	assert.Nil(t, err)
	assert.Equal(t, in, out)
}

func TestRecordSizesMatchEncoding(t *testing.T) {
	assert.Equal(t, DaoStateSize, len(EncodeDaoState(&DaoState{})))
	assert.Equal(t, DepositorSize, len(EncodeDepositor(&Depositor{})))
	assert.Equal(t, ProposalSize, len(EncodeProposal(&Proposal{})))
}

func TestDecodeTruncated(t *testing.T) {
	data := EncodeDaoState(&DaoState{Admin: testKey(0x01)})
	_, err := DecodeDaoState(data[:len(data)-1])
	assert.NotNil(t, err)

	_, err = DecodeDepositor(nil)
	assert.NotNil(t, err)

	// A string length prefix pointing past the end must not panic.
	content := EncodeContent(&Content{Author: testKey(0x02), ContentHash: "abc", ContentURI: "def"})
	_, err = DecodeContent(content[:40])
	assert.NotNil(t, err)
}

func TestInstructionRoundTrips(t *testing.T) {
	ins := NewSubmitContentInstruction(testProgram, testKey(0x02), testDao, testKey(0xc1), SubmitContentArgs{
		ContentHash: "hash",
		ContentURI:  "uri",
	})
	assert.Equal(t, OpSubmitContent, Opcode(ins.Data[0]))
	args, err := decodeSubmitContent(newRecReader(ins.Data[1:]))
	assert.Nil(t, err)
	assert.Equal(t, "hash", args.ContentHash)
	assert.Equal(t, "uri", args.ContentURI)

	dins := NewDistributeQualityRewardsInstruction(testProgram, testAdmin, testDao, DistributeQualityRewardsArgs{
		Creators: []PubKey{testKey(0x20), testKey(0x21)},
		Weights:  []uint8{70, 30},
	})
	dargs, err := decodeDistributeQualityRewards(newRecReader(dins.Data[1:]))
	assert.Nil(t, err)
	assert.Equal(t, []PubKey{testKey(0x20), testKey(0x21)}, dargs.Creators)
	assert.Equal(t, []uint8{70, 30}, dargs.Weights)
	// Admin, dao, then one writable account per creator.
	assert.Equal(t, 4, len(dins.Accounts))
	assert.True(t, dins.Accounts[2].Writable)
}

func TestPubKeyText(t *testing.T) {
	k := testKey(0x42)
	parsed, err := PubKeyFromBase58(k.String())
	assert.Nil(t, err)
	assert.Equal(t, k, parsed)

	_, err = PubKeyFromBase58("too-short")
	assert.NotNil(t, err)
}
