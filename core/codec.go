package core

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Records and instructions share one fixed binary layout: raw 32-byte
// public keys, fixed-width little-endian integers, single-byte flags,
// and strings prefixed with a little-endian uint32 length.

const (
	// DaoStateSize is the encoded size of a DaoState record.
	DaoStateSize = 32 + 8 + 8 + 1 + 1 + 8 + 8 + 8 + 8 + 8

	// DepositorSize is the encoded size of a Depositor record.
	DepositorSize = 32 + 8 + 8 + 8

	// ProposalSize is the encoded size of a Proposal record.
	ProposalSize = 8 + 1 + 8 + 8 + 8 + 8 + 1
)

// ContentSize returns the storage allocation a content record needs,
// computed from the payload at creation time.
func ContentSize(contentHash, contentURI string) uint64 {
	return 32 + 4 + uint64(len(contentHash)) + 4 + uint64(len(contentURI)) + 8 + 8
}

type recWriter struct {
	buf bytes.Buffer
}

func (w *recWriter) bytes() []byte { return w.buf.Bytes() }

func (w *recWriter) writeByte(b byte) {
	w.buf.WriteByte(b)
}

func (w *recWriter) writeBool(v bool) {
	if v {
		w.buf.WriteByte(1)
	} else {
		w.buf.WriteByte(0)
	}
}

func (w *recWriter) writeUint32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.buf.Write(b[:])
}

func (w *recWriter) writeUint64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	w.buf.Write(b[:])
}

func (w *recWriter) writePubKey(k PubKey) {
	w.buf.Write(k[:])
}

func (w *recWriter) writeString(s string) {
	w.writeUint32(uint32(len(s)))
	w.buf.WriteString(s)
}

// recReader is the sticky-error counterpart of recWriter: every read
// after the first failure is a no-op returning zero values, and the
// decode entry points check err() once at the end.
type recReader struct {
	data []byte
	off  int
	bad  bool
}

func newRecReader(data []byte) *recReader {
	return &recReader{data: data}
}

func (r *recReader) take(n int) []byte {
	if r.bad || r.off+n > len(r.data) {
		r.bad = true
		return nil
	}
	b := r.data[r.off : r.off+n]
	r.off += n
	return b
}

func (r *recReader) readByte() byte {
	b := r.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (r *recReader) readBool() bool {
	return r.readByte() != 0
}

func (r *recReader) readUint32() uint32 {
	b := r.take(4)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

func (r *recReader) readUint64() uint64 {
	b := r.take(8)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}

func (r *recReader) readPubKey() PubKey {
	var k PubKey
	b := r.take(32)
	if b != nil {
		copy(k[:], b)
	}
	return k
}

func (r *recReader) readString() string {
	n := r.readUint32()
	b := r.take(int(n))
	if b == nil {
		return ""
	}
	return string(b)
}

func (r *recReader) err(kind string) error {
	if r.bad {
		return fmt.Errorf("truncated %s record", kind)
	}
	return nil
}

// finish is err plus an exact-consumption check, for payloads that must
// not carry trailing bytes.
func (r *recReader) finish(kind string) error {
	if err := r.err(kind); err != nil {
		return err
	}
	if r.off != len(r.data) {
		return fmt.Errorf("%d trailing bytes after %s payload", len(r.data)-r.off, kind)
	}
	return nil
}

func EncodeDaoState(s *DaoState) []byte {
	w := &recWriter{}
	w.writePubKey(s.Admin)
	w.writeUint64(s.TimeLimit)
	w.writeUint64(s.BaseFee)
	w.writeBool(s.AiModeration)
	w.writeByte(s.DepositShare)
	w.writeUint64(s.LastActivityTimestamp)
	w.writeUint64(s.TotalDeposit)
	w.writeUint64(s.ActiveProposalCount)
	w.writeUint64(s.ContentCount)
	w.writeUint64(s.DepositorCount)
	return w.bytes()
}

func DecodeDaoState(data []byte) (*DaoState, error) {
	r := newRecReader(data)
	s := &DaoState{
		Admin:                 r.readPubKey(),
		TimeLimit:             r.readUint64(),
		BaseFee:               r.readUint64(),
		AiModeration:          r.readBool(),
		DepositShare:          r.readByte(),
		LastActivityTimestamp: r.readUint64(),
		TotalDeposit:          r.readUint64(),
		ActiveProposalCount:   r.readUint64(),
		ContentCount:          r.readUint64(),
		DepositorCount:        r.readUint64(),
	}
	if err := r.err("dao state"); err != nil {
		return nil, err
	}
	return s, nil
}

func EncodeContent(c *Content) []byte {
	w := &recWriter{}
	w.writePubKey(c.Author)
	w.writeString(c.ContentHash)
	w.writeString(c.ContentURI)
	w.writeUint64(c.Timestamp)
	w.writeUint64(c.Votes)
	return w.bytes()
}

func DecodeContent(data []byte) (*Content, error) {
	r := newRecReader(data)
	c := &Content{
		Author:      r.readPubKey(),
		ContentHash: r.readString(),
		ContentURI:  r.readString(),
		Timestamp:   r.readUint64(),
		Votes:       r.readUint64(),
	}
	if err := r.err("content"); err != nil {
		return nil, err
	}
	return c, nil
}

func EncodeDepositor(d *Depositor) []byte {
	w := &recWriter{}
	w.writePubKey(d.PubKey)
	w.writeUint64(d.Amount)
	w.writeUint64(d.LockedUntil)
	w.writeUint64(d.VotingPower)
	return w.bytes()
}

func DecodeDepositor(data []byte) (*Depositor, error) {
	r := newRecReader(data)
	d := &Depositor{
		PubKey:      r.readPubKey(),
		Amount:      r.readUint64(),
		LockedUntil: r.readUint64(),
		VotingPower: r.readUint64(),
	}
	if err := r.err("depositor"); err != nil {
		return nil, err
	}
	return d, nil
}

func EncodeProposal(p *Proposal) []byte {
	w := &recWriter{}
	w.writeUint64(p.ID)
	w.writeByte(byte(p.Type))
	w.writeUint64(p.NewValue)
	w.writeUint64(p.VotingEndTime)
	w.writeUint64(p.YesVotes)
	w.writeUint64(p.NoVotes)
	w.writeBool(p.IsExecuted)
	return w.bytes()
}

func DecodeProposal(data []byte) (*Proposal, error) {
	r := newRecReader(data)
	p := &Proposal{
		ID:            r.readUint64(),
		Type:          ProposalType(r.readByte()),
		NewValue:      r.readUint64(),
		VotingEndTime: r.readUint64(),
		YesVotes:      r.readUint64(),
		NoVotes:       r.readUint64(),
		IsExecuted:    r.readBool(),
	}
	if err := r.err("proposal"); err != nil {
		return nil, err
	}
	return p, nil
}
