package ledger

import (
	"bytes"
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/nam2ee/turtle/core"
)

// Account is one platform-managed storage slot: a native token balance
// plus an owned, size-bounded record buffer.
type Account struct {
	Balance uint64
	Owner   core.PubKey
	Size    uint64
	Data    []byte
}

func (a *Account) allocated() bool {
	return a.Size > 0
}

func encodeAccount(a *Account) []byte {
	buf := make([]byte, 0, 8+32+8+4+len(a.Data))
	var u [8]byte
	binary.LittleEndian.PutUint64(u[:], a.Balance)
	buf = append(buf, u[:]...)
	buf = append(buf, a.Owner[:]...)
	binary.LittleEndian.PutUint64(u[:], a.Size)
	buf = append(buf, u[:]...)
	binary.LittleEndian.PutUint32(u[:4], uint32(len(a.Data)))
	buf = append(buf, u[:4]...)
	buf = append(buf, a.Data...)
	return buf
}

func decodeAccount(data []byte) (*Account, error) {
	r := bytes.NewReader(data)
	a := &Account{}
	if err := binary.Read(r, binary.LittleEndian, &a.Balance); err != nil {
		return nil, errors.Wrap(err, "account balance")
	}
	if _, err := r.Read(a.Owner[:]); err != nil {
		return nil, errors.Wrap(err, "account owner")
	}
	if err := binary.Read(r, binary.LittleEndian, &a.Size); err != nil {
		return nil, errors.Wrap(err, "account size")
	}
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, errors.Wrap(err, "account data length")
	}
	a.Data = make([]byte, n)
	if _, err := r.Read(a.Data); err != nil && n > 0 {
		return nil, errors.Wrap(err, "account data")
	}
	return a, nil
}
