package schema

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"sync/atomic"
	"time"
)

// ObjectID is a 12 byte identifier: 4 bytes of unix seconds, 5 random
// bytes and a 3 byte counter.
type ObjectID [12]byte

var (
	objectIDCounter atomic.Uint32
	objectIDProcess [5]byte
)

func init() {
	_, _ = rand.Read(objectIDProcess[:])

	var seed [4]byte
	_, _ = rand.Read(seed[:])
	objectIDCounter.Store(binary.BigEndian.Uint32(seed[:]))
}

func NewObjectID() ObjectID {
	var id ObjectID

	binary.BigEndian.PutUint32(id[0:4], uint32(time.Now().Unix()))
	copy(id[4:9], objectIDProcess[:])

	c := objectIDCounter.Add(1)
	id[9] = byte(c >> 16)
	id[10] = byte(c >> 8)
	id[11] = byte(c)

	return id
}

func ParseObjectID(s string) (ObjectID, error) {
	var id ObjectID
	if len(s) != 24 {
		return id, fmt.Errorf("invalid object id `%s`: expected 24 hex characters", s)
	}
	if _, err := hex.Decode(id[:], []byte(s)); err != nil {
		return id, fmt.Errorf("invalid object id `%s`: %w", s, err)
	}
	return id, nil
}

func (id ObjectID) String() string {
	return hex.EncodeToString(id[:])
}
