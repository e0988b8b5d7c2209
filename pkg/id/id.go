package id

import (
	cryptoRand "crypto/rand"
	"encoding/binary"
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	mu   sync.Mutex
	mono io.Reader
)

func init() {
	var seed int64
	_ = binary.Read(cryptoRand.Reader, binary.LittleEndian, &seed)
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	mono = ulid.Monotonic(rand.New(rand.NewSource(seed)), 0)
}

// New returns an order id stamped with the current time.
func New() string {
	return NewAt(time.Now())
}

// NewAt returns an order id stamped with t. Replayed orders use their close
// time so ids sort the same way the journal does.
//
// Monotonic entropy only guarantees ordering for non-decreasing t; an earlier
// t still yields a valid, unique id.
func NewAt(t time.Time) string {
	mu.Lock()
	defer mu.Unlock()

	ms := ulid.Timestamp(t.UTC())
	id, err := ulid.New(ms, mono)
	if err != nil {
		// monotonic entropy overflow within one millisecond
		id = ulid.MustNew(ms, cryptoRand.Reader)
	}
	return id.String()
}

// Time extracts the timestamp from an id produced by New or NewAt.
func Time(s string) (time.Time, error) {
	u, err := ulid.ParseStrict(s)
	if err != nil {
		return time.Time{}, err
	}
	return ulid.Time(u.Time()).UTC(), nil
}
