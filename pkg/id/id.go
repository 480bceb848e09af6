package id

import (
	cryptoRand "crypto/rand"
	"encoding/binary"
	"io"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	mu   sync.Mutex
	mono io.Reader
)

func init() {
	// Seed a PRNG from crypto/rand so ULID entropy is unpredictable.
	// ulid.Monotonic keeps IDs generated within the same millisecond
	// lexicographically increasing.
	var seed int64
	_ = binary.Read(cryptoRand.Reader, binary.LittleEndian, &seed)
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	mono = ulid.Monotonic(rand.New(rand.NewSource(seed)), 0)
}

// New returns a ULID string (time-sortable identifier).
//
// Portfolios, trades and targets all use ULIDs, so listing them by ID lists
// them in creation order.
func New() string {
	return NewAt(time.Now())
}

// NewAt returns a ULID carrying the given time. Times a ULID cannot hold,
// including the zero time, are replaced by the current time.
func NewAt(t time.Time) string {
	ms := t.UnixMilli()
	if t.IsZero() || ms < 0 || uint64(ms) > ulid.MaxTime() {
		t = time.Now()
	}

	mu.Lock()
	defer mu.Unlock()

	id, err := ulid.New(ulid.Timestamp(t.UTC()), mono)
	if err != nil {
		// Errors are extremely unlikely unless time goes backwards or entropy fails.
		panic(err)
	}
	return id.String()
}

// Time recovers the creation time embedded in an identifier.
//
// Two shapes are understood: ULIDs, and the millisecond Unix timestamps that
// older documents used as IDs. ok is false for anything else.
func Time(s string) (t time.Time, ok bool) {
	if u, err := ulid.ParseStrict(s); err == nil {
		return ulid.Time(u.Time()).UTC(), true
	}
	ms, err := strconv.ParseInt(s, 10, 64)
	if err != nil || ms <= 0 {
		return time.Time{}, false
	}
	return time.UnixMilli(ms).UTC(), true
}
