package ids

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/segmentio/ksuid"
)

var (
	entropy     = ulid.Monotonic(rand.Reader, 0)
	entropyLock sync.Mutex
)

func New() string {
	return ksuid.New().String()
}

// NewSortable returns a ULID that sorts after every ULID previously issued by
// this process, including ones minted in the same millisecond.
func NewSortable() string {
	return NewSortableAt(time.Now())
}

func NewSortableAt(t time.Time) string {
	entropyLock.Lock()
	defer entropyLock.Unlock()

	return ulid.MustNew(ulid.Timestamp(t), entropy).String()
}
