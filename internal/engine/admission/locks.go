package admission

import (
	"hash/fnv"
	"sync"
)

const lockStripes = 256

// stripedLock serializes work per key with a fixed set of mutexes. Distinct
// keys may share a stripe.
type stripedLock struct {
	stripes [lockStripes]sync.Mutex
}

func (l *stripedLock) Lock(key string) (unlock func()) {
	h := fnv.New32a()
	h.Write([]byte(key))
	m := &l.stripes[h.Sum32()%lockStripes]
	m.Lock()
	return m.Unlock
}
