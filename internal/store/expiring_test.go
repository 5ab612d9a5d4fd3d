package store

import (
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/sigrelay/internal/cryptox"
	"github.com/dmitrijs2005/sigrelay/internal/models"
)

type fakeClock struct {
	now atomic.Int64
}

func newFakeClock(unix int64) *fakeClock {
	c := &fakeClock{}
	c.now.Store(unix)
	return c
}

func (c *fakeClock) Now() time.Time    { return time.Unix(c.now.Load(), 0) }
func (c *fakeClock) Advance(sec int64) { c.now.Add(sec) }

func TestExpiring_PutGet(t *testing.T) {
	s := NewExpiring[string]()

	s.Put("a", "1", 0)
	v, ok := s.Get("a")
	assert.True(t, ok)
	assert.Equal(t, "1", v)

	_, ok = s.Get("missing")
	assert.False(t, ok)
}

func TestExpiring_PutReplaces(t *testing.T) {
	s := NewExpiring[int]()

	s.Put("k", 1, 0)
	s.Put("k", 2, 0)

	v, ok := s.Get("k")
	require.True(t, ok)
	assert.Equal(t, 2, v)
	assert.Equal(t, 1, s.Len())
}

func TestExpiring_LazyEviction(t *testing.T) {
	clock := newFakeClock(1000)
	s := NewExpiring[string](WithClock(clock.Now))

	s.Put("k", "v", 1010)

	_, ok := s.Get("k")
	assert.True(t, ok, "live before expiry")

	clock.Advance(10)
	assert.Equal(t, 1, s.Len(), "nothing evicted without a read")

	_, ok = s.Get("k")
	assert.False(t, ok, "absent at expiry instant")
	assert.Equal(t, 0, s.Len(), "read evicted the entry")

	s.Put("k", "again", 2000)
	v, ok := s.Get("k")
	assert.True(t, ok)
	assert.Equal(t, "again", v)
}

func TestExpiring_ZeroNeverExpires(t *testing.T) {
	clock := newFakeClock(1)
	s := NewExpiring[string](WithClock(clock.Now))

	s.Put("k", "v", 0)
	clock.Advance(1 << 40)

	_, ok := s.Get("k")
	assert.True(t, ok)
	assert.Len(t, s.ListAll(), 1)
}

func TestExpiring_ListAllSweeps(t *testing.T) {
	clock := newFakeClock(1000)
	s := NewExpiring[string](WithClock(clock.Now))

	s.Put("live", "live", 5000)
	s.Put("forever", "forever", 0)
	s.Put("dead1", "dead1", 1001)
	s.Put("dead2", "dead2", 999)

	clock.Advance(1)
	got := s.ListAll()
	sort.Strings(got)

	assert.Equal(t, []string{"forever", "live"}, got)
	assert.Equal(t, 2, s.Len())
}

func TestExpiring_ListAllEmpty(t *testing.T) {
	s := NewExpiring[string]()
	got := s.ListAll()
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestExpiring_DeleteIdempotent(t *testing.T) {
	s := NewExpiring[string]()

	s.Put("k", "v", 0)
	s.Delete("k")
	s.Delete("k")
	s.Delete("never-existed")

	_, ok := s.Get("k")
	assert.False(t, ok)
	assert.Equal(t, 0, s.Len())
}

func TestExpiring_InstancesAreIndependent(t *testing.T) {
	a := NewExpiring[string]()
	b := NewExpiring[string]()

	a.Put("k", "a", 0)

	_, ok := b.Get("k")
	assert.False(t, ok)
}

func TestExpiring_ConcurrentAccess(t *testing.T) {
	clock := newFakeClock(1000)
	s := NewExpiring[int](WithClock(clock.Now))

	const workers = 16
	const perWorker = 200

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				key := fmt.Sprintf("%d-%d", w, i)
				expiry := int64(0)
				if i%2 == 1 {
					expiry = 1001
				}
				s.Put(key, i, expiry)
				_, _ = s.Get(key)
				if i%10 == 0 {
					_ = s.ListAll()
				}
				if i%7 == 0 {
					s.Delete(key)
				}
			}
		}(w)
	}
	wg.Wait()

	clock.Advance(1)
	for _, v := range s.ListAll() {
		assert.Equal(t, 0, v%2, "only never-expiring entries survive")
	}
}

func TestExpiring_StoresSignedEvent(t *testing.T) {
	kp, err := cryptox.GenerateKeyPair()
	require.NoError(t, err)

	ev := models.NewEvent(kp.PublicKey, "hello", 0)
	require.NoError(t, ev.Sign(kp.PrivateKey))

	s := NewExpiring[models.Event]()
	s.Put(ev.ID, *ev, ev.ExpiresAt)

	got, ok := s.Get(ev.ID)
	require.True(t, ok)
	assert.Equal(t, "hello", got.Content)
	assert.True(t, got.Verify())
}
