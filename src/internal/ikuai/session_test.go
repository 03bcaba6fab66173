package ikuai

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maksimkurb/ikuai-bridge/src/internal/errors"
)

type fakeAuth struct {
	calls atomic.Int32
	err   error
	delay time.Duration
}

func (f *fakeAuth) Login(ctx context.Context) (string, error) {
	n := f.calls.Add(1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.err != nil {
		return "", f.err
	}
	return "key-" + string(rune('0'+n)), nil
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestSessionManager_ReusesKeyWithinTTL(t *testing.T) {
	auth := &fakeAuth{}
	clock := newFakeClock()
	s := NewSessionManager(auth, WithClock(clock.Now))

	key, err := s.SessionKey(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "key-1", key)

	for i := 0; i < 10; i++ {
		clock.Advance(10 * time.Minute)
		key, err = s.SessionKey(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "key-1", key)
	}
	assert.Equal(t, int32(1), auth.calls.Load())

	clock.Advance(20 * time.Minute)
	key, err = s.SessionKey(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "key-2", key)
	assert.Equal(t, int32(2), auth.calls.Load())
}

func TestSessionManager_InvalidateForcesLogin(t *testing.T) {
	auth := &fakeAuth{}
	s := NewSessionManager(auth)

	_, err := s.SessionKey(context.Background())
	require.NoError(t, err)

	s.Invalidate()
	assert.True(t, s.State().Expiry.IsZero())

	key, err := s.SessionKey(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "key-2", key)
	assert.Equal(t, int64(2), s.State().Logins)
}

func TestSessionManager_RejectionIsPermanent(t *testing.T) {
	auth := &fakeAuth{err: errors.NewAuthRejectedError("bad password")}
	s := NewSessionManager(auth)

	_, err := s.SessionKey(context.Background())
	assert.ErrorIs(t, err, errors.ErrAuthRejected)
	assert.True(t, s.Rejected())

	for i := 0; i < 5; i++ {
		_, err = s.SessionKey(context.Background())
		assert.ErrorIs(t, err, errors.ErrAuthRejected)
	}
	assert.Equal(t, int32(1), auth.calls.Load(), "no login may be attempted after rejection")

	s.Reset(&fakeAuth{})
	assert.False(t, s.Rejected())
	key, err := s.SessionKey(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "key-1", key)
}

func TestSessionManager_TransientFailureKeepsState(t *testing.T) {
	auth := &fakeAuth{err: errors.NewNetworkError("connection refused", nil)}
	s := NewSessionManager(auth)

	_, err := s.SessionKey(context.Background())
	assert.ErrorIs(t, err, errors.ErrNetwork)
	assert.False(t, s.Rejected())
	assert.False(t, s.State().HasKey)

	_, err = s.SessionKey(context.Background())
	assert.Error(t, err)
	assert.Equal(t, int32(2), auth.calls.Load())
}

func TestSessionManager_ConcurrentCallersShareLogin(t *testing.T) {
	auth := &fakeAuth{delay: 20 * time.Millisecond}
	s := NewSessionManager(auth)

	var wg sync.WaitGroup
	keys := make([]string, 8)
	for i := range keys {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key, err := s.SessionKey(context.Background())
			assert.NoError(t, err)
			keys[i] = key
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), auth.calls.Load())
	for _, key := range keys {
		assert.Equal(t, "key-1", key)
	}
}
