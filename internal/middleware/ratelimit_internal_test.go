package middleware

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func (l *limiter) size() int {
	l.mtx.Lock()
	defer l.mtx.Unlock()
	return len(l.clients)
}

func TestLimiter_EvictsExpiredClients(t *testing.T) {
	l := newLimiter(5, time.Minute)
	start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 100; i++ {
		_, _, ok := l.allow(fmt.Sprintf("10.0.0.%d", i), start)
		assert.True(t, ok)
	}
	assert.Equal(t, 100, l.size())

	// после окна старые записи удаляются, остаётся только новый клиент
	_, _, ok := l.allow("10.0.1.1", start.Add(2*time.Minute))
	assert.True(t, ok)
	assert.Equal(t, 1, l.size())
}

func TestLimiter_WindowReset(t *testing.T) {
	l := newLimiter(2, time.Minute)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	remaining, _, ok := l.allow("10.0.0.1", now)
	assert.True(t, ok)
	assert.Equal(t, 1, remaining)

	remaining, _, ok = l.allow("10.0.0.1", now.Add(time.Second))
	assert.True(t, ok)
	assert.Equal(t, 0, remaining)

	_, _, ok = l.allow("10.0.0.1", now.Add(2*time.Second))
	assert.False(t, ok)

	remaining, _, ok = l.allow("10.0.0.1", now.Add(61*time.Second))
	assert.True(t, ok)
	assert.Equal(t, 1, remaining)
}
