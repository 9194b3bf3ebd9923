package randutil

import (
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
)

func TestNewIsDeterministic(t *testing.T) {
	a, b := New(1234), New(1234)
	for i := 0; i < 16; i++ {
		assert.Equal(t, a.Uint64(), b.Uint64())
	}
	assert.NotEqual(t, New(1).Uint64(), New(2).Uint64())
}

func TestResolve(t *testing.T) {
	clock := quartz.NewMock(t)
	clock.Set(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))

	assert.Equal(t, int64(77), Resolve(77, clock))
	assert.Equal(t, clock.Now().UnixNano(), Resolve(0, clock))
}
