package lifecycle

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
)

func TestOnShutdownFlushesWhenContextEnds(t *testing.T) {
	log, _ := test.NewNullLogger()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	flushed := false
	code := -1
	OnShutdown(ctx, func(context.Context) error {
		flushed = true
		return nil
	}, func(c int) { code = c }, log)

	assert.True(t, flushed)
	assert.Equal(t, 0, code)
}

func TestShutdownExitsNonZeroOnFlushError(t *testing.T) {
	log, hook := test.NewNullLogger()
	code := -1
	Shutdown(func(context.Context) error { return errors.New("disk full") }, func(c int) { code = c }, log)

	assert.Equal(t, 1, code)
	assert.Equal(t, "failed to flush pending updates", hook.LastEntry().Message)
}

func TestShutdownExitsAfterPanic(t *testing.T) {
	log, _ := test.NewNullLogger()
	calls := 0
	Shutdown(func(context.Context) error { panic("boom") }, func(int) { calls++ }, log)
	assert.Equal(t, 1, calls)
}
