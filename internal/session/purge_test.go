package session

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type countingPurger struct {
	calls atomic.Int32
	err   error
}

func (p *countingPurger) Purge(context.Context) (int64, error) {
	p.calls.Add(1)
	return 2, p.err
}

func TestRunPurger(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"purges on every tick", nil},
		{"keeps running after a failure", errors.New("db down")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &countingPurger{err: tt.err}
			ctx, cancel := context.WithCancel(context.Background())
			done := make(chan struct{})
			go func() {
				RunPurger(ctx, p, 5*time.Millisecond, zap.NewNop())
				close(done)
			}()

			assert.Eventually(t, func() bool { return p.calls.Load() >= 2 }, time.Second, time.Millisecond)
			cancel()
			assert.Eventually(t, func() bool {
				select {
				case <-done:
					return true
				default:
					return false
				}
			}, time.Second, time.Millisecond)
		})
	}
}
