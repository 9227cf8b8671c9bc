package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chazu/brushcut/pkg/scene"
)

// EvalTimeout is the default hard limit for a single evaluation.
const EvalTimeout = 5 * time.Second

var (
	// ErrTimeout is returned when a script runs past the engine's timeout.
	ErrTimeout = errors.New("evaluation timed out")
	// ErrSuperseded is returned when a newer evaluation started while this
	// one was running.
	ErrSuperseded = errors.New("evaluation superseded by newer request")
)

// outcome carries one evaluation back from its goroutine, tagged with the
// generation that started it.
type outcome struct {
	gen    uint64
	scene  *scene.Scene
	errors []EvalError
	err    error
}

// await blocks until the evaluation delivers, ctx is done or the timeout
// passes. An abandoned evaluation keeps running; its outcome is dropped.
func (e *Engine) await(ctx context.Context, out <-chan outcome) (*scene.Scene, []EvalError, error) {
	limit := e.Timeout
	if limit <= 0 {
		limit = EvalTimeout
	}
	timer := time.NewTimer(limit)
	defer timer.Stop()

	select {
	case o := <-out:
		if cur := e.Generation(); o.gen != cur {
			return nil, nil, fmt.Errorf("generation %d, current %d: %w", o.gen, cur, ErrSuperseded)
		}
		return o.scene, o.errors, o.err
	case <-timer.C:
		return nil, nil, fmt.Errorf("%w after %s", ErrTimeout, limit)
	case <-ctx.Done():
		return nil, nil, ctx.Err()
	}
}
