// Package engine evaluates brush scripts. It wraps zygomys in a sandboxed
// environment and produces a Scene from user source code.
package engine

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/chazu/brushcut/pkg/scene"
	zygo "github.com/glycerine/zygomys/zygo"
)

// EvalError represents a non-fatal error encountered during evaluation,
// such as a parse error or a runtime error in user code.
type EvalError struct {
	Line    int
	Col     int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// EvalWarning represents a non-fatal warning produced during evaluation.
type EvalWarning struct {
	Line    int
	Col     int
	Message string
	BrushID scene.BrushID
}

// EvalResult bundles the full output of an evaluation for the CLI.
type EvalResult struct {
	Scene    *scene.Scene
	Errors   []EvalError
	Warnings []EvalWarning
}

// Engine runs brush scripts. Each evaluation gets a fresh sandbox, so runs
// are deterministic and independent. It is safe for concurrent use, but only
// the most recently started evaluation delivers a scene.
type Engine struct {
	// Timeout bounds a single evaluation. Zero means EvalTimeout.
	Timeout time.Duration

	mu         sync.Mutex
	generation uint64
}

// NewEngine creates an Engine with the default timeout.
func NewEngine() *Engine {
	return &Engine{Timeout: EvalTimeout}
}

// Evaluate runs source and returns the scene it defines.
//
//   - success: scene, nil, nil
//   - script error: nil, eval errors, nil
//   - timeout, panic or a newer evaluation: nil, nil, error
func (e *Engine) Evaluate(source string) (*scene.Scene, []EvalError, error) {
	return e.EvaluateContext(context.Background(), source)
}

// EvaluateContext is Evaluate bounded by ctx as well as the engine timeout.
func (e *Engine) EvaluateContext(ctx context.Context, source string) (*scene.Scene, []EvalError, error) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	out := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				out <- outcome{gen: gen, err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()
		sc, evalErrs, err := e.evaluate(source)
		out <- outcome{gen: gen, scene: sc, errors: evalErrs, err: err}
	}()

	return e.await(ctx, out)
}

// Run evaluates source and validates the resulting scene. Validation
// errors and warnings are reported alongside evaluation errors; a fatal
// failure is returned as error.
func (e *Engine) Run(source string) (*EvalResult, error) {
	sc, evalErrs, err := e.Evaluate(source)
	if err != nil {
		return nil, err
	}
	res := &EvalResult{Scene: sc, Errors: evalErrs}
	if sc == nil {
		return res, nil
	}
	sc.Version = e.Generation()

	v := scene.ValidateAll(sc)
	for _, ve := range v.Errors {
		res.Errors = append(res.Errors, EvalError{Message: ve.Error()})
	}
	for _, w := range v.Warnings {
		res.Warnings = append(res.Warnings, EvalWarning{Message: w.Message, BrushID: w.BrushID})
	}
	return res, nil
}

// Generation returns the number of evaluations started so far.
func (e *Engine) Generation() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.generation
}

// evaluate runs source in a fresh sandbox. Builtins add brushes to the
// scene as the script runs; a failed script yields no scene.
func (e *Engine) evaluate(source string) (*scene.Scene, []EvalError, error) {
	sc := scene.New()
	if strings.TrimSpace(source) == "" {
		return sc, nil, nil
	}

	// The sandbox has no filesystem or system access.
	env := zygo.NewZlispSandbox()
	defer env.Stop()
	registerBuiltins(env, sc)

	if err := env.LoadString(preprocessSource(source)); err != nil {
		return nil, parseZygomysError(err), nil
	}
	if _, err := env.Run(); err != nil {
		return nil, parseZygomysError(err), nil
	}
	return sc, nil, nil
}

// zygomys reports positions as "Error on line N: ..." or "line N: ...".
var linePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`),
	regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`),
}

// parseZygomysError turns a zygomys load or run failure into eval errors,
// keeping the line number when the message carries one.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()
	for _, re := range linePatterns {
		if m := re.FindStringSubmatch(msg); m != nil {
			line, _ := strconv.Atoi(m[1])
			return []EvalError{{Line: line, Message: strings.TrimSpace(m[2])}}
		}
	}
	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
