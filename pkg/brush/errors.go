package brush

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEdgeOutOfRange    = errors.New("half-edge index out of range")
	ErrVertexOutOfRange  = errors.New("vertex index out of range")
	ErrPolygonOutOfRange = errors.New("polygon index out of range")
	ErrEdgeNotInPolygon  = errors.New("half-edge does not belong to polygon")
	ErrSamePolygonTwin   = errors.New("half-edge and its twin share a polygon")
	ErrDegenerateSplit   = errors.New("split would leave a polygon with fewer than 3 edges")
	ErrMultipleCapLoops  = errors.New("cut produced more than one cap loop")
	ErrOpenCapLoop       = errors.New("cut boundary does not close into a loop")
	ErrCrossingCount     = errors.New("polygon crosses the cutting plane an unexpected number of times")
	ErrCoplanarCrossing  = errors.New("polygon lies on a plane that also splits the mesh")
)

// InvariantError reports a broken mesh invariant detected during a mutation.
// It is raised with panic: continuing would corrupt the mesh further.
type InvariantError struct {
	Op     string
	Err    error
	Errors []ValidationError
}

func (e *InvariantError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "brush: %s: invariant violated", e.Op)
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	for _, v := range e.Errors {
		b.WriteString("\n  ")
		b.WriteString(v.Error())
	}
	return b.String()
}

func (e *InvariantError) Unwrap() error { return e.Err }

// Guard runs op and returns the *InvariantError it panics with, if any.
// Any other panic is re-raised.
func Guard(op func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			var ie *InvariantError
			if e, ok := r.(error); ok && errors.As(e, &ie) {
				err = ie
				return
			}
			panic(r)
		}
	}()
	op()
	return nil
}
