package brush

import (
	"errors"
	"fmt"
	"sync"
)

var errFloodLeak = errors.New("kept and discarded polygons are still connected after capping")

// CutPlane is a cutting plane together with the surface descriptor that
// polygons created on it, or found lying on it, take on.
type CutPlane struct {
	Plane
	DescriptionIndex int
}

type cutOutcome int

const (
	cutUnchanged cutOutcome = iota
	cutApplied
	cutEliminated
)

// cutter holds the scratch state of one Cut call. Cutters are pooled; only
// the per-vertex and per-edge scratch buffers are reused between calls.
type cutter struct {
	work Mesh

	distances []float64
	sides     []Halfspace
	splits    []int
	polySide  []Halfspace
	strict    []int
	visited   []bool
	queue     []int
	boundary  []int
	twins     []int
	byEnd     []int
}

var cutterPool = sync.Pool{New: func() any { return new(cutter) }}

// Cut keeps the part of the solid on the inside of the first count planes,
// applying them one at a time so later planes see earlier results.
//
// It returns false without touching the mesh when count is out of range or
// the mesh is already empty, and false with the mesh cleared when the cuts
// remove the whole solid; use IsEmpty to tell the two apart. Otherwise it
// returns true, including when no plane intersected the solid.
//
// A nil plane list is a programming error and panics. A broken invariant
// found mid-cut panics with *InvariantError and leaves the mesh as it was.
func (m *Mesh) Cut(planes []CutPlane, count int) bool {
	if planes == nil {
		panic("brush: Cut called with a nil plane list")
	}
	if count <= 0 || count > len(planes) || m.IsEmpty() {
		return false
	}

	c := cutterPool.Get().(*cutter)
	defer cutterPool.Put(c)

	w := &c.work
	w.CopyFrom(m)
	w.CompactHalfEdges()
	if len(w.Planes) != len(w.Polygons) {
		w.CalculatePlanes()
	}

	changed := false
	for i := range planes[:count] {
		outcome, err := c.cut(planes[i])
		if err != nil {
			panic(&InvariantError{Op: fmt.Sprintf("Cut (plane %d %v)", i, planes[i].Plane), Err: err})
		}
		if outcome == cutEliminated {
			m.Clear()
			return false
		}
		changed = changed || outcome == cutApplied
	}

	if changed {
		w.CalculatePlanes()
	}
	// The mesh takes the working arrays and its old ones are dropped, so
	// nothing the caller may still hold ends up in the pool.
	m.swap(w)
	*w = Mesh{}
	m.debugValidate("Cut")
	return true
}

// CutWith cuts the mesh by a single plane. See Cut.
func (m *Mesh) CutWith(plane CutPlane) bool {
	return m.Cut([]CutPlane{plane}, 1)
}

// Intersect cuts the mesh by every polygon plane of other, leaving the
// intersection of the two convex solids. Polygons created by the cut take
// the descriptor of the other brush's face that produced them.
func (m *Mesh) Intersect(other *Mesh) bool {
	if other.IsEmpty() {
		if m.IsEmpty() {
			return false
		}
		m.Clear()
		return false
	}
	planes := make([]CutPlane, len(other.Polygons))
	for p, poly := range other.Polygons {
		plane := other.CalculatePlane(p)
		if len(other.Planes) == len(other.Polygons) {
			plane = other.Planes[p]
		}
		planes[p] = CutPlane{Plane: plane, DescriptionIndex: poly.DescriptionIndex}
	}
	return m.Cut(planes, len(planes))
}

// cut applies one plane to the working mesh.
func (c *cutter) cut(cp CutPlane) (cutOutcome, error) {
	w := &c.work

	inside, outside := c.classify(cp.Plane)
	if outside == 0 {
		c.alignCoplanar(cp)
		return cutUnchanged, nil
	}
	if inside == 0 {
		return cutEliminated, nil
	}

	c.splitCrossingEdges()
	if err := c.splitCrossingPolygons(); err != nil {
		return cutUnchanged, err
	}
	keptCap, err := c.buildCaps(cp)
	if err != nil {
		return cutUnchanged, err
	}
	if err := c.floodFill(keptCap); err != nil {
		return cutUnchanged, err
	}

	for p := range w.Polygons {
		if !c.visited[p] {
			w.Polygons[p].EdgeCount = 0
		}
	}
	w.CompactHalfEdges()
	w.removeRedundantVertices()
	return cutApplied, nil
}

// classify records the signed distance and side of every vertex and
// returns how many fall strictly inside and outside.
func (c *cutter) classify(plane Plane) (inside, outside int) {
	w := &c.work
	c.distances = resize(c.distances, len(w.Vertices))
	c.sides = resize(c.sides, len(w.Vertices))
	for i, v := range w.Vertices {
		d := plane.SignedDistance(v)
		c.distances[i] = d
		c.sides[i] = classifyDistance(d)
		switch c.sides[i] {
		case Inside:
			inside++
		case Outside:
			outside++
		}
	}
	return inside, outside
}

// alignCoplanar gives every polygon lying on the plane and facing the same
// way the plane's surface descriptor.
func (c *cutter) alignCoplanar(cp CutPlane) {
	w := &c.work
	for p, poly := range w.Polygons {
		aligned := true
		for e := poly.FirstEdge; e < poly.FirstEdge+poly.EdgeCount; e++ {
			if c.sides[w.HalfEdges[e].VertexIndex] != On {
				aligned = false
				break
			}
		}
		if aligned && w.Planes[p].Normal.Dot(cp.Normal) > 0 {
			w.Polygons[p].DescriptionIndex = cp.DescriptionIndex
		}
	}
}

// splitCrossingEdges inserts a vertex on the plane into every edge whose
// endpoints lie strictly on opposite sides. The point is always
// interpolated from the inside endpoint toward the outside one, so both
// half-edges of a pair produce the same bits.
func (c *cutter) splitCrossingEdges() {
	w := &c.work
	n := len(w.HalfEdges)
	c.splits = resize(c.splits, n)
	for i := range c.splits {
		c.splits[i] = -1
	}

	for e := 0; e < n; e++ {
		twin := w.HalfEdges[e].TwinIndex
		if twin < e {
			continue
		}
		a, b := w.HalfEdgeStart(e), w.HalfEdges[e].VertexIndex
		sa, sb := c.sides[a], c.sides[b]
		if sa == On || sb == On || sa == sb {
			continue
		}
		in, out := a, b
		if sa == Outside {
			in, out = b, a
		}
		din, dout := c.distances[in], c.distances[out]
		t := din / (din - dout)
		vin := w.Vertices[in]
		point := vin.Add(w.Vertices[out].Sub(vin).MulScalar(t))

		v := len(w.Vertices)
		w.Vertices = append(w.Vertices, point)
		c.distances = append(c.distances, 0)
		c.sides = append(c.sides, On)
		c.splits[e] = v
		c.splits[twin] = v
	}
	w.splitHalfEdges(c.splits)
}

// splitCrossingPolygons splits every polygon with vertices on both sides
// along a chord on the plane. The chord runs from the on-plane vertex just
// before the polygon's outside run to the one just after it, so on-plane
// vertices elsewhere in the loop stay with the inside part. The part
// outside the plane becomes the new polygon.
func (c *cutter) splitCrossingPolygons() error {
	w := &c.work
	count := len(w.Polygons)
	for p := 0; p < count; p++ {
		poly := w.Polygons[p]
		n := poly.EdgeCount

		// Loop positions of the vertices strictly off the plane.
		c.strict = c.strict[:0]
		hasIn, hasOut := false, false
		for k := 0; k < n; k++ {
			switch c.sides[w.HalfEdges[poly.FirstEdge+k].VertexIndex] {
			case Inside:
				hasIn = true
				c.strict = append(c.strict, k)
			case Outside:
				hasOut = true
				c.strict = append(c.strict, k)
			}
		}
		if !hasIn && !hasOut {
			return fmt.Errorf("polygon %d: %w", p, ErrCoplanarCrossing)
		}
		if !hasIn || !hasOut {
			continue
		}

		// A convex loop leaves the inside once and comes back once.
		exit, entry, turns := -1, -1, 0
		for i, k := range c.strict {
			next := c.strict[(i+1)%len(c.strict)]
			from := c.sides[w.HalfEdges[poly.FirstEdge+k].VertexIndex]
			to := c.sides[w.HalfEdges[poly.FirstEdge+next].VertexIndex]
			switch {
			case from == Inside && to == Outside:
				exit = poly.FirstEdge + (next+n-1)%n
				turns++
			case from == Outside && to == Inside:
				entry = poly.FirstEdge + (k+1)%n
			}
		}
		if turns != 1 {
			return fmt.Errorf("polygon %d leaves the kept side %d times: %w", p, turns, ErrCrossingCount)
		}
		// Crossing edges were split, so both chord ends are on the plane.
		if c.sides[w.HalfEdges[exit].VertexIndex] != On || c.sides[w.HalfEdges[entry].VertexIndex] != On {
			return fmt.Errorf("polygon %d: inside and outside vertices are adjacent: %w", p, ErrCrossingCount)
		}
		if _, err := w.splitPolygon(p, exit, entry); err != nil {
			return err
		}
	}
	return nil
}

// buildCaps closes both halves of the split surface. Every on-plane
// half-edge of a kept polygon is collected and chained into one loop; the
// kept cap is built along that loop and twinned with the kept polygons,
// and the discarded cap mirrors it edge for edge on the other side and is
// twinned with the discarded polygons. Each half is then a closed shell of
// its own. It returns the kept cap's polygon index.
func (c *cutter) buildCaps(cp CutPlane) (int, error) {
	w := &c.work

	c.polySide = resize(c.polySide, len(w.Polygons))
	for p, poly := range w.Polygons {
		c.polySide[p] = On
		for e := poly.FirstEdge; e < poly.FirstEdge+poly.EdgeCount; e++ {
			if s := c.sides[w.HalfEdges[e].VertexIndex]; s != On {
				c.polySide[p] = s
				break
			}
		}
	}

	c.byEnd = resize(c.byEnd, len(w.Vertices))
	for i := range c.byEnd {
		c.byEnd[i] = -1
	}
	c.boundary = c.boundary[:0]
	for p, poly := range w.Polygons {
		if c.polySide[p] != Inside {
			continue
		}
		for e := poly.FirstEdge; e < poly.FirstEdge+poly.EdgeCount; e++ {
			end := w.HalfEdges[e].VertexIndex
			start := w.HalfEdges[w.prevEdge(p, e)].VertexIndex
			if c.sides[start] != On || c.sides[end] != On {
				continue
			}
			twin := w.HalfEdges[e].TwinIndex
			if c.polySide[w.HalfEdgePolygonIndices[twin]] != Outside {
				continue
			}
			if c.byEnd[end] >= 0 {
				return -1, fmt.Errorf("vertex %d ends two boundary edges: %w", end, ErrMultipleCapLoops)
			}
			c.byEnd[end] = e
			c.boundary = append(c.boundary, e)
		}
	}
	if len(c.boundary) < 3 {
		return -1, fmt.Errorf("%d boundary edges: %w", len(c.boundary), ErrOpenCapLoop)
	}

	// Walk the kept boundary backwards: the next edge ends where the
	// current one starts.
	loop := c.queue[:0]
	first := c.boundary[0]
	for e := first; ; {
		loop = append(loop, e)
		if len(loop) > len(c.boundary) {
			return -1, ErrOpenCapLoop
		}
		next := c.byEnd[w.HalfEdgeStart(e)]
		if next < 0 {
			return -1, fmt.Errorf("no boundary edge ends at vertex %d: %w", w.HalfEdgeStart(e), ErrOpenCapLoop)
		}
		if next == first {
			break
		}
		e = next
	}
	c.queue = loop
	if len(loop) != len(c.boundary) {
		return -1, fmt.Errorf("loop of %d edges, %d boundary edges: %w", len(loop), len(c.boundary), ErrMultipleCapLoops)
	}

	c.twins = c.twins[:0]
	for _, h := range loop {
		c.twins = append(c.twins, w.HalfEdges[h].TwinIndex)
	}

	n := len(loop)
	keptCap := len(w.Polygons)
	keptFirst := len(w.HalfEdges)
	for k, h := range loop {
		w.HalfEdges = append(w.HalfEdges, HalfEdge{VertexIndex: w.HalfEdgeStart(h), TwinIndex: h})
		w.HalfEdges[h].TwinIndex = keptFirst + k
	}
	discardedFirst := len(w.HalfEdges)
	for k := n - 1; k >= 0; k-- {
		g := c.twins[k]
		pos := len(w.HalfEdges)
		w.HalfEdges = append(w.HalfEdges, HalfEdge{VertexIndex: w.HalfEdges[loop[k]].VertexIndex, TwinIndex: g})
		w.HalfEdges[g].TwinIndex = pos
	}

	w.Polygons = append(w.Polygons,
		Polygon{FirstEdge: keptFirst, EdgeCount: n, DescriptionIndex: cp.DescriptionIndex},
		Polygon{FirstEdge: discardedFirst, EdgeCount: n, DescriptionIndex: cp.DescriptionIndex},
	)
	w.Planes = append(w.Planes, cp.Plane, cp.Plane.Flip())
	for k := 0; k < n; k++ {
		w.HalfEdgePolygonIndices = append(w.HalfEdgePolygonIndices, keptCap)
	}
	for k := 0; k < n; k++ {
		w.HalfEdgePolygonIndices = append(w.HalfEdgePolygonIndices, keptCap+1)
	}
	c.polySide = append(c.polySide, Inside, Outside)
	return keptCap, nil
}

// floodFill marks every polygon reachable from start across twin links.
// After capping, that is exactly the kept shell.
func (c *cutter) floodFill(start int) error {
	w := &c.work
	c.visited = resize(c.visited, len(w.Polygons))
	for i := range c.visited {
		c.visited[i] = false
	}

	queue := append(c.queue[:0], start)
	c.visited[start] = true
	for len(queue) > 0 {
		p := queue[len(queue)-1]
		queue = queue[:len(queue)-1]
		if c.polySide[p] == Outside {
			return fmt.Errorf("polygon %d: %w", p, errFloodLeak)
		}
		poly := w.Polygons[p]
		for e := poly.FirstEdge; e < poly.FirstEdge+poly.EdgeCount; e++ {
			q := w.HalfEdgePolygonIndices[w.HalfEdges[e].TwinIndex]
			if q >= 0 && !c.visited[q] {
				c.visited[q] = true
				queue = append(queue, q)
			}
		}
	}
	c.queue = queue
	return nil
}
