package diagram

import (
	"container/heap"
	"fmt"

	"github.com/pnid-studio/backend/internal/models"
)

// Router costs. Steps cost 10 so the Manhattan heuristic stays
// admissible alongside the bend and crossing penalties.
const (
	costStep  = 10
	costBend  = 40
	costCross = 15
)

// routeDirs is the fixed neighbor expansion order. Horizontal moves
// come first so equal-cost routes prefer horizontal runs, and the order
// pins down tie-breaking across runs.
var routeDirs = [4]models.Direction{models.DirRight, models.DirLeft, models.DirUp, models.DirDown}

// cell occupancy bits for routed pipelines.
const (
	occupiedH = 1 << iota
	occupiedV
)

// Route computes an orthogonal path for the pipeline and commits it.
// The path runs between the exit cells one step outside each port.
// Returns ErrUnroutable (wrapped with the pipeline tag) when no path
// exists within the expansion budget; the pipeline is left unrouted.
func (d *Diagram) Route(tag string) ([]models.Segment, error) {
	p, ok := d.pipelines[tag]
	if !ok {
		return nil, rejectf(RejectUnknownPipeline, "no pipeline %q", tag)
	}
	src, err := d.exitPoint(p.From)
	if err != nil {
		return nil, err
	}
	dst, err := d.exitPoint(p.To)
	if err != nil {
		return nil, err
	}
	_, srcDir, _ := d.PortPoint(p.From)

	if !d.inSheet(src) || !d.inSheet(dst) {
		return nil, fmt.Errorf("pipeline %s: port exit leaves the sheet: %w", tag, ErrUnroutable)
	}

	blocked := d.blockedCells()
	occupied := d.occupiedCells(tag)
	if blocked[src] || blocked[dst] {
		return nil, fmt.Errorf("pipeline %s: port exit blocked by equipment: %w", tag, ErrUnroutable)
	}

	path := d.shortCircuit(src, dst, blocked, occupied)
	if path == nil {
		path, err = d.searchPath(src, srcDir, dst, blocked, occupied)
		if err != nil {
			return nil, fmt.Errorf("pipeline %s: %w", tag, err)
		}
	}

	segs := pathSegments(path)
	p.Segments = segs
	d.revision++
	return segs, nil
}

// RouteAll routes every unrouted pipeline in tag order. Failures do not
// stop the pass; they are reported per pipeline.
func (d *Diagram) RouteAll() (routed []string, failed map[string]string) {
	failed = make(map[string]string)
	for _, tag := range d.PipelineTags() {
		if d.pipelines[tag].Routed() {
			continue
		}
		if _, err := d.Route(tag); err != nil {
			failed[tag] = err.Error()
			continue
		}
		routed = append(routed, tag)
	}
	return routed, failed
}

// blockedCells rasterizes every placed footprint into a cell set.
func (d *Diagram) blockedCells() map[models.Point]bool {
	blocked := make(map[models.Point]bool)
	d.index.each(func(_ string, r models.Rect) {
		for x := r.X; x < r.X+r.W; x++ {
			for y := r.Y; y < r.Y+r.H; y++ {
				blocked[models.Point{X: x, Y: y}] = true
			}
		}
	})
	return blocked
}

// occupiedCells marks the cells used by other pipelines' routes with
// their run orientation. The pipeline being routed is excluded so
// re-routing does not collide with its own previous path.
func (d *Diagram) occupiedCells(skipTag string) map[models.Point]uint8 {
	occ := make(map[models.Point]uint8)
	for tag, p := range d.pipelines {
		if tag == skipTag {
			continue
		}
		for _, s := range p.Segments {
			bit := uint8(occupiedV)
			if s.Horizontal() {
				bit = occupiedH
			}
			if s.Length() == 0 {
				bit = occupiedH | occupiedV
			}
			for _, c := range segmentCells(s) {
				occ[c] |= bit
			}
		}
	}
	return occ
}

func segmentCells(s models.Segment) []models.Point {
	cells := []models.Point{s.A}
	step := models.Point{}
	switch {
	case s.B.X > s.A.X:
		step.X = 1
	case s.B.X < s.A.X:
		step.X = -1
	case s.B.Y > s.A.Y:
		step.Y = 1
	case s.B.Y < s.A.Y:
		step.Y = -1
	default:
		return cells
	}
	for c := s.A; c != s.B; {
		c = c.Add(step.X, step.Y)
		cells = append(cells, c)
	}
	return cells
}

// shortCircuit tries the trivial paths before the full search: a
// straight run, then the two single-bend L shapes (horizontal leg
// first, then vertical leg first). Candidates must be completely clear;
// anything touching an occupied cell falls through to A*, which weighs
// crossings properly.
func (d *Diagram) shortCircuit(src, dst models.Point, blocked map[models.Point]bool, occupied map[models.Point]uint8) []models.Point {
	if src == dst {
		return []models.Point{src}
	}
	clear := func(a, b models.Point) bool {
		for _, c := range segmentCells(models.Segment{A: a, B: b}) {
			if blocked[c] || occupied[c] != 0 {
				return false
			}
		}
		return true
	}
	if (src.X == dst.X || src.Y == dst.Y) && clear(src, dst) {
		return []models.Point{src, dst}
	}
	if src.X != dst.X && src.Y != dst.Y {
		hCorner := models.Point{X: dst.X, Y: src.Y}
		if clear(src, hCorner) && clear(hCorner, dst) {
			return []models.Point{src, hCorner, dst}
		}
		vCorner := models.Point{X: src.X, Y: dst.Y}
		if clear(src, vCorner) && clear(vCorner, dst) {
			return []models.Point{src, vCorner, dst}
		}
	}
	return nil
}

// routeState is one A* node: a cell plus the heading used to enter it,
// so bends can be priced.
type routeState struct {
	p       models.Point
	heading models.Direction
}

// searchPath runs bounded A* over free cells. Ties break on fewer
// bends, then insertion order, which together with the fixed neighbor
// order makes results deterministic for identical diagrams.
func (d *Diagram) searchPath(src models.Point, srcDir models.Direction, dst models.Point, blocked map[models.Point]bool, occupied map[models.Point]uint8) ([]models.Point, error) {
	start := routeState{p: src, heading: srcDir}

	gScore := map[routeState]int{start: 0}
	cameFrom := make(map[routeState]routeState)
	visited := make(map[routeState]bool)

	pq := &routeQueue{}
	heap.Init(pq)
	seq := 0
	heap.Push(pq, &routeItem{state: start, f: manhattan(src, dst) * costStep, seq: seq})

	expansions := 0
	for pq.Len() > 0 {
		item := heap.Pop(pq).(*routeItem)
		cur := item.state

		if cur.p == dst {
			return reconstructPath(cameFrom, cur), nil
		}
		if visited[cur] {
			continue
		}
		visited[cur] = true

		expansions++
		if expansions > d.opts.MaxExpansions {
			return nil, fmt.Errorf("search budget of %d expansions exhausted: %w", d.opts.MaxExpansions, ErrUnroutable)
		}

		curG := gScore[cur]
		for _, dir := range routeDirs {
			dx, dy := dir.Delta()
			next := cur.p.Add(dx, dy)
			if !d.inSheet(next) || blocked[next] {
				continue
			}

			cost := costStep
			bends := item.bends
			if dir != cur.heading {
				cost += costBend
				bends++
			}
			if occ := occupied[next]; occ != 0 {
				// Running along another line's cells is never allowed;
				// perpendicular crossings cost extra under the allow
				// policy and are forbidden under strict.
				along := uint8(occupiedV)
				if dir == models.DirLeft || dir == models.DirRight {
					along = occupiedH
				}
				if occ&along != 0 || d.opts.Crossing == CrossingStrict {
					continue
				}
				cost += costCross
			}

			nextState := routeState{p: next, heading: dir}
			if visited[nextState] {
				continue
			}
			tentativeG := curG + cost
			if prev, seen := gScore[nextState]; seen && tentativeG >= prev {
				continue
			}
			gScore[nextState] = tentativeG
			cameFrom[nextState] = cur
			seq++
			heap.Push(pq, &routeItem{
				state: nextState,
				f:     tentativeG + manhattan(next, dst)*costStep,
				bends: bends,
				seq:   seq,
			})
		}
	}

	return nil, fmt.Errorf("destination unreachable: %w", ErrUnroutable)
}

func manhattan(a, b models.Point) int {
	dx := a.X - b.X
	if dx < 0 {
		dx = -dx
	}
	dy := a.Y - b.Y
	if dy < 0 {
		dy = -dy
	}
	return dx + dy
}

func reconstructPath(cameFrom map[routeState]routeState, end routeState) []models.Point {
	var path []models.Point
	cur := end
	for {
		path = append(path, cur.p)
		prev, ok := cameFrom[cur]
		if !ok {
			break
		}
		cur = prev
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// pathSegments compresses a cell path into maximal axis-aligned runs.
// A single-cell path becomes one degenerate segment so the pipeline
// still counts as routed.
func pathSegments(path []models.Point) []models.Segment {
	if len(path) == 0 {
		return nil
	}
	if len(path) == 1 {
		return []models.Segment{{A: path[0], B: path[0]}}
	}
	var segs []models.Segment
	anchor := path[0]
	for i := 1; i < len(path); i++ {
		if i == len(path)-1 {
			segs = append(segs, models.Segment{A: anchor, B: path[i]})
			break
		}
		prev, cur, next := path[i-1], path[i], path[i+1]
		sameAxis := (prev.X == cur.X && cur.X == next.X) || (prev.Y == cur.Y && cur.Y == next.Y)
		if !sameAxis {
			segs = append(segs, models.Segment{A: anchor, B: cur})
			anchor = cur
		}
	}
	return segs
}

// routeItem is a node in the A* priority queue.
type routeItem struct {
	state routeState
	f     int
	bends int
	seq   int
	index int
}

// routeQueue implements heap.Interface for the router.
type routeQueue []*routeItem

func (pq routeQueue) Len() int { return len(pq) }
func (pq routeQueue) Less(i, j int) bool {
	if pq[i].f != pq[j].f {
		return pq[i].f < pq[j].f
	}
	if pq[i].bends != pq[j].bends {
		return pq[i].bends < pq[j].bends
	}
	return pq[i].seq < pq[j].seq
}
func (pq routeQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].index = i
	pq[j].index = j
}

func (pq *routeQueue) Push(x interface{}) {
	n := len(*pq)
	item := x.(*routeItem)
	item.index = n
	*pq = append(*pq, item)
}

func (pq *routeQueue) Pop() interface{} {
	old := *pq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*pq = old[:n-1]
	return item
}
