package graph

// NoNode marks "no parent" in parent slices and "no target" for searches
// that should flood the whole reachable component.
const NoNode = -1

// =============================================================================
// Queue
// =============================================================================

// Queue provides a FIFO queue for BFS traversal.
// It uses a slice with a head pointer to avoid repeated allocations.
type Queue struct {
	data []int
	head int
}

// NewQueue creates a new Queue with the specified initial capacity.
func NewQueue(capacity int) *Queue {
	return &Queue{
		data: make([]int, 0, capacity),
	}
}

// Push adds an element to the end of the queue.
func (q *Queue) Push(v int) {
	q.data = append(q.data, v)
}

// Pop removes and returns the element at the front of the queue.
// Panics if the queue is empty.
func (q *Queue) Pop() int {
	v := q.data[q.head]
	q.head++
	return v
}

// Empty returns true if the queue contains no elements.
func (q *Queue) Empty() bool {
	return q.head >= len(q.data)
}

// Len returns the number of elements currently in the queue.
func (q *Queue) Len() int {
	return len(q.data) - q.head
}

// Reset clears the queue for reuse, keeping the underlying capacity.
func (q *Queue) Reset() {
	q.data = q.data[:0]
	q.head = 0
}

// =============================================================================
// Search state
// =============================================================================

// Search holds the scratch slices of one path search. A Search is reused
// across the iterations of a single solve and must not be shared.
type Search struct {
	Parent  []int
	Visited []bool

	stack []int
	queue *Queue
}

// NewSearch allocates scratch space for an n-node graph.
func NewSearch(n int) *Search {
	s := &Search{
		Parent:  make([]int, n),
		Visited: make([]bool, n),
		stack:   make([]int, 0, n),
		queue:   NewQueue(n),
	}
	for i := range s.Parent {
		s.Parent[i] = NoNode
	}
	return s
}

func (s *Search) reset(source int) {
	clear(s.Visited)
	s.Visited[source] = true
	s.Parent[source] = NoNode
}

// =============================================================================
// DFS
// =============================================================================

// DFS looks for a source→sink path over edges with positive residual capacity
// using an explicit stack.
//
// The node on top of the stack is popped and every unvisited neighbour v with
// residual[u][v] > 0 is marked, given u as parent and pushed, scanning v in
// ascending order. The search stops as soon as the sink is marked.
//
// Pass sink = NoNode to flood the whole reachable component; Visited then
// holds the reachable set.
func (s *Search) DFS(residual *Matrix, source, sink int) bool {
	n := residual.Size()
	s.reset(source)
	s.stack = append(s.stack[:0], source)

	for len(s.stack) > 0 {
		u := s.stack[len(s.stack)-1]
		s.stack = s.stack[:len(s.stack)-1]

		row := residual.Row(u)
		for v := 0; v < n; v++ {
			if s.Visited[v] || row[v] <= 0 {
				continue
			}
			s.Visited[v] = true
			s.Parent[v] = u
			s.stack = append(s.stack, v)

			if v == sink {
				return true
			}
		}
	}

	return false
}

// =============================================================================
// BFS
// =============================================================================

// BFS is the breadth-first counterpart of DFS. The path it finds is a shortest
// one in edge count, which is what makes Edmonds-Karp polynomial.
func (s *Search) BFS(residual *Matrix, source, sink int) bool {
	n := residual.Size()
	s.reset(source)
	s.queue.Reset()
	s.queue.Push(source)

	for !s.queue.Empty() {
		u := s.queue.Pop()

		row := residual.Row(u)
		for v := 0; v < n; v++ {
			if s.Visited[v] || row[v] <= 0 {
				continue
			}
			s.Visited[v] = true
			s.Parent[v] = u

			if v == sink {
				return true
			}
			s.queue.Push(v)
		}
	}

	return false
}

// Reachable returns the set of nodes reachable from source over edges with
// positive residual capacity.
func Reachable(residual *Matrix, source int) []bool {
	s := NewSearch(residual.Size())
	s.DFS(residual, source, NoNode)
	return s.Visited
}
