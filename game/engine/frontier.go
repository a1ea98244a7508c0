package engine

import "container/heap"

// frontier holds arena indices of pending search states
type frontier interface {
	push(idx int32, cost int)
	pop() int32
	Len() int
}

func newFrontier(f Frontier) frontier {
	if f == FrontierCheapest {
		return &costQueue{}
	}
	return &stack{}
}

type stack []int32

func (s *stack) push(idx int32, _ int) { *s = append(*s, idx) }

func (s *stack) pop() int32 {
	old := *s
	idx := old[len(old)-1]
	*s = old[:len(old)-1]
	return idx
}

func (s *stack) Len() int { return len(*s) }

type queued struct {
	idx  int32
	cost int
}

// costQueue is a min-heap on cost; ties go to the most recently pushed state
type costQueue []queued

func (q costQueue) Len() int { return len(q) }
func (q costQueue) Less(i, j int) bool {
	if q[i].cost != q[j].cost {
		return q[i].cost < q[j].cost
	}
	return q[i].idx > q[j].idx
}
func (q costQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *costQueue) Push(x interface{}) { *q = append(*q, x.(queued)) }

func (q *costQueue) Pop() interface{} {
	old := *q
	n := len(old)
	x := old[n-1]
	*q = old[:n-1]
	return x
}

func (q *costQueue) push(idx int32, cost int) { heap.Push(q, queued{idx: idx, cost: cost}) }

func (q *costQueue) pop() int32 { return heap.Pop(q).(queued).idx }
