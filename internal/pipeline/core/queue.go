package core

import (
	"container/heap"
	"errors"
	"sync"
)

// ErrQueueEmpty is returned when Pop() is called on an empty queue.
var ErrQueueEmpty = errors.New("job queue is empty")

// JobQueue is a thread-safe heap of pending jobs. Higher Priority values are
// popped first; jobs with the same priority are served by CreatedAt, then in
// insertion order.
type JobQueue interface {
	Push(job *Job) error
	Pop() (*Job, error)
	Len() int
	Drain() []*Job
}

type heapJobQueue struct {
	pq       priorityQueue
	mu       sync.RWMutex
	sequence uint64
}

func NewJobQueue() JobQueue {
	pq := make(priorityQueue, 0)
	heap.Init(&pq)
	return &heapJobQueue{pq: pq}
}

func (q *heapJobQueue) Push(job *Job) error {
	if job == nil {
		return errors.New("cannot push nil job")
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	heap.Push(&q.pq, &item{
		job:      job,
		sequence: q.sequence,
	})
	q.sequence++
	return nil
}

func (q *heapJobQueue) Pop() (*Job, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.pq.Len() == 0 {
		return nil, ErrQueueEmpty
	}
	it := heap.Pop(&q.pq).(*item)
	return it.job, nil
}

func (q *heapJobQueue) Len() int {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.pq.Len()
}

// Drain removes every job and returns them in dispatch order.
func (q *heapJobQueue) Drain() []*Job {
	q.mu.Lock()
	defer q.mu.Unlock()

	jobs := make([]*Job, 0, q.pq.Len())
	for q.pq.Len() > 0 {
		jobs = append(jobs, heap.Pop(&q.pq).(*item).job)
	}
	return jobs
}

// item wraps a Job with its sequence number and index in the heap.
type item struct {
	job      *Job
	sequence uint64 // Insertion order for FIFO within same priority and timestamp
	index    int    // Required by heap.Interface
}

// priorityQueue satisfies heap.Interface.
type priorityQueue []*item

func (pq priorityQueue) Len() int {
	return len(pq)
}

func (pq priorityQueue) Less(i, j int) bool {
	a, b := pq[i].job, pq[j].job
	if a.Priority != b.Priority {
		return a.Priority > b.Priority
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return pq[i].sequence < pq[j].sequence
}

func (pq priorityQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].index = i
	pq[j].index = j
}

func (pq *priorityQueue) Push(x any) {
	n := len(*pq)
	it := x.(*item)
	it.index = n
	*pq = append(*pq, it)
}

func (pq *priorityQueue) Pop() any {
	old := *pq
	n := len(old)
	it := old[n-1]
	old[n-1] = nil
	it.index = -1
	*pq = old[0 : n-1]
	return it
}
