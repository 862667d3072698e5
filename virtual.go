package rx

import (
	"container/heap"
	"sync"
	"time"
)

// VirtualEpoch is the time at which every VirtualScheduler starts.
var VirtualEpoch = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

// VirtualScheduler is a Scheduler whose clock only moves when Advance or
// AdvanceTo is called. Due tasks fire synchronously on the advancing
// goroutine, ordered by due time and then by the order they were scheduled.
//
// It is safe for concurrent use. Tasks may schedule and cancel other tasks
// while firing.
type VirtualScheduler struct {
	advancing sync.Mutex

	mu    sync.Mutex
	now   time.Time
	seq   uint64
	queue virtualQueue
}

// NewVirtualScheduler creates a scheduler positioned at VirtualEpoch.
func NewVirtualScheduler() *VirtualScheduler {
	return &VirtualScheduler{now: VirtualEpoch}
}

// Now returns the current virtual time.
func (v *VirtualScheduler) Now() time.Time {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.now
}

// Elapsed returns the virtual time passed since VirtualEpoch.
func (v *VirtualScheduler) Elapsed() time.Duration {
	return v.Now().Sub(VirtualEpoch)
}

// Schedule registers task to fire delay after the current virtual time.
func (v *VirtualScheduler) Schedule(delay, period time.Duration, task func()) Task {
	if delay < 0 {
		delay = 0
	}
	v.mu.Lock()
	defer v.mu.Unlock()

	t := &virtualTask{
		owner:  v,
		due:    v.now.Add(delay),
		period: period,
		seq:    v.nextSeq(),
		fn:     task,
	}
	heap.Push(&v.queue, t)
	return t
}

// Pending returns the number of tasks waiting to fire.
func (v *VirtualScheduler) Pending() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.queue.Len()
}

// Advance moves the clock forward by d, firing every task due on the way.
func (v *VirtualScheduler) Advance(d time.Duration) {
	if d < 0 {
		d = 0
	}
	v.advancing.Lock()
	defer v.advancing.Unlock()
	v.advanceTo(v.Now().Add(d))
}

// AdvanceTo moves the clock to target, firing every task due on the way.
// A target in the past only fires tasks that are already due.
func (v *VirtualScheduler) AdvanceTo(target time.Time) {
	v.advancing.Lock()
	defer v.advancing.Unlock()
	v.advanceTo(target)
}

func (v *VirtualScheduler) advanceTo(target time.Time) {
	for {
		v.mu.Lock()
		if v.queue.Len() == 0 || v.queue[0].due.After(target) {
			if target.After(v.now) {
				v.now = target
			}
			v.mu.Unlock()
			return
		}

		t := heap.Pop(&v.queue).(*virtualTask)
		if t.due.After(v.now) {
			v.now = t.due
		}
		if t.period > 0 {
			t.due = t.due.Add(t.period)
			t.seq = v.nextSeq()
			heap.Push(&v.queue, t)
		}
		v.mu.Unlock()

		t.fn()
	}
}

func (v *VirtualScheduler) nextSeq() uint64 {
	v.seq++
	return v.seq
}

type virtualTask struct {
	owner  *VirtualScheduler
	due    time.Time
	period time.Duration
	seq    uint64
	fn     func()
	index  int
}

func (t *virtualTask) Cancel() {
	v := t.owner
	v.mu.Lock()
	defer v.mu.Unlock()
	if t.index >= 0 && t.index < v.queue.Len() && v.queue[t.index] == t {
		heap.Remove(&v.queue, t.index)
	}
	t.period = 0
}

// virtualQueue is a min-heap of tasks ordered by due time, then sequence.
type virtualQueue []*virtualTask

func (q virtualQueue) Len() int { return len(q) }

func (q virtualQueue) Less(i, j int) bool {
	if q[i].due.Equal(q[j].due) {
		return q[i].seq < q[j].seq
	}
	return q[i].due.Before(q[j].due)
}

func (q virtualQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *virtualQueue) Push(x any) {
	t := x.(*virtualTask)
	t.index = len(*q)
	*q = append(*q, t)
}

func (q *virtualQueue) Pop() any {
	old := *q
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*q = old[:n-1]
	return t
}
