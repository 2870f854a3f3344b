package pipeline

import (
	"sync/atomic"

	"github.com/data-bridge/bridgeflow/internal/planner"
)

// taskQueue hands out each task exactly once, in plan order. The task slice
// is never written after construction; only the cursor moves.
type taskQueue struct {
	tasks  []planner.Task
	cursor atomic.Int64
}

func newTaskQueue(tasks []planner.Task) *taskQueue {
	return &taskQueue{tasks: tasks}
}

// next returns the next task and its index, or ok=false when drained.
func (q *taskQueue) next() (task *planner.Task, idx int, ok bool) {
	i := int(q.cursor.Add(1) - 1)
	if i >= len(q.tasks) {
		return nil, i, false
	}
	return &q.tasks[i], i, true
}

func (q *taskQueue) len() int { return len(q.tasks) }
