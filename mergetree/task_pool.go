//                           _       _
// __      _____  __ ___   ___  __ _| |_ ___
// \ \ /\ / / _ \/ _` \ \ / / |/ _` | __/ _ \
//  \ V  V /  __/ (_| |\ V /| | (_| | ||  __/
//   \_/\_/ \___|\__,_| \_/ |_|\__,_|\__\___|
//
//  Copyright © 2016 - 2025 Weaviate B.V. All rights reserved.
//
//  CONTACT: hello@weaviate.io
//

package mergetree

import "sync/atomic"

// TaskPool tracks how many merge/mutation tasks are in flight against a
// fixed maximum. The occupancy counter is read lock-free by the
// forced-optimization heuristic, races there only degrade heuristic
// quality, never correctness.
type TaskPool struct {
	maxTasks int64
	occupied atomic.Int64
}

func NewTaskPool(maxTasks int64) *TaskPool {
	if maxTasks < 1 {
		maxTasks = 1
	}
	return &TaskPool{maxTasks: maxTasks}
}

func (p *TaskPool) MaxTasksCount() int64 {
	return p.maxTasks
}

func (p *TaskPool) OccupiedTasksCount() int64 {
	return p.occupied.Load()
}

// TryAcquire reserves one pool entry, returning false when the pool is
// fully occupied.
func (p *TaskPool) TryAcquire() bool {
	if p.occupied.Add(1) > p.maxTasks {
		p.occupied.Add(-1)
		return false
	}
	return true
}

func (p *TaskPool) Release() {
	p.occupied.Add(-1)
}
