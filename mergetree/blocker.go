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

import (
	"sync"
	"sync/atomic"
)

// ActionBlocker is a cooperative cancellation gate. While at least one
// holder keeps it cancelled, the gated category of merges is suppressed.
// There is no preemption: the flag is polled at each selection attempt and
// is expected to be polled inside long-running tasks.
type ActionBlocker struct {
	counter atomic.Int64
}

// IsCancelled reports whether the gate is currently tripped.
func (b *ActionBlocker) IsCancelled() bool {
	return b.counter.Load() > 0
}

// Cancel trips the gate and returns a release func. Multiple holders stack,
// the gate clears once every holder has released. Releasing twice is safe.
func (b *ActionBlocker) Cancel() (release func()) {
	b.counter.Add(1)

	var once sync.Once
	return func() {
		once.Do(func() {
			b.counter.Add(-1)
		})
	}
}
