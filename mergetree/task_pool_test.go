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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskPool(t *testing.T) {
	pool := NewTaskPool(2)
	assert.Equal(t, int64(2), pool.MaxTasksCount())
	assert.Equal(t, int64(0), pool.OccupiedTasksCount())

	require.True(t, pool.TryAcquire())
	require.True(t, pool.TryAcquire())
	assert.False(t, pool.TryAcquire(), "a full pool rejects further tasks")
	assert.Equal(t, int64(2), pool.OccupiedTasksCount(),
		"a failed acquire leaves occupancy untouched")

	pool.Release()
	assert.True(t, pool.TryAcquire())
}

func TestNewTaskPool_ClampsToOne(t *testing.T) {
	pool := NewTaskPool(0)
	assert.Equal(t, int64(1), pool.MaxTasksCount())
	assert.True(t, pool.TryAcquire())
	assert.False(t, pool.TryAcquire())
}
