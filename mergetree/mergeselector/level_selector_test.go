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

package mergeselector

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/handgunman/ClickHouse/mergetree"
)

// leveled builds a contiguous range with the given per-part levels, each
// part 100 bytes.
func leveled(partitionID string, levels ...uint32) mergetree.PartsRange {
	parts := make(mergetree.PartsRange, len(levels))
	for i, level := range levels {
		parts[i] = mergetree.PartProperties{
			Name: fmt.Sprintf("%s_p%d", partitionID, i),
			Info: mergetree.PartInfo{
				PartitionID: partitionID,
				MinBlock:    int64(i),
				MaxBlock:    int64(i),
				Level:       level,
			},
			Size: 100,
		}
	}
	return parts
}

func TestLevelSelector_PicksLowestLevelRun(t *testing.T) {
	s := NewLevelSelector()
	ranges := mergetree.PartsRanges{leveled("202501", 2, 2, 0, 0, 0, 1)}

	picked := s.Select(ranges, 0, time.Now())

	assert.Equal(t, []string{"202501_p2", "202501_p3", "202501_p4"}, picked.Names())
}

func TestLevelSelector_LowestLevelWinsAcrossRanges(t *testing.T) {
	s := NewLevelSelector()
	ranges := mergetree.PartsRanges{
		leveled("202501", 3, 3),
		leveled("202502", 1, 1),
	}

	picked := s.Select(ranges, 0, time.Now())

	assert.Equal(t, "202502", picked.PartitionID())
}

func TestLevelSelector_NoAdjacentEqualLevels(t *testing.T) {
	s := NewLevelSelector()
	ranges := mergetree.PartsRanges{
		leveled("202501", 0, 1, 2),
		leveled("202502", 4),
	}

	assert.Nil(t, s.Select(ranges, 0, time.Now()))
}

func TestLevelSelector_TrimsToSizeBudget(t *testing.T) {
	s := NewLevelSelector()
	ranges := mergetree.PartsRanges{leveled("202501", 0, 0, 0)}

	picked := s.Select(ranges, 250, time.Now())
	assert.Len(t, picked, 2, "a 250 byte budget fits two 100 byte parts")

	assert.Nil(t, s.Select(ranges, 150, time.Now()),
		"even the minimal pair exceeds the budget")
}
