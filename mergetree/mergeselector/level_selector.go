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
	"math"
	"time"

	"github.com/handgunman/ClickHouse/mergetree"
)

// LevelSelector merges neighbors of equal level, always working on the
// lowest level that has at least two adjacent parts. Merging within one
// level keeps write amplification predictable: every row is rewritten at
// most once per level.
type LevelSelector struct{}

func NewLevelSelector() *LevelSelector {
	return &LevelSelector{}
}

func (s *LevelSelector) Select(ranges mergetree.PartsRanges, maxTotalSize uint64,
	now time.Time,
) mergetree.PartsRange {
	// first determine the lowest level with an adjacent pair
	currLowestLevel := uint32(math.MaxUint32)
	found := false

	for _, r := range ranges {
		for i := 1; i < len(r); i++ {
			if r[i].Info.Level != r[i-1].Info.Level {
				continue
			}
			if r[i].Info.Level < currLowestLevel {
				currLowestLevel = r[i].Info.Level
				found = true
			}
		}
	}

	if !found {
		return nil
	}

	// now take the first full run of that level
	for _, r := range ranges {
		runStart := -1
		for i := 0; i <= len(r); i++ {
			if i < len(r) && r[i].Info.Level == currLowestLevel {
				if runStart < 0 {
					runStart = i
				}
				continue
			}
			if runStart >= 0 && i-runStart >= 2 {
				if run := trimToSize(r[runStart:i], maxTotalSize); run != nil {
					return run
				}
			}
			runStart = -1
		}
	}

	return nil
}
