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
	"time"

	"github.com/handgunman/ClickHouse/mergetree"
)

// SimpleSelector scores sliding windows of adjacent parts and merges the
// window with the best size balance: many parts of similar size are cheap
// to merge, a window dominated by one huge part is mostly wasted rewriting.
// Older windows get a bonus so that cold partitions eventually settle.
type SimpleSelector struct {
	// MaxPartsToMerge bounds the window width. Defaults to 10.
	MaxPartsToMerge int

	// MinScore is the balance threshold below which merging is not worth
	// it. Defaults to 0.3.
	MinScore float64

	// AgeBonusAfter is the age at which a window's score starts being
	// boosted. Zero disables the bonus.
	AgeBonusAfter time.Duration
}

func NewSimpleSelector() *SimpleSelector {
	return &SimpleSelector{
		MaxPartsToMerge: 10,
		MinScore:        0.3,
		AgeBonusAfter:   time.Hour,
	}
}

func (s *SimpleSelector) Select(ranges mergetree.PartsRanges, maxTotalSize uint64,
	now time.Time,
) mergetree.PartsRange {
	var best mergetree.PartsRange
	bestScore := s.MinScore

	for _, r := range ranges {
		for start := 0; start < len(r)-1; start++ {
			var total uint64
			var largest uint64
			minAge := r[start].Age

			for end := start + 1; end < len(r) && end-start < s.MaxPartsToMerge; end++ {
				window := r[start : end+1]
				total = window.TotalSize()
				for _, p := range window {
					if p.Size > largest {
						largest = p.Size
					}
					if p.Age < minAge {
						minAge = p.Age
					}
				}

				if maxTotalSize > 0 && total > maxTotalSize {
					break
				}

				if score := s.score(window, total, largest, minAge); score > bestScore {
					bestScore = score
					best = window
				}
			}
		}
	}

	return best
}

func (s *SimpleSelector) score(window mergetree.PartsRange, total, largest uint64,
	minAge time.Duration,
) float64 {
	if total == 0 {
		// empty parts are free to merge away
		return 1
	}

	// fraction of bytes that are not the single largest part: 0 when one
	// part dominates completely, approaching 1 for many equal parts
	balance := float64(total-largest) / float64(total)

	if s.AgeBonusAfter > 0 && minAge > s.AgeBonusAfter {
		balance *= 1 + float64(minAge)/float64(s.AgeBonusAfter)/10
	}

	return balance
}
