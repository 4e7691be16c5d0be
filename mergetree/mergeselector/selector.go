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

// MergeSelector is the base strategy picking the most beneficial
// size-driven merge from a set of eligible ranges. Returns nil when no
// merge is worth its write amplification right now.
//
// maxTotalSize of 0 means unbounded. Selected ranges must be contiguous
// sub-ranges of the input ranges.
type MergeSelector interface {
	Select(ranges mergetree.PartsRanges, maxTotalSize uint64, now time.Time) mergetree.PartsRange
}

// trimToSize shortens a candidate run from the right until it fits the
// size budget, keeping at least two parts. Returns nil when even the two
// smallest leading parts do not fit.
func trimToSize(parts mergetree.PartsRange, maxTotalSize uint64) mergetree.PartsRange {
	if maxTotalSize == 0 {
		return parts
	}

	total := parts.TotalSize()
	for len(parts) > 2 && total > maxTotalSize {
		total -= parts[len(parts)-1].Size
		parts = parts[:len(parts)-1]
	}

	if total > maxTotalSize {
		return nil
	}
	return parts
}
