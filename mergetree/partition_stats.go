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
	"sort"
	"time"
)

type partitionStatistics struct {
	minAge     time.Duration
	partsCount int
}

// calculateStatisticsForPartitions sums part counts and tracks the minimum
// part age per partition. Only feeds the forced whole-partition heuristic,
// normal per-range selection never looks at it.
func calculateStatisticsForPartitions(ranges PartsRanges) map[string]partitionStatistics {
	stats := map[string]partitionStatistics{}

	for _, r := range ranges {
		partitionStats, ok := stats[r.PartitionID()]
		if !ok {
			partitionStats.minAge = time.Duration(1<<63 - 1)
		}

		partitionStats.partsCount += len(r)
		for _, p := range r {
			if p.Age < partitionStats.minAge {
				partitionStats.minAge = p.Age
			}
		}

		stats[r.PartitionID()] = partitionStats
	}

	return stats
}

// combineByPartitions groups refined ranges by their partition id.
func combineByPartitions(ranges PartsRanges) map[string]PartsRanges {
	byPartition := map[string]PartsRanges{}
	for _, r := range ranges {
		byPartition[r.PartitionID()] = append(byPartition[r.PartitionID()], r)
	}
	return byPartition
}

// preferForEntireOptimize reports whether partition a is a better candidate
// for forced whole-partition optimization than partition b. A partition
// that is down to a single part is the cheapest to finish, so it beats any
// multi-part partition regardless of age. Otherwise the older partition
// wins.
func preferForEntireOptimize(a, b partitionStatistics) bool {
	if (a.partsCount == 1) != (b.partsCount == 1) {
		return a.partsCount == 1
	}
	return a.minAge > b.minAge
}

// bestPartitionToOptimizeEntire picks at most one partition to recommend
// for full optimization. This is an anti-starvation mechanism: without it,
// partitions with few but old parts could be perpetually skipped in favor
// of partitions offering larger regular merges.
func (mm *MergerMutator) bestPartitionToOptimizeEntire(stats map[string]partitionStatistics) string {
	if !mm.settings.MinAgeToForceMergeOnPartitionOnly {
		return ""
	}
	if mm.settings.MinAgeToForceMerge <= 0 {
		return ""
	}

	occupied := mm.pool.OccupiedTasksCount()
	if occupied > 1 && mm.pool.MaxTasksCount()-occupied < mm.settings.FreePoolEntriesToOptimizePartition {
		mm.logger.WithField("action", "optimize_entire_partition").
			Info("not enough idle pool entries to optimize an entire partition, " +
				"see the free-pool-entries and pool-size settings")
		return ""
	}

	if len(stats) == 0 {
		return ""
	}

	ids := make([]string, 0, len(stats))
	for id := range stats {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	best := ids[0]
	for _, id := range ids[1:] {
		if preferForEntireOptimize(stats[id], stats[best]) {
			best = id
		}
	}

	if stats[best].minAge < mm.settings.MinAgeToForceMerge {
		return ""
	}
	if stats[best].partsCount == 1 {
		// a single part is the preferred shape to finish, but if the winner
		// is already down to one part there is nothing left to optimize
		return ""
	}

	return best
}
