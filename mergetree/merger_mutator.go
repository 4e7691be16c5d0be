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
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
)

// SelectorApplier is the pluggable heuristic that picks the best candidate
// range to merge from a set of eligible ranges. It must treat the passed
// due-time maps as read-only snapshots.
type SelectorApplier interface {
	ChooseMergeFrom(ranges PartsRanges, metadata *TableMetadata, settings *Settings,
		nextDeleteTTLMergeTimes, nextRecompressTTLMergeTimes map[string]time.Time,
		canUseTTLMerges bool, now time.Time, logger logrus.FieldLogger) *MergeSelectorChoice
}

// MergerMutator decides which parts of one table should be merged (or
// mutated) next. It owns the per-partition TTL schedule state and the
// cancellation gates of its table and nothing else: part snapshots come
// from the collector, the heuristic from the applier, execution from the
// caller.
type MergerMutator struct {
	metadata      *TableMetadata
	storagePolicy StoragePolicy
	settings      *Settings
	pool          *TaskPool
	logger        logrus.FieldLogger
	metrics       *Metrics

	// TTLMergesBlocker suppresses all TTL-driven merge types while
	// cancelled. MergesBlocker gates merges and mutations entirely and is
	// polled by the executing tasks.
	TTLMergesBlocker ActionBlocker
	MergesBlocker    ActionBlocker

	// stateLock guards the TTL schedule maps and the disk-space warning
	// timestamp. Single writer at a time, readers get copied snapshots.
	stateLock                   sync.Mutex
	nextDeleteTTLMergeTimes     map[string]time.Time
	nextRecompressTTLMergeTimes map[string]time.Time
	diskSpaceWarningTime        time.Time
}

func NewMergerMutator(metadata *TableMetadata, storagePolicy StoragePolicy,
	settings *Settings, pool *TaskPool, logger logrus.FieldLogger, metrics *Metrics,
) *MergerMutator {
	return &MergerMutator{
		metadata:                    metadata,
		storagePolicy:               storagePolicy,
		settings:                    settings,
		pool:                        pool,
		logger:                      logger.WithField("table", metadata.Name),
		metrics:                     metrics,
		nextDeleteTTLMergeTimes:     map[string]time.Time{},
		nextRecompressTTLMergeTimes: map[string]time.Time{},
	}
}

// splitRangesForMerge refines raw collector ranges through the merge
// predicate and observes the throughput counters.
func (mm *MergerMutator) splitRangesForMerge(ranges PartsRanges, canMerge AllowedMergingPredicate) PartsRanges {
	start := time.Now()
	out := splitByMergePredicate(ranges, canMerge)
	mm.metrics.observeSplit(out, time.Since(start))
	return out
}

// ttlTimesSnapshot copies both schedule maps so that a selection attempt
// observes a consistent state even while another attempt commits a choice.
func (mm *MergerMutator) ttlTimesSnapshot() (deleteTimes, recompressTimes map[string]time.Time) {
	mm.stateLock.Lock()
	defer mm.stateLock.Unlock()

	deleteTimes = make(map[string]time.Time, len(mm.nextDeleteTTLMergeTimes))
	for k, v := range mm.nextDeleteTTLMergeTimes {
		deleteTimes[k] = v
	}
	recompressTimes = make(map[string]time.Time, len(mm.nextRecompressTTLMergeTimes))
	for k, v := range mm.nextRecompressTTLMergeTimes {
		recompressTimes[k] = v
	}
	return deleteTimes, recompressTimes
}

// updateTTLMergeTimes backs off the chosen TTL merge type for the choice's
// partition until dueTime. Regular choices update nothing.
func (mm *MergerMutator) updateTTLMergeTimes(choice *MergeSelectorChoice, dueTime time.Time) {
	partitionID := choice.Range.PartitionID()

	mm.stateLock.Lock()
	defer mm.stateLock.Unlock()

	switch choice.Type {
	case MergeTypeRegular:
	case MergeTypeTTLDelete:
		mm.nextDeleteTTLMergeTimes[partitionID] = dueTime
	case MergeTypeTTLRecompress:
		mm.nextRecompressTTLMergeTimes[partitionID] = dueTime
	}
}

// GetPartitionsThatMayBeMerged probes every partition for outstanding
// mergeable work without mutating any scheduling state. The result narrows
// subsequent collector calls on large tables.
func (mm *MergerMutator) GetPartitionsThatMayBeMerged(collector PartsCollector,
	canMerge AllowedMergingPredicate, applier SelectorApplier,
) PartitionIDsHint {
	now := time.Now()
	canUseTTLMerges := !mm.TTLMergesBlocker.IsCancelled()

	ranges := collector.Collect(mm.metadata, mm.storagePolicy, now, nil)
	if len(ranges) == 0 {
		return nil
	}

	ranges = mm.splitRangesForMerge(ranges, canMerge)
	if len(ranges) == 0 {
		return nil
	}

	partitionsStats := calculateStatisticsForPartitions(ranges)
	rangesByPartitions := combineByPartitions(ranges)
	deleteTimes, recompressTimes := mm.ttlTimesSnapshot()

	hint := PartitionIDsHint{}
	for partitionID, rangesInPartition := range rangesByPartitions {
		choice := applier.ChooseMergeFrom(rangesInPartition, mm.metadata, mm.settings,
			deleteTimes, recompressTimes, canUseTTLMerges, now, mm.logger)

		if choice != nil {
			hint.Add(partitionID)
		} else {
			mm.logger.WithField("action", "probe_merges").
				Tracef("nothing to merge in partition %s (looked up %d ranges)",
					partitionID, len(rangesInPartition))
		}
	}

	if best := mm.bestPartitionToOptimizeEntire(partitionsStats); best != "" {
		hint.Add(best)
	}

	mm.logger.WithField("action", "probe_merges").
		Tracef("checked %d partitions, found %d with parts that may be merged: [%s] "+
			"(can_use_ttl_merges=%t)",
			len(rangesByPartitions), len(hint), strings.Join(hint.Sorted(), ", "),
			canUseTTLMerges)

	return hint
}

// SelectPartsToMerge makes one end-to-end selection decision: TTL-driven
// and size/benefit-driven merges share this admission path, and forced
// whole-partition compaction is a fallback that never competes with an
// incrementally better regular merge.
func (mm *MergerMutator) SelectPartsToMerge(collector PartsCollector,
	canMerge AllowedMergingPredicate, applier SelectorApplier, hint PartitionIDsHint,
) (*MergeSelectorChoice, *SelectMergeFailure) {
	now := time.Now()
	canUseTTLMerges := !mm.TTLMergesBlocker.IsCancelled()

	ranges := collector.Collect(mm.metadata, mm.storagePolicy, now, hint)
	if len(ranges) == 0 {
		mm.metrics.observeOutcome("cannot_select")
		return nil, cannotSelect("there are no parts that can be merged (collector returned an empty ranges set)")
	}

	ranges = mm.splitRangesForMerge(ranges, canMerge)
	if len(ranges) == 0 {
		mm.metrics.observeOutcome("cannot_select")
		return nil, cannotSelect("no parts satisfy preconditions for merge")
	}

	deleteTimes, recompressTimes := mm.ttlTimesSnapshot()
	choice := applier.ChooseMergeFrom(ranges, mm.metadata, mm.settings,
		deleteTimes, recompressTimes, canUseTTLMerges, now, mm.logger)

	if choice != nil {
		mm.updateTTLMergeTimes(choice, now.Add(mm.settings.MergeWithRecompressionTTLTimeout))
		mm.metrics.observeOutcome("selected")
		return choice, nil
	}

	partitionsStats := calculateStatisticsForPartitions(ranges)

	if best := mm.bestPartitionToOptimizeEntire(partitionsStats); best != "" {
		return mm.SelectAllPartsToMergeWithinPartition(collector, canMerge, best,
			true /* final */, true /* optimizeSkipMergedPartitions */)
	}

	mm.metrics.observeOutcome("cannot_select")
	return nil, cannotSelect("there is no need to merge parts according to merge selector algorithm")
}

// SelectAllPartsToMergeWithinPartition selects the entire given partition
// as one merge. With final=false a lone part is left alone, with final=true
// even a single already-merged part is re-merged unless
// optimizeSkipMergedPartitions proves there is nothing left to do.
func (mm *MergerMutator) SelectAllPartsToMergeWithinPartition(collector PartsCollector,
	canMerge AllowedMergingPredicate, partitionID string,
	final, optimizeSkipMergedPartitions bool,
) (*MergeSelectorChoice, *SelectMergeFailure) {
	// time is irrelevant here, the parts bypass the merge selector
	now := time.Now()

	ranges := collector.Collect(mm.metadata, mm.storagePolicy, now, NewPartitionIDsHint(partitionID))
	if len(ranges) == 0 {
		mm.metrics.observeOutcome("cannot_select")
		return nil, cannotSelect("there are no parts inside partition %s", partitionID)
	}

	// no range-splitting here: the whole partition must be one mergeable
	// range, pairwise eligibility is validated below instead
	if len(ranges) > 1 {
		mm.metrics.observeOutcome("cannot_select")
		return nil, cannotSelect("already produced %d mergeable ranges, but only one is required", len(ranges))
	}

	parts := ranges[0]

	if !final && len(parts) == 1 {
		mm.metrics.observeOutcome("cannot_select")
		return nil, cannotSelect("there is only one part inside partition %s", partitionID)
	}

	// A lone part of level > 0 was already merged at least once. If no TTL
	// work can be pending for it either, re-merging it would only burn IO.
	if final && optimizeSkipMergedPartitions && len(parts) == 1 {
		part := parts[0]

		if part.Info.Level > 0 && (!mm.metadata.HasAnyTTL || part.AllTTLCalculated) {
			mm.metrics.observeOutcome("nothing_to_merge")
			return nil, nothingToMerge("partition %s skipped: the only part %s is already fully merged",
				partitionID, part.Name)
		}
	}

	if err := canMergeAllParts(parts, canMerge); err != nil {
		mm.metrics.observeOutcome("cannot_select")
		return nil, cannotSelect("%s", err.Error())
	}

	// Enough disk space to cover the new merge with a margin.
	requiredDiskSpace := estimateAtLeastAvailableSpace(parts)
	availableDiskSpace := mm.storagePolicy.MaxUnreservedFreeSpace()
	if availableDiskSpace <= requiredDiskSpace {
		mm.warnInsufficientDiskSpace(parts, availableDiskSpace, requiredDiskSpace)
		mm.metrics.observeOutcome("cannot_select")
		return nil, cannotSelect("insufficient available disk space, required %s",
			humanize.IBytes(requiredDiskSpace))
	}

	mm.logger.WithField("action", "select_entire_partition").
		Debugf("selected %d parts from %s to %s", len(parts), parts[0].Name, parts[len(parts)-1].Name)

	mm.metrics.observeOutcome("selected")
	return &MergeSelectorChoice{Range: parts, Type: MergeTypeRegular}, nil
}

// warnInsufficientDiskSpace logs at most once per hour per engine instance,
// running out of disk space tends to repeat on every selection attempt.
func (mm *MergerMutator) warnInsufficientDiskSpace(parts PartsRange, available, required uint64) {
	mm.stateLock.Lock()
	now := time.Now()
	shouldLog := now.Sub(mm.diskSpaceWarningTime) > time.Hour
	if shouldLog {
		mm.diskSpaceWarningTime = now
	}
	mm.stateLock.Unlock()

	if !shouldLog {
		return
	}

	mm.logger.WithField("action", "select_entire_partition").
		Warnf("won't merge parts from %s to %s because not enough free space: "+
			"%s free and unreserved, %s required now; suppressing similar warnings for the next hour",
			parts[0].Name, parts[len(parts)-1].Name,
			humanize.IBytes(available), humanize.IBytes(required))
}
