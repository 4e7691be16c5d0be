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

	"github.com/sirupsen/logrus"

	"github.com/handgunman/ClickHouse/mergetree"
)

// Applier layers the TTL-driven selectors over a base size/benefit
// selector: expired deletes first (they free space and drop rows), then
// recompression, then whatever the base selector considers beneficial.
type Applier struct {
	// MaxTotalSizeToMerge caps the total input size of a regular merge.
	// Zero means unbounded.
	MaxTotalSizeToMerge uint64

	// MergeWithTTLAllowed statically enables TTL merge types for this
	// applier. The engine additionally passes the dynamic gate state on
	// every call.
	MergeWithTTLAllowed bool

	base          MergeSelector
	ttlDelete     ttlSelector
	ttlRecompress ttlSelector
}

func NewApplier(base MergeSelector, maxTotalSizeToMerge uint64, mergeWithTTLAllowed bool) *Applier {
	return &Applier{
		MaxTotalSizeToMerge: maxTotalSizeToMerge,
		MergeWithTTLAllowed: mergeWithTTLAllowed,
		base:                base,
		ttlDelete:           newTTLDeleteSelector(),
		ttlRecompress:       newTTLRecompressSelector(),
	}
}

func (a *Applier) ChooseMergeFrom(ranges mergetree.PartsRanges,
	metadata *mergetree.TableMetadata, settings *mergetree.Settings,
	nextDeleteTTLMergeTimes, nextRecompressTTLMergeTimes map[string]time.Time,
	canUseTTLMerges bool, now time.Time, logger logrus.FieldLogger,
) *mergetree.MergeSelectorChoice {
	if a.MergeWithTTLAllowed && canUseTTLMerges && metadata.HasAnyTTL {
		if r := a.ttlDelete.selectRange(ranges, nextDeleteTTLMergeTimes, now); r != nil {
			logger.WithField("action", "choose_merge").
				Tracef("chose delete-TTL merge of %d parts in partition %s", len(r), r.PartitionID())
			return &mergetree.MergeSelectorChoice{Range: r, Type: mergetree.MergeTypeTTLDelete}
		}

		if r := a.ttlRecompress.selectRange(ranges, nextRecompressTTLMergeTimes, now); r != nil {
			logger.WithField("action", "choose_merge").
				Tracef("chose recompression-TTL merge of %d parts in partition %s", len(r), r.PartitionID())
			return &mergetree.MergeSelectorChoice{Range: r, Type: mergetree.MergeTypeTTLRecompress}
		}
	}

	if r := a.base.Select(ranges, a.MaxTotalSizeToMerge, now); r != nil {
		return &mergetree.MergeSelectorChoice{Range: r, Type: mergetree.MergeTypeRegular}
	}

	return nil
}
