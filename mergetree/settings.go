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

import "time"

// Settings are the per-table knobs consumed by the selection engine. They
// are fixed at engine construction.
type Settings struct {
	// MergeWithRecompressionTTLTimeout is how long a partition is backed
	// off from the TTL merge type that was just chosen for it.
	MergeWithRecompressionTTLTimeout time.Duration

	// MinAgeToForceMergeOnPartitionOnly enables the forced whole-partition
	// optimization fallback.
	MinAgeToForceMergeOnPartitionOnly bool

	// MinAgeToForceMerge is the minimum age every part of a partition must
	// have reached before the partition may be force-optimized. Zero
	// disables forcing.
	MinAgeToForceMerge time.Duration

	// FreePoolEntriesToOptimizePartition is the idle-capacity reserve the
	// task pool must have before a whole-partition optimization is allowed
	// to start. Ignored while at most one task is running.
	FreePoolEntriesToOptimizePartition int64
}

func DefaultSettings() *Settings {
	return &Settings{
		MergeWithRecompressionTTLTimeout:   4 * time.Hour,
		MinAgeToForceMergeOnPartitionOnly:  false,
		MinAgeToForceMerge:                 0,
		FreePoolEntriesToOptimizePartition: 25,
	}
}

// TableMetadata is the slice of table metadata the engine needs to make
// selection decisions.
type TableMetadata struct {
	Name string

	// HasAnyTTL is true when the table declares at least one TTL rule
	// (delete or recompression).
	HasAnyTTL bool
}

// StoragePolicy exposes the free-space view of the volumes backing the
// table. The engine only ever reads it during disk-space admission.
type StoragePolicy interface {
	MaxUnreservedFreeSpace() uint64
}
