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

// PartsCollector supplies a snapshot of candidate parts as raw ranges,
// optionally restricted to a hint set of partitions. Implementations are
// responsible for their own locking, the engine never blocks on anything
// else.
type PartsCollector interface {
	Collect(metadata *TableMetadata, policy StoragePolicy, now time.Time, hint PartitionIDsHint) PartsRanges
}

// ActivePartsCollector collects directly from the authoritative part set,
// producing one raw range per partition in block order.
type ActivePartsCollector struct {
	parts *ActiveParts
}

func NewActivePartsCollector(parts *ActiveParts) *ActivePartsCollector {
	return &ActivePartsCollector{parts: parts}
}

func (c *ActivePartsCollector) Collect(metadata *TableMetadata, policy StoragePolicy,
	now time.Time, hint PartitionIDsHint,
) PartsRanges {
	var out PartsRanges

	for _, partitionID := range c.parts.PartitionIDs() {
		if !hint.Contains(partitionID) {
			continue
		}

		snapshot := c.parts.partitionSnapshot(partitionID)
		if len(snapshot) == 0 {
			continue
		}

		r := make(PartsRange, len(snapshot))
		for i, p := range snapshot {
			// age every part of the snapshot against the same "now"
			p.Age = now.Sub(p.CreatedAt)
			if p.Age < 0 {
				p.Age = 0
			}
			r[i] = p
		}

		out = append(out, r)
	}

	return out
}
