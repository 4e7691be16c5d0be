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
	"fmt"
	"sort"
	"time"
)

// PartInfo identifies the logical position of a part: the partition it
// belongs to, the contiguous block-number interval it covers and the number
// of merges that produced it. Parts of different partitions are never
// merged together.
type PartInfo struct {
	PartitionID string
	MinBlock    int64
	MaxBlock    int64
	Level       uint32
}

// Contains reports whether the interval of other is fully covered by the
// interval of pi. A part always contains itself.
func (pi PartInfo) Contains(other PartInfo) bool {
	return pi.PartitionID == other.PartitionID &&
		pi.MinBlock <= other.MinBlock &&
		other.MaxBlock <= pi.MaxBlock
}

// IsDisjoint reports whether the block intervals of pi and other do not
// overlap. Parts of different partitions are trivially disjoint.
func (pi PartInfo) IsDisjoint(other PartInfo) bool {
	if pi.PartitionID != other.PartitionID {
		return true
	}
	return pi.MaxBlock < other.MinBlock || other.MaxBlock < pi.MinBlock
}

func (pi PartInfo) String() string {
	return fmt.Sprintf("%s_%d_%d_%d", pi.PartitionID, pi.MinBlock, pi.MaxBlock, pi.Level)
}

// TTLWindow is the [Min, Max] expiry window of one TTL rule kind across all
// rows of a part. A zero window means the part has no rows affected by that
// rule.
type TTLWindow struct {
	Min time.Time
	Max time.Time
}

// IsZero reports whether no rows of the part carry this TTL kind.
func (w TTLWindow) IsZero() bool {
	return w.Min.IsZero() && w.Max.IsZero()
}

// FullyExpired reports whether every row of the part has passed its expiry.
func (w TTLWindow) FullyExpired(now time.Time) bool {
	return !w.IsZero() && !w.Max.After(now)
}

// PartProperties is a read-only snapshot of one on-disk part as observed by
// the selection engine. The engine never mutates it, the authoritative part
// set is only changed through ActiveParts.
type PartProperties struct {
	Name string
	Info PartInfo

	// compressed on-disk size in bytes
	Size uint64

	CreatedAt time.Time

	// Age is computed by the collector against its notion of "now" so that
	// all parts of one snapshot are aged consistently.
	Age time.Duration

	// AllTTLCalculated is true once every TTL expression of the table has
	// been evaluated for this part.
	AllTTLCalculated bool

	DeleteTTL     TTLWindow
	RecompressTTL TTLWindow
}

// PartsRange is an ordered group of parts of a single partition considered
// as one merge candidate. Parts within a range must be pairwise disjoint
// and must not contain one another, a violation means the active part set
// is corrupted.
type PartsRange []PartProperties

func (r PartsRange) PartitionID() string {
	if len(r) == 0 {
		return ""
	}
	return r[0].Info.PartitionID
}

func (r PartsRange) TotalSize() uint64 {
	var sum uint64
	for _, p := range r {
		sum += p.Size
	}
	return sum
}

func (r PartsRange) Names() []string {
	names := make([]string, len(r))
	for i, p := range r {
		names[i] = p.Name
	}
	return names
}

// PartsRanges is a collection of candidate ranges, possibly spanning
// multiple partitions.
type PartsRanges []PartsRange

func (rs PartsRanges) PartsCount() int {
	count := 0
	for _, r := range rs {
		count += len(r)
	}
	return count
}

// PartitionIDsHint is a set of partition ids worth re-examining. A nil hint
// means "all partitions".
type PartitionIDsHint map[string]struct{}

func NewPartitionIDsHint(ids ...string) PartitionIDsHint {
	hint := make(PartitionIDsHint, len(ids))
	for _, id := range ids {
		hint[id] = struct{}{}
	}
	return hint
}

func (h PartitionIDsHint) Add(id string) {
	h[id] = struct{}{}
}

// Contains reports whether id is part of the hint. A nil hint contains
// every partition.
func (h PartitionIDsHint) Contains(id string) bool {
	if h == nil {
		return true
	}
	_, ok := h[id]
	return ok
}

// Sorted returns the hinted partition ids in lexicographic order, mostly
// for stable log output.
func (h PartitionIDsHint) Sorted() []string {
	ids := make([]string, 0, len(h))
	for id := range h {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
