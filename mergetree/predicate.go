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

// AllowedMergingPredicate is the eligibility oracle consulted while
// building mergeable ranges. It is supplied externally, typically backed by
// replication/quorum state that this engine knows nothing about.
type AllowedMergingPredicate interface {
	// CanMerge returns nil if cur may be merged with prev. When prev is
	// nil, the question becomes whether cur may start a new range at all
	// (which also covers self-merges for TTL purposes). A non-nil error
	// carries the human-readable explanation for the refusal.
	CanMerge(prev, cur *PartProperties) error
}

// AllowedMergingPredicateFunc adapts a plain function to the
// AllowedMergingPredicate interface.
type AllowedMergingPredicateFunc func(prev, cur *PartProperties) error

func (f AllowedMergingPredicateFunc) CanMerge(prev, cur *PartProperties) error {
	return f(prev, cur)
}

// MergeEverything allows every part to merge with any neighbor. Useful for
// tests and for tables without replication constraints.
func MergeEverything() AllowedMergingPredicate {
	return AllowedMergingPredicateFunc(func(prev, cur *PartProperties) error {
		return nil
	})
}
