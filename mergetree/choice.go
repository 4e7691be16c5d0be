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

import "fmt"

// MergeType distinguishes merges picked for size/benefit reasons from
// merges forced by TTL rules.
type MergeType uint8

const (
	MergeTypeRegular MergeType = iota
	MergeTypeTTLDelete
	MergeTypeTTLRecompress
)

func (mt MergeType) String() string {
	switch mt {
	case MergeTypeRegular:
		return "Regular"
	case MergeTypeTTLDelete:
		return "TTLDelete"
	case MergeTypeTTLRecompress:
		return "TTLRecompress"
	default:
		return fmt.Sprintf("MergeType(%d)", uint8(mt))
	}
}

// IsTTL reports whether the merge was scheduled to apply TTL rules rather
// than for its size-reduction benefit.
func (mt MergeType) IsTTL() bool {
	return mt == MergeTypeTTLDelete || mt == MergeTypeTTLRecompress
}

// MergeSelectorChoice is one concrete merge decision: the range of parts to
// combine and the reason it was picked.
type MergeSelectorChoice struct {
	Range PartsRange
	Type  MergeType
}
