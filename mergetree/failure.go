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

	"github.com/pkg/errors"
)

// FailureReason classifies an expected "no work right now" outcome.
type FailureReason uint8

const (
	// CannotSelect means there is either no eligible work at the moment or
	// policy (capacity, disk space, backoff) rejected it. Callers should
	// retry later or move on to another partition.
	CannotSelect FailureReason = iota

	// NothingToMerge means the examined parts are already in their optimal
	// state, there will be nothing to do until new parts appear.
	NothingToMerge
)

func (r FailureReason) String() string {
	switch r {
	case CannotSelect:
		return "CANNOT_SELECT"
	case NothingToMerge:
		return "NOTHING_TO_MERGE"
	default:
		return fmt.Sprintf("FailureReason(%d)", uint8(r))
	}
}

// SelectMergeFailure is returned as a value, never as an error. It covers
// the expected outcomes of a selection attempt that produced no merge.
// Corruption invariant violations are not failures, they panic, see
// logicalErrorf.
type SelectMergeFailure struct {
	Reason      FailureReason
	Explanation string
}

func (f *SelectMergeFailure) String() string {
	return fmt.Sprintf("%s: %s", f.Reason, f.Explanation)
}

func cannotSelect(format string, args ...interface{}) *SelectMergeFailure {
	return &SelectMergeFailure{
		Reason:      CannotSelect,
		Explanation: fmt.Sprintf(format, args...),
	}
}

func nothingToMerge(format string, args ...interface{}) *SelectMergeFailure {
	return &SelectMergeFailure{
		Reason:      NothingToMerge,
		Explanation: fmt.Sprintf(format, args...),
	}
}

// logicalErrorf aborts the current operation. It is reserved for conditions
// that indicate a bug or corrupted state elsewhere (intersecting parts,
// bookkeeping desync after a replace, a transactional merge without a
// transaction). These must never be swallowed or retried.
func logicalErrorf(format string, args ...interface{}) {
	panic(errors.Errorf(format, args...))
}
