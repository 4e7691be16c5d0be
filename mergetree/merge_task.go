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
	"time"
)

// FuturePart describes the part a merge or mutation will produce: it
// covers the union of the source intervals at one level above the deepest
// source.
type FuturePart struct {
	Name  string
	Info  PartInfo
	Parts PartsRange
}

func newFuturePart(parts PartsRange) FuturePart {
	info := PartInfo{
		PartitionID: parts.PartitionID(),
		MinBlock:    parts[0].Info.MinBlock,
		MaxBlock:    parts[len(parts)-1].Info.MaxBlock,
	}
	for _, p := range parts {
		if p.Info.Level >= info.Level {
			info.Level = p.Info.Level + 1
		}
	}

	return FuturePart{
		Name:  fmt.Sprintf("%s_%d_%d_%d", info.PartitionID, info.MinBlock, info.MaxBlock, info.Level),
		Info:  info,
		Parts: parts,
	}
}

// MergeTask is the executable unit handed to the merge executor. Execution
// semantics live outside this engine, the task only carries the decision
// plus references back into the engine's cancellation gates so the
// executor can re-check them while running.
type MergeTask struct {
	FuturePart FuturePart
	Metadata   *TableMetadata
	Type       MergeType
	Txn        *Transaction
	CreatedAt  time.Time

	mergesBlocker    *ActionBlocker
	ttlMergesBlocker *ActionBlocker
}

// Aborted reports whether the task should stop cooperatively: either all
// merges were blocked, or this is a TTL merge and TTL merges were blocked.
func (t *MergeTask) Aborted() bool {
	if t.mergesBlocker.IsCancelled() {
		return true
	}
	return t.Type.IsTTL() && t.ttlMergesBlocker.IsCancelled()
}

// MergePartsToTemporaryPart constructs the executable merge unit for a
// choice. Parts of the choice are expected to be sorted.
func (mm *MergerMutator) MergePartsToTemporaryPart(choice *MergeSelectorChoice, txn *Transaction) *MergeTask {
	return &MergeTask{
		FuturePart:       newFuturePart(choice.Range),
		Metadata:         mm.metadata,
		Type:             choice.Type,
		Txn:              txn,
		CreatedAt:        time.Now(),
		mergesBlocker:    &mm.MergesBlocker,
		ttlMergesBlocker: &mm.TTLMergesBlocker,
	}
}

// MutationCommands is the opaque list of mutation statements a MutateTask
// applies, interpreted by the executor.
type MutationCommands []string

// MutateTask is the executable unit of a single-part mutation. Mutations
// keep the block interval and bump the part's data version outside this
// engine, here only the gate references matter.
type MutateTask struct {
	FuturePart FuturePart
	Metadata   *TableMetadata
	Commands   MutationCommands
	Txn        *Transaction
	CreatedAt  time.Time

	mergesBlocker *ActionBlocker
}

func (t *MutateTask) Aborted() bool {
	return t.mergesBlocker.IsCancelled()
}

func (mm *MergerMutator) MutatePartToTemporaryPart(part PartProperties,
	commands MutationCommands, txn *Transaction,
) *MutateTask {
	// mutations rewrite a part in place logically: same interval, same level
	future := FuturePart{
		Name:  fmt.Sprintf("%s_mutated", part.Name),
		Info:  part.Info,
		Parts: PartsRange{part},
	}

	return &MutateTask{
		FuturePart:    future,
		Metadata:      mm.metadata,
		Commands:      commands,
		Txn:           txn,
		CreatedAt:     time.Now(),
		mergesBlocker: &mm.MergesBlocker,
	}
}
