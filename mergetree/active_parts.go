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
	"strings"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/handgunman/ClickHouse/entities/storagestate"
)

// Transaction is the handle under which a merge result is committed on a
// transactional table. Its semantics (visibility, rollback) live outside
// this engine, here it only guards the replace step.
type Transaction struct {
	ID uint64
}

// ActiveParts is the authoritative set of live parts of one table. All
// reads take the maintenance read lock, only RenameMergedPart and Add take
// the write lock. Parts are kept per partition, ordered by block interval.
type ActiveParts struct {
	// Lock() for changing the currently active parts, RLock() for normal
	// operation
	maintenanceLock sync.RWMutex
	byPartition     map[string][]PartProperties

	transactionsEnabled atomic.Bool

	status     storagestate.Status
	statusLock sync.Mutex

	logger logrus.FieldLogger
}

func NewActiveParts(logger logrus.FieldLogger) *ActiveParts {
	return &ActiveParts{
		byPartition: map[string][]PartProperties{},
		status:      storagestate.StatusReady,
		logger:      logger,
	}
}

// EnableTransactions makes RenameMergedPart require an explicit
// transaction from this point on.
func (ap *ActiveParts) EnableTransactions() {
	ap.transactionsEnabled.Store(true)
}

func (ap *ActiveParts) TransactionsEnabled() bool {
	return ap.transactionsEnabled.Load()
}

func (ap *ActiveParts) UpdateStatus(status storagestate.Status) {
	ap.statusLock.Lock()
	defer ap.statusLock.Unlock()

	ap.status = status
}

func (ap *ActiveParts) Status() storagestate.Status {
	ap.statusLock.Lock()
	defer ap.statusLock.Unlock()

	return ap.status
}

// Add inserts a freshly flushed or fetched part, keeping the partition
// ordered by block interval. Adding a part that intersects an existing one
// is rejected.
func (ap *ActiveParts) Add(part PartProperties) error {
	ap.maintenanceLock.Lock()
	defer ap.maintenanceLock.Unlock()

	parts := ap.byPartition[part.Info.PartitionID]
	for i := range parts {
		if !parts[i].Info.IsDisjoint(part.Info) {
			return errors.Errorf("part %s intersects active part %s",
				part.Name, parts[i].Name)
		}
	}

	parts = append(parts, part)
	sort.Slice(parts, func(i, j int) bool {
		return parts[i].Info.MinBlock < parts[j].Info.MinBlock
	})
	ap.byPartition[part.Info.PartitionID] = parts

	return nil
}

// PartitionIDs returns all partitions currently holding parts, sorted.
func (ap *ActiveParts) PartitionIDs() []string {
	ap.maintenanceLock.RLock()
	defer ap.maintenanceLock.RUnlock()

	ids := make([]string, 0, len(ap.byPartition))
	for id := range ap.byPartition {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Count returns the total number of active parts across all partitions.
func (ap *ActiveParts) Count() int {
	ap.maintenanceLock.RLock()
	defer ap.maintenanceLock.RUnlock()

	count := 0
	for _, parts := range ap.byPartition {
		count += len(parts)
	}
	return count
}

func (ap *ActiveParts) partitionSnapshot(partitionID string) []PartProperties {
	ap.maintenanceLock.RLock()
	defer ap.maintenanceLock.RUnlock()

	parts := ap.byPartition[partitionID]
	out := make([]PartProperties, len(parts))
	copy(out, parts)
	return out
}

// RenameMergedPart commits a finished merge: the source parts are swapped
// for the merge result in a single step under the maintenance lock. Every
// active part covered by the new part's interval is removed, which is
// normally exactly the source list.
//
// A removed-count mismatch is tolerated: a superseding part covering a
// wider range may have been installed concurrently from another replica,
// in which case the sources are already gone. A same-count removal with a
// positionally different name is not tolerated, that means our bookkeeping
// desynced from the part set.
func (ap *ActiveParts) RenameMergedPart(newPart PartProperties, sources PartsRange, txn *Transaction) PartsRange {
	// A merge of transactional sources committed without a transaction
	// would break isolation, abort before touching the part set.
	if ap.transactionsEnabled.Load() && txn == nil {
		logicalErrorf("cancelling merge producing %s: transactions are enabled "+
			"for this table, but the merge was started without one", newPart.Name)
	}

	ap.maintenanceLock.Lock()

	parts := ap.byPartition[newPart.Info.PartitionID]
	var replaced PartsRange
	kept := parts[:0:0]

	for _, p := range parts {
		if newPart.Info.Contains(p.Info) {
			replaced = append(replaced, p)
		} else {
			kept = append(kept, p)
		}
	}

	kept = append(kept, newPart)
	sort.Slice(kept, func(i, j int) bool {
		return kept[i].Info.MinBlock < kept[j].Info.MinBlock
	})
	ap.byPartition[newPart.Info.PartitionID] = kept

	ap.maintenanceLock.Unlock()

	if len(replaced) != len(sources) {
		ap.logger.WithField("action", "rename_merged_part").
			WithField("new_part", newPart.Name).
			WithField("replaced_count", len(replaced)).
			WithField("expected_count", len(sources)).
			Warnf("unexpected number of parts removed when adding %s: %d instead of %d\n"+
				"replaced parts:\n%s\nsource parts:\n%s",
				newPart.Name, len(replaced), len(sources),
				strings.Join(replaced.Names(), "\n"),
				strings.Join(sources.Names(), "\n"))
	} else {
		for i := range sources {
			if sources[i].Name != replaced[i].Name {
				logicalErrorf("unexpected part removed when adding %s: %s instead of %s",
					newPart.Name, replaced[i].Name, sources[i].Name)
			}
		}
	}

	ap.logger.WithField("action", "rename_merged_part").
		Tracef("merged %d parts: [%s, %s] -> %s", len(sources),
			sources[0].Name, sources[len(sources)-1].Name, newPart.Name)

	return replaced
}
