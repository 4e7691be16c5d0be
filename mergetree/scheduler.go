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
	"context"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/handgunman/ClickHouse/entities/storagestate"
)

// MergeExecutor performs the physical merge for a task and returns the
// resulting part. It must poll task.Aborted() during long operations.
type MergeExecutor interface {
	ExecuteMerge(ctx context.Context, task *MergeTask) (PartProperties, error)
}

// MergeScheduler drives the selection engine in the background: each cycle
// it asks the engine for one merge, dispatches it to the executor and
// commits the result into the active part set. While there is nothing to
// do it backs off exponentially instead of hammering the collector.
type MergeScheduler struct {
	mm        *MergerMutator
	parts     *ActiveParts
	collector PartsCollector
	canMerge  AllowedMergingPredicate
	applier   SelectorApplier
	executor  MergeExecutor
	pool      *TaskPool

	interval    time.Duration
	idleBackoff backoff.BackOff

	txnCounter atomic.Uint64

	lock       sync.Mutex
	running    bool
	stopSignal chan struct{}
	done       chan struct{}
}

func NewMergeScheduler(mm *MergerMutator, parts *ActiveParts, collector PartsCollector,
	canMerge AllowedMergingPredicate, applier SelectorApplier, executor MergeExecutor,
	pool *TaskPool, interval time.Duration,
) *MergeScheduler {
	idle := backoff.NewExponentialBackOff()
	idle.InitialInterval = interval
	idle.MaxInterval = 32 * interval
	idle.MaxElapsedTime = 0 // never give up, new parts may appear any time

	return &MergeScheduler{
		mm:          mm,
		parts:       parts,
		collector:   collector,
		canMerge:    canMerge,
		applier:     applier,
		executor:    executor,
		pool:        pool,
		interval:    interval,
		idleBackoff: idle,
	}
}

// Start launches the cycle loop. Does nothing if already running.
func (s *MergeScheduler) Start() {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.running {
		return
	}

	s.stopSignal = make(chan struct{})
	s.done = make(chan struct{})
	s.running = true

	go s.loop(s.stopSignal, s.done)
}

// Stop requests the loop to exit and waits for the in-flight cycle, bounded
// by ctx.
func (s *MergeScheduler) Stop(ctx context.Context) error {
	s.lock.Lock()
	if !s.running {
		s.lock.Unlock()
		return nil
	}
	s.running = false
	close(s.stopSignal)
	done := s.done
	s.lock.Unlock()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *MergeScheduler) Running() bool {
	s.lock.Lock()
	defer s.lock.Unlock()

	return s.running
}

func (s *MergeScheduler) loop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	delay := s.interval
	for {
		select {
		case <-stop:
			return
		case <-time.After(delay):
		}

		if s.runCycle(stop) {
			s.idleBackoff.Reset()
			delay = s.interval
		} else {
			delay = s.idleBackoff.NextBackOff()
		}
	}
}

// runCycle performs at most one merge. Returns true if actual work was
// done.
func (s *MergeScheduler) runCycle(stop <-chan struct{}) (workDone bool) {
	defer func() {
		if r := recover(); r != nil {
			s.mm.logger.WithField("action", "merge_cycle").
				Errorf("recovered from panic in merge cycle: %v\n%s", r, debug.Stack())
			workDone = false
		}
	}()

	if s.parts.Status() != storagestate.StatusReady {
		return false
	}
	if s.mm.MergesBlocker.IsCancelled() {
		return false
	}

	choice, failure := s.mm.SelectPartsToMerge(s.collector, s.canMerge, s.applier, nil)
	if failure != nil {
		s.mm.logger.WithField("action", "merge_cycle").
			Tracef("no merge selected: %s", failure)
		return false
	}

	if !s.pool.TryAcquire() {
		return false
	}
	defer s.pool.Release()

	var txn *Transaction
	if s.parts.TransactionsEnabled() {
		txn = &Transaction{ID: s.txnCounter.Add(1)}
	}
	task := s.mm.MergePartsToTemporaryPart(choice, txn)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-stop:
			cancel()
		case <-ctx.Done():
		}
	}()

	newPart, err := s.executor.ExecuteMerge(ctx, task)
	if err != nil {
		s.mm.logger.WithField("action", "merge_cycle").
			WithError(err).
			Warnf("merge of %d parts into %s failed", len(choice.Range), task.FuturePart.Name)
		return false
	}

	s.parts.RenameMergedPart(newPart, choice.Range, txn)
	return true
}
