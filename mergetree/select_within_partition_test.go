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
	"testing"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func singlePart(level uint32, allTTLCalculated bool) PartsRange {
	return PartsRange{{
		Name:             "p0",
		Info:             PartInfo{PartitionID: "202501", MinBlock: 0, MaxBlock: 10, Level: level},
		Size:             1000,
		AllTTLCalculated: allTTLCalculated,
	}}
}

func TestSelectAllPartsToMergeWithinPartition_EmptyPartition(t *testing.T) {
	mm := newTestMergerMutator(t, DefaultSettings(), nil, nil)

	choice, failure := mm.SelectAllPartsToMergeWithinPartition(&fakeCollector{}, MergeEverything(),
		"202501", false, false)

	assert.Nil(t, choice)
	require.NotNil(t, failure)
	assert.Equal(t, CannotSelect, failure.Reason)
}

func TestSelectAllPartsToMergeWithinPartition_MultipleRanges(t *testing.T) {
	mm := newTestMergerMutator(t, DefaultSettings(), nil, nil)
	collector := &fakeCollector{ranges: PartsRanges{
		makeParts("202501", 2),
		{{Name: "p9", Info: PartInfo{PartitionID: "202501", MinBlock: 10, MaxBlock: 10}}},
	}}

	choice, failure := mm.SelectAllPartsToMergeWithinPartition(collector, MergeEverything(),
		"202501", true, true)

	assert.Nil(t, choice)
	require.NotNil(t, failure)
	assert.Equal(t, CannotSelect, failure.Reason)
	assert.Contains(t, failure.Explanation, "2 mergeable ranges")
}

func TestSelectAllPartsToMergeWithinPartition_SinglePartNotFinal(t *testing.T) {
	mm := newTestMergerMutator(t, DefaultSettings(), nil, nil)
	collector := &fakeCollector{ranges: PartsRanges{singlePart(3, true)}}

	choice, failure := mm.SelectAllPartsToMergeWithinPartition(collector, MergeEverything(),
		"202501", false, true)

	assert.Nil(t, choice)
	require.NotNil(t, failure)
	assert.Equal(t, CannotSelect, failure.Reason)
	assert.Contains(t, failure.Explanation, "only one part")
}

func TestSelectAllPartsToMergeWithinPartition_SinglePartAlreadyOptimal(t *testing.T) {
	tests := []struct {
		name      string
		hasAnyTTL bool
		part      PartsRange
		expected  FailureReason
	}{
		{
			name:      "merged part, table without TTL",
			hasAnyTTL: false,
			part:      singlePart(3, false),
			expected:  NothingToMerge,
		},
		{
			name:      "merged part, TTLs fully calculated",
			hasAnyTTL: true,
			part:      singlePart(3, true),
			expected:  NothingToMerge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, _ := test.NewNullLogger()
			mm := NewMergerMutator(&TableMetadata{Name: "events", HasAnyTTL: tt.hasAnyTTL},
				fixedFreeSpace(1<<40), DefaultSettings(), NewTaskPool(4), logger, nil)
			collector := &fakeCollector{ranges: PartsRanges{tt.part}}

			choice, failure := mm.SelectAllPartsToMergeWithinPartition(collector, MergeEverything(),
				"202501", true, true)

			assert.Nil(t, choice)
			require.NotNil(t, failure)
			assert.Equal(t, tt.expected, failure.Reason)
		})
	}
}

func TestSelectAllPartsToMergeWithinPartition_SinglePartWithPendingTTLProceeds(t *testing.T) {
	logger, _ := test.NewNullLogger()
	mm := NewMergerMutator(&TableMetadata{Name: "events", HasAnyTTL: true},
		fixedFreeSpace(1<<40), DefaultSettings(), NewTaskPool(4), logger, nil)
	// TTLs not yet calculated, so the part cannot be skipped
	collector := &fakeCollector{ranges: PartsRanges{singlePart(3, false)}}

	choice, failure := mm.SelectAllPartsToMergeWithinPartition(collector, MergeEverything(),
		"202501", true, true)

	require.Nil(t, failure)
	require.NotNil(t, choice)
	assert.Equal(t, MergeTypeRegular, choice.Type)
}

func TestSelectAllPartsToMergeWithinPartition_SinglePartFinalSelfMerge(t *testing.T) {
	mm := newTestMergerMutator(t, DefaultSettings(), nil, nil)
	// level 0 part: final forces a self-merge even without pending TTL work
	collector := &fakeCollector{ranges: PartsRanges{singlePart(0, true)}}

	choice, failure := mm.SelectAllPartsToMergeWithinPartition(collector, MergeEverything(),
		"202501", true, true)

	require.Nil(t, failure)
	require.NotNil(t, choice)
	assert.Equal(t, []string{"p0"}, choice.Range.Names())
}

func TestSelectAllPartsToMergeWithinPartition_PredicateRefusal(t *testing.T) {
	mm := newTestMergerMutator(t, DefaultSettings(), nil, nil)
	collector := &fakeCollector{ranges: PartsRanges{makeParts("202501", 3)}}
	canMerge := AllowedMergingPredicateFunc(func(prev, cur *PartProperties) error {
		if cur.Name == "p1" {
			return errors.New("p1 is being fetched from another replica")
		}
		return nil
	})

	choice, failure := mm.SelectAllPartsToMergeWithinPartition(collector, canMerge,
		"202501", true, true)

	assert.Nil(t, choice)
	require.NotNil(t, failure)
	assert.Equal(t, CannotSelect, failure.Reason)
	assert.Contains(t, failure.Explanation, "being fetched")
}

func TestSelectAllPartsToMergeWithinPartition_DiskSpaceAdmission(t *testing.T) {
	parts := PartsRange{
		{Name: "p0", Info: PartInfo{PartitionID: "202501", MinBlock: 0, MaxBlock: 0}, Size: 600},
		{Name: "p1", Info: PartInfo{PartitionID: "202501", MinBlock: 1, MaxBlock: 1}, Size: 400},
	}
	required := estimateAtLeastAvailableSpace(parts)

	t.Run("available equals required: reject", func(t *testing.T) {
		mm := newTestMergerMutator(t, DefaultSettings(), nil, fixedFreeSpace(required))
		collector := &fakeCollector{ranges: PartsRanges{parts}}

		choice, failure := mm.SelectAllPartsToMergeWithinPartition(collector, MergeEverything(),
			"202501", true, true)

		assert.Nil(t, choice)
		require.NotNil(t, failure)
		assert.Equal(t, CannotSelect, failure.Reason)
		assert.Contains(t, failure.Explanation, "insufficient available disk space")
	})

	t.Run("one byte more than required: accept", func(t *testing.T) {
		mm := newTestMergerMutator(t, DefaultSettings(), nil, fixedFreeSpace(required+1))
		collector := &fakeCollector{ranges: PartsRanges{parts}}

		choice, failure := mm.SelectAllPartsToMergeWithinPartition(collector, MergeEverything(),
			"202501", true, true)

		require.Nil(t, failure)
		require.NotNil(t, choice)
		assert.Equal(t, MergeTypeRegular, choice.Type)
		assert.Equal(t, []string{"p0", "p1"}, choice.Range.Names())
	})
}

func TestSelectAllPartsToMergeWithinPartition_DiskSpaceWarningRateLimited(t *testing.T) {
	logger, hook := test.NewNullLogger()
	mm := NewMergerMutator(&TableMetadata{Name: "events"}, fixedFreeSpace(1),
		DefaultSettings(), NewTaskPool(4), logger, nil)

	parts := makeParts("202501", 2)
	for i := range parts {
		parts[i].Size = 1000
	}
	collector := &fakeCollector{ranges: PartsRanges{parts}}

	for i := 0; i < 3; i++ {
		_, failure := mm.SelectAllPartsToMergeWithinPartition(collector, MergeEverything(),
			"202501", true, true)
		require.NotNil(t, failure)
	}

	warnings := 0
	for _, entry := range hook.AllEntries() {
		if entry.Level == logrus.WarnLevel {
			warnings++
		}
	}
	assert.Equal(t, 1, warnings, "repeated rejections within an hour warn once")
}
