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

package mergeselector

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/handgunman/ClickHouse/mergetree"
)

func expiredWindow(now time.Time, ago time.Duration) mergetree.TTLWindow {
	return mergetree.TTLWindow{Min: now.Add(-ago - time.Hour), Max: now.Add(-ago)}
}

func withDeleteTTL(parts mergetree.PartsRange, i int, w mergetree.TTLWindow) mergetree.PartsRange {
	parts[i].DeleteTTL = w
	return parts
}

func TestTTLSelector_PicksOldestExpiredPart(t *testing.T) {
	now := time.Now()
	parts := sized("202501", 100, 100, 100)
	parts[0].DeleteTTL = expiredWindow(now, time.Hour)
	parts[2].DeleteTTL = expiredWindow(now, 3*time.Hour)

	picked := newTTLDeleteSelector().selectRange(mergetree.PartsRanges{parts}, nil, now)

	require.Len(t, picked, 1)
	assert.Equal(t, "202501_p2", picked[0].Name,
		"the window that expired longest ago wins")
}

func TestTTLSelector_IgnoresUnexpiredAndZeroWindows(t *testing.T) {
	now := time.Now()
	parts := sized("202501", 100, 100)
	// p0 carries no delete TTL at all, p1 expires in the future
	parts[1].DeleteTTL = mergetree.TTLWindow{Min: now.Add(-time.Hour), Max: now.Add(time.Hour)}

	picked := newTTLDeleteSelector().selectRange(mergetree.PartsRanges{parts}, nil, now)

	assert.Nil(t, picked)
}

func TestTTLSelector_HonorsDueTimes(t *testing.T) {
	now := time.Now()
	ranges := mergetree.PartsRanges{
		withDeleteTTL(sized("202501", 100), 0, expiredWindow(now, 5*time.Hour)),
		withDeleteTTL(sized("202502", 100), 0, expiredWindow(now, time.Hour)),
	}
	s := newTTLDeleteSelector()

	t.Run("a backed-off partition is skipped", func(t *testing.T) {
		due := map[string]time.Time{"202501": now.Add(time.Hour)}
		picked := s.selectRange(ranges, due, now)
		require.Len(t, picked, 1)
		assert.Equal(t, "202502", picked.PartitionID())
	})

	t.Run("an elapsed due time no longer blocks", func(t *testing.T) {
		due := map[string]time.Time{"202501": now.Add(-time.Minute)}
		picked := s.selectRange(ranges, due, now)
		require.Len(t, picked, 1)
		assert.Equal(t, "202501", picked.PartitionID())
	})
}

func TestTTLSelector_KindsAreIndependent(t *testing.T) {
	now := time.Now()
	parts := sized("202501", 100)
	parts[0].RecompressTTL = expiredWindow(now, time.Hour)
	ranges := mergetree.PartsRanges{parts}

	assert.Nil(t, newTTLDeleteSelector().selectRange(ranges, nil, now))
	assert.Len(t, newTTLRecompressSelector().selectRange(ranges, nil, now), 1)
}
