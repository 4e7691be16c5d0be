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
	"time"

	"github.com/handgunman/ClickHouse/mergetree"
)

// ttlSelector picks the single part with the oldest fully elapsed TTL
// window, honoring the per-partition due-time map: a partition that just
// had a TTL merge of this kind scheduled is skipped until its due time.
// A lone part is a valid pick, TTL merges may rewrite a part with itself.
type ttlSelector struct {
	// window extracts the relevant TTL kind from a part
	window func(p *mergetree.PartProperties) mergetree.TTLWindow
}

func (s ttlSelector) selectRange(ranges mergetree.PartsRanges,
	dueTimes map[string]time.Time, now time.Time,
) mergetree.PartsRange {
	var best mergetree.PartsRange
	var bestExpiry time.Time

	for _, r := range ranges {
		if due, ok := dueTimes[r.PartitionID()]; ok && now.Before(due) {
			continue
		}

		for i := range r {
			w := s.window(&r[i])
			if !w.FullyExpired(now) {
				continue
			}
			if best == nil || w.Max.Before(bestExpiry) {
				best = r[i : i+1]
				bestExpiry = w.Max
			}
		}
	}

	return best
}

func newTTLDeleteSelector() ttlSelector {
	return ttlSelector{
		window: func(p *mergetree.PartProperties) mergetree.TTLWindow {
			return p.DeleteTTL
		},
	}
}

func newTTLRecompressSelector() ttlSelector {
	return ttlSelector{
		window: func(p *mergetree.PartProperties) mergetree.TTLWindow {
			return p.RecompressTTL
		},
	}
}
