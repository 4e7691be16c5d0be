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

// buildNextRange scans forward from *pos and collects the next maximal
// sub-range of pairwise mergeable parts. The first part of a range must be
// independently eligible (canMerge with a nil prev), every following part
// must be mergeable with its predecessor. A refused pair closes the range,
// scanning resumes at the part after the refused one.
func buildNextRange(parts PartsRange, pos *int, canMerge AllowedMergingPredicate) PartsRange {
	var out PartsRange

	for *pos < len(parts) {
		cur := parts[*pos]
		*pos++

		if canMerge.CanMerge(nil, &cur) == nil {
			out = append(out, cur)
			break
		}
	}

	if len(out) == 0 {
		// none of the remaining parts may participate in merges
		return nil
	}

	for *pos < len(parts) {
		prev := &out[len(out)-1]
		cur := parts[*pos]
		*pos++

		if canMerge.CanMerge(prev, &cur) != nil {
			return out
		}

		// Adjacent parts must never intersect or contain one another. This
		// is not an eligibility question: it means the active part set is
		// corrupted and requires immediate investigation.
		if cur.Info.Contains(prev.Info) {
			logicalErrorf("part %s contains previous part %s", cur.Name, prev.Name)
		}
		if !cur.Info.IsDisjoint(prev.Info) {
			logicalErrorf("part %s intersects previous part %s", cur.Name, prev.Name)
		}

		out = append(out, cur)
	}

	return out
}

// splitRangeByMergePredicate refines one raw range into zero or more
// maximal mergeable sub-ranges.
func splitRangeByMergePredicate(parts PartsRange, canMerge AllowedMergingPredicate) PartsRanges {
	var out PartsRanges

	pos := 0
	for pos < len(parts) {
		if next := buildNextRange(parts, &pos, canMerge); len(next) > 0 {
			out = append(out, next)
		}
	}

	return out
}

// splitByMergePredicate applies splitRangeByMergePredicate to a whole
// collection of raw ranges. Pure: empty input yields empty output and
// repeated application yields identical results.
func splitByMergePredicate(ranges PartsRanges, canMerge AllowedMergingPredicate) PartsRanges {
	var out PartsRanges
	for _, r := range ranges {
		out = append(out, splitRangeByMergePredicate(r, canMerge)...)
	}
	return out
}

// canMergeAllParts validates pairwise eligibility across a full candidate
// range without splitting it, used by the whole-partition path where
// exactly one range is expected.
func canMergeAllParts(parts PartsRange, canMerge AllowedMergingPredicate) error {
	var prev *PartProperties
	for i := range parts {
		if err := canMerge.CanMerge(prev, &parts[i]); err != nil {
			return err
		}
		prev = &parts[i]
	}
	return nil
}
