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

// estimateAtLeastAvailableSpace returns the minimum amount of unreserved
// free space required to safely merge the given parts: the merged result
// may temporarily coexist with all of its inputs, plus headroom for
// uncompressed intermediate buffers.
func estimateAtLeastAvailableSpace(parts PartsRange) uint64 {
	sum := parts.TotalSize()
	return sum + sum/10
}
