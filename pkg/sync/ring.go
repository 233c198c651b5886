package sync

import (
	"encoding/binary"
	"fmt"

	"github.com/emirpasic/gods/maps/treemap"
	"github.com/emirpasic/gods/utils"
	"github.com/spaolacci/murmur3"
)

// ring consistently maps keys onto a fixed number of stripes.
type ring struct {
	points *treemap.Map

	// first is the stripe at the lowest point, used when a hash wraps past the
	// highest point. treemap.Map.Min() is O(log n).
	first int
}

// newRing places replicas points on the ring for each of the stripes. Each
// stripe is named, and its points are derived from the hash of that name.
func newRing(stripes, replicas uint) *ring {
	points := treemap.NewWith(utils.Int64Comparator)

	nameHashBytes := make([]byte, 8)
	replicaBytes := make([]byte, 4)
	for stripe := 0; stripe < int(stripes); stripe++ {
		nameHash, _ := murmur3.Sum128([]byte(fmt.Sprintf("lock%d", stripe)))
		binary.LittleEndian.PutUint64(nameHashBytes, nameHash)

		for replica := uint32(0); replica < uint32(replicas); replica++ {
			binary.LittleEndian.PutUint32(replicaBytes, replica)

			hasher := murmur3.New128()
			_, _ = hasher.Write(nameHashBytes)
			_, _ = hasher.Write(replicaBytes)
			point, _ := hasher.Sum128()
			points.Put(int64(point), stripe)
		}
	}

	r := &ring{points: points}
	if _, first := points.Min(); first != nil {
		r.first = first.(int)
	}
	return r
}

// stripe returns the stripe owning key.
func (r *ring) stripe(key []byte) int {
	raw, _ := murmur3.Sum128(key)
	if _, stripe := r.points.Ceiling(int64(raw)); stripe != nil {
		return stripe.(int)
	}
	return r.first
}
