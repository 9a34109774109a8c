package allocator

import (
	"sort"

	"github.com/elys-network/yfo/internal/types"
)

// RankFarmsByYieldAscending orders the given farm ids by APY, lowest yield
// first. The sort is stable: farms with equal APY keep their relative order
// from the input sequence, which the withdrawal planner relies on. Farm ids
// are ordinal indexes into the registry slice; the input is not mutated.
func RankFarmsByYieldAscending(farms []types.Farm, farmIDs []types.FarmID) []types.FarmID {
	ranked := make([]types.FarmID, len(farmIDs))
	copy(ranked, farmIDs)

	sort.SliceStable(ranked, func(i, j int) bool {
		return farms[ranked[i]].ApyBps < farms[ranked[j]].ApyBps
	})
	return ranked
}
