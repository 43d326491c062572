package services

import (
	"sort"

	"github.com/custodia-labs/shopchat-core/internal/core/domain"
	"github.com/custodia-labs/shopchat-core/internal/core/ports/driven"
)

// fuseRRF combines independently ranked hit lists with reciprocal rank
// fusion: score(doc) = Σ 1/(k + rank_m(doc)) over each method m in which
// the document appears. Absence from a list contributes nothing, not a
// penalty. This is the client-side path, applied only when the backend
// cannot fuse server-side; the formula matches the backend's.
//
// Ordering is by descending fused score; ties keep first-seen order
// across the input lists.
func fuseRRF(lists [][]driven.Hit, rankConstant int) []*domain.RankedProduct {
	if rankConstant <= 0 {
		rankConstant = 60
	}

	type entry struct {
		product   *domain.Product
		score     float64
		firstSeen int
	}

	order := 0
	entries := make(map[string]*entry)
	for _, list := range lists {
		for rank, hit := range list {
			if hit.Product == nil {
				continue
			}
			e, ok := entries[hit.Product.ID]
			if !ok {
				e = &entry{product: hit.Product, firstSeen: order}
				entries[hit.Product.ID] = e
				order++
			}
			// Ranks are 1-based in the RRF formula.
			e.score += 1.0 / float64(rankConstant+rank+1)
		}
	}

	fused := make([]*entry, 0, len(entries))
	for _, e := range entries {
		fused = append(fused, e)
	}
	sort.Slice(fused, func(i, j int) bool {
		if fused[i].score != fused[j].score {
			return fused[i].score > fused[j].score
		}
		return fused[i].firstSeen < fused[j].firstSeen
	})

	out := make([]*domain.RankedProduct, len(fused))
	for i, e := range fused {
		out[i] = &domain.RankedProduct{
			Product: e.product,
			Score:   e.score,
			Method:  domain.MethodFused,
		}
	}
	return out
}
