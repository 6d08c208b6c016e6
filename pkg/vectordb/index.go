package vectordb

import (
	"context"
	"sort"
	"sync"
)

// HNSWVectorIndex is the Vector backend: one typeIndex per registered
// VectorType, keyed by type name. Adapted from the teacher's single global
// search.HNSWIndex, namespaced per Open Question (a) of SPEC_FULL.md §6.
type HNSWVectorIndex struct {
	mu    sync.RWMutex
	types map[string]*typeIndex
}

// NewHNSWVectorIndex creates an empty Vector backend; VectorTypes must be
// registered via Register before Put/Search/Delete.
func NewHNSWVectorIndex() *HNSWVectorIndex {
	return &HNSWVectorIndex{types: make(map[string]*typeIndex)}
}

func (v *HNSWVectorIndex) Register(typeName string, dim int, metric Metric) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, exists := v.types[typeName]; exists {
		return ErrAlreadyRegistered
	}
	v.types[typeName] = newTypeIndex(dim, metric)
	return nil
}

func (v *HNSWVectorIndex) typeIndexFor(typeName string) (*typeIndex, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	ti, ok := v.types[typeName]
	if !ok {
		return nil, ErrUnknownType
	}
	return ti, nil
}

func (v *HNSWVectorIndex) Put(ctx context.Context, typeName, id string, vec []float32) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ti, err := v.typeIndexFor(typeName)
	if err != nil {
		return err
	}
	if len(vec) != ti.dim {
		return ErrDimensionMismatch
	}
	ti.put(id, vec)
	return nil
}

func (v *HNSWVectorIndex) Delete(ctx context.Context, typeName, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ti, err := v.typeIndexFor(typeName)
	if err != nil {
		return err
	}
	ti.remove(id)
	return nil
}

// Search returns up to k results in ascending distance, ties broken by id
// ascending, per spec.md §4.E.
func (v *HNSWVectorIndex) Search(ctx context.Context, typeName string, query []float32, k int) ([]SearchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ti, err := v.typeIndexFor(typeName)
	if err != nil {
		return nil, err
	}
	if len(query) != ti.dim {
		return nil, ErrDimensionMismatch
	}
	if k <= 0 {
		return nil, nil
	}

	ef := ti.config.EfSearch
	if k > ef {
		ef = k
	}
	candidateIDs := ti.search(query, ef)

	prepared := query
	if ti.metric == MetricCosine {
		prepared = normalize(query)
	}

	results := make([]SearchResult, 0, len(candidateIDs))
	for _, id := range candidateIDs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		vec, ok := ti.vectorOf(id)
		if !ok {
			continue
		}
		results = append(results, SearchResult{ID: id, Distance: ti.dist(prepared, vec)})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Distance != results[j].Distance {
			return results[i].Distance < results[j].Distance
		}
		return results[i].ID < results[j].ID
	})

	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

var _ Vector = (*HNSWVectorIndex)(nil)
