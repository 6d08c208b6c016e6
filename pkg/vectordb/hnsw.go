package vectordb

import (
	"container/heap"
	"math"
	"math/rand"
	"sort"
	"sync"
)

// hnswConfig mirrors the teacher's search.HNSWConfig.
type hnswConfig struct {
	M               int
	EfConstruction  int
	EfSearch        int
	LevelMultiplier float64
}

func defaultHNSWConfig() hnswConfig {
	return hnswConfig{
		M:               16,
		EfConstruction:  200,
		EfSearch:        100,
		LevelMultiplier: 1.0 / math.Log(16.0),
	}
}

type hnswNode struct {
	id        string
	vector    []float32
	level     int
	neighbors [][]string
	mu        sync.RWMutex
}

// typeIndex is one VectorType's HNSW graph: dimension and metric fixed at
// Register time, adapted one-for-one from the teacher's HNSWIndex with its
// distance function generalized over Metric instead of hardcoded cosine.
type typeIndex struct {
	dim    int
	metric Metric
	config hnswConfig

	mu         sync.RWMutex
	nodes      map[string]*hnswNode
	entryPoint string
	maxLevel   int
}

func newTypeIndex(dim int, metric Metric) *typeIndex {
	return &typeIndex{
		dim:    dim,
		metric: metric,
		config: defaultHNSWConfig(),
		nodes:  make(map[string]*hnswNode),
	}
}

func (h *typeIndex) dist(a, b []float32) float64 { return distanceFor(h.metric, a, b) }

// prepare returns the vector in the form this index's metric stores: cosine
// normalizes (magnitude is thrown away by design), Euclidean keeps it raw.
func (h *typeIndex) prepare(vec []float32) []float32 {
	if h.metric == MetricCosine {
		return normalize(vec)
	}
	return append([]float32(nil), vec...)
}

func (h *typeIndex) put(id string, vec []float32) {
	h.mu.Lock()
	defer h.mu.Unlock()

	prepared := h.prepare(vec)
	level := h.randomLevel()

	node := &hnswNode{id: id, vector: prepared, level: level, neighbors: make([][]string, level+1)}
	for i := range node.neighbors {
		node.neighbors[i] = make([]string, 0, h.config.M)
	}
	h.nodes[id] = node

	if h.entryPoint == "" {
		h.entryPoint = id
		h.maxLevel = level
		return
	}

	ep := h.entryPoint
	epLevel := h.nodes[ep].level

	for l := epLevel; l > level; l-- {
		ep = h.searchLayerSingle(prepared, ep, l)
	}

	for l := min(level, epLevel); l >= 0; l-- {
		candidates := h.searchLayer(prepared, ep, h.config.EfConstruction, l)
		neighbors := h.selectNeighbors(prepared, candidates, h.config.M)
		node.neighbors[l] = neighbors

		for _, nid := range neighbors {
			neighbor := h.nodes[nid]
			neighbor.mu.Lock()
			if len(neighbor.neighbors) > l {
				if len(neighbor.neighbors[l]) < h.config.M {
					neighbor.neighbors[l] = append(neighbor.neighbors[l], id)
				} else {
					all := append(neighbor.neighbors[l], id)
					neighbor.neighbors[l] = h.selectNeighbors(neighbor.vector, all, h.config.M)
				}
			}
			neighbor.mu.Unlock()
		}

		if len(candidates) > 0 {
			ep = candidates[0]
		}
	}

	if level > h.maxLevel {
		h.entryPoint = id
		h.maxLevel = level
	}
}

func (h *typeIndex) remove(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	node, exists := h.nodes[id]
	if !exists {
		return
	}

	for l := 0; l <= node.level; l++ {
		for _, nid := range node.neighbors[l] {
			if neighbor, ok := h.nodes[nid]; ok {
				neighbor.mu.Lock()
				if len(neighbor.neighbors) > l {
					kept := make([]string, 0, len(neighbor.neighbors[l]))
					for _, n := range neighbor.neighbors[l] {
						if n != id {
							kept = append(kept, n)
						}
					}
					neighbor.neighbors[l] = kept
				}
				neighbor.mu.Unlock()
			}
		}
	}

	delete(h.nodes, id)

	if h.entryPoint == id {
		h.entryPoint = ""
		h.maxLevel = 0
		for nid, n := range h.nodes {
			if h.entryPoint == "" || n.level > h.maxLevel {
				h.maxLevel = n.level
				h.entryPoint = nid
			}
		}
	}
}

// search returns up to ef candidates near query, unsorted beyond the
// HNSW layer-0 traversal order; callers re-sort by (distance, id).
func (h *typeIndex) search(query []float32, ef int) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if len(h.nodes) == 0 {
		return nil
	}

	prepared := query
	if h.metric == MetricCosine {
		prepared = normalize(query)
	}

	ep := h.entryPoint
	for l := h.maxLevel; l > 0; l-- {
		ep = h.searchLayerSingle(prepared, ep, l)
	}
	return h.searchLayer(prepared, ep, ef, 0)
}

func (h *typeIndex) vectorOf(id string) ([]float32, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n, ok := h.nodes[id]
	if !ok {
		return nil, false
	}
	return n.vector, true
}

func (h *typeIndex) size() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.nodes)
}

func (h *typeIndex) searchLayerSingle(query []float32, entryID string, level int) string {
	current := entryID
	currentDist := h.dist(query, h.nodes[current].vector)

	for {
		changed := false
		node := h.nodes[current]
		node.mu.RLock()
		neighbors := node.neighbors[level]
		node.mu.RUnlock()

		for _, nid := range neighbors {
			neighbor := h.nodes[nid]
			d := h.dist(query, neighbor.vector)
			if d < currentDist {
				current = nid
				currentDist = d
				changed = true
			}
		}
		if !changed {
			break
		}
	}
	return current
}

func (h *typeIndex) searchLayer(query []float32, entryID string, ef int, level int) []string {
	visited := map[string]bool{entryID: true}

	candidates := &distHeap{}
	heap.Init(candidates)
	results := &distHeap{}
	heap.Init(results)

	entryDist := h.dist(query, h.nodes[entryID].vector)
	heap.Push(candidates, distItem{id: entryID, dist: entryDist, isMax: false})
	heap.Push(results, distItem{id: entryID, dist: entryDist, isMax: true})

	for candidates.Len() > 0 {
		closest := heap.Pop(candidates).(distItem)

		if results.Len() >= ef {
			furthest := (*results)[0]
			if closest.dist > furthest.dist {
				break
			}
		}

		node := h.nodes[closest.id]
		node.mu.RLock()
		neighbors := node.neighbors[level]
		node.mu.RUnlock()

		for _, nid := range neighbors {
			if visited[nid] {
				continue
			}
			visited[nid] = true

			neighbor := h.nodes[nid]
			d := h.dist(query, neighbor.vector)

			if results.Len() < ef || d < (*results)[0].dist {
				heap.Push(candidates, distItem{id: nid, dist: d, isMax: false})
				heap.Push(results, distItem{id: nid, dist: d, isMax: true})
				if results.Len() > ef {
					heap.Pop(results)
				}
			}
		}
	}

	out := make([]string, results.Len())
	for i := results.Len() - 1; i >= 0; i-- {
		out[i] = heap.Pop(results).(distItem).id
	}
	return out
}

func (h *typeIndex) selectNeighbors(query []float32, candidates []string, m int) []string {
	if len(candidates) <= m {
		return candidates
	}
	type dn struct {
		id   string
		dist float64
	}
	dists := make([]dn, len(candidates))
	for i, cid := range candidates {
		dists[i] = dn{id: cid, dist: h.dist(query, h.nodes[cid].vector)}
	}
	sort.Slice(dists, func(i, j int) bool { return dists[i].dist < dists[j].dist })

	out := make([]string, m)
	for i := 0; i < m; i++ {
		out[i] = dists[i].id
	}
	return out
}

func (h *typeIndex) randomLevel() int {
	r := rand.Float64()
	return int(-math.Log(r) * h.config.LevelMultiplier)
}

type distItem struct {
	id    string
	dist  float64
	isMax bool
}

type distHeap []distItem

func (dh distHeap) Len() int { return len(dh) }
func (dh distHeap) Less(i, j int) bool {
	if dh[i].isMax {
		return dh[i].dist > dh[j].dist
	}
	return dh[i].dist < dh[j].dist
}
func (dh distHeap) Swap(i, j int) { dh[i], dh[j] = dh[j], dh[i] }

func (dh *distHeap) Push(x interface{}) { *dh = append(*dh, x.(distItem)) }

func (dh *distHeap) Pop() interface{} {
	old := *dh
	n := len(old)
	x := old[n-1]
	*dh = old[0 : n-1]
	return x
}
