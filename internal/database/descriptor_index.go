package database

import (
	"errors"
	"sync"

	"github.com/coder/hnsw"

	"github.com/elchinm/attendance-gate/internal/facematch"
)

// descriptorIndexMaxNeighbors (M) is the maximum number of neighbors per
// HNSW node. Enrollment counts are small, so the default is generous.
const descriptorIndexMaxNeighbors = 16

// DescriptorIndex is an in-memory HNSW index over worker reference
// descriptors. It backs the admin identify endpoint: given a probe
// descriptor, find the closest enrolled workers. The index is rebuilt from
// the worker store at startup and after enrollment changes.
type DescriptorIndex struct {
	graph      *hnsw.Graph[int64]
	idToWorker map[int64]*Worker
	dim        int // descriptor length of the indexed vectors, 0 when empty
	mu         sync.RWMutex
}

// NewDescriptorIndex creates a new empty descriptor index.
func NewDescriptorIndex() *DescriptorIndex {
	return &DescriptorIndex{
		idToWorker: make(map[int64]*Worker),
	}
}

// Rebuild replaces the index contents with the given workers. Workers
// without a reference descriptor are skipped.
func (x *DescriptorIndex) Rebuild(workers []Worker) {
	x.mu.Lock()
	defer x.mu.Unlock()

	if len(workers) == 0 {
		x.graph = nil
		x.idToWorker = make(map[int64]*Worker)
		x.dim = 0
		return
	}

	g := hnsw.NewGraph[int64]()
	g.M = descriptorIndexMaxNeighbors
	g.Ml = 1.0 / float64(descriptorIndexMaxNeighbors) // Standard HNSW formula
	g.Distance = hnsw.EuclideanDistance

	x.idToWorker = make(map[int64]*Worker, len(workers))
	x.dim = 0
	for i := range workers {
		w := &workers[i]
		if !w.Enrolled() {
			continue
		}
		g.Add(hnsw.MakeNode(w.ID, w.RefDescriptor))
		x.idToWorker[w.ID] = w
		if x.dim == 0 {
			x.dim = len(w.RefDescriptor)
		}
	}

	x.graph = g
}

// Remove drops a worker from search results. The HNSW graph has no true
// deletion; filtering through the lookup map is enough because Search only
// returns mapped workers.
func (x *DescriptorIndex) Remove(id int64) {
	x.mu.Lock()
	defer x.mu.Unlock()
	delete(x.idToWorker, id)
}

// Match is a nearest-neighbor result from the descriptor index.
type Match struct {
	Worker   Worker
	Distance float64
}

// Search returns up to k enrolled workers nearest to the probe descriptor,
// closest first, with their L2 distances.
func (x *DescriptorIndex) Search(probe []float32, k int) ([]Match, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	if x.graph == nil {
		return nil, errors.New("descriptor index not initialized")
	}
	if len(probe) == 0 || (x.dim != 0 && len(probe) != x.dim) {
		// hnsw's distance kernel panics on mismatched vector lengths.
		return nil, facematch.ErrShapeMismatch
	}

	neighbors := x.graph.Search(probe, k)

	matches := make([]Match, 0, len(neighbors))
	for _, n := range neighbors {
		w, ok := x.idToWorker[n.Key]
		if !ok {
			continue // removed since the last rebuild
		}
		d, err := facematch.Distance(probe, n.Value)
		if err != nil {
			return nil, err
		}
		matches = append(matches, Match{Worker: *w, Distance: d})
	}

	return matches, nil
}

// Count returns the number of indexed workers.
func (x *DescriptorIndex) Count() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.idToWorker)
}
