// Package flatnav implements an in-memory approximate nearest-neighbor
// index over a single-layer proximity graph, traversed by greedy beam
// search and built incrementally by insertion with neighbor pruning and
// back-link repair.
package flatnav

// entryPointSamples is the fixed-stride sample count used to pick a search
// entry point, for both insert and query. Preserved hard-coded at 100, as
// in the implementation this package's algorithm is drawn from: no
// rationale is documented for the constant, and none is invented here.
const entryPointSamples = 100

// Result is a single query hit: the label of the matched node and its
// distance from the query vector.
type Result struct {
	Label    uint64
	Distance float32
}

// Index is a flat navigable-small-world graph over nodes of type
// (label uint64, neighbors [maxNbrs]NbrT, vector [dim]DataT), backed by a
// packed Storage and a caller-supplied distance function. NbrT is the
// neighbor-id representation (its maximum value is the NONE sentinel);
// DataT is the vector element type.
//
// An Index has a single-threaded lifecycle: construct, interleave Insert
// and Query freely, optionally Reorder once, then continue querying. It
// does not support deleting or mutating an inserted vector, multi-layer
// graphs, or concurrent insertion.
type Index[NbrT NbrID, DataT Scalar] struct {
	storage *Storage[NbrT, DataT]
	dist    DistanceFunc[DataT]
}

// New constructs an empty Index with room for capacity nodes, each holding
// up to maxNbrs neighbors and a dim-length vector, compared with dist.
func New[NbrT NbrID, DataT Scalar](maxNbrs, dim, capacity int, dist DistanceFunc[DataT]) *Index[NbrT, DataT] {
	return &Index[NbrT, DataT]{
		storage: NewStorage[NbrT, DataT](maxNbrs, dim, capacity),
		dist:    dist,
	}
}

// IndexEuclideanF32 is the canonical instantiation: uint32 neighbor ids
// over float32 vectors under Euclidean distance.
type IndexEuclideanF32 = Index[uint32, float32]

// NewEuclideanF32 constructs the canonical Euclidean, float32 index.
func NewEuclideanF32(maxNbrs, dim, capacity int) *IndexEuclideanF32 {
	return New[uint32, float32](maxNbrs, dim, capacity, EuclideanDistance)
}

// Len reports the number of vectors inserted so far.
func (ix *Index[NbrT, DataT]) Len() int { return ix.storage.Len() }

// Dim reports the vector dimensionality the index was built with.
func (ix *Index[NbrT, DataT]) Dim() int { return ix.storage.Dim() }

// searchInitialization scans node ids 0, step, 2*step, ... (step =
// max(1, N/entryPointSamples)) and returns the id closest to query. This is
// fixed-stride sampling, not randomized, so the same index and query always
// yield the same entry point.
func (ix *Index[NbrT, DataT]) searchInitialization(query []DataT) int {
	n := ix.storage.Len()
	step := n / entryPointSamples
	if step < 1 {
		step = 1
	}

	best := 0
	bestDist := ix.dist(query, ix.storage.Vector(0))
	for i := step; i < n; i += step {
		d := ix.dist(query, ix.storage.Vector(i))
		if d < bestDist {
			bestDist = d
			best = i
		}
	}
	return best
}

// beamSearch runs greedy best-first search from entry and returns a
// FurthestQueue holding up to ef nodes ranked by distance to query.
func (ix *Index[NbrT, DataT]) beamSearch(query []DataT, entry, ef int) *FurthestQueue {
	none := None[NbrT]()
	visited := make(map[int]struct{})
	candidates := NewClosestQueue()
	worklist := NewFurthestQueue()

	d0 := ix.dist(query, ix.storage.Vector(entry))
	visited[entry] = struct{}{}
	candidates.Push(entry, d0)
	worklist.Push(entry, d0)

	for candidates.Len() > 0 {
		cID, cDist := candidates.Pop()
		_, wDist := worklist.Peek()
		if cDist > wDist {
			break
		}

		for _, nbr := range ix.storage.Nbrs(cID) {
			if nbr == none {
				continue
			}
			n := int(nbr)
			if _, seen := visited[n]; seen {
				continue
			}
			visited[n] = struct{}{}

			d := ix.dist(query, ix.storage.Vector(n))
			candidates.Push(n, d)
			worklist.PushWithCap(n, d, ef)
		}
	}
	return worklist
}

// selectNeighbors prunes a candidate set down to exactly maxNbrs neighbor
// ids, padding with NONE when fewer survive. When candidates already holds
// fewer than maxNbrs entries, all of them are kept. Otherwise the
// relative-distance diversity rule applies: the closest remaining candidate
// is kept only if no already-selected neighbor lies closer to it than it
// lies to the reference point the candidate distances were measured
// against (the query during beam search, the repaired node during
// back-link repair) — that asymmetry between beam search and repair is
// intentional, not normalized away.
func (ix *Index[NbrT, DataT]) selectNeighbors(candidates *ClosestQueue, maxNbrs int) []NbrT {
	none := None[NbrT]()
	result := make([]NbrT, 0, maxNbrs)

	if candidates.Len() < maxNbrs {
		for candidates.Len() > 0 {
			id, _ := candidates.Pop()
			result = append(result, NbrT(id))
		}
		for len(result) < maxNbrs {
			result = append(result, none)
		}
		return result
	}

	chosen := make([]item, 0, maxNbrs)
	for candidates.Len() > 0 && len(chosen) < maxNbrs {
		cID, cDist := candidates.Pop()
		cVec := ix.storage.Vector(cID)

		keep := true
		for _, s := range chosen {
			if ix.dist(cVec, ix.storage.Vector(s.id)) < cDist {
				keep = false
				break
			}
		}
		if keep {
			chosen = append(chosen, item{cID, cDist})
		}
	}

	for _, s := range chosen {
		result = append(result, NbrT(s.id))
	}
	for len(result) < maxNbrs {
		result = append(result, none)
	}
	return result
}

// connectNeighbors back-links newID into every node named in selected. If a
// neighbor has a free slot, newID is written there directly. If it is full,
// its neighbor list is re-pruned by selectNeighbors using distances to the
// neighbor being repaired (not to the original insert query).
func (ix *Index[NbrT, DataT]) connectNeighbors(selected []NbrT, newID int, newVector []DataT) {
	none := None[NbrT]()
	maxNbrs := ix.storage.MaxNbrs()

	for _, nbrT := range selected {
		if nbrT == none {
			continue
		}
		u := int(nbrT)
		uNbrs := ix.storage.Nbrs(u)

		slot := -1
		for i, v := range uNbrs {
			if v == none {
				slot = i
				break
			}
		}
		if slot >= 0 {
			uNbrs[slot] = NbrT(newID)
			continue
		}

		uVec := ix.storage.Vector(u)
		cq := NewClosestQueue()
		cq.Push(newID, ix.dist(newVector, uVec))
		for _, v := range uNbrs {
			if v == none {
				continue
			}
			vID := int(v)
			cq.Push(vID, ix.dist(ix.storage.Vector(vID), uVec))
		}

		repaired := ix.selectNeighbors(cq, maxNbrs)
		copy(uNbrs, repaired)
	}
}

// Insert adds (label, vector) to the graph. The first insert into an empty
// index places node 0 with an all-NONE neighbor list. Every later insert
// picks an entry point, beam-searches with width efConstruction, prunes the
// result to maxNbrs neighbors, appends the new node, and back-links it into
// each selected neighbor.
func (ix *Index[NbrT, DataT]) Insert(label uint64, vector []DataT, efConstruction int) error {
	if len(vector) != ix.storage.Dim() {
		return &DimensionMismatchError{Expected: ix.storage.Dim(), Got: len(vector)}
	}

	maxNbrs := ix.storage.MaxNbrs()
	if ix.storage.Len() == 0 {
		none := None[NbrT]()
		nbrs := make([]NbrT, maxNbrs)
		for i := range nbrs {
			nbrs[i] = none
		}
		ix.storage.AddNode(label, nbrs, vector)
		return nil
	}

	entry := ix.searchInitialization(vector)
	worklist := ix.beamSearch(vector, entry, efConstruction)

	candidates := NewClosestQueue()
	for worklist.Len() > 0 {
		id, dist := worklist.Pop()
		candidates.Push(id, dist)
	}

	selected := ix.selectNeighbors(candidates, maxNbrs)
	newID := ix.storage.AddNode(label, selected, vector)
	ix.connectNeighbors(selected, newID, vector)
	return nil
}

// Query returns up to topk nearest neighbors of vector, searched with beam
// width efSearch, in ascending distance order. An empty index yields an
// empty (nil) result and a nil error.
func (ix *Index[NbrT, DataT]) Query(vector []DataT, efSearch, topk int) ([]Result, error) {
	if len(vector) != ix.storage.Dim() {
		return nil, &DimensionMismatchError{Expected: ix.storage.Dim(), Got: len(vector)}
	}
	if ix.storage.Len() == 0 {
		return nil, nil
	}

	entry := ix.searchInitialization(vector)
	worklist := ix.beamSearch(vector, entry, efSearch)

	closest := NewClosestQueue()
	for worklist.Len() > 0 {
		id, dist := worklist.Pop()
		closest.Push(id, dist)
	}

	results := make([]Result, 0, topk)
	for closest.Len() > 0 && len(results) < topk {
		id, dist := closest.Pop()
		results = append(results, Result{Label: ix.storage.Label(id), Distance: dist})
	}
	return results, nil
}

// Reorder rewrites storage to the node ordering strategy computes from the
// graph's current out-neighbor adjacency, remapping every neighbor id
// through the resulting permutation. NONE sentinels are preserved verbatim.
// This is a one-shot bulk mutation; it is the caller's responsibility not to
// interleave it with a concurrent insert or query.
func (ix *Index[NbrT, DataT]) Reorder(strategy Reordering) {
	n := ix.storage.Len()
	none := None[NbrT]()

	out := make([][]int, n)
	for v := 0; v < n; v++ {
		nbrs := ix.storage.Nbrs(v)
		adj := make([]int, 0, len(nbrs))
		for _, nb := range nbrs {
			if nb != none {
				adj = append(adj, int(nb))
			}
		}
		out[v] = adj
	}

	permInv := strategy.Reorder(out)

	perm := make([]int, n)
	for v, newPos := range permInv {
		perm[newPos] = v
	}

	newStorage := NewStorage[NbrT, DataT](ix.storage.MaxNbrs(), ix.storage.Dim(), n)
	for newID := 0; newID < n; newID++ {
		oldID := perm[newID]
		label := ix.storage.Label(oldID)
		oldNbrs := ix.storage.Nbrs(oldID)

		newNbrs := make([]NbrT, len(oldNbrs))
		for i, nb := range oldNbrs {
			if nb == none {
				newNbrs[i] = none
			} else {
				newNbrs[i] = NbrT(permInv[int(nb)])
			}
		}
		newStorage.AddNode(label, newNbrs, ix.storage.Vector(oldID))
	}
	ix.storage = newStorage
}
