package flatnav

import "testing"

func randVec(seed, dim int) []float32 {
	v := make([]float32, dim)
	x := uint32(seed*2654435761 + 1)
	for i := range v {
		x = x*1664525 + 1013904223
		v[i] = float32(x%2000)/1000 - 1 // uniform-ish in [-1, 1]
	}
	return v
}

func TestEmptyIndexQueryReturnsEmpty(t *testing.T) {
	ix := NewEuclideanF32(8, 4, 0)
	results, err := ix.Query([]float32{0, 0, 0, 0}, 8, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected empty results on empty index, got %v", results)
	}
}

func TestFirstInsertHasNoNeighbors(t *testing.T) {
	ix := NewEuclideanF32(8, 4, 0)
	if err := ix.Insert(1, []float32{1, 2, 3, 4}, 16); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ix.Len() != 1 {
		t.Fatalf("expected len 1, got %d", ix.Len())
	}

	none := None[uint32]()
	for _, n := range ix.storage.Nbrs(0) {
		if n != none {
			t.Fatalf("expected all-NONE neighbor list for the first node, got %v", ix.storage.Nbrs(0))
		}
	}
}

func TestInsertDimensionMismatch(t *testing.T) {
	ix := NewEuclideanF32(8, 4, 0)
	err := ix.Insert(1, []float32{1, 2, 3}, 16)
	var dimErr *DimensionMismatchError
	if err == nil {
		t.Fatal("expected dimension mismatch error")
	}
	if ok := asDimErr(err, &dimErr); !ok {
		t.Fatalf("expected *DimensionMismatchError, got %T", err)
	}
	if dimErr.Expected != 4 || dimErr.Got != 3 {
		t.Fatalf("unexpected error fields: %+v", dimErr)
	}
	if ix.Len() != 0 {
		t.Fatalf("a failed insert must not mutate the index, len=%d", ix.Len())
	}
}

func TestQueryDimensionMismatch(t *testing.T) {
	ix := NewEuclideanF32(8, 4, 0)
	_ = ix.Insert(1, []float32{1, 2, 3, 4}, 16)

	_, err := ix.Query([]float32{1, 2}, 8, 3)
	if err == nil {
		t.Fatal("expected dimension mismatch error")
	}
}

func asDimErr(err error, out **DimensionMismatchError) bool {
	de, ok := err.(*DimensionMismatchError)
	if ok {
		*out = de
	}
	return ok
}

func TestBackLinkPresenceAfterSecondInsert(t *testing.T) {
	ix := NewEuclideanF32(4, 2, 0)
	_ = ix.Insert(100, []float32{0, 0}, 16)
	_ = ix.Insert(200, []float32{1, 1}, 16)

	none := None[uint32]()
	found := false
	for _, n := range ix.storage.Nbrs(0) {
		if n != none && int(n) == 1 {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected node 1 to be back-linked into node 0's neighbor list, got %v", ix.storage.Nbrs(0))
	}
}

func TestOutDegreeBoundAndNoDuplicates(t *testing.T) {
	const maxNbrs = 6
	ix := NewEuclideanF32(maxNbrs, 8, 0)

	for i := 0; i < 150; i++ {
		if err := ix.Insert(uint64(i), randVec(i, 8), 16); err != nil {
			t.Fatalf("insert %d: %v", i, err)
		}
	}

	none := None[uint32]()
	for i := 0; i < ix.Len(); i++ {
		seen := make(map[uint32]bool)
		count := 0
		for _, n := range ix.storage.Nbrs(i) {
			if n == none {
				continue
			}
			count++
			if seen[n] {
				t.Fatalf("node %d has duplicate neighbor %d", i, n)
			}
			seen[n] = true
		}
		if count > maxNbrs {
			t.Fatalf("node %d has out-degree %d > max_nbrs %d", i, count, maxNbrs)
		}
	}
}

func TestQueryDeterministic(t *testing.T) {
	ix := NewEuclideanF32(8, 8, 0)
	for i := 0; i < 80; i++ {
		_ = ix.Insert(uint64(i), randVec(i, 8), 16)
	}

	q := randVec(9999, 8)
	first, err := ix.Query(q, 16, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for attempt := 0; attempt < 3; attempt++ {
		again, err := ix.Query(q, 16, 5)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(again) != len(first) {
			t.Fatalf("result length changed across repeated queries: %d vs %d", len(again), len(first))
		}
		for i := range first {
			if again[i] != first[i] {
				t.Fatalf("query not deterministic at position %d: %+v vs %+v", i, again[i], first[i])
			}
		}
	}
}

func TestQueryTopKOrderedAscending(t *testing.T) {
	ix := NewEuclideanF32(10, 8, 0)
	for i := 0; i < 100; i++ {
		_ = ix.Insert(uint64(i), randVec(i, 8), 16)
	}

	results, err := ix.Query(randVec(42, 8), 20, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 1; i < len(results); i++ {
		if results[i].Distance < results[i-1].Distance {
			t.Fatalf("results not in ascending distance order: %+v", results)
		}
	}
	if len(results) > 7 {
		t.Fatalf("expected at most topk=7 results, got %d", len(results))
	}
}
