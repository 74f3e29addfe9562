package flatnav

import (
	"math"
	"testing"
)

func seedItems() []item {
	return []item{
		{4, 7.2},
		{12, 9.3},
		{5, 3.1},
		{22, 4.7},
		{19, 7.2},
	}
}

func TestClosestQueueOrdering(t *testing.T) {
	q := NewClosestQueue()
	for _, it := range seedItems() {
		q.Push(it.id, it.dist)
	}

	wantDists := []float32{3.1, 4.7, 7.2, 7.2}
	wantFirstTwoIDs := []int{5, 22}

	var gotIDs []int
	var gotDists []float32
	for q.Len() > 0 {
		id, dist := q.Pop()
		gotIDs = append(gotIDs, id)
		gotDists = append(gotDists, dist)
	}

	for i, want := range wantDists {
		if gotDists[i] != want {
			t.Fatalf("pop %d: got dist %v, want %v (full: %v)", i, gotDists[i], want, gotDists)
		}
	}
	for i, want := range wantFirstTwoIDs {
		if gotIDs[i] != want {
			t.Fatalf("pop %d: got id %d, want %d", i, gotIDs[i], want)
		}
	}
	// The two dist=7.2 entries (ids 4 and 19) may come out in either order.
	tail := map[int]bool{gotIDs[2]: true, gotIDs[3]: true}
	if !tail[4] || !tail[19] {
		t.Fatalf("expected trailing ids {4,19} in some order, got %v", gotIDs[2:])
	}
}

func TestFurthestQueueOrdering(t *testing.T) {
	q := NewFurthestQueue()
	for _, it := range seedItems() {
		q.Push(it.id, it.dist)
	}

	wantDists := []float32{9.3, 7.2, 7.2, 4.7}
	wantFirstID := 12
	wantLastID := 22

	var gotIDs []int
	var gotDists []float32
	for q.Len() > 0 {
		id, dist := q.Pop()
		gotIDs = append(gotIDs, id)
		gotDists = append(gotDists, dist)
	}

	for i, want := range wantDists {
		if gotDists[i] != want {
			t.Fatalf("pop %d: got dist %v, want %v (full: %v)", i, gotDists[i], want, gotDists)
		}
	}
	if gotIDs[0] != wantFirstID {
		t.Fatalf("expected first id %d, got %d", wantFirstID, gotIDs[0])
	}
	if gotIDs[3] != wantLastID {
		t.Fatalf("expected last id %d, got %d", wantLastID, gotIDs[3])
	}
}

func TestFurthestQueuePushWithCap(t *testing.T) {
	q := NewFurthestQueue()
	q.PushWithCap(1, 5.0, 2)
	q.PushWithCap(2, 1.0, 2)
	q.PushWithCap(3, 3.0, 2)

	if q.Len() != 2 {
		t.Fatalf("expected capped len 2, got %d", q.Len())
	}
	// The largest (5.0, id 1) should have been evicted, leaving 1.0 and 3.0.
	_, worst := q.Peek()
	if worst != 3.0 {
		t.Fatalf("expected worst remaining dist 3.0, got %v", worst)
	}
}

func TestQueueNaNDoesNotPanic(t *testing.T) {
	q := NewClosestQueue()
	q.Push(1, float32(math.NaN()))
	q.Push(2, 1.0)
	q.Push(3, float32(math.NaN()))

	for q.Len() > 0 {
		q.Pop()
	}
}
