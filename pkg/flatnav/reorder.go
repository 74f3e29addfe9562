package flatnav

import "sort"

// Reordering computes a permutation of node ids intended to improve cache
// locality. It is stateless: given the out-neighbor adjacency of the
// current graph, it returns perm_inv where perm_inv[v] is v's new position.
type Reordering interface {
	Reorder(outNodes [][]int) []int
}

// gorderQueue is the bucketed, updatable-score priority queue G-order needs:
// a node->score map plus a score->live-node-set map, with the live scores
// also kept sorted so the highest-score bucket is found without scanning
// every bucket. update is a no-op for a node that has already been popped.
// Ties within a bucket are broken by smallest node id, which keeps pop
// deterministic without needing a true FIFO structure.
type gorderQueue struct {
	nodeScore    map[int]int
	buckets      map[int]map[int]struct{}
	sortedScores []int // ascending, distinct
}

func newGorderQueue(nNodes int) *gorderQueue {
	nodeScore := make(map[int]int, nNodes)
	bucket := make(map[int]struct{}, nNodes)
	for i := 0; i < nNodes; i++ {
		nodeScore[i] = 0
		bucket[i] = struct{}{}
	}
	q := &gorderQueue{
		nodeScore: nodeScore,
		buckets:   map[int]map[int]struct{}{0: bucket},
	}
	if nNodes > 0 {
		q.sortedScores = []int{0}
	}
	return q
}

func (q *gorderQueue) insertScore(score int) {
	i := sort.SearchInts(q.sortedScores, score)
	if i < len(q.sortedScores) && q.sortedScores[i] == score {
		return
	}
	q.sortedScores = append(q.sortedScores, 0)
	copy(q.sortedScores[i+1:], q.sortedScores[i:])
	q.sortedScores[i] = score
}

func (q *gorderQueue) removeScore(score int) {
	i := sort.SearchInts(q.sortedScores, score)
	if i < len(q.sortedScores) && q.sortedScores[i] == score {
		q.sortedScores = append(q.sortedScores[:i], q.sortedScores[i+1:]...)
	}
}

// update adjusts a live node's score by delta. A node no longer present
// (already popped) is left alone.
func (q *gorderQueue) update(node, delta int) {
	score, live := q.nodeScore[node]
	if !live {
		return
	}
	newScore := score + delta
	q.nodeScore[node] = newScore

	old := q.buckets[score]
	delete(old, node)
	if len(old) == 0 {
		delete(q.buckets, score)
		q.removeScore(score)
	}

	nb, ok := q.buckets[newScore]
	if !ok {
		nb = make(map[int]struct{})
		q.buckets[newScore] = nb
		q.insertScore(newScore)
	}
	nb[node] = struct{}{}
}

// pop removes and returns a node from the highest-score bucket.
func (q *gorderQueue) pop() int {
	if len(q.sortedScores) == 0 {
		panic("flatnav: pop from empty gorder queue")
	}
	top := q.sortedScores[len(q.sortedScores)-1]
	bucket := q.buckets[top]

	node := -1
	for n := range bucket {
		if node == -1 || n < node {
			node = n
		}
	}

	delete(bucket, node)
	if len(bucket) == 0 {
		delete(q.buckets, top)
		q.sortedScores = q.sortedScores[:len(q.sortedScores)-1]
	}
	delete(q.nodeScore, node)
	return node
}

// GOrder reorders nodes by a windowed 2-hop locality scoring scheme: nodes
// sharing out- or in-neighbors with recently placed nodes are rewarded,
// and the reward for a node placed more than w steps ago is withdrawn.
type GOrder struct {
	W int
}

// Reorder computes perm_inv from the out-neighbor adjacency list.
func (g GOrder) Reorder(outNodes [][]int) []int {
	n := len(outNodes)
	if n == 0 {
		return nil
	}

	inNodes := make([][]int, n)
	for v, nbrs := range outNodes {
		for _, u := range nbrs {
			inNodes[u] = append(inNodes[u], v)
		}
	}

	queue := newGorderQueue(n)
	queue.update(0, 1)

	perm := make([]int, n)
	apply := func(x int, sign int) {
		for _, u := range outNodes[x] {
			queue.update(u, sign)
		}
		for _, u := range inNodes[x] {
			queue.update(u, sign)
			for _, v := range outNodes[u] {
				queue.update(v, sign)
			}
		}
	}

	for i := 0; i < n; i++ {
		x := queue.pop()
		perm[i] = x
		apply(x, 1)

		if i >= g.W {
			y := perm[i-g.W]
			apply(y, -1)
		}
	}

	permInv := make([]int, n)
	for pos, node := range perm {
		permInv[node] = pos
	}
	return permInv
}
