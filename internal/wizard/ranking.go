package wizard

import "sort"

type scoredCluster struct {
	id    ClusterID
	score float64
}

// argsortDesc orders clusters by decreasing score, keeping the incoming
// order for ties, and truncates to nMax entries when nMax is positive.
func argsortDesc(scored []scoredCluster, nMax int) []ClusterID {
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})
	out := make([]ClusterID, len(scored))
	for i, sc := range scored {
		out[i] = sc.id
	}
	if nMax > 0 && len(out) > nMax {
		out = out[:nMax]
	}
	return out
}

// sortByGroup stably reorders a ranked list so unsorted clusters come first
// and ignored clusters last. With mixGoodUnsorted, good clusters keep their
// rank among the unsorted instead of forming a middle block; this is how
// match candidates are presented.
func (w *Wizard) sortByGroup(ids []ClusterID, mixGoodUnsorted bool) []ClusterID {
	rank := func(id ClusterID) int {
		switch w.GroupOf(id) {
		case GroupIgnored:
			return 2
		case GroupGood:
			if mixGoodUnsorted {
				return 0
			}
			return 1
		default:
			return 0
		}
	}
	out := make([]ClusterID, len(ids))
	copy(out, ids)
	sort.SliceStable(out, func(i, j int) bool {
		return rank(out[i]) < rank(out[j])
	})
	return out
}

// BestClusters ranks every cluster with the registered quality function.
// See BestClustersBy.
func (w *Wizard) BestClusters(nMax int) ([]ClusterID, error) {
	return w.BestClustersBy(nil, nMax)
}

// BestClustersBy ranks every cluster by decreasing quality, truncates to
// nMax entries (zero means no limit), then regroups the result so unsorted
// clusters precede good ones and ignored clusters sink to the end. A nil
// quality falls back to the registered function.
func (w *Wizard) BestClustersBy(quality QualityFunc, nMax int) ([]ClusterID, error) {
	if quality == nil {
		quality = w.quality
	}
	if quality == nil {
		return nil, ErrNoQualityFunc
	}
	ids := w.ClusterIDs()
	scored := make([]scoredCluster, len(ids))
	for i, id := range ids {
		scored[i] = scoredCluster{id: id, score: quality(id)}
	}
	return w.sortByGroup(argsortDesc(scored, nMax), false), nil
}

// MostSimilarClusters ranks match candidates for a cluster with the
// registered similarity function. See MostSimilarClustersBy.
func (w *Wizard) MostSimilarClusters(cluster ClusterID, nMax int) ([]ClusterID, error) {
	return w.MostSimilarClustersBy(nil, cluster, nMax)
}

// MostSimilarClustersBy ranks every other cluster by decreasing similarity
// to the given one, truncates to nMax entries (zero means no limit), then
// regroups so ignored candidates sink to the end while good and unsorted
// candidates stay interleaved by similarity.
//
// Passing NoCluster targets the current best cluster, falling back to the
// top-quality cluster when review has not started; with no clusters at all
// the candidate list is empty. A nil similarity falls back to the registered
// function.
func (w *Wizard) MostSimilarClustersBy(similarity SimilarityFunc, cluster ClusterID, nMax int) ([]ClusterID, error) {
	if cluster == NoCluster {
		cluster = w.best
		if cluster == NoCluster {
			top, err := w.BestClusters(1)
			if err != nil {
				return nil, err
			}
			if len(top) == 0 {
				return nil, nil
			}
			cluster = top[0]
		}
	}
	if similarity == nil {
		similarity = w.similarity
	}
	if similarity == nil {
		return nil, ErrNoSimilarityFunc
	}
	ids := w.ClusterIDs()
	scored := make([]scoredCluster, 0, len(ids))
	for _, other := range ids {
		if other == cluster {
			continue
		}
		scored = append(scored, scoredCluster{id: other, score: similarity(cluster, other)})
	}
	return w.sortByGroup(argsortDesc(scored, nMax), true), nil
}
