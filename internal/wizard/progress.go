package wizard

import "slices"

// progressPercent maps a position within a sequence of the given length to
// a percentage, with zero- and one-element sequences reporting complete.
func progressPercent(value, length int) int {
	if length <= 1 {
		return 100
	}
	return 100 * value / (length - 1)
}

// BestProgress reports how far review has advanced through the best list,
// as a percentage of positions consumed. Zero before Start.
func (w *Wizard) BestProgress() int {
	if w.best == NoCluster {
		return 0
	}
	i := slices.Index(w.bestList, w.best)
	if i < 0 {
		return 0
	}
	return progressPercent(i, len(w.bestList))
}

// LabeledProgress reports the share of known clusters already labeled good
// or ignored, as a percentage.
func (w *Wizard) LabeledProgress() int {
	return progressPercent(w.ProcessedCount(), w.ClusterCount())
}
