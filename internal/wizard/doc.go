// Package wizard drives manual cluster review for a spike sorting session.
//
// The Wizard proposes clusters for review ordered by quality, pairs the
// current best cluster with merge candidates ordered by similarity, and keeps
// both lists plus the (best, match) selection consistent while clustering
// actions (merges, splits, relabels, undo/redo) reshape the cluster set.
// Structural changes arrive as ClusterUpdate events; the wizard reconciles
// its lists incrementally instead of recomputing them, and records selection
// snapshots so undo and redo restore what the reviewer was looking at.
//
// The wizard holds no locks and performs no I/O. Scoring is delegated to the
// registered quality and similarity functions on every call; hosts that need
// caching memoize in the functions themselves. Callers are expected to
// serialize access — the daemon guards its wizard with a mutex.
package wizard
