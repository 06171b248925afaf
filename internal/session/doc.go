// Package session persists an imported spike-sorting session in SQLite.
//
// One database holds one session: the cluster table with group labels and
// quality scores, the pairwise similarity table, and an action journal.
// Every mutation (relabel, merge, split) is journaled together with the row
// state it consumed, so undo can restore those rows exactly, and a cursor in
// session_info marks the last applied action so undo and redo walk the
// journal in either direction. A fresh mutation truncates the journal ahead
// of the cursor. Mutations return the wizard.ClusterUpdate event the caller
// feeds to the review engine.
package session
