// Package daemon hosts the review session for the long-running phy process.
//
// It wires configuration, the session store, the scoring provider, and the
// wizard into a single lifecycle with flock-based locking to prevent multiple
// instances. Every review operation funnels through one mutex, so the wizard
// never sees concurrent navigation or clustering actions. Mutations follow a
// fixed order: journal the action in the store, refresh the scoring provider,
// then hand the resulting cluster event to the wizard.
//
// Keep orchestration logic here: ranking and reconciliation rules live in the
// wizard package, persistence in session, while the daemon focuses on
// startup, shutdown, and tying the pieces together.
package daemon
