// Package preflight provides readiness checks for the filesystem paths the
// phy daemon depends on.
//
// These checks run in two contexts:
//   - The daemon runs RunAll at startup and refuses to serve when a check
//     fails, so a session is never opened against an unusable layout.
//   - The CLI "phy status" command renders individual results to show why
//     the daemon cannot start.
//
// Checks only probe; they never create or repair the paths they inspect.
package preflight
