// Package ipc exposes daemon review operations over JSON-RPC on a Unix
// domain socket. The CLI is the only intended client: every wizard
// operation, session action, and status query maps to one RPC method on the
// Phy service, with request/response DTOs kept JSON-friendly so the
// transport stays inspectable with socat during debugging.
package ipc
