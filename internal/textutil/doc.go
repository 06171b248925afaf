// Package textutil provides small text helpers for terminal display.
package textutil
