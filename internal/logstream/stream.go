// Package logstream drains daemon log lines over IPC for terminal display.
package logstream

import (
	"context"
	"errors"
	"fmt"

	"github.com/KnierimLab/phy/internal/ipc"
)

// TailClient captures the IPC log tail contract used for streaming.
type TailClient interface {
	LogTail(req ipc.LogTailRequest) (*ipc.LogTailResponse, error)
}

// Options controls stream behavior.
type Options struct {
	Lines  int
	Follow bool
}

// Stream emits daemon log lines through onLine, polling the daemon while
// follow mode is active. It returns true when at least one line was emitted.
func Stream(ctx context.Context, client TailClient, opts Options, onLine func(string)) (bool, error) {
	if client == nil {
		return false, errors.New("log tail client is required")
	}

	initialLimit := opts.Lines
	if initialLimit < 0 {
		initialLimit = 0
	}
	initialOffset := int64(-1)
	if initialLimit == 0 {
		initialOffset = 0
	}

	offset := initialOffset
	limit := initialLimit
	waitMillis := 1000
	printed := false
	for {
		req := ipc.LogTailRequest{
			Offset:     offset,
			Limit:      limit,
			Follow:     opts.Follow,
			WaitMillis: waitMillis,
		}
		resp, err := client.LogTail(req)
		if err != nil {
			return printed, fmt.Errorf("tail logs: %w", err)
		}
		if resp == nil {
			return printed, errors.New("log tail response missing")
		}
		for _, line := range resp.Lines {
			if onLine != nil {
				onLine(line)
			}
			printed = true
		}
		offset = resp.Offset
		limit = 0
		if !opts.Follow {
			return printed, nil
		}
		select {
		case <-ctx.Done():
			return printed, nil
		default:
		}
	}
}
