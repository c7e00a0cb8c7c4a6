// Package device talks to the tablet: a Transport carries remote commands
// and file pushes over SSH, and Client layers the metadata operations
// (enumerate, upload, cleanup, UI restart) on top of it.
package device

import (
	"context"
	"fmt"
	"strings"
)

// Transport is the remote-shell capability the client consumes: execute a
// command and capture its stdout, or copy a set of local paths into a
// remote directory. Both are all-or-nothing from the caller's perspective.
type Transport interface {
	Run(ctx context.Context, cmd string) (string, error)
	Push(ctx context.Context, local []string, remoteDir string) error
}

// TransportError wraps a failed remote operation with whatever the remote
// side wrote to stderr.
type TransportError struct {
	Op     string // "run" or "push"
	Stderr string
	Err    error
}

func (e *TransportError) Error() string {
	msg := fmt.Sprintf("remote %s failed: %v", e.Op, e.Err)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += ": " + s
	}
	return msg
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
