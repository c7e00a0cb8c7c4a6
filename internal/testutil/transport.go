package testutil

import (
	"context"
	"fmt"
	"strings"
)

// FakeTransport is a scripted device.Transport. Every Run and Push is
// recorded; replies come from the Reply hook when set, otherwise commands
// containing ".metadata" return Listing (the enumeration) and everything
// else returns "".
type FakeTransport struct {
	Listing string
	Reply   func(cmd string) (string, error)

	RunErr  error
	PushErr error

	Commands []string
	Pushed   [][]string
	PushDirs []string
}

// Run records cmd and returns the scripted reply.
func (f *FakeTransport) Run(_ context.Context, cmd string) (string, error) {
	f.Commands = append(f.Commands, cmd)
	if f.RunErr != nil {
		return "", f.RunErr
	}
	if f.Reply != nil {
		return f.Reply(cmd)
	}
	if strings.Contains(cmd, ".metadata") {
		return f.Listing, nil
	}
	return "", nil
}

// Push records the transfer.
func (f *FakeTransport) Push(_ context.Context, local []string, remoteDir string) error {
	f.Pushed = append(f.Pushed, append([]string(nil), local...))
	f.PushDirs = append(f.PushDirs, remoteDir)
	return f.PushErr
}

// CommandRun reports whether any recorded command contains substr.
func (f *FakeTransport) CommandRun(substr string) bool {
	for _, c := range f.Commands {
		if strings.Contains(c, substr) {
			return true
		}
	}
	return false
}

// LastPush returns the most recent pushed path set, failing loudly when
// nothing was pushed.
func (f *FakeTransport) LastPush() ([]string, error) {
	if len(f.Pushed) == 0 {
		return nil, fmt.Errorf("no push recorded")
	}
	return f.Pushed[len(f.Pushed)-1], nil
}
