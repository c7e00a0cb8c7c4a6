package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/remkit/remkit/internal/device"
	"github.com/remkit/remkit/internal/tree"
)

// connectClient dials the device and loads its metadata tree. The returned
// cleanup func closes the SSH connection.
func connectClient(ctx context.Context) (*device.Client, func(), error) {
	c := getConfig()
	transport, err := device.DialSSH(device.SSHConfig{
		Hostname:      c.Hostname,
		User:          c.SSHUser(),
		Port:          c.SSHPort(),
		IdentityFile:  expandHome(c.IdentityFile),
		StrictHostKey: c.StrictHostKey,
	})
	if err != nil {
		return nil, nil, err
	}

	client := device.NewClient(transport)
	if err := client.Load(ctx); err != nil {
		_ = transport.Close()
		return nil, nil, err
	}
	return client, func() { _ = transport.Close() }, nil
}

// expandHome resolves a leading ~/ against the user's home directory.
func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}

// reportResolution prints a user-facing message for a resolution problem
// (path missing, target not a folder) and recovers: "nothing to do" is not a
// crash, so the process still exits zero.
func reportResolution(code, message, suggestion string) error {
	if isJSONOutput() {
		outputError(code, message, suggestion)
		return nil
	}
	fmt.Println(message)
	return nil
}

// codeForErr maps a device/tree error to its stable CLI error code.
func codeForErr(err error) string {
	var te *device.TransportError
	var ue *tree.UnresolvedError
	switch {
	case errors.As(err, &te):
		return ErrTransportFailed
	case errors.As(err, &ue):
		return ErrUnresolvableAncestry
	case errors.Is(err, tree.ErrNotFound):
		return ErrPathNotFound
	default:
		return ErrInternal
	}
}
