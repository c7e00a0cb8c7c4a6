package device

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
	"golang.org/x/crypto/ssh/knownhosts"
)

// SSHConfig describes how to reach the tablet's SSH daemon.
type SSHConfig struct {
	Hostname      string
	User          string // defaults to "root", the only account on the device
	Port          int    // defaults to 22
	IdentityFile  string // optional private key path; ssh-agent is tried too
	StrictHostKey bool   // verify against ~/.ssh/known_hosts instead of accepting any key
	DialTimeout   time.Duration
}

// SSHTransport is the production Transport: commands over SSH sessions,
// file pushes over SFTP.
type SSHTransport struct {
	client *ssh.Client
}

// DialSSH connects to the device.
func DialSSH(cfg SSHConfig) (*SSHTransport, error) {
	if cfg.Hostname == "" {
		return nil, fmt.Errorf("no hostname configured")
	}
	user := cfg.User
	if user == "" {
		user = "root"
	}
	port := cfg.Port
	if port == 0 {
		port = 22
	}
	timeout := cfg.DialTimeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	auth, err := authMethods(cfg.IdentityFile)
	if err != nil {
		return nil, err
	}

	hostKey := ssh.InsecureIgnoreHostKey() //nolint:gosec // tablets ship self-generated host keys
	if cfg.StrictHostKey {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve known_hosts: %w", err)
		}
		hostKey, err = knownhosts.New(filepath.Join(home, ".ssh", "known_hosts"))
		if err != nil {
			return nil, fmt.Errorf("load known_hosts: %w", err)
		}
	}

	addr := net.JoinHostPort(cfg.Hostname, fmt.Sprintf("%d", port))
	client, err := ssh.Dial("tcp", addr, &ssh.ClientConfig{
		User:            user,
		Auth:            auth,
		HostKeyCallback: hostKey,
		Timeout:         timeout,
	})
	if err != nil {
		return nil, &TransportError{Op: "run", Err: fmt.Errorf("dial %s: %w", addr, err)}
	}
	return &SSHTransport{client: client}, nil
}

// authMethods collects key auth from an identity file and the running
// ssh-agent, in that order.
func authMethods(identityFile string) ([]ssh.AuthMethod, error) {
	var methods []ssh.AuthMethod

	if identityFile != "" {
		key, err := os.ReadFile(identityFile)
		if err != nil {
			return nil, fmt.Errorf("read identity file: %w", err)
		}
		signer, err := ssh.ParsePrivateKey(key)
		if err != nil {
			return nil, fmt.Errorf("parse identity file: %w", err)
		}
		methods = append(methods, ssh.PublicKeys(signer))
	}

	if sock := os.Getenv("SSH_AUTH_SOCK"); sock != "" {
		if conn, err := net.Dial("unix", sock); err == nil {
			ag := agent.NewClient(conn)
			methods = append(methods, ssh.PublicKeysCallback(ag.Signers))
		}
	}

	if len(methods) == 0 {
		return nil, fmt.Errorf("no SSH auth available: set identity_file in the config or start ssh-agent")
	}
	return methods, nil
}

// Close tears down the SSH connection.
func (t *SSHTransport) Close() error {
	return t.client.Close()
}

// Run executes cmd on the device and returns its captured stdout. A nonzero
// exit or a cancelled context yields a TransportError carrying the remote
// stderr text.
func (t *SSHTransport) Run(ctx context.Context, cmd string) (string, error) {
	sess, err := t.client.NewSession()
	if err != nil {
		return "", &TransportError{Op: "run", Err: err}
	}
	defer sess.Close()

	var stdout, stderr bytes.Buffer
	sess.Stdout = &stdout
	sess.Stderr = &stderr

	done := make(chan error, 1)
	go func() { done <- sess.Run(cmd) }()

	select {
	case <-ctx.Done():
		_ = sess.Signal(ssh.SIGKILL)
		return "", &TransportError{Op: "run", Stderr: stderr.String(), Err: ctx.Err()}
	case err := <-done:
		if err != nil {
			return "", &TransportError{Op: "run", Stderr: stderr.String(), Err: err}
		}
		return stdout.String(), nil
	}
}

// Push copies each local path into remoteDir over SFTP. Directories are
// created remotely and their contents copied recursively.
func (t *SSHTransport) Push(ctx context.Context, local []string, remoteDir string) error {
	client, err := sftp.NewClient(t.client)
	if err != nil {
		return &TransportError{Op: "push", Err: err}
	}
	defer client.Close()

	for _, src := range local {
		if err := ctx.Err(); err != nil {
			return &TransportError{Op: "push", Err: err}
		}
		if err := pushPath(client, src, path.Join(remoteDir, filepath.Base(src))); err != nil {
			return &TransportError{Op: "push", Err: err}
		}
	}
	return nil
}

func pushPath(client *sftp.Client, src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}

	if info.IsDir() {
		if err := client.MkdirAll(dst); err != nil {
			return fmt.Errorf("mkdir %s: %w", dst, err)
		}
		entries, err := os.ReadDir(src)
		if err != nil {
			return err
		}
		for _, entry := range entries {
			if err := pushPath(client, filepath.Join(src, entry.Name()), path.Join(dst, entry.Name())); err != nil {
				return err
			}
		}
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := client.Create(dst)
	if err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return fmt.Errorf("write %s: %w", dst, err)
	}
	return out.Close()
}
