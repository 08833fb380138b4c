// Package ssh implements SSH local port forwarding for reaching a
// warehouse that is only visible from a bastion host.
//
// Design decisions:
//   - Uses golang.org/x/crypto/ssh for the SSH client.
//   - Allocates a random local port (127.0.0.1:0) to avoid conflicts.
//   - The tunnel runs in a background goroutine and is stopped
//     via the Stop method (which closes the listener).
//   - Only key-based authentication is supported (with optional passphrase).
package ssh

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"

	"github.com/DachengChen/paiAnalyst/applog"
	"github.com/DachengChen/paiAnalyst/config"
)

// Addr represents host:port of the local tunnel endpoint.
type Addr struct {
	Host string
	Port int
}

// Tunnel manages an SSH local port forward to the warehouse.
type Tunnel struct {
	sshConfig  *ssh.ClientConfig
	sshAddr    string // e.g. "bastion:22"
	remoteAddr string // e.g. "warehouse:5432"

	client   *ssh.Client
	listener net.Listener
	wg       sync.WaitGroup
	done     chan struct{}
	stopOnce sync.Once
}

// NewTunnel creates a tunnel configuration (does not connect yet).
func NewTunnel(cfg config.SSHConfig, remoteHost string, remotePort int) (*Tunnel, error) {
	authMethods, err := buildAuthMethods(cfg)
	if err != nil {
		return nil, err
	}
	hostKeys, err := hostKeyCallback()
	if err != nil {
		return nil, err
	}

	port := cfg.Port
	if port == 0 {
		port = 22
	}

	return &Tunnel{
		sshConfig: &ssh.ClientConfig{
			User:            cfg.User,
			Auth:            authMethods,
			HostKeyCallback: hostKeys,
		},
		sshAddr:    net.JoinHostPort(cfg.Host, strconv.Itoa(port)),
		remoteAddr: net.JoinHostPort(remoteHost, strconv.Itoa(remotePort)),
		done:       make(chan struct{}),
	}, nil
}

// Start opens the SSH connection and starts forwarding.
// Returns the local address the warehouse driver should connect to.
func (t *Tunnel) Start(ctx context.Context) (*Addr, error) {
	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", t.sshAddr)
	if err != nil {
		return nil, fmt.Errorf("ssh dial %s: %w", t.sshAddr, err)
	}
	c, chans, reqs, err := ssh.NewClientConn(conn, t.sshAddr, t.sshConfig)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("ssh handshake %s: %w", t.sshAddr, err)
	}
	t.client = ssh.NewClient(c, chans, reqs)

	t.listener, err = net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.client.Close()
		return nil, fmt.Errorf("local listen: %w", err)
	}

	tcpAddr := t.listener.Addr().(*net.TCPAddr)
	applog.Info("ssh tunnel %s -> %s on 127.0.0.1:%d", t.sshAddr, t.remoteAddr, tcpAddr.Port)

	t.wg.Add(1)
	go t.acceptLoop()

	return &Addr{Host: "127.0.0.1", Port: tcpAddr.Port}, nil
}

// Stop tears down the tunnel. Safe to call more than once.
func (t *Tunnel) Stop() {
	t.stopOnce.Do(func() {
		close(t.done)
		if t.listener != nil {
			t.listener.Close()
		}
		t.wg.Wait()
		if t.client != nil {
			t.client.Close()
		}
	})
}

// acceptLoop accepts local connections and forwards them through SSH.
func (t *Tunnel) acceptLoop() {
	defer t.wg.Done()
	for {
		localConn, err := t.listener.Accept()
		if err != nil {
			select {
			case <-t.done:
				return
			default:
			}
			if errors.Is(err, net.ErrClosed) {
				return
			}
			continue
		}
		t.wg.Add(1)
		go t.forward(localConn)
	}
}

// forward pipes data between the local and remote connections.
func (t *Tunnel) forward(localConn net.Conn) {
	defer t.wg.Done()
	defer localConn.Close()

	remoteConn, err := t.client.Dial("tcp", t.remoteAddr)
	if err != nil {
		applog.Error("ssh forward to %s: %v", t.remoteAddr, err)
		return
	}
	defer remoteConn.Close()

	done := make(chan struct{}, 2)
	go func() {
		_, _ = io.Copy(remoteConn, localConn)
		done <- struct{}{}
	}()
	go func() {
		_, _ = io.Copy(localConn, remoteConn)
		done <- struct{}{}
	}()
	<-done
}

// hostKeyCallback verifies against ~/.ssh/known_hosts when it exists.
func hostKeyCallback() (ssh.HostKeyCallback, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return ssh.InsecureIgnoreHostKey(), nil
	}
	path := filepath.Join(home, ".ssh", "known_hosts")
	if _, err := os.Stat(path); err != nil {
		applog.Warn("no %s, skipping ssh host key verification", path)
		return ssh.InsecureIgnoreHostKey(), nil
	}
	cb, err := knownhosts.New(path)
	if err != nil {
		return nil, fmt.Errorf("read known_hosts: %w", err)
	}
	return cb, nil
}

// buildAuthMethods creates SSH auth methods from config.
func buildAuthMethods(cfg config.SSHConfig) ([]ssh.AuthMethod, error) {
	if cfg.KeyPath == "" {
		return nil, errors.New("no SSH authentication methods configured (set warehouse.ssh.key_path)")
	}

	keyBytes, err := os.ReadFile(cfg.KeyPath)
	if err != nil {
		return nil, fmt.Errorf("read ssh key %s: %w", cfg.KeyPath, err)
	}

	var signer ssh.Signer
	if cfg.KeyPassphrase != "" {
		signer, err = ssh.ParsePrivateKeyWithPassphrase(keyBytes, []byte(cfg.KeyPassphrase))
	} else {
		signer, err = ssh.ParsePrivateKey(keyBytes)
	}
	if err != nil {
		return nil, fmt.Errorf("parse ssh key: %w", err)
	}
	return []ssh.AuthMethod{ssh.PublicKeys(signer)}, nil
}
