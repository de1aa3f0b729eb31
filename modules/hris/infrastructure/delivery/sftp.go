package delivery

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"path"
	"strconv"
	"strings"
	"time"

	gerrors "github.com/go-faster/errors"
	"github.com/pkg/sftp"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/ssh"

	"github.com/iota-uz/hrsync/pkg/logging"
)

type SFTPOptions struct {
	Name           string
	Host           string
	Port           int
	User           string
	Password       string
	PrivateKeyPath string
	Passphrase     string
	// HostKey is an authorized_keys formatted public key. Empty disables verification.
	HostKey string
	Folder  string
	Timeout time.Duration
	Logger  *logrus.Entry
}

type SFTPDestination struct {
	opts SFTPOptions
	log  *logrus.Entry
}

func NewSFTPDestination(opts SFTPOptions) (*SFTPDestination, error) {
	if strings.TrimSpace(opts.Host) == "" {
		return nil, fmt.Errorf("sftp %s: host is required", opts.Name)
	}
	if opts.Password == "" && opts.PrivateKeyPath == "" {
		return nil, fmt.Errorf("sftp %s: password or private key is required", opts.Name)
	}
	if opts.Port == 0 {
		opts.Port = 22
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	log := opts.Logger
	if log == nil {
		log = logging.Nop()
	}
	return &SFTPDestination{opts: opts, log: log.WithFields(logrus.Fields{"destination": opts.Name, "host": opts.Host})}, nil
}

func (d *SFTPDestination) Name() string { return d.opts.Name }

func (d *SFTPDestination) Send(ctx context.Context, localPath, remoteName string) (Remote, error) {
	remotePath := remoteName
	if d.opts.Folder != "" {
		remotePath = path.Join(d.opts.Folder, remoteName)
	}

	src, err := os.Open(localPath)
	if err != nil {
		return Remote{}, err
	}
	defer func() { _ = src.Close() }()

	client, closeConn, err := d.connect(ctx)
	if err != nil {
		return Remote{}, err
	}
	defer closeConn()

	dst, err := client.Create(remotePath)
	if err != nil {
		return Remote{}, gerrors.Wrapf(err, "create %s", remotePath)
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		return Remote{}, gerrors.Wrapf(err, "write %s", remotePath)
	}
	if err := dst.Close(); err != nil {
		return Remote{}, gerrors.Wrapf(err, "close %s", remotePath)
	}
	return Remote{Path: remotePath}, nil
}

// Check opens a session and stats the target folder.
func (d *SFTPDestination) Check(ctx context.Context) error {
	client, closeConn, err := d.connect(ctx)
	if err != nil {
		return err
	}
	defer closeConn()
	folder := d.opts.Folder
	if folder == "" {
		folder = "."
	}
	_, err = client.Stat(folder)
	return err
}

func (d *SFTPDestination) connect(ctx context.Context) (*sftp.Client, func(), error) {
	conf, err := d.clientConfig()
	if err != nil {
		return nil, nil, err
	}
	addr := net.JoinHostPort(d.opts.Host, strconv.Itoa(d.opts.Port))

	dialer := net.Dialer{Timeout: d.opts.Timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, nil, gerrors.Wrapf(err, "dial %s", addr)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}
	sshConn, chans, reqs, err := ssh.NewClientConn(conn, addr, conf)
	if err != nil {
		_ = conn.Close()
		return nil, nil, gerrors.Wrap(err, "ssh handshake")
	}
	sshClient := ssh.NewClient(sshConn, chans, reqs)

	client, err := sftp.NewClient(sshClient)
	if err != nil {
		_ = sshClient.Close()
		return nil, nil, gerrors.Wrap(err, "start sftp subsystem")
	}
	d.log.Debug("sftp connected")
	return client, func() {
		_ = client.Close()
		_ = sshClient.Close()
		d.log.Debug("sftp closed")
	}, nil
}

func (d *SFTPDestination) clientConfig() (*ssh.ClientConfig, error) {
	var auth []ssh.AuthMethod
	if d.opts.PrivateKeyPath != "" {
		signer, err := loadSigner(d.opts.PrivateKeyPath, d.opts.Passphrase)
		if err != nil {
			return nil, err
		}
		auth = append(auth, ssh.PublicKeys(signer))
	}
	if d.opts.Password != "" {
		auth = append(auth, ssh.Password(d.opts.Password))
	}

	hostKey := ssh.InsecureIgnoreHostKey()
	if strings.TrimSpace(d.opts.HostKey) != "" {
		pub, _, _, _, err := ssh.ParseAuthorizedKey([]byte(d.opts.HostKey))
		if err != nil {
			return nil, gerrors.Wrap(err, "parse host key")
		}
		hostKey = ssh.FixedHostKey(pub)
	} else {
		d.log.Warn("host key verification disabled")
	}

	return &ssh.ClientConfig{
		User:            d.opts.User,
		Auth:            auth,
		HostKeyCallback: hostKey,
		Timeout:         d.opts.Timeout,
	}, nil
}

func loadSigner(keyPath, passphrase string) (ssh.Signer, error) {
	pem, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, gerrors.Wrap(err, "read private key")
	}
	var signer ssh.Signer
	if passphrase != "" {
		signer, err = ssh.ParsePrivateKeyWithPassphrase(pem, []byte(passphrase))
	} else {
		signer, err = ssh.ParsePrivateKey(pem)
	}
	if err != nil {
		return nil, gerrors.Wrap(err, "parse private key")
	}
	return signer, nil
}
