package delivery

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"

	gerrors "github.com/go-faster/errors"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

type DriveOptions struct {
	Name            string
	CredentialsJSON []byte
	FolderID        string

	// Endpoint and HTTPClient replace the Google endpoint and service account auth.
	Endpoint   string
	HTTPClient *http.Client
}

// DriveDestination creates files in a Drive folder with a service account.
type DriveDestination struct {
	opts DriveOptions
}

func NewDriveDestination(opts DriveOptions) (*DriveDestination, error) {
	if strings.TrimSpace(opts.FolderID) == "" {
		return nil, fmt.Errorf("drive %s: folder id is required", opts.Name)
	}
	if len(opts.CredentialsJSON) == 0 && opts.HTTPClient == nil {
		return nil, fmt.Errorf("drive %s: service account credentials are required", opts.Name)
	}
	return &DriveDestination{opts: opts}, nil
}

// ReadCredentials returns inline JSON when set, otherwise the file contents.
func ReadCredentials(inline, file string) ([]byte, error) {
	if strings.TrimSpace(inline) != "" {
		return []byte(inline), nil
	}
	return os.ReadFile(file)
}

func (d *DriveDestination) Name() string { return d.opts.Name }

func (d *DriveDestination) service(ctx context.Context) (*drive.Service, error) {
	client := d.opts.HTTPClient
	if client == nil {
		creds, err := google.CredentialsFromJSON(ctx, d.opts.CredentialsJSON, drive.DriveFileScope)
		if err != nil {
			return nil, gerrors.Wrap(err, "parse service account credentials")
		}
		client = oauth2.NewClient(ctx, creds.TokenSource)
	}
	opts := []option.ClientOption{option.WithHTTPClient(client)}
	if d.opts.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(d.opts.Endpoint))
	}
	return drive.NewService(ctx, opts...)
}

func (d *DriveDestination) Send(ctx context.Context, localPath, remoteName string) (Remote, error) {
	svc, err := d.service(ctx)
	if err != nil {
		return Remote{}, err
	}
	f, err := os.Open(localPath)
	if err != nil {
		return Remote{}, err
	}
	defer func() { _ = f.Close() }()

	meta := &drive.File{
		Name:     remoteName,
		Parents:  []string{d.opts.FolderID},
		MimeType: "text/csv",
	}
	created, err := svc.Files.Create(meta).
		Media(f).
		SupportsAllDrives(true).
		Fields("id", "name").
		Context(ctx).
		Do()
	if err != nil {
		return Remote{}, gerrors.Wrap(err, "create drive file")
	}
	return Remote{Path: d.opts.FolderID + "/" + created.Name, ID: created.Id}, nil
}

// Check reads the target folder's metadata.
func (d *DriveDestination) Check(ctx context.Context) error {
	svc, err := d.service(ctx)
	if err != nil {
		return err
	}
	_, err = svc.Files.Get(d.opts.FolderID).SupportsAllDrives(true).Fields("id").Context(ctx).Do()
	return err
}
