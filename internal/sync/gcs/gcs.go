// Package gcs implements board synchronization against a Google Cloud
// Storage bucket. The board's record files are mirrored under a bucket
// prefix; each object carries the file's SHA-256 digest as metadata so
// both sides can be compared without downloading content.
package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	gcstorage "cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/starford/dagaz/internal/checksum"
	"github.com/starford/dagaz/internal/storage"
	"github.com/starford/dagaz/internal/sync"
)

// checksumKey is the object metadata key carrying the file digest.
const checksumKey = "dagaz-sha256"

func init() {
	sync.Register(sync.KindGCS, func(boardDir string, opts sync.Options) (sync.Provider, error) {
		return New(boardDir, opts)
	})
}

// Provider implements sync.Provider on top of a GCS bucket.
type Provider struct {
	dir     string
	store   storage.Provider
	bucket  string
	prefix  string
	creds   string
	client  *gcstorage.Client
	tracker *sync.Tracker
	logger  *slog.Logger
}

// New creates a GCS provider for the board directory. The client is opened
// lazily by CheckConfiguration so construction never touches the network.
func New(boardDir string, opts sync.Options) (*Provider, error) {
	store, err := storage.NewFS(boardDir)
	if err != nil {
		return nil, fmt.Errorf("gcs: %w", err)
	}
	return &Provider{
		dir:     boardDir,
		store:   store,
		bucket:  opts.Bucket,
		prefix:  strings.Trim(opts.Prefix, "/"),
		creds:   opts.CredentialsFile,
		tracker: sync.NewTracker(),
		logger:  slog.Default(),
	}, nil
}

// Status returns the current synchronization status.
func (p *Provider) Status() sync.Status { return p.tracker.Current() }

// Location returns the board directory.
func (p *Provider) Location() string { return p.dir }

// CheckConfiguration opens the client, verifies the bucket is reachable,
// and refreshes the status from a local/remote comparison.
func (p *Provider) CheckConfiguration(ctx context.Context) error {
	if p.bucket == "" {
		p.tracker.MarkNotConfigured()
		return fmt.Errorf("%w: no bucket set", sync.ErrNotConfigured)
	}
	if p.client == nil {
		var clientOpts []option.ClientOption
		if p.creds != "" {
			clientOpts = append(clientOpts, option.WithCredentialsFile(p.creds))
		}
		client, err := gcstorage.NewClient(ctx, clientOpts...)
		if err != nil {
			p.tracker.MarkNotConfigured()
			return fmt.Errorf("%w: %v", sync.ErrNotConfigured, err)
		}
		p.client = client
	}
	if _, err := p.client.Bucket(p.bucket).Attrs(ctx); err != nil {
		p.tracker.MarkNotConfigured()
		return p.wrap(sync.ErrNotConfigured, err)
	}
	p.tracker.MarkConfigured()

	d, err := p.diff(ctx)
	if err != nil {
		return err
	}
	if len(d.localAhead) > 0 {
		p.tracker.MarkLocalChanges()
	}
	if len(d.remoteAhead) > 0 {
		p.tracker.MarkRemoteChanges()
	}
	return nil
}

// HasLocalChanges reports whether any local file is missing or different
// remotely, and records it in the status.
func (p *Provider) HasLocalChanges(ctx context.Context) (bool, error) {
	d, err := p.diff(ctx)
	if err != nil {
		return false, err
	}
	if len(d.localAhead) > 0 {
		p.tracker.MarkLocalChanges()
		return true, nil
	}
	return false, nil
}

// Push uploads every locally changed file and prunes remote objects whose
// files were deleted locally.
func (p *Provider) Push(ctx context.Context) error {
	if err := p.tracker.BeginSync(); err != nil {
		return fmt.Errorf("%w: %v", sync.ErrPushFailed, err)
	}
	d, err := p.diffDuringSync(ctx)
	if err != nil {
		return err
	}
	for _, rel := range d.localAhead {
		if err := p.upload(ctx, rel); err != nil {
			return p.fail(sync.ErrPushFailed, err)
		}
	}
	for _, rel := range d.remoteOnly {
		if err := p.object(rel).Delete(ctx); err != nil && !errors.Is(err, gcstorage.ErrObjectNotExist) {
			return p.fail(sync.ErrPushFailed, err)
		}
	}
	p.tracker.FinishSynced()
	return nil
}

// Sync downloads every remotely changed object. Files that exist only
// locally are left in place; pushing reconciles them later.
func (p *Provider) Sync(ctx context.Context) error {
	if err := p.tracker.BeginSync(); err != nil {
		return fmt.Errorf("%w: %v", sync.ErrPullFailed, err)
	}
	d, err := p.diffDuringSync(ctx)
	if err != nil {
		return err
	}
	for _, rel := range d.remoteAhead {
		if err := p.download(ctx, rel); err != nil {
			return p.fail(sync.ErrPullFailed, err)
		}
	}
	if len(d.localAhead) > 0 {
		// Remote content is in; local edits still pending.
		p.tracker.FinishSynced()
		p.tracker.MarkLocalChanges()
		return nil
	}
	p.tracker.FinishSynced()
	return nil
}

// boardDiff classifies files by which side must act on them.
type boardDiff struct {
	localAhead  []string // upload on push: local-only or local copy newer
	remoteAhead []string // download on pull: remote-only or remote copy newer
	remoteOnly  []string // prune on push: deleted locally
}

// diff lists both sides and compares digests; ties on differing content
// break by modification time.
func (p *Provider) diff(ctx context.Context) (*boardDiff, error) {
	if p.client == nil {
		return nil, fmt.Errorf("%w: CheckConfiguration not run", sync.ErrNotConfigured)
	}

	local, err := p.store.List("")
	if err != nil {
		return nil, fmt.Errorf("%w: list local: %v", sync.ErrPullFailed, err)
	}
	localByPath := make(map[string]storage.FileMeta, len(local))
	for _, m := range local {
		localByPath[m.Path] = m
	}

	type remoteMeta struct {
		sum     string
		updated time.Time
	}
	remote := make(map[string]remoteMeta)
	it := p.client.Bucket(p.bucket).Objects(ctx, &gcstorage.Query{Prefix: p.objectPrefix()})
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, p.wrap(sync.ErrNetwork, err)
		}
		rel := strings.TrimPrefix(attrs.Name, p.objectPrefix())
		if rel == "" {
			continue
		}
		remote[rel] = remoteMeta{sum: attrs.Metadata[checksumKey], updated: attrs.Updated}
	}

	var d boardDiff
	for rel, lm := range localByPath {
		rm, ok := remote[rel]
		switch {
		case !ok:
			d.localAhead = append(d.localAhead, rel)
		case rm.sum != lm.Checksum:
			if lm.UpdatedAt.After(rm.updated) {
				d.localAhead = append(d.localAhead, rel)
			} else {
				d.remoteAhead = append(d.remoteAhead, rel)
			}
		}
	}
	for rel := range remote {
		if _, ok := localByPath[rel]; !ok {
			d.remoteAhead = append(d.remoteAhead, rel)
			d.remoteOnly = append(d.remoteOnly, rel)
		}
	}
	return &d, nil
}

// diffDuringSync is diff with failures routed into the error status.
func (p *Provider) diffDuringSync(ctx context.Context) (*boardDiff, error) {
	d, err := p.diff(ctx)
	if err != nil {
		p.tracker.FinishError(err.Error())
		return nil, err
	}
	return d, nil
}

func (p *Provider) upload(ctx context.Context, rel string) error {
	data, err := p.store.Read(rel)
	if err != nil {
		return fmt.Errorf("read %s: %w", rel, err)
	}
	w := p.object(rel).NewWriter(ctx)
	w.ContentType = "text/markdown"
	w.Metadata = map[string]string{checksumKey: checksum.Sum(data)}
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return fmt.Errorf("upload %s: %w", rel, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close upload %s: %w", rel, err)
	}
	return nil
}

func (p *Provider) download(ctx context.Context, rel string) error {
	r, err := p.object(rel).NewReader(ctx)
	if err != nil {
		return fmt.Errorf("open %s: %w", rel, err)
	}
	defer r.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("download %s: %w", rel, err)
	}
	return p.store.Write(rel, data)
}

func (p *Provider) object(rel string) *gcstorage.ObjectHandle {
	return p.client.Bucket(p.bucket).Object(p.objectPrefix() + rel)
}

func (p *Provider) objectPrefix() string {
	if p.prefix == "" {
		return ""
	}
	return p.prefix + "/"
}

func (p *Provider) fail(sentinel error, err error) error {
	p.tracker.FinishError(err.Error())
	p.logger.Warn("gcs sync failed", slog.String("error", err.Error()))
	return fmt.Errorf("%w: %v", sentinel, err)
}

// wrap maps API failures onto the sync error vocabulary.
func (p *Provider) wrap(fallback error, err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case 401, 403:
			return fmt.Errorf("%w: %v", sync.ErrAuthentication, err)
		}
	}
	return fmt.Errorf("%w: %v", fallback, err)
}
