// Package git implements board synchronization through a git remote. The
// board directory is expected to be (inside) a working copy with a
// configured remote; pushes commit everything and upload, pulls fast-forward
// only, anything that cannot fast-forward is surfaced as a conflict.
package git

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"

	"github.com/starford/dagaz/internal/sync"
)

const (
	defaultRemote = "origin"
	defaultBranch = "main"
)

func init() {
	sync.Register(sync.KindGit, func(boardDir string, opts sync.Options) (sync.Provider, error) {
		return New(boardDir, opts)
	})
}

// Provider implements sync.Provider on top of the git binary.
type Provider struct {
	dir     string
	remote  string
	branch  string
	tracker *sync.Tracker
	logger  *slog.Logger
}

// New creates a git provider for the board directory. It does not touch
// the network; call CheckConfiguration before relying on the status.
func New(boardDir string, opts sync.Options) (*Provider, error) {
	remote := opts.Remote
	if remote == "" {
		remote = defaultRemote
	}
	branch := opts.Branch
	if branch == "" {
		branch = defaultBranch
	}
	return &Provider{
		dir:     boardDir,
		remote:  remote,
		branch:  branch,
		tracker: sync.NewTracker(),
		logger:  slog.Default(),
	}, nil
}

// Status returns the current synchronization status.
func (p *Provider) Status() sync.Status { return p.tracker.Current() }

// Location returns the board directory.
func (p *Provider) Location() string { return p.dir }

// CheckConfiguration verifies the directory is a git working copy with the
// configured remote, then refreshes the status from the remote.
func (p *Provider) CheckConfiguration(ctx context.Context) error {
	if _, err := p.git(ctx, "rev-parse", "--git-dir"); err != nil {
		p.tracker.MarkNotConfigured()
		return fmt.Errorf("%w: %s is not a git working copy", sync.ErrNotConfigured, p.dir)
	}
	if _, err := p.git(ctx, "remote", "get-url", p.remote); err != nil {
		p.tracker.MarkNotConfigured()
		return fmt.Errorf("%w: remote %q not set", sync.ErrNotConfigured, p.remote)
	}
	p.tracker.MarkConfigured()
	return p.refresh(ctx)
}

// HasLocalChanges reports uncommitted or unpushed work and records it in
// the status.
func (p *Provider) HasLocalChanges(ctx context.Context) (bool, error) {
	dirty, err := p.workingTreeDirty(ctx)
	if err != nil {
		return false, err
	}
	ahead, _, err := p.aheadBehind(ctx)
	if err != nil {
		// No upstream yet counts as local-only history.
		ahead = 1
	}
	if dirty || ahead > 0 {
		p.tracker.MarkLocalChanges()
		return true, nil
	}
	return false, nil
}

// Push commits everything in the board directory and uploads it.
func (p *Provider) Push(ctx context.Context) error {
	if err := p.tracker.BeginSync(); err != nil {
		return fmt.Errorf("%w: %v", sync.ErrPushFailed, err)
	}

	dirty, err := p.workingTreeDirty(ctx)
	if err != nil {
		return p.fail(sync.ErrPushFailed, err)
	}
	if dirty {
		if _, err := p.git(ctx, "add", "-A"); err != nil {
			return p.fail(sync.ErrPushFailed, err)
		}
		if _, err := p.git(ctx, "commit", "-m", "board sync"); err != nil {
			return p.fail(sync.ErrPushFailed, err)
		}
	}

	out, err := p.git(ctx, "push", p.remote, p.branch)
	if err != nil {
		if isRejected(out) {
			p.tracker.FinishConflict()
			return fmt.Errorf("%w: push rejected, pull first", sync.ErrConflict)
		}
		return p.fail(classify(out, sync.ErrPushFailed), err)
	}
	p.tracker.FinishSynced()
	return nil
}

// Sync pulls remote changes, fast-forward only.
func (p *Provider) Sync(ctx context.Context) error {
	if err := p.tracker.BeginSync(); err != nil {
		return fmt.Errorf("%w: %v", sync.ErrPullFailed, err)
	}
	out, err := p.git(ctx, "pull", "--ff-only", p.remote, p.branch)
	if err != nil {
		if isDiverged(out) {
			p.tracker.FinishConflict()
			return fmt.Errorf("%w: histories diverged, cannot fast-forward", sync.ErrConflict)
		}
		return p.fail(classify(out, sync.ErrPullFailed), err)
	}
	p.tracker.FinishSynced()
	return nil
}

// refresh fetches and recomputes the status from working tree and
// ahead/behind counts.
func (p *Provider) refresh(ctx context.Context) error {
	if out, err := p.git(ctx, "fetch", p.remote, p.branch); err != nil {
		return p.fail(classify(out, sync.ErrNetwork), err)
	}
	dirty, err := p.workingTreeDirty(ctx)
	if err != nil {
		return err
	}
	ahead, behind, err := p.aheadBehind(ctx)
	if err != nil {
		return err
	}
	if dirty || ahead > 0 {
		p.tracker.MarkLocalChanges()
	}
	if behind > 0 {
		p.tracker.MarkRemoteChanges()
	}
	return nil
}

func (p *Provider) workingTreeDirty(ctx context.Context) (bool, error) {
	out, err := p.git(ctx, "status", "--porcelain")
	if err != nil {
		return false, fmt.Errorf("%w: git status: %v", sync.ErrPushFailed, err)
	}
	return strings.TrimSpace(out) != "", nil
}

// aheadBehind returns how many commits local and remote are ahead of each
// other.
func (p *Provider) aheadBehind(ctx context.Context) (ahead, behind int, err error) {
	ref := p.remote + "/" + p.branch
	out, err := p.git(ctx, "rev-list", "--left-right", "--count", "HEAD..."+ref)
	if err != nil {
		return 0, 0, fmt.Errorf("rev-list against %s: %w", ref, err)
	}
	fields := strings.Fields(out)
	if len(fields) != 2 {
		return 0, 0, fmt.Errorf("unexpected rev-list output %q", out)
	}
	ahead, _ = strconv.Atoi(fields[0])
	behind, _ = strconv.Atoi(fields[1])
	return ahead, behind, nil
}

// git runs one git command in the board directory and returns its combined
// output.
func (p *Provider) git(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = p.dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		return string(out), fmt.Errorf("git %s: %w\n%s", strings.Join(args, " "), err, out)
	}
	return string(out), nil
}

// fail records the failure in the status and returns it wrapped in the
// given sentinel.
func (p *Provider) fail(sentinel error, err error) error {
	p.tracker.FinishError(err.Error())
	p.logger.Warn("git sync failed", slog.String("error", err.Error()))
	return fmt.Errorf("%w: %v", sentinel, err)
}

func classify(output string, fallback error) error {
	lower := strings.ToLower(output)
	switch {
	case strings.Contains(lower, "could not resolve host"),
		strings.Contains(lower, "connection timed out"),
		strings.Contains(lower, "could not read from remote"):
		return sync.ErrNetwork
	case strings.Contains(lower, "authentication failed"),
		strings.Contains(lower, "permission denied"):
		return sync.ErrAuthentication
	default:
		return fallback
	}
}

func isRejected(output string) bool {
	lower := strings.ToLower(output)
	return strings.Contains(lower, "non-fast-forward") || strings.Contains(lower, "[rejected]")
}

func isDiverged(output string) bool {
	lower := strings.ToLower(output)
	return strings.Contains(lower, "not possible to fast-forward") ||
		strings.Contains(lower, "diverg")
}
