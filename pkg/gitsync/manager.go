// Package gitsync owns every git interaction of the module: keeping a
// site's working tree in sync with its remote, committing content edits
// back, and publishing build output to the hosting branch. It caches one
// repository handle per site; all operations on a site serialize on that
// handle.
package gitsync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	gogithttp "github.com/go-git/go-git/v5/plumbing/transport/http"

	"github.com/billstark001/fiction-cms-sub001/pkg/access"
	"github.com/billstark001/fiction-cms-sub001/pkg/cmserr"
	"github.com/billstark001/fiction-cms-sub001/pkg/siteconfig"
)

// HostingBranch is the fixed branch build output is published to.
const HostingBranch = "gh-pages"

// Bot identity used for publish commits, distinct from user authorship.
const (
	botName  = "Fiction CMS Deploy Bot"
	botEmail = "deploy-bot@fiction-cms.local"
)

// Manager caches one open repository per site id. Safe for concurrent
// use; operations against the same site serialize on its handle.
type Manager struct {
	mu      sync.Mutex
	handles map[string]*handle
	logger  *slog.Logger
}

type handle struct {
	mu        sync.Mutex
	repo      *gogit.Repository
	localPath string
}

// New creates a Manager. A nil logger falls back to slog.Default().
func New(logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		handles: make(map[string]*handle),
		logger:  logger,
	}
}

// ClearInstance evicts the cached handle for a site. Must be called on
// site deletion or credential rotation; a stale handle otherwise keeps
// the old working tree association for the process lifetime.
func (m *Manager) ClearInstance(siteID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.handles, siteID)
}

// Reset evicts every cached handle.
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handles = make(map[string]*handle)
}

// EnsureCleanAndPull makes the site's working tree match the remote:
// clones when no local repository exists, otherwise discards any local
// drift (this module is the sole writer, so dirtiness is corruption,
// not work in progress) and fast-forwards onto the remote branch.
// Diverged history fails with a conflict SyncError; it is never
// force-resolved.
func (m *Manager) EnsureCleanAndPull(ctx context.Context, cfg *siteconfig.SiteConfig) error {
	h, created, err := m.handleFor(ctx, cfg)
	if err != nil {
		return err
	}
	if created {
		// A fresh clone is clean and current.
		return nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	w, err := h.repo.Worktree()
	if err != nil {
		return cmserr.Wrap(cmserr.CodeInternal, "pull", cfg.RepoURL, err)
	}

	if head, err := h.repo.Head(); err == nil {
		if err := w.Reset(&gogit.ResetOptions{Mode: gogit.HardReset, Commit: head.Hash()}); err != nil {
			return cmserr.Wrap(cmserr.CodeInternal, "reset", cfg.RepoURL, err)
		}
		if err := w.Clean(&gogit.CleanOptions{Dir: true}); err != nil {
			return cmserr.Wrap(cmserr.CodeInternal, "clean", cfg.RepoURL, err)
		}
	}

	pullOpts := &gogit.PullOptions{RemoteName: "origin"}
	if a := basicAuth(cfg); a != nil {
		pullOpts.Auth = a
	}
	err = w.PullContext(ctx, pullOpts)
	if errors.Is(err, gogit.NoErrAlreadyUpToDate) {
		return nil
	}
	if err != nil {
		return classify("pull", cfg.RepoURL, err, SyncNetwork)
	}
	m.logger.Debug("pulled remote changes", "site", cfg.ID, "url", cfg.RepoURL)
	return nil
}

// CommitAndPush stages exactly the given repo-relative paths (additions,
// edits, and deletions), commits them with the principal as author, and
// pushes. A no-diff commit is a no-op success returning the current HEAD
// hash. On a push failure the returned hash is the local commit that
// failed to publish.
func (m *Manager) CommitAndPush(ctx context.Context, cfg *siteconfig.SiteConfig, paths []string, message string, author siteconfig.Principal) (string, error) {
	h, _, err := m.handleFor(ctx, cfg)
	if err != nil {
		return "", err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	w, err := h.repo.Worktree()
	if err != nil {
		return "", cmserr.Wrap(cmserr.CodeInternal, "commit", cfg.RepoURL, err)
	}

	for _, p := range paths {
		rel := access.NormalizeRelPath(p)
		if _, err := w.Add(rel); err != nil {
			return "", cmserr.Wrap(cmserr.CodeInternal, "stage", rel, err)
		}
	}

	name := author.Name
	if name == "" {
		name = author.ID
	}
	hash, err := w.Commit(message, &gogit.CommitOptions{
		Author: &object.Signature{Name: name, Email: author.Email, When: time.Now()},
	})
	if errors.Is(err, gogit.ErrEmptyCommit) {
		head, headErr := h.repo.Head()
		if headErr != nil {
			return "", cmserr.Wrap(cmserr.CodeInternal, "commit", cfg.RepoURL, headErr)
		}
		return head.Hash().String(), nil
	}
	if err != nil {
		return "", cmserr.Wrap(cmserr.CodeInternal, "commit", cfg.RepoURL, err)
	}

	pushOpts := &gogit.PushOptions{RemoteName: "origin"}
	if a := basicAuth(cfg); a != nil {
		pushOpts.Auth = a
	}
	err = h.repo.PushContext(ctx, pushOpts)
	if err != nil && !errors.Is(err, gogit.NoErrAlreadyUpToDate) {
		return hash.String(), classify("push", cfg.RepoURL, err, SyncNetwork)
	}
	m.logger.Info("committed and pushed", "site", cfg.ID, "paths", len(paths), "commit", hash.String())
	return hash.String(), nil
}

// PublishDirectory publishes the directory's content as a single commit
// force-pushed to the hosting branch of the site's remote. The directory
// gets its own ephemeral repository, so the site's history never mixes
// with hosting history. Dotfiles are included.
func (m *Manager) PublishDirectory(ctx context.Context, cfg *siteconfig.SiteConfig, dir, message string) error {
	repo, err := gogit.PlainInitWithOptions(dir, &gogit.PlainInitOptions{
		InitOptions: gogit.InitOptions{DefaultBranch: plumbing.Master},
	})
	if errors.Is(err, gogit.ErrRepositoryAlreadyExists) {
		repo, err = gogit.PlainOpen(dir)
	}
	if err != nil {
		return cmserr.Wrap(cmserr.CodeInternal, "publish_init", dir, err)
	}

	w, err := repo.Worktree()
	if err != nil {
		return cmserr.Wrap(cmserr.CodeInternal, "publish_init", dir, err)
	}
	if err := w.AddWithOptions(&gogit.AddOptions{All: true}); err != nil {
		return cmserr.Wrap(cmserr.CodeInternal, "publish_stage", dir, err)
	}

	// Empty commits are allowed so republishing unchanged output still
	// advances the hosting branch with a fresh timestamped commit.
	_, err = w.Commit(message, &gogit.CommitOptions{
		Author:            &object.Signature{Name: botName, Email: botEmail, When: time.Now()},
		AllowEmptyCommits: true,
	})
	if err != nil {
		return cmserr.Wrap(cmserr.CodeInternal, "publish_commit", dir, err)
	}

	head, err := repo.Head()
	if err != nil {
		return cmserr.Wrap(cmserr.CodeInternal, "publish_commit", dir, err)
	}

	target := cfg.RepoURL
	if isRemoteURL(target) && cfg.Credential != "" {
		target = BuildAuthenticatedURL(cfg.RepoURL, cfg.Credential)
	}
	remote, err := repo.CreateRemoteAnonymous(&config.RemoteConfig{
		Name: "anonymous",
		URLs: []string{target},
	})
	if err != nil {
		return cmserr.Wrap(cmserr.CodeInternal, "publish_push", cfg.RepoURL, err)
	}

	refspec := config.RefSpec(fmt.Sprintf("+%s:%s", head.Name(), plumbing.NewBranchReferenceName(HostingBranch)))
	err = remote.PushContext(ctx, &gogit.PushOptions{
		RemoteName: "anonymous",
		RefSpecs:   []config.RefSpec{refspec},
	})
	if err != nil && !errors.Is(err, gogit.NoErrAlreadyUpToDate) {
		return classify("publish_push", cfg.RepoURL, err, SyncNetwork)
	}
	m.logger.Info("published hosting branch", "site", cfg.ID, "branch", HostingBranch, "commit", head.Hash().String())
	return nil
}

// HeadHash returns the current HEAD commit hash of the site's working tree.
func (m *Manager) HeadHash(ctx context.Context, cfg *siteconfig.SiteConfig) (string, error) {
	h, _, err := m.handleFor(ctx, cfg)
	if err != nil {
		return "", err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	head, err := h.repo.Head()
	if err != nil {
		return "", cmserr.Wrap(cmserr.CodeInternal, "head", cfg.RepoURL, err)
	}
	return head.Hash().String(), nil
}

// handleFor returns the cached handle for the site, opening or cloning
// the repository on first use. The second return is true when this call
// performed the clone.
func (m *Manager) handleFor(ctx context.Context, cfg *siteconfig.SiteConfig) (*handle, bool, error) {
	m.mu.Lock()
	if h, ok := m.handles[cfg.ID]; ok && h.localPath == cfg.LocalPath {
		m.mu.Unlock()
		return h, false, nil
	}
	m.mu.Unlock()

	repo, err := gogit.PlainOpen(cfg.LocalPath)
	created := false
	if errors.Is(err, gogit.ErrRepositoryNotExists) {
		cloneOpts := &gogit.CloneOptions{URL: cfg.RepoURL}
		if a := basicAuth(cfg); a != nil {
			cloneOpts.Auth = a
		}
		m.logger.Info("cloning repository", "site", cfg.ID, "url", cfg.RepoURL, "path", cfg.LocalPath)
		repo, err = gogit.PlainCloneContext(ctx, cfg.LocalPath, false, cloneOpts)
		if err != nil {
			return nil, false, classify("clone", cfg.RepoURL, err, SyncNetwork)
		}
		created = true
	} else if err != nil {
		return nil, false, cmserr.Wrap(cmserr.CodeInternal, "open", cfg.LocalPath, err)
	}

	h := &handle{repo: repo, localPath: cfg.LocalPath}
	m.mu.Lock()
	// A concurrent call may have raced the open; keep the first handle so
	// per-site serialization holds.
	if existing, ok := m.handles[cfg.ID]; ok && existing.localPath == cfg.LocalPath {
		m.mu.Unlock()
		return existing, false, nil
	}
	m.handles[cfg.ID] = h
	m.mu.Unlock()
	return h, created, nil
}

// basicAuth derives http credentials from the opaque site credential:
// "user:token" splits into both parts, a bare token authenticates as the
// user "git". Filesystem remotes get no auth.
func basicAuth(cfg *siteconfig.SiteConfig) *gogithttp.BasicAuth {
	if cfg.Credential == "" || !isRemoteURL(cfg.RepoURL) {
		return nil
	}
	user, token := "git", cfg.Credential
	if i := strings.IndexByte(cfg.Credential, ':'); i >= 0 {
		user, token = cfg.Credential[:i], cfg.Credential[i+1:]
	}
	return &gogithttp.BasicAuth{Username: user, Password: token}
}
