package main

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/nikbrunner/bmsync/internal/config"
	"github.com/nikbrunner/bmsync/internal/gitee"
	"github.com/nikbrunner/bmsync/internal/host"
	"github.com/nikbrunner/bmsync/internal/model"
	"github.com/nikbrunner/bmsync/internal/storage"
	bmsync "github.com/nikbrunner/bmsync/internal/sync"
)

// appFlags are the persistent flags shared by every command.
type appFlags struct {
	configFile string
	logLevel   string
	verbose    bool
	dryRun     bool
}

// App carries everything a command needs. It is populated once by the root
// command's PersistentPreRunE.
type App struct {
	flags appFlags

	Config   *config.Config
	Log      *logrus.Logger
	KV       storage.Settings
	Snapshot storage.Storage
	Host     bmsync.HostBookmarkStore
	Remote   *gitee.Client // nil when no remote is configured
	Syncer   *bmsync.Syncer

	// Hooks for tests.
	OpenURL  func(string) error
	CopyText func(string) error

	closeStorage func() error
}

func (a *App) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.flags.configFile)
	if err != nil {
		return err
	}
	a.Config = cfg

	a.Log = logrus.New()
	a.Log.SetOutput(cmd.ErrOrStderr())
	a.Log.SetLevel(cfg.Level())
	if a.flags.logLevel != "" {
		level, err := logrus.ParseLevel(a.flags.logLevel)
		if err != nil {
			return fmt.Errorf("invalid --log-level: %w", err)
		}
		a.Log.SetLevel(level)
	}
	if a.flags.verbose {
		a.Log.SetLevel(logrus.DebugLevel)
	}
	if cfg.File != "" {
		a.Log.WithField("file", cfg.File).Debug("loaded config")
	}

	snapshot, kv, closeStorage, err := storage.Open(cfg.Storage, cfg.DataDir)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	a.Snapshot, a.KV, a.closeStorage = snapshot, kv, closeStorage

	ctx := cmd.Context()
	if err := a.openHost(ctx); err != nil {
		return err
	}
	if err := a.openRemote(ctx); err != nil {
		return err
	}

	opts := bmsync.Options{Host: a.Host, Snapshot: a.Snapshot, Logger: a.Log}
	if a.Remote != nil {
		opts.Remote = a.Remote
	}
	if a.flags.dryRun {
		opts.Snapshot = nil
		if a.Remote != nil {
			opts.Remote = &dryRunRemote{real: a.Remote, log: a.Log}
		}
	}
	a.Syncer, err = bmsync.NewSyncer(opts)
	return err
}

func (a *App) openHost(ctx context.Context) error {
	if a.Config.BookmarksFile == "" {
		return errors.New("no browser bookmarks file configured (set bookmarks_file)")
	}
	chrome := host.NewChromeStore(a.Config.BookmarksFile, a.Log)
	if !a.flags.dryRun {
		a.Host = chrome
		return nil
	}

	tree, err := chrome.GetTree(ctx)
	if err != nil {
		return fmt.Errorf("read browser bookmarks: %w", err)
	}
	mem, err := host.NewMemoryStoreFrom(tree)
	if err != nil {
		return err
	}
	a.Log.Info("dry run: browser bookmarks will not be modified")
	a.Host = mem
	return nil
}

func (a *App) openRemote(ctx context.Context) error {
	settings, err := bmsync.ResolveSettings(ctx, a.KV, a.Config.Gitee.Settings())
	if err != nil {
		return err
	}
	if err := settings.Validate(); err != nil {
		a.Log.WithError(err).Debug("remote disabled")
		return nil
	}
	client, err := gitee.NewClient(settings,
		gitee.WithBaseURL(a.Config.Gitee.BaseURL),
		gitee.WithLogger(a.Log),
	)
	if err != nil {
		return err
	}
	a.Remote = client
	return nil
}

// requireRemote returns the remote client or ErrRemoteNotConfigured.
func (a *App) requireRemote() (*gitee.Client, error) {
	if a.Remote == nil {
		return nil, bmsync.ErrRemoteNotConfigured
	}
	return a.Remote, nil
}

// load reads the managed tree and logs where it came from.
func (a *App) load(ctx context.Context) error {
	source, err := a.Syncer.Load(ctx)
	if err != nil {
		return err
	}
	a.Log.WithField("source", source).Debug("managed tree loaded")
	return nil
}

// Close releases the storage handle.
func (a *App) Close() error {
	if a.closeStorage == nil {
		return nil
	}
	err := a.closeStorage()
	a.closeStorage = nil
	return err
}

// dryRunRemote reads from the real remote but keeps writes in memory.
type dryRunRemote struct {
	real bmsync.RemoteFileStore
	log  logrus.FieldLogger
	file *gitee.RemoteFile
}

func (d *dryRunRemote) Fetch(ctx context.Context) (gitee.RemoteFile, error) {
	if d.file != nil {
		return gitee.RemoteFile{Content: model.CloneTree(d.file.Content), Revision: d.file.Revision}, nil
	}
	return d.real.Fetch(ctx)
}

func (d *dryRunRemote) Put(_ context.Context, content []model.Node, revision string) error {
	if d.file != nil && d.file.Revision != revision {
		return gitee.ErrConflict
	}
	d.file = &gitee.RemoteFile{Content: model.CloneTree(content), Revision: revision}
	d.log.WithField("revision", revision).Info("dry run: remote write skipped")
	return nil
}

// openURL opens a URL in the default browser.
func openURL(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return fmt.Errorf("cannot open URLs on %s", runtime.GOOS)
	}
	return cmd.Start()
}
