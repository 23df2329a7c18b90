package cli

import (
	"context"
	"io"
	"path/filepath"
	"sync"
	"time"

	"github.com/bep/debounce"
	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/urfave/cli/v2"

	"github.com/nrfboot/boardcfg/board"
	"github.com/nrfboot/boardcfg/boards"
	"github.com/nrfboot/boardcfg/config"
	"github.com/nrfboot/boardcfg/logging"
	"github.com/nrfboot/boardcfg/registry"
)

// watchSettle is how long validate --watch waits for a burst of writes to end.
const watchSettle = 200 * time.Millisecond

// ValidateAction is the corresponding Action for 'validate'.
func ValidateAction(c *cli.Context) error {
	logger := cliLogger()
	files := c.Args().Slice()
	dir := c.String(boardsDirFlag)
	run := func() error {
		return validateBoards(c.Context, c.App.Writer, logger, files, dir)
	}

	err := run()
	if !c.Bool(watchFlag) {
		return err
	}
	if err != nil {
		errorf(c.App.ErrWriter, "%v", err)
	}
	paths := files
	if len(paths) == 0 {
		if dir == "" {
			return errors.New("--watch needs board files or --boards-dir")
		}
		paths = []string{dir}
	}
	return watch(c.Context, logger, paths, func() {
		if err := run(); err != nil {
			errorf(c.App.ErrWriter, "%v", err)
		}
	})
}

// validateBoards loads the named files, or the built-in boards plus dir when no files
// are named, and registers them into one registry so cross-board invariants are checked
// too. Every violation is printed; the result fails if any board was rejected.
func validateBoards(ctx context.Context, w io.Writer, logger logging.Logger, files []string, dir string) error {
	var (
		descs  []board.Descriptor
		failed int
	)
	if len(files) == 0 {
		descs = boards.All()
		if dir != "" {
			loaded, err := config.ReadDir(ctx, dir, logger)
			if err != nil {
				failed++
				errorf(w, "%v", err)
			}
			descs = append(descs, loaded...)
		}
	}
	for _, path := range files {
		d, err := config.ReadDescriptor(ctx, path, logger)
		if err != nil {
			failed++
			errorf(w, "%v", err)
			continue
		}
		descs = append(descs, d)
	}

	builder := registry.NewBuilder(logger.Sublogger("registry"))
	for _, d := range descs {
		sharing := builder.SharingUSBIdentity(d)
		err := builder.Register(d)
		if err == nil {
			okf(w, "%s", d.Name)
			for _, other := range sharing {
				warningf(w, "%s shares USB %04X:%04X with %s", d.Name, d.USB.VID, d.USB.UF2PID, other)
			}
			continue
		}
		failed++
		violations := board.Violations(err)
		if len(violations) == 0 {
			errorf(w, "%v", err)
			continue
		}
		errorf(w, "%s: %d violation(s)", d.Name, len(violations))
		for _, v := range violations {
			printf(w, "  %s: %s: %s", v.Field, v.Kind, v.Detail)
		}
	}
	if failed > 0 {
		return errors.Errorf("%d board(s) failed validation", failed)
	}
	return nil
}

// watch calls run every time one of paths, or a board file in one of them when it is a
// directory, is written. Runs never overlap, and none starts after watch returns. It
// returns when ctx is done.
func watch(ctx context.Context, logger logging.Logger, paths []string, run func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() {
		if err := watcher.Close(); err != nil {
			logger.Debugw("closing watcher", "error", err)
		}
	}()

	absPaths := lo.Map(paths, func(p string, _ int) string {
		abs, err := filepath.Abs(p)
		if err != nil {
			return filepath.Clean(p)
		}
		return abs
	})
	watched := lo.SliceToMap(absPaths, func(p string) (string, struct{}) { return p, struct{}{} })
	// Editors replace files on save, so watch the parent directories.
	dirs := lo.Uniq(lo.Map(absPaths, func(p string, _ int) string {
		if isDir(p) {
			return p
		}
		return filepath.Dir(p)
	}))
	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return errors.Wrapf(err, "cannot watch %q", dir)
		}
	}
	logger.Infow("watching board files", "paths", absPaths)

	relevant := func(name string) bool {
		if _, ok := watched[name]; ok {
			return true
		}
		_, ok := watched[filepath.Dir(name)]
		return ok && config.IsBoardFile(name)
	}

	var (
		runMu   sync.Mutex
		stopped bool
	)
	settled := debounce.New(watchSettle)
	defer func() {
		settled(func() {})
		runMu.Lock()
		stopped = true
		runMu.Unlock()
	}()
	guarded := func() {
		runMu.Lock()
		defer runMu.Unlock()
		if stopped {
			return
		}
		run()
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !(event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename)) {
				continue
			}
			if !relevant(event.Name) {
				continue
			}
			logger.Debugw("board file changed", "path", event.Name, "op", event.Op.String())
			settled(guarded)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warnw("watch error", "error", err)
		}
	}
}
