// Package watch calls for a rebuild whenever source documents change.
package watch

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"

	"github.com/jcorbin/docfence/internal/site"
)

// DefaultDebounce is how long changes must settle before a rebuild.
const DefaultDebounce = 200 * time.Millisecond

// Options configure Run.
type Options struct {
	Root     string   // directory tree to watch
	Include  []string // doublestar patterns of source documents, relative to Root
	Debounce time.Duration
	Log      logrus.FieldLogger
}

// Run watches every directory under Root, calling rebuild once changes to
// included documents settle for Debounce. New directories are watched as
// they appear; hidden ones are skipped. Rebuild errors are logged, not
// returned. Run returns nil once ctx is done.
func Run(ctx context.Context, opts Options, rebuild func(context.Context) error) error {
	log := opts.Log
	if log == nil {
		discard := logrus.New()
		discard.Out = io.Discard
		log = discard
	}
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := addTree(watcher, opts.Root); err != nil {
		return err
	}
	log.WithField("root", opts.Root).Info("watching for changes")

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			trigger := false
			if event.Has(fsnotify.Create) {
				if fi, err := os.Stat(event.Name); err == nil && fi.IsDir() && !hidden(event.Name) {
					log.WithField("dir", event.Name).Debug("new directory")
					if err := addTree(watcher, event.Name); err != nil {
						log.WithError(err).Warn("failed to watch new directory")
					}
					trigger = true
				}
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
				event.Has(fsnotify.Rename) || event.Has(fsnotify.Remove) {
				if rel, err := filepath.Rel(opts.Root, event.Name); err == nil &&
					site.Match(filepath.ToSlash(rel), opts.Include) {
					log.WithFields(logrus.Fields{
						"file": rel,
						"op":   event.Op.String(),
					}).Debug("source changed")
					trigger = true
				}
			}
			if !trigger {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			fire = timer.C

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.WithError(err).Warn("watcher error")

		case <-fire:
			fire = nil
			if err := rebuild(ctx); err != nil {
				log.WithError(err).Error("rebuild failed")
			}
		}
	}
}

// addTree recursively adds root and every non-hidden directory under it.
func addTree(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(name string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if name != root && hidden(name) {
			return filepath.SkipDir
		}
		return watcher.Add(name)
	})
}

func hidden(name string) bool {
	return strings.HasPrefix(filepath.Base(name), ".")
}
