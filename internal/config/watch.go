package config

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// WatchProfile reloads the profile at path whenever it changes and passes it
// to onChange. A profile that fails to load is logged and skipped. It runs
// until ctx is cancelled.
//
// The parent directory is watched rather than the file: an atomic save
// (write a temp file, rename it over the profile) replaces the inode, and a
// watch on the old inode would never fire again.
func WatchProfile(ctx context.Context, path string, logger zerolog.Logger, onChange func(*Profile)) error {
	path = filepath.Clean(path)
	log := logger.With().Str("component", "profile-watcher").Str("path", path).Logger()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return err
	}

	log.Info().Msg("watching scoring profile")

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			// A rename onto path arrives as Create; Rename is the old name leaving
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}

			p, err := LoadProfile(path)
			if err != nil {
				log.Error().Err(err).Msg("profile reload failed, keeping previous profile")
				continue
			}

			log.Info().Str("op", event.Op.String()).Msg("scoring profile reloaded")
			onChange(p)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Error().Err(err).Msg("profile watcher error")
		}
	}
}
