// Package watcher reloads controller tunables when the config file
// changes on disk.
//
// It watches the file's parent directory rather than the file itself, so
// editors that replace the file via rename (vim, atomic writers) do not
// silently drop the watch. Rapid event bursts are debounced into a single
// reload.
package watcher
