// Package config loads and stores the tapnode agent configuration.
//
// Configuration lives in a single YAML file. When the file is absent
// the agent runs on defaults; when it is unreadable or carries an
// unsupported schema version, loading fails and the caller decides
// whether to fall back to defaults (the boot sequence recreates the
// file in that case, mirroring how the device firmware erases and
// re-initializes a corrupt settings partition).
//
// Saves are atomic: the file is written to a temporary sibling and
// renamed into place, so a crash mid-write never corrupts the store.
//
// # File Location
//
// The file lives in the platform configuration directory:
//   - Linux: $XDG_CONFIG_HOME/tapnode or $HOME/.config/tapnode
//   - macOS: $HOME/.config/tapnode
//   - Windows: %LOCALAPPDATA%\tapnode
//
// An explicit path always wins over the platform default.
package config
