// Package configguard scopes the one edit automv makes to AutoMV's config.py
// during a run: pointing music_name at the active project.
//
// The original bytes are captured, parked in a sibling backup file, and
// written back when the scope closes, whether the body returns, fails, or
// panics. A gofrs/flock advisory lock keeps two runs from interleaving their
// edits, and a backup found on entry is treated as a crashed run and restored
// before anything else happens.
package configguard
