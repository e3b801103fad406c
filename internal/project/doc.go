// Package project exposes the results tree the external pipeline writes.
//
// Each project is a directory named by its sanitized name holding the copied
// audio, story.json (storyboard segments), label.json (character sheet),
// picture/<segment>/ keyframes, and the final mv_<name>.mp4. Loading is
// tolerant: every section degrades to a placeholder on its own.
package project
