// Package notifications tells the user how a pipeline run ended.
//
// The default implementation publishes to an ntfy topic from config.toml and
// degrades to a no-op when no topic is configured. Runs take hours, so a
// phone alert is the usual way to learn that a video is ready.
package notifications
