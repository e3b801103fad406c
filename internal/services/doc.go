// Package services defines shared utilities consumed by the pipeline,
// patcher, and store packages.
//
// Key responsibilities:
//   - Context helpers that stamp run identifiers, stage names, and project
//     names for logging.
//   - Structured error markers plus the Wrap helper so callers can classify
//     failures (validation vs configuration vs external tool) with errors.Is.
//
// Use these helpers when wiring new components so error handling and
// observability stay uniform.
package services
