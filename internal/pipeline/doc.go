// Package pipeline runs AutoMV's two stages for one song and streams what
// they print.
//
// A Run validates its request before touching anything, copies the audio
// into the project directory, points AutoMV's config.py at the project for
// the duration of the run (see configguard), then runs stage 1 (picture
// generation) and, only if that succeeds, stage 2 from a generated driver
// program. Both stages run as child processes through an Executor whose
// merged stdout/stderr lines are appended to the run transcript. Callers
// range over Run.Snapshots to observe the transcript as it grows.
package pipeline
