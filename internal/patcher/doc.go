// Package patcher adapts a checked-out AutoMV tree to the BytePlus Ark
// provider.
//
// Patches are plain descriptors: a target file, a marker whose presence means
// the file was already adapted, and an ordered list of literal or regular
// expression edits. Apply never aborts a batch; every file gets a Result with
// an outcome and a warning per anchor it could not find. Re-running is safe
// because the edits themselves plant the marker.
package patcher
