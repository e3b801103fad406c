// Package server is the local HTTP API behind "automv serve".
//
// It is a thin gin router over the settings and project stores, the patcher,
// and the pipeline orchestrator. Pipeline runs are streamed as server-sent
// events; a client that disconnects cancels its run.
package server
