// Package logs reads automv.log for `automv logs` and GET /api/logs.
//
// Reads are offset based: callers keep the returned offset and ask for what
// was appended since. Only newline-terminated records are returned, so a
// record the logger is still writing is picked up whole on the next read.
package logs
