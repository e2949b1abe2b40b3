// Package webdav lists and fetches remote log files over WebDAV.
//
// List issues a PROPFIND against the logs directory and returns every file
// with its last-modified time; sub-directories are dropped. Fetch performs a
// GET with optional "bytes=<offset>-" range semantics and surfaces HTTP 416 as
// ErrRangeNotSatisfiable so callers can tell "nothing new" apart from a
// transport failure.
package webdav
