// Package tail follows the newest remote log file for each filter prefix and
// emits the entries appended since the previous poll.
//
// A Tailer owns its Offsets. The first time a stream is seen only its final
// entry is emitted and the offset is moved to the end of the file; later
// cycles fetch from the stored offset with a byte range. Offsets live in
// memory for the lifetime of the Tailer and are never persisted.
package tail
