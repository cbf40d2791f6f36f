// Package audit implements the session audit log for the link relay.
//
// Every subscriber session leaves an append-only trail of JSON lines: when it
// opened, when it started streaming, and how it ended, with frame and byte
// counts. The file is size-rotated.
package audit
