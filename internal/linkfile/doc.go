// Package linkfile parses the two line-oriented inputs the relay serves: the
// topology file (one link per line, four space-separated fields) and the stat
// file (one counter record per line, four dash-separated KEY:VALUE fields).
//
// Malformed lines are routine in both files, since the stat file is rewritten
// in place by an external collector. They are dropped, never reported.
// Files are re-read from scratch on every request; nothing is cached.
package linkfile
