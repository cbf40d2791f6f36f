// Package wire encodes topology and counter records into the flat text frames
// subscribers consume.
//
//	topology: name:<id>:<source>-><dest>;  repeated
//	snapshot: id:<id>:<bytesOut>:<bytesIn>;  repeated
//
// Entries are concatenated with no separator beyond each trailing ';'. An
// empty record list encodes to the empty string.
package wire

import (
	"strings"

	"github.com/ndnmap/linkrelay/internal/linkfile"
)

// EncodeTopology renders links as a topology frame.
func EncodeTopology(links []linkfile.Link) string {
	var b strings.Builder
	for _, link := range links {
		b.WriteString("name:")
		b.WriteString(link.ID)
		b.WriteByte(':')
		b.WriteString(link.DisplayName())
		b.WriteByte(';')
	}
	return b.String()
}

// EncodeSnapshot renders counter records as a snapshot frame.
func EncodeSnapshot(records []linkfile.StatRecord) string {
	var b strings.Builder
	for _, rec := range records {
		b.WriteString("id:")
		b.WriteString(rec.LinkID)
		b.WriteByte(':')
		b.WriteString(rec.BytesOut)
		b.WriteByte(':')
		b.WriteString(rec.BytesIn)
		b.WriteByte(';')
	}
	return b.String()
}
