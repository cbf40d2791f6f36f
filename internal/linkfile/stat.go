package linkfile

import (
	"io"
	"strings"
)

// Keys recognized in a stat line. The collector also writes a timestamp
// field (TM) which the relay does not forward.
const (
	keyLinkID   = "LI"
	keyBytesOut = "TX"
	keyBytesIn  = "RX"
)

// StatRecord is one counter line of the stat file. Counters stay as the
// decimal text the collector wrote; LinkID is not checked against the topology.
type StatRecord struct {
	LinkID   string `json:"id"`
	BytesOut string `json:"tx"`
	BytesIn  string `json:"rx"`
}

// ParseStats reads counter records in file order.
//
// A line must split on '-' into exactly four fields, each of which must split
// on ':' into exactly a key and a value, and LI, TX and RX must all be present.
// Anything else, including a line cut short by a concurrent rewrite, is skipped.
func ParseStats(r io.Reader) ([]StatRecord, error) {
	records := make([]StatRecord, 0)
	err := eachLine(r, func(line string) {
		if rec, ok := parseStatLine(line); ok {
			records = append(records, rec)
		}
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

func parseStatLine(line string) (StatRecord, bool) {
	fields := strings.Split(line, "-")
	if len(fields) != 4 {
		return StatRecord{}, false
	}

	var rec StatRecord
	var haveID, haveOut, haveIn bool
	for _, field := range fields {
		kv := strings.Split(field, ":")
		if len(kv) != 2 {
			return StatRecord{}, false
		}
		switch kv[0] {
		case keyLinkID:
			rec.LinkID, haveID = kv[1], true
		case keyBytesOut:
			rec.BytesOut, haveOut = kv[1], true
		case keyBytesIn:
			rec.BytesIn, haveIn = trimRightSpace(kv[1]), true
		}
	}
	if !haveID || !haveOut || !haveIn {
		return StatRecord{}, false
	}
	return rec, true
}
