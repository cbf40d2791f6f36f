package linkfile

import (
	"io"
	"strings"
)

// suppressMarker marks internal/administrative links in the topology file.
const suppressMarker = "stat"

// Link is one entry of the topology file.
type Link struct {
	ID         string `json:"id"`
	SourceName string `json:"source"`
	Address    string `json:"address"`
	DestName   string `json:"dest"`
}

// DisplayName renders the link the way subscribers show it.
func (l Link) DisplayName() string {
	return l.SourceName + "->" + l.DestName
}

// ParseTopology reads links in file order.
//
// Each line is split on single spaces and must yield exactly four fields:
// id, source, address, dest. The address is kept but never sent to
// subscribers. Lines whose display name contains "stat" are suppressed.
func ParseTopology(r io.Reader) ([]Link, error) {
	links := make([]Link, 0)
	err := eachLine(r, func(line string) {
		if link, ok := parseTopologyLine(line); ok {
			links = append(links, link)
		}
	})
	if err != nil {
		return nil, err
	}
	return links, nil
}

func parseTopologyLine(line string) (Link, bool) {
	fields := strings.Split(line, " ")
	if len(fields) != 4 {
		return Link{}, false
	}

	link := Link{
		ID:         fields[0],
		SourceName: fields[1],
		Address:    fields[2],
		DestName:   trimRightSpace(fields[3]),
	}
	if strings.Contains(link.DisplayName(), suppressMarker) {
		return Link{}, false
	}
	return link, true
}
