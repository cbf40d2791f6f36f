package linkfile

import (
	"bufio"
	"io"
	"strings"
	"unicode"
)

// eachLine calls fn for every line in r, terminator included. A final line
// without a terminator is still delivered.
func eachLine(r io.Reader, fn func(line string)) error {
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if line != "" {
			fn(line)
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func trimRightSpace(s string) string {
	return strings.TrimRightFunc(s, unicode.IsSpace)
}
