package logging

import (
	"bufio"
	"io"
)

// scanLines calls fn for every line read from r until EOF. Lines longer than
// the scanner buffer are split rather than dropped.
func scanLines(r io.ReadCloser, fn func(string)) {
	defer r.Close()
	reader := bufio.NewReaderSize(r, 64*1024)
	for {
		line, isPrefix, err := reader.ReadLine()
		if len(line) > 0 || (err == nil && !isPrefix) {
			fn(string(line))
		}
		if err != nil {
			return
		}
	}
}
