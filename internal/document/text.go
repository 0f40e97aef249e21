package document

import (
	"bufio"
	"io"
	"strings"
)

// TextLoader handles plain text files. Each blank-line-separated paragraph
// block becomes one page.
type TextLoader struct{}

func (l *TextLoader) Load(r io.Reader, filename string) (*Document, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var pages []string
	var current strings.Builder

	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			if current.Len() > 0 {
				pages = append(pages, current.String())
				current.Reset()
			}
		} else {
			if current.Len() > 0 {
				current.WriteString("\n")
			}
			current.WriteString(line)
		}
	}
	if current.Len() > 0 {
		pages = append(pages, current.String())
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return New(pages), nil
}
