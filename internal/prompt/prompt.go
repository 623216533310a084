// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package prompt asks the operator questions on a terminal.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pdiddy/landscape-pdf/internal/batch"
)

// NoticeInvalid is printed when the copy count is not a number.
const NoticeInvalid = "invalid number, using default: 1"

// NoticeOutOfRange is printed when the copy count is outside 1..20.
var NoticeOutOfRange = fmt.Sprintf("number of copies must be between %d and %d, using default: %d",
	batch.MinCopies, batch.MaxCopies, batch.DefaultCopies)

// ParseCopies turns operator input into a copy count. Blank input means the
// default. Anything unusable also yields the default together with a notice
// to show the operator.
func ParseCopies(text string) (int, string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return batch.DefaultCopies, ""
	}
	n, err := strconv.Atoi(text)
	if err != nil {
		return batch.DefaultCopies, NoticeInvalid
	}
	if n < batch.MinCopies || n > batch.MaxCopies {
		return batch.DefaultCopies, NoticeOutOfRange
	}
	return n, ""
}

// Prompter reads answers line by line from in and writes questions to out.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

// New returns a Prompter.
func New(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

// readLine returns the next line without its terminator. A final line
// without a newline is returned as is; io.EOF is returned only when
// nothing was read.
func (p *Prompter) readLine() (string, error) {
	line, err := p.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// Copies asks how many copies to generate.
func (p *Prompter) Copies() int {
	fmt.Fprintf(p.out, "\nNumber of PDF copies (%d-%d, default %d): ",
		batch.MinCopies, batch.MaxCopies, batch.DefaultCopies)
	line, err := p.readLine()
	if err != nil {
		fmt.Fprintln(p.out)
		return batch.DefaultCopies
	}
	n, notice := ParseCopies(line)
	if notice != "" {
		fmt.Fprintln(p.out, notice)
	}
	return n
}

// Confirm asks a yes/no question. Only "y" or "yes" (any case) count as yes.
// End of input counts as no.
func (p *Prompter) Confirm(question string) bool {
	fmt.Fprintf(p.out, "%s (y/N): ", question)
	line, err := p.readLine()
	if err != nil {
		fmt.Fprintln(p.out)
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
