package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/standardbeagle/sarifnav/internal/resolver"
)

// stdinPrompter implements resolver.Prompter over the terminal. The operator
// can pick a ranked suggestion by number, type a path, or press enter to
// decline (which suppresses further prompts for the current log).
type stdinPrompter struct {
	in  *bufio.Reader
	out *os.File
}

func newStdinPrompter() *stdinPrompter {
	return &stdinPrompter{in: bufio.NewReader(os.Stdin), out: os.Stderr}
}

func (p *stdinPrompter) ChoosePath(ctx context.Context, loggedPath string, suggestions []string) (string, error) {
	fmt.Fprintf(p.out, "\nFile not found locally: %s\n", loggedPath)
	for i, s := range suggestions {
		fmt.Fprintf(p.out, "  [%d] %s\n", i+1, s)
	}
	fmt.Fprintf(p.out, "Enter a number, a path, or press enter to skip remaining: ")

	line, err := p.in.ReadString('\n')
	if err != nil {
		return "", resolver.ErrDeclined
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return "", resolver.ErrDeclined
	}

	if n, err := strconv.Atoi(line); err == nil && n >= 1 && n <= len(suggestions) {
		return suggestions[n-1], nil
	}

	if _, err := os.Stat(line); err != nil {
		fmt.Fprintf(p.out, "path does not exist: %s\n", line)
		return "", resolver.ErrDeclined
	}
	return line, nil
}
