package extract

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

// OverwritePolicy decides what happens when a destination already exists.
// It applies to copied files, converted files and cover art alike.
type OverwritePolicy int

const (
	SkipExisting OverwritePolicy = iota
	Overwrite
	PromptEachTime
)

func (p OverwritePolicy) String() string {
	switch p {
	case Overwrite:
		return "overwrite"
	case PromptEachTime:
		return "prompt"
	default:
		return "skip"
	}
}

// ErrInvalidPolicy indicates an unknown overwrite policy name.
var ErrInvalidPolicy = errors.New("invalid overwrite policy")

// ParsePolicy parses "overwrite", "skip" or "prompt".
func ParsePolicy(s string) (OverwritePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "overwrite":
		return Overwrite, nil
	case "skip", "skip_existing":
		return SkipExisting, nil
	case "prompt", "":
		return PromptEachTime, nil
	default:
		return SkipExisting, fmt.Errorf("%w: %q", ErrInvalidPolicy, s)
	}
}

// Prompter asks whether an existing destination may be replaced.
type Prompter interface {
	ConfirmOverwrite(path string) (bool, error)
}

// allowWrite reports whether dest may be written under policy.
// A missing destination is always writable. A nil prompter declines.
func allowWrite(dest string, policy OverwritePolicy, prompter Prompter) (bool, error) {
	if _, err := os.Stat(dest); err != nil {
		return true, nil
	}
	switch policy {
	case Overwrite:
		return true, nil
	case PromptEachTime:
		if prompter == nil {
			return false, nil
		}
		return prompter.ConfirmOverwrite(dest)
	default:
		return false, nil
	}
}

// LinePrompter asks on out and reads answers line by line from in.
// Answering "a" or "s" applies to every later question.
type LinePrompter struct {
	mu     sync.Mutex
	in     *bufio.Reader
	out    io.Writer
	sticky *bool
}

// NewLinePrompter creates a prompter over the given streams.
func NewLinePrompter(in io.Reader, out io.Writer) *LinePrompter {
	return &LinePrompter{in: bufio.NewReader(in), out: out}
}

// ConfirmOverwrite prompts until it gets a recognized answer.
// End of input declines this and every later question.
func (p *LinePrompter) ConfirmOverwrite(path string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.sticky != nil {
		return *p.sticky, nil
	}

	for {
		fmt.Fprintf(p.out, "%s exists. Overwrite? [y]es/[N]o/[a]ll/[s]kip all: ", path)
		line, err := p.in.ReadString('\n')
		answer := strings.ToLower(strings.TrimSpace(line))
		if err != nil && answer == "" {
			if errors.Is(err, io.EOF) {
				no := false
				p.sticky = &no
				fmt.Fprintln(p.out)
				return false, nil
			}
			return false, fmt.Errorf("read answer: %w", err)
		}

		switch answer {
		case "y", "yes":
			return true, nil
		case "", "n", "no":
			return false, nil
		case "a", "all":
			yes := true
			p.sticky = &yes
			return true, nil
		case "s", "skip":
			no := false
			p.sticky = &no
			return false, nil
		}
		fmt.Fprintln(p.out, "  Please answer y, n, a or s")
	}
}
