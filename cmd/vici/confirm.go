package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/jaekwang-park/vici/internal/store"
)

// promptConfirmer asks on w and reads a y/N answer from r. Anything other
// than y or yes declines.
type promptConfirmer struct {
	r *bufio.Reader
	w io.Writer
}

func newPromptConfirmer(r io.Reader, w io.Writer) *promptConfirmer {
	return &promptConfirmer{r: bufio.NewReader(r), w: w}
}

func (c *promptConfirmer) Confirm(ctx context.Context, prompt string) (bool, error) {
	fmt.Fprintf(c.w, "%s [y/N] ", prompt)

	type answer struct {
		line string
		err  error
	}
	ch := make(chan answer, 1)
	go func() {
		line, err := c.r.ReadString('\n')
		ch <- answer{line, err}
	}()

	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case a := <-ch:
		if a.err != nil && a.err != io.EOF {
			return false, fmt.Errorf("reading answer: %w", a.err)
		}
		switch strings.ToLower(strings.TrimSpace(a.line)) {
		case "y", "yes":
			return true, nil
		default:
			return false, nil
		}
	}
}

// yesConfirmer approves without asking; used by rm --yes.
var yesConfirmer = store.ConfirmFunc(func(context.Context, string) (bool, error) {
	return true, nil
})
