package backend

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"strings"

	"github.com/jaekwang-park/vici/internal/model"
)

// readEvents parses a text/event-stream body. Each frame's data is a JSON
// encoded model.Event; an "event:" line overrides its type. Frames with
// undecodable data are skipped.
func readEvents(ctx context.Context, r io.Reader, out chan<- model.Event) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)

	var (
		typ  string
		data strings.Builder
	)
	flush := func() bool {
		defer func() {
			typ = ""
			data.Reset()
		}()
		if data.Len() == 0 {
			return true
		}
		var ev model.Event
		if err := json.Unmarshal([]byte(data.String()), &ev); err != nil {
			return true
		}
		if typ != "" {
			ev.Type = model.EventType(typ)
		}
		select {
		case out <- ev:
			return true
		case <-ctx.Done():
			return false
		}
	}

	for sc.Scan() {
		line := sc.Text()
		switch {
		case line == "":
			if !flush() {
				return ctx.Err()
			}
		case strings.HasPrefix(line, ":"):
			// comment / keep-alive
		case strings.HasPrefix(line, "event:"):
			typ = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			if data.Len() > 0 {
				data.WriteByte('\n')
			}
			data.WriteString(strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
		}
	}
	if err := sc.Err(); err != nil {
		return err
	}
	flush()
	return nil
}
