package stream

import (
	"bufio"
	"encoding/json"
	"fmt"

	"commitsonic/internal/models"
)

const (
	EventConnected = "connected"
	EventCommits   = "commits"
)

// Frame is the envelope written on the WebSocket transport. SSE carries the
// same event name and data in its own framing.
type Frame struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

type connectedData struct {
	Repo string `json:"repo"`
}

func connectedFrame(repo string) Frame {
	return Frame{Event: EventConnected, Data: connectedData{Repo: repo}}
}

func commitsFrame(commits []models.Commit) Frame {
	return Frame{Event: EventCommits, Data: commits}
}

// writeEvent writes one SSE event and flushes it to the peer. A flush error
// means the client is gone.
func writeEvent(w *bufio.Writer, f Frame) error {
	data, err := json.Marshal(f.Data)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", f.Event, data); err != nil {
		return err
	}
	return w.Flush()
}

func writeHeartbeat(w *bufio.Writer) error {
	if _, err := w.WriteString(": ping\n\n"); err != nil {
		return err
	}
	return w.Flush()
}
