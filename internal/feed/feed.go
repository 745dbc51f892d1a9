// Package feed turns the engine's message stream into dashboard events. The
// engine frames every message as a single JSON line with an eType tag; the
// feed decodes each frame, routes it, and keeps going when a frame is bad.
package feed

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/gorilla/websocket"

	"github.com/gsalaz98/lean-tui/internal/dashboard"
	"github.com/gsalaz98/lean-tui/internal/diag"
	"github.com/gsalaz98/lean-tui/internal/logging"
	"github.com/gsalaz98/lean-tui/internal/packet"
)

// Sink receives decoded feed traffic. *dashboard.Session satisfies it.
type Sink interface {
	PostSnapshot(dashboard.Snapshot)
	PostLog(text string, isError bool)
}

// envelope is the outer frame shared by every engine message.
type envelope struct {
	Type    string `json:"eType"`
	Message string `json:"Message"`
}

// Frame types the dashboard consumes.
const (
	typeBacktestResult = "BacktestResult"
	typeLog            = "Log"
	typeDebug          = "Debug"
	typeHandledError   = "HandledError"
	typeRuntimeError   = "RuntimeError"
)

// Run scans r line by line and posts every frame to sink until EOF or ctx
// cancellation. Malformed frames are recorded for diagnosis and skipped.
func Run(ctx context.Context, r io.Reader, sink Sink, recorder *diag.Recorder) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		dispatch(scanner.Bytes(), sink, recorder)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read feed: %w", err)
	}
	return nil
}

// Dial connects to a websocket feed and posts every message to sink until the
// peer closes, ctx is cancelled, or the connection fails.
func Dial(ctx context.Context, url string, sink Sink, recorder *diag.Recorder) error {
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("dial feed %s: handshake status %d: %w", url, resp.StatusCode, err)
		}
		return fmt.Errorf("dial feed %s: %w", url, err)
	}
	defer conn.Close()

	// Cancellation unblocks the pending read by tearing the connection down.
	readerDone := make(chan struct{})
	defer close(readerDone)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-readerDone:
		}
	}()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("read feed message: %w", err)
		}
		dispatch(message, sink, recorder)
	}
}

// dispatch routes one frame. Unknown and malformed frames never stop the
// feed. Nothing here may retain raw past the call; scanner buffers are reused
// between lines.
func dispatch(raw []byte, sink Sink, recorder *diag.Recorder) {
	frame := bytes.TrimSpace(raw)
	if len(frame) == 0 {
		return
	}

	var env envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		record(recorder, frame, err)
		return
	}

	switch env.Type {
	case typeBacktestResult:
		pkt, err := packet.Decode(frame)
		if err != nil {
			record(recorder, frame, err)
			return
		}
		sink.PostSnapshot(pkt.Snapshot())
	case typeLog, typeDebug:
		sink.PostLog(env.Message, false)
	case typeHandledError, typeRuntimeError:
		sink.PostLog(env.Message, true)
	default:
		logging.Warnf("skipping feed frame with unknown type %q", env.Type)
	}
}

func record(recorder *diag.Recorder, frame []byte, cause error) {
	logging.Errorf("malformed feed frame: %v", cause)
	if recorder == nil {
		return
	}
	if err := recorder.RecordDecodeFailure(frame, cause); err != nil {
		logging.Errorf("record decode failure: %v", err)
	}
}
