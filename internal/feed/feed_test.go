package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/gsalaz98/lean-tui/internal/dashboard"
	"github.com/gsalaz98/lean-tui/internal/diag"
)

const resultFrame = `{"eType":"BacktestResult","Results":{` +
	`"Charts":{"Strategy Equity":{"Name":"Strategy Equity","Series":{` +
	`"Equity":{"Name":"Equity","Unit":"$","Values":[{"x":1,"y":100},{"x":2,"y":101}]}}}},` +
	`"Orders":{"1":{"Id":1,"Time":"2023-10-07T13:31:00Z","Type":0,"Direction":0,` +
	`"Quantity":10,"Price":429.04,"Status":3,` +
	`"Symbol":{"Value":"SPY","ID":"SPY R735QTJ8XC9X","Permtick":"SPY"}}}}}`

type captureSink struct {
	mu        sync.Mutex
	snapshots []dashboard.Snapshot
	logs      []dashboard.LogLine
}

func (s *captureSink) PostSnapshot(snap dashboard.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots = append(s.snapshots, snap)
}

func (s *captureSink) PostLog(text string, isError bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs = append(s.logs, dashboard.LogLine{Text: text, IsError: isError})
}

func TestRunDispatchesFrames(t *testing.T) {
	t.Parallel()

	input := strings.Join([]string{
		`{"eType":"Log","Message":"Launching analysis"}`,
		resultFrame,
		`{"eType":"Debug","Message":"debug detail"}`,
		`{"eType":"HandledError","Message":"handled"}`,
		`{"eType":"RuntimeError","Message":"exploded"}`,
	}, "\n")

	sink := &captureSink{}
	err := Run(context.Background(), strings.NewReader(input), sink, nil)
	require.NoError(t, err)

	require.Len(t, sink.snapshots, 1)
	snap := sink.snapshots[0]
	require.Len(t, snap.Equity, 2)
	require.Equal(t, 100.0, snap.Equity[0].Value)
	require.Len(t, snap.Orders, 1)
	require.Equal(t, "SPY", snap.Orders["1"].Symbol)
	require.Equal(t, "Buy", snap.Orders["1"].Side)

	require.Len(t, sink.logs, 4)
	require.Equal(t, dashboard.LogLine{Text: "Launching analysis"}, sink.logs[0])
	require.Equal(t, dashboard.LogLine{Text: "debug detail"}, sink.logs[1])
	require.Equal(t, dashboard.LogLine{Text: "handled", IsError: true}, sink.logs[2])
	require.Equal(t, dashboard.LogLine{Text: "exploded", IsError: true}, sink.logs[3])
}

func TestRunRecordsMalformedFramesAndContinues(t *testing.T) {
	t.Parallel()

	recorder, err := diag.NewRecorder(t.TempDir())
	require.NoError(t, err)

	input := strings.Join([]string{
		`{"eType":"Log","Message":"before"}`,
		`{"eType":"BacktestResult","Results":`,
		`{"eType":"Log","Message":"after"}`,
	}, "\n")

	sink := &captureSink{}
	require.NoError(t, Run(context.Background(), strings.NewReader(input), sink, recorder))

	require.Len(t, sink.logs, 2, "good frames on both sides of the bad one must survive")
	require.Equal(t, "before", sink.logs[0].Text)
	require.Equal(t, "after", sink.logs[1].Text)

	payload, err := os.ReadFile(recorder.PayloadPath())
	require.NoError(t, err, "offending payload must be preserved")
	require.Equal(t, `{"eType":"BacktestResult","Results":`, string(payload))

	cause, err := os.ReadFile(recorder.ErrorPath())
	require.NoError(t, err)
	require.NotEmpty(t, cause)
}

func TestRunSkipsUnknownAndBlankFrames(t *testing.T) {
	t.Parallel()

	input := strings.Join([]string{
		``,
		`{"eType":"Heartbeat"}`,
		`   `,
		`{"eType":"Log","Message":"still here"}`,
	}, "\n")

	sink := &captureSink{}
	require.NoError(t, Run(context.Background(), strings.NewReader(input), sink, nil))

	require.Empty(t, sink.snapshots)
	require.Len(t, sink.logs, 1)
	require.Equal(t, "still here", sink.logs[0].Text)
}

func TestRunHonorsContextCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sink := &captureSink{}
	err := Run(ctx, strings.NewReader(`{"eType":"Log","Message":"never"}`), sink, nil)
	require.ErrorIs(t, err, context.Canceled)
	require.Empty(t, sink.logs)
}

func TestDialStreamsUntilNormalClose(t *testing.T) {
	t.Parallel()

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"eType":"Log","Message":"from socket"}`))
		_ = conn.WriteMessage(websocket.TextMessage, []byte(resultFrame))
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	sink := &captureSink{}
	err := Dial(context.Background(), url, sink, nil)
	require.NoError(t, err, "a normal close is a clean end of feed")

	require.Len(t, sink.logs, 1)
	require.Equal(t, "from socket", sink.logs[0].Text)
	require.Len(t, sink.snapshots, 1)
}

func TestDialRejectsUnreachableFeed(t *testing.T) {
	t.Parallel()

	err := Dial(context.Background(), "ws://127.0.0.1:1/feed", &captureSink{}, nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "dial feed")
}

func TestRunnerRequiresCommand(t *testing.T) {
	t.Parallel()

	err := NewRunner(nil).Run(context.Background(), &captureSink{}, nil)
	require.Error(t, err)
}

func TestRunnerStopWithoutProcessIsNoOp(t *testing.T) {
	t.Parallel()

	require.NoError(t, NewRunner([]string{"true"}).Stop())
}

func TestRunnerStreamsProcessOutput(t *testing.T) {
	t.Parallel()

	r := NewRunner([]string{"echo", `{"eType":"Log","Message":"from engine"}`})
	sink := &captureSink{}
	require.NoError(t, r.Run(context.Background(), sink, nil))

	require.Len(t, sink.logs, 1)
	require.Equal(t, "from engine", sink.logs[0].Text)
}

func TestRunnerReportsEngineFailure(t *testing.T) {
	t.Parallel()

	r := NewRunner([]string{"false"})
	err := r.Run(context.Background(), &captureSink{}, nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "engine exited")
}
