package engineproc

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEngineScript is a minimal UCI engine good enough to drive Adapter: it
// answers the handshake, acks isready, and replies to every "go" with a
// fixed bestmove, ignoring setoption/position lines entirely.
const fakeEngineScript = `
while IFS= read -r line; do
  case "$line" in
    uci) echo uciok ;;
    isready) echo readyok ;;
    go*) echo "bestmove e2e4" ;;
    quit) exit 0 ;;
  esac
done
`

func spawnFakeEngine(t *testing.T) (*Adapter, <-chan Event) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)

	a, events, err := Spawn(ctx, "/bin/sh", "-c", fakeEngineScript)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Quit(context.Background()) })
	return a, events
}

func drainUntil(t *testing.T, events <-chan Event, kind EventKind) Event {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				t.Fatalf("event channel closed before seeing %v", kind)
			}
			if ev.Kind == kind {
				return ev
			}
		case <-deadline:
			t.Fatalf("timed out waiting for event kind %v", kind)
		}
	}
}

func TestSpawnPerformsHandshake(t *testing.T) {
	a, _ := spawnFakeEngine(t)
	assert.NotNil(t, a)
}

func TestGoReturnsBestMoveEvent(t *testing.T) {
	a, events := spawnFakeEngine(t)
	ctx := context.Background()

	require.NoError(t, a.SetPosition(ctx, "startpos", nil))
	require.NoError(t, a.Go(ctx, GoParams{MoveTimeMillis: 100}))

	ev := drainUntil(t, events, EventBestMove)
	assert.Equal(t, "e2e4", ev.BestMove)
}

func TestStopWithNoActiveSearchIsANoOp(t *testing.T) {
	a, _ := spawnFakeEngine(t)
	assert.NoError(t, a.Stop(context.Background()))
}

func TestQuitClosesDoneChannelAndIsIdempotent(t *testing.T) {
	a, events := spawnFakeEngine(t)

	require.NoError(t, a.Quit(context.Background()))
	select {
	case <-a.Closed():
	case <-time.After(time.Second):
		t.Fatal("expected Closed() to be closed after Quit")
	}

	// Raw-message events from the handshake and "quit" are still buffered;
	// drain them until the stream closes.
	deadline := time.After(time.Second)
	ok := true
	for ok {
		select {
		case _, ok = <-events:
		case <-deadline:
			t.Fatal("expected event channel to close after Quit")
		}
	}
	assert.False(t, ok, "event stream should close once the process exits")

	assert.NoError(t, a.Quit(context.Background()), "Quit must be idempotent")
}

func TestGoOnClosedAdapterReturnsErrClosed(t *testing.T) {
	a, _ := spawnFakeEngine(t)
	require.NoError(t, a.Quit(context.Background()))

	err := a.Go(context.Background(), GoParams{Infinite: true})
	assert.ErrorIs(t, err, ErrClosed)
}
