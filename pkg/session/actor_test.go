package session

import (
	"context"
	"testing"
	"time"

	"github.com/benediktms/chesstty/pkg/rules"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func spawnTest(t *testing.T) *Handle {
	t.Helper()
	ctx := context.Background()
	h := Spawn(ctx, "test-session", rules.NewDefault(), GameMode{Kind: HumanVsHuman})
	t.Cleanup(func() {
		_, _ = h.Shutdown(context.Background())
	})
	return h
}

func TestSpawnStartsPlayingAtInitialPosition(t *testing.T) {
	h := spawnTest(t)
	snap, err := h.GetSnapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Playing, snap.Phase)
	assert.Equal(t, rules.White, snap.SideToMove)
	assert.True(t, snap.Status.IsOngoing())
}

func TestMakeMoveAppliesLegalMoveAndRejectsIllegal(t *testing.T) {
	h := spawnTest(t)
	ctx := context.Background()

	mv, err := rules.ParseMove("e2e4")
	require.NoError(t, err)
	snap, err := h.MakeMove(ctx, mv)
	require.NoError(t, err)
	assert.Len(t, snap.History, 1)
	assert.Equal(t, "e4", snap.History[0].SAN)
	assert.Equal(t, rules.Black, snap.SideToMove)

	illegal, err := rules.ParseMove("e2e4")
	require.NoError(t, err)
	_, err = h.MakeMove(ctx, illegal)
	require.Error(t, err)
	var sessErr *Error
	require.ErrorAs(t, err, &sessErr)
	assert.Equal(t, IllegalMove, sessErr.Kind)
}

func TestUndoRedoRoundTrip(t *testing.T) {
	h := spawnTest(t)
	ctx := context.Background()

	mv, err := rules.ParseMove("e2e4")
	require.NoError(t, err)
	_, err = h.MakeMove(ctx, mv)
	require.NoError(t, err)

	snap, err := h.Undo(ctx)
	require.NoError(t, err)
	assert.Empty(t, snap.History)
	assert.Equal(t, rules.White, snap.SideToMove)

	_, err = h.Undo(ctx)
	require.Error(t, err)
	var sessErr *Error
	require.ErrorAs(t, err, &sessErr)
	assert.Equal(t, NothingToUndo, sessErr.Kind)

	snap, err = h.Redo(ctx)
	require.NoError(t, err)
	assert.Len(t, snap.History, 1)

	_, err = h.Redo(ctx)
	require.Error(t, err)
	require.ErrorAs(t, err, &sessErr)
	assert.Equal(t, NothingToRedo, sessErr.Kind)
}

func TestUndoInHumanVsEngineGamePopsBothPlies(t *testing.T) {
	ctx := context.Background()
	h := Spawn(ctx, "hve-session", rules.NewDefault(), GameMode{Kind: HumanVsEngine, HumanSide: rules.White})
	t.Cleanup(func() { _, _ = h.Shutdown(context.Background()) })

	mv1, _ := rules.ParseMove("e2e4")
	_, err := h.MakeMove(ctx, mv1)
	require.NoError(t, err)

	mv2, _ := rules.ParseMove("e7e5")
	_, err = h.MakeMove(ctx, mv2)
	require.NoError(t, err)

	snap, err := h.Undo(ctx)
	require.NoError(t, err)
	assert.Empty(t, snap.History, "undoing the engine's reply must also pop the human move beneath it")
	assert.Equal(t, rules.White, snap.SideToMove)
}

func TestResetInstallsFreshPositionAndClearsState(t *testing.T) {
	h := spawnTest(t)
	ctx := context.Background()

	mv, _ := rules.ParseMove("e2e4")
	_, err := h.MakeMove(ctx, mv)
	require.NoError(t, err)

	snap, err := h.Reset(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, Playing, snap.Phase)
	assert.Empty(t, snap.History)
	assert.Equal(t, rules.White, snap.SideToMove)

	_, err = h.Reset(ctx, "not a fen")
	require.Error(t, err)
	var sessErr *Error
	require.ErrorAs(t, err, &sessErr)
	assert.Equal(t, InvalidFen, sessErr.Kind)
}

func TestPauseResumeGatesMakeMove(t *testing.T) {
	h := spawnTest(t)
	ctx := context.Background()

	snap, err := h.Pause(ctx)
	require.NoError(t, err)
	assert.Equal(t, Paused, snap.Phase)

	mv, _ := rules.ParseMove("e2e4")
	_, err = h.MakeMove(ctx, mv)
	require.Error(t, err)
	var sessErr *Error
	require.ErrorAs(t, err, &sessErr)
	assert.Equal(t, InvalidPhaseTransition, sessErr.Kind)

	_, err = h.Pause(ctx)
	require.Error(t, err)
	require.ErrorAs(t, err, &sessErr)
	assert.Equal(t, InvalidPhaseTransition, sessErr.Kind)

	snap, err = h.Resume(ctx)
	require.NoError(t, err)
	assert.Equal(t, Playing, snap.Phase)
}

func TestSetTimerArmsActiveSideAndTicksFlagLoss(t *testing.T) {
	h := spawnTest(t)
	ctx := context.Background()

	snap, err := h.SetTimer(ctx, 150, 100000)
	require.NoError(t, err)
	side, ok := snap.Timer.ActiveSide.V()
	require.True(t, ok)
	assert.Equal(t, rules.White, side)

	require.Eventually(t, func() bool {
		s, err := h.GetSnapshot(ctx)
		return err == nil && s.Phase == Finished
	}, 2*time.Second, 20*time.Millisecond, "white's clock should run out and finish the game")

	final, err := h.GetSnapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, rules.BlackWins, final.Status.Result)
	assert.Zero(t, final.Timer.WhiteMs)
}

func TestUntimedGameNeverFlagsOnTick(t *testing.T) {
	h := spawnTest(t)
	ctx := context.Background()

	mv, _ := rules.ParseMove("e2e4")
	_, err := h.MakeMove(ctx, mv)
	require.NoError(t, err)

	time.Sleep(250 * time.Millisecond)
	snap, err := h.GetSnapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, Playing, snap.Phase)
	assert.True(t, snap.Status.IsOngoing())
}

func TestTimerChargesElapsedWallClockOnMoveCommit(t *testing.T) {
	h := spawnTest(t)
	ctx := context.Background()

	_, err := h.SetTimer(ctx, 100000, 100000)
	require.NoError(t, err)

	time.Sleep(120 * time.Millisecond)

	mv, err := rules.ParseMove("e2e4")
	require.NoError(t, err)
	snap, err := h.MakeMove(ctx, mv)
	require.NoError(t, err)

	// White's clock should be docked roughly the wall-clock time spent
	// thinking about the move, charged at commit time rather than on the
	// next background tick.
	assert.Less(t, snap.Timer.WhiteMs, int64(100000))
	assert.GreaterOrEqual(t, snap.Timer.WhiteMs, int64(99700))
	assert.Equal(t, int64(100000), snap.Timer.BlackMs)

	side, ok := snap.Timer.ActiveSide.V()
	require.True(t, ok)
	assert.Equal(t, rules.Black, side)
}

func TestUndoOfHumanMoveInHumanVsEngineGameWithoutEngine(t *testing.T) {
	ctx := context.Background()
	h := Spawn(ctx, "test-session-undo-engine", rules.NewDefault(), GameMode{Kind: HumanVsEngine, HumanSide: rules.White})
	t.Cleanup(func() {
		_, _ = h.Shutdown(context.Background())
	})

	mv, err := rules.ParseMove("e2e4")
	require.NoError(t, err)
	_, err = h.MakeMove(ctx, mv)
	require.NoError(t, err)

	// No engine is attached, so no search is outstanding; undoing the human's
	// own move pops just that ply and leaves the session back at a
	// human-to-move state with no moves played.
	snap, err := h.Undo(ctx)
	require.NoError(t, err)
	assert.Empty(t, snap.History)
	assert.Equal(t, rules.White, snap.SideToMove)
}

func TestGetLegalMovesFiltersByOrigin(t *testing.T) {
	h := spawnTest(t)
	ctx := context.Background()

	all, err := h.GetLegalMoves(ctx, rules.NoSquare)
	require.NoError(t, err)
	assert.Len(t, all, 20)

	e2, err := rules.ParseSquareStr("e2")
	require.NoError(t, err)
	fromE2, err := h.GetLegalMoves(ctx, e2)
	require.NoError(t, err)
	assert.Len(t, fromE2, 2)
	for _, m := range fromE2 {
		assert.Equal(t, e2, m.Move.From)
	}
}

func TestSubscribeReturnsSnapshotAndLiveEvents(t *testing.T) {
	h := spawnTest(t)
	ctx := context.Background()

	snap, events, err := h.Subscribe(ctx)
	require.NoError(t, err)
	assert.Equal(t, Playing, snap.Phase)

	mv, _ := rules.ParseMove("e2e4")
	_, err = h.MakeMove(ctx, mv)
	require.NoError(t, err)

	select {
	case ev := <-events:
		assert.Equal(t, StateChanged, ev.Kind)
		assert.Len(t, ev.Snapshot.History, 1)
	case <-time.After(time.Second):
		t.Fatal("expected a StateChanged event after MakeMove")
	}
}

func TestShutdownClosesMailboxAndEventStream(t *testing.T) {
	ctx := context.Background()
	h := Spawn(ctx, "shutdown-session", rules.NewDefault(), GameMode{Kind: HumanVsHuman})

	_, events, err := h.Subscribe(ctx)
	require.NoError(t, err)

	_, err = h.Shutdown(ctx)
	require.NoError(t, err)

	select {
	case _, ok := <-events:
		assert.False(t, ok, "event stream should close on shutdown")
	case <-time.After(time.Second):
		t.Fatal("expected event channel to close after shutdown")
	}
}
