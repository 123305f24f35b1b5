package session

import (
	"context"
	"testing"
	"time"

	"github.com/benediktms/chesstty/pkg/rules"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryCreateGetClose(t *testing.T) {
	reg := NewRegistry(rules.NewDefault())
	ctx := context.Background()

	h, err := reg.Create(ctx, GameMode{Kind: HumanVsHuman})
	require.NoError(t, err)
	assert.NotEmpty(t, h.ID())

	got, ok := reg.Get(h.ID())
	require.True(t, ok)
	assert.Same(t, h, got)

	require.NoError(t, reg.Close(ctx, h.ID()))
	_, ok = reg.Get(h.ID())
	assert.False(t, ok)
}

func TestRegistryGetUnknownSession(t *testing.T) {
	reg := NewRegistry(rules.NewDefault())
	_, ok := reg.Get("nope")
	assert.False(t, ok)
}

func TestRegistrySuspendResume(t *testing.T) {
	reg := NewRegistry(rules.NewDefault())
	ctx := context.Background()

	h, err := reg.Create(ctx, GameMode{Kind: HumanVsHuman})
	require.NoError(t, err)
	t.Cleanup(func() { _ = reg.Close(context.Background(), h.ID()) })

	snap, err := reg.Suspend(ctx, h.ID())
	require.NoError(t, err)
	assert.Equal(t, Paused, snap.Phase)

	snap, err = reg.Resume(ctx, h.ID())
	require.NoError(t, err)
	assert.Equal(t, Playing, snap.Phase)
}

func TestRegistryOnFinishFiresOnceAndDeregisters(t *testing.T) {
	reg := NewRegistry(rules.NewDefault())
	ctx := context.Background()

	h, err := reg.Create(ctx, GameMode{Kind: HumanVsHuman})
	require.NoError(t, err)

	finished := make(chan string, 1)
	reg.OnFinish(func(id string, snap SessionSnapshot) {
		finished <- id
	})

	_, err = h.SetTimer(ctx, 100, 100000)
	require.NoError(t, err)

	select {
	case id := <-finished:
		assert.Equal(t, h.ID(), id)
	case <-time.After(2 * time.Second):
		t.Fatal("expected the finish callback to fire once white's clock expired")
	}

	require.Eventually(t, func() bool {
		_, ok := reg.Get(h.ID())
		return !ok
	}, time.Second, 10*time.Millisecond)
}
