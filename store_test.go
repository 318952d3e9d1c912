package parley

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_LoadMissing(t *testing.T) {
	s := NewMemoryStore()

	cp, ok, err := s.Load(context.Background(), "nope")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, cp)
}

func TestMemoryStore_SaveLoad(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	cp := newCheckpoint("thread-1", time.Now())
	cp.State = StateListen
	cp.append(Message{Role: MessageSystem, Content: "instructions"})
	cp.append(Message{Role: MessageAgent, Content: "Hello!"})
	cp.Values["dish"] = &FieldValue{Base: "Steak", Context: "c", Quote: "q"}
	require.NoError(t, s.Save(ctx, cp))

	loaded, ok, err := s.Load(ctx, "thread-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, StateListen, loaded.State)
	assert.Len(t, loaded.Messages, 2)
	assert.Equal(t, "Steak", loaded.Values["dish"].Base)
}

func TestMemoryStore_CloneIsolation(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	cp := newCheckpoint("thread-1", time.Now())
	cp.append(Message{Role: MessageAgent, Content: "original"})
	require.NoError(t, s.Save(ctx, cp))

	// Mutating the saved checkpoint afterwards does not reach the store.
	cp.Messages[0].Content = "changed"
	loaded, _, err := s.Load(ctx, "thread-1")
	require.NoError(t, err)
	assert.Equal(t, "original", loaded.Messages[0].Content)

	// Mutating a loaded checkpoint does not reach the store either.
	loaded.Messages[0].Content = "changed"
	again, _, err := s.Load(ctx, "thread-1")
	require.NoError(t, err)
	assert.Equal(t, "original", again.Messages[0].Content)
}

func TestMemoryStore_SaveOverwrites(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	cp := newCheckpoint("thread-1", time.Now())
	require.NoError(t, s.Save(ctx, cp))

	cp.State = StateTeardown
	require.NoError(t, s.Save(ctx, cp))

	loaded, ok, err := s.Load(ctx, "thread-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, StateTeardown, loaded.State)
	assert.Equal(t, 1, s.Len())
}

func TestMemoryStore_Delete(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Save(ctx, newCheckpoint("thread-1", time.Now())))
	require.NoError(t, s.Save(ctx, newCheckpoint("thread-2", time.Now())))
	assert.Equal(t, 2, s.Len())

	require.NoError(t, s.Delete(ctx, "thread-1"))
	assert.Equal(t, 1, s.Len())
	_, ok, err := s.Load(ctx, "thread-1")
	require.NoError(t, err)
	assert.False(t, ok)

	// Deleting an unknown thread is not an error.
	require.NoError(t, s.Delete(ctx, "thread-1"))
}
