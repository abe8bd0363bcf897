package panel

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recera/graphpanel/pkg/components/panzoom"
)

func TestViewportSlot_ReleaseBeforeAttach(t *testing.T) {
	vps := &viewports{}
	slot := NewViewportSlot(vps.factory)
	assert.False(t, slot.Release())
	assert.False(t, slot.Refit())

	first, err := slot.Attach("a")
	require.NoError(t, err)
	second, err := slot.Attach("b")
	require.NoError(t, err)

	assert.True(t, first.(*fakeViewport).destroyed)
	assert.False(t, second.(*fakeViewport).destroyed)
	assert.Equal(t, 1, vps.max)
	assert.Same(t, second, slot.Active())

	assert.True(t, slot.Refit())
	assert.True(t, slot.Release())
	assert.Nil(t, slot.Active())
	assert.Zero(t, vps.live)
}

func TestViewportSlot_FactoryError(t *testing.T) {
	vps := &viewports{}
	calls := 0
	slot := NewViewportSlot(func(t Target) (panzoom.API, error) {
		calls++
		if calls == 2 {
			return nil, errors.New("no svg element")
		}
		return vps.factory(t)
	})

	_, err := slot.Attach("a")
	require.NoError(t, err)
	_, err = slot.Attach("b")
	assert.Error(t, err)
	assert.Nil(t, slot.Active())
	assert.Zero(t, vps.live)
}

func TestRegionHeight(t *testing.T) {
	tests := []struct {
		name string
		m    Metrics
		want float64
	}{
		{"empty page", Metrics{ViewportHeight: 600}, 600},
		{
			"header footer and padding",
			Metrics{
				ViewportHeight: 800,
				Header:         Box{Height: 60, MarginTop: 8, MarginBottom: 8},
				Footer:         Box{Height: 40, MarginBottom: 4},
				PaddingTop:     16,
				PaddingBottom:  16,
			},
			648,
		},
		{"floored at zero", Metrics{ViewportHeight: 100, Header: Box{Height: 200}}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RegionHeight(tt.m))
		})
	}
}

func TestBackoff(t *testing.T) {
	b := Backoff{Initial: 100 * time.Millisecond, Ceiling: time.Second}
	assert.Equal(t, []time.Duration{
		100 * time.Millisecond,
		200 * time.Millisecond,
		400 * time.Millisecond,
		800 * time.Millisecond,
	}, b.Delays())

	next, ok := b.Next(800 * time.Millisecond)
	assert.Equal(t, 1600*time.Millisecond, next)
	assert.False(t, ok)

	assert.Equal(t, DefaultBackoff, Backoff{}.withDefaults())
	assert.Empty(t, Backoff{Initial: time.Second, Ceiling: time.Second}.Delays())
}

func TestAwait(t *testing.T) {
	b := Backoff{Initial: time.Millisecond, Ceiling: 8 * time.Millisecond}

	t.Run("result", func(t *testing.T) {
		n := 0
		body, err := Await(context.Background(), b, func(context.Context) ([]byte, error) {
			n++
			if n == 2 {
				return []byte("%PDF-1.4"), nil
			}
			return nil, nil
		})
		require.NoError(t, err)
		assert.Equal(t, "%PDF-1.4", string(body))
	})

	t.Run("timeout", func(t *testing.T) {
		n := 0
		_, err := Await(context.Background(), b, func(context.Context) ([]byte, error) {
			n++
			return nil, nil
		})
		assert.ErrorIs(t, err, ErrTimedOut)
		assert.Equal(t, 3, n)
	})

	t.Run("error", func(t *testing.T) {
		boom := errors.New("boom")
		_, err := Await(context.Background(), b, func(context.Context) ([]byte, error) {
			return nil, boom
		})
		assert.ErrorIs(t, err, boom)
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := Await(ctx, Backoff{Initial: time.Hour, Ceiling: 2 * time.Hour}, func(context.Context) ([]byte, error) {
			t.Fatal("fetch after cancel")
			return nil, nil
		})
		assert.ErrorIs(t, err, context.Canceled)
	})
}
