package models

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEffectStackStartsDisabled(t *testing.T) {
	s := NewEffectStack()
	snap := s.Snapshot()

	for i, st := range snap {
		assert.Equal(t, ApplicationOrder[i], st.Effect)
		assert.False(t, st.Enabled)
		assert.Zero(t, st.Intensity)
	}
	assert.Empty(t, snap.Active())
}

func TestSnapshotApplicationOrder(t *testing.T) {
	s := NewEffectStack()
	snap := s.Snapshot()

	got := make([]Effect, 0, len(snap))
	for _, st := range snap {
		got = append(got, st.Effect)
	}
	assert.Equal(t, []Effect{Mosaic, Blur, Grayscale, EdgeDetect, Invert}, got)
}

func TestSetClampsIntensity(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{"below", -0.5, 0},
		{"zero", 0, 0},
		{"inside", 0.42, 0.42},
		{"one", 1, 1},
		{"above", 3.7, 1},
		{"nan", math.NaN(), 0},
		{"inf", math.Inf(1), 1},
		{"neg inf", math.Inf(-1), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewEffectStack()
			require.NoError(t, s.Set(Blur, true, tt.in))

			st := s.Snapshot().Get(Blur)
			assert.True(t, st.Enabled)
			assert.Equal(t, tt.want, st.Intensity)
		})
	}
}

func TestSetInvalidEffect(t *testing.T) {
	s := NewEffectStack()
	before := s.Snapshot()
	v := s.Version()

	for _, e := range []Effect{-1, effectCount, 99} {
		err := s.Set(e, true, 1)
		assert.ErrorIs(t, err, ErrInvalidEffect)
	}

	assert.Equal(t, before, s.Snapshot())
	assert.Equal(t, v, s.Version())
}

func TestSnapshotIsACopy(t *testing.T) {
	s := NewEffectStack()
	require.NoError(t, s.Set(Invert, true, 1))
	snap := s.Snapshot()

	require.NoError(t, s.Set(Invert, false, 0))
	assert.True(t, snap.Get(Invert).Enabled)
	assert.False(t, s.Snapshot().Get(Invert).Enabled)
}

func TestVersionTracksChanges(t *testing.T) {
	s := NewEffectStack()
	v0 := s.Version()

	require.NoError(t, s.Set(Mosaic, true, 0.5))
	v1 := s.Version()
	assert.Greater(t, v1, v0)

	require.NoError(t, s.Set(Mosaic, true, 0.5))
	assert.Equal(t, v1, s.Version(), "identical write must not bump the version")

	require.NoError(t, s.SetIntensity(Mosaic, 0.9))
	assert.Greater(t, s.Version(), v1)
	assert.True(t, s.Snapshot().Get(Mosaic).Enabled)
}

func TestSelectShortcut(t *testing.T) {
	s := NewEffectStack()
	require.NoError(t, s.Set(Blur, true, 0.3))

	require.NoError(t, s.Select(Grayscale))
	snap := s.Snapshot()
	assert.False(t, snap.Get(Blur).Enabled)
	assert.Equal(t, 0.3, snap.Get(Blur).Intensity)
	assert.True(t, snap.Get(Grayscale).Enabled)
	assert.Equal(t, 1.0, snap.Get(Grayscale).Intensity)

	require.NoError(t, s.Select(Invert))
	snap = s.Snapshot()
	assert.True(t, snap.Get(Invert).Enabled)
	assert.Zero(t, snap.Get(Invert).Intensity)
	assert.False(t, snap.Get(Grayscale).Enabled)

	// A previously tuned intensity survives re-selection.
	require.NoError(t, s.Select(Blur))
	assert.Equal(t, 0.3, s.Snapshot().Get(Blur).Intensity)

	assert.ErrorIs(t, s.Select(Effect(42)), ErrInvalidEffect)
}

func TestReset(t *testing.T) {
	s := NewEffectStack()
	require.NoError(t, s.Set(EdgeDetect, true, 0.7))
	s.Reset()

	st := s.Snapshot().Get(EdgeDetect)
	assert.False(t, st.Enabled)
	assert.Equal(t, 0.7, st.Intensity)
}

func TestParseEffect(t *testing.T) {
	tests := []struct {
		in   string
		want Effect
	}{
		{"grayscale", Grayscale},
		{"Gaussian Blur", Blur},
		{" MOSAIC ", Mosaic},
		{"edge", EdgeDetect},
		{"invert", Invert},
	}
	for _, tt := range tests {
		got, err := ParseEffect(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}

	_, err := ParseEffect("sepia")
	assert.ErrorIs(t, err, ErrInvalidEffect)
}

func TestEffectMetadata(t *testing.T) {
	assert.Equal(t, "Blur radius (GPU heavy)", Blur.Caption())
	assert.Equal(t, "Pixel size", Mosaic.Caption())
	assert.Equal(t, "Opacity / Mix", Invert.Caption())
	assert.Equal(t, "effect(7)", Effect(7).String())
	assert.Len(t, Effects(), 5)
}
