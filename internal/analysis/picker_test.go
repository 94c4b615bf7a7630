package analysis_test

import (
	"testing"

	"soundscape-server/internal/analysis"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pool = []string{"a.mp3", "b.mp3", "c.mp3", "d.mp3"}

func TestHashPicker(t *testing.T) {
	p := analysis.HashPicker{}
	first := p.Pick("thunder", pool, "Thunder", 10)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, p.Pick("thunder", pool, "thunder", 10))
	}
	assert.Contains(t, pool, first)
	assert.Empty(t, p.Pick("thunder", nil, "thunder", 0))
}

func TestFirstPicker(t *testing.T) {
	p := analysis.FirstPicker{}
	assert.Equal(t, "a.mp3", p.Pick("g", pool, "w", 3))
	assert.Empty(t, p.Pick("g", nil, "w", 3))
}

func TestRandomPicker(t *testing.T) {
	t.Run("seeded sequences repeat", func(t *testing.T) {
		a, b := analysis.NewRandomPicker(7), analysis.NewRandomPicker(7)
		for i := 0; i < 50; i++ {
			assert.Equal(t, a.Pick("g", pool, "w", i), b.Pick("g", pool, "w", i))
		}
	})

	t.Run("draws stay in pool", func(t *testing.T) {
		p := analysis.NewRandomPicker(0)
		for i := 0; i < 100; i++ {
			assert.Contains(t, pool, p.Pick("g", pool, "w", i))
		}
		assert.Equal(t, "only.mp3", p.Pick("g", []string{"only.mp3"}, "w", 0))
		assert.Empty(t, p.Pick("g", nil, "w", 0))
	})
}

func TestNewSoundPicker(t *testing.T) {
	tests := []struct {
		name string
		want analysis.SoundPicker
	}{
		{"hash", analysis.HashPicker{}},
		{"FIRST", analysis.FirstPicker{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := analysis.NewSoundPicker(tt.name, 0)
			require.NoError(t, err)
			assert.Equal(t, tt.want, p)
		})
	}

	p, err := analysis.NewSoundPicker("", 1)
	require.NoError(t, err)
	assert.IsType(t, &analysis.RandomPicker{}, p)

	_, err = analysis.NewSoundPicker("loudest", 0)
	assert.Error(t, err)
}
