package dualnet

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSoftmaxTemperatureNormalises(t *testing.T) {
	logits := []float32{1.0, 2.0, 3.0, 0.5}
	probs := SoftmaxTemperature(logits, 1.0)

	var sum float32
	for _, p := range probs {
		require.GreaterOrEqual(t, p, float32(0))
		sum += p
	}
	require.InDelta(t, 1.0, sum, 1e-4)
}

func TestSoftmaxTemperatureHigherTemperatureFlattens(t *testing.T) {
	logits := []float32{5.0, 0.0}
	sharp := SoftmaxTemperature(logits, 0.5)
	flat := SoftmaxTemperature(logits, 50.0)

	require.Greater(t, sharp[0]-sharp[1], flat[0]-flat[1])
}

func TestSoftmaxTemperatureNonPositiveDefaultsToOne(t *testing.T) {
	logits := []float32{1.0, 2.0}
	require.Equal(t, SoftmaxTemperature(logits, 1.0), SoftmaxTemperature(logits, 0))
	require.Equal(t, SoftmaxTemperature(logits, 1.0), SoftmaxTemperature(logits, -3))
}

func TestConfigIsValid(t *testing.T) {
	require.True(t, Config{Features: 10, Hidden: 4, ActionSpace: 2}.IsValid())
	require.False(t, Config{Features: 0, Hidden: 4, ActionSpace: 2}.IsValid())
	require.False(t, Config{Features: 10, Hidden: 4, ActionSpace: 1}.IsValid())
}

func TestSaveLoadRoundTrip(t *testing.T) {
	w := Weights{
		W1: []float32{1, 2, 3, 4},
		B1: []float32{0.5, 0.25},
		WP: []float32{1, 1, 1, 1},
		BP: []float32{0, 0},
		WV: []float32{1, 1},
		BV: []float32{0.1},
	}

	var buf bytes.Buffer
	require.NoError(t, Save(&buf, w))

	got, err := Load(&buf)
	require.NoError(t, err)
	require.Equal(t, w, got)
}
