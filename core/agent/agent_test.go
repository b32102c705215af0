package agent

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	return Config{
		Hidden:     16,
		BufferSize: 128,
		BatchSize:  8,
		Seed:       42,
	}
}

func TestNew_RejectsBadSizes(t *testing.T) {
	_, err := New(0, 4, testConfig())
	require.Error(t, err)
	_, err = New(4, 0, testConfig())
	require.Error(t, err)
}

func TestNew_RejectsBadConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Gamma = 1.5
	_, err := New(4, 2, cfg)
	require.Error(t, err)

	cfg = testConfig()
	cfg.BufferSize = 4 // smaller than the batch
	_, err = New(4, 2, cfg)
	require.Error(t, err)
}

func TestSelectAction_GreedyIsDeterministic(t *testing.T) {
	a, err := New(3, 5, testConfig())
	require.NoError(t, err)

	obs := []float64{0.1, 0.2, 0.3}
	first := a.SelectAction(obs, false)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, a.SelectAction(obs, false))
	}
	assert.GreaterOrEqual(t, first, 0)
	assert.Less(t, first, 5)
}

func TestSelectAction_GreedyMatchesValues(t *testing.T) {
	a, err := New(3, 4, testConfig())
	require.NoError(t, err)

	obs := []float64{-0.4, 0.0, 0.7}
	q := a.Values(obs)
	best := 0
	for i := 1; i < len(q); i++ {
		if q[i] > q[best] {
			best = i
		}
	}
	assert.Equal(t, best, a.SelectAction(obs, false))
}

func TestSelectAction_ExploresAtFullEpsilon(t *testing.T) {
	a, err := New(2, 6, testConfig())
	require.NoError(t, err)
	require.Equal(t, 1.0, a.Epsilon())

	seen := map[int]bool{}
	for i := 0; i < 200; i++ {
		seen[a.SelectAction([]float64{0, 0}, true)] = true
	}
	assert.Greater(t, len(seen), 3, "full exploration should hit most actions")
}

func TestTrainStep_NeedsFullBatch(t *testing.T) {
	a, err := New(2, 2, testConfig())
	require.NoError(t, err)

	for i := 0; i < a.cfg.BatchSize-1; i++ {
		a.Record([]float64{0, 0}, 0, 1, []float64{0, 0}, false)
	}
	_, ok := a.TrainStep()
	assert.False(t, ok)

	a.Record([]float64{0, 0}, 0, 1, []float64{0, 0}, false)
	_, ok = a.TrainStep()
	assert.True(t, ok)
}

func TestTrainStep_DecaysEpsilon(t *testing.T) {
	a, err := New(2, 2, testConfig())
	require.NoError(t, err)
	for i := 0; i < a.cfg.BatchSize; i++ {
		a.Record([]float64{0, 1}, i % 2, 0.5, []float64{1, 0}, false)
	}

	before := a.Epsilon()
	_, ok := a.TrainStep()
	require.True(t, ok)
	assert.InDelta(t, before*a.cfg.EpsilonDecay, a.Epsilon(), 1e-12)
	assert.Equal(t, 1, a.TrainingSteps())
}

func TestTrainStep_EpsilonFloor(t *testing.T) {
	a, err := New(2, 2, testConfig())
	require.NoError(t, err)
	a.epsilon = a.cfg.EpsilonEnd
	for i := 0; i < a.cfg.BatchSize; i++ {
		a.Record([]float64{0, 0}, 0, 0, []float64{0, 0}, true)
	}
	_, ok := a.TrainStep()
	require.True(t, ok)
	assert.Equal(t, a.cfg.EpsilonEnd, a.Epsilon())
}

// Training on a bandit where action 1 always pays should drive the value
// gap toward action 1.
func TestTrainStep_LearnsBanditPreference(t *testing.T) {
	cfg := testConfig()
	cfg.LearningRate = 0.01
	a, err := New(2, 2, cfg)
	require.NoError(t, err)

	obs := []float64{0.5, 0.5}
	for i := 0; i < 64; i++ {
		a.Record(obs, 0, 0.0, obs, true)
		a.Record(obs, 1, 1.0, obs, true)
	}
	for i := 0; i < 500; i++ {
		_, ok := a.TrainStep()
		require.True(t, ok)
	}

	q := a.Values(obs)
	assert.Greater(t, q[1], q[0])
	assert.InDelta(t, 1.0, q[1], 0.25)
}

func TestTrainStep_LossIsFinite(t *testing.T) {
	a, err := New(3, 3, testConfig())
	require.NoError(t, err)
	for i := 0; i < 32; i++ {
		a.Record([]float64{float64(i % 3), 0, 1}, i%3, float64(i%5)-2, []float64{0, 1, 0}, i%7 == 0)
	}
	for i := 0; i < 50; i++ {
		loss, ok := a.TrainStep()
		require.True(t, ok)
		assert.False(t, math.IsNaN(loss))
		assert.False(t, math.IsInf(loss, 0))
		assert.GreaterOrEqual(t, loss, 0.0)
	}
}

func TestRecord_CopiesObservations(t *testing.T) {
	a, err := New(2, 2, testConfig())
	require.NoError(t, err)

	obs := []float64{1, 2}
	next := []float64{3, 4}
	a.Record(obs, 0, 0, next, false)
	obs[0] = 99
	next[0] = 99

	stored := a.buffer.items[0]
	assert.Equal(t, []float64{1, 2}, stored.state)
	assert.Equal(t, []float64{3, 4}, stored.next)
}
