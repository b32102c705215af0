package agent

import (
	"math"
	"math/rand"
)

const priorityOffset = 1e-5

type transition struct {
	state  []float64
	action int
	reward float64
	next   []float64
	done   bool
}

// replayBuffer is a fixed-capacity ring with per-transition priorities.
// New items enter at the current maximum priority so they are replayed
// at least once before their TD error settles their weight.
type replayBuffer struct {
	capacity int
	alpha    float64
	rng      *rand.Rand

	items      []transition
	priorities []float64
	pos        int
}

func newReplayBuffer(capacity int, alpha float64, rng *rand.Rand) *replayBuffer {
	return &replayBuffer{
		capacity:   capacity,
		alpha:      alpha,
		rng:        rng,
		items:      make([]transition, 0, capacity),
		priorities: make([]float64, 0, capacity),
	}
}

func (b *replayBuffer) len() int { return len(b.items) }

func (b *replayBuffer) push(tr transition) {
	p := 1.0
	if len(b.priorities) > 0 {
		p = b.priorities[0]
		for _, v := range b.priorities[1:] {
			if v > p {
				p = v
			}
		}
	}
	if len(b.items) < b.capacity {
		b.items = append(b.items, tr)
		b.priorities = append(b.priorities, p)
		return
	}
	b.items[b.pos] = tr
	b.priorities[b.pos] = p
	b.pos = (b.pos + 1) % b.capacity
}

// sample draws batch transitions with probability proportional to
// priority^alpha and returns importance-sampling weights normalized by
// the batch maximum.
func (b *replayBuffer) sample(batch int, beta float64) ([]transition, []int, []float64) {
	n := len(b.items)
	probs := make([]float64, n)
	var total float64
	for i, p := range b.priorities {
		probs[i] = math.Pow(p, b.alpha)
		total += probs[i]
	}

	out := make([]transition, batch)
	idx := make([]int, batch)
	weights := make([]float64, batch)
	var maxW float64
	for k := 0; k < batch; k++ {
		i := b.drawIndex(probs, total)
		idx[k] = i
		out[k] = b.items[i]
		w := math.Pow(float64(n)*probs[i]/total, -beta)
		weights[k] = w
		if w > maxW {
			maxW = w
		}
	}
	for k := range weights {
		weights[k] /= maxW
	}
	return out, idx, weights
}

func (b *replayBuffer) drawIndex(probs []float64, total float64) int {
	r := b.rng.Float64() * total
	for i, p := range probs {
		r -= p
		if r <= 0 {
			return i
		}
	}
	return len(probs) - 1
}

// updatePriorities stores fresh absolute TD errors for sampled indices.
func (b *replayBuffer) updatePriorities(idx []int, tdErr []float64) {
	for k, i := range idx {
		b.priorities[i] = math.Abs(tdErr[k]) + priorityOffset
	}
}
