package agent

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// network is a two-hidden-layer MLP mapping observations to one value
// per action. The second hidden layer uses half the width of the first.
type network struct {
	in, hidden, half, out int

	w1, w2, w3 *mat.Dense
	b1, b2, b3 *mat.VecDense
}

// gradients mirrors the network layout, one entry per parameter block.
type gradients struct {
	w1, w2, w3 *mat.Dense
	b1, b2, b3 *mat.VecDense
}

// activations keeps a batch forward pass around for backprop.
type activations struct {
	x      *mat.Dense // batch input, rows are samples
	h1, h2 *mat.Dense // post-ReLU hidden layers
	q      *mat.Dense // action values
}

func newNetwork(in, hidden, out int, rng *rand.Rand) *network {
	half := hidden / 2
	n := &network{
		in:     in,
		hidden: hidden,
		half:   half,
		out:    out,
		w1:     mat.NewDense(in, hidden, nil),
		w2:     mat.NewDense(hidden, half, nil),
		w3:     mat.NewDense(half, out, nil),
		b1:     mat.NewVecDense(hidden, nil),
		b2:     mat.NewVecDense(half, nil),
		b3:     mat.NewVecDense(out, nil),
	}
	initUniform(n.w1, in, rng)
	initUniform(n.w2, hidden, rng)
	initUniform(n.w3, half, rng)
	return n
}

// initUniform fills m with He-style uniform noise scaled by fan-in.
func initUniform(m *mat.Dense, fanIn int, rng *rand.Rand) {
	bound := math.Sqrt(6.0 / float64(fanIn))
	raw := m.RawMatrix()
	for i := range raw.Data {
		raw.Data[i] = (rng.Float64()*2 - 1) * bound
	}
}

// forward evaluates a single observation.
func (n *network) forward(obs []float64) []float64 {
	x := mat.NewDense(1, n.in, obs)
	acts := n.forwardBatch(x)
	out := make([]float64, n.out)
	copy(out, acts.q.RawRowView(0))
	return out
}

// forwardBatch evaluates a batch and retains intermediate activations.
func (n *network) forwardBatch(x *mat.Dense) *activations {
	rows, _ := x.Dims()

	h1 := mat.NewDense(rows, n.hidden, nil)
	h1.Mul(x, n.w1)
	addBiasReLU(h1, n.b1)

	h2 := mat.NewDense(rows, n.half, nil)
	h2.Mul(h1, n.w2)
	addBiasReLU(h2, n.b2)

	q := mat.NewDense(rows, n.out, nil)
	q.Mul(h2, n.w3)
	addBias(q, n.b3)

	return &activations{x: x, h1: h1, h2: h2, q: q}
}

func addBias(m *mat.Dense, b *mat.VecDense) {
	rows, cols := m.Dims()
	for i := 0; i < rows; i++ {
		row := m.RawRowView(i)
		for j := 0; j < cols; j++ {
			row[j] += b.AtVec(j)
		}
	}
}

func addBiasReLU(m *mat.Dense, b *mat.VecDense) {
	rows, cols := m.Dims()
	for i := 0; i < rows; i++ {
		row := m.RawRowView(i)
		for j := 0; j < cols; j++ {
			v := row[j] + b.AtVec(j)
			if v < 0 {
				v = 0
			}
			row[j] = v
		}
	}
}

// backward computes parameter gradients given the per-sample, per-action
// loss gradient dQ (zero everywhere except the trained action column).
func (n *network) backward(acts *activations, dQ *mat.Dense) *gradients {
	g := &gradients{
		w1: mat.NewDense(n.in, n.hidden, nil),
		w2: mat.NewDense(n.hidden, n.half, nil),
		w3: mat.NewDense(n.half, n.out, nil),
		b1: mat.NewVecDense(n.hidden, nil),
		b2: mat.NewVecDense(n.half, nil),
		b3: mat.NewVecDense(n.out, nil),
	}

	g.w3.Mul(acts.h2.T(), dQ)
	colSums(dQ, g.b3)

	rows, _ := dQ.Dims()
	dH2 := mat.NewDense(rows, n.half, nil)
	dH2.Mul(dQ, n.w3.T())
	maskReLU(dH2, acts.h2)

	g.w2.Mul(acts.h1.T(), dH2)
	colSums(dH2, g.b2)

	dH1 := mat.NewDense(rows, n.hidden, nil)
	dH1.Mul(dH2, n.w2.T())
	maskReLU(dH1, acts.h1)

	g.w1.Mul(acts.x.T(), dH1)
	colSums(dH1, g.b1)

	return g
}

// maskReLU zeroes gradient entries where the forward activation was clamped.
func maskReLU(grad, act *mat.Dense) {
	gr := grad.RawMatrix()
	ar := act.RawMatrix()
	for i := range gr.Data {
		if ar.Data[i] <= 0 {
			gr.Data[i] = 0
		}
	}
}

func colSums(m *mat.Dense, out *mat.VecDense) {
	rows, cols := m.Dims()
	for i := 0; i < rows; i++ {
		row := m.RawRowView(i)
		for j := 0; j < cols; j++ {
			out.SetVec(j, out.AtVec(j)+row[j])
		}
	}
}

// clipNorm rescales all gradients so their global L2 norm is at most limit.
func (g *gradients) clipNorm(limit float64) {
	var sq float64
	for _, m := range []*mat.Dense{g.w1, g.w2, g.w3} {
		for _, v := range m.RawMatrix().Data {
			sq += v * v
		}
	}
	for _, b := range []*mat.VecDense{g.b1, g.b2, g.b3} {
		for _, v := range b.RawVector().Data {
			sq += v * v
		}
	}
	norm := math.Sqrt(sq)
	if norm <= limit || norm == 0 {
		return
	}
	scale := limit / norm
	for _, m := range []*mat.Dense{g.w1, g.w2, g.w3} {
		raw := m.RawMatrix()
		for i := range raw.Data {
			raw.Data[i] *= scale
		}
	}
	for _, b := range []*mat.VecDense{g.b1, g.b2, g.b3} {
		raw := b.RawVector()
		for i := range raw.Data {
			raw.Data[i] *= scale
		}
	}
}

// apply takes one SGD step against the gradients.
func (n *network) apply(g *gradients, lr float64) {
	step := func(p, grad *mat.Dense) {
		pr := p.RawMatrix()
		gr := grad.RawMatrix()
		for i := range pr.Data {
			pr.Data[i] -= lr * gr.Data[i]
		}
	}
	stepVec := func(p, grad *mat.VecDense) {
		pr := p.RawVector()
		gr := grad.RawVector()
		for i := range pr.Data {
			pr.Data[i] -= lr * gr.Data[i]
		}
	}
	step(n.w1, g.w1)
	step(n.w2, g.w2)
	step(n.w3, g.w3)
	stepVec(n.b1, g.b1)
	stepVec(n.b2, g.b2)
	stepVec(n.b3, g.b3)
}

// blendFrom moves this network a fraction tau towards other.
func (n *network) blendFrom(other *network, tau float64) {
	blend := func(dst, src *mat.Dense) {
		dr := dst.RawMatrix()
		sr := src.RawMatrix()
		for i := range dr.Data {
			dr.Data[i] = tau*sr.Data[i] + (1-tau)*dr.Data[i]
		}
	}
	blendVec := func(dst, src *mat.VecDense) {
		dr := dst.RawVector()
		sr := src.RawVector()
		for i := range dr.Data {
			dr.Data[i] = tau*sr.Data[i] + (1-tau)*dr.Data[i]
		}
	}
	blend(n.w1, other.w1)
	blend(n.w2, other.w2)
	blend(n.w3, other.w3)
	blendVec(n.b1, other.b1)
	blendVec(n.b2, other.b2)
	blendVec(n.b3, other.b3)
}

// clone returns a deep copy with identical weights.
func (n *network) clone() *network {
	c := &network{in: n.in, hidden: n.hidden, half: n.half, out: n.out}
	c.w1 = mat.DenseCopyOf(n.w1)
	c.w2 = mat.DenseCopyOf(n.w2)
	c.w3 = mat.DenseCopyOf(n.w3)
	c.b1 = mat.VecDenseCopyOf(n.b1)
	c.b2 = mat.VecDenseCopyOf(n.b2)
	c.b3 = mat.VecDenseCopyOf(n.b3)
	return c
}
