package unet

import "math"

// Adam moment defaults, as commonly published.
const (
	beta1   = 0.9
	beta2   = 0.999
	epsAdam = 1e-8
)

// adam carries first/second moment estimates for one parameter slice.
type adam struct {
	m []float64
	v []float64
	t int
}

func newAdam(n int) *adam {
	return &adam{m: make([]float64, n), v: make([]float64, n)}
}

// step applies one bias-corrected Adam update to p given gradient g.
func (a *adam) step(p, g []float32, lr float64) {
	a.t++
	c1 := 1 - math.Pow(beta1, float64(a.t))
	c2 := 1 - math.Pow(beta2, float64(a.t))
	for i := range p {
		gi := float64(g[i])
		a.m[i] = beta1*a.m[i] + (1-beta1)*gi
		a.v[i] = beta2*a.v[i] + (1-beta2)*gi*gi
		mhat := a.m[i] / c1
		vhat := a.v[i] / c2
		p[i] -= float32(lr * mhat / (math.Sqrt(vhat) + epsAdam))
	}
}
