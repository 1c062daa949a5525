// Package stepper implements the adaptive embedded Runge-Kutta integrator
// that drives the transient simulation loop in pkg/circuit.
//
// original_source defaults to GSL's gsl_odeiv2_step_rkf45 driven through
// gsl_odeiv2_step_apply directly (bypassing GSL's own evolve/driver loop so
// the circuit can intercept every sub-step); RKF45 here reimplements that
// Butcher tableau from scratch since no example repo in the retrieval pack
// exposes a single-substep accept/reject/h-adjust control surface (see
// DESIGN.md).
package stepper

import "math"

// Deriv evaluates dy/dt at (t, y) into dydt. Implementations must not
// mutate y.
type Deriv func(t float64, y, dydt []float64)

// Stepper is one embedded Runge-Kutta formula, sized for a fixed state
// dimension at construction.
type Stepper interface {
	// Dimension returns the number of state variables.
	Dimension() int

	// CanUseDydtIn reports whether Apply can reuse a derivative the caller
	// already has at (t, y) instead of recomputing it, mirroring
	// gsl_odeiv2_step_type.can_use_dydt_in.
	CanUseDydtIn() bool

	// Apply attempts to advance y (in place) by h from t. dydtIn is the
	// derivative at (t, y) if the caller has one and CanUseDydtIn is true
	// (nil otherwise); dydtOut receives the derivative at the newly
	// stepped-to point (for reuse by the next call); yErr receives a
	// per-component local error estimate. Returns false only for a
	// structural fault in deriv, never because the error estimate is
	// large — magnitude-triggered retries are the caller's responsibility.
	Apply(t, h float64, y, dydtIn, dydtOut, yErr []float64, deriv Deriv) bool
}

// RKF45 is the Fehlberg 4(5) embedded pair: a 6-stage method producing a
// 5th-order solution and a 4th-order error estimate.
type RKF45 struct {
	dim int

	k1, k2, k3, k4, k5, k6 []float64
	ytmp                   []float64
}

// NewRKF45 allocates scratch space for a state vector of the given
// dimension.
func NewRKF45(dim int) *RKF45 {
	mk := func() []float64 { return make([]float64, dim) }
	return &RKF45{
		dim: dim,
		k1:  mk(), k2: mk(), k3: mk(), k4: mk(), k5: mk(), k6: mk(),
		ytmp: mk(),
	}
}

func (s *RKF45) Dimension() int     { return s.dim }
func (s *RKF45) CanUseDydtIn() bool { return true }

// Fehlberg's coefficients.
const (
	c2, c3, c4, c5, c6 = 1.0 / 4, 3.0 / 8, 12.0 / 13, 1.0, 1.0 / 2

	a21 = 1.0 / 4

	a31 = 3.0 / 32
	a32 = 9.0 / 32

	a41 = 1932.0 / 2197
	a42 = -7200.0 / 2197
	a43 = 7296.0 / 2197

	a51 = 439.0 / 216
	a52 = -8.0
	a53 = 3680.0 / 513
	a54 = -845.0 / 4104

	a61 = -8.0 / 27
	a62 = 2.0
	a63 = -3544.0 / 2565
	a64 = 1859.0 / 4104
	a65 = -11.0 / 40

	// 5th-order solution weights.
	b1, b3, b4, b5, b6 = 16.0 / 135, 6656.0 / 12825, 28561.0 / 56430, -9.0 / 50, 2.0 / 55

	// 4th-order solution weights, for the error estimate (b5th - b4th).
	b1s, b3s, b4s, b5s = 25.0 / 216, 1408.0 / 2565, 2197.0 / 4104, -1.0 / 5
)

func (s *RKF45) Apply(t, h float64, y, dydtIn, dydtOut, yErr []float64, deriv Deriv) bool {
	n := s.dim
	if n == 0 {
		return true
	}

	if dydtIn != nil {
		copy(s.k1, dydtIn)
	} else {
		deriv(t, y, s.k1)
	}

	for i := 0; i < n; i++ {
		s.ytmp[i] = y[i] + h*a21*s.k1[i]
	}
	deriv(t+c2*h, s.ytmp, s.k2)

	for i := 0; i < n; i++ {
		s.ytmp[i] = y[i] + h*(a31*s.k1[i]+a32*s.k2[i])
	}
	deriv(t+c3*h, s.ytmp, s.k3)

	for i := 0; i < n; i++ {
		s.ytmp[i] = y[i] + h*(a41*s.k1[i]+a42*s.k2[i]+a43*s.k3[i])
	}
	deriv(t+c4*h, s.ytmp, s.k4)

	for i := 0; i < n; i++ {
		s.ytmp[i] = y[i] + h*(a51*s.k1[i]+a52*s.k2[i]+a53*s.k3[i]+a54*s.k4[i])
	}
	deriv(t+c5*h, s.ytmp, s.k5)

	for i := 0; i < n; i++ {
		s.ytmp[i] = y[i] + h*(a61*s.k1[i]+a62*s.k2[i]+a63*s.k3[i]+a64*s.k4[i]+a65*s.k5[i])
	}
	deriv(t+c6*h, s.ytmp, s.k6)

	for i := 0; i < n; i++ {
		y5 := y[i] + h*(b1*s.k1[i]+b3*s.k3[i]+b4*s.k4[i]+b5*s.k5[i]+b6*s.k6[i])
		y4 := y[i] + h*(b1s*s.k1[i]+b3s*s.k3[i]+b4s*s.k4[i]+b5s*s.k5[i])
		yErr[i] = y5 - y4
		y[i] = y5
	}

	deriv(t+h, y, dydtOut)

	return true
}

// Control adjusts the step size for the next iteration from the local
// error estimate of the step just taken, mirroring the shape of
// gsl_odeiv2_control_standard (per-component scale from AbsTol/RelTol, a
// safety factor, and an order-appropriate growth/shrink exponent).
type Control struct {
	AbsTol, RelTol float64
}

// ErrorRatio returns the worst-case ratio of the local error estimate to
// its per-component tolerance scale (AbsTol + RelTol*|y|). A ratio <= 1
// means the step met its error tolerance.
func (c Control) ErrorRatio(y, yErr []float64) float64 {
	rmax := 0.0
	for i := range yErr {
		scale := c.AbsTol + c.RelTol*math.Abs(y[i])
		if scale == 0 {
			continue
		}
		r := math.Abs(yErr[i]) / scale
		if r > rmax {
			rmax = r
		}
	}
	return rmax
}

// Accept reports whether the step that produced yErr should be committed,
// i.e. whether its error estimate is within tolerance.
func (c Control) Accept(y, yErr []float64) bool {
	return c.ErrorRatio(y, yErr) <= 1.0
}

// Hadjust returns the factor by which h should be scaled for the next
// step. A factor of 1 means "no change is warranted"; the caller is free
// to ignore small changes.
func (c Control) Hadjust(y, yErr []float64) float64 {
	const safety = 0.9
	const maxGrowth = 5.0
	const maxShrink = 0.2

	rmax := c.ErrorRatio(y, yErr)

	if rmax == 0 {
		return maxGrowth
	}
	if rmax > 1.1 {
		factor := safety * math.Pow(rmax, -0.25)
		if factor < maxShrink {
			factor = maxShrink
		}
		return factor
	}

	factor := safety * math.Pow(rmax, -0.2)
	if factor > maxGrowth {
		factor = maxGrowth
	}
	if factor < 1 {
		factor = 1
	}
	return factor
}
