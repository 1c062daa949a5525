package circuit_test

import (
	"errors"
	"math"
	"testing"

	"github.com/aWZHY0yQH81uOYvH/libspice/pkg/circuit"
	"github.com/aWZHY0yQH81uOYvH/libspice/pkg/component"
	"github.com/aWZHY0yQH81uOYvH/libspice/pkg/modulator"
)

func closeEnough(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

// Scenario 1 of spec.md §8: a pure resistor divider against an ideal
// voltage source, solved by a single sim_to_time(0) DC snapshot.
func TestResistorDividerDC(t *testing.T) {
	c := circuit.NewDefault()
	gnd := c.GetGroundNode()
	n := c.AddNode()

	r1 := component.NewResistor(c, 100)
	src := component.NewVoltageSource(c, 5)

	if err := component.Connect(c, n, r1, gnd); err != nil {
		t.Fatalf("connect r1: %v", err)
	}
	if err := component.Connect(c, n, src, gnd); err != nil {
		t.Fatalf("connect src: %v", err)
	}

	if err := c.SimToTime(0); err != nil {
		t.Fatalf("sim_to_time(0): %v", err)
	}

	if !closeEnough(n.Voltage(), 5.0, 1e-9) {
		t.Errorf("V(N) = %v, want 5.0", n.Voltage())
	}
	if !closeEnough(r1.Current(), 0.05, 1e-9) {
		t.Errorf("I(R1) = %v, want 0.05", r1.Current())
	}
	if !closeEnough(src.Power(), 0.25, 1e-9) {
		t.Errorf("P(source) = %v, want 0.25", src.Power())
	}
}

// Scenario 2 of spec.md §8: a two-resistor divider.
func TestTwoResistorDividerDC(t *testing.T) {
	c := circuit.NewDefault()
	gnd := c.GetGroundNode()
	a := c.AddNode()
	m := c.AddNode()

	src := component.NewVoltageSource(c, 5)
	r1 := component.NewResistor(c, 100)
	r2 := component.NewResistor(c, 300)

	must(t, component.Connect(c, a, src, gnd))
	must(t, component.Connect(c, a, r1, m))
	must(t, component.Connect(c, m, r2, gnd))

	if err := c.SimToTime(0); err != nil {
		t.Fatalf("sim_to_time(0): %v", err)
	}

	if !closeEnough(m.Voltage(), 3.75, 1e-9) {
		t.Errorf("V(M) = %v, want 3.75", m.Voltage())
	}
	if !closeEnough(r1.Current(), 0.0125, 1e-9) {
		t.Errorf("I(R1) = %v, want 0.0125", r1.Current())
	}
	if !closeEnough(r2.Current(), 0.0125, 1e-9) {
		t.Errorf("I(R2) = %v, want 0.0125", r2.Current())
	}
}

// Scenario 3 of spec.md §8: RC charging through a resistor from a step
// source into a capacitor starting at IC=0, checked against the
// closed-form exponential at t=1ms.
func TestRCChargingTransient(t *testing.T) {
	c := circuit.NewDefault()
	gnd := c.GetGroundNode()
	a := c.AddNode()
	b := c.AddNode()

	src := component.NewVoltageSource(c, 5)
	r1 := component.NewResistor(c, 1000)
	cap := component.NewCapacitorIC(c, 1e-6, 0)

	must(t, component.Connect(c, a, src, gnd))
	must(t, component.Connect(c, a, r1, b))
	must(t, component.Connect(c, b, cap, gnd))

	if err := c.SimToTime(1e-3); err != nil {
		t.Fatalf("sim_to_time(1ms): %v", err)
	}

	want := 5 * (1 - math.Exp(-1))
	if !closeEnough(b.Voltage(), want, 0.01*want) {
		t.Errorf("V(C) at t=1ms = %v, want ~%v", b.Voltage(), want)
	}
}

// Scenario 4 of spec.md §8: RL energization through a resistor from a step
// source into an inductor starting at IC=0, checked against the
// closed-form exponential at t=1ms.
func TestRLEnergizationTransient(t *testing.T) {
	c := circuit.NewDefault()
	gnd := c.GetGroundNode()
	a := c.AddNode()
	b := c.AddNode()

	src := component.NewVoltageSource(c, 10)
	r1 := component.NewResistor(c, 10)
	ind := component.NewInductorIC(c, 10e-3, 0)

	must(t, component.Connect(c, a, src, gnd))
	must(t, component.Connect(c, a, r1, b))
	must(t, component.Connect(c, b, ind, gnd))

	if err := c.SimToTime(1e-3); err != nil {
		t.Fatalf("sim_to_time(1ms): %v", err)
	}

	want := (10.0 / 10.0) * (1 - math.Exp(-1000*1e-3))
	if !closeEnough(ind.Current(), want, 0.01*want) {
		t.Errorf("I(L) at t=1ms = %v, want ~%v", ind.Current(), want)
	}
}

// Scenario 5 of spec.md §8: a lossless LC resonator oscillates near
// f = 1/(2*pi*sqrt(LC)); the peak capacitor voltage after five periods
// should still be within 2% of its initial 1V charge.
func TestLCResonatorOscillates(t *testing.T) {
	c := circuit.New(1e-15, 1e-8, 1e-9, 1e-6)
	gnd := c.GetGroundNode()
	a := c.AddNode()

	cap := component.NewCapacitorIC(c, 1e-6, 1.0)
	ind := component.NewInductorIC(c, 100e-6, 0.0)

	must(t, component.Connect(c, a, cap, gnd))
	must(t, component.Connect(c, a, ind, gnd))

	c.SaveAll(0)

	freq := 1 / (2 * math.Pi * math.Sqrt(100e-6*1e-6))
	stop := 5 / freq

	if err := c.SimToTime(stop); err != nil {
		t.Fatalf("sim_to_time: %v", err)
	}

	peak := 0.0
	for _, v := range a.VHist() {
		if math.Abs(v) > peak {
			peak = math.Abs(v)
		}
	}
	if !closeEnough(peak, 1.0, 0.02) {
		t.Errorf("peak |V(C)| = %v, want ~1.0 (within 2%%)", peak)
	}
}

// Scenario 6 of spec.md §8: a sine-modulated source driving an RC
// low-pass; after many periods the capacitor voltage amplitude should
// match the first-order low-pass response.
func TestSineModulatedRCSteadyState(t *testing.T) {
	c := circuit.New(1e-15, 1e-5, 1e-9, 1e-4)
	gnd := c.GetGroundNode()
	a := c.AddNode()
	b := c.AddNode()

	src := component.NewVoltageSource(c, 0)
	sine := modulator.NewSine(c, 1000, 1, 0, 0)
	src.SetModulator(sine, 0)
	c.AddModulator(sine)

	r1 := component.NewResistor(c, 1000)
	cap := component.NewCapacitor(c, 1e-6)

	must(t, component.Connect(c, a, src, gnd))
	must(t, component.Connect(c, a, r1, b))
	must(t, component.Connect(c, b, cap, gnd))

	c.SaveAll(1e-6)

	periods := 12
	period := 1.0 / 1000
	stop := float64(periods) * period

	if err := c.SimToTime(stop); err != nil {
		t.Fatalf("sim_to_time: %v", err)
	}

	// Amplitude over the final two periods only, to let the transient
	// decay out of the window before measuring.
	var peak float64
	lastTwo := 2 * period
	times, vb := c.SaveTimes(), b.VHist()
	for i, tt := range times {
		if tt < stop-lastTwo {
			continue
		}
		if math.Abs(vb[i]) > peak {
			peak = math.Abs(vb[i])
		}
	}

	omega := 2 * math.Pi * 1000
	want := 1 / math.Sqrt(1+(omega*1000*1e-6)*(omega*1000*1e-6))
	if !closeEnough(peak, want, 0.03*want) {
		t.Errorf("steady-state |V(C)| amplitude = %v, want ~%v", peak, want)
	}
}

// spec.md §8 universal invariant: flip() applied twice restores the
// component's orientation. Checked through the public surface: top and
// bottom terminals are back where Connect put them and IExpr keeps its
// shape; the nodes' direction bits are unexported and not inspected here.
func TestFlipTwiceRestoresDirections(t *testing.T) {
	c := circuit.NewDefault()
	gnd := c.GetGroundNode()
	n := c.AddNode()

	r1 := component.NewResistor(c, 100)
	must(t, component.Connect(c, n, r1, gnd))

	before := r1.IExpr()

	component.Flip(r1)
	component.Flip(r1)

	if r1.Top() != n || r1.Bot() != gnd {
		t.Fatalf("flip-flip changed terminals: top=%v bot=%v", r1.Top(), r1.Bot())
	}

	after := r1.IExpr()
	if len(before) != len(after) {
		t.Fatalf("flip-flip changed IExpr shape: before=%v after=%v", before, after)
	}
}

// spec.md §8 round-trip law: reset() restores t=0 and a subsequent
// sim_to_time(0) reproduces the same DC snapshot.
func TestResetRoundTrip(t *testing.T) {
	c := circuit.NewDefault()
	gnd := c.GetGroundNode()
	n := c.AddNode()

	r1 := component.NewResistor(c, 100)
	src := component.NewVoltageSource(c, 5)
	must(t, component.Connect(c, n, r1, gnd))
	must(t, component.Connect(c, n, src, gnd))

	c.SaveAll(0)

	if err := c.SimToTime(0); err != nil {
		t.Fatalf("first sim_to_time(0): %v", err)
	}
	firstV := n.Voltage()

	c.Reset()
	if c.Time() != 0 {
		t.Fatalf("reset() left t=%v, want 0", c.Time())
	}
	if len(c.SaveTimes()) != 0 {
		t.Fatalf("reset() left %d save times, want 0", len(c.SaveTimes()))
	}

	if err := c.SimToTime(0); err != nil {
		t.Fatalf("second sim_to_time(0): %v", err)
	}
	if !closeEnough(n.Voltage(), firstV, 1e-12) {
		t.Errorf("post-reset V(N) = %v, want %v", n.Voltage(), firstV)
	}
}

// spec.md §7: self and double connections are rejected with their
// documented error kinds.
func TestConnectionErrors(t *testing.T) {
	c := circuit.NewDefault()
	n := c.AddNode()
	gnd := c.GetGroundNode()

	r1 := component.NewResistor(c, 100)
	if err := component.Connect(c, n, r1, n); !errors.Is(err, circuit.ErrSelfConnection) {
		t.Fatalf("expected ErrSelfConnection, got %v", err)
	}

	r2 := component.NewResistor(c, 100)
	must(t, component.Connect(c, n, r2, gnd))
	if err := component.Connect(c, n, r2, gnd); !errors.Is(err, circuit.ErrDoubleConnection) {
		t.Fatalf("expected ErrDoubleConnection, got %v", err)
	}
}

// spec.md §7: wiring a node from a different circuit is rejected.
func TestWrongCircuitRejected(t *testing.T) {
	c1 := circuit.NewDefault()
	c2 := circuit.NewDefault()

	n1 := c1.AddNode()
	gnd2 := c2.GetGroundNode()

	r := component.NewResistor(c1, 100)
	if err := component.Connect(c1, n1, r, gnd2); err == nil {
		t.Fatal("expected ErrWrongCircuit, got nil")
	}
}

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
