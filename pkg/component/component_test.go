package component_test

import (
	"math"
	"testing"

	"github.com/aWZHY0yQH81uOYvH/libspice/pkg/circuit"
	"github.com/aWZHY0yQH81uOYvH/libspice/pkg/component"
	"github.com/aWZHY0yQH81uOYvH/libspice/pkg/modulator"
)

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func closeEnough(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestResistorCurrentFollowsOhmsLaw(t *testing.T) {
	c := circuit.NewDefault()
	gnd := c.GetGroundNode()
	n := c.AddNode()

	r := component.NewResistor(c, 50)
	src := component.NewVoltageSource(c, 10)

	must(t, component.Connect(c, n, src, gnd))
	must(t, component.Connect(c, n, r, gnd))

	must(t, c.SimToTime(0))

	if !closeEnough(r.Current(), 0.2, 1e-9) {
		t.Errorf("I(R) = %v, want 0.2", r.Current())
	}
	if !closeEnough(r.Power(), 2.0, 1e-9) {
		t.Errorf("P(R) = %v, want 2.0", r.Power())
	}
}

// SetValue on a component whose value is modulator-controlled must fail,
// and RemoveModulator must restore direct control.
func TestSetValueModulatorConflict(t *testing.T) {
	c := circuit.NewDefault()
	r := component.NewResistor(c, 100)

	sine := modulator.NewSine(c, 1, 1, 0, 0)
	r.SetModulator(sine, 0)

	if err := r.SetValue(50); err == nil {
		t.Fatal("expected ErrModulatedValueConflict, got nil")
	}

	r.RemoveModulator()
	if err := r.SetValue(50); err != nil {
		t.Fatalf("SetValue after RemoveModulator: %v", err)
	}
	if r.GetValue() != 50 {
		t.Errorf("GetValue() = %v, want 50", r.GetValue())
	}
}

// Capacitor DC behavior: open circuit (no IExpr) without an IC, ideal
// voltage source at the IC when one is specified.
func TestCapacitorDCModes(t *testing.T) {
	c := circuit.NewDefault()
	gnd := c.GetGroundNode()
	n := c.AddNode()

	capNoIC := component.NewCapacitor(c, 1e-6)
	must(t, component.Connect(c, n, capNoIC, gnd))

	if !capNoIC.IExpr().Empty() {
		t.Error("capacitor with no IC should be an open circuit in DC (empty IExpr)")
	}
	if !capNoIC.VExpr().Empty() {
		t.Error("capacitor with no IC should have empty VExpr in DC")
	}

	c2 := circuit.NewDefault()
	gnd2 := c2.GetGroundNode()
	n2 := c2.AddNode()
	capIC := component.NewCapacitorIC(c2, 1e-6, 3.3)
	must(t, component.Connect(c2, n2, capIC, gnd2))

	must(t, c2.SimToTime(0))
	if !closeEnough(n2.Voltage(), 3.3, 1e-9) {
		t.Errorf("V(cap IC node) = %v, want 3.3", n2.Voltage())
	}
	if !capIC.InitialCondSpecified() {
		t.Error("InitialCondSpecified() should be true after NewCapacitorIC")
	}
}
