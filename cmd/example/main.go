// Command example builds and runs a small RC charging circuit directly
// through Go constructor calls, the way a caller of this module is expected
// to (there is no netlist front end). Grounded on the teacher's cmd/main.go
// for the "build a circuit, run it, print results" shape, adapted from
// flag-driven netlist loading to direct construction against pkg/circuit
// and pkg/component.
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/aWZHY0yQH81uOYvH/libspice/pkg/circuit"
	"github.com/aWZHY0yQH81uOYvH/libspice/pkg/component"
	"github.com/aWZHY0yQH81uOYvH/libspice/pkg/modulator"
	"github.com/aWZHY0yQH81uOYvH/libspice/pkg/util"
)

func main() {
	stopTime := flag.Float64("stop", 5e-3, "simulation stop time in seconds")
	savePeriod := flag.Float64("save-period", 1e-5, "history save period in seconds")
	flag.Parse()

	c := circuit.NewDefault()

	src := component.NewVoltageSource(c, 5.0)
	r1 := component.NewResistor(c, 1000)
	cap1 := component.NewCapacitor(c, 1e-6)

	gnd := c.GetGroundNode()
	nA := c.AddNode()
	nB := c.AddNode()

	must(component.Connect(c, nA, src, gnd))
	must(component.Connect(c, nA, r1, nB))
	must(component.Connect(c, nB, cap1, gnd))

	pwm := modulator.NewPWM(c, 0, 5, 100, 0.5, 0)
	src.SetModulator(pwm, 0)
	c.AddModulator(pwm)

	c.SaveAll(*savePeriod)

	if err := c.SimToTime(*stopTime); err != nil {
		log.Fatalf("simulation failed: %v", err)
	}

	fmt.Println("RC charge/discharge, node B voltage and R1 drop/current/power:")
	fmt.Println("time            V(B)             V(R1)            I(R1)            P(R1)")
	times := c.SaveTimes()
	vb := nB.VHist()
	vr1 := r1.VHist()
	ir1 := r1.IHist()
	for i, t := range times {
		fmt.Printf("%-15s %-16s %-16s %-16s %s\n",
			util.FormatValueFactor(t, "s"),
			util.FormatValueFactor(vb[i], "V"),
			util.FormatValueFactor(vr1[i], "V"),
			util.FormatValueFactor(ir1[i], "A"),
			util.FormatValueFactor(vr1[i]*ir1[i], "W"))
	}
}

func must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}
