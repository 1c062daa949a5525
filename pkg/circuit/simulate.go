package circuit

import "math"

// computeDCSolution implements spec.md §4.5: one matrix evaluate-and-solve
// with modulators applied once at t=0, then DC priming of every
// integrating component whose initial condition was not user-specified,
// then a save snapshot.
func (c *Circuit) computeDCSolution() error {
	c.mode = ModeDC
	if c.dirty {
		if err := c.build(); err != nil {
			return err
		}
	}
	for _, m := range c.modulators {
		m.Apply()
	}
	if err := c.solveMatrix(); err != nil {
		return err
	}
	for _, ic := range c.intComps {
		if !ic.InitialCondSpecified() {
			ic.GenInitialCond()
		}
	}
	c.saveStates()
	return nil
}

// systemDeriv is the ODE derivative callback described in spec.md §4.6. It
// brackets its own t/state mutation with a save/restore so the callback is
// observably pure: RK sub-stages invoke it at (t, y) points that are not
// the step's committed result.
func (c *Circuit) systemDeriv(t float64, y, dydt []float64) {
	savedT := c.t
	savedState := append([]float64(nil), c.odeState...)

	c.t = t
	copy(c.odeState, y)

	for _, m := range c.modulators {
		if m.Continuous() {
			m.Apply()
		}
	}

	if err := c.solveMatrix(); err != nil {
		c.derivErr = err
	}

	for i, de := range c.dydtExprs {
		v, err := de.Eval()
		if err != nil {
			if c.derivErr == nil {
				c.derivErr = err
			}
			v = 0
		}
		dydt[i] = v
	}

	c.t = savedT
	copy(c.odeState, savedState)
}

// stepOnce advances the ODE state by h starting from the circuit's current
// (t, odeState), retrying with halved h on an out-of-tolerance step per
// spec.md §4.7. Returns the step size actually committed.
func (c *Circuit) stepOnce(h float64) (float64, error) {
	dydtOut := make([]float64, len(c.odeState))
	yErr := make([]float64, len(c.odeState))

	for {
		yBefore := append([]float64(nil), c.odeState...)
		c.dt = h
		c.derivErr = nil

		ok := c.stepperI.Apply(c.t, h, c.odeState, nil, dydtOut, yErr, c.systemDeriv)
		if c.derivErr != nil {
			copy(c.odeState, yBefore)
			return 0, c.derivErr
		}
		if !ok {
			copy(c.odeState, yBefore)
			return 0, ErrStepperInternal
		}

		if c.ctrl.Accept(c.odeState, yErr) {
			factor := c.ctrl.Hadjust(c.odeState, yErr)
			newH := h * factor
			if newH > c.maxStep {
				newH = c.maxStep
			}
			if newH < c.minStep {
				newH = c.minStep
			}
			c.driverH = newH
			return h, nil
		}

		copy(c.odeState, yBefore)
		h /= 2
		if h < c.minStep {
			return 0, ErrNonConvergence
		}
	}
}

// run is the shared implementation of SimToTime and SimSingleStep,
// following spec.md §4.7's state machine exactly. maxDt <= 0 means
// unbounded (SimToTime); singleStep limits the transient loop to one
// iteration.
func (c *Circuit) run(stop float64, singleStep bool, maxDt float64) error {
	if c.mode == ModeDC {
		if err := c.computeDCSolution(); err != nil {
			return err
		}
		for _, m := range c.modulators {
			m.Reset()
		}
		c.mode = ModeTransient
		c.dirty = true
		if singleStep {
			return nil
		}
	}

	if c.dirty {
		if err := c.build(); err != nil {
			return err
		}
		for _, m := range c.modulators {
			m.Apply()
		}
		if err := c.solveMatrix(); err != nil {
			return err
		}
	}

	for {
		if !singleStep && c.t+Epsilon >= stop {
			break
		}

		saveTime := c.nextSaveTime()

		if len(c.intComps) > 0 {
			h := c.nextStepDuration()
			if c.t+h > stop {
				h = stop - c.t
			}
			if maxDt > 0 && h > maxDt {
				h = maxDt
			}
			if h < c.minStep {
				h = c.minStep
			}

			committed, err := c.stepOnce(h)
			if err != nil {
				return err
			}
			c.t += committed
		} else {
			eventTime := math.Min(saveTime, c.nextModulatorTime())
			if singleStep && maxDt > 0 && eventTime-c.t > maxDt {
				eventTime = c.t + maxDt
			}
			if eventTime > stop {
				eventTime = stop
			}
			c.t = eventTime
			if err := c.solveMatrix(); err != nil {
				return err
			}
		}

		if epsilonEquals(c.t, saveTime) || c.savePeriod <= 0 {
			c.saveStates()
		}
		for _, m := range c.modulators {
			m.Apply()
		}

		if singleStep {
			break
		}
	}

	return nil
}

// SimToTime advances the simulation to the given absolute time, priming
// the DC solution first if this is the first call (or the first call
// after Reset or a topology change left the circuit in DC mode).
func (c *Circuit) SimToTime(stop float64) error {
	return c.run(stop, false, 0)
}

// SimSingleStep advances the simulation by exactly one loop iteration of
// spec.md §4.7: a DC prime if still in DC mode (returning immediately
// afterward), or one transient step/event otherwise. An optional maxDt
// further bounds the step.
func (c *Circuit) SimSingleStep(maxDt ...float64) error {
	bound := 0.0
	if len(maxDt) > 0 {
		bound = maxDt[0]
	}
	return c.run(math.Inf(1), true, bound)
}
