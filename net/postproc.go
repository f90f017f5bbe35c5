// Copyright 2026 The tespy-go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package net

import (
	"math"

	"github.com/cpmech/gosl/io"

	"github.com/solelysoar/tespy/mfluid"
)

// postprocess runs after convergence: derived connection properties,
// component diagnostics, bus totals and the design point record
func postprocess(nw *Network, sol *Solution) error {
	for _, c := range nw.Conns {
		if err := derivedProps(sol, c); err != nil {
			return err
		}
		c.GoodVals = true
	}
	for _, comp := range nw.Comps {
		if err := comp.Finalize(sol); err != nil {
			return err
		}
	}
	for _, b := range nw.Busses {
		b.Aggregate(sol)
	}
	if sol.Mode == Design {
		recordDesign(nw, sol)
	}
	return nil
}

// derivedProps fills the non-primary property records of a connection
// from the converged (m, p, h, x) state
func derivedProps(sol *Solution, c *Connection) error {
	fl := sol.Flow(c)

	T, err := sol.Ev.TMixPH(fl)
	if err != nil {
		return err
	}
	c.T.SI = T

	v, err := sol.Ev.VMixPH(fl)
	if err != nil {
		return err
	}
	c.V.SI = v * c.M.SI

	s, err := sol.Ev.SMixPH(fl)
	if err != nil {
		return err
	}
	c.S.SI = s

	// quality and boiling point offset are pure-fluid properties
	if single := sol.Ev.Single(c.Fluid.Val); single != "" {
		if q, err := sol.Ev.QPH(fl); err == nil {
			c.X.SI = q
		} else {
			c.X.SI = math.NaN()
		}
		if Ts, err := sol.Ev.TBoil(fl); err == nil {
			c.Td.SI = T - Ts
		} else {
			c.Td.SI = math.NaN()
		}
	} else {
		c.X.SI = math.NaN()
		c.Td.SI = math.NaN()
	}

	// user-unit values
	for _, key := range []PropKey{Mdot, Pres, Enth, Temp, Qual, Vdot, TdBp, Entr} {
		p := c.prop(key)
		if val, cerr := fromSI(key, p.SI, p.Unit); cerr == nil {
			p.Val = val
		} else {
			p.Val, p.Unit = p.SI, ""
		}
	}
	return nil
}

// Report prints the converged connection and bus tables
func Report(nw *Network, sol *Solution) {
	io.Pf("\n%-16s%12s%12s%12s%12s\n", "connection", "m [kg/s]", "p [Pa]", "h [J/kg]", "T [K]")
	for _, c := range nw.Conns {
		io.Pf("%-16s%12.4e%12.4e%12.4e%12.4e\n", c.Label, c.M.SI, c.P.SI, c.H.SI, c.T.SI)
	}
	if len(nw.Busses) > 0 {
		io.Pf("\n%-16s%14s\n", "bus", "total [W]")
		for _, b := range nw.Busses {
			io.Pf("%-16s%14.6e\n", b.Label, b.Total)
		}
	}
	io.Pf("\nstatus: %v after %d iteration(s)\n", sol.Status, sol.It)
}

// FlowOf is a convenience for tests and external diagnostics
func FlowOf(c *Connection) mfluid.Flow {
	return mfluid.Flow{M: c.M.SI, P: c.P.SI, H: c.H.SI, X: c.Fluid.Val}
}
