// Copyright 2026 The tespy-go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package net

import (
	"math"
)

// Valve is an adiabatic throttle: the enthalpy passes through
// unchanged while the pressure drops.
//
// Mandatory equations: fluid balance, mass balance, h_in - h_out = 0.
// Optional: pr (outlet/inlet pressure ratio), zeta (loss coefficient).
type Valve struct {
	Base
	Pr   *Param
	Zeta *Param
}

// register component
func init() {
	callocators["valve"] = func(label string, prms map[string]float64) (Component, error) {
		return NewValve(label), nil
	}
}

// NewValve returns a new valve
func NewValve(label string) *Valve {
	o := new(Valve)
	o.initBase(label, 1, 1)
	o.Pr = o.addParam("pr", 0, 1)
	o.Zeta = o.addParam("zeta", 0, 1e15)
	return o
}

// Setup counts equations and precomputes the static rows
func (o *Valve) Setup(sol *Solution) error {
	nf := len(sol.Fluids)
	if err := o.setupBase(sol, nf+2+o.nSetParams()); err != nil {
		return err
	}
	k := o.fluidBalanceDeriv(sol, 0)
	k = o.massBalanceDeriv(sol, k)
	// enthalpy pass-through is static as well
	o.jac.Set(k, o.col(sol, 0, 2), 1)
	o.jac.Set(k, o.col(sol, 1, 2), -1)
	return nil
}

// Equations computes the residual block
func (o *Valve) Equations(sol *Solution) error {
	k := o.fluidBalance(sol, 0)
	k = o.massBalance(k)
	o.res[k] = o.Inl[0].H.SI - o.Outl[0].H.SI
	k++
	if o.Pr.IsSet {
		o.res[k] = o.Pr.Val*o.Inl[0].P.SI - o.Outl[0].P.SI
		k++
	}
	if o.Zeta.IsSet {
		if o.stale.Refresh(sol.It, o.res[k], sol.AllEqs) {
			r, err := o.zetaRes(sol, o.Zeta.Val, 0, 0)
			if err != nil {
				return err
			}
			o.res[k] = r
		}
		k++
	}
	return nil
}

// Derivatives computes the Jacobian block
func (o *Valve) Derivatives(sol *Solution) error {
	nf := len(sol.Fluids)
	k := nf + 2 // fluid, mass and enthalpy rows are static
	if o.Pr.IsSet {
		o.jac.Set(k, o.col(sol, 0, 1), o.Pr.Val)
		o.jac.Set(k, o.col(sol, 1, 1), -1)
		if o.Pr.IsVar {
			o.jac.Set(k, o.varCol(sol, o.varIndex(o.Pr)), o.Inl[0].P.SI)
		}
		k++
	}
	if o.Zeta.IsSet {
		if err := o.zetaDeriv(sol, o.Zeta, k, 0, 0); err != nil {
			return err
		}
		k++
	}
	return nil
}

// varIndex returns the position of p among the component's variables
func (o *Base) varIndex(p *Param) int {
	for j, v := range o.vars {
		if v == p {
			return j
		}
	}
	return -1
}

// zetaDeriv fills row k with the numeric derivatives of the loss
// coefficient equation between inlet i and outlet j
func (o *Base) zetaDeriv(sol *Solution, zeta *Param, k, i, j int) error {
	in, out := o.Inl[i], o.Outl[j]
	f := func() (float64, error) { return o.zetaRes(sol, zeta.Val, i, j) }
	type gslot struct {
		x    *float64
		col  int // block-local column
		gcol int // global column, for the staleness filter
	}
	slots := []gslot{
		{&in.M.SI, o.col(sol, i, 0), sol.Col(in, 0)},
		{&in.P.SI, o.col(sol, i, 1), sol.Col(in, 1)},
		{&in.H.SI, o.col(sol, i, 2), sol.Col(in, 2)},
		{&out.P.SI, o.col(sol, o.nin+j, 1), sol.Col(out, 1)},
		{&out.H.SI, o.col(sol, o.nin+j, 2), sol.Col(out, 2)},
	}
	for _, s := range slots {
		if sol.Skip(s.gcol) {
			continue // keep the previous entry
		}
		d, err := NumericDeriv(f, s.x)
		if err != nil {
			return err
		}
		o.jac.Set(k, s.col, d)
	}
	if zeta.IsVar {
		d, err := NumericDeriv(f, &zeta.Val)
		if err != nil {
			return err
		}
		o.jac.Set(k, o.varCol(sol, o.varIndex(zeta)), d)
	}
	return nil
}

// Finalize writes back pressure ratio and loss coefficient
func (o *Valve) Finalize(sol *Solution) error {
	in, out := o.Inl[0], o.Outl[0]
	if !o.Pr.IsSet {
		o.Pr.Val = out.P.SI / in.P.SI
	}
	if !o.Zeta.IsSet {
		vi, err := sol.Ev.VMixPH(sol.Flow(in))
		if err != nil {
			return err
		}
		vo, err := sol.Ev.VMixPH(sol.Flow(out))
		if err != nil {
			return err
		}
		m := in.M.SI
		if am := math.Abs(m); am > 0 {
			const pi2 = 9.869604401089358
			o.Zeta.Val = (in.P.SI - out.P.SI) * pi2 / (8.0 * m * am * (vi + vo) / 2.0)
		}
	}
	return nil
}

// Guess seeds downstream pressure a little below upstream
func (o *Valve) Guess(c *Connection, key PropKey) float64 {
	switch key {
	case Pres:
		return 1e5
	case Enth:
		return 5e5
	}
	return 0
}
