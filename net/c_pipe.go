// Copyright 2026 The tespy-go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package net

import (
	"math"
)

// Pipe is a single-stream duct with optional heat transfer and
// pressure drop models.
//
// Mandatory equations: fluid balance, mass balance. Optional: Q, pr,
// zeta as direct parameters, plus two grouped models that emit one
// equation each when fully specified:
//   hydro_group  (D, L, lambda) -- Darcy-type friction pressure drop;
//                                  D may be a solver variable
//   energy_group (kA, Tamb)     -- ambient heat loss over a log-mean
//                                  temperature difference
// A partially specified group is a configuration error.
type Pipe struct {
	Base
	Q      *Param
	Pr     *Param
	Zeta   *Param
	D      *Param
	L      *Param
	Lambda *Param
	KA     *Param
	Tamb   *Param

	hydro  *ParamGroup
	energy *ParamGroup

	OutsideRange bool // ambient lmtd feasibility offset engaged
}

// register component
func init() {
	callocators["pipe"] = func(label string, prms map[string]float64) (Component, error) {
		return NewPipe(label), nil
	}
}

// NewPipe returns a new pipe
func NewPipe(label string) *Pipe {
	o := new(Pipe)
	o.initBase(label, 1, 1)
	o.Q = o.addParam("Q", -1e12, 1e12)
	o.Pr = o.addParam("pr", 0, 1)
	o.Zeta = o.addParam("zeta", 0, 1e15)
	o.D = o.addParam("D", 1e-3, 2.0)
	o.L = o.addParam("L", 0, 1e6)
	o.Lambda = o.addParam("lambda", 1e-4, 1.0)
	o.KA = o.addParam("kA", 0, 1e12)
	o.Tamb = o.addParam("Tamb", 0, 1e4)
	o.hydro = o.addGroup("hydro_group", o.D, o.L, o.Lambda)
	o.energy = o.addGroup("energy_group", o.KA, o.Tamb)
	return o
}

// Setup counts equations and precomputes the static rows
func (o *Pipe) Setup(sol *Solution) error {
	nf := len(sol.Fluids)
	if err := o.setupBase(sol, nf+1+o.nSetParams()); err != nil {
		return err
	}
	o.OutsideRange = false
	k := o.fluidBalanceDeriv(sol, 0)
	o.massBalanceDeriv(sol, k)
	return nil
}

// frictionRes is the Darcy-type pressure drop residual:
//  0 = (p_in - p_out) - lambda (L/D) 8 m |m| v mean / (pi^2 D^4)
func (o *Pipe) frictionRes(sol *Solution) (float64, error) {
	in, out := o.Inl[0], o.Outl[0]
	vi, err := sol.Ev.VMixPH(sol.Flow(in))
	if err != nil {
		return 0, err
	}
	vo, err := sol.Ev.VMixPH(sol.Flow(out))
	if err != nil {
		return 0, err
	}
	m := in.M.SI
	am := math.Abs(m)
	const pi2 = 9.869604401089358
	d4 := o.D.Val * o.D.Val * o.D.Val * o.D.Val
	drop := o.Lambda.Val * (o.L.Val / o.D.Val) * 8.0 * m * am * (vi + vo) / 2.0 / (pi2 * d4)
	return (in.P.SI - out.P.SI) - drop, nil
}

// lossRes is the ambient heat loss residual:
//  0 = m (h_out - h_in) + kA lmtd(T_in - Tamb, T_out - Tamb)
func (o *Pipe) lossRes(sol *Solution) (float64, error) {
	in, out := o.Inl[0], o.Outl[0]
	Ti, err := sol.Ev.TMixPH(sol.Flow(in))
	if err != nil {
		return 0, err
	}
	To, err := sol.Ev.TMixPH(sol.Flow(out))
	if err != nil {
		return 0, err
	}
	tdi := Ti - o.Tamb.Val
	tdo := To - o.Tamb.Val
	if tdi*tdo < 0 || tdi == 0 || tdo == 0 {
		// stream crossed the ambient level; keep a feasible lmtd
		if tdi <= 0 {
			tdi = sol.TdOffsetU
		}
		if tdo <= 0 {
			tdo = sol.TdOffsetL
		}
		o.OutsideRange = true
	}
	var td float64
	if math.Abs(tdi-tdo) < 1e-12 {
		td = tdi
	} else {
		td = (tdi - tdo) / math.Log(tdi/tdo)
	}
	return in.M.SI*(out.H.SI-in.H.SI) + o.KA.Val*td, nil
}

// Equations computes the residual block
func (o *Pipe) Equations(sol *Solution) error {
	k := o.fluidBalance(sol, 0)
	k = o.massBalance(k)
	in, out := o.Inl[0], o.Outl[0]
	if o.Q.IsSet {
		o.res[k] = in.M.SI*(out.H.SI-in.H.SI) - o.Q.Val
		k++
	}
	if o.Pr.IsSet {
		o.res[k] = o.Pr.Val*in.P.SI - out.P.SI
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
	if o.hydro.IsSet {
		if o.stale.Refresh(sol.It, o.res[k], sol.AllEqs) {
			r, err := o.frictionRes(sol)
			if err != nil {
				return err
			}
			o.res[k] = r
		}
		k++
	}
	if o.energy.IsSet {
		if o.stale.Refresh(sol.It, o.res[k], sol.AllEqs) {
			r, err := o.lossRes(sol)
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
func (o *Pipe) Derivatives(sol *Solution) error {
	nf := len(sol.Fluids)
	k := nf + 1
	in, out := o.Inl[0], o.Outl[0]
	if o.Q.IsSet {
		o.jac.Set(k, o.col(sol, 0, 0), out.H.SI-in.H.SI)
		o.jac.Set(k, o.col(sol, 0, 2), -in.M.SI)
		o.jac.Set(k, o.col(sol, 1, 2), in.M.SI)
		k++
	}
	if o.Pr.IsSet {
		o.jac.Set(k, o.col(sol, 0, 1), o.Pr.Val)
		o.jac.Set(k, o.col(sol, 1, 1), -1)
		if o.Pr.IsVar {
			o.jac.Set(k, o.varCol(sol, o.varIndex(o.Pr)), in.P.SI)
		}
		k++
	}
	if o.Zeta.IsSet {
		if err := o.zetaDeriv(sol, o.Zeta, k, 0, 0); err != nil {
			return err
		}
		k++
	}
	if o.hydro.IsSet {
		if err := o.fdScalarRow(sol, k, o.frictionRes, o.D); err != nil {
			return err
		}
		k++
	}
	if o.energy.IsSet {
		if err := o.fdScalarRow(sol, k, o.lossRes, o.KA); err != nil {
			return err
		}
		k++
	}
	return nil
}

// fdScalarRow fills row k with numeric derivatives of f wrt both
// connection scalars and, when v is a solver variable, wrt v
func (o *Pipe) fdScalarRow(sol *Solution, k int, f func(*Solution) (float64, error), v *Param) error {
	in, out := o.Inl[0], o.Outl[0]
	g := func() (float64, error) { return f(sol) }
	type gslot struct {
		x    *float64
		col  int
		gcol int
	}
	slots := []gslot{
		{&in.M.SI, o.col(sol, 0, 0), sol.Col(in, 0)},
		{&in.P.SI, o.col(sol, 0, 1), sol.Col(in, 1)},
		{&in.H.SI, o.col(sol, 0, 2), sol.Col(in, 2)},
		{&out.P.SI, o.col(sol, 1, 1), sol.Col(out, 1)},
		{&out.H.SI, o.col(sol, 1, 2), sol.Col(out, 2)},
	}
	for _, s := range slots {
		if sol.Skip(s.gcol) {
			continue
		}
		d, err := NumericDeriv(g, s.x)
		if err != nil {
			return err
		}
		o.jac.Set(k, s.col, d)
	}
	if v.IsVar {
		d, err := NumericDeriv(g, &v.Val)
		if err != nil {
			return err
		}
		o.jac.Set(k, o.varCol(sol, o.varIndex(v)), d)
	}
	return nil
}

// EnergyFlow returns the heat transferred to the stream
func (o *Pipe) EnergyFlow() float64 {
	return o.Inl[0].M.SI * (o.Outl[0].H.SI - o.Inl[0].H.SI)
}

// Finalize writes back duty and pressure ratio
func (o *Pipe) Finalize(sol *Solution) error {
	if !o.Q.IsSet {
		o.Q.Val = o.EnergyFlow()
	}
	if !o.Pr.IsSet {
		o.Pr.Val = o.Outl[0].P.SI / o.Inl[0].P.SI
	}
	return nil
}

// Guess seeds generic stream conditions
func (o *Pipe) Guess(c *Connection, key PropKey) float64 {
	switch key {
	case Pres:
		return 1e5
	case Enth:
		return 3e5
	}
	return 0
}
