// Copyright 2026 The tespy-go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package net

import (
	"math"

	"github.com/cpmech/gosl/chk"
)

// HeatExchanger transfers heat between a hot stream (in1/out1) and a
// cold stream (in2/out2) without mixing them.
//
// Mandatory equations: fluid balance per side, mass balance per side,
// one energy balance coupling both sides. Optional: Q, kA, kA_char,
// ttd_u, ttd_l, pr1, pr2, zeta1, zeta2.
//
// The logarithmic-mean temperature difference is singular when the
// terminal temperature differences cross sign. Crossing values are
// replaced by small fixed offsets so the Newton step can keep making
// progress; this is a robustness measure, not physics, and the
// component records that it operated outside the validated range.
type HeatExchanger struct {
	Base
	Q       *Param
	KA      *Param
	KAchar  *Param
	TtdU    *Param
	TtdL    *Param
	Pr1     *Param
	Pr2     *Param
	Zeta1   *Param
	Zeta2   *Param
	TdLog   *Param // diagnostic: converged log-mean temperature difference
	KAchar1 *CharLine
	KAchar2 *CharLine

	// set when the feasibility offsets engaged during the solve
	OutsideRange bool
}

// register component
func init() {
	callocators["heatexchanger"] = func(label string, prms map[string]float64) (Component, error) {
		return NewHeatExchanger(label), nil
	}
}

// NewHeatExchanger returns a new heat exchanger
func NewHeatExchanger(label string) *HeatExchanger {
	o := new(HeatExchanger)
	o.initBase(label, 2, 2)
	o.Q = o.addParam("Q", -1e12, 0)
	o.KA = o.addParam("kA", 0, 1e12)
	o.KAchar = o.addParam("kA_char", 0, 1e12)
	o.TtdU = o.addParam("ttd_u", 0, 1e4)
	o.TtdL = o.addParam("ttd_l", 0, 1e4)
	o.Pr1 = o.addParam("pr1", 0, 1)
	o.Pr2 = o.addParam("pr2", 0, 1)
	o.Zeta1 = o.addParam("zeta1", 0, 1e15)
	o.Zeta2 = o.addParam("zeta2", 0, 1e15)
	o.TdLog = o.addParam("td_log", 0, 1e4)
	o.KAchar1 = DefaultKAchar()
	o.KAchar2 = DefaultKAchar()
	return o
}

// Setup counts equations and precomputes the static rows
func (o *HeatExchanger) Setup(sol *Solution) error {
	nf := len(sol.Fluids)
	neq := 2*nf + 3 // fluid and mass balances per side, one energy balance
	for _, p := range []*Param{o.Q, o.KA, o.KAchar, o.TtdU, o.TtdL, o.Pr1, o.Pr2, o.Zeta1, o.Zeta2} {
		if p.IsVar {
			return chk.Err("component %q: parameter %q cannot be a free variable", o.Lbl, p.Name)
		}
		if p.IsSet {
			neq++
		}
	}
	if err := o.setupBase(sol, neq); err != nil {
		return err
	}
	o.TdLog.Unset() // diagnostic only, never an equation
	o.OutsideRange = false
	k := o.fluidBalanceDeriv(sol, 0)
	o.massBalanceDeriv(sol, k)
	return nil
}

// lmtd computes the log-mean temperature difference, substituting the
// configured offsets when the temperature levels cross
func (o *HeatExchanger) lmtd(sol *Solution) (float64, error) {
	Ti1, err := sol.Ev.TMixPH(sol.Flow(o.Inl[0]))
	if err != nil {
		return 0, err
	}
	Ti2, err := sol.Ev.TMixPH(sol.Flow(o.Inl[1]))
	if err != nil {
		return 0, err
	}
	To1, err := sol.Ev.TMixPH(sol.Flow(o.Outl[0]))
	if err != nil {
		return 0, err
	}
	To2, err := sol.Ev.TMixPH(sol.Flow(o.Outl[1]))
	if err != nil {
		return 0, err
	}
	d1, d2 := sol.TdOffsetU, sol.TdOffsetL
	if Ti1 <= To2 {
		Ti1 = To2 + d1
		o.OutsideRange = true
	}
	if To1 <= Ti2 {
		To1 = Ti2 + d2
		o.OutsideRange = true
	}
	du := Ti1 - To2 // upper terminal difference
	dl := To1 - Ti2 // lower terminal difference
	if math.Abs(du-dl) < 1e-12 {
		return du, nil
	}
	return (dl - du) / math.Log(dl/du), nil
}

// kaRes is the residual of the fixed-kA equation
func (o *HeatExchanger) kaRes(sol *Solution, ka float64) (float64, error) {
	td, err := o.lmtd(sol)
	if err != nil {
		return 0, err
	}
	return o.Inl[0].M.SI*(o.Outl[0].H.SI-o.Inl[0].H.SI) + ka*td, nil
}

// kaCharRes is the residual of the characteristic-scaled kA equation;
// the design-point kA is rescaled by the mass flow ratio characteristics
func (o *HeatExchanger) kaCharRes(sol *Solution) (float64, error) {
	td, err := o.lmtd(sol)
	if err != nil {
		return 0, err
	}
	fka1, fka2 := 1.0, 1.0
	if d := o.Inl[0].M.Design; d != 0 {
		fka1 = o.KAchar1.Evaluate(o.Inl[0].M.SI / d)
	}
	if d := o.Inl[1].M.Design; d != 0 {
		fka2 = o.KAchar2.Evaluate(o.Inl[1].M.SI / d)
	}
	fka := 2.0 / (1.0/fka1 + 1.0/fka2)
	return o.Inl[0].M.SI*(o.Outl[0].H.SI-o.Inl[0].H.SI) + o.KAchar.Design*fka*td, nil
}

// ttdURes is the upper terminal temperature difference residual
func (o *HeatExchanger) ttdURes(sol *Solution) (float64, error) {
	Ti1, err := sol.Ev.TMixPH(sol.Flow(o.Inl[0]))
	if err != nil {
		return 0, err
	}
	To2, err := sol.Ev.TMixPH(sol.Flow(o.Outl[1]))
	if err != nil {
		return 0, err
	}
	return o.TtdU.Val - Ti1 + To2, nil
}

// ttdLRes is the lower terminal temperature difference residual
func (o *HeatExchanger) ttdLRes(sol *Solution) (float64, error) {
	To1, err := sol.Ev.TMixPH(sol.Flow(o.Outl[0]))
	if err != nil {
		return 0, err
	}
	Ti2, err := sol.Ev.TMixPH(sol.Flow(o.Inl[1]))
	if err != nil {
		return 0, err
	}
	return o.TtdL.Val - To1 + Ti2, nil
}

// Equations computes the residual block
func (o *HeatExchanger) Equations(sol *Solution) error {
	k := o.fluidBalance(sol, 0)
	k = o.massBalance(k)

	// energy balance
	o.res[k] = o.Inl[0].M.SI*(o.Outl[0].H.SI-o.Inl[0].H.SI) +
		o.Inl[1].M.SI*(o.Outl[1].H.SI-o.Inl[1].H.SI)
	k++

	if o.Q.IsSet {
		o.res[k] = o.Inl[0].M.SI*(o.Outl[0].H.SI-o.Inl[0].H.SI) - o.Q.Val
		k++
	}
	if o.KA.IsSet {
		if o.stale.Refresh(sol.It, o.res[k], sol.AllEqs) {
			r, err := o.kaRes(sol, o.KA.Val)
			if err != nil {
				return err
			}
			o.res[k] = r
		}
		k++
	}
	if o.KAchar.IsSet {
		if o.stale.Refresh(sol.It, o.res[k], sol.AllEqs) {
			r, err := o.kaCharRes(sol)
			if err != nil {
				return err
			}
			o.res[k] = r
		}
		k++
	}
	if o.TtdU.IsSet {
		r, err := o.ttdURes(sol)
		if err != nil {
			return err
		}
		o.res[k] = r
		k++
	}
	if o.TtdL.IsSet {
		r, err := o.ttdLRes(sol)
		if err != nil {
			return err
		}
		o.res[k] = r
		k++
	}
	if o.Pr1.IsSet {
		o.res[k] = o.Pr1.Val*o.Inl[0].P.SI - o.Outl[0].P.SI
		k++
	}
	if o.Pr2.IsSet {
		o.res[k] = o.Pr2.Val*o.Inl[1].P.SI - o.Outl[1].P.SI
		k++
	}
	if o.Zeta1.IsSet {
		if o.stale.Refresh(sol.It, o.res[k], sol.AllEqs) {
			r, err := o.zetaRes(sol, o.Zeta1.Val, 0, 0)
			if err != nil {
				return err
			}
			o.res[k] = r
		}
		k++
	}
	if o.Zeta2.IsSet {
		if o.stale.Refresh(sol.It, o.res[k], sol.AllEqs) {
			r, err := o.zetaRes(sol, o.Zeta2.Val, 1, 1)
			if err != nil {
				return err
			}
			o.res[k] = r
		}
		k++
	}
	return nil
}

// fdRow fills row k with numeric derivatives of f wrt the p and h
// columns of the given local connections (and m when withM is set)
func (o *HeatExchanger) fdRow(sol *Solution, f func() (float64, error), k int, locs []int, withM bool) error {
	all := o.Conns()
	for _, i := range locs {
		c := all[i]
		if withM && !sol.Skip(sol.Col(c, 0)) {
			d, err := NumericDeriv(f, &c.M.SI)
			if err != nil {
				return err
			}
			o.jac.Set(k, o.col(sol, i, 0), d)
		}
		if !sol.Skip(sol.Col(c, 1)) {
			d, err := NumericDeriv(f, &c.P.SI)
			if err != nil {
				return err
			}
			o.jac.Set(k, o.col(sol, i, 1), d)
		}
		if !sol.Skip(sol.Col(c, 2)) {
			d, err := NumericDeriv(f, &c.H.SI)
			if err != nil {
				return err
			}
			o.jac.Set(k, o.col(sol, i, 2), d)
		}
	}
	return nil
}

// Derivatives computes the Jacobian block
func (o *HeatExchanger) Derivatives(sol *Solution) error {
	nf := len(sol.Fluids)
	k := 2*nf + 2 // fluid and mass rows are static

	// energy balance
	for i := 0; i < 2; i++ {
		o.jac.Set(k, o.col(sol, i, 0), o.Outl[i].H.SI-o.Inl[i].H.SI)
		o.jac.Set(k, o.col(sol, i, 2), -o.Inl[i].M.SI)
	}
	o.jac.Set(k, o.col(sol, 2, 2), o.Inl[0].M.SI)
	o.jac.Set(k, o.col(sol, 3, 2), o.Inl[1].M.SI)
	k++

	if o.Q.IsSet {
		o.jac.Set(k, o.col(sol, 0, 0), o.Outl[0].H.SI-o.Inl[0].H.SI)
		o.jac.Set(k, o.col(sol, 0, 2), -o.Inl[0].M.SI)
		o.jac.Set(k, o.col(sol, 2, 2), o.Inl[0].M.SI)
		k++
	}
	if o.KA.IsSet {
		f := func() (float64, error) { return o.kaRes(sol, o.KA.Val) }
		o.jac.Set(k, o.col(sol, 0, 0), o.Outl[0].H.SI-o.Inl[0].H.SI)
		if err := o.fdRow(sol, f, k, []int{0, 1, 2, 3}, false); err != nil {
			return err
		}
		k++
	}
	if o.KAchar.IsSet {
		f := func() (float64, error) { return o.kaCharRes(sol) }
		if err := o.fdRow(sol, f, k, []int{0, 1, 2, 3}, true); err != nil {
			return err
		}
		k++
	}
	if o.TtdU.IsSet {
		if err := o.chainTempRow(sol, k, 0, -1); err != nil { // -dT(in1)
			return err
		}
		if err := o.chainTempRow(sol, k, 3, +1); err != nil { // +dT(out2)
			return err
		}
		k++
	}
	if o.TtdL.IsSet {
		if err := o.chainTempRow(sol, k, 2, -1); err != nil { // -dT(out1)
			return err
		}
		if err := o.chainTempRow(sol, k, 1, +1); err != nil { // +dT(in2)
			return err
		}
		k++
	}
	if o.Pr1.IsSet {
		o.jac.Set(k, o.col(sol, 0, 1), o.Pr1.Val)
		o.jac.Set(k, o.col(sol, 2, 1), -1)
		k++
	}
	if o.Pr2.IsSet {
		o.jac.Set(k, o.col(sol, 1, 1), o.Pr2.Val)
		o.jac.Set(k, o.col(sol, 3, 1), -1)
		k++
	}
	if o.Zeta1.IsSet {
		if err := o.zetaDeriv(sol, o.Zeta1, k, 0, 0); err != nil {
			return err
		}
		k++
	}
	if o.Zeta2.IsSet {
		if err := o.zetaDeriv(sol, o.Zeta2, k, 1, 1); err != nil {
			return err
		}
		k++
	}
	return nil
}

// chainTempRow adds sign * ∂T/∂(p, h) of local connection i to row k
func (o *HeatExchanger) chainTempRow(sol *Solution, k, i int, sign float64) error {
	c := o.Conns()[i]
	fl := sol.Flow(c)
	dTdp, err := sol.Ev.DTdp(fl)
	if err != nil {
		return err
	}
	dTdh, err := sol.Ev.DTdh(fl)
	if err != nil {
		return err
	}
	o.jac.Set(k, o.col(sol, i, 1), sign*dTdp)
	o.jac.Set(k, o.col(sol, i, 2), sign*dTdh)
	return nil
}

// EnergyFlow returns the heat transferred to the hot side (negative)
func (o *HeatExchanger) EnergyFlow() float64 {
	return o.Inl[0].M.SI * (o.Outl[0].H.SI - o.Inl[0].H.SI)
}

// Finalize writes back duty, terminal differences, pressure ratios and
// the converged log-mean temperature difference
func (o *HeatExchanger) Finalize(sol *Solution) error {
	if !o.Q.IsSet {
		o.Q.Val = o.EnergyFlow()
	}
	td, err := o.lmtd(sol)
	if err == nil {
		o.TdLog.Val = td
		if !o.KA.IsSet && td > 0 {
			o.KA.Val = -o.EnergyFlow() / td
		}
	}
	if !o.Pr1.IsSet {
		o.Pr1.Val = o.Outl[0].P.SI / o.Inl[0].P.SI
	}
	if !o.Pr2.IsSet {
		o.Pr2.Val = o.Outl[1].P.SI / o.Inl[1].P.SI
	}
	Ti1, err1 := sol.Ev.TMixPH(sol.Flow(o.Inl[0]))
	Ti2, err2 := sol.Ev.TMixPH(sol.Flow(o.Inl[1]))
	To1, err3 := sol.Ev.TMixPH(sol.Flow(o.Outl[0]))
	To2, err4 := sol.Ev.TMixPH(sol.Flow(o.Outl[1]))
	if err1 == nil && err2 == nil && err3 == nil && err4 == nil {
		if !o.TtdU.IsSet {
			o.TtdU.Val = Ti1 - To2
		}
		if !o.TtdL.IsSet {
			o.TtdL.Val = To1 - Ti2
		}
	}
	return nil
}

// Guess seeds plausible enthalpies per port
func (o *HeatExchanger) Guess(c *Connection, key PropKey) float64 {
	switch key {
	case Pres:
		return 1e5
	case Enth:
		switch c {
		case o.Inl[0]:
			return 5e5
		case o.Outl[0]:
			return 2e5
		case o.Inl[1]:
			return 1e5
		case o.Outl[1]:
			return 3e5
		}
	}
	return 0
}
