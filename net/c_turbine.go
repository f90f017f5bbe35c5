// Copyright 2026 The tespy-go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package net

// turbomachine implements the shared behaviour of turbines and pumps.
// Mandatory equations: fluid balance, mass balance. The shaft power
// equation P = m (h_out - h_in) is emitted when P is set; the energy
// balance of a work machine always involves the shaft term, so without
// P (or a bus constraint) the enthalpy change must be pinned elsewhere.
// Optional: pr (outlet/inlet pressure ratio).
type turbomachine struct {
	Base
	P  *Param
	Pr *Param
}

// Turbine extracts shaft power from an expanding stream (P < 0)
type Turbine struct {
	turbomachine
}

// Pump adds shaft power to a stream (P > 0)
type Pump struct {
	turbomachine
}

// register components
func init() {
	callocators["turbine"] = func(label string, prms map[string]float64) (Component, error) {
		return NewTurbine(label), nil
	}
	callocators["pump"] = func(label string, prms map[string]float64) (Component, error) {
		return NewPump(label), nil
	}
}

func (o *turbomachine) initMachine(label string, pmin, pmax float64) {
	o.initBase(label, 1, 1)
	o.P = o.addParam("P", pmin, pmax)
	o.Pr = o.addParam("pr", 0, 1e3)
}

// NewTurbine returns a new turbine
func NewTurbine(label string) *Turbine {
	o := new(Turbine)
	o.initMachine(label, -1e12, 0)
	return o
}

// NewPump returns a new pump
func NewPump(label string) *Pump {
	o := new(Pump)
	o.initMachine(label, 0, 1e12)
	return o
}

// Setup counts equations and precomputes the static rows
func (o *turbomachine) Setup(sol *Solution) error {
	nf := len(sol.Fluids)
	if err := o.setupBase(sol, nf+1+o.nSetParams()); err != nil {
		return err
	}
	k := o.fluidBalanceDeriv(sol, 0)
	o.massBalanceDeriv(sol, k)
	return nil
}

// Equations computes the residual block
func (o *turbomachine) Equations(sol *Solution) error {
	k := o.fluidBalance(sol, 0)
	k = o.massBalance(k)
	in, out := o.Inl[0], o.Outl[0]
	if o.P.IsSet {
		o.res[k] = in.M.SI*(out.H.SI-in.H.SI) - o.P.Val
		k++
	}
	if o.Pr.IsSet {
		o.res[k] = o.Pr.Val*in.P.SI - out.P.SI
		k++
	}
	return nil
}

// Derivatives computes the Jacobian block
func (o *turbomachine) Derivatives(sol *Solution) error {
	nf := len(sol.Fluids)
	k := nf + 1
	in := o.Inl[0]
	if o.P.IsSet {
		o.jac.Set(k, o.col(sol, 0, 0), o.Outl[0].H.SI-in.H.SI)
		o.jac.Set(k, o.col(sol, 0, 2), -in.M.SI)
		o.jac.Set(k, o.col(sol, 1, 2), in.M.SI)
		if o.P.IsVar {
			o.jac.Set(k, o.varCol(sol, o.varIndex(o.P)), -1)
		}
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
	return nil
}

// EnergyFlow returns the shaft power transferred to the stream
func (o *turbomachine) EnergyFlow() float64 {
	return o.Inl[0].M.SI * (o.Outl[0].H.SI - o.Inl[0].H.SI)
}

// Finalize writes back shaft power and pressure ratio
func (o *turbomachine) Finalize(sol *Solution) error {
	if !o.P.IsSet || o.P.IsVar {
		o.P.Val = o.EnergyFlow()
	}
	if !o.Pr.IsSet || o.Pr.IsVar {
		o.Pr.Val = o.Outl[0].P.SI / o.Inl[0].P.SI
	}
	return nil
}

// Guess seeds expansion for turbines
func (o *Turbine) Guess(c *Connection, key PropKey) float64 {
	switch key {
	case Pres:
		if c == o.Outl[0] {
			return 5e4
		}
		return 2e6
	case Enth:
		if c == o.Outl[0] {
			return 1.5e6
		}
		return 2.7e6
	}
	return 0
}

// Guess seeds compression for pumps
func (o *Pump) Guess(c *Connection, key PropKey) float64 {
	switch key {
	case Pres:
		if c == o.Outl[0] {
			return 1e6
		}
		return 1e5
	case Enth:
		return 3e5
	}
	return 0
}
