// Copyright 2026 The tespy-go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package net

// Splitter divides one stream into n identical streams.
//
// Equations: per outlet the composition, pressure and enthalpy follow
// the inlet; one overall mass balance. All rows are static.
type Splitter struct {
	Base
}

// Merge mixes n streams into one.
//
// Equations: one mixing balance per tracked fluid, one overall mass
// balance, pressure equality per inlet and one energy balance.
type Merge struct {
	Base
}

// Separator splits one stream into n streams of differing composition
// at the inlet temperature and pressure.
//
// Equations: one balance per tracked fluid over all outlets, one
// overall mass balance, pressure equality per outlet and temperature
// equality per outlet (derived through the property evaluator).
type Separator struct {
	Base
}

// register components; num_out/num_in defaults to 2
func init() {
	callocators["splitter"] = func(label string, prms map[string]float64) (Component, error) {
		return NewSplitter(label, int(prm(prms, "num_out", 2))), nil
	}
	callocators["merge"] = func(label string, prms map[string]float64) (Component, error) {
		return NewMerge(label, int(prm(prms, "num_in", 2))), nil
	}
	callocators["separator"] = func(label string, prms map[string]float64) (Component, error) {
		return NewSeparator(label, int(prm(prms, "num_out", 2))), nil
	}
}

// prm reads one structural option with a default
func prm(prms map[string]float64, key string, def float64) float64 {
	if prms != nil {
		if v, ok := prms[key]; ok {
			return v
		}
	}
	return def
}

// NewSplitter returns a splitter with nout outlets
func NewSplitter(label string, nout int) *Splitter {
	o := new(Splitter)
	o.initBase(label, 1, nout)
	return o
}

// NewMerge returns a merge with nin inlets
func NewMerge(label string, nin int) *Merge {
	o := new(Merge)
	o.initBase(label, nin, 1)
	return o
}

// NewSeparator returns a separator with nout outlets
func NewSeparator(label string, nout int) *Separator {
	o := new(Separator)
	o.initBase(label, 1, nout)
	return o
}

// Setup counts equations and precomputes the static rows
func (o *Splitter) Setup(sol *Solution) error {
	nf := len(sol.Fluids)
	n := o.nout
	if err := o.setupBase(sol, n*nf+1+2*n); err != nil {
		return err
	}
	k := 0
	// composition follows the inlet
	for i := 0; i < n; i++ {
		for j := range sol.Fluids {
			o.jac.Set(k, o.col(sol, 0, 3+j), 1)
			o.jac.Set(k, o.col(sol, 1+i, 3+j), -1)
			k++
		}
	}
	// overall mass balance
	o.jac.Set(k, o.col(sol, 0, 0), 1)
	for i := 0; i < n; i++ {
		o.jac.Set(k, o.col(sol, 1+i, 0), -1)
	}
	k++
	// pressure and enthalpy equality
	for i := 0; i < n; i++ {
		o.jac.Set(k, o.col(sol, 0, 1), 1)
		o.jac.Set(k, o.col(sol, 1+i, 1), -1)
		k++
	}
	for i := 0; i < n; i++ {
		o.jac.Set(k, o.col(sol, 0, 2), 1)
		o.jac.Set(k, o.col(sol, 1+i, 2), -1)
		k++
	}
	return nil
}

// Equations computes the residual block
func (o *Splitter) Equations(sol *Solution) error {
	in := o.Inl[0]
	k := 0
	for i := 0; i < o.nout; i++ {
		for _, f := range sol.Fluids {
			o.res[k] = in.Fluid.Val[f] - o.Outl[i].Fluid.Val[f]
			k++
		}
	}
	sum := in.M.SI
	for i := 0; i < o.nout; i++ {
		sum -= o.Outl[i].M.SI
	}
	o.res[k] = sum
	k++
	for i := 0; i < o.nout; i++ {
		o.res[k] = in.P.SI - o.Outl[i].P.SI
		k++
	}
	for i := 0; i < o.nout; i++ {
		o.res[k] = in.H.SI - o.Outl[i].H.SI
		k++
	}
	return nil
}

// Derivatives: all splitter rows are static
func (o *Splitter) Derivatives(sol *Solution) error { return nil }

// Setup counts equations and precomputes the static rows
func (o *Merge) Setup(sol *Solution) error {
	nf := len(sol.Fluids)
	n := o.nin
	if err := o.setupBase(sol, nf+1+n+1); err != nil {
		return err
	}
	// mass balance row is static
	k := nf
	for i := 0; i < n; i++ {
		o.jac.Set(k, o.col(sol, i, 0), 1)
	}
	o.jac.Set(k, o.col(sol, n, 0), -1)
	k++
	// pressure equality rows are static
	for i := 0; i < n; i++ {
		o.jac.Set(k, o.col(sol, i, 1), 1)
		o.jac.Set(k, o.col(sol, n, 1), -1)
		k++
	}
	return nil
}

// Equations computes the residual block
func (o *Merge) Equations(sol *Solution) error {
	out := o.Outl[0]
	k := 0
	// mixing balance per fluid
	for _, f := range sol.Fluids {
		r := -out.M.SI * out.Fluid.Val[f]
		for _, in := range o.Inl {
			r += in.M.SI * in.Fluid.Val[f]
		}
		o.res[k] = r
		k++
	}
	// overall mass balance
	r := -out.M.SI
	for _, in := range o.Inl {
		r += in.M.SI
	}
	o.res[k] = r
	k++
	// pressure equality
	for _, in := range o.Inl {
		o.res[k] = in.P.SI - out.P.SI
		k++
	}
	// energy balance
	r = -out.M.SI * out.H.SI
	for _, in := range o.Inl {
		r += in.M.SI * in.H.SI
	}
	o.res[k] = r
	return nil
}

// Derivatives computes the nonlinear mixing rows
func (o *Merge) Derivatives(sol *Solution) error {
	out := o.Outl[0]
	n := o.nin
	k := 0
	for j, f := range sol.Fluids {
		for i, in := range o.Inl {
			o.jac.Set(k, o.col(sol, i, 0), in.Fluid.Val[f])
			o.jac.Set(k, o.col(sol, i, 3+j), in.M.SI)
		}
		o.jac.Set(k, o.col(sol, n, 0), -out.Fluid.Val[f])
		o.jac.Set(k, o.col(sol, n, 3+j), -out.M.SI)
		k++
	}
	k += 1 + n // static mass and pressure rows
	for i, in := range o.Inl {
		o.jac.Set(k, o.col(sol, i, 0), in.H.SI)
		o.jac.Set(k, o.col(sol, i, 2), in.M.SI)
	}
	o.jac.Set(k, o.col(sol, n, 0), -out.H.SI)
	o.jac.Set(k, o.col(sol, n, 2), -out.M.SI)
	return nil
}

// Setup counts equations and precomputes the static rows
func (o *Separator) Setup(sol *Solution) error {
	nf := len(sol.Fluids)
	n := o.nout
	if err := o.setupBase(sol, nf+1+n+n); err != nil {
		return err
	}
	// mass balance row is static
	k := nf
	o.jac.Set(k, o.col(sol, 0, 0), 1)
	for i := 0; i < n; i++ {
		o.jac.Set(k, o.col(sol, 1+i, 0), -1)
	}
	k++
	// pressure equality rows are static
	for i := 0; i < n; i++ {
		o.jac.Set(k, o.col(sol, 0, 1), 1)
		o.jac.Set(k, o.col(sol, 1+i, 1), -1)
		k++
	}
	return nil
}

// Equations computes the residual block
func (o *Separator) Equations(sol *Solution) error {
	in := o.Inl[0]
	k := 0
	// fluid balance over all outlets
	for _, f := range sol.Fluids {
		r := in.M.SI * in.Fluid.Val[f]
		for _, out := range o.Outl {
			r -= out.M.SI * out.Fluid.Val[f]
		}
		o.res[k] = r
		k++
	}
	// overall mass balance
	r := in.M.SI
	for _, out := range o.Outl {
		r -= out.M.SI
	}
	o.res[k] = r
	k++
	// pressure equality
	for _, out := range o.Outl {
		o.res[k] = in.P.SI - out.P.SI
		k++
	}
	// temperature equality (derived property)
	Tin, err := sol.Ev.TMixPH(sol.Flow(in))
	if err != nil {
		return err
	}
	for _, out := range o.Outl {
		Tout, err := sol.Ev.TMixPH(sol.Flow(out))
		if err != nil {
			return err
		}
		o.res[k] = Tin - Tout
		k++
	}
	return nil
}

// Derivatives computes the fluid and temperature rows
func (o *Separator) Derivatives(sol *Solution) error {
	in := o.Inl[0]
	n := o.nout
	k := 0
	for j, f := range sol.Fluids {
		o.jac.Set(k, o.col(sol, 0, 0), in.Fluid.Val[f])
		o.jac.Set(k, o.col(sol, 0, 3+j), in.M.SI)
		for i, out := range o.Outl {
			o.jac.Set(k, o.col(sol, 1+i, 0), -out.Fluid.Val[f])
			o.jac.Set(k, o.col(sol, 1+i, 3+j), -out.M.SI)
		}
		k++
	}
	k += 1 + n // static mass and pressure rows

	// temperature equality through the evaluator partials
	flIn := sol.Flow(in)
	dTpIn, err := sol.Ev.DTdp(flIn)
	if err != nil {
		return err
	}
	dThIn, err := sol.Ev.DTdh(flIn)
	if err != nil {
		return err
	}
	dTxIn, err := sol.Ev.DTdfluid(flIn)
	if err != nil {
		return err
	}
	for i, out := range o.Outl {
		fl := sol.Flow(out)
		dTp, err := sol.Ev.DTdp(fl)
		if err != nil {
			return err
		}
		dTh, err := sol.Ev.DTdh(fl)
		if err != nil {
			return err
		}
		dTx, err := sol.Ev.DTdfluid(fl)
		if err != nil {
			return err
		}
		o.jac.Set(k, o.col(sol, 0, 1), dTpIn)
		o.jac.Set(k, o.col(sol, 0, 2), dThIn)
		o.jac.Set(k, o.col(sol, 1+i, 1), -dTp)
		o.jac.Set(k, o.col(sol, 1+i, 2), -dTh)
		for j, f := range sol.Fluids {
			o.jac.Set(k, o.col(sol, 0, 3+j), dTxIn[f])
			o.jac.Set(k, o.col(sol, 1+i, 3+j), -dTx[f])
		}
		k++
	}
	return nil
}
