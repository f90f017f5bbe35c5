// Copyright 2026 The tespy-go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package net

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/la"
)

// Component defines what process components must calculate. The number
// of equations is a pure function of which optional parameters are set
// and may not change within one solve.
type Component interface {

	// information and initialisation
	Label() string
	NIn() int                                      // number of inlet ports
	NOut() int                                     // number of outlet ports
	SetConns(inl, outl []*Connection) (err error)  // attach connections in port order
	Conns() []*Connection                          // attached connections, inlets first
	Setup(sol *Solution) (err error)               // validate configuration and count equations
	NumEq() int                                    // equations emitted per iteration
	Vars() []*Param                                // solver free variables owned by this component
	Params() map[string]*Param                     // named parameters

	// called for each iteration
	Equations(sol *Solution) (err error)   // compute residual block
	Derivatives(sol *Solution) (err error) // compute Jacobian block
	Res() []float64                        // residual block [NumEq]
	Jac() *la.Matrix                       // Jacobian block [NumEq][(nin+nout)*NumConnVars + len(Vars)]

	// seeding, busses and post-processing
	Guess(c *Connection, key PropKey) float64 // starting value for an unknown [SI]; 0 means no opinion
	EnergyFlow() float64                      // energy transfer for bus aggregation [W]
	Finalize(sol *Solution) (err error)       // write back diagnostic parameters after convergence

	// design/offdesign switching
	SetDesignParams(design, offdesign []string)
	DesignParams() (design, offdesign []string)
}

// NewComponent returns a new component from its type name; e.g.
// "turbine", "heatexchanger", "splitter". Structural options (e.g. the
// number of splitter outlets) come from prms.
func NewComponent(typ, label string, prms map[string]float64) (Component, error) {
	allocator, ok := callocators[typ]
	if !ok {
		return nil, chk.Err("cannot get allocator for component {type=%q, label=%q}", typ, label)
	}
	return allocator(label, prms)
}

// callocators holds all available components; typeName => allocator
var callocators = make(map[string]func(label string, prms map[string]float64) (Component, error))

// Base implements the bookkeeping shared by all components
type Base struct {
	Lbl  string
	Inl  []*Connection
	Outl []*Connection

	// parameters
	prms   map[string]*Param
	groups []*ParamGroup
	vars   []*Param

	// design/offdesign parameter names
	design    []string
	offdesign []string

	// equation block
	neq   int
	res   []float64
	jac   *la.Matrix
	stale StalePolicy

	nin, nout int
}

// initBase prepares the shared bookkeeping
func (o *Base) initBase(label string, nin, nout int) {
	o.Lbl = label
	o.nin, o.nout = nin, nout
	o.prms = make(map[string]*Param)
	o.stale = StalePolicy{Every: 4, ResTol: 1e-8}
}

// addParam registers one named parameter with bounds
func (o *Base) addParam(name string, min, max float64) *Param {
	p := newParam(name, min, max)
	o.prms[name] = p
	return p
}

// addGroup registers a grouped parameter set
func (o *Base) addGroup(name string, elements ...*Param) *ParamGroup {
	g := &ParamGroup{Name: name, Elements: elements}
	for _, p := range elements {
		p.grouped = true
	}
	o.groups = append(o.groups, g)
	return g
}

func (o *Base) Label() string { return o.Lbl }
func (o *Base) NIn() int      { return o.nin }
func (o *Base) NOut() int     { return o.nout }

// SetConns attaches connections in port order, inlets first
func (o *Base) SetConns(inl, outl []*Connection) error {
	if len(inl) != o.nin || len(outl) != o.nout {
		return chk.Err("component %q needs %d inlet(s) and %d outlet(s); got %d and %d", o.Lbl, o.nin, o.nout, len(inl), len(outl))
	}
	o.Inl, o.Outl = inl, outl
	return nil
}

// Conns returns attached connections, inlets first
func (o *Base) Conns() []*Connection {
	all := make([]*Connection, 0, len(o.Inl)+len(o.Outl))
	all = append(all, o.Inl...)
	return append(all, o.Outl...)
}

func (o *Base) NumEq() int               { return o.neq }
func (o *Base) Vars() []*Param           { return o.vars }
func (o *Base) Params() map[string]*Param { return o.prms }
func (o *Base) Res() []float64           { return o.res }
func (o *Base) Jac() *la.Matrix          { return o.jac }

// setupBase validates groups, collects free variables and allocates
// the equation block for neq equations
func (o *Base) setupBase(sol *Solution, neq int) error {
	for _, g := range o.groups {
		if err := g.check(o.Lbl); err != nil {
			return err
		}
	}
	o.vars = o.vars[:0]
	for _, name := range o.paramNames() {
		if p := o.prms[name]; p.IsVar {
			o.vars = append(o.vars, p)
		}
	}
	o.neq = neq
	ncols := (o.nin+o.nout)*sol.NumConnVars + len(o.vars)
	o.res = make([]float64, neq)
	o.jac = la.NewMatrix(neq, ncols)
	return nil
}

// paramNames returns parameter names in deterministic order
func (o *Base) paramNames() []string {
	names := make([]string, 0, len(o.prms))
	for n := range o.prms {
		names = append(names, n)
	}
	// insertion order is not stable for maps; sort for reproducible layout
	for i := 1; i < len(names); i++ {
		for j := i; j > 0 && names[j] < names[j-1]; j-- {
			names[j], names[j-1] = names[j-1], names[j]
		}
	}
	return names
}

// nSetParams counts optional parameters emitting one equation each:
// set parameters outside groups (variable parameters included, since
// their equation stays while the value becomes an unknown) plus one
// per fully specified group
func (o *Base) nSetParams() (n int) {
	for _, name := range o.paramNames() {
		p := o.prms[name]
		if p.IsSet && !p.grouped {
			n++
		}
	}
	for _, g := range o.groups {
		if g.IsSet {
			n++
		}
	}
	return
}

// col returns the block-local column of connection k (inlets first)
// and property offset
func (o *Base) col(sol *Solution, k, off int) int {
	return k*sol.NumConnVars + off
}

// varCol returns the block-local column of the j-th free variable
func (o *Base) varCol(sol *Solution, j int) int {
	return (o.nin+o.nout)*sol.NumConnVars + j
}

// connCol returns the block-local column base of a connection
func (o *Base) connIndex(c *Connection) int {
	for k, cc := range o.Conns() {
		if cc == c {
			return k
		}
	}
	return -1
}

// fluidBalance writes the pairwise fluid balance equations
// x_in_i,f - x_out_i,f = 0 starting at row k; returns next row.
// Derivative rows are static and written by fluidBalanceDeriv.
func (o *Base) fluidBalance(sol *Solution, k int) int {
	for i := 0; i < o.nin; i++ {
		for _, f := range sol.Fluids {
			o.res[k] = o.Inl[i].Fluid.Val[f] - o.Outl[i].Fluid.Val[f]
			k++
		}
	}
	return k
}

// fluidBalanceDeriv writes the static fluid balance derivatives
func (o *Base) fluidBalanceDeriv(sol *Solution, k int) int {
	for i := 0; i < o.nin; i++ {
		for j := range sol.Fluids {
			o.jac.Set(k, o.col(sol, i, 3+j), 1)
			o.jac.Set(k, o.col(sol, o.nin+i, 3+j), -1)
			k++
		}
	}
	return k
}

// massBalance writes the pairwise mass balance m_in_i - m_out_i = 0
func (o *Base) massBalance(k int) int {
	for i := 0; i < o.nin; i++ {
		o.res[k] = o.Inl[i].M.SI - o.Outl[i].M.SI
		k++
	}
	return k
}

// massBalanceDeriv writes the static mass balance derivatives
func (o *Base) massBalanceDeriv(sol *Solution, k int) int {
	for i := 0; i < o.nin; i++ {
		o.jac.Set(k, o.col(sol, i, 0), 1)
		o.jac.Set(k, o.col(sol, o.nin+i, 0), -1)
		k++
	}
	return k
}

// zetaRes computes the residual of a pressure loss coefficient
// equation between inlet i and outlet j:
//  0 = ζ - (p_in - p_out) π² d⁴ / (8 m² v̄)   rearranged as
//  0 = (p_in - p_out) - ζ 8 m |m| v̄ / π²
// using the mean specific volume of inlet and outlet. The |m| factor
// keeps the sign consistent under reversed flow.
func (o *Base) zetaRes(sol *Solution, zeta float64, i, j int) (float64, error) {
	in, out := o.Inl[i], o.Outl[j]
	vi, err := sol.Ev.VMixPH(sol.Flow(in))
	if err != nil {
		return 0, err
	}
	vo, err := sol.Ev.VMixPH(sol.Flow(out))
	if err != nil {
		return 0, err
	}
	m := in.M.SI
	am := m
	if am < 0 {
		am = -am
	}
	const pi2 = 9.869604401089358
	return (in.P.SI - out.P.SI) - zeta*8.0*m*am*(vi+vo)/2.0/pi2, nil
}

// Guess returns no opinion by default
func (o *Base) Guess(c *Connection, key PropKey) float64 { return 0 }

// EnergyFlow returns zero by default; bus-capable components override
func (o *Base) EnergyFlow() float64 { return 0 }

// Finalize does nothing by default
func (o *Base) Finalize(sol *Solution) error { return nil }

// SetDesignParams declares parameter names fixed in design vs offdesign
func (o *Base) SetDesignParams(design, offdesign []string) {
	o.design = design
	o.offdesign = offdesign
}

// DesignParams returns the design/offdesign parameter names
func (o *Base) DesignParams() (design, offdesign []string) {
	return o.design, o.offdesign
}
