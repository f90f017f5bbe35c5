// Copyright 2026 The tespy-go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package net

import (
	"github.com/cpmech/gosl/la"

	"github.com/solelysoar/tespy/mfluid"
)

// Mode selects which properties and parameters are fixed vs free
type Mode int

const (
	Design    Mode = iota // solve for sizing unknowns
	Offdesign             // sizes fixed, operating conditions free
)

func (m Mode) String() string {
	if m == Offdesign {
		return "offdesign"
	}
	return "design"
}

// Status is the Newton controller state
type Status int

const (
	StatInit      Status = iota // not yet iterating
	StatIterating               // assembling and stepping
	StatConverged               // residual norm below tolerance
	StatDiverged                // iteration cap exhausted
	StatSingular                // Jacobian factorisation failed
	StatStalled                 // residual norm stopped improving
)

func (s Status) String() string {
	switch s {
	case StatInit:
		return "init"
	case StatIterating:
		return "iterating"
	case StatConverged:
		return "converged"
	case StatDiverged:
		return "diverged"
	case StatSingular:
		return "singular"
	case StatStalled:
		return "stalled"
	}
	return "?"
}

// Solution is the solver context threaded through every equation and
// derivative call; it replaces process-wide globals.
type Solution struct {

	// configuration for the current solve
	Mode   Mode
	Ev     *mfluid.Evaluator
	Fluids []string // tracked fluids, fixed order
	AllEqs bool     // bypass every staleness throttle

	// feasibility offsets substituted when temperature levels cross in
	// log-mean temperature difference equations; heuristic constants,
	// not physics (see HeatExchanger)
	TdOffsetU float64
	TdOffsetL float64

	// layout
	NumConnVars int // block width per connection: 3 + len(Fluids)
	NumVars     int // total unknowns
	NumCompVars int // trailing component free variables

	// iteration state
	It     int       // current iteration
	Res    la.Vector // global residual [NumVars]
	Jac    *la.Matrix
	Inc    la.Vector // last increment
	Filter []bool    // true: column increment negligible, derivative may be kept

	// history
	Norms  []float64 // residual norm per iteration
	Status Status
}

// Skip tells whether the derivative wrt global column col may be kept
// from the previous iteration
func (o *Solution) Skip(col int) bool {
	if o.AllEqs || o.Filter == nil {
		return false
	}
	return o.Filter[col]
}

// Col returns the global column of (connection, property offset);
// offsets 0, 1, 2 are m, p, h and 3+j the j-th fluid fraction
func (o *Solution) Col(c *Connection, off int) int {
	return c.Loc*o.NumConnVars + off
}

// FluidIndex returns the offset of a fluid inside a connection block
func (o *Solution) FluidIndex(name string) int {
	for j, f := range o.Fluids {
		if f == name {
			return 3 + j
		}
	}
	return -1
}

// Flow builds the evaluator input from a connection's current state
func (o *Solution) Flow(c *Connection) mfluid.Flow {
	return mfluid.Flow{M: c.M.SI, P: c.P.SI, H: c.H.SI, X: c.Fluid.Val}
}
