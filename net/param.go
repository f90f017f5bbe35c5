// Copyright 2026 The tespy-go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package net

import (
	"github.com/cpmech/gosl/chk"
)

// Param is one named component parameter. A set parameter contributes
// one equation; a variable parameter (IsVar) instead appends one column
// to the state vector and is resolved by the surrounding system.
type Param struct {
	Name   string
	Val    float64 // current value [SI]
	IsSet  bool    // fixed: emits one equation
	IsVar  bool    // solver free variable: occupies one column
	Min    float64 // lower bound for clamping
	Max    float64 // upper bound for clamping
	Design float64 // stored design-point value
	Char   *CharLine

	grouped bool // member of a ParamGroup; the group emits the equation

	// layout; assigned by the network before iterating
	Col int // global column index when IsVar
}

// newParam returns a parameter with bounds
func newParam(name string, min, max float64) *Param {
	return &Param{Name: name, Min: min, Max: max}
}

// Set fixes the parameter value [SI]
func (o *Param) Set(val float64) {
	o.Val = val
	o.IsSet = true
	o.IsVar = false
}

// SetVar marks the parameter as a solver free variable seeded at val
func (o *Param) SetVar(val float64) {
	o.Val = val
	o.IsSet = true
	o.IsVar = true
}

// Unset frees the parameter
func (o *Param) Unset() {
	o.IsSet = false
	o.IsVar = false
}

// clamp keeps the value within the parameter bounds
func (o *Param) clamp() {
	if o.Max > o.Min {
		if o.Val < o.Min {
			o.Val = o.Min
		} else if o.Val > o.Max {
			o.Val = o.Max
		}
	}
}

// ParamGroup collects parameters that only make sense together; e.g.
// the ambient-loss group of a pipe. A partially specified group is a
// configuration error surfaced before solving.
type ParamGroup struct {
	Name     string
	Elements []*Param
	IsSet    bool
}

// check validates the group: either all elements are set or none
func (o *ParamGroup) check(label string) error {
	o.IsSet = true
	nset := 0
	for _, p := range o.Elements {
		if p.IsSet {
			nset++
		} else {
			o.IsSet = false
		}
	}
	if !o.IsSet && nset > 0 {
		names := ""
		for _, p := range o.Elements {
			names += " " + p.Name
		}
		return chk.Err("component %q: parameter group %q is partially specified; set all of {%s } or none", label, o.Name, names)
	}
	return nil
}

// CharLine is a monotonic lookup table with linear interpolation,
// consumed by characteristic-scaled equations and bus entries.
type CharLine struct {
	X, Y        []float64
	Extrapolate bool // extend end slopes; otherwise clamp to end values
}

// NewCharLine returns a characteristic line; x must be increasing
func NewCharLine(x, y []float64, extrapolate bool) (*CharLine, error) {
	if len(x) != len(y) || len(x) < 2 {
		return nil, chk.Err("characteristic line needs two or more (x, y) pairs; got %d and %d", len(x), len(y))
	}
	for i := 1; i < len(x); i++ {
		if x[i] <= x[i-1] {
			return nil, chk.Err("characteristic line abscissae must be strictly increasing; x[%d]=%g, x[%d]=%g", i-1, x[i-1], i, x[i])
		}
	}
	return &CharLine{X: x, Y: y, Extrapolate: extrapolate}, nil
}

// Evaluate interpolates the line at x
func (o *CharLine) Evaluate(x float64) float64 {
	n := len(o.X)
	if x <= o.X[0] {
		if o.Extrapolate {
			return o.Y[0] + (x-o.X[0])*(o.Y[1]-o.Y[0])/(o.X[1]-o.X[0])
		}
		return o.Y[0]
	}
	if x >= o.X[n-1] {
		if o.Extrapolate {
			return o.Y[n-1] + (x-o.X[n-1])*(o.Y[n-1]-o.Y[n-2])/(o.X[n-1]-o.X[n-2])
		}
		return o.Y[n-1]
	}
	i := 1
	for x > o.X[i] {
		i++
	}
	return o.Y[i-1] + (x-o.X[i-1])*(o.Y[i]-o.Y[i-1])/(o.X[i]-o.X[i-1])
}

// Deriv returns the slope of the line at x
func (o *CharLine) Deriv(x float64) float64 {
	n := len(o.X)
	if x <= o.X[0] {
		if o.Extrapolate {
			return (o.Y[1] - o.Y[0]) / (o.X[1] - o.X[0])
		}
		return 0
	}
	if x >= o.X[n-1] {
		if o.Extrapolate {
			return (o.Y[n-1] - o.Y[n-2]) / (o.X[n-1] - o.X[n-2])
		}
		return 0
	}
	i := 1
	for x > o.X[i] {
		i++
	}
	return (o.Y[i] - o.Y[i-1]) / (o.X[i] - o.X[i-1])
}

// DefaultKAchar is the characteristic used by kA-scaled equations when
// the user provides none: heat transfer scaling with mass flow ratio.
func DefaultKAchar() *CharLine {
	line, _ := NewCharLine(
		[]float64{0.0, 0.25, 0.5, 0.75, 1.0, 1.25, 1.5},
		[]float64{0.0, 0.55, 0.80, 0.93, 1.0, 1.04, 1.07},
		false,
	)
	return line
}
