// Copyright 2026 The tespy-go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package net implements the steady-state process network solver: the
// variable layout over connections and components, the assembly of
// residuals and derivatives from components, connections and busses,
// and the Newton-Raphson controller with feasibility clamping.
package net

import (
	"github.com/cpmech/gosl/chk"
)

// PropKey identifies one connection property
type PropKey int

const (
	Mdot PropKey = iota // mass flow
	Pres                // pressure
	Enth                // specific enthalpy
	Temp                // temperature
	Qual                // vapour quality
	Vdot                // volumetric flow
	TdBp                // temperature offset to the boiling point
	Entr                // specific entropy
)

// primary property keys in state vector order: m, p, h
var primaryKeys = []PropKey{Mdot, Pres, Enth}

// String returns the short name of a property key
func (k PropKey) String() string {
	switch k {
	case Mdot:
		return "m"
	case Pres:
		return "p"
	case Enth:
		return "h"
	case Temp:
		return "T"
	case Qual:
		return "x"
	case Vdot:
		return "v"
	case TdBp:
		return "Td_bp"
	case Entr:
		return "s"
	}
	return "?"
}

// Ref is an affine relation tying a property to the same property on
// another connection: value = Factor * other.value + Offset [SI].
type Ref struct {
	Conn   *Connection
	Factor float64
	Offset float64
}

// Prop is one scalar connection property record
type Prop struct {
	Val    float64 // value in user units
	SI     float64 // value in SI units; the solver works on this one
	Unit   string  // user unit; empty means SI
	IsSet  bool    // fixed by the user for the current solve
	Ref    *Ref    // optional affine reference; nil if absent
	Design float64 // stored design-point value [SI]
	Start  float64 // starting value for the first iteration [SI]; 0 means unset
}

// set fixes the property at the given value
func (o *Prop) set(key PropKey, val float64, unit string) error {
	si, err := toSI(key, val, unit)
	if err != nil {
		return err
	}
	o.Val, o.SI, o.Unit, o.IsSet = val, si, unit, true
	o.Ref = nil
	return nil
}

// Composition maps tracked fluids to mass fractions
type Composition struct {
	Val     map[string]float64 // current mass fractions [SI]
	IsSet   map[string]bool    // fixed fractions
	Balance bool               // emit the sum-to-one equation
	Design  map[string]float64 // stored design-point fractions
	Start   map[string]float64 // starting fractions
}

// Connection is a directed edge between two component ports carrying
// the full property set of one stream.
type Connection struct {
	Label string

	// endpoints
	Src     Component
	SrcPort string
	Tgt     Component
	TgtPort string

	// properties
	M, P, H  Prop // primary: part of the state vector
	T        Prop // derived via the property evaluator
	X        Prop // vapour quality (pure fluids)
	V        Prop // volumetric flow
	Td       Prop // subcooling/superheating offset (pure fluids)
	S        Prop // specific entropy (diagnostic only)
	Fluid    Composition
	GoodVals bool // converged once; skip aggressive range clamping

	// design/offdesign switching
	Design    []string // property names fixed in design mode
	Offdesign []string // property names fixed in offdesign mode

	// state layout
	Loc int // connection index; column block = Loc * numConnVars
}

// NewConnection creates a connection between src.srcPort and tgt.tgtPort
func NewConnection(label string, src Component, srcPort string, tgt Component, tgtPort string) *Connection {
	return &Connection{
		Label:   label,
		Src:     src,
		SrcPort: srcPort,
		Tgt:     tgt,
		TgtPort: tgtPort,
		Fluid: Composition{
			Val:    make(map[string]float64),
			IsSet:  make(map[string]bool),
			Design: make(map[string]float64),
			Start:  make(map[string]float64),
		},
	}
}

// prop returns the record of a scalar property key
func (o *Connection) prop(key PropKey) *Prop {
	switch key {
	case Mdot:
		return &o.M
	case Pres:
		return &o.P
	case Enth:
		return &o.H
	case Temp:
		return &o.T
	case Qual:
		return &o.X
	case Vdot:
		return &o.V
	case TdBp:
		return &o.Td
	case Entr:
		return &o.S
	}
	chk.Panic("connection %q: unknown property key %d", o.Label, key)
	return nil
}

// Set fixes one scalar property; e.g. c.Set(net.Pres, 10, "bar")
func (o *Connection) Set(key PropKey, val float64, unit string) error {
	if key == Entr {
		return chk.Err("connection %q: entropy is a diagnostic property and cannot be fixed", o.Label)
	}
	return o.prop(key).set(key, val, unit)
}

// SetRef ties one primary property (m, p or h) to another connection:
// value = factor * other + offset (offset in SI units of the property).
func (o *Connection) SetRef(key PropKey, other *Connection, factor, offset float64) error {
	if key != Mdot && key != Pres && key != Enth && key != Temp {
		return chk.Err("connection %q: references are supported for m, p, h and T only; got %q", o.Label, key)
	}
	p := o.prop(key)
	p.IsSet = false
	p.Ref = &Ref{Conn: other, Factor: factor, Offset: offset}
	return nil
}

// Unset frees one property so it becomes an unknown again
func (o *Connection) Unset(key PropKey) {
	p := o.prop(key)
	p.IsSet = false
	p.Ref = nil
}

// SetFluid fixes mass fractions; balance requests the implicit
// sum-to-one equation for the remaining free fractions.
func (o *Connection) SetFluid(x map[string]float64, balance bool) {
	for f, v := range x {
		o.Fluid.Val[f] = v
		o.Fluid.IsSet[f] = true
	}
	o.Fluid.Balance = balance
}

// SetFluidStart seeds starting fractions without fixing them
func (o *Connection) SetFluidStart(x map[string]float64) {
	for f, v := range x {
		o.Fluid.Start[f] = v
	}
}

// SetStart seeds a starting value [SI] for one primary property
func (o *Connection) SetStart(key PropKey, si float64) {
	o.prop(key).Start = si
}

// SetDesignParams declares which properties are fixed in design mode
// and which replace them in offdesign mode; names as in PropKey.String.
func (o *Connection) SetDesignParams(design, offdesign []string) {
	o.Design = design
	o.Offdesign = offdesign
}

// propByName maps a property name ("m", "p", ...) to its key
func propByName(name string) (PropKey, error) {
	for _, k := range []PropKey{Mdot, Pres, Enth, Temp, Qual, Vdot, TdBp, Entr} {
		if k.String() == name {
			return k, nil
		}
	}
	return 0, chk.Err("unknown connection property name %q", name)
}

// nEqs counts the equations this connection emits for the current
// fixed/reference flags (component equations not included)
func (o *Connection) nEqs(fluids []string) (n int) {
	for _, k := range []PropKey{Mdot, Pres, Enth, Temp, Qual, Vdot, TdBp} {
		p := o.prop(k)
		if p.IsSet {
			n++
		}
		if p.Ref != nil {
			n++
		}
	}
	for _, f := range fluids {
		if o.Fluid.IsSet[f] {
			n++
		}
	}
	if o.Fluid.Balance {
		n++
	}
	return
}
