// Copyright 2026 The tespy-go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package net

import (
	"math"

	"github.com/cpmech/gosl/chk"
)

// BusEntry ties one component's energy transfer to a bus. The
// conversion characteristic maps the design-normalized load to an
// efficiency; Base selects which side of the conversion the bus value
// lives on:
//
//	"component"  bus value = EnergyFlow * eta
//	"bus"        bus value = EnergyFlow / eta
type BusEntry struct {
	Comp Component
	Char *CharLine // nil: eta = 1
	Base string    // "component" (default) or "bus"
	PRef float64   // design reference energy flow [W], set after a design solve
}

// Bus aggregates energy transfers of several components. With a fixed
// target it contributes one residual P - sum(weightedEnergy) to the
// system; without a target it is a pure result aggregator.
type Bus struct {
	Label   string
	Entries []*BusEntry
	P       Prop    // optional total target [W]
	Total   float64 // aggregated value after convergence [W]
}

// NewBus returns an empty bus
func NewBus(label string) *Bus {
	o := new(Bus)
	o.Label = label
	o.P.Unit = "W"
	return o
}

// Add appends a component with its conversion characteristic
func (o *Bus) Add(c Component, char *CharLine, base string) error {
	switch base {
	case "":
		base = "component"
	case "component", "bus":
	default:
		return chk.Err("bus %q: unknown base convention %q for component %q", o.Label, base, c.Label())
	}
	for _, e := range o.Entries {
		if e.Comp.Label() == c.Label() {
			return chk.Err("bus %q: component %q added twice", o.Label, c.Label())
		}
	}
	o.Entries = append(o.Entries, &BusEntry{Comp: c, Char: char, Base: base})
	return nil
}

// SetP fixes the bus total [W]
func (o *Bus) SetP(val float64) {
	o.P.Val, o.P.SI, o.P.IsSet = val, val, true
}

// UnsetP releases the bus total
func (o *Bus) UnsetP() { o.P.IsSet = false }

// HasTarget tells whether the bus contributes an equation
func (o *Bus) HasTarget() bool { return o.P.IsSet }

// entryValue evaluates one entry's contribution [W]
func (o *Bus) entryValue(sol *Solution, e *BusEntry) float64 {
	ef := e.Comp.EnergyFlow()
	eta := 1.0
	if e.Char != nil {
		x := 1.0
		if sol.Mode == Offdesign && e.PRef != 0 {
			x = math.Abs(ef / e.PRef)
		}
		eta = e.Char.Evaluate(x)
	}
	if e.Base == "bus" {
		if eta == 0 {
			eta = 1e-6
		}
		return ef / eta
	}
	return ef * eta
}

// Residual computes P - sum(entry values); only meaningful with a target
func (o *Bus) Residual(sol *Solution) float64 {
	r := o.P.SI
	for _, e := range o.Entries {
		r -= o.entryValue(sol, e)
	}
	return r
}

// Derivatives fills the bus row of the global Jacobian by finite
// difference over every member's connection scalars. Entries sharing
// a connection accumulate into the same column.
func (o *Bus) Derivatives(sol *Solution, row int) error {
	cols := make(map[int]float64)
	for _, e := range o.Entries {
		ent := e
		f := func() (float64, error) { return o.entryValue(sol, ent), nil }
		for _, c := range ent.Comp.Conns() {
			for off, x := range []*float64{&c.M.SI, &c.P.SI, &c.H.SI} {
				col := sol.Col(c, off)
				if sol.Skip(col) {
					continue
				}
				d, err := NumericDeriv(f, x)
				if err != nil {
					return err
				}
				cols[col] -= d
			}
		}
	}
	for col, d := range cols {
		sol.Jac.Set(row, col, d)
	}
	return nil
}

// Aggregate recomputes the total and, in design mode, records each
// entry's reference energy flow for later offdesign characteristics
func (o *Bus) Aggregate(sol *Solution) {
	o.Total = 0
	for _, e := range o.Entries {
		o.Total += o.entryValue(sol, e)
		if sol.Mode == Design {
			e.PRef = e.Comp.EnergyFlow()
		}
	}
}
