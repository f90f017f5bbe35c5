// Copyright 2026 The tespy-go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package mfluid implements fluid property models and the property
// evaluator used by the network solver. All inputs and outputs are SI:
// pressure [Pa], specific enthalpy [J/kg], temperature [K], specific
// volume [m3/kg], specific entropy [J/kg/K].
package mfluid

import (
	"github.com/cpmech/gosl/io"
)

// RangeError indicates a property input outside a fluid's validity range.
// The solver responds by clamping, not by aborting.
type RangeError struct {
	Fluid string  // fluid name
	Prop  string  // offending property key; e.g. "p", "h", "T"
	Val   float64 // offending value
	Lo    float64 // lower feasible bound
	Hi    float64 // upper feasible bound
}

func (o *RangeError) Error() string {
	return io.Sf("property %q = %g of fluid %q outside feasible range [%g, %g]", o.Prop, o.Val, o.Fluid, o.Lo, o.Hi)
}

// IsRange tells whether err is a feasibility excursion
func IsRange(err error) bool {
	_, ok := err.(*RangeError)
	return ok
}

// Model defines the fluid property model contract. Functions take the
// primary pair (p, h) and return derived properties or a *RangeError
// when the input leaves the model's validity region.
type Model interface {

	// initialisation
	Init(name string, prms map[string]float64) error // initialises model with parameters

	// derived properties from the primary pair
	TPH(p, h float64) (T float64, err error) // temperature
	VPH(p, h float64) (v float64, err error) // specific volume
	SPH(p, h float64) (s float64, err error) // specific entropy

	// inverse lookups
	HPT(p, T float64) (h float64, err error) // enthalpy from temperature
	HPQ(p, Q float64) (h float64, err error) // enthalpy from vapour quality
	QPH(p, h float64) (Q float64, err error) // vapour quality
	TSat(p float64) (T float64, err error)   // saturation (boiling point) temperature

	// validity region
	Range() (pmin, pmax, Tmin, Tmax float64)
}

// GetModel returns a new model from its name; e.g. "idealgas", "liquid", "twophase".
// Returns nil if the model is not available.
func GetModel(name string) Model {
	if allocator, ok := allocators[name]; ok {
		return allocator()
	}
	return nil
}

// allocators holds all available models; modelName => allocator
var allocators = make(map[string]func() Model)

// prm reads one parameter with a default value
func prm(prms map[string]float64, key string, def float64) float64 {
	if v, ok := prms[key]; ok {
		return v
	}
	return def
}
