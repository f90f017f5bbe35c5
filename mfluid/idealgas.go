// Copyright 2026 The tespy-go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mfluid

import (
	"math"

	"github.com/cpmech/gosl/chk"
)

// IdealGas implements a calorically perfect ideal gas:
//  h = href + cp (T - Tref)
//  v = R T / p
//  s = sref + cp ln(T/Tref) - R ln(p/pref)
type IdealGas struct {
	name string

	// parameters
	Cp   float64 // specific heat at constant pressure
	R    float64 // specific gas constant
	Tref float64 // reference temperature
	Pref float64 // reference pressure
	Href float64 // enthalpy at Tref
	Sref float64 // entropy at (Tref, Pref)

	// validity region
	Pmin, Pmax float64
	Tmin, Tmax float64
}

// register model
func init() {
	allocators["idealgas"] = func() Model { return new(IdealGas) }
}

// Init initialises model with parameters. Defaults describe dry air.
func (o *IdealGas) Init(name string, prms map[string]float64) error {
	o.name = name
	o.Cp = prm(prms, "cp", 1004.0)
	o.R = prm(prms, "R", 287.0)
	o.Tref = prm(prms, "Tref", 298.15)
	o.Pref = prm(prms, "pref", 1e5)
	o.Href = prm(prms, "href", 0)
	o.Sref = prm(prms, "sref", 0)
	o.Pmin = prm(prms, "pmin", 100.0)
	o.Pmax = prm(prms, "pmax", 1e8)
	o.Tmin = prm(prms, "Tmin", 100.0)
	o.Tmax = prm(prms, "Tmax", 2000.0)
	if o.Cp <= 0 || o.R <= 0 {
		return chk.Err("idealgas %q: cp=%g and R=%g must be positive", name, o.Cp, o.R)
	}
	return nil
}

func (o *IdealGas) checkP(p float64) error {
	if p < o.Pmin || p > o.Pmax {
		return &RangeError{o.name, "p", p, o.Pmin, o.Pmax}
	}
	return nil
}

func (o *IdealGas) checkT(T, h float64) error {
	if T < o.Tmin || T > o.Tmax {
		hmin := o.Href + o.Cp*(o.Tmin-o.Tref)
		hmax := o.Href + o.Cp*(o.Tmax-o.Tref)
		return &RangeError{o.name, "h", h, hmin, hmax}
	}
	return nil
}

// TPH returns temperature for given (p, h)
func (o *IdealGas) TPH(p, h float64) (float64, error) {
	if err := o.checkP(p); err != nil {
		return 0, err
	}
	T := o.Tref + (h-o.Href)/o.Cp
	if err := o.checkT(T, h); err != nil {
		return 0, err
	}
	return T, nil
}

// VPH returns specific volume for given (p, h)
func (o *IdealGas) VPH(p, h float64) (float64, error) {
	T, err := o.TPH(p, h)
	if err != nil {
		return 0, err
	}
	return o.R * T / p, nil
}

// SPH returns specific entropy for given (p, h)
func (o *IdealGas) SPH(p, h float64) (float64, error) {
	T, err := o.TPH(p, h)
	if err != nil {
		return 0, err
	}
	return o.Sref + o.Cp*math.Log(T/o.Tref) - o.R*math.Log(p/o.Pref), nil
}

// HPT returns enthalpy for given (p, T)
func (o *IdealGas) HPT(p, T float64) (float64, error) {
	if err := o.checkP(p); err != nil {
		return 0, err
	}
	if T < o.Tmin || T > o.Tmax {
		return 0, &RangeError{o.name, "T", T, o.Tmin, o.Tmax}
	}
	return o.Href + o.Cp*(T-o.Tref), nil
}

// HPQ is not available: an ideal gas has no two-phase region
func (o *IdealGas) HPQ(p, Q float64) (float64, error) {
	return 0, chk.Err("idealgas %q has no two-phase region; cannot compute h(p, Q)", o.name)
}

// QPH is not available: an ideal gas has no two-phase region
func (o *IdealGas) QPH(p, h float64) (float64, error) {
	return 0, chk.Err("idealgas %q has no two-phase region; cannot compute Q(p, h)", o.name)
}

// TSat is not available: an ideal gas has no saturation line
func (o *IdealGas) TSat(p float64) (float64, error) {
	return 0, chk.Err("idealgas %q has no saturation line; cannot compute Tsat(p)", o.name)
}

// Range returns the validity region
func (o *IdealGas) Range() (pmin, pmax, Tmin, Tmax float64) {
	return o.Pmin, o.Pmax, o.Tmin, o.Tmax
}
