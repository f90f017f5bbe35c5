// Copyright 2026 The tespy-go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mfluid

import (
	"math"

	"github.com/cpmech/gosl/chk"
)

// TwoPhase implements a condensing fluid with a Clausius-Clapeyron type
// saturation line and constant latent heat:
//  Tsat(p) = [ 1/Tref - (Rv/L) ln(p/pref) ]⁻¹
//  hf(T)   = cl (T - T0)         saturated liquid
//  hg(T)   = hf(T) + L           saturated vapour
// Below hf the state is subcooled liquid, above hg superheated vapour,
// in between the quality interpolates linearly.
type TwoPhase struct {
	name string

	// parameters
	Cl   float64 // liquid specific heat
	Cpg  float64 // vapour specific heat at constant pressure
	L    float64 // latent heat of vaporisation
	Rv   float64 // vapour specific gas constant
	Rhof float64 // saturated liquid density
	Pref float64 // reference pressure on the saturation line
	Tref float64 // saturation temperature at Pref
	T0   float64 // enthalpy datum: hf(T0) = 0

	// validity region
	Pmin, Pmax float64
	Tmin, Tmax float64
}

// register model
func init() {
	allocators["twophase"] = func() Model { return new(TwoPhase) }
}

// Init initialises model with parameters. Defaults approximate water/steam.
func (o *TwoPhase) Init(name string, prms map[string]float64) error {
	o.name = name
	o.Cl = prm(prms, "cl", 4180.0)
	o.Cpg = prm(prms, "cpg", 1900.0)
	o.L = prm(prms, "L", 2.26e6)
	o.Rv = prm(prms, "R", 461.5)
	o.Rhof = prm(prms, "rhof", 958.0)
	o.Pref = prm(prms, "pref", 1e5)
	o.Tref = prm(prms, "Tref", 373.15)
	o.T0 = prm(prms, "T0", 273.15)
	o.Pmin = prm(prms, "pmin", 1000.0)
	o.Pmax = prm(prms, "pmax", 2e7)
	o.Tmin = prm(prms, "Tmin", 274.15)
	o.Tmax = prm(prms, "Tmax", 1200.0)
	if o.L <= 0 || o.Cl <= 0 || o.Cpg <= 0 {
		return chk.Err("twophase %q: cl=%g, cpg=%g and L=%g must be positive", name, o.Cl, o.Cpg, o.L)
	}
	return nil
}

func (o *TwoPhase) checkP(p float64) error {
	if p < o.Pmin || p > o.Pmax {
		return &RangeError{o.name, "p", p, o.Pmin, o.Pmax}
	}
	return nil
}

// TSat returns the saturation temperature for given pressure
func (o *TwoPhase) TSat(p float64) (float64, error) {
	if err := o.checkP(p); err != nil {
		return 0, err
	}
	den := 1.0/o.Tref - (o.Rv/o.L)*math.Log(p/o.Pref)
	if den <= 0 {
		return 0, &RangeError{o.name, "p", p, o.Pmin, o.Pmax}
	}
	return 1.0 / den, nil
}

// hf returns the saturated liquid enthalpy at temperature T
func (o *TwoPhase) hf(T float64) float64 {
	return o.Cl * (T - o.T0)
}

// TPH returns temperature for given (p, h)
func (o *TwoPhase) TPH(p, h float64) (float64, error) {
	Ts, err := o.TSat(p)
	if err != nil {
		return 0, err
	}
	hf := o.hf(Ts)
	hg := hf + o.L
	var T float64
	switch {
	case h < hf: // subcooled liquid
		T = o.T0 + h/o.Cl
	case h > hg: // superheated vapour
		T = Ts + (h-hg)/o.Cpg
	default: // two-phase dome
		T = Ts
	}
	if T < o.Tmin || T > o.Tmax {
		hmin, _ := o.HPT(p, o.Tmin)
		hmax, _ := o.HPT(p, o.Tmax)
		return 0, &RangeError{o.name, "h", h, hmin, hmax}
	}
	return T, nil
}

// QPH returns vapour quality for given (p, h); clipped to [0, 1] outside the dome
func (o *TwoPhase) QPH(p, h float64) (float64, error) {
	Ts, err := o.TSat(p)
	if err != nil {
		return 0, err
	}
	Q := (h - o.hf(Ts)) / o.L
	if Q < 0 {
		Q = 0
	} else if Q > 1 {
		Q = 1
	}
	return Q, nil
}

// HPQ returns enthalpy for given (p, Q) with Q in [0, 1]
func (o *TwoPhase) HPQ(p, Q float64) (float64, error) {
	if Q < 0 || Q > 1 {
		return 0, chk.Err("twophase %q: vapour quality Q=%g must be within [0, 1]", o.name, Q)
	}
	Ts, err := o.TSat(p)
	if err != nil {
		return 0, err
	}
	return o.hf(Ts) + Q*o.L, nil
}

// VPH returns specific volume for given (p, h)
func (o *TwoPhase) VPH(p, h float64) (float64, error) {
	T, err := o.TPH(p, h)
	if err != nil {
		return 0, err
	}
	Ts, _ := o.TSat(p)
	vf := 1.0 / o.Rhof
	vg := o.Rv * Ts / p
	hf := o.hf(Ts)
	switch {
	case h < hf:
		return vf, nil
	case h > hf+o.L:
		return o.Rv * T / p, nil
	}
	Q := (h - hf) / o.L
	return vf + Q*(vg-vf), nil
}

// SPH returns specific entropy for given (p, h)
func (o *TwoPhase) SPH(p, h float64) (float64, error) {
	T, err := o.TPH(p, h)
	if err != nil {
		return 0, err
	}
	Ts, _ := o.TSat(p)
	hf := o.hf(Ts)
	sf := o.Cl * math.Log(Ts/o.T0)
	switch {
	case h < hf:
		return o.Cl * math.Log(T/o.T0), nil
	case h > hf+o.L:
		return sf + o.L/Ts + o.Cpg*math.Log(T/Ts), nil
	}
	Q := (h - hf) / o.L
	return sf + Q*o.L/Ts, nil
}

// HPT returns enthalpy for given (p, T). At T == Tsat the saturated
// liquid value is returned.
func (o *TwoPhase) HPT(p, T float64) (float64, error) {
	Ts, err := o.TSat(p)
	if err != nil {
		return 0, err
	}
	if T < o.Tmin || T > o.Tmax {
		return 0, &RangeError{o.name, "T", T, o.Tmin, o.Tmax}
	}
	if T <= Ts {
		return o.Cl * (T - o.T0), nil
	}
	return o.hf(Ts) + o.L + o.Cpg*(T-Ts), nil
}

// Range returns the validity region
func (o *TwoPhase) Range() (pmin, pmax, Tmin, Tmax float64) {
	return o.Pmin, o.Pmax, o.Tmin, o.Tmax
}
