// Copyright 2026 The tespy-go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mfluid

import (
	"math"

	"github.com/cpmech/gosl/chk"
)

// Liquid implements a nearly incompressible liquid:
//  h = href + cl (T - Tref)
//  ρ = ρ0 [1 + Cf (p - p0)]
//  s = sref + cl ln(T/Tref)
// Cf is a small isothermal compressibility coefficient.
type Liquid struct {
	name string

	// parameters
	Cl   float64 // specific heat
	Rho0 float64 // density at reference pressure
	Cf   float64 // compressibility coefficient
	P0   float64 // reference pressure for density
	Tref float64 // reference temperature
	Href float64 // enthalpy at Tref
	Sref float64 // entropy at Tref

	// validity region
	Pmin, Pmax float64
	Tmin, Tmax float64
}

// register model
func init() {
	allocators["liquid"] = func() Model { return new(Liquid) }
}

// Init initialises model with parameters. Defaults describe liquid water.
func (o *Liquid) Init(name string, prms map[string]float64) error {
	o.name = name
	o.Cl = prm(prms, "cl", 4180.0)
	o.Rho0 = prm(prms, "rho0", 998.0)
	o.Cf = prm(prms, "cf", 4.5e-10)
	o.P0 = prm(prms, "p0", 1e5)
	o.Tref = prm(prms, "Tref", 293.15)
	o.Href = prm(prms, "href", 0)
	o.Sref = prm(prms, "sref", 0)
	o.Pmin = prm(prms, "pmin", 100.0)
	o.Pmax = prm(prms, "pmax", 1e8)
	o.Tmin = prm(prms, "Tmin", 253.15)
	o.Tmax = prm(prms, "Tmax", 453.15)
	if o.Cl <= 0 || o.Rho0 <= 0 {
		return chk.Err("liquid %q: cl=%g and rho0=%g must be positive", name, o.Cl, o.Rho0)
	}
	return nil
}

func (o *Liquid) checkP(p float64) error {
	if p < o.Pmin || p > o.Pmax {
		return &RangeError{o.name, "p", p, o.Pmin, o.Pmax}
	}
	return nil
}

// TPH returns temperature for given (p, h)
func (o *Liquid) TPH(p, h float64) (float64, error) {
	if err := o.checkP(p); err != nil {
		return 0, err
	}
	T := o.Tref + (h-o.Href)/o.Cl
	if T < o.Tmin || T > o.Tmax {
		hmin := o.Href + o.Cl*(o.Tmin-o.Tref)
		hmax := o.Href + o.Cl*(o.Tmax-o.Tref)
		return 0, &RangeError{o.name, "h", h, hmin, hmax}
	}
	return T, nil
}

// VPH returns specific volume for given (p, h)
func (o *Liquid) VPH(p, h float64) (float64, error) {
	if _, err := o.TPH(p, h); err != nil {
		return 0, err
	}
	rho := o.Rho0 * (1.0 + o.Cf*(p-o.P0))
	return 1.0 / rho, nil
}

// SPH returns specific entropy for given (p, h)
func (o *Liquid) SPH(p, h float64) (float64, error) {
	T, err := o.TPH(p, h)
	if err != nil {
		return 0, err
	}
	return o.Sref + o.Cl*math.Log(T/o.Tref), nil
}

// HPT returns enthalpy for given (p, T)
func (o *Liquid) HPT(p, T float64) (float64, error) {
	if err := o.checkP(p); err != nil {
		return 0, err
	}
	if T < o.Tmin || T > o.Tmax {
		return 0, &RangeError{o.name, "T", T, o.Tmin, o.Tmax}
	}
	return o.Href + o.Cl*(T-o.Tref), nil
}

// HPQ is not available: model covers the liquid phase only
func (o *Liquid) HPQ(p, Q float64) (float64, error) {
	return 0, chk.Err("liquid %q covers the liquid phase only; cannot compute h(p, Q)", o.name)
}

// QPH is not available: model covers the liquid phase only
func (o *Liquid) QPH(p, h float64) (float64, error) {
	return 0, chk.Err("liquid %q covers the liquid phase only; cannot compute Q(p, h)", o.name)
}

// TSat is not available: model covers the liquid phase only
func (o *Liquid) TSat(p float64) (float64, error) {
	return 0, chk.Err("liquid %q covers the liquid phase only; cannot compute Tsat(p)", o.name)
}

// Range returns the validity region
func (o *Liquid) Range() (pmin, pmax, Tmin, Tmax float64) {
	return o.Pmin, o.Pmax, o.Tmin, o.Tmax
}
