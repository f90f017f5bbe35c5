// Copyright 2026 The tespy-go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mfluid

import (
	"testing"

	"github.com/cpmech/gosl/chk"
)

// newAirWaterEvaluator tracks an ideal gas and a liquid
func newAirWaterEvaluator(tst *testing.T) *Evaluator {
	ev := NewEvaluator()
	for _, pair := range [][]string{{"air", "idealgas"}, {"water", "liquid"}} {
		m := GetModel(pair[1])
		if err := m.Init(pair[0], nil); err != nil {
			tst.Fatalf("cannot init %q: %v", pair[0], err)
		}
		ev.AddFluid(pair[0], m)
	}
	return ev
}

func Test_evaluator01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("evaluator01. mixture temperature consistency")

	ev := newAirWaterEvaluator(tst)

	// mixture h(p,T) followed by T(p,h) recovers T
	x := map[string]float64{"air": 0.4, "water": 0.6}
	fl := Flow{M: 1, P: 2e5, X: x}
	T := 350.0
	h, err := ev.HMixPT(fl, T)
	if err != nil {
		tst.Errorf("HMixPT failed:\n%v", err)
		return
	}
	fl.H = h
	Tb, err := ev.TMixPH(fl)
	if err != nil {
		tst.Errorf("TMixPH failed:\n%v", err)
		return
	}
	chk.Float64(tst, "T round trip", 1e-6, Tb, T)

	// identical inputs return bit-identical results (memoized)
	Tc, err := ev.TMixPH(fl)
	if err != nil {
		tst.Errorf("TMixPH failed:\n%v", err)
		return
	}
	if Tb != Tc {
		tst.Errorf("repeated lookup differs: %v vs %v\n", Tb, Tc)
	}

	// pure composition short-circuits to the model
	pure := Flow{M: 1, P: 1e5, H: 1004.0 * (400.0 - 298.15), X: map[string]float64{"air": 1}}
	Tp, err := ev.TMixPH(pure)
	if err != nil {
		tst.Errorf("TMixPH pure failed:\n%v", err)
		return
	}
	chk.Float64(tst, "pure T", 1e-10, Tp, 400.0)
}

func Test_evaluator02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("evaluator02. partial derivatives")

	ev := newAirWaterEvaluator(tst)

	// ideal gas: dT/dh = 1/cp, dT/dp = 0
	fl := Flow{M: 1, P: 1e5, H: 1004.0 * (400.0 - 298.15), X: map[string]float64{"air": 1}}
	dTdh, err := ev.DTdh(fl)
	if err != nil {
		tst.Errorf("DTdh failed:\n%v", err)
		return
	}
	chk.Float64(tst, "dT/dh", 1e-9, dTdh, 1.0/1004.0)
	dTdp, err := ev.DTdp(fl)
	if err != nil {
		tst.Errorf("DTdp failed:\n%v", err)
		return
	}
	chk.Float64(tst, "dT/dp", 1e-9, dTdp, 0)

	// ideal gas: dv/dh = R/(cp p)
	dVdh, err := ev.DVdh(fl)
	if err != nil {
		tst.Errorf("DVdh failed:\n%v", err)
		return
	}
	chk.Float64(tst, "dv/dh", 1e-10, dVdh, 287.0/(1004.0*1e5))

	// mixture composition partial: more water lowers T at fixed h
	// (water carries a higher specific heat)
	x := map[string]float64{"air": 0.5, "water": 0.5}
	mfl := Flow{M: 1, P: 1e5, X: x}
	h, err := ev.HMixPT(mfl, 360.0)
	if err != nil {
		tst.Errorf("HMixPT failed:\n%v", err)
		return
	}
	mfl.H = h
	dTdx, err := ev.DTdfluid(mfl)
	if err != nil {
		tst.Errorf("DTdfluid failed:\n%v", err)
		return
	}
	if dTdx["water"] >= 0 {
		tst.Errorf("dT/dx_water must be negative; got %v\n", dTdx["water"])
	}
}

func Test_evaluator03(tst *testing.T) {

	//verbose()
	chk.PrintTitle("evaluator03. feasible bands and infeasible lookups")

	ev := newAirWaterEvaluator(tst)

	// clamping band for a pure fluid
	hmin, hmax, err := ev.HBounds("air", 1e5)
	if err != nil {
		tst.Errorf("HBounds failed:\n%v", err)
		return
	}
	if hmin >= hmax {
		tst.Errorf("HBounds returned an empty band [%g, %g]\n", hmin, hmax)
	}

	// infeasible mixture enthalpy reports a range excursion
	x := map[string]float64{"air": 0.5, "water": 0.5}
	bad := Flow{M: 1, P: 1e5, H: 1e12, X: x}
	if _, err := ev.TMixPH(bad); err == nil {
		tst.Errorf("TMixPH(h=1e12) must fail\n")
	} else if !IsRange(err) {
		tst.Errorf("expected range error; got %v\n", err)
	}

	// quality is undefined for mixtures
	if _, err := ev.QPH(Flow{M: 1, P: 1e5, H: 1e5, X: x}); err == nil {
		tst.Errorf("QPH must fail for a mixture\n")
	}
}
