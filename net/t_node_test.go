// Copyright 2026 The tespy-go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package net

import (
	"testing"

	"github.com/cpmech/gosl/chk"
)

func Test_node01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("node01. splitter distributes one inlet")

	nw := NewNetwork()
	if err := nw.AddFluid("air", "idealgas", nil); err != nil {
		tst.Fatalf("AddFluid failed:\n%v", err)
	}
	so := NewSource("so")
	sp := NewSplitter("sp", 2)
	si1, si2 := NewSink("si1"), NewSink("si2")
	c0 := NewConnection("c0", so, "out1", sp, "in1")
	c1 := NewConnection("c1", sp, "out1", si1, "in1")
	c2 := NewConnection("c2", sp, "out2", si2, "in1")
	if err := nw.AddConns(c0, c1, c2); err != nil {
		tst.Fatalf("AddConns failed:\n%v", err)
	}
	c0.Set(Mdot, 3, "")
	c0.Set(Pres, 1e5, "")
	c0.Set(Temp, 400, "")
	c0.SetFluid(map[string]float64{"air": 1}, false)
	c1.Set(Mdot, 1, "")

	sol, err := Solve(nw, DefaultOptions())
	if err != nil {
		tst.Errorf("Solve failed:\n%v", err)
		return
	}
	if sol.Status != StatConverged {
		tst.Errorf("status must be converged; got %v\n", sol.Status)
		return
	}

	// the second branch takes the rest
	chk.Float64(tst, "m(c2)", 1e-8, c2.M.SI, 2)

	// state passes through unchanged on both branches
	for _, c := range []*Connection{c1, c2} {
		chk.Float64(tst, "p "+c.Label, 1e-6, c.P.SI, 1e5)
		chk.Float64(tst, "h "+c.Label, 1e-6, c.H.SI, c0.H.SI)
		chk.Float64(tst, "x_air "+c.Label, 1e-10, c.Fluid.Val["air"], 1)
	}
}

func Test_node02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("node02. merge mixes two streams adiabatically")

	nw := NewNetwork()
	if err := nw.AddFluid("air", "idealgas", nil); err != nil {
		tst.Fatalf("AddFluid failed:\n%v", err)
	}
	if err := nw.AddFluid("water", "liquid", nil); err != nil {
		tst.Fatalf("AddFluid failed:\n%v", err)
	}
	so1, so2 := NewSource("so1"), NewSource("so2")
	mg := NewMerge("mg", 2)
	si := NewSink("si")
	c1 := NewConnection("c1", so1, "out1", mg, "in1")
	c2 := NewConnection("c2", so2, "out1", mg, "in2")
	c3 := NewConnection("c3", mg, "out1", si, "in1")
	if err := nw.AddConns(c1, c2, c3); err != nil {
		tst.Fatalf("AddConns failed:\n%v", err)
	}
	c1.Set(Mdot, 1, "")
	c1.Set(Pres, 1e5, "")
	c1.Set(Temp, 400, "")
	c1.SetFluid(map[string]float64{"air": 1, "water": 0}, false)
	c2.Set(Mdot, 2, "")
	c2.Set(Temp, 300, "")
	c2.SetFluid(map[string]float64{"air": 0, "water": 1}, false)

	sol, err := Solve(nw, DefaultOptions())
	if err != nil {
		tst.Errorf("Solve failed:\n%v", err)
		return
	}
	if sol.Status != StatConverged {
		tst.Errorf("status must be converged; got %v\n", sol.Status)
		return
	}

	// mass and composition
	chk.Float64(tst, "m(c3)", 1e-8, c3.M.SI, 3)
	chk.Float64(tst, "x_air(c3)", 1e-6, c3.Fluid.Val["air"], 1.0/3.0)
	chk.Float64(tst, "x_water(c3)", 1e-6, c3.Fluid.Val["water"], 2.0/3.0)

	// inlet pressures equalized with the outlet
	chk.Float64(tst, "p(c2)", 1e-6, c2.P.SI, 1e5)
	chk.Float64(tst, "p(c3)", 1e-6, c3.P.SI, 1e5)

	// mixing temperature from the enthalpy balance with linear heat
	// capacities: T = (m1 cp_air T1 + m2 cl T2) / (m1 cp_air + m2 cl)
	Tmix := (1.0*1004.0*400.0 + 2.0*4180.0*300.0) / (1.0*1004.0 + 2.0*4180.0)
	chk.Float64(tst, "T(c3)", 1e-3, c3.T.SI, Tmix)
}

func Test_node03(tst *testing.T) {

	//verbose()
	chk.PrintTitle("node03. separator splits a mixture by composition")

	nw := NewNetwork()
	if err := nw.AddFluid("air", "idealgas", nil); err != nil {
		tst.Fatalf("AddFluid failed:\n%v", err)
	}
	if err := nw.AddFluid("water", "liquid", nil); err != nil {
		tst.Fatalf("AddFluid failed:\n%v", err)
	}
	so := NewSource("so")
	sep := NewSeparator("sep", 2)
	si1, si2 := NewSink("si1"), NewSink("si2")
	c0 := NewConnection("c0", so, "out1", sep, "in1")
	c1 := NewConnection("c1", sep, "out1", si1, "in1")
	c2 := NewConnection("c2", sep, "out2", si2, "in1")
	if err := nw.AddConns(c0, c1, c2); err != nil {
		tst.Fatalf("AddConns failed:\n%v", err)
	}
	c0.Set(Mdot, 3, "")
	c0.Set(Pres, 1e5, "")
	c0.Set(Temp, 350, "")
	c0.SetFluid(map[string]float64{"air": 1.0 / 3.0, "water": 2.0 / 3.0}, false)
	c1.Set(Mdot, 1, "")
	c1.SetFluid(map[string]float64{"air": 1, "water": 0}, false)

	sol, err := Solve(nw, DefaultOptions())
	if err != nil {
		tst.Errorf("Solve failed:\n%v", err)
		return
	}
	if sol.Status != StatConverged {
		tst.Errorf("status must be converged; got %v\n", sol.Status)
		return
	}

	// mass and species balance force the second outlet to pure water
	chk.Float64(tst, "m(c2)", 1e-6, c2.M.SI, 2)
	chk.Float64(tst, "x_air(c2)", 1e-6, c2.Fluid.Val["air"], 0)
	chk.Float64(tst, "x_water(c2)", 1e-6, c2.Fluid.Val["water"], 1)

	// isothermal separation at constant pressure
	chk.Float64(tst, "T(c1)", 1e-3, c1.T.SI, 350)
	chk.Float64(tst, "T(c2)", 1e-3, c2.T.SI, 350)
	chk.Float64(tst, "p(c1)", 1e-6, c1.P.SI, 1e5)
	chk.Float64(tst, "p(c2)", 1e-6, c2.P.SI, 1e5)
}
