// Copyright 2026 The tespy-go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package net

import (
	"strings"
	"testing"

	"github.com/cpmech/gosl/chk"
)

// buildModeNetwork wires the throttle line used by the mode tests:
// design fixes pr and the inlet temperature, offdesign carries the
// sized loss coefficient and the design enthalpy over
func buildModeNetwork(tst *testing.T) (*Network, *Connection, *Connection, *Valve) {
	nw, c1, c2, va := buildValveNetwork(tst)
	c1.Set(Mdot, 5, "")
	c1.Set(Pres, 10, "bar")
	c1.Set(Temp, 500, "")
	c1.SetFluid(map[string]float64{"air": 1}, false)
	va.Pr.Set(0.9)
	va.SetDesignParams([]string{"pr"}, []string{"zeta"})
	c1.SetDesignParams([]string{"T"}, []string{"h"})
	return nw, c1, c2, va
}

func Test_mode01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("mode01. offdesign reproduces the design point")

	nw, c1, c2, va := buildModeNetwork(tst)

	sol, err := Solve(nw, DefaultOptions())
	if err != nil {
		tst.Errorf("design solve failed:\n%v", err)
		return
	}
	if sol.Status != StatConverged {
		tst.Errorf("design status must be converged; got %v\n", sol.Status)
		return
	}

	// converged state is stored as the design point
	chk.Float64(tst, "p2 design record", 1e-6, c2.P.Design, 9e5)
	if va.Zeta.Design == 0 {
		tst.Errorf("zeta must be sized by the design solve\n")
		return
	}
	hDesign := c1.H.Design

	opts := DefaultOptions()
	opts.Mode = Offdesign
	sol, err = Solve(nw, opts)
	if err != nil {
		tst.Errorf("offdesign solve failed:\n%v", err)
		return
	}
	if sol.Status != StatConverged {
		tst.Errorf("offdesign status must be converged; got %v\n", sol.Status)
		return
	}

	// parameter rebinding: pr released, zeta bound at the sized value
	if va.Pr.IsSet {
		tst.Errorf("pr must be released in offdesign mode\n")
	}
	if !va.Zeta.IsSet {
		tst.Errorf("zeta must be fixed in offdesign mode\n")
	}
	if c1.T.IsSet || !c1.H.IsSet {
		tst.Errorf("T must be released and h fixed in offdesign mode\n")
	}
	chk.Float64(tst, "h1", 1e-6, c1.H.SI, hDesign)

	// unchanged operating point reproduces the design result
	chk.Float64(tst, "p2", 1e-1, c2.P.SI, 9e5)
	chk.Float64(tst, "pr written back", 1e-6, va.Pr.Val, 0.9)
}

func Test_mode04(tst *testing.T) {

	//verbose()
	chk.PrintTitle("mode04. design solve after offdesign restores bindings")

	nw, c1, c2, va := buildModeNetwork(tst)
	if _, err := Solve(nw, DefaultOptions()); err != nil {
		tst.Errorf("design solve failed:\n%v", err)
		return
	}
	opts := DefaultOptions()
	opts.Mode = Offdesign
	if _, err := Solve(nw, opts); err != nil {
		tst.Errorf("offdesign solve failed:\n%v", err)
		return
	}

	// back to design: the offdesign bindings must not leak through
	sol, err := Solve(nw, DefaultOptions())
	if err != nil {
		tst.Errorf("second design solve failed:\n%v", err)
		return
	}
	if sol.Status != StatConverged {
		tst.Errorf("status must be converged; got %v\n", sol.Status)
		return
	}
	if !va.Pr.IsSet || va.Pr.IsVar {
		tst.Errorf("pr must be fixed again in design mode\n")
	}
	if va.Zeta.IsSet {
		tst.Errorf("zeta must be released again in design mode\n")
	}
	if !c1.T.IsSet || c1.H.IsSet {
		tst.Errorf("T must be fixed and h free again in design mode\n")
	}
	chk.Float64(tst, "pr", 1e-10, va.Pr.Val, 0.9)
	chk.Float64(tst, "p2", 1e-1, c2.P.SI, 9e5)
	chk.Float64(tst, "T1", 1e-4, c1.T.SI, 500)

	// the re-recorded design point comes from a correctly bound solve
	chk.Float64(tst, "p2 design record", 1e-1, c2.P.Design, 9e5)
}

func Test_mode02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("mode02. offdesign without a design point fails")

	nw, _, _, _ := buildModeNetwork(tst)

	opts := DefaultOptions()
	opts.Mode = Offdesign
	_, err := Solve(nw, opts)
	if err == nil {
		tst.Errorf("offdesign solve must fail without stored design values\n")
		return
	}
	if !strings.Contains(err.Error(), "design solve") {
		tst.Errorf("diagnostic must point at the missing design solve; got:\n%v", err)
	}
}

func Test_mode03(tst *testing.T) {

	//verbose()
	chk.PrintTitle("mode03. design point transfer between networks")

	nw1, c1a, _, va1 := buildModeNetwork(tst)
	if _, err := Solve(nw1, DefaultOptions()); err != nil {
		tst.Errorf("design solve failed:\n%v", err)
		return
	}

	dp := SnapshotDesign(nw1, "throttle")
	chk.String(tst, dp.Key, "throttle")

	// a fresh network picks up the stored state and runs offdesign
	nw2, c1b, c2b, va2 := buildModeNetwork(tst)
	if err := ApplyDesign(nw2, dp); err != nil {
		tst.Errorf("ApplyDesign failed:\n%v", err)
		return
	}
	chk.Float64(tst, "zeta transferred", 1e-10, va2.Zeta.Design, va1.Zeta.Design)
	chk.Float64(tst, "h1 transferred", 1e-10, c1b.H.Design, c1a.H.Design)

	opts := DefaultOptions()
	opts.Mode = Offdesign
	sol, err := Solve(nw2, opts)
	if err != nil {
		tst.Errorf("offdesign solve failed:\n%v", err)
		return
	}
	if sol.Status != StatConverged {
		tst.Errorf("offdesign status must be converged; got %v\n", sol.Status)
		return
	}
	chk.Float64(tst, "p2", 1e-1, c2b.P.SI, 9e5)
}
