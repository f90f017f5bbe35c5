// Copyright 2026 The tespy-go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mfluid

import (
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
)

func init() {
	io.Verbose = false
}

func verbose() {
	io.Verbose = true
	chk.Verbose = true
}

func Test_idealgas01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("idealgas01. round trips and validity region")

	m := GetModel("idealgas")
	if m == nil {
		tst.Errorf("cannot allocate idealgas model\n")
		return
	}
	err := m.Init("air", nil)
	if err != nil {
		tst.Errorf("Init failed:\n%v", err)
		return
	}

	// h(p,T) followed by T(p,h) recovers T
	p, T := 1e5, 500.0
	h, err := m.HPT(p, T)
	if err != nil {
		tst.Errorf("HPT failed:\n%v", err)
		return
	}
	chk.Float64(tst, "h(1e5, 500)", 1e-10, h, 1004.0*(500.0-298.15))
	Tb, err := m.TPH(p, h)
	if err != nil {
		tst.Errorf("TPH failed:\n%v", err)
		return
	}
	chk.Float64(tst, "T round trip", 1e-10, Tb, T)

	// v = R T / p
	v, err := m.VPH(p, h)
	if err != nil {
		tst.Errorf("VPH failed:\n%v", err)
		return
	}
	chk.Float64(tst, "v(1e5, h)", 1e-10, v, 287.0*500.0/1e5)

	// out-of-range enthalpy reports the feasible band
	_, err = m.TPH(p, 1e9)
	if err == nil {
		tst.Errorf("TPH(h=1e9) must fail\n")
		return
	}
	if !IsRange(err) {
		tst.Errorf("expected range error; got %v\n", err)
		return
	}
	chk.String(tst, err.(*RangeError).Prop, "h")

	// no two-phase region
	if _, err := m.HPQ(1e5, 0.5); err == nil {
		tst.Errorf("HPQ must fail for an ideal gas\n")
	}
}

func Test_liquid01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("liquid01. incompressible liquid")

	m := GetModel("liquid")
	err := m.Init("water", nil)
	if err != nil {
		tst.Errorf("Init failed:\n%v", err)
		return
	}

	// T(p,h) is pressure independent
	h, err := m.HPT(1e5, 350.0)
	if err != nil {
		tst.Errorf("HPT failed:\n%v", err)
		return
	}
	T1, _ := m.TPH(1e5, h)
	T2, _ := m.TPH(5e6, h)
	chk.Float64(tst, "T at 1 bar", 1e-10, T1, 350.0)
	chk.Float64(tst, "T at 50 bar", 1e-10, T2, 350.0)

	// density stiffens a little with pressure
	v1, _ := m.VPH(1e5, h)
	v2, _ := m.VPH(5e6, h)
	if v2 >= v1 {
		tst.Errorf("specific volume must shrink with pressure: v1=%g v2=%g\n", v1, v2)
	}
}

func Test_twophase01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("twophase01. saturation line and dome")

	m := GetModel("twophase")
	err := m.Init("water", nil)
	if err != nil {
		tst.Errorf("Init failed:\n%v", err)
		return
	}

	// Tsat(pref) = Tref and Tsat grows with pressure
	Ts, err := m.TSat(1e5)
	if err != nil {
		tst.Errorf("TSat failed:\n%v", err)
		return
	}
	chk.Float64(tst, "Tsat(pref)", 1e-10, Ts, 373.15)
	Ts2, _ := m.TSat(2e5)
	if Ts2 <= Ts {
		tst.Errorf("Tsat must grow with pressure: Tsat(1bar)=%g Tsat(2bar)=%g\n", Ts, Ts2)
	}

	// quality round trip inside the dome
	h, err := m.HPQ(1e5, 0.3)
	if err != nil {
		tst.Errorf("HPQ failed:\n%v", err)
		return
	}
	Q, err := m.QPH(1e5, h)
	if err != nil {
		tst.Errorf("QPH failed:\n%v", err)
		return
	}
	chk.Float64(tst, "Q round trip", 1e-10, Q, 0.3)

	// temperature is pinned to Tsat inside the dome
	T, err := m.TPH(1e5, h)
	if err != nil {
		tst.Errorf("TPH failed:\n%v", err)
		return
	}
	chk.Float64(tst, "T inside dome", 1e-10, T, Ts)

	// subcooled liquid and superheated vapour leave the dome
	hf, _ := m.HPQ(1e5, 0)
	Tsub, err := m.TPH(1e5, hf-4180.0)
	if err != nil {
		tst.Errorf("TPH subcooled failed:\n%v", err)
		return
	}
	if Tsub >= Ts {
		tst.Errorf("subcooled temperature %g must lie below Tsat %g\n", Tsub, Ts)
	}
	hg, _ := m.HPQ(1e5, 1)
	Tsup, err := m.TPH(1e5, hg+1900.0)
	if err != nil {
		tst.Errorf("TPH superheated failed:\n%v", err)
		return
	}
	chk.Float64(tst, "superheated T", 1e-10, Tsup, Ts+1.0)

	// quality clips outside the dome
	Q0, _ := m.QPH(1e5, hf-1000.0)
	Q1, _ := m.QPH(1e5, hg+1000.0)
	chk.Float64(tst, "Q below dome", 1e-10, Q0, 0)
	chk.Float64(tst, "Q above dome", 1e-10, Q1, 1)
}
