// Copyright 2026 The tespy-go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package net

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

func Test_conn01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("conn01. units, fixing and references")

	src := NewSource("so")
	snk := NewSink("si")
	c := NewConnection("c1", src, "out1", snk, "in1")

	// user units are converted to SI on set
	if err := c.Set(Pres, 10, "bar"); err != nil {
		tst.Errorf("Set(p) failed:\n%v", err)
		return
	}
	chk.Float64(tst, "p [SI]", 1e-10, c.P.SI, 1e6)
	if err := c.Set(Temp, 25, "C"); err != nil {
		tst.Errorf("Set(T) failed:\n%v", err)
		return
	}
	chk.Float64(tst, "T [SI]", 1e-10, c.T.SI, 298.15)
	if err := c.Set(Mdot, 3.6, "t/h"); err != nil {
		tst.Errorf("Set(m) failed:\n%v", err)
		return
	}
	chk.Float64(tst, "m [SI]", 1e-10, c.M.SI, 1.0)

	// unknown unit is rejected
	if err := c.Set(Pres, 1, "psi"); err == nil {
		tst.Errorf("Set with unknown unit must fail\n")
		return
	}

	// entropy is diagnostic only
	if err := c.Set(Entr, 100, ""); err == nil {
		tst.Errorf("fixing entropy must fail\n")
		return
	}

	// a reference replaces a fixed value
	d := NewConnection("c2", src, "out1", snk, "in1")
	if err := c.SetRef(Pres, d, 0.9, 0); err != nil {
		tst.Errorf("SetRef failed:\n%v", err)
		return
	}
	if c.P.IsSet {
		tst.Errorf("reference must clear the fixed flag\n")
		return
	}
	if c.P.Ref == nil || c.P.Ref.Conn != d {
		tst.Errorf("reference not recorded\n")
		return
	}

	// references are limited to m, p, h and T
	if err := c.SetRef(Qual, d, 1, 0); err == nil {
		tst.Errorf("SetRef(x) must fail\n")
	}
}

func Test_conn02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("conn02. connection equation counting")

	src := NewSource("so")
	snk := NewSink("si")
	fluids := []string{"air", "water"}

	c := NewConnection("c1", src, "out1", snk, "in1")
	chk.IntAssert(c.nEqs(fluids), 0)

	c.Set(Mdot, 1, "")
	c.Set(Pres, 1e5, "")
	c.Set(Temp, 300, "")
	chk.IntAssert(c.nEqs(fluids), 3)

	// each fixed fraction and the balance count separately
	c.SetFluid(map[string]float64{"air": 0.7}, true)
	chk.IntAssert(c.nEqs(fluids), 5)

	// a reference adds a row without clearing other rows
	d := NewConnection("c2", src, "out1", snk, "in1")
	c.SetRef(Enth, d, 1, 0)
	chk.IntAssert(c.nEqs(fluids), 6)

	// unset removes the row again
	c.Unset(Temp)
	chk.IntAssert(c.nEqs(fluids), 5)
}
