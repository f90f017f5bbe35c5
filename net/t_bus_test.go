// Copyright 2026 The tespy-go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package net

import (
	"testing"

	"github.com/cpmech/gosl/chk"
)

// buildTurbineNetwork wires source -> turbine -> sink with air and a
// shaft power bus attached to the turbine
func buildTurbineNetwork(tst *testing.T, char *CharLine, base string) (*Network, *Connection, *Connection, *Turbine, *Bus) {
	nw := NewNetwork()
	if err := nw.AddFluid("air", "idealgas", nil); err != nil {
		tst.Fatalf("AddFluid failed:\n%v", err)
	}
	so, si := NewSource("so"), NewSink("si")
	tb := NewTurbine("tb")
	c1 := NewConnection("c1", so, "out1", tb, "in1")
	c2 := NewConnection("c2", tb, "out1", si, "in1")
	if err := nw.AddConns(c1, c2); err != nil {
		tst.Fatalf("AddConns failed:\n%v", err)
	}
	bus := NewBus("shaft")
	if err := bus.Add(tb, char, base); err != nil {
		tst.Fatalf("bus.Add failed:\n%v", err)
	}
	if err := nw.AddBusses(bus); err != nil {
		tst.Fatalf("AddBusses failed:\n%v", err)
	}
	c1.Set(Pres, 10, "bar")
	c1.Set(Temp, 500, "")
	c1.SetFluid(map[string]float64{"air": 1}, false)
	c2.Set(Pres, 1, "bar")
	c2.Set(Temp, 400, "")
	return nw, c1, c2, tb, bus
}

func Test_bus01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("bus01. target power determines the mass flow")

	nw, c1, _, tb, bus := buildTurbineNetwork(tst, nil, "component")

	// expansion from 500 K to 400 K gives -100400 W per kg/s
	bus.SetP(-502000)

	sol, err := Solve(nw, DefaultOptions())
	if err != nil {
		tst.Errorf("Solve failed:\n%v", err)
		return
	}
	if sol.Status != StatConverged {
		tst.Errorf("status must be converged; got %v\n", sol.Status)
		return
	}

	chk.Float64(tst, "m", 1e-4, c1.M.SI, 5)
	chk.Float64(tst, "total", 1e-1, bus.Total, -502000)
	chk.Float64(tst, "P(turbine)", 1e-1, tb.P.Val, -502000)

	// design run records the reference energy flow on the entry
	chk.Float64(tst, "PRef", 1e-1, bus.Entries[0].PRef, -502000)
}

func Test_bus02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("bus02. generator efficiency on the component side")

	char, err := NewCharLine([]float64{0, 2}, []float64{0.95, 0.95}, false)
	if err != nil {
		tst.Fatalf("NewCharLine failed:\n%v", err)
	}
	nw, c1, _, _, bus := buildTurbineNetwork(tst, char, "component")

	// electrical target; the shaft must deliver P / 0.95
	bus.SetP(-476900)

	sol, err := Solve(nw, DefaultOptions())
	if err != nil {
		tst.Errorf("Solve failed:\n%v", err)
		return
	}
	if sol.Status != StatConverged {
		tst.Errorf("status must be converged; got %v\n", sol.Status)
		return
	}

	// -476900 / 0.95 = -502000 on the shaft, hence m = 5 again
	chk.Float64(tst, "m", 1e-4, c1.M.SI, 5)
	chk.Float64(tst, "total", 1e-1, bus.Total, -476900)
}

func Test_bus03(tst *testing.T) {

	//verbose()
	chk.PrintTitle("bus03. aggregator without a target adds no equation")

	nw, c1, _, _, bus := buildTurbineNetwork(tst, nil, "")
	c1.Set(Mdot, 5, "")
	// no bus.SetP: the mass flow spec keeps the system square

	sol, err := Solve(nw, DefaultOptions())
	if err != nil {
		tst.Errorf("Solve failed:\n%v", err)
		return
	}
	if sol.Status != StatConverged {
		tst.Errorf("status must be converged; got %v\n", sol.Status)
		return
	}
	chk.Float64(tst, "total", 1e-1, bus.Total, -502000)
}

func Test_bus04(tst *testing.T) {

	//verbose()
	chk.PrintTitle("bus04. entry validation")

	bus := NewBus("b")
	tb := NewTurbine("tb")
	if err := bus.Add(tb, nil, "machine"); err == nil {
		tst.Errorf("unknown base convention must fail\n")
	}
	if err := bus.Add(tb, nil, "component"); err != nil {
		tst.Errorf("Add failed:\n%v", err)
	}
	if err := bus.Add(tb, nil, "bus"); err == nil {
		tst.Errorf("duplicate component must fail\n")
	}
}
