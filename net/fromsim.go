// Copyright 2026 The tespy-go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package net

import (
	"github.com/cpmech/gosl/chk"

	"github.com/solelysoar/tespy/inp"
)

// FromSim builds a network and solver options from decoded input data
func FromSim(sim *inp.Simulation) (*Network, Options, error) {
	opts := DefaultOptions()
	opts.MaxIt = sim.Solver.NmaxIt
	opts.MinIt = sim.Solver.NminIt
	opts.Tol = sim.Solver.Tol
	opts.ShowR = sim.Solver.ShowR
	opts.AllEqs = sim.Solver.AllEqs
	opts.StagWindow = sim.Solver.StagWindow
	opts.MRange = sim.Solver.MRange
	opts.PRange = sim.Solver.PRange
	opts.HRange = sim.Solver.HRange
	opts.TdOffsetU = sim.Solver.TdOffsetU
	opts.TdOffsetL = sim.Solver.TdOffsetL
	opts.LinSol = sim.LinSol.Name

	nw := NewNetwork()
	for _, f := range sim.Fluids {
		if err := nw.AddFluid(f.Name, f.Model, f.Prms); err != nil {
			return nil, opts, err
		}
	}

	// components
	comps := make(map[string]Component)
	for _, cd := range sim.Comps {
		comp, err := NewComponent(cd.Type, cd.Label, cd.Prms)
		if err != nil {
			return nil, opts, err
		}
		prms := comp.Params()
		for name, val := range cd.Set {
			p, ok := prms[name]
			if !ok {
				return nil, opts, chk.Err("component %q has no parameter %q", cd.Label, name)
			}
			p.Set(val)
		}
		for name, val := range cd.Var {
			p, ok := prms[name]
			if !ok {
				return nil, opts, chk.Err("component %q has no parameter %q", cd.Label, name)
			}
			p.SetVar(val)
		}
		for name, ch := range cd.Chars {
			line, err := NewCharLine(ch.X, ch.Y, ch.Extrapolate)
			if err != nil {
				return nil, opts, chk.Err("component %q characteristic %q: %v", cd.Label, name, err)
			}
			if err := attachChar(comp, name, line); err != nil {
				return nil, opts, err
			}
		}
		comp.SetDesignParams(cd.Design, cd.Offdesign)
		comps[cd.Label] = comp
	}

	// connections
	conns := make(map[string]*Connection)
	for _, cd := range sim.Conns {
		c := NewConnection(cd.Label, comps[cd.Src], cd.SrcPort, comps[cd.Tgt], cd.TgtPort)
		for name, pd := range cd.Props {
			key, err := propByName(name)
			if err != nil {
				return nil, opts, chk.Err("connection %q: %v", cd.Label, err)
			}
			if err := c.Set(key, pd.Val, pd.Unit); err != nil {
				return nil, opts, err
			}
		}
		for name, si := range cd.Starts {
			key, err := propByName(name)
			if err != nil {
				return nil, opts, chk.Err("connection %q: %v", cd.Label, err)
			}
			c.SetStart(key, si)
		}
		if cd.Fluid != nil {
			c.SetFluid(cd.Fluid, cd.Balance)
		} else {
			c.Fluid.Balance = cd.Balance
		}
		if cd.Fluid0 != nil {
			c.SetFluidStart(cd.Fluid0)
		}
		c.SetDesignParams(cd.Design, cd.Offdesign)
		conns[cd.Label] = c
		if err := nw.AddConns(c); err != nil {
			return nil, opts, err
		}
	}

	// references resolve after every connection exists
	for _, cd := range sim.Conns {
		for name, rd := range cd.Refs {
			key, err := propByName(name)
			if err != nil {
				return nil, opts, chk.Err("connection %q: %v", cd.Label, err)
			}
			other, ok := conns[rd.Conn]
			if !ok {
				return nil, opts, chk.Err("connection %q references unknown connection %q", cd.Label, rd.Conn)
			}
			if err := conns[cd.Label].SetRef(key, other, rd.Factor, rd.Offset); err != nil {
				return nil, opts, err
			}
		}
	}

	// busses
	for _, bd := range sim.Busses {
		b := NewBus(bd.Label)
		for _, ed := range bd.Entries {
			var line *CharLine
			if ed.Char != nil {
				var err error
				line, err = NewCharLine(ed.Char.X, ed.Char.Y, ed.Char.Extrapolate)
				if err != nil {
					return nil, opts, chk.Err("bus %q entry %q: %v", bd.Label, ed.Comp, err)
				}
			}
			if err := b.Add(comps[ed.Comp], line, ed.Base); err != nil {
				return nil, opts, err
			}
		}
		if bd.P != nil {
			b.SetP(*bd.P)
		}
		if err := nw.AddBusses(b); err != nil {
			return nil, opts, err
		}
	}
	return nw, opts, nil
}

// attachChar binds a named characteristic line to a component
func attachChar(comp Component, name string, line *CharLine) error {
	if hx, ok := comp.(*HeatExchanger); ok {
		switch name {
		case "kA_char1":
			hx.KAchar1 = line
			return nil
		case "kA_char2":
			hx.KAchar2 = line
			return nil
		}
	}
	p, ok := comp.Params()[name]
	if !ok {
		return chk.Err("component %q has no characteristic slot %q", comp.Label(), name)
	}
	p.Char = line
	return nil
}

// SnapshotDesign captures the converged design state for persistence
func SnapshotDesign(nw *Network, key string) *inp.DesignPoint {
	dp := inp.NewDesignPoint(key)
	for _, c := range nw.Conns {
		x := make(map[string]float64, len(c.Fluid.Val))
		for f, v := range c.Fluid.Val {
			x[f] = v
		}
		dp.Conns[c.Label] = inp.ConnPoint{
			M: c.M.SI, P: c.P.SI, H: c.H.SI, T: c.T.SI, V: c.V.SI, Fluid: x,
		}
	}
	for _, comp := range nw.Comps {
		vals := make(map[string]float64)
		for name, p := range comp.Params() {
			if p.IsSet || p.Val != 0 {
				vals[name] = p.Val
			}
		}
		dp.Comps[comp.Label()] = vals
	}
	for _, b := range nw.Busses {
		dp.Busses[b.Label] = b.Total
	}
	return dp
}

// ApplyDesign seeds a network with a persisted design point so an
// offdesign solve can re-bind parameters and start warm
func ApplyDesign(nw *Network, dp *inp.DesignPoint) error {
	for _, c := range nw.Conns {
		pt, ok := dp.Conns[c.Label]
		if !ok {
			return chk.Err("design point %q has no state for connection %q", dp.Key, c.Label)
		}
		c.M.Design, c.P.Design, c.H.Design = pt.M, pt.P, pt.H
		c.T.Design, c.V.Design = pt.T, pt.V
		for f, v := range pt.Fluid {
			c.Fluid.Design[f] = v
		}
	}
	for _, comp := range nw.Comps {
		vals, ok := dp.Comps[comp.Label()]
		if !ok {
			return chk.Err("design point %q has no state for component %q", dp.Key, comp.Label())
		}
		for name, v := range vals {
			if p, ok := comp.Params()[name]; ok {
				p.Design = v
			}
		}
	}
	return nil
}
