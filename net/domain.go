// Copyright 2026 The tespy-go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package net

import (
	"sort"
	"strconv"
	"strings"

	"github.com/cpmech/gosl/chk"

	"github.com/solelysoar/tespy/mfluid"
)

// Network holds the components, connections and busses of one process
// topology together with the fluid property evaluator.
type Network struct {
	Fluids []string // tracked fluids, fixed order
	Ev     *mfluid.Evaluator
	Comps  []Component
	Conns  []*Connection
	Busses []*Bus

	checked bool
}

// NewNetwork creates an empty network; fluids are registered with
// AddFluid before connections are added
func NewNetwork() *Network {
	return &Network{Ev: mfluid.NewEvaluator()}
}

// AddFluid registers one tracked fluid, naming its property model
// kind ("idealgas", "liquid", "twophase") and model parameters
func (o *Network) AddFluid(name, model string, prms map[string]float64) error {
	for _, f := range o.Fluids {
		if f == name {
			return chk.Err("fluid %q registered twice", name)
		}
	}
	m := mfluid.GetModel(model)
	if m == nil {
		return chk.Err("fluid %q: unknown property model %q", name, model)
	}
	if err := m.Init(name, prms); err != nil {
		return err
	}
	o.Ev.AddFluid(name, m)
	o.Fluids = append(o.Fluids, name)
	sort.Strings(o.Fluids)
	return nil
}

// AddConns registers connections; their endpoint components are
// collected implicitly
func (o *Network) AddConns(conns ...*Connection) error {
	for _, c := range conns {
		if c.Src == nil || c.Tgt == nil {
			return chk.Err("connection %q has a missing endpoint", c.Label)
		}
		for _, have := range o.Conns {
			if have.Label == c.Label {
				return chk.Err("duplicate connection label %q", c.Label)
			}
			if have.Src == c.Src && have.SrcPort == c.SrcPort {
				return chk.Err("port %s of component %q is the source of both %q and %q",
					c.SrcPort, c.Src.Label(), have.Label, c.Label)
			}
			if have.Tgt == c.Tgt && have.TgtPort == c.TgtPort {
				return chk.Err("port %s of component %q is the target of both %q and %q",
					c.TgtPort, c.Tgt.Label(), have.Label, c.Label)
			}
		}
		o.Conns = append(o.Conns, c)
		o.addComp(c.Src)
		o.addComp(c.Tgt)
	}
	o.checked = false
	return nil
}

// AddBusses registers busses
func (o *Network) AddBusses(busses ...*Bus) error {
	for _, b := range busses {
		for _, have := range o.Busses {
			if have.Label == b.Label {
				return chk.Err("duplicate bus label %q", b.Label)
			}
		}
		o.Busses = append(o.Busses, b)
	}
	return nil
}

func (o *Network) addComp(c Component) {
	for _, have := range o.Comps {
		if have == c {
			return
		}
		if have.Label() == c.Label() {
			return // caught by CheckNetwork
		}
	}
	o.Comps = append(o.Comps, c)
}

// GetConn finds a connection by label
func (o *Network) GetConn(label string) *Connection {
	for _, c := range o.Conns {
		if c.Label == label {
			return c
		}
	}
	return nil
}

// GetComp finds a component by label
func (o *Network) GetComp(label string) Component {
	for _, c := range o.Comps {
		if c.Label() == label {
			return c
		}
	}
	return nil
}

// portIndex parses "in3" or "out1" into a zero-based slot
func portIndex(port, prefix string, n int) (int, error) {
	if !strings.HasPrefix(port, prefix) {
		return 0, chk.Err("port %q: want prefix %q", port, prefix)
	}
	i, err := strconv.Atoi(port[len(prefix):])
	if err != nil || i < 1 || i > n {
		return 0, chk.Err("port %q out of range; component has %d %s port(s)", port, n, prefix)
	}
	return i - 1, nil
}

// CheckNetwork validates the topology: every port connected exactly
// once, distinct component labels, known fluids. It assigns connection
// locations and wires the per-component connection slices.
func (o *Network) CheckNetwork() error {

	// distinct component labels
	for i, a := range o.Comps {
		for _, b := range o.Comps[i+1:] {
			if a.Label() == b.Label() {
				return chk.Err("two components share the label %q", a.Label())
			}
		}
	}

	// known fluids on every connection
	known := make(map[string]bool)
	for _, f := range o.Fluids {
		known[f] = true
	}
	for _, c := range o.Conns {
		for f := range c.Fluid.Val {
			if !known[f] {
				return chk.Err("connection %q sets fraction of fluid %q which the network does not track", c.Label, f)
			}
		}
		for f := range c.Fluid.IsSet {
			if c.Fluid.IsSet[f] && !known[f] {
				return chk.Err("connection %q fixes fraction of fluid %q which the network does not track", c.Label, f)
			}
		}
	}

	// wire component connection slices by port slot
	type slots struct {
		inl, outl []*Connection
	}
	bycomp := make(map[Component]*slots)
	for _, c := range o.Comps {
		bycomp[c] = &slots{
			inl:  make([]*Connection, c.NIn()),
			outl: make([]*Connection, c.NOut()),
		}
	}
	for _, c := range o.Conns {
		i, err := portIndex(c.SrcPort, "out", c.Src.NOut())
		if err != nil {
			return chk.Err("connection %q source: %v", c.Label, err)
		}
		bycomp[c.Src].outl[i] = c
		j, err := portIndex(c.TgtPort, "in", c.Tgt.NIn())
		if err != nil {
			return chk.Err("connection %q target: %v", c.Label, err)
		}
		bycomp[c.Tgt].inl[j] = c
	}
	for _, comp := range o.Comps {
		s := bycomp[comp]
		for i, c := range s.inl {
			if c == nil {
				return chk.Err("component %q: inlet port in%d is not connected", comp.Label(), i+1)
			}
		}
		for i, c := range s.outl {
			if c == nil {
				return chk.Err("component %q: outlet port out%d is not connected", comp.Label(), i+1)
			}
		}
		if err := comp.SetConns(s.inl, s.outl); err != nil {
			return err
		}
	}

	// assign state-vector locations
	for i, c := range o.Conns {
		c.Loc = i
	}
	o.checked = true
	return nil
}

// Determination counts equations against unknowns and fails fast with
// a diagnostic when the system is not square. Components must be Setup
// first.
func (o *Network) Determination(sol *Solution) error {
	nconn := len(o.Conns) * sol.NumConnVars
	nvars := nconn + sol.NumCompVars

	neqComp := 0
	for _, c := range o.Comps {
		neqComp += c.NumEq()
	}
	neqConn := 0
	for _, c := range o.Conns {
		neqConn += c.nEqs(o.Fluids)
	}
	neqBus := 0
	for _, b := range o.Busses {
		if b.HasTarget() {
			neqBus++
		}
	}
	neq := neqComp + neqConn + neqBus
	if neq == nvars {
		return nil
	}
	verdict := "under-specified: fix more parameters"
	if neq > nvars {
		verdict = "over-specified: release some parameters"
	}
	return chk.Err("system is not square (%s): %d equations (%d component + %d connection + %d bus) vs %d unknowns (%d connection variables + %d component variables)",
		verdict, neq, neqComp, neqConn, neqBus, nvars, nconn, sol.NumCompVars)
}
