// Copyright 2026 The tespy-go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package inp implements the input data read from a (.sim) JSON file
package inp

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
)

// Data holds global data for simulations
type Data struct {
	Desc   string `json:"desc"`   // description of simulation
	DirOut string `json:"dirout"` // directory for output; e.g. /tmp/tespy
}

// LinSolData holds data for linear solvers
type LinSolData struct {
	Name string `json:"name"` // "dense" or "gauss"
}

// SetDefault sets default values
func (o *LinSolData) SetDefault() {
	o.Name = "dense"
}

// SolverData holds Newton controller data
type SolverData struct {
	NmaxIt     int        `json:"nmaxit"`     // number of max iterations
	NminIt     int        `json:"nminit"`     // iterations required before convergence is accepted
	Tol        float64    `json:"tol"`        // residual norm tolerance
	ShowR      bool       `json:"showr"`      // show residual per iteration
	AllEqs     bool       `json:"alleqs"`     // disable derivative staleness throttling
	StagWindow int        `json:"stagwindow"` // stagnation detection window
	MRange     [2]float64 `json:"mrange"`     // generic mass flow range [kg/s]
	PRange     [2]float64 `json:"prange"`     // generic pressure range [Pa]
	HRange     [2]float64 `json:"hrange"`     // generic enthalpy range [J/kg]
	TdOffsetU  float64    `json:"tdoffsetu"`  // upper terminal feasibility offset [K]
	TdOffsetL  float64    `json:"tdoffsetl"`  // lower terminal feasibility offset [K]
}

// SetDefault sets default values
func (o *SolverData) SetDefault() {
	o.NmaxIt = 50
	o.NminIt = 4
	o.Tol = 1e-4
	o.StagWindow = 6
	o.MRange = [2]float64{-1e12, 1e12}
	o.PRange = [2]float64{2e3, 3e7}
	o.HRange = [2]float64{1e3, 7e6}
	o.TdOffsetU = 0.01
	o.TdOffsetL = 0.02
}

// FluidData holds one tracked fluid and its property model
type FluidData struct {
	Name  string             `json:"name"`  // fluid name. ex: water
	Model string             `json:"model"` // model kind: idealgas, liquid, twophase
	Prms  map[string]float64 `json:"prms"`  // model parameters; nil means model defaults
}

// CharData holds one characteristic line
type CharData struct {
	X           []float64 `json:"x"`
	Y           []float64 `json:"y"`
	Extrapolate bool      `json:"extrapolate"`
}

// CompData holds one component
type CompData struct {
	Label     string               `json:"label"`     // unique component label
	Type      string               `json:"type"`      // registered type name. ex: valve, turbine
	Prms      map[string]float64   `json:"prms"`      // structural options. ex: num_out
	Set       map[string]float64   `json:"set"`       // fixed parameters [SI]
	Var       map[string]float64   `json:"var"`       // free variables with starting value [SI]
	Chars     map[string]*CharData `json:"chars"`     // characteristic lines by parameter name
	Design    []string             `json:"design"`    // parameters fixed in design mode
	Offdesign []string             `json:"offdesign"` // parameters replacing them in offdesign mode
}

// PropData holds one fixed connection property
type PropData struct {
	Val  float64 `json:"val"`
	Unit string  `json:"unit"` // empty means SI
}

// RefData ties a property to another connection: factor * other + offset
type RefData struct {
	Conn   string  `json:"conn"`
	Factor float64 `json:"factor"`
	Offset float64 `json:"offset"` // SI units of the property
}

// ConnData holds one connection
type ConnData struct {
	Label     string              `json:"label"`
	Src       string              `json:"src"`     // source component label
	SrcPort   string              `json:"srcport"` // ex: out1
	Tgt       string              `json:"tgt"`     // target component label
	TgtPort   string              `json:"tgtport"` // ex: in1
	Props     map[string]PropData `json:"props"`   // fixed properties by name: m p h T x v Td_bp
	Refs      map[string]RefData  `json:"refs"`    // referenced properties by name
	Starts    map[string]float64  `json:"starts"`  // starting values [SI] by name
	Fluid     map[string]float64  `json:"fluid"`   // fixed mass fractions
	Fluid0    map[string]float64  `json:"fluid0"`  // starting mass fractions
	Balance   bool                `json:"balance"` // emit the sum-to-one equation
	Design    []string            `json:"design"`
	Offdesign []string            `json:"offdesign"`
}

// BusEntryData holds one bus member
type BusEntryData struct {
	Comp string    `json:"comp"`
	Base string    `json:"base"` // "component" (default) or "bus"
	Char *CharData `json:"char"` // conversion characteristic; nil means unity
}

// BusData holds one bus
type BusData struct {
	Label   string         `json:"label"`
	P       *float64       `json:"p"` // fixed total [W]; nil means aggregator only
	Entries []BusEntryData `json:"entries"`
}

// Simulation holds all simulation data
type Simulation struct {

	// input
	Data   Data        `json:"data"`
	LinSol LinSolData  `json:"linsol"`
	Solver SolverData  `json:"solver"`
	Fluids []FluidData `json:"fluids"`
	Comps  []CompData  `json:"comps"`
	Conns  []ConnData  `json:"conns"`
	Busses []BusData   `json:"busses"`

	// derived
	Key string // simulation key; filename without extension
}

// ReadSim reads a simulation file
func ReadSim(simfilepath string) (*Simulation, error) {

	// new sim with defaults
	var o Simulation
	o.Solver.SetDefault()
	o.LinSol.SetDefault()

	// read and decode
	b, err := os.ReadFile(simfilepath)
	if err != nil {
		return nil, chk.Err("cannot read simulation file %q: %v", simfilepath, err)
	}
	if err := json.Unmarshal(b, &o); err != nil {
		return nil, chk.Err("cannot unmarshal simulation file %q: %v", simfilepath, err)
	}
	o.Key = io.FnKey(filepath.Base(simfilepath))

	// check
	if err := o.Check(); err != nil {
		return nil, err
	}
	return &o, nil
}

// Check validates the decoded data before any network is built
func (o *Simulation) Check() error {
	if len(o.Fluids) == 0 {
		return chk.Err("simulation %q tracks no fluid", o.Key)
	}
	seen := make(map[string]bool)
	for _, f := range o.Fluids {
		if f.Name == "" || f.Model == "" {
			return chk.Err("fluid entries need both name and model; got name=%q model=%q", f.Name, f.Model)
		}
		if seen[f.Name] {
			return chk.Err("fluid %q listed twice", f.Name)
		}
		seen[f.Name] = true
	}
	labels := make(map[string]bool)
	for _, c := range o.Comps {
		if c.Label == "" || c.Type == "" {
			return chk.Err("component entries need both label and type; got label=%q type=%q", c.Label, c.Type)
		}
		if labels[c.Label] {
			return chk.Err("component label %q listed twice", c.Label)
		}
		labels[c.Label] = true
	}
	for _, c := range o.Conns {
		if c.Label == "" {
			return chk.Err("connection between %q and %q has no label", c.Src, c.Tgt)
		}
		if !labels[c.Src] {
			return chk.Err("connection %q: unknown source component %q", c.Label, c.Src)
		}
		if !labels[c.Tgt] {
			return chk.Err("connection %q: unknown target component %q", c.Label, c.Tgt)
		}
	}
	for _, b := range o.Busses {
		for _, e := range b.Entries {
			if !labels[e.Comp] {
				return chk.Err("bus %q: unknown component %q", b.Label, e.Comp)
			}
		}
	}
	return nil
}
