// Copyright 2026 The tespy-go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package net

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
)

// Options controls one Newton solve
type Options struct {
	Mode   Mode
	MaxIt  int     // iteration cap
	MinIt  int     // iterations required before convergence is accepted
	Tol    float64 // residual norm tolerance
	LinSol string  // linear solver backend name
	AllEqs bool    // disable every derivative staleness throttle
	ShowR  bool    // print the iteration report

	// generic property ranges used for early-iteration clamping [SI]
	MRange [2]float64
	PRange [2]float64
	HRange [2]float64

	// feasibility offsets for crossing temperature levels [K]
	TdOffsetU float64
	TdOffsetL float64

	StagWindow int // trailing iterations checked for stagnation
}

// DefaultOptions returns the controller defaults
func DefaultOptions() Options {
	return Options{
		Mode:       Design,
		MaxIt:      50,
		MinIt:      4,
		Tol:        1e-4,
		LinSol:     "dense",
		MRange:     [2]float64{-1e12, 1e12},
		PRange:     [2]float64{2e3, 3e7},
		HRange:     [2]float64{1e3, 7e6},
		TdOffsetU:  0.01,
		TdOffsetL:  0.02,
		StagWindow: 6,
	}
}

// Solve runs the Newton-Raphson iteration on a network and returns the
// solver context; sol.Status tells the outcome. An error return means
// the solve could not be started or ended abnormally; a Diverged or
// Stalled status comes with a descriptive error as well.
func Solve(nw *Network, opts Options) (*Solution, error) {
	if !nw.checked {
		if err := nw.CheckNetwork(); err != nil {
			return nil, err
		}
	}

	sol := &Solution{
		Mode:      opts.Mode,
		Ev:        nw.Ev,
		Fluids:    nw.Fluids,
		AllEqs:    opts.AllEqs,
		TdOffsetU: opts.TdOffsetU,
		TdOffsetL: opts.TdOffsetL,
	}
	sol.NumConnVars = 3 + len(sol.Fluids)

	// design/offdesign parameter rebinding before equations are counted
	if err := applyMode(nw, sol); err != nil {
		return nil, err
	}

	for _, c := range nw.Comps {
		if err := c.Setup(sol); err != nil {
			return sol, err
		}
	}
	layout(nw, sol)
	if err := nw.Determination(sol); err != nil {
		return sol, err
	}

	lsol, err := GetLinSolver(opts.LinSol)
	if err != nil {
		return sol, err
	}

	initGuess(nw, sol)
	owners := rowOwners(nw, sol)

	if opts.ShowR {
		io.Pf("%6s%14s\n", "iter", "residual")
	}

	neg := make([]float64, sol.NumVars)
	sol.Status = StatIterating
	for sol.It = 0; sol.It < opts.MaxIt; sol.It++ {
		if err := assemble(nw, sol); err != nil {
			sol.Status = StatDiverged
			return sol, err
		}
		norm := resNorm(sol.Res)
		sol.Norms = append(sol.Norms, norm)
		if opts.ShowR {
			io.Pf("%6d%14.6e\n", sol.It, norm)
		}
		if math.IsNaN(norm) || math.IsInf(norm, 0) {
			sol.Status = StatDiverged
			return sol, chk.Err("residual norm is not finite at iteration %d (largest residual at %s)", sol.It, offender(sol, owners))
		}
		if norm < opts.Tol && sol.It >= opts.MinIt {
			sol.Status = StatConverged
			break
		}
		if stalled(sol.Norms, opts) {
			sol.Status = StatStalled
			return sol, chk.Err("residual stagnated at %13.6e after %d iterations (largest residual at %s)", norm, sol.It, offender(sol, owners))
		}

		for i := 0; i < sol.NumVars; i++ {
			neg[i] = -sol.Res[i]
		}
		if err := lsol.Solve(sol.Inc, sol.Jac, neg); err != nil {
			sol.Status = StatSingular
			return sol, chk.Err("iteration %d: %v", sol.It, err)
		}
		if err := step(nw, sol, opts); err != nil {
			sol.Status = StatDiverged
			return sol, err
		}
		for i := 0; i < sol.NumVars; i++ {
			sol.Filter[i] = math.Abs(sol.Inc[i]) < opts.Tol*opts.Tol
		}
	}
	if sol.Status != StatConverged {
		sol.Status = StatDiverged
		norm := math.NaN()
		if len(sol.Norms) > 0 {
			norm = sol.Norms[len(sol.Norms)-1]
		}
		return sol, chk.Err("no convergence within %d iterations; residual norm %13.6e (largest residual at %s)", opts.MaxIt, norm, offender(sol, owners))
	}

	if err := postprocess(nw, sol); err != nil {
		return sol, err
	}
	return sol, nil
}

// resNorm is the Euclidean norm of the residual
func resNorm(r []float64) float64 {
	s := 0.0
	for _, v := range r {
		s += v * v
	}
	return math.Sqrt(s)
}

// stalled reports no progress over the trailing window
func stalled(norms []float64, opts Options) bool {
	w := opts.StagWindow
	if w < 2 || len(norms) <= w {
		return false
	}
	cur := norms[len(norms)-1]
	old := norms[len(norms)-1-w]
	return cur > opts.Tol && cur > 0.95*old
}

// rowOwners labels every global row for failure diagnostics
func rowOwners(nw *Network, sol *Solution) []string {
	owners := make([]string, 0, sol.NumVars)
	for _, c := range nw.Comps {
		for i := 0; i < c.NumEq(); i++ {
			owners = append(owners, io.Sf("component %q equation %d", c.Label(), i))
		}
	}
	for _, c := range nw.Conns {
		n := c.nEqs(sol.Fluids)
		for i := 0; i < n; i++ {
			owners = append(owners, io.Sf("connection %q constraint %d", c.Label, i))
		}
	}
	for _, b := range nw.Busses {
		if b.HasTarget() {
			owners = append(owners, io.Sf("bus %q", b.Label))
		}
	}
	return owners
}

// offender names the row with the largest residual magnitude
func offender(sol *Solution, owners []string) string {
	imax, vmax := 0, -1.0
	for i, v := range sol.Res {
		if a := math.Abs(v); a > vmax || math.IsNaN(v) {
			imax, vmax = i, math.Abs(v)
		}
	}
	if imax < len(owners) {
		return owners[imax]
	}
	return io.Sf("row %d", imax)
}

// initGuess seeds every free primary variable: explicit starting
// values first, then stored design values, then component opinions,
// then generic defaults. Unset fractions share the remaining mass.
func initGuess(nw *Network, sol *Solution) {
	for _, c := range nw.Conns {
		seedScalar(c, &c.M, Mdot, 1.0)
		seedScalar(c, &c.P, Pres, 1e5)
		seedScalar(c, &c.H, Enth, 1e5)
		seedFluid(c, sol.Fluids)
	}
	for _, comp := range nw.Comps {
		for _, p := range comp.Vars() {
			p.clamp()
		}
	}
}

func seedScalar(c *Connection, p *Prop, key PropKey, def float64) {
	if p.IsSet {
		return
	}
	switch {
	case p.Start != 0:
		p.SI = p.Start
	case c.GoodVals && p.SI != 0:
		// keep the previous converged value
	case p.Design != 0:
		p.SI = p.Design
	case p.SI == 0:
		if g := guessFromEndpoints(c, key); g != 0 {
			p.SI = g
		} else {
			p.SI = def
		}
	}
}

// guessFromEndpoints asks both endpoint components for an opinion
func guessFromEndpoints(c *Connection, key PropKey) float64 {
	if g := c.Src.Guess(c, key); g != 0 {
		return g
	}
	return c.Tgt.Guess(c, key)
}

func seedFluid(c *Connection, fluids []string) {
	if len(fluids) == 1 {
		f := fluids[0]
		if !c.Fluid.IsSet[f] {
			c.Fluid.Val[f] = 1
		}
		return
	}
	if c.GoodVals {
		return
	}
	rest := 1.0
	var free []string
	for _, f := range fluids {
		if c.Fluid.IsSet[f] {
			rest -= c.Fluid.Val[f]
		} else if s, ok := c.Fluid.Start[f]; ok {
			c.Fluid.Val[f] = s
			rest -= s
		} else if d, ok := c.Fluid.Design[f]; ok && c.Fluid.Val[f] == 0 {
			c.Fluid.Val[f] = d
			rest -= d
		} else if c.Fluid.Val[f] == 0 {
			free = append(free, f)
		}
	}
	if len(free) == 0 {
		return
	}
	share := rest / float64(len(free))
	if share < 0 {
		share = 0
	}
	for _, f := range free {
		c.Fluid.Val[f] = share
	}
}

// step applies the increment with feasibility clamping
func step(nw *Network, sol *Solution, opts Options) error {
	for _, c := range nw.Conns {

		// mass flow
		if !c.M.IsSet {
			c.M.SI += sol.Inc[sol.Col(c, 0)]
			c.M.SI = clampTo(c.M.SI, opts.MRange)
		}

		// pressure with relaxation against sign flips
		if !c.P.IsSet {
			dp := sol.Inc[sol.Col(c, 1)]
			relax := 1.0
			if c.P.SI > 0 {
				if r := -dp / (0.5 * c.P.SI); r > 1 {
					relax = r
				}
			}
			c.P.SI += dp / relax
		}

		// enthalpy
		if !c.H.IsSet {
			c.H.SI += sol.Inc[sol.Col(c, 2)]
		}

		// fractions clamped to [0, 1]
		for j, f := range sol.Fluids {
			if c.Fluid.IsSet[f] {
				continue
			}
			x := c.Fluid.Val[f] + sol.Inc[sol.Col(c, 3+j)]
			if x < 0 {
				x = 0
			} else if x > 1 {
				x = 1
			}
			c.Fluid.Val[f] = x
		}

		if err := checkProps(c, sol, opts); err != nil {
			return err
		}
	}

	// component free variables
	for _, comp := range nw.Comps {
		for _, p := range comp.Vars() {
			p.Val += sol.Inc[p.Col]
			p.clamp()
		}
	}
	return nil
}

// checkProps keeps the stepped state inside the fluid-feasible region:
// pure fluids get model bounds every iteration, mixtures fall back to
// the generic ranges during the first iterations of a cold start
func checkProps(c *Connection, sol *Solution, opts Options) error {
	single := sol.Ev.Single(c.Fluid.Val)
	if single != "" {
		if !c.P.IsSet {
			pmin, pmax, err := sol.Ev.PBounds(single)
			if err != nil {
				return err
			}
			c.P.SI = clampTo(c.P.SI, [2]float64{pmin, pmax})
		}
		if !c.H.IsSet {
			hmin, hmax, err := sol.Ev.HBounds(single, c.P.SI)
			if err != nil {
				return err
			}
			c.H.SI = clampTo(c.H.SI, [2]float64{hmin, hmax})
		}
		return nil
	}
	if sol.It < 3 && !c.GoodVals {
		if !c.P.IsSet {
			c.P.SI = clampTo(c.P.SI, opts.PRange)
		}
		if !c.H.IsSet {
			c.H.SI = clampTo(c.H.SI, opts.HRange)
		}
	}
	return nil
}

func clampTo(v float64, r [2]float64) float64 {
	if v < r[0] {
		return r[0]
	}
	if v > r[1] {
		return r[1]
	}
	return v
}
