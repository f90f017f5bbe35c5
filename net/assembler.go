// Copyright 2026 The tespy-go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package net

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/la"
)

// layout sizes the state vector, assigns the trailing columns of the
// component free variables and allocates the global containers
func layout(nw *Network, sol *Solution) {
	sol.NumConnVars = 3 + len(sol.Fluids)
	col := len(nw.Conns) * sol.NumConnVars
	base := col
	for _, c := range nw.Comps {
		for _, p := range c.Vars() {
			p.Col = col
			col++
		}
	}
	sol.NumCompVars = col - base
	sol.NumVars = col
	sol.Res = la.NewVector(col)
	sol.Inc = la.NewVector(col)
	sol.Jac = la.NewMatrix(col, col)
	sol.Filter = make([]bool, col)
}

// assemble fills the global residual and Jacobian: component blocks
// first, then connection constraints, then bus rows. Row order is
// fixed across iterations so throttled rows keep their derivatives.
func assemble(nw *Network, sol *Solution) error {
	row := 0
	for _, comp := range nw.Comps {
		if err := comp.Equations(sol); err != nil {
			return chk.Err("component %q: %v", comp.Label(), err)
		}
		if err := comp.Derivatives(sol); err != nil {
			return chk.Err("component %q: %v", comp.Label(), err)
		}
		res, jac := comp.Res(), comp.Jac()
		conns := comp.Conns()
		vars := comp.Vars()
		for i := 0; i < comp.NumEq(); i++ {
			sol.Res[row] = res[i]
			for k, c := range conns {
				base := sol.Col(c, 0)
				kbase := k * sol.NumConnVars
				for off := 0; off < sol.NumConnVars; off++ {
					sol.Jac.Set(row, base+off, jac.Get(i, kbase+off))
				}
			}
			vbase := len(conns) * sol.NumConnVars
			for j, p := range vars {
				sol.Jac.Set(row, p.Col, jac.Get(i, vbase+j))
			}
			row++
		}
	}
	for _, c := range nw.Conns {
		var err error
		row, err = assembleConn(sol, c, row)
		if err != nil {
			return chk.Err("connection %q: %v", c.Label, err)
		}
	}
	for _, b := range nw.Busses {
		if !b.HasTarget() {
			continue
		}
		sol.Res[row] = b.Residual(sol)
		if err := b.Derivatives(sol, row); err != nil {
			return chk.Err("bus %q: %v", b.Label, err)
		}
		row++
	}
	if row != sol.NumVars {
		return chk.Err("assembled %d equations for %d unknowns", row, sol.NumVars)
	}
	return nil
}

// assembleConn writes the constraint rows of one connection. Fixed
// primaries contribute unit rows so their columns never step; affine
// references tie two connections; derived-property constraints close
// over the evaluator and chain through its partials.
func assembleConn(sol *Solution, c *Connection, row int) (int, error) {

	// fixed and referenced primaries
	for off, key := range primaryKeys {
		p := c.prop(key)
		if p.IsSet {
			sol.Res[row] = 0
			sol.Jac.Set(row, sol.Col(c, off), 1)
			row++
		}
		if r := p.Ref; r != nil {
			sol.Res[row] = p.SI - (r.Factor*r.Conn.prop(key).SI + r.Offset)
			sol.Jac.Set(row, sol.Col(c, off), 1)
			sol.Jac.Set(row, sol.Col(r.Conn, off), -r.Factor)
			row++
		}
	}

	fl := sol.Flow(c)

	// fixed temperature: 0 = T_spec - T(p,h,x)
	if c.T.IsSet {
		T, err := sol.Ev.TMixPH(fl)
		if err != nil {
			return row, err
		}
		sol.Res[row] = c.T.SI - T
		acc := make(map[int]float64)
		if err = tempCols(sol, c, acc, -1); err != nil {
			return row, err
		}
		writeCols(sol, row, acc)
		row++
	}

	// referenced temperature: 0 = T(c) - factor T(other) - offset
	if r := c.T.Ref; r != nil {
		T, err := sol.Ev.TMixPH(fl)
		if err != nil {
			return row, err
		}
		To, err := sol.Ev.TMixPH(sol.Flow(r.Conn))
		if err != nil {
			return row, err
		}
		sol.Res[row] = T - (r.Factor*To + r.Offset)
		acc := make(map[int]float64)
		if err = tempCols(sol, c, acc, 1); err != nil {
			return row, err
		}
		if err = tempCols(sol, r.Conn, acc, -r.Factor); err != nil {
			return row, err
		}
		writeCols(sol, row, acc)
		row++
	}

	// fixed vapour quality: 0 = h - h(p, x_spec)
	if c.X.IsSet {
		hq, err := sol.Ev.HMixPQ(fl, c.X.SI)
		if err != nil {
			return row, err
		}
		sol.Res[row] = c.H.SI - hq
		sol.Jac.Set(row, sol.Col(c, 2), 1)
		if !sol.Skip(sol.Col(c, 1)) {
			d, err := sol.Ev.DHPQdp(fl, c.X.SI)
			if err != nil {
				return row, err
			}
			sol.Jac.Set(row, sol.Col(c, 1), -d)
		}
		row++
	}

	// fixed volumetric flow: 0 = V_spec - v(p,h) m
	if c.V.IsSet {
		v, err := sol.Ev.VMixPH(fl)
		if err != nil {
			return row, err
		}
		sol.Res[row] = c.V.SI - v*c.M.SI
		sol.Jac.Set(row, sol.Col(c, 0), -v)
		if !sol.Skip(sol.Col(c, 1)) {
			d, err := sol.Ev.DVdp(fl)
			if err != nil {
				return row, err
			}
			sol.Jac.Set(row, sol.Col(c, 1), -c.M.SI*d)
		}
		if !sol.Skip(sol.Col(c, 2)) {
			d, err := sol.Ev.DVdh(fl)
			if err != nil {
				return row, err
			}
			sol.Jac.Set(row, sol.Col(c, 2), -c.M.SI*d)
		}
		row++
	}

	// fixed boiling point offset: 0 = T(p,h) - Td_spec - Tsat(p)
	if c.Td.IsSet {
		T, err := sol.Ev.TMixPH(fl)
		if err != nil {
			return row, err
		}
		Ts, err := sol.Ev.TBoil(fl)
		if err != nil {
			return row, err
		}
		sol.Res[row] = T - c.Td.SI - Ts
		acc := make(map[int]float64)
		if err = tempCols(sol, c, acc, 1); err != nil {
			return row, err
		}
		if cp := sol.Col(c, 1); !sol.Skip(cp) {
			d, err := sol.Ev.DTBoilDp(fl)
			if err != nil {
				return row, err
			}
			acc[cp] -= d
		}
		writeCols(sol, row, acc)
		row++
	}

	// fixed mass fractions
	for j, f := range sol.Fluids {
		if c.Fluid.IsSet[f] {
			sol.Res[row] = 0
			sol.Jac.Set(row, sol.Col(c, 3+j), 1)
			row++
		}
	}

	// fraction balance: 0 = 1 - sum(x)
	if c.Fluid.Balance {
		sum := 0.0
		for j, f := range sol.Fluids {
			sum += c.Fluid.Val[f]
			sol.Jac.Set(row, sol.Col(c, 3+j), -1)
		}
		sol.Res[row] = 1 - sum
		row++
	}
	return row, nil
}

// tempCols accumulates sign * dT/d(p,h,x) of a connection into acc,
// keyed by global column; throttled columns are left untouched so
// their previous derivatives survive
func tempCols(sol *Solution, c *Connection, acc map[int]float64, sign float64) error {
	fl := sol.Flow(c)
	cp, ch := sol.Col(c, 1), sol.Col(c, 2)
	if !sol.Skip(cp) {
		d, err := sol.Ev.DTdp(fl)
		if err != nil {
			return err
		}
		acc[cp] += sign * d
	}
	if !sol.Skip(ch) {
		d, err := sol.Ev.DTdh(fl)
		if err != nil {
			return err
		}
		acc[ch] += sign * d
	}
	if len(sol.Fluids) > 1 {
		dx, err := sol.Ev.DTdfluid(fl)
		if err != nil {
			return err
		}
		for j, f := range sol.Fluids {
			cx := sol.Col(c, 3+j)
			if sol.Skip(cx) {
				continue
			}
			acc[cx] += sign * dx[f]
		}
	}
	return nil
}

// writeCols flushes an accumulation map into one Jacobian row
func writeCols(sol *Solution, row int, acc map[int]float64) {
	for col, v := range acc {
		sol.Jac.Set(row, col, v)
	}
}
