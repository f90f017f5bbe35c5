// Copyright 2026 The tespy-go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package net

import (
	"math"
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_charline01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("charline01. interpolation, ends and slopes")

	line, err := NewCharLine([]float64{0, 1, 2}, []float64{0, 10, 15}, false)
	require.NoError(tst, err)

	assert.Equal(tst, 5.0, line.Evaluate(0.5))
	assert.Equal(tst, 12.5, line.Evaluate(1.5))
	assert.Equal(tst, 10.0, line.Deriv(0.5))
	assert.Equal(tst, 5.0, line.Deriv(1.5))

	// clamped ends
	assert.Equal(tst, 0.0, line.Evaluate(-1))
	assert.Equal(tst, 15.0, line.Evaluate(3))
	assert.Equal(tst, 0.0, line.Deriv(3))

	// extrapolated ends continue the slope
	ext, err := NewCharLine([]float64{0, 1, 2}, []float64{0, 10, 15}, true)
	require.NoError(tst, err)
	assert.Equal(tst, 20.0, ext.Evaluate(3))
	assert.Equal(tst, 5.0, ext.Deriv(3))

	// invalid tables are rejected
	_, err = NewCharLine([]float64{0, 1}, []float64{0}, false)
	assert.Error(tst, err)
	_, err = NewCharLine([]float64{0, 1, 1}, []float64{0, 1, 2}, false)
	assert.Error(tst, err)
}

func Test_numdiff01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("numdiff01. central difference derivative")

	x := 0.7
	f := func() (float64, error) { return math.Sin(x), nil }
	d, err := NumericDeriv(f, &x)
	require.NoError(tst, err)
	chk.Float64(tst, "d sin/dx", 1e-3, d, math.Cos(0.7))
	chk.Float64(tst, "x restored", 1e-15, x, 0.7)
}

func Test_stale01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("stale01. derivative refresh throttling")

	pol := StalePolicy{Every: 4, ResTol: 1e-8}

	// large previous residual always refreshes
	assert.True(tst, pol.Refresh(1, 1.0, false))

	// tiny residual freezes the row between periodic refreshes
	assert.False(tst, pol.Refresh(1, 1e-12, false))
	assert.False(tst, pol.Refresh(2, 1e-12, false))

	// every Nth iteration refreshes regardless
	assert.True(tst, pol.Refresh(4, 1e-12, false))
	assert.True(tst, pol.Refresh(8, 1e-12, false))

	// the global override disables throttling
	assert.True(tst, pol.Refresh(1, 1e-12, true))
}

func Test_group01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("group01. partially specified parameter group")

	pipe := NewPipe("pi1")
	pipe.D.Set(0.1)
	pipe.L.Set(50)
	// lambda left unset: group is partial

	sol := &Solution{Fluids: []string{"air"}}
	sol.NumConnVars = 3 + len(sol.Fluids)
	err := pipe.Setup(sol)
	require.Error(tst, err)
	assert.Contains(tst, err.Error(), "hydro_group")

	// fully specified group passes and emits one equation
	pipe.Lambda.Set(0.02)
	require.NoError(tst, pipe.Setup(sol))
	chk.IntAssert(pipe.NumEq(), 1+1+1) // fluid, mass, friction
}
