// Copyright 2026 The tespy-go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package net

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/la"
	"github.com/cpmech/gosl/utl"
	"gonum.org/v1/gonum/mat"
)

// LinSolver solves the dense linear system A x = b of one Newton step
type LinSolver interface {
	Solve(x la.Vector, A *la.Matrix, b la.Vector) error
}

// lsallocators holds the registered linear solver backends
var lsallocators = map[string]func() LinSolver{}

// GetLinSolver returns a new backend instance by name
func GetLinSolver(name string) (LinSolver, error) {
	alloc, ok := lsallocators[name]
	if !ok {
		return nil, chk.Err("unknown linear solver %q", name)
	}
	return alloc(), nil
}

func init() {
	lsallocators["dense"] = func() LinSolver { return new(denseLU) }
	lsallocators["gauss"] = func() LinSolver { return new(gaussElim) }
}

// denseLU solves through an LU factorisation with partial pivoting.
// Ill-conditioned but solvable systems are accepted; exactly singular
// ones are reported as errors so the controller can stop cleanly.
type denseLU struct {
	a  *mat.Dense
	lu mat.LU
}

func (o *denseLU) Solve(x la.Vector, A *la.Matrix, b la.Vector) error {
	n := len(b)
	if o.a == nil || o.a.RawMatrix().Rows != n {
		o.a = mat.NewDense(n, n, nil)
	}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			o.a.Set(i, j, A.Get(i, j))
		}
	}
	o.lu.Factorize(o.a)
	var dst mat.VecDense
	if err := o.lu.SolveVecTo(&dst, false, mat.NewVecDense(n, b)); err != nil {
		if _, ok := err.(mat.Condition); !ok {
			return chk.Err("jacobian is singular: %v", err)
		}
	}
	for i := 0; i < n; i++ {
		v := dst.AtVec(i)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return chk.Err("linear solve produced a non-finite increment at column %d", i)
		}
		x[i] = v
	}
	return nil
}

// gaussElim is a plain Gaussian elimination with partial pivoting;
// fallback backend that reports the offending column on a zero pivot
type gaussElim struct{}

func (o *gaussElim) Solve(x la.Vector, A *la.Matrix, b la.Vector) error {
	n := len(b)
	a := utl.Alloc(n, n)
	r := make([]float64, n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			a[i][j] = A.Get(i, j)
		}
		r[i] = b[i]
	}
	for k := 0; k < n; k++ {
		// pivot
		p, pmax := k, math.Abs(a[k][k])
		for i := k + 1; i < n; i++ {
			if v := math.Abs(a[i][k]); v > pmax {
				p, pmax = i, v
			}
		}
		if pmax == 0 {
			return chk.Err("jacobian is singular at column %d", k)
		}
		if p != k {
			a[p], a[k] = a[k], a[p]
			r[p], r[k] = r[k], r[p]
		}
		for i := k + 1; i < n; i++ {
			f := a[i][k] / a[k][k]
			if f == 0 {
				continue
			}
			for j := k; j < n; j++ {
				a[i][j] -= f * a[k][j]
			}
			r[i] -= f * r[k]
		}
	}
	for i := n - 1; i >= 0; i-- {
		s := r[i]
		for j := i + 1; j < n; j++ {
			s -= a[i][j] * x[j]
		}
		x[i] = s / a[i][i]
	}
	return nil
}
