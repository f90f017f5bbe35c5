// Copyright 2026 The tespy-go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package net

import "math"

// NumericDeriv computes d f / d x by central difference around the
// current value held in *x. The perturbation policy is shared by every
// component so that step sizes stay consistent: relative step of 1e-4
// with an absolute floor of 1e-2. The variable is restored afterwards.
func NumericDeriv(f func() (float64, error), x *float64) (float64, error) {
	x0 := *x
	d := 1e-4 * math.Max(math.Abs(x0), 100.0)
	*x = x0 + d
	fu, err := f()
	if err != nil {
		*x = x0
		return 0, err
	}
	*x = x0 - d
	fd, err := f()
	*x = x0
	if err != nil {
		return 0, err
	}
	return (fu - fd) / (2 * d), nil
}

// StalePolicy decides whether an expensive nonlinear equation row must
// be refreshed this iteration. Throttling trades derivative freshness
// for iteration cost and must not change the converged solution.
type StalePolicy struct {
	Every  int     // refresh at least every Every-th iteration
	ResTol float64 // refresh while the previous residual exceeds this
}

// Refresh reports whether the row is stale
func (o StalePolicy) Refresh(it int, prevRes float64, always bool) bool {
	if always {
		return true
	}
	if o.Every > 0 && it%o.Every == 0 {
		return true
	}
	return math.Abs(prevRes) > o.ResTol
}
