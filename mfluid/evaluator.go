// Copyright 2026 The tespy-go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mfluid

import (
	"hash/fnv"
	"math"
	"sort"

	"github.com/cpmech/gosl/chk"
)

// Flow holds the primary state of one stream: mass flow, pressure,
// enthalpy and composition as fluidName => mass fraction.
type Flow struct {
	M float64
	P float64
	H float64
	X map[string]float64
}

// memoKey identifies one mixture temperature lookup. Keys are exact bit
// patterns: identical inputs always return identical results.
type memoKey struct {
	p, h  uint64
	xhash uint64
}

// Evaluator computes mixture properties and their first partials from
// the per-fluid models. Mixture temperature lookups are memoized; the
// cache is the only mutable state and repeated lookups with identical
// keys return identical results.
type Evaluator struct {
	fluids []string         // tracked fluids, insertion order
	models map[string]Model // fluidName => model
	memo   map[memoKey]float64
}

// NewEvaluator returns a new evaluator without fluids
func NewEvaluator() *Evaluator {
	return &Evaluator{
		models: make(map[string]Model),
		memo:   make(map[memoKey]float64),
	}
}

// AddFluid registers one tracked fluid with its property model
func (o *Evaluator) AddFluid(name string, model Model) {
	if _, ok := o.models[name]; !ok {
		o.fluids = append(o.fluids, name)
	}
	o.models[name] = model
}

// Fluids returns the tracked fluid names in insertion order
func (o *Evaluator) Fluids() []string {
	return o.fluids
}

// Model returns the model of a tracked fluid or nil
func (o *Evaluator) Model(name string) Model {
	return o.models[name]
}

// Single returns the fluid name if the composition contains one fluid
// only; otherwise an empty string.
func (o *Evaluator) Single(x map[string]float64) string {
	name := ""
	n := 0
	for f, v := range x {
		if v > 1e-10 {
			name = f
			n++
		}
	}
	if n == 1 {
		return name
	}
	return ""
}

// perturbation sizes for the central differences of the partials
func dpert(p float64) float64 { return 1e-4 * math.Max(math.Abs(p), 1e4) }
func dhert(h float64) float64 { return 1e-4 * math.Max(math.Abs(h), 1e4) }

const dxPert = 1e-5

// xhash hashes a composition; fluid names are sorted so that map
// iteration order cannot leak into the key
func xhash(x map[string]float64) uint64 {
	names := make([]string, 0, len(x))
	for f := range x {
		names = append(names, f)
	}
	sort.Strings(names)
	h := fnv.New64a()
	var buf [8]byte
	for _, f := range names {
		h.Write([]byte(f))
		bits := math.Float64bits(x[f])
		for i := 0; i < 8; i++ {
			buf[i] = byte(bits >> (8 * i))
		}
		h.Write(buf[:])
	}
	return h.Sum64()
}

// TMixPH returns the mixture temperature for given flow state
func (o *Evaluator) TMixPH(fl Flow) (float64, error) {
	if f := o.Single(fl.X); f != "" {
		return o.models[f].TPH(fl.P, fl.H)
	}
	key := memoKey{math.Float64bits(fl.P), math.Float64bits(fl.H), xhash(fl.X)}
	if T, ok := o.memo[key]; ok {
		return T, nil
	}
	T, err := o.solveTmix(fl)
	if err != nil {
		return 0, err
	}
	o.memo[key] = T
	return T, nil
}

// solveTmix finds T such that Σ xi h_i(p, T) = h by bisection.
// Σ xi h_i is monotonically increasing in T for all models.
func (o *Evaluator) solveTmix(fl Flow) (float64, error) {
	Tlo, Thi, err := o.tbounds(fl.X)
	if err != nil {
		return 0, err
	}
	f := func(T float64) (float64, error) {
		h, e := o.HMixPT(fl, T)
		return h - fl.H, e
	}
	flo, err := f(Tlo)
	if err != nil {
		return 0, err
	}
	fhi, err := f(Thi)
	if err != nil {
		return 0, err
	}
	if flo > 0 {
		return 0, &RangeError{"mixture", "h", fl.H, fl.H - flo, fl.H - fhi}
	}
	if fhi < 0 {
		return 0, &RangeError{"mixture", "h", fl.H, fl.H - flo, fl.H - fhi}
	}
	for it := 0; it < 100; it++ {
		Tm := 0.5 * (Tlo + Thi)
		fm, err := f(Tm)
		if err != nil {
			return 0, err
		}
		if fm > 0 {
			Thi = Tm
		} else {
			Tlo = Tm
		}
		if Thi-Tlo < 1e-9*Thi {
			break
		}
	}
	return 0.5 * (Tlo + Thi), nil
}

// tbounds intersects the temperature validity ranges of all fluids
// present in the composition
func (o *Evaluator) tbounds(x map[string]float64) (Tlo, Thi float64, err error) {
	Tlo, Thi = 0, math.MaxFloat64
	found := false
	for f, v := range x {
		if v <= 1e-10 {
			continue
		}
		m, ok := o.models[f]
		if !ok {
			return 0, 0, chk.Err("fluid %q in composition is not tracked by the evaluator", f)
		}
		_, _, tmin, tmax := m.Range()
		Tlo = math.Max(Tlo, tmin)
		Thi = math.Min(Thi, tmax)
		found = true
	}
	if !found {
		return 0, 0, chk.Err("composition holds no fluid with a positive mass fraction")
	}
	if Tlo >= Thi {
		return 0, 0, chk.Err("temperature validity ranges of the mixed fluids do not overlap: [%g, %g]", Tlo, Thi)
	}
	return
}

// HMixPT returns the mixture enthalpy for given pressure and temperature
func (o *Evaluator) HMixPT(fl Flow, T float64) (float64, error) {
	if f := o.Single(fl.X); f != "" {
		return o.models[f].HPT(fl.P, T)
	}
	h := 0.0
	for f, v := range fl.X {
		if v <= 1e-10 {
			continue
		}
		hi, err := o.models[f].HPT(fl.P, T)
		if err != nil {
			return 0, err
		}
		h += v * hi
	}
	return h, nil
}

// VMixPH returns the mixture specific volume for given flow state
func (o *Evaluator) VMixPH(fl Flow) (float64, error) {
	if f := o.Single(fl.X); f != "" {
		return o.models[f].VPH(fl.P, fl.H)
	}
	T, err := o.TMixPH(fl)
	if err != nil {
		return 0, err
	}
	v := 0.0
	for f, xi := range fl.X {
		if xi <= 1e-10 {
			continue
		}
		hi, err := o.models[f].HPT(fl.P, T)
		if err != nil {
			return 0, err
		}
		vi, err := o.models[f].VPH(fl.P, hi)
		if err != nil {
			return 0, err
		}
		v += xi * vi
	}
	return v, nil
}

// SMixPH returns the mixture specific entropy for given flow state
func (o *Evaluator) SMixPH(fl Flow) (float64, error) {
	if f := o.Single(fl.X); f != "" {
		return o.models[f].SPH(fl.P, fl.H)
	}
	T, err := o.TMixPH(fl)
	if err != nil {
		return 0, err
	}
	s := 0.0
	for f, xi := range fl.X {
		if xi <= 1e-10 {
			continue
		}
		hi, err := o.models[f].HPT(fl.P, T)
		if err != nil {
			return 0, err
		}
		si, err := o.models[f].SPH(fl.P, hi)
		if err != nil {
			return 0, err
		}
		s += xi * si
	}
	return s, nil
}

// HMixPQ returns the enthalpy at given vapour quality; pure fluids only
func (o *Evaluator) HMixPQ(fl Flow, Q float64) (float64, error) {
	f := o.Single(fl.X)
	if f == "" {
		return 0, chk.Err("vapour quality is defined for pure fluids only")
	}
	return o.models[f].HPQ(fl.P, Q)
}

// QPH returns the vapour quality; pure fluids only
func (o *Evaluator) QPH(fl Flow) (float64, error) {
	f := o.Single(fl.X)
	if f == "" {
		return 0, chk.Err("vapour quality is defined for pure fluids only")
	}
	return o.models[f].QPH(fl.P, fl.H)
}

// TBoil returns the boiling point temperature; pure fluids only
func (o *Evaluator) TBoil(fl Flow) (float64, error) {
	f := o.Single(fl.X)
	if f == "" {
		return 0, chk.Err("boiling point is defined for pure fluids only")
	}
	return o.models[f].TSat(fl.P)
}

// DTdp returns ∂T/∂p at constant h and composition
func (o *Evaluator) DTdp(fl Flow) (float64, error) {
	d := dpert(fl.P)
	up, dn := fl, fl
	up.P += d
	dn.P -= d
	Tu, err := o.TMixPH(up)
	if err != nil {
		return 0, err
	}
	Td, err := o.TMixPH(dn)
	if err != nil {
		return 0, err
	}
	return (Tu - Td) / (2 * d), nil
}

// DTdh returns ∂T/∂h at constant p and composition
func (o *Evaluator) DTdh(fl Flow) (float64, error) {
	d := dhert(fl.H)
	up, dn := fl, fl
	up.H += d
	dn.H -= d
	Tu, err := o.TMixPH(up)
	if err != nil {
		return 0, err
	}
	Td, err := o.TMixPH(dn)
	if err != nil {
		return 0, err
	}
	return (Tu - Td) / (2 * d), nil
}

// DTdfluid returns ∂T/∂xi for every tracked fluid
func (o *Evaluator) DTdfluid(fl Flow) (map[string]float64, error) {
	res := make(map[string]float64, len(o.fluids))
	for _, f := range o.fluids {
		up := Flow{M: fl.M, P: fl.P, H: fl.H, X: copyX(fl.X)}
		dn := Flow{M: fl.M, P: fl.P, H: fl.H, X: copyX(fl.X)}
		up.X[f] += dxPert
		dn.X[f] -= dxPert
		if dn.X[f] < 0 {
			dn.X[f] = 0
		}
		Tu, err := o.TMixPH(up)
		if err != nil {
			return nil, err
		}
		Td, err := o.TMixPH(dn)
		if err != nil {
			return nil, err
		}
		res[f] = (Tu - Td) / (up.X[f] - dn.X[f])
	}
	return res, nil
}

// DVdp returns ∂v/∂p at constant h and composition
func (o *Evaluator) DVdp(fl Flow) (float64, error) {
	d := dpert(fl.P)
	up, dn := fl, fl
	up.P += d
	dn.P -= d
	vu, err := o.VMixPH(up)
	if err != nil {
		return 0, err
	}
	vd, err := o.VMixPH(dn)
	if err != nil {
		return 0, err
	}
	return (vu - vd) / (2 * d), nil
}

// DVdh returns ∂v/∂h at constant p and composition
func (o *Evaluator) DVdh(fl Flow) (float64, error) {
	d := dhert(fl.H)
	up, dn := fl, fl
	up.H += d
	dn.H -= d
	vu, err := o.VMixPH(up)
	if err != nil {
		return 0, err
	}
	vd, err := o.VMixPH(dn)
	if err != nil {
		return 0, err
	}
	return (vu - vd) / (2 * d), nil
}

// DHPQdp returns ∂h(p, Q)/∂p at constant quality; pure fluids only
func (o *Evaluator) DHPQdp(fl Flow, Q float64) (float64, error) {
	d := dpert(fl.P)
	up, dn := fl, fl
	up.P += d
	dn.P -= d
	hu, err := o.HMixPQ(up, Q)
	if err != nil {
		return 0, err
	}
	hd, err := o.HMixPQ(dn, Q)
	if err != nil {
		return 0, err
	}
	return (hu - hd) / (2 * d), nil
}

// DTBoilDp returns ∂Tsat/∂p; pure fluids only
func (o *Evaluator) DTBoilDp(fl Flow) (float64, error) {
	d := dpert(fl.P)
	up, dn := fl, fl
	up.P += d
	dn.P -= d
	Tu, err := o.TBoil(up)
	if err != nil {
		return 0, err
	}
	Td, err := o.TBoil(dn)
	if err != nil {
		return 0, err
	}
	return (Tu - Td) / (2 * d), nil
}

// HBounds returns the feasible enthalpy band of a pure fluid at given
// pressure. The lower bound keeps a margin of 0.1 % above the coldest
// valid temperature; the upper bound retries with reduced temperature
// until the model accepts the input.
func (o *Evaluator) HBounds(name string, p float64) (hmin, hmax float64, err error) {
	m, ok := o.models[name]
	if !ok {
		return 0, 0, chk.Err("fluid %q is not tracked by the evaluator", name)
	}
	_, _, tmin, tmax := m.Range()
	hmin, err = m.HPT(p, tmin*1.001)
	if err != nil {
		hmin, err = m.HPT(p, tmin*1.05)
		if err != nil {
			return
		}
	}
	T := tmax
	for {
		hmax, err = m.HPT(p, T)
		if err == nil {
			return
		}
		T *= 0.99
		if T < tmin {
			return 0, 0, chk.Err("cannot find a feasible upper enthalpy bound for fluid %q at p=%g", name, p)
		}
	}
}

// PBounds returns the feasible pressure range of a pure fluid
func (o *Evaluator) PBounds(name string) (pmin, pmax float64, err error) {
	m, ok := o.models[name]
	if !ok {
		return 0, 0, chk.Err("fluid %q is not tracked by the evaluator", name)
	}
	pmin, pmax, _, _ = m.Range()
	return
}

// copyX clones a composition map
func copyX(x map[string]float64) map[string]float64 {
	c := make(map[string]float64, len(x))
	for f, v := range x {
		c[f] = v
	}
	return c
}
