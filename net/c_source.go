// Copyright 2026 The tespy-go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package net

// Source is a boundary component feeding one stream into the network.
// It emits no equations; the stream is pinned by connection settings.
type Source struct {
	Base
}

// Sink is a boundary component absorbing one stream
type Sink struct {
	Base
}

// register components
func init() {
	callocators["source"] = func(label string, prms map[string]float64) (Component, error) {
		return NewSource(label), nil
	}
	callocators["sink"] = func(label string, prms map[string]float64) (Component, error) {
		return NewSink(label), nil
	}
}

// NewSource returns a new source
func NewSource(label string) *Source {
	o := new(Source)
	o.initBase(label, 0, 1)
	return o
}

// NewSink returns a new sink
func NewSink(label string) *Sink {
	o := new(Sink)
	o.initBase(label, 1, 0)
	return o
}

func (o *Source) Setup(sol *Solution) error { return o.setupBase(sol, 0) }
func (o *Sink) Setup(sol *Solution) error   { return o.setupBase(sol, 0) }

func (o *Source) Equations(sol *Solution) error   { return nil }
func (o *Source) Derivatives(sol *Solution) error { return nil }
func (o *Sink) Equations(sol *Solution) error     { return nil }
func (o *Sink) Derivatives(sol *Solution) error   { return nil }
