// Copyright 2026 The tespy-go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package net

import (
	"github.com/cpmech/gosl/chk"
)

// applyMode rebinds parameters for the selected solve mode. Design
// mode fixes the properties and parameters named in the design lists
// (at their retained values) and releases the offdesign ones, so a
// design solve after an offdesign solve restores the original
// bindings. Offdesign mode does the opposite: it releases the design
// names and fixes the offdesign ones at their stored design-point
// values, so sizing results carry over while operating conditions
// float.
func applyMode(nw *Network, sol *Solution) error {
	if sol.Mode == Design {
		for _, c := range nw.Conns {
			for _, name := range c.Offdesign {
				key, err := propByName(name)
				if err != nil {
					return chk.Err("connection %q offdesign list: %v", c.Label, err)
				}
				c.Unset(key)
			}
			for _, name := range c.Design {
				key, err := propByName(name)
				if err != nil {
					return chk.Err("connection %q design list: %v", c.Label, err)
				}
				p := c.prop(key)
				p.IsSet = true
				p.Ref = nil
			}
		}
		for _, comp := range nw.Comps {
			design, offdesign := comp.DesignParams()
			prms := comp.Params()
			for _, name := range offdesign {
				p, ok := prms[name]
				if !ok {
					return chk.Err("component %q offdesign list names unknown parameter %q", comp.Label(), name)
				}
				p.Unset()
			}
			for _, name := range design {
				p, ok := prms[name]
				if !ok {
					return chk.Err("component %q design list names unknown parameter %q", comp.Label(), name)
				}
				p.Set(p.Val)
			}
		}
		return nil
	}
	for _, c := range nw.Conns {
		for _, name := range c.Design {
			key, err := propByName(name)
			if err != nil {
				return chk.Err("connection %q design list: %v", c.Label, err)
			}
			c.Unset(key)
		}
		for _, name := range c.Offdesign {
			key, err := propByName(name)
			if err != nil {
				return chk.Err("connection %q offdesign list: %v", c.Label, err)
			}
			p := c.prop(key)
			if p.Design == 0 {
				return chk.Err("connection %q: offdesign property %q has no stored design value; run a design solve first", c.Label, name)
			}
			p.SI = p.Design
			if v, cerr := fromSI(key, p.Design, p.Unit); cerr == nil {
				p.Val = v
			} else {
				p.Val, p.Unit = p.Design, ""
			}
			p.IsSet = true
			p.Ref = nil
		}
	}
	for _, comp := range nw.Comps {
		design, offdesign := comp.DesignParams()
		prms := comp.Params()
		for _, name := range design {
			p, ok := prms[name]
			if !ok {
				return chk.Err("component %q design list names unknown parameter %q", comp.Label(), name)
			}
			p.Unset()
		}
		for _, name := range offdesign {
			p, ok := prms[name]
			if !ok {
				return chk.Err("component %q offdesign list names unknown parameter %q", comp.Label(), name)
			}
			if p.Design == 0 {
				return chk.Err("component %q: offdesign parameter %q has no stored design value; run a design solve first", comp.Label(), name)
			}
			p.Set(p.Design)
		}
	}
	return nil
}

// recordDesign stores the converged state as the design point; called
// after a successful design-mode solve
func recordDesign(nw *Network, sol *Solution) {
	for _, c := range nw.Conns {
		for _, key := range []PropKey{Mdot, Pres, Enth, Temp, Qual, Vdot, TdBp, Entr} {
			p := c.prop(key)
			p.Design = p.SI
		}
		for f, v := range c.Fluid.Val {
			c.Fluid.Design[f] = v
		}
	}
	for _, comp := range nw.Comps {
		for _, p := range comp.Params() {
			p.Design = p.Val
		}
	}
}
