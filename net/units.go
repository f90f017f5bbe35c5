// Copyright 2026 The tespy-go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package net

import (
	"github.com/cpmech/gosl/chk"
)

// unit conversion: SI = A*val + B
type unitConv struct {
	A, B float64
}

// unitTable holds the supported units per property; the empty unit
// means the SI unit of the property
var unitTable = map[PropKey]map[string]unitConv{
	Mdot: {
		"": {1, 0}, "kg/s": {1, 0}, "t/h": {1.0 / 3.6, 0},
	},
	Pres: {
		"": {1, 0}, "Pa": {1, 0}, "kPa": {1e3, 0}, "bar": {1e5, 0}, "MPa": {1e6, 0},
	},
	Enth: {
		"": {1, 0}, "J/kg": {1, 0}, "kJ/kg": {1e3, 0}, "MJ/kg": {1e6, 0},
	},
	Temp: {
		"": {1, 0}, "K": {1, 0}, "C": {1, 273.15},
	},
	Qual: {
		"": {1, 0}, "-": {1, 0},
	},
	Vdot: {
		"": {1, 0}, "m3/s": {1, 0}, "m3/h": {1.0 / 3600.0, 0},
	},
	TdBp: { // temperature difference: no offset
		"": {1, 0}, "K": {1, 0}, "C": {1, 0},
	},
	Entr: {
		"": {1, 0}, "J/kgK": {1, 0}, "kJ/kgK": {1e3, 0},
	},
}

// toSI converts a value in user units to SI
func toSI(key PropKey, val float64, unit string) (float64, error) {
	c, ok := unitTable[key][unit]
	if !ok {
		return 0, chk.Err("unknown unit %q for property %q", unit, key)
	}
	return c.A*val + c.B, nil
}

// fromSI converts an SI value back to user units
func fromSI(key PropKey, si float64, unit string) (float64, error) {
	c, ok := unitTable[key][unit]
	if !ok {
		return 0, chk.Err("unknown unit %q for property %q", unit, key)
	}
	return (si - c.B) / c.A, nil
}
