// Copyright 2026 The tespy-go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package inp

import (
	"encoding/json"
	"os"

	"github.com/cpmech/gosl/chk"
)

// ConnPoint is the converged state of one connection [SI]
type ConnPoint struct {
	M     float64            `json:"m"`
	P     float64            `json:"p"`
	H     float64            `json:"h"`
	T     float64            `json:"T"`
	V     float64            `json:"v"`
	Fluid map[string]float64 `json:"fluid"`
}

// DesignPoint is the persisted snapshot of a converged design solve,
// keyed by connection and component labels. Offdesign solves load it
// to seed start values and re-bind parameters.
type DesignPoint struct {
	Key    string                        `json:"key"`    // simulation key of the design solve
	Conns  map[string]ConnPoint          `json:"conns"`  // connection label => state
	Comps  map[string]map[string]float64 `json:"comps"`  // component label => parameter => value
	Busses map[string]float64            `json:"busses"` // bus label => total [W]
}

// NewDesignPoint returns an empty snapshot
func NewDesignPoint(key string) *DesignPoint {
	return &DesignPoint{
		Key:    key,
		Conns:  make(map[string]ConnPoint),
		Comps:  make(map[string]map[string]float64),
		Busses: make(map[string]float64),
	}
}

// Save writes the snapshot as JSON
func (o *DesignPoint) Save(path string) error {
	b, err := json.MarshalIndent(o, "", "  ")
	if err != nil {
		return chk.Err("cannot encode design point %q: %v", o.Key, err)
	}
	if err := os.WriteFile(path, b, 0644); err != nil {
		return chk.Err("cannot write design point file %q: %v", path, err)
	}
	return nil
}

// ReadDesignPoint reads a snapshot file
func ReadDesignPoint(path string) (*DesignPoint, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, chk.Err("cannot read design point file %q: %v", path, err)
	}
	var o DesignPoint
	if err := json.Unmarshal(b, &o); err != nil {
		return nil, chk.Err("cannot unmarshal design point file %q: %v", path, err)
	}
	return &o, nil
}
