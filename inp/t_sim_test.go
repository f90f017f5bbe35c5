// Copyright 2026 The tespy-go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package inp

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	io.Verbose = false
}

func verbose() {
	io.Verbose = true
	chk.Verbose = true
}

func Test_sim01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("sim01. read simulation file")

	sim, err := ReadSim("data/throttle.sim")
	require.NoError(tst, err)

	chk.String(tst, sim.Key, "throttle")
	chk.String(tst, sim.Data.Desc, "adiabatic air throttle")
	chk.String(tst, sim.LinSol.Name, "gauss")

	// explicit solver values override the defaults, the rest stay
	chk.IntAssert(sim.Solver.NmaxIt, 30)
	chk.Float64(tst, "tol", 1e-15, sim.Solver.Tol, 1e-5)
	chk.IntAssert(sim.Solver.NminIt, 4)
	chk.IntAssert(sim.Solver.StagWindow, 6)
	chk.Float64(tst, "tdoffsetu", 1e-15, sim.Solver.TdOffsetU, 0.01)

	require.Len(tst, sim.Fluids, 1)
	chk.String(tst, sim.Fluids[0].Model, "idealgas")
	require.Len(tst, sim.Comps, 3)
	require.Len(tst, sim.Conns, 2)

	va := sim.Comps[1]
	chk.String(tst, va.Type, "valve")
	assert.Equal(tst, 0.9, va.Set["pr"])
	assert.Equal(tst, []string{"pr"}, va.Design)
	assert.Equal(tst, []string{"zeta"}, va.Offdesign)

	c1 := sim.Conns[0]
	chk.String(tst, c1.Props["p"].Unit, "bar")
	assert.Equal(tst, 10.0, c1.Props["p"].Val)
	assert.Equal(tst, 1.0, c1.Fluid["air"])
	assert.Equal(tst, 900000.0, sim.Conns[1].Starts["p"])
}

func Test_sim02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("sim02. validation failures")

	write := func(body string) string {
		path := filepath.Join(tst.TempDir(), "bad.sim")
		require.NoError(tst, os.WriteFile(path, []byte(body), 0644))
		return path
	}

	// missing file
	_, err := ReadSim("data/__nosuchfile__.sim")
	assert.Error(tst, err)

	// no fluids
	_, err = ReadSim(write(`{"comps": [], "conns": []}`))
	require.Error(tst, err)
	assert.Contains(tst, err.Error(), "no fluid")

	// connection endpoint not declared as a component
	_, err = ReadSim(write(`{
		"fluids": [{"name": "air", "model": "idealgas"}],
		"comps": [{"label": "so", "type": "source"}],
		"conns": [{"label": "c1", "src": "so", "srcport": "out1", "tgt": "si", "tgtport": "in1"}]
	}`))
	require.Error(tst, err)
	assert.Contains(tst, err.Error(), "unknown target component")

	// duplicate component label
	_, err = ReadSim(write(`{
		"fluids": [{"name": "air", "model": "idealgas"}],
		"comps": [{"label": "so", "type": "source"}, {"label": "so", "type": "sink"}],
		"conns": []
	}`))
	require.Error(tst, err)
	assert.Contains(tst, err.Error(), "listed twice")

	// bus member must exist
	_, err = ReadSim(write(`{
		"fluids": [{"name": "air", "model": "idealgas"}],
		"comps": [{"label": "so", "type": "source"}],
		"conns": [],
		"busses": [{"label": "b", "entries": [{"comp": "tb"}]}]
	}`))
	require.Error(tst, err)
	assert.Contains(tst, err.Error(), "unknown component")
}

func Test_designpoint01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("designpoint01. snapshot save and reload")

	dp := NewDesignPoint("throttle")
	dp.Conns["c1"] = ConnPoint{M: 5, P: 1e6, H: 502686, T: 500, V: 0.7175, Fluid: map[string]float64{"air": 1}}
	dp.Comps["va"] = map[string]float64{"pr": 0.9, "zeta": 1234.5}
	dp.Busses["shaft"] = -502000

	path := filepath.Join(tst.TempDir(), "throttle.dpt")
	require.NoError(tst, dp.Save(path))

	got, err := ReadDesignPoint(path)
	require.NoError(tst, err)
	chk.String(tst, got.Key, "throttle")
	assert.Equal(tst, dp.Conns, got.Conns)
	assert.Equal(tst, dp.Comps, got.Comps)
	assert.Equal(tst, dp.Busses, got.Busses)

	// unreadable path
	_, err = ReadDesignPoint(filepath.Join(tst.TempDir(), "missing.dpt"))
	assert.Error(tst, err)
}
