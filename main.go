// Copyright 2026 The tespy-go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"

	"github.com/solelysoar/tespy/inp"
	"github.com/solelysoar/tespy/net"
)

func main() {

	// catch errors
	defer func() {
		if err := recover(); err != nil {
			io.PfRed("ERROR: %v\n", err)
		}
	}()

	// read input parameters
	fnamepath, _ := io.ArgToFilename(0, "", ".sim", true)
	verbose := io.ArgToBool(1, true)
	offdesign := io.ArgToBool(2, false)
	designpt := io.ArgToString(3, "")

	// message
	if verbose {
		io.PfWhite("\ntespy -- thermodynamic process network solver\n\n")
		io.Pf("%v\n", io.ArgsTable("input arguments",
			"filename path", "fnamepath", fnamepath,
			"show messages", "verbose", verbose,
			"offdesign solve", "offdesign", offdesign,
			"design point file", "designpt", designpt,
		))
	}

	// read simulation and build the network
	sim, err := inp.ReadSim(fnamepath)
	if err != nil {
		chk.Panic("cannot read simulation:\n%v", err)
	}
	nw, opts, err := net.FromSim(sim)
	if err != nil {
		chk.Panic("cannot build network:\n%v", err)
	}
	opts.ShowR = opts.ShowR || verbose

	// offdesign solves start from a persisted design point
	if offdesign {
		if designpt == "" {
			designpt = sim.Key + ".dpt"
		}
		dp, err := inp.ReadDesignPoint(designpt)
		if err != nil {
			chk.Panic("cannot read design point:\n%v", err)
		}
		if err := net.ApplyDesign(nw, dp); err != nil {
			chk.Panic("cannot apply design point:\n%v", err)
		}
		opts.Mode = net.Offdesign
	}

	// solve
	sol, err := net.Solve(nw, opts)
	if err != nil {
		chk.Panic("solve failed:\n%v", err)
	}
	if verbose {
		net.Report(nw, sol)
	}

	// persist the design point after a converged design solve
	if opts.Mode == net.Design {
		dp := net.SnapshotDesign(nw, sim.Key)
		if err := dp.Save(sim.Key + ".dpt"); err != nil {
			chk.Panic("cannot save design point:\n%v", err)
		}
	}
}
