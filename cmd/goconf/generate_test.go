/*
 * generate_test.go, part of goConf.
 *
 * Copyright 2024 Raul Mera <rmera{at}chemDOThelsinkiDOTfi>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmera/goconf/chem"
	"github.com/rmera/goconf/traj"
)

func chain(name string, symbols ...string) *chem.Molecule {
	m := chem.NewMolecule(name)
	for i, s := range symbols {
		m.AddAtom(s, 0)
		if i > 0 {
			m.AddBond(i-1, i, 1)
		}
	}
	return m
}

//input writes an SDF file with ethanol and butane, and makes the relaxations fast.
func input(Te *testing.T) string {
	Te.Setenv("GOCONF_ORGANIZER_CYCLES", "20")
	Te.Setenv("GOCONF_ORGANIZER_POOL_ATTEMPTS", "4")
	Te.Setenv("GOCONF_MAX_CONFORMERS", "2")
	var buf bytes.Buffer
	for _, m := range []*chem.Molecule{chain("ethanol", "C", "C", "O"), chain("butane", "C", "C", "C", "C")} {
		require.NoError(Te, chem.WriteMolfile(&buf, m, nil, true))
	}
	path := filepath.Join(Te.TempDir(), "in.sdf")
	require.NoError(Te, os.WriteFile(path, buf.Bytes(), 0644))
	return path
}

func execute(args ...string) error {
	cmd := newRootCommand()
	cmd.SetArgs(append([]string{"--log-level", "error"}, args...))
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	return cmd.Execute()
}

func TestGenerateXYZ(Te *testing.T) {
	in := input(Te)
	dir := Te.TempDir()
	out := filepath.Join(dir, "out.xyz.zst")
	prom := filepath.Join(dir, "metrics.prom")
	plots := filepath.Join(dir, "plots")
	err := execute("generate", "-i", in, "-o", out, "-n", "2", "--seed", "3", "--jobs", "2",
		"--metrics-file", prom, "--plot", plots, "--strategy", "systematic")
	require.NoError(Te, err)
	for i, natoms := range []int{9, 14} {
		r, err := traj.New(numbered(out, i))
		require.NoError(Te, err)
		assert.Equal(Te, natoms, r.Len())
		frames := 0
		for {
			_, err := r.Next(nil)
			if err == io.EOF {
				break
			}
			require.NoError(Te, err)
			frames++
		}
		assert.GreaterOrEqual(Te, frames, 1)
		assert.LessOrEqual(Te, frames, 2)
	}
	b, err := os.ReadFile(prom)
	require.NoError(Te, err)
	assert.Contains(Te, string(b), "goconf_conformers_total")
	assert.FileExists(Te, filepath.Join(plots, "mol1_torsions.png"))
	assert.FileExists(Te, filepath.Join(plots, "mol2_contributions.png"))
}

func TestGenerateSDF(Te *testing.T) {
	in := input(Te)
	out := filepath.Join(Te.TempDir(), "out.sdf")
	require.NoError(Te, execute("generate", "-i", in, "-o", out, "-n", "1", "--seed", "5"))
	mols, err := chem.ReadSDFFile(out)
	require.NoError(Te, err)
	require.Len(Te, mols, 2)
	assert.Equal(Te, "ethanol", mols[0].Name)
	assert.Equal(Te, 14, mols[1].Len())
}

func TestGenerateErrors(Te *testing.T) {
	in := input(Te)
	out := filepath.Join(Te.TempDir(), "out.xyz")
	assert.Error(Te, execute("generate", "-i", in, "-o", out, "--strategy", "exhaustive"))
	assert.Error(Te, execute("generate", "-i", in, "-o", filepath.Join(Te.TempDir(), "out.pdb")))
	assert.Error(Te, execute("generate", "-i", filepath.Join(Te.TempDir(), "missing.sdf"), "-o", out))
	assert.Error(Te, execute("generate", "-o", out), "the input is required")
}

func TestNumbered(Te *testing.T) {
	assert.Equal(Te, "out_1.xyz", numbered("out.xyz", 0))
	assert.Equal(Te, "dir/out_3.xyz.zst", numbered("dir/out.xyz.zst", 2))
	assert.Equal(Te, "out_2.sdf", numbered("out.sdf", 1))
}
