/*
 * generate.go, part of goConf.
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
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rmera/goconf"
	"github.com/rmera/goconf/chem"
	"github.com/rmera/goconf/chemplot"
	"github.com/rmera/goconf/fragment"
	"github.com/rmera/goconf/internal/metrics"
	"github.com/rmera/goconf/torsionset"
	"github.com/rmera/goconf/traj"
)

type generateFlags struct {
	input       string
	output      string
	conformers  int
	strategy    string
	seed        int64
	jobs        int
	plotDir     string
	metricsFile string
}

//result contains the conformers obtained for one molecule.
type result struct {
	mol      *chem.Molecule
	confs    []*chem.Conformer
	contribs []float64
	bonds    []*fragment.RotatableBond
	trace    []float64
	err      error
}

func newGenerateCommand(a *app) *cobra.Command {
	f := &generateFlags{}
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generates conformers for every molecule of an SDF file",
		Long: "generate reads the molecules of an SDF file and writes their conformers to an SDF file (.sdf),\n" +
			"or to XYZ files (.xyz, or .xyz.zst for zstd-compressed ones). With XYZ output and more than one\n" +
			"molecule, each molecule goes to its own file, numbered from 1.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.generate(cmd, f)
		},
	}
	fl := cmd.Flags()
	fl.StringVarP(&f.input, "input", "i", "", "input SDF or molfile")
	fl.StringVarP(&f.output, "output", "o", "", "output file (.sdf, .xyz or .xyz.zst)")
	fl.IntVarP(&f.conformers, "conformers", "n", 10, "conformers per molecule")
	fl.StringVar(&f.strategy, "strategy", "", "torsion set search strategy (random, biased, adaptive, systematic)")
	fl.Int64Var(&f.seed, "seed", 0, "random seed, 0 for a seed from the clock")
	fl.IntVar(&f.jobs, "jobs", runtime.NumCPU(), "molecules processed in parallel")
	fl.StringVar(&f.plotDir, "plot", "", "directory for torsion, contribution and strain plots")
	fl.StringVar(&f.metricsFile, "metrics-file", "", "file where prometheus metrics are written at the end")
	_ = cmd.MarkFlagRequired("input")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

func (A *app) generate(cmd *cobra.Command, f *generateFlags) error {
	cfg := *A.cfg
	fl := cmd.Flags()
	if fl.Changed("conformers") {
		cfg.Conformers = f.conformers
	}
	if fl.Changed("strategy") {
		cfg.Strategy = f.strategy
	}
	if fl.Changed("seed") {
		cfg.Seed = f.seed
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if f.jobs < 1 {
		return fmt.Errorf("--jobs must be at least 1, got %d", f.jobs)
	}
	if !outputFormatOK(f.output) {
		return fmt.Errorf("unknown output format for %q, use .sdf, .xyz or .xyz.zst", f.output)
	}
	mols, err := chem.ReadSDFFile(f.input)
	if err != nil {
		return err
	}
	run := uuid.New().String()
	log := A.log.With(zap.String("run", run))
	reg := prometheus.NewRegistry()
	var obs goconf.Observer
	if f.metricsFile != "" {
		m, err := metrics.New(reg)
		if err != nil {
			return err
		}
		obs = m
	}
	opts := cfg.ToOptions(log, obs)
	org := opts.Organizer()
	org.Seed(opts.Seed())
	org.Logger(log)
	//one provider for all molecules, so identical fragments are relaxed once.
	provider := fragment.NewSelfOrganizedProvider(org, opts.MaxConformers())
	opts.Provider(provider)
	log.Info("generating conformers", zap.String("input", f.input), zap.Int("molecules", len(mols)),
		zap.Int("conformers", cfg.Conformers), zap.String("strategy", cfg.Strategy), zap.Int("jobs", f.jobs))

	results := make([]*result, len(mols))
	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(f.jobs)
	for i, m := range mols {
		i, m := i, m
		g.Go(func() error {
			results[i] = generateOne(ctx, m, opts, cfg.Kind(), cfg.Conformers, log)
			return ctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	if err := writeResults(f.output, results, run); err != nil {
		return err
	}
	if f.plotDir != "" {
		if err := plotResults(f.plotDir, results); err != nil {
			return err
		}
	}
	if f.metricsFile != "" {
		if err := prometheus.WriteToTextfile(f.metricsFile, reg); err != nil {
			return fmt.Errorf("writing metrics: %w", err)
		}
	}
	hits, misses := provider.Stats()
	failed := 0
	for _, r := range results {
		if r.err != nil {
			failed++
		}
	}
	log.Info("done", zap.String("output", f.output), zap.Int("failed", failed),
		zap.Int("fragment_cache_hits", hits), zap.Int("fragment_cache_misses", misses))
	if failed > 0 {
		return fmt.Errorf("%d of %d molecules failed", failed, len(mols))
	}
	return nil
}

//generateOne obtains up to n conformers for m with a generator of its own.
func generateOne(ctx context.Context, m *chem.Molecule, o *goconf.Options, kind torsionset.Kind, n int, log *zap.Logger) *result {
	r := &result{mol: m}
	gen := goconf.New(o)
	if !gen.InitializeConformers(m, kind) {
		r.err = gen.Err()
		log.Warn("molecule skipped", zap.String("molecule", m.Name), zap.Error(r.err))
		return r
	}
	for len(r.confs) < n && ctx.Err() == nil {
		c := gen.NextConformer(nil)
		if c == nil {
			break
		}
		r.confs = append(r.confs, c)
		r.contribs = append(r.contribs, gen.PreviousConformerContribution())
	}
	r.bonds = gen.RotatableBonds()
	r.trace = gen.Trace()
	if len(r.confs) == 0 {
		r.err = goconf.ErrNoConformer
		log.Warn("no conformers", zap.String("molecule", m.Name))
	} else if len(r.confs) < n {
		log.Info("fewer conformers than requested", zap.String("molecule", m.Name), zap.Int("obtained", len(r.confs)))
	}
	return r
}

func isSDF(name string) bool {
	l := strings.ToLower(name)
	return strings.HasSuffix(l, ".sdf") || strings.HasSuffix(l, ".mol")
}

func outputFormatOK(name string) bool {
	l := strings.ToLower(name)
	return isSDF(l) || strings.HasSuffix(l, ".xyz") || strings.HasSuffix(l, ".xyz.zst")
}

//numbered inserts _i+1 before the extension of name.
func numbered(name string, i int) string {
	ext := filepath.Ext(name)
	if traj.Compressed(name) {
		ext = filepath.Ext(strings.TrimSuffix(name, ext)) + ext
	}
	return fmt.Sprintf("%s_%d%s", strings.TrimSuffix(name, ext), i+1, ext)
}

func title(r *result, k int, run string) string {
	return fmt.Sprintf("%s conformer %d contribution %.4g %s run %s", r.mol.Name, k+1, r.contribs[k], r.confs[k].Outcome, run)
}

func writeResults(name string, results []*result, run string) error {
	if isSDF(name) {
		fout, err := os.Create(name)
		if err != nil {
			return err
		}
		for _, r := range results {
			for _, c := range r.confs {
				if err := chem.WriteMolfile(fout, r.mol, c, true); err != nil {
					fout.Close()
					return err
				}
			}
		}
		return fout.Close()
	}
	for i, r := range results {
		if len(r.confs) == 0 {
			continue
		}
		fname := name
		if len(results) > 1 {
			fname = numbered(name, i)
		}
		w, err := traj.NewWriter(fname, r.mol)
		if err != nil {
			return err
		}
		for k, c := range r.confs {
			if err := w.WNext(c, title(r, k, run)); err != nil {
				w.Close()
				return err
			}
		}
		if err := w.Close(); err != nil {
			return err
		}
	}
	return nil
}

func plotResults(dir string, results []*result) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	for i, r := range results {
		if len(r.confs) == 0 {
			continue
		}
		base := filepath.Join(dir, fmt.Sprintf("mol%d", i+1))
		if len(r.bonds) > 0 {
			if err := chemplot.TorsionLikelihoods(r.bonds, r.mol.Name, base+"_torsions"); err != nil {
				return err
			}
		}
		if len(r.trace) > 0 {
			if err := chemplot.StrainTrace(r.trace, r.mol.Name, base+"_strain"); err != nil {
				return err
			}
		}
		outcomes := make([]chem.Outcome, len(r.confs))
		for k, c := range r.confs {
			outcomes[k] = c.Outcome
		}
		if err := chemplot.Contributions(r.contribs, outcomes, r.mol.Name, base+"_contributions"); err != nil {
			return err
		}
	}
	return nil
}
