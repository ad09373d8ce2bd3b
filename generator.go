/*
 * generator.go, part of goConf.
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

package goconf

import (
	"errors"
	"sort"

	"go.uber.org/zap"

	"github.com/rmera/goconf/chem"
	"github.com/rmera/goconf/clash"
	"github.com/rmera/goconf/fragment"
	"github.com/rmera/goconf/organizer"
	"github.com/rmera/goconf/torsionset"
)

//Paths of the generation, as reported to the Observer.
const (
	PathRelax   = "relax"
	PathTorsion = "torsion"
)

//maxFallbacks is the number of colliding sets kept as fallbacks.
const maxFallbacks = 32

//ErrNoConformer is returned by OneConformer when no conformer could be obtained.
var ErrNoConformer = errors.New("goConf: no conformer could be obtained")

//Observer is told about the progress of the generation. It is meant for metrics.
type Observer interface {
	//Generated is called for each conformer returned.
	Generated(path string, outcome chem.Outcome, attempts int)
	//Proposed is called for each torsion set materialized.
	Proposed()
	//Collided is called for each torsion set that produced collisions.
	Collided()
	//Learned is called with the number of elimination rules added after a collision.
	Learned(rules int)
	//Rejected is called with the number of proposals rejected by elimination rules.
	Rejected(n int)
}

type nopObserver struct{}

func (nopObserver) Generated(string, chem.Outcome, int) {}
func (nopObserver) Proposed()                           {}
func (nopObserver) Collided()                           {}
func (nopObserver) Learned(int)                         {}
func (nopObserver) Rejected(int)                        {}

//AddHydrogenAtoms adds the implicit hydrogens of m as explicit atoms, and returns
//the number of atoms added.
func AddHydrogenAtoms(m *chem.Molecule) int {
	return m.AddHydrogens()
}

//fallback is a colliding torsion set kept in case nothing better is found.
type fallback struct {
	set       *torsionset.Set
	intensity float64
}

//Generator produces conformers for one molecule at a time. It is not safe for concurrent use.
type Generator struct {
	opts *Options
	log  *zap.Logger
	obs  Observer
	mol  *chem.Molecule
	err  error
	//relaxation path
	org *organizer.Organizer
	//torsion path
	decomp    *fragment.Decomposition
	asm       *fragment.Assembler
	det       *clash.Detector
	enc       *torsionset.Encoder
	strat     *torsionset.Strategy
	fallbacks []*fallback
	fellBack  bool
	accepted  int
	rejected  int
	//results
	contribution float64
	returned     int
}

//New returns a generator with the given options, or DefaultOptions if o is nil.
//The options are copied.
func New(o *Options) *Generator {
	if o == nil {
		o = DefaultOptions()
	}
	o = o.Copy()
	org := o.Organizer()
	if org.Seed() == 0 {
		org.Seed(o.Seed())
	}
	org.Logger(o.Logger())
	org.Geometry(o.Geometry())
	org.Torsions(o.Torsions())
	if o.Provider() == nil {
		o.Provider(fragment.NewSelfOrganizedProvider(org, o.MaxConformers()))
	}
	return &Generator{opts: o, log: o.Logger(), obs: o.Observer()}
}

//Err returns the error that made the last initialization fail, if any.
func (G *Generator) Err() error {
	return G.err
}

func (G *Generator) reset() {
	*G = Generator{opts: G.opts, log: G.log, obs: G.obs}
}

//InitializeConformers prepares the generation of conformers for m, adding explicit hydrogens to it if
//needed. Molecules with rotatable bonds are assembled from rigid fragments, and their torsion sets
//searched with the given strategy. Molecules without rotatable bonds are relaxed as a whole.
//It returns false if m can't be processed, in which case Err tells why.
func (G *Generator) InitializeConformers(m *chem.Molecule, kind torsionset.Kind) bool {
	G.reset()
	if m == nil || m.Len() == 0 {
		G.err = errors.New("goConf: empty molecule")
		return false
	}
	AddHydrogenAtoms(m)
	if err := m.Validate(); err != nil {
		G.err = err
		G.log.Warn("invalid structure", zap.String("molecule", m.Name), zap.Error(err))
		return false
	}
	G.mol = m
	if len(m.RotatableBonds()) == 0 {
		G.initRelaxation()
		return true
	}
	if err := G.initTorsions(kind); err != nil {
		G.log.Warn("falling back to relaxation", zap.String("molecule", m.Name), zap.Error(err))
		G.decomp, G.asm, G.det, G.enc, G.strat = nil, nil, nil, nil, nil
		G.initRelaxation()
	}
	return true
}

func (G *Generator) initRelaxation() {
	G.org = organizer.New(G.mol, G.opts.Organizer())
	G.org.InitializeConformers()
}

func (G *Generator) initTorsions(kind torsionset.Kind) error {
	m := G.mol
	d := fragment.Decompose(m, G.opts.Torsions())
	if err := d.Populate(G.opts.Provider()); err != nil {
		return err
	}
	asm := fragment.NewAssembler(d)
	det := clash.New(m, G.opts.Geometry(), d.Assignment())
	det.Slack = G.opts.Slack()
	base := asm.Base(make([]int, len(d.Fragments)))
	space := &torsionset.Space{
		Path: func(f1, f2 int) ([]int, []int) {
			b, f := d.Path(fragment.FragmentIndex(f1), fragment.FragmentIndex(f2))
			bonds := make([]int, len(b))
			for i, v := range b {
				bonds[i] = int(v)
			}
			frags := make([]int, len(f))
			for i, v := range f {
				frags[i] = int(v)
			}
			return bonds, frags
		},
	}
	for _, b := range d.Bonds {
		if !b.Found {
			G.log.Debug("torsions predicted", zap.String("molecule", m.Name), zap.String("bond", b.ID))
		}
		b.ConnectFragments(base, det, d.Fragments[b.Fragment1].Core, d.Fragments[b.Fragment2].Core, G.opts.MaxStrain())
		space.Torsions = append(space.Torsions, b.Likelihoods)
	}
	for _, f := range d.Fragments {
		space.Conformers = append(space.Conformers, f.Likelihoods())
	}
	enc, err := torsionset.NewEncoder(space.Counts())
	if err != nil {
		return err
	}
	G.decomp, G.asm, G.det, G.enc = d, asm, det, enc
	G.strat = torsionset.New(kind, enc, space, G.opts.Seed())
	G.log.Debug("torsion search ready", zap.String("molecule", m.Name), zap.Int("fragments", len(d.Fragments)),
		zap.Int("bonds", len(d.Bonds)), zap.String("strategy", kind.String()), zap.Int("words", enc.Words()))
	return nil
}

//NextConformer returns a new conformer for the molecule given to InitializeConformers, or nil if no
//more conformers can be obtained. If m is not nil, the coordinates are also written to m, which should
//have the same atoms as the initialized molecule. Conformers obtained after the search for a
//collision-free torsion set failed have a BestEffort outcome.
func (G *Generator) NextConformer(m *chem.Molecule) *chem.Conformer {
	if G.mol == nil {
		return nil
	}
	var c *chem.Conformer
	if G.strat == nil {
		c = G.org.NextConformer()
		if c != nil {
			c.Likelihood = 1
			G.obs.Generated(PathRelax, c.Outcome, 1)
		}
	} else {
		c = G.nextAssembled()
	}
	if c == nil {
		return nil
	}
	G.finish(c)
	if m != nil {
		if m.Len() == c.Len() {
			c.ToMolecule(m)
		} else {
			G.log.Warn("molecule doesn't match the conformer", zap.String("molecule", m.Name), zap.Int("atoms", m.Len()))
		}
	}
	return c
}

//nextAssembled searches for a collision-free torsion set and returns its conformer, or
//a fallback.
func (G *Generator) nextAssembled() *chem.Conformer {
	attempts := 0
	for attempts < G.opts.MaxAttempts() {
		set := G.strat.Next()
		G.reportRejections()
		if set == nil {
			break
		}
		attempts++
		G.obs.Proposed()
		c := G.asm.Materialize(set.Torsions, set.Conformers)
		r := G.det.Detect(c)
		if !r.Collides() {
			c.Outcome = chem.Accepted
			G.accepted++
			G.obs.Generated(PathTorsion, chem.Accepted, attempts)
			return c
		}
		G.obs.Collided()
		G.obs.Learned(G.strat.Report(set, r.Matrix))
		G.keep(set, r.Intensity)
	}
	//the fallback is used once, and only if nothing better was found before.
	if G.fellBack || G.accepted > 0 || len(G.fallbacks) == 0 {
		return nil
	}
	f := G.fallbacks[0]
	G.fallbacks = G.fallbacks[1:]
	G.fellBack = true
	c := G.asm.Materialize(f.set.Torsions, f.set.Conformers)
	c.Outcome = chem.BestEffort
	c.Intensity = f.intensity
	G.log.Warn("no collision-free torsion set found", zap.String("molecule", G.mol.Name),
		zap.Int("attempts", attempts), zap.Float64("intensity", f.intensity))
	G.obs.Generated(PathTorsion, chem.BestEffort, attempts)
	return c
}

func (G *Generator) reportRejections() {
	_, rejected, _ := G.strat.Stats()
	if rejected > G.rejected {
		G.obs.Rejected(rejected - G.rejected)
		G.rejected = rejected
	}
}

//keep records a colliding set among the fallbacks, which are sorted by increasing intensity.
func (G *Generator) keep(set *torsionset.Set, intensity float64) {
	i := sort.Search(len(G.fallbacks), func(i int) bool { return G.fallbacks[i].intensity > intensity })
	if i >= maxFallbacks {
		return
	}
	G.fallbacks = append(G.fallbacks, nil)
	copy(G.fallbacks[i+1:], G.fallbacks[i:])
	G.fallbacks[i] = &fallback{set: set, intensity: intensity}
	if len(G.fallbacks) > maxFallbacks {
		G.fallbacks = G.fallbacks[:maxFallbacks]
	}
}

//finish separates the molecules in c, sets its torsions and records its contribution.
func (G *Generator) finish(c *chem.Conformer) {
	c.SeparateComponents(G.opts.Gap())
	rot := G.mol.RotatableBonds()
	c.Torsions = make([]float64, len(rot))
	for i, b := range rot {
		bond := G.mol.Bond(b)
		if q, ok := G.mol.TorsionAtoms(bond.At1, bond.At2); ok {
			c.Torsions[i] = c.Dihedral(q[0], q[1], q[2], q[3])
		}
	}
	if G.decomp != nil {
		pos := make(map[int]int, len(rot))
		for i, b := range rot {
			pos[b] = i
		}
		for _, b := range G.decomp.Bonds {
			c.Torsions[pos[b.Bond]] = b.Dihedral(c)
		}
	}
	G.contribution = c.Likelihood
	G.returned++
	G.log.Info("conformer generated", zap.String("molecule", G.mol.Name), zap.Int("number", G.returned),
		zap.Stringer("outcome", c.Outcome), zap.Float64("likelihood", c.Likelihood),
		zap.Float64("strain", c.Strain), zap.Float64("intensity", c.Intensity))
}

//PreviousConformerContribution returns the relative likelihood of the last conformer returned,
//the product of the likelihoods of its torsions and local conformers. It is 1 for relaxed
//molecules without rotatable bonds.
func (G *Generator) PreviousConformerContribution() float64 {
	return G.contribution
}

//OneConformer returns a single conformer for m, adding explicit hydrogens to m if needed,
//and writes its coordinates to m. It returns an error if m is not a valid structure or no
//conformer could be obtained.
func (G *Generator) OneConformer(m *chem.Molecule) (*chem.Conformer, error) {
	if !G.InitializeConformers(m, G.opts.Strategy()) {
		return nil, G.err
	}
	var c *chem.Conformer
	if G.strat == nil {
		c = G.org.GenerateOneConformer()
		c.Likelihood = 1
		G.obs.Generated(PathRelax, c.Outcome, 1)
		G.finish(c)
		c.ToMolecule(m)
	} else {
		c = G.NextConformer(m)
	}
	if c == nil {
		return nil, ErrNoConformer
	}
	return c, nil
}

//RotatableBonds returns the rotatable bonds between fragments, or nil if the molecule
//is relaxed as a whole.
func (G *Generator) RotatableBonds() []*fragment.RotatableBond {
	if G.decomp == nil {
		return nil
	}
	return G.decomp.Bonds
}

//Fragments returns the rigid fragments of the molecule, or nil if the molecule is
//relaxed as a whole.
func (G *Generator) Fragments() []*fragment.Fragment {
	if G.decomp == nil {
		return nil
	}
	return G.decomp.Fragments
}

//Strategy returns the torsion set strategy in use, or nil if the molecule is relaxed as a whole.
func (G *Generator) Strategy() *torsionset.Strategy {
	return G.strat
}

//Trace returns the strain after each relaxation cycle of the last conformer relaxed as a whole,
//or nil for molecules assembled from fragments.
func (G *Generator) Trace() []float64 {
	if G.org == nil {
		return nil
	}
	return G.org.Trace()
}

//Molecule returns the molecule being processed.
func (G *Generator) Molecule() *chem.Molecule {
	return G.mol
}
