/*
 * provider.go, part of goConf.
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

package fragment

import (
	"errors"
	"math"
	"sync"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"

	"github.com/rmera/goconf/chem"
	"github.com/rmera/goconf/organizer"
)

//Provider supplies local conformers for the fragments of a molecule.
type Provider interface {
	//LocalConformers returns the conformers for the extended atoms of f, a fragment of m.
	//The likelihoods of the returned conformers add up to 1.
	LocalConformers(m *chem.Molecule, f *Fragment) ([]*LocalConformer, error)
}

//DefaultMaxConformers is the default number of local conformers per fragment.
const DefaultMaxConformers = 8

//polishCycles is the number of cycles at the target step factor applied to each local conformer
//before it is cached.
const polishCycles = 10

//strainTemperature controls how fast the likelihood of a local conformer decays with its strain.
const strainTemperature = 0.05

//SelfOrganizedProvider obtains the local conformers of a fragment by relaxing its extended atoms
//with an organizer.Organizer. The results are cached by fragment key, so a provider can be shared
//by many generators, even concurrently.
type SelfOrganizedProvider struct {
	opts   *organizer.Options
	max    int
	log    *zap.Logger
	mu     sync.Mutex
	cache  map[string][]*LocalConformer
	hits   int
	misses int
}

//NewSelfOrganizedProvider returns a provider that relaxes fragments with the options o
//(organizer.DefaultOptions if nil) and keeps up to max conformers per fragment
//(DefaultMaxConformers if max<1).
func NewSelfOrganizedProvider(o *organizer.Options, max int) *SelfOrganizedProvider {
	if o == nil {
		o = organizer.DefaultOptions()
	}
	if max < 1 {
		max = DefaultMaxConformers
	}
	return &SelfOrganizedProvider{opts: o.Copy(), max: max, log: o.Logger(), cache: make(map[string][]*LocalConformer)}
}

//Stats returns the number of requests answered from the cache and the number of fragments relaxed.
func (P *SelfOrganizedProvider) Stats() (hits, misses int) {
	P.mu.Lock()
	defer P.mu.Unlock()
	return P.hits, P.misses
}

func (P *SelfOrganizedProvider) cached(key string) ([]*LocalConformer, bool) {
	P.mu.Lock()
	defer P.mu.Unlock()
	c, ok := P.cache[key]
	if ok {
		P.hits++
	}
	return c, ok
}

//LocalConformers returns the conformers for the extended atoms of f, relaxing them if the
//fragment was not seen before. The returned conformers are shared and should not be modified.
func (P *SelfOrganizedProvider) LocalConformers(m *chem.Molecule, f *Fragment) ([]*LocalConformer, error) {
	if c, ok := P.cached(f.Key); ok {
		return c, nil
	}
	sub := f.Molecule(m)
	org := organizer.New(sub, P.opts)
	if !org.InitializeConformers() {
		return nil, errors.New("goConf/fragment: empty fragment")
	}
	var ret []*LocalConformer
	for len(ret) < P.max {
		c := org.NextConformer()
		if c == nil {
			break
		}
		c = c.Copy()
		org.Polish(c, polishCycles)
		ret = append(ret, &LocalConformer{Coords: c.Coords, Strain: c.Strain})
	}
	if len(ret) == 0 {
		return nil, errors.New("goConf/fragment: no local conformers obtained")
	}
	boltzmann(ret)
	P.log.Debug("fragment relaxed", zap.String("molecule", m.Name), zap.Int("fragment", int(f.Index)),
		zap.Int("atoms", len(f.Extended)), zap.Int("conformers", len(ret)))
	P.mu.Lock()
	defer P.mu.Unlock()
	if c, ok := P.cache[f.Key]; ok {
		//someone else got there first.
		P.hits++
		return c, nil
	}
	P.misses++
	P.cache[f.Key] = ret
	return ret, nil
}

//boltzmann sets the likelihood of each conformer proportional to exp(-(s-smin)/T), where s is
//its strain, smin the lowest strain and T the strain temperature.
func boltzmann(confs []*LocalConformer) {
	l := make([]float64, len(confs))
	min := math.Inf(1)
	for _, c := range confs {
		min = math.Min(min, c.Strain)
	}
	for i, c := range confs {
		l[i] = math.Exp(-(c.Strain - min) / strainTemperature)
	}
	floats.Scale(1/floats.Sum(l), l)
	for i, c := range confs {
		c.Likelihood = l[i]
	}
}
