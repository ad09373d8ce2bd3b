/*
 * doc.go, part of goConf.
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

/*Package goconf generates 3D conformers for molecular graphs.

	**goConf Capabilities**

    Builds 3D structures from atom connectivity, bond orders and stereo parities alone,
	by randomly applying geometric rules (bond lengths, angles, planarity, linearity,
	chirality and preferred dihedrals) to random coordinates until the structure relaxes.

    Splits molecules into rigid fragments joined by rotatable bonds, and assembles conformers
	by choosing a local conformer per fragment and a torsion per bond, with torsion
	statistics from an embedded table or predicted from the hybridization of the bond atoms.

    Searches the space of torsion sets randomly, randomly biased by likelihood, adaptively, or
	systematically from the most to the least likely set, learning which partial
	sets always produce atom collisions and skipping them afterwards.

    Returns each conformer together with its relative likelihood.

    Reads and writes molfiles, SDF and XYZ files (see the chem and traj packages).

The Generator type is the entry point. A Generator is meant to be used for one
molecule at a time, from one goroutine. To process many molecules in parallel, use one
Generator per molecule; the torsion table and the fragment providers can be shared.

*/
package goconf
