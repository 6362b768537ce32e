/*
 * doc.go, part of aqmmm.
 *
 * Copyright 2024 Raul Mera <rmeraa{at}academicosDOTutaDOTcl>
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
/***Dedicated to the long life of the Ven. Khenpo Phuntzok Tenzin Rinpoche***/

// Package mm implements a small molecular mechanics force field
// that satisfies aqmmm.MMBackend and aqmmm.PointCharger.
//
// The force field has harmonic bonds, detected from covalent radii on the
// starting geometry, and Lennard-Jones and Coulomb terms between all
// pairs of atoms that are not directly bonded. It has no cutoffs, and it is meant
// for tests, examples and small systems, not for production simulations.
// Energies are returned in Hartree and gradients in Hartree/A.
package mm
