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

/*
Package aqmmm provides the basic structures for adaptive-partitioning QM/MM
calculations: atoms, topologies and molecules, readers for PDB and XYZ files,
atomic data, unit conversions, mass-weighted geometry utilities, the
interfaces that QM and MM programs (the "backends") implement, and the
error types shared by all the packages in the module.

The adaptive machinery itself lives in the sub-packages: partition builds
buffer zones and sub-system definitions, qmmm composes QM/MM energies and
gradients for each sub-system, and adaptive interpolates between them.

Throughout the library, positions are in Angstrom, energies in Hartree and
gradients in Hartree/Angstrom. Gradients are always stored as dE/dx, never
as forces.
*/
package aqmmm
