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
Package partition finds the buffer zone around a QM center and splits a
system into the QM sub-systems used by adaptive QM/MM methods.

Residues are classified by the distance between their center of mass and
the QM center: residues closer than Rmin become part of the QM core, those
between Rmin and Rmax form the buffer zone, and the rest are MM. A
Partitioner then turns the buffer zone into one or more sub-system
definitions: a single one for Hot-Spot, and one per distance-sorted prefix
of the buffer groups for SAP.

Buffer groups at the same distance from the center are ranked by group ID.
Such groups get the same SAP switching value, for which the SAP weights are
not defined, so interpolating that zone with SAP fails with a DomainError.

Distances are in Angstrom.
*/
package partition
