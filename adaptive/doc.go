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
Package adaptive implements adaptive-partitioning QM/MM. An Engine takes a
run through partitioning (buffer zone and sub-systems, from a
partition.Partitioner), evaluation (QM/MM energies and gradients of every
sub-system, from a qmmm.Embedder) and interpolation (Hot-Spot or SAP), and
keeps every run in a Registry under its run ID.

Two interpolation schemes are available. Hot-Spot includes the whole buffer
zone in a single QM sub-system and scales the gradients of each buffer group
by its switching function. SAP evaluates one sub-system per distance-sorted
prefix of the buffer groups and mixes them with weights that add up to one,
adding the gradient of the weights themselves unless the modified variant
is requested.
*/
package adaptive
