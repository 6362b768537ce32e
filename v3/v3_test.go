/*
 * v3_test.go, part of aqmmm.
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

package v3

import (
	"math"
	"testing"
)

func TestNewMatrix(Te *testing.T) {
	A, err := NewMatrix([]float64{1, 2, 3, 4, 5, 6})
	if err != nil {
		Te.Fatal(err)
	}
	if A.NVecs() != 2 {
		Te.Errorf("expected 2 vectors, got %d", A.NVecs())
	}
	if _, err := NewMatrix([]float64{1, 2}); err == nil {
		Te.Error("a slice with 2 elements should not make a Matrix")
	}
}

func TestSomeSetVecs(Te *testing.T) {
	a := []float64{1.0, 2.0, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18}
	A, err := NewMatrix(a)
	if err != nil {
		Te.Fatal(err)
	}
	cind := []int{1, 3, 5}
	B := Zeros(3)
	if err = B.SomeVecsSafe(A, cind); err != nil {
		Te.Fatal(err)
	}
	if B.At(1, 0) != 10 || B.At(2, 2) != 18 {
		Te.Errorf("wrong vectors selected: %v", B)
	}
	B.Set(1, 1, 55)
	A.SetVecs(B, cind)
	if A.At(3, 1) != 55 {
		Te.Errorf("SetVecs didn't put the changed vector back: %v", A)
	}
	C := Zeros(2)
	if err = C.SomeVecsSafe(A, cind); err == nil {
		Te.Error("SomeVecsSafe should fail with a mismatched receiver")
	}
}

func TestVecViewAndAdd(Te *testing.T) {
	A := Zeros(3)
	v := Vec(1, 2, 2)
	A.AddToVec(1, v, 0.5)
	A.AddToVec(1, v, 0.5)
	view := A.VecView(1)
	if math.Abs(view.Norm()-3) > 1e-12 {
		Te.Errorf("expected norm 3, got %f", view.Norm())
	}
	view.Set(0, 0, 100)
	if A.At(1, 0) != 100 {
		Te.Error("changes in a view should be reflected in the matrix")
	}
	A.ScaleVec(1, 0)
	if A.VecView(1).Norm() != 0 {
		Te.Error("ScaleVec by 0 should zero the vector")
	}
	if d := Distance(Vec(0, 0, 0), 0, Vec(3, 4, 0), 0); math.Abs(d-5) > 1e-12 {
		Te.Errorf("expected distance 5, got %f", d)
	}
}

func TestClone(Te *testing.T) {
	A := Vec(1, 1, 1)
	B := A.Clone()
	B.Set(0, 0, 7)
	if A.At(0, 0) != 1 {
		Te.Error("Clone should not share memory with the original")
	}
}

func TestScaleAddInPlace(Te *testing.T) {
	A, err := NewMatrix([]float64{1, 2, 3, 4, 5, 6})
	if err != nil {
		Te.Fatal(err)
	}
	B := A.Clone()
	A.Scale(2, A)
	if A.At(1, 2) != 12 || A.At(0, 0) != 2 {
		Te.Errorf("in-place Scale failed: %v", A)
	}
	A.Add(A, B)
	if A.At(1, 2) != 18 || A.At(0, 1) != 6 {
		Te.Errorf("in-place Add failed: %v", A)
	}
	A.Sub(A, B)
	if A.At(1, 2) != 12 || A.At(0, 0) != 2 {
		Te.Errorf("in-place Sub failed: %v", A)
	}
	B.Sub(A, B)
	if B.At(1, 0) != 4 || B.At(0, 2) != 3 {
		Te.Errorf("Sub with the receiver as second argument failed: %v", B)
	}
	v := Vec(1, 2, 3)
	v.Scale(-1, v)
	if v.At(0, 2) != -3 {
		Te.Errorf("in-place Scale of a vector failed: %v", v)
	}
	row := A.VecView(1)
	row.Scale(0.5, row)
	if A.At(1, 0) != 4 {
		Te.Errorf("Scale on a view should change the original: %v", A)
	}
}
