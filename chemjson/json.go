/*
 * json.go, part of aqmmm.
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

package chemjson

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/rmera/aqmmm/adaptive"
	"github.com/rmera/aqmmm/partition"
	v3 "github.com/rmera/aqmmm/v3"
)

// An easily JSON-serializable error type.
type Error struct {
	deco     []string
	Function string //which go function gave the error
	Message  string //the error itself
}

// Error implements the error interface
func (J *Error) Error() string {
	return fmt.Sprintf("chemjson: %s: %s", J.Function, J.Message)
}

// Decorate will add the dec string to the decoration slice of strings of the error,
// and return the resulting slice.
func (J *Error) Decorate(dec string) []string {
	if dec != "" {
		J.deco = append(J.deco, dec)
	}
	return J.deco
}

// Critical returns true, a snapshot that can't be read or written is always a problem.
func (J *Error) Critical() bool { return true }

// NewError takes an error and the function where it happened, and returns a *Error.
func NewError(function string, err error) *Error {
	return &Error{deco: []string{function}, Function: function, Message: err.Error()}
}

// Group is a serializable buffer group.
type Group struct {
	ID       int
	Atoms    []int
	Distance float64
	Order    int
	S        float64
	Phi      float64
}

// System is a serializable sub-system. ID is "qm" for the QM sub-system.
type System struct {
	ID             string
	QMAtoms        []int
	Groups         []int
	Energy         *float64 `json:",omitempty"` //nil if not evaluated
	WeightedEnergy *float64 `json:",omitempty"` //nil if not interpolated
}

// Snapshot is a ready-to-serialize container for a run.
type Snapshot struct {
	ID        string
	Scheme    string
	State     string
	Center    []int
	Rmin      float64
	Rmax      float64
	QMAtoms   []int
	Groups    []Group
	Systems   []System
	Energy    *float64     `json:",omitempty"` //nil if the run is not interpolated
	Gradients [][3]float64 `json:",omitempty"`
}

// NewSnapshot collects the data of run. It can be called at any stage of the run.
func NewSnapshot(run *adaptive.Run) (*Snapshot, error) {
	if run == nil {
		return nil, NewError("NewSnapshot", errors.New("nil run"))
	}
	s := &Snapshot{
		ID:     run.ID,
		Scheme: run.Scheme,
		State:  run.State.String(),
		Center: append([]int(nil), run.Center...),
	}
	if z := run.Zone; z != nil {
		s.Rmin, s.Rmax = z.Rmin, z.Rmax
		s.QMAtoms = append([]int(nil), z.QMAtoms...)
		for _, g := range z.Sorted() {
			s.Groups = append(s.Groups, Group{ID: g.ID, Atoms: append([]int(nil), g.Atoms...), Distance: g.Distance, Order: g.Order, S: g.S, Phi: g.Phi})
		}
	}
	ids := make([]partition.ID, 0, len(run.Systems))
	for id := range run.Systems {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		sub := run.Systems[id]
		sys := System{ID: id.String(), QMAtoms: append([]int(nil), sub.QMAtoms...)}
		for g := range sub.Groups {
			sys.Groups = append(sys.Groups, g)
		}
		sort.Ints(sys.Groups)
		if e, err := sub.Energy(); err == nil {
			sys.Energy = &e
		}
		if e, err := sub.WeightedEnergy(); err == nil {
			sys.WeightedEnergy = &e
		}
		s.Systems = append(s.Systems, sys)
	}
	if e, g, err := run.Result(); err == nil {
		s.Energy = &e
		s.Gradients = rows(g)
	}
	return s, nil
}

func rows(m *v3.Matrix) [][3]float64 {
	if m == nil {
		return nil
	}
	ret := make([][3]float64, m.NVecs())
	for i := range ret {
		ret[i] = [3]float64{m.At(i, 0), m.At(i, 1), m.At(i, 2)}
	}
	return ret
}

// GradientMatrix returns the gradients of the snapshot as a matrix, or nil if there are none.
func (S *Snapshot) GradientMatrix() *v3.Matrix {
	if len(S.Gradients) == 0 {
		return nil
	}
	m := v3.Zeros(len(S.Gradients))
	for i, v := range S.Gradients {
		m.Set(i, 0, v[0])
		m.Set(i, 1, v[1])
		m.Set(i, 2, v[2])
	}
	return m
}

// Writer writes snapshots to an underlying writer, one per line.
type Writer struct {
	enc *json.Encoder
	zw  *zstd.Encoder //nil if not compressing
}

// NewWriter returns a Writer on w. If compress is true, the output is compressed with zstd,
// and the Writer must be closed to flush it.
func NewWriter(w io.Writer, compress bool) (*Writer, error) {
	if !compress {
		return &Writer{enc: json.NewEncoder(w)}, nil
	}
	zw, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	if err != nil {
		return nil, NewError("NewWriter", err)
	}
	return &Writer{enc: json.NewEncoder(zw), zw: zw}, nil
}

// WriteRun writes a snapshot of run.
func (W *Writer) WriteRun(run *adaptive.Run) error {
	s, err := NewSnapshot(run)
	if err != nil {
		return err
	}
	return W.Write(s)
}

// Write writes the snapshot s.
func (W *Writer) Write(s *Snapshot) error {
	if err := W.enc.Encode(s); err != nil {
		return NewError("Writer.Write", err)
	}
	return nil
}

// Close flushes the compressed stream, if any. It doesn't close the underlying writer.
func (W *Writer) Close() error {
	if W.zw == nil {
		return nil
	}
	if err := W.zw.Close(); err != nil {
		return NewError("Writer.Close", err)
	}
	return nil
}

var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

// ReadSnapshots reads all the snapshots in r. Compressed streams are detected
// and decompressed.
func ReadSnapshots(r io.Reader) ([]*Snapshot, error) {
	br := bufio.NewReader(r)
	var in io.Reader = br
	if magic, err := br.Peek(len(zstdMagic)); err == nil && bytes.Equal(magic, zstdMagic) {
		zr, err := zstd.NewReader(br)
		if err != nil {
			return nil, NewError("ReadSnapshots", err)
		}
		defer zr.Close()
		in = zr
	}
	dec := json.NewDecoder(in)
	var ret []*Snapshot
	for {
		s := new(Snapshot)
		err := dec.Decode(s)
		if err == io.EOF {
			break
		}
		if err != nil {
			return ret, NewError("ReadSnapshots", fmt.Errorf("snapshot %d: %w", len(ret)+1, err))
		}
		ret = append(ret, s)
	}
	return ret, nil
}

// WriteRunFile writes snapshots of runs to the file name. The file is compressed
// if its name ends in ".zst".
func WriteRunFile(name string, runs ...*adaptive.Run) (err error) {
	f, err := os.Create(name)
	if err != nil {
		return NewError("WriteRunFile", err)
	}
	defer func() {
		if err2 := f.Close(); err == nil && err2 != nil {
			err = NewError("WriteRunFile", err2)
		}
	}()
	w, err := NewWriter(f, strings.HasSuffix(strings.ToLower(name), ".zst"))
	if err != nil {
		return err
	}
	for _, r := range runs {
		if err = w.WriteRun(r); err != nil {
			return err
		}
	}
	return w.Close()
}

// ReadRunFile reads the snapshots in the file name.
func ReadRunFile(name string) ([]*Snapshot, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, NewError("ReadRunFile", err)
	}
	defer f.Close()
	return ReadSnapshots(f)
}
