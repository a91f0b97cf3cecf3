// seehuhn.de/go/meshraster - rasterise 2D hydraulic meshes
// Copyright (C) 2026  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package mesh

import (
	"errors"
	"fmt"
)

// Sentinel errors for the kinds of [GeometryError].
// Use [errors.Is] to test for them.
var (
	ErrDegenerateCell   = errors.New("degenerate cell")
	ErrSelfIntersecting = errors.New("self-intersecting cell")
	ErrOrphanFace       = errors.New("orphan face")
	ErrInvalidVertex    = errors.New("invalid vertex reference")
	ErrLengthMismatch   = errors.New("length mismatch")
	ErrNonManifold      = errors.New("edge shared by more than two cells")
)

// ErrorKind classifies malformed mesh geometry.
type ErrorKind int

// These are the kinds of geometry errors.
const (
	DegenerateCell ErrorKind = iota + 1
	SelfIntersecting
	OrphanFace
	InvalidVertex
	LengthMismatch
	NonManifold
)

func (k ErrorKind) sentinel() error {
	switch k {
	case DegenerateCell:
		return ErrDegenerateCell
	case SelfIntersecting:
		return ErrSelfIntersecting
	case OrphanFace:
		return ErrOrphanFace
	case InvalidVertex:
		return ErrInvalidVertex
	case LengthMismatch:
		return ErrLengthMismatch
	case NonManifold:
		return ErrNonManifold
	}
	return nil
}

// Element names the kind of mesh element a GeometryError refers to.
type Element string

// These are the mesh elements.
const (
	ElementCell   Element = "cell"
	ElementFace   Element = "face"
	ElementVertex Element = "vertex"
	ElementMesh   Element = "mesh"
)

// GeometryError reports malformed mesh geometry.  Index locates the bad
// record within the arrays named by Element.
type GeometryError struct {
	Kind    ErrorKind
	Element Element
	Index   int
	Detail  string
}

func (e *GeometryError) Error() string {
	msg := fmt.Sprintf("mesh: %s", e.Kind.sentinel())
	if e.Element != ElementMesh {
		msg += fmt.Sprintf(" at %s %d", e.Element, e.Index)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

// Unwrap returns the sentinel error for the kind of e.
func (e *GeometryError) Unwrap() error {
	return e.Kind.sentinel()
}

func cellError(kind ErrorKind, i int, format string, args ...any) error {
	return &GeometryError{Kind: kind, Element: ElementCell, Index: i, Detail: fmt.Sprintf(format, args...)}
}

func faceError(kind ErrorKind, i int, format string, args ...any) error {
	return &GeometryError{Kind: kind, Element: ElementFace, Index: i, Detail: fmt.Sprintf(format, args...)}
}
