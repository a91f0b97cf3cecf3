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

package results

import (
	"errors"
	"fmt"
)

var (
	// ErrTimestepNotFound is returned when an instantaneous aggregation
	// asks for a time which is not among the output times.
	ErrTimestepNotFound = errors.New("results: time step not found")

	// ErrLocationMismatch is returned when two series which must refer to
	// the same mesh elements do not.
	ErrLocationMismatch = errors.New("results: location mismatch")
)

// MissingVariableError is returned when a required variable is not
// present in the results.
type MissingVariableError struct {
	Variable Variable
}

func (e *MissingVariableError) Error() string {
	return fmt.Sprintf("results: missing variable %q", e.Variable)
}

// DuplicateVariableError is returned when a result source holds more than
// one series for a variable.
type DuplicateVariableError struct {
	Variable Variable
}

func (e *DuplicateVariableError) Error() string {
	return fmt.Sprintf("results: duplicate variable %q", e.Variable)
}

// LengthError is returned when the number of values in a series does not
// match the number of mesh elements.
type LengthError struct {
	Variable Variable
	Location Location
	Want     int
	Got      int
	Detail   string
}

func (e *LengthError) Error() string {
	msg := fmt.Sprintf("results: %q has %d values, want one for each of %d %s", e.Variable, e.Got, e.Want, e.Location)
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	return msg
}
