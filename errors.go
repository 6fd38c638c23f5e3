/*
 * errors.go, part of dhva.
 *
 * Copyright 2026 The dhva authors
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

package dhva

import (
	"errors"
	"fmt"
	"strings"
)

//Kind classifies the errors produced by this library. A Kind is itself an error, so
//callers can test for a class of failure with errors.Is(err, dhva.ErrParse).
type Kind string

func (K Kind) Error() string { return string(K) }

const (
	ErrParse      = Kind("parse error")      //malformed or missing structured fields
	ErrDomain     = Kind("domain error")     //geometrically impossible lattice parameters
	ErrValidation = Kind("validation error") //grid/k-point count mismatches
	ErrIO         = Kind("I/O error")        //unreadable, missing or unwritable files
)

//Error is the error type returned by all the packages in dhva.
//It carries the Kind of failure, the file involved (if any), a "decoration"
//slice with the names of the functions the error went through, and the
//underlying error, if the failure was caused by another library.
type Error struct {
	Kind Kind
	Msg  string
	File string
	Deco []string
	Err  error
}

//Error returns a string with an error message.
func (err *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(err.Kind))
	if len(err.Deco) > 0 {
		//the trail is stored innermost first.
		trail := make([]string, len(err.Deco))
		for i, v := range err.Deco {
			trail[len(err.Deco)-1-i] = v
		}
		b.WriteString(" in ")
		b.WriteString(strings.Join(trail, "/"))
	}
	if err.File != "" {
		fmt.Fprintf(&b, " (%s)", err.File)
	}
	b.WriteString(": ")
	b.WriteString(err.Msg)
	if err.Err != nil {
		b.WriteString(": ")
		b.WriteString(err.Err.Error())
	}
	return b.String()
}

//Unwrap returns the underlying error, if any.
func (err *Error) Unwrap() error { return err.Err }

//Is reports whether target is the Kind of err.
func (err *Error) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && k == err.Kind
}

//Decorate adds dec to the decoration slice of the error, and returns
//the resulting slice. An empty string just returns the current slice.
func (err *Error) Decorate(dec string) []string {
	if dec != "" {
		err.Deco = append(err.Deco, dec)
	}
	return err.Deco
}

//NewError builds an error of kind k. caller is the name of the function
//where the error originated. cause can be nil.
func NewError(k Kind, caller, file, msg string, cause error) *Error {
	return &Error{Kind: k, Msg: msg, File: file, Deco: []string{caller}, Err: cause}
}

//Errorf is NewError with a formatted message and no cause.
func Errorf(k Kind, caller, format string, a ...any) *Error {
	return NewError(k, caller, "", fmt.Sprintf(format, a...), nil)
}

//ErrDecorate decorates err with the caller's name if err is a *Error,
//and returns it. Other errors are wrapped in an ErrIO *Error, since the only
//foreign errors that reach this library come from the file system.
func ErrDecorate(err error, caller string) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		e.Decorate(caller)
		return e
	}
	return NewError(ErrIO, caller, "", "unexpected failure", err)
}

//SetFile sets the file name of err if err is a *Error that doesn't have one.
func SetFile(err error, file string) error {
	var e *Error
	if errors.As(err, &e) && e.File == "" {
		e.File = file
	}
	return err
}
