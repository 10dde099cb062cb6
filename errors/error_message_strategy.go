// relay.  A Go message-passing and concurrency toolbox.
// Copyright (C) 2021-2026  The Relay Authors
//
// This file is part of relay.
//
// relay is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package errors

import "strconv"

// ErrorMessageStrategy is a strategy for auto-generating error messages.
type ErrorMessageStrategy int8

// Enumeration of supported error message strategies.
const (
	OriginalMsg             ErrorMessageStrategy = 1 + iota // OriginalMessage
	PrependFullFuncName                                     // PrependFullFunctionName
	PrependFullPkgName                                      // PrependFullPackageName
	PrependSimpleFuncName                                   // PrependSimpleFunctionName
	PrependSimplePkgName                                    // PrependSimplePackageName
	maxErrorMessageStrategy                                 // ErrorMessageStrategy(6)
)

var errorMessageStrategyNames = [...]string{
	"OriginalMessage",
	"PrependFullFunctionName",
	"PrependFullPackageName",
	"PrependSimpleFunctionName",
	"PrependSimplePackageName",
}

// String returns the name in the line comment of i's constant above,
// or "ErrorMessageStrategy(n)" if i is invalid.
func (i ErrorMessageStrategy) String() string {
	if i.Valid() {
		return errorMessageStrategyNames[i-1]
	}
	return "ErrorMessageStrategy(" + strconv.FormatInt(int64(i), 10) + ")"
}

// Valid returns true if the error message strategy is known.
//
// Known error message strategies are shown as follows:
//   - OriginalMsg: use the error message itself
//   - PrependFullFuncName: add the full function name (i.e., the package path-qualified function name) before the error message
//   - PrependFullPkgName: add the full package name before the error message
//   - PrependSimpleFuncName: add the simple function name before the error message
//   - PrependSimplePkgName: add the simple package name before the error message
func (i ErrorMessageStrategy) Valid() bool {
	return i > 0 && i < maxErrorMessageStrategy
}

// MustValid panics if i is invalid.
// Otherwise, it does nothing.
func (i ErrorMessageStrategy) MustValid() {
	if !i.Valid() {
		panic(AutoMsgCustom(
			"unknown message strategy: "+strconv.FormatInt(int64(i), 10),
			-1,
			1,
		))
	}
}
