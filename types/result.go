/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package types

import "errors"

// ErrResultHasNoValue is the panic value raised by Result.Value on a failure.
var ErrResultHasNoValue = errors.New("result: value requested from a failed result")

// Result is an immutable success/failure outcome. A successful Result always
// carries a value and never an error code; a failed Result never carries a value.
type Result[T any] struct {
	success    bool
	value      T
	message    string
	hasMessage bool
	errorCode  int
	hasCode    bool
}

// Ok returns a successful Result holding value. At most one message is used.
func Ok[T any](value T, message ...string) Result[T] {
	r := Result[T]{success: true, value: value}
	if len(message) > 0 {
		r.message, r.hasMessage = message[0], true
	}
	return r
}

// Fail returns a failed Result. At most one error code is used.
func Fail[T any](message string, errorCode ...int) Result[T] {
	r := Result[T]{message: message, hasMessage: message != ""}
	if len(errorCode) > 0 {
		r.errorCode, r.hasCode = errorCode[0], true
	}
	return r
}

func (r Result[T]) IsSuccess() bool { return r.success }

func (r Result[T]) IsFailure() bool { return !r.success }

func (r Result[T]) Message() string { return r.message }

func (r Result[T]) HasMessage() bool { return r.hasMessage }

// ErrorCode returns the failure code and whether one was set.
func (r Result[T]) ErrorCode() (int, bool) { return r.errorCode, r.hasCode }

// Value returns the payload. Calling it on a failed Result is a contract
// violation and panics with ErrResultHasNoValue.
func (r Result[T]) Value() T {
	if !r.success {
		panic(ErrResultHasNoValue)
	}
	return r.value
}

// ValueOK returns the payload and true on success, the zero value and false otherwise.
func (r Result[T]) ValueOK() (T, bool) {
	if !r.success {
		var zero T
		return zero, false
	}
	return r.value, true
}

// Map applies fn to a successful payload and keeps its message. A failure is
// re-typed with the same message and error code. fn must not panic.
func Map[T, U any](r Result[T], fn func(T) U) Result[U] {
	if !r.success {
		return failAs[U](r)
	}
	return Result[U]{
		success:    true,
		value:      fn(r.value),
		message:    r.message,
		hasMessage: r.hasMessage,
	}
}

// TryMap is Map for transforms that can fail: a non-nil error from fn turns
// the Result into a failure whose message is the error text.
func TryMap[T, U any](r Result[T], fn func(T) (U, error)) Result[U] {
	if !r.success {
		return failAs[U](r)
	}
	v, err := fn(r.value)
	if err != nil {
		return Fail[U](err.Error())
	}
	return Result[U]{success: true, value: v, message: r.message, hasMessage: r.hasMessage}
}

// FlatMap chains a Result-returning step onto a successful Result.
func FlatMap[T, U any](r Result[T], fn func(T) Result[U]) Result[U] {
	if !r.success {
		return failAs[U](r)
	}
	return fn(r.value)
}

func failAs[U, T any](r Result[T]) Result[U] {
	return Result[U]{
		message:    r.message,
		hasMessage: r.hasMessage,
		errorCode:  r.errorCode,
		hasCode:    r.hasCode,
	}
}
