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

package errors

import (
	"net/http"

	"github.com/cockroachdb/errors"
)

// Sentinels for each error kind. Errors returned by the repository are marked
// with exactly one of them.
var (
	ErrStoreQueryFailed  = errors.New("store query failed")
	ErrStoreWriteFailed  = errors.New("store write failed")
	ErrNotFound          = errors.New("entity not found")
	ErrInvalidAuditState = errors.New("invalid audit state")
	ErrInvalidEntity     = errors.New("invalid entity")
)

// Fixed, operation-specific messages.
const (
	MsgFindFailed     = "Failed to find entities"
	MsgFindOneFailed  = "Failed to find entity"
	MsgFindAllFailed  = "Failed to find all entities"
	MsgCountFailed    = "Failed to count entities"
	MsgNotFound       = "Entity not found"
	MsgSaveFailed     = "Failed to save entity"
	MsgDeleteFailed   = "Failed to delete entity"
	MsgCorruptedModel = "Stored entity failed validation"
)

var sentinels = map[Kind]error{
	KindStoreQueryFailed:  ErrStoreQueryFailed,
	KindStoreWriteFailed:  ErrStoreWriteFailed,
	KindNotFound:          ErrNotFound,
	KindInvalidAuditState: ErrInvalidAuditState,
	KindInvalidEntity:     ErrInvalidEntity,
}

var codes = map[Kind]int{
	KindUnknown:           http.StatusInternalServerError,
	KindStoreQueryFailed:  http.StatusInternalServerError,
	KindStoreWriteFailed:  http.StatusInternalServerError,
	KindNotFound:          http.StatusNotFound,
	KindInvalidAuditState: http.StatusBadRequest,
	KindInvalidEntity:     http.StatusBadRequest,
}

// KindOf returns the kind err is marked with, or KindUnknown.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	for _, k := range Kinds() {
		if errors.Is(err, sentinels[k]) {
			return k
		}
	}
	return KindUnknown
}

// Code maps err to the numeric code used as a Result error code.
func Code(err error) int {
	return KindOf(err).Code()
}

func Is(err, reference error) bool { return errors.Is(err, reference) }

func As(err error, target any) bool { return errors.As(err, target) }

func IsStoreQueryFailed(err error) bool { return errors.Is(err, ErrStoreQueryFailed) }

func IsStoreWriteFailed(err error) bool { return errors.Is(err, ErrStoreWriteFailed) }

func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

func IsInvalidAuditState(err error) bool { return errors.Is(err, ErrInvalidAuditState) }

func IsInvalidEntity(err error) bool { return errors.Is(err, ErrInvalidEntity) }

// Wrap adds context to err while keeping its kind.
func Wrap(err error, msg string) error {
	return errors.Wrap(err, msg)
}
