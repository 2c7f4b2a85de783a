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
	"github.com/tomoncle/tombstone/types"
)

// Kind classifies errors surfaced by the persistence core.
type Kind int

const (
	KindUnknown Kind = iota
	KindStoreQueryFailed
	KindStoreWriteFailed
	KindNotFound
	KindInvalidAuditState
	KindInvalidEntity
)

var _ types.BaseEnum = KindUnknown

var kindNames = map[Kind]string{
	KindStoreQueryFailed:  "StoreQueryFailed",
	KindStoreWriteFailed:  "StoreWriteFailed",
	KindNotFound:          "NotFound",
	KindInvalidAuditState: "InvalidAuditState",
	KindInvalidEntity:     "InvalidEntity",
}

var kindDescs = map[Kind]string{
	KindStoreQueryFailed:  "a read against the store failed",
	KindStoreWriteFailed:  "a write against the store failed",
	KindNotFound:          "no live row matched",
	KindInvalidAuditState: "audit metadata violates its invariants",
	KindInvalidEntity:     "entity fields failed validation",
}

// Kinds lists every valid kind.
func Kinds() []Kind {
	return []Kind{KindStoreQueryFailed, KindStoreWriteFailed, KindNotFound, KindInvalidAuditState, KindInvalidEntity}
}

func (k Kind) IsValid() bool {
	_, ok := kindNames[k]
	return ok
}

func (k Kind) Number() int {
	if !k.IsValid() {
		return types.IllegalValue
	}
	return int(k)
}

func (k Kind) Name() string {
	if !k.IsValid() {
		return types.IllegalName
	}
	return kindNames[k]
}

func (k Kind) String() string { return k.Name() }

func (k Kind) Desc() string {
	if !k.IsValid() {
		return types.IllegalDesc
	}
	return kindDescs[k]
}

// Code is the HTTP-style status code callers attach to failed results.
func (k Kind) Code() int {
	if c, ok := codes[k]; ok {
		return c
	}
	return codes[KindUnknown]
}

// Sentinel returns the reference error for k, nil for KindUnknown.
func (k Kind) Sentinel() error {
	return sentinels[k]
}
