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

package domain

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

type requestContextKey struct{}

// RequestContext identifies who is acting and which request the work belongs
// to. UserEmail is the actor recorded in audit fields.
type RequestContext struct {
	UserEmail     string
	CorrelationID string
}

// NewRequestContext returns a RequestContext for userEmail. An empty
// correlationID is replaced by a new UUID.
func NewRequestContext(userEmail, correlationID string) RequestContext {
	if correlationID == "" {
		correlationID = uuid.NewString()
	}
	return RequestContext{UserEmail: strings.TrimSpace(userEmail), CorrelationID: correlationID}
}

// WithRequestContext returns a copy of ctx carrying rc.
func WithRequestContext(ctx context.Context, rc RequestContext) context.Context {
	return context.WithValue(ctx, requestContextKey{}, rc)
}

// RequestContextFrom returns the RequestContext stored in ctx, if any.
func RequestContextFrom(ctx context.Context) (RequestContext, bool) {
	if ctx == nil {
		return RequestContext{}, false
	}
	rc, ok := ctx.Value(requestContextKey{}).(RequestContext)
	return rc, ok
}

// ActorFrom returns actor, or the UserEmail carried by ctx when actor is empty.
func ActorFrom(ctx context.Context, actor string) string {
	if actor != "" {
		return actor
	}
	rc, _ := RequestContextFrom(ctx)
	return rc.UserEmail
}

// TouchContext records a modification by the actor carried in ctx.
func (a Audit) TouchContext(ctx context.Context, at time.Time) (Audit, error) {
	return a.Touch(ActorFrom(ctx, ""), at)
}

// MarkDeletedContext soft deletes on behalf of the actor carried in ctx.
func (a Audit) MarkDeletedContext(ctx context.Context, at time.Time) (Audit, error) {
	return a.MarkDeleted(ActorFrom(ctx, ""), at)
}
