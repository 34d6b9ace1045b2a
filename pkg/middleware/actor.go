package middleware

import (
	"net/http"

	apperrors "salonbook/pkg/errors"
	"salonbook/pkg/model"
)

// Headers set by the upstream authenticator. The engine trusts them; it does
// not verify identity itself.
const (
	HeaderUserID   = "X-User-Id"
	HeaderUserRole = "X-User-Role"
)

// ActorFromRequest reads the authenticated caller from the request headers.
func ActorFromRequest(r *http.Request) (model.Actor, error) {
	id := r.Header.Get(HeaderUserID)
	role := model.Role(r.Header.Get(HeaderUserRole))

	if id == "" {
		return model.Actor{}, apperrors.Unauthorized("missing " + HeaderUserID + " header")
	}
	if !role.Valid() {
		return model.Actor{}, apperrors.Unauthorized("missing or invalid " + HeaderUserRole + " header")
	}

	return model.Actor{ID: id, Role: role}, nil
}
