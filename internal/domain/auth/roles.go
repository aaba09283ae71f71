package auth

import (
	"context"
	"strings"
)

const (
	RoleEvaluator = "evaluator"
	RoleReviewer  = "reviewer"
	RoleAdmin     = "admin"
)

// UserContext is the authenticated caller as carried on the request context.
type UserContext struct {
	UserID   int64
	RoleName string
}

// StaticPermissions answers permission checks from RolePermissions.
type StaticPermissions struct {
	grants map[string]map[string]struct{}
}

func NewStaticPermissions() *StaticPermissions {
	grants := make(map[string]map[string]struct{}, len(RolePermissions))
	for role, perms := range RolePermissions {
		set := make(map[string]struct{}, len(perms))
		for _, p := range perms {
			set[p] = struct{}{}
		}
		grants[role] = set
	}
	return &StaticPermissions{grants: grants}
}

func (s *StaticPermissions) HasPermission(_ context.Context, role, permission string) (bool, error) {
	set, ok := s.grants[strings.ToLower(strings.TrimSpace(role))]
	if !ok {
		return false, nil
	}
	_, ok = set[permission]
	return ok, nil
}
