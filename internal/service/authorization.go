// Package service implements the application services over the domain
// repositories: validation, permission checks, password hashing, token
// issuance, and credential generation.
package service

import (
	"context"

	"lakeauth/internal/domain"
)

// Authorizer answers permission questions by evaluating the effective
// policies of the calling user (direct attachments plus group attachments).
type Authorizer struct {
	policies domain.PolicyRepository
}

// NewAuthorizer creates a new Authorizer.
func NewAuthorizer(policies domain.PolicyRepository) *Authorizer {
	return &Authorizer{policies: policies}
}

// Authorize checks that the user in context may perform action on resource.
// A statement matches when its resource pattern matches the resource and one
// of its action patterns matches the action. Deny statements win over allow
// statements; no matching allow means access denied.
func (a *Authorizer) Authorize(ctx context.Context, action, resource string) error {
	caller, ok := domain.UserFromContext(ctx)
	if !ok {
		return domain.ErrAuthentication("authentication required")
	}

	allowed := false
	params := domain.ListParams{Amount: domain.MaxAmount}
	for {
		policies, hasMore, err := a.policies.ListEffectiveForUser(ctx, caller.ID, params)
		if err != nil {
			return err
		}
		for _, p := range policies {
			for _, stmt := range p.Statement {
				if !domain.MatchPattern(stmt.Resource, resource) {
					continue
				}
				if !matchesAction(stmt.Action, action) {
					continue
				}
				if stmt.Effect == domain.EffectDeny {
					return domain.ErrAccessDenied("denied permission to %s", action)
				}
				allowed = true
			}
		}
		if !hasMore || len(policies) == 0 {
			break
		}
		params.After = policies[len(policies)-1].ID
	}

	if !allowed {
		return domain.ErrAccessDenied("missing permission to %s", action)
	}
	return nil
}

func matchesAction(patterns []string, action string) bool {
	for _, p := range patterns {
		if domain.MatchPattern(p, action) {
			return true
		}
	}
	return false
}

// requireUser returns the authenticated user from context.
func requireUser(ctx context.Context) (*domain.User, error) {
	u, ok := domain.UserFromContext(ctx)
	if !ok {
		return nil, domain.ErrAuthentication("authentication required")
	}
	return u, nil
}
