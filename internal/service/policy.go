package service

import (
	"context"

	"lakeauth/internal/domain"
)

// PolicyService provides policy management and attachment operations.
type PolicyService struct {
	policies domain.PolicyRepository
	authz    *Authorizer
}

// NewPolicyService creates a new PolicyService.
func NewPolicyService(policies domain.PolicyRepository, authz *Authorizer) *PolicyService {
	return &PolicyService{policies: policies, authz: authz}
}

// Create validates and persists a new policy.
func (s *PolicyService) Create(ctx context.Context, p *domain.Policy) (*domain.Policy, error) {
	if err := s.authz.Authorize(ctx, domain.ActionCreatePolicy, domain.PolicyResource(p.ID)); err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return s.policies.Create(ctx, p)
}

// Get returns a policy by id.
func (s *PolicyService) Get(ctx context.Context, id string) (*domain.Policy, error) {
	if err := s.authz.Authorize(ctx, domain.ActionReadPolicy, domain.PolicyResource(id)); err != nil {
		return nil, err
	}
	return s.policies.GetByID(ctx, id)
}

// Update replaces the statements of an existing policy.
func (s *PolicyService) Update(ctx context.Context, p *domain.Policy) (*domain.Policy, error) {
	if err := s.authz.Authorize(ctx, domain.ActionUpdatePolicy, domain.PolicyResource(p.ID)); err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return s.policies.Update(ctx, p)
}

// List returns a page of policies ordered by id.
func (s *PolicyService) List(ctx context.Context, params domain.ListParams) ([]domain.Policy, bool, error) {
	if err := s.authz.Authorize(ctx, domain.ActionListPolicies, domain.AllResources); err != nil {
		return nil, false, err
	}
	return s.policies.List(ctx, params)
}

// Delete removes a policy and all its attachments.
func (s *PolicyService) Delete(ctx context.Context, id string) error {
	if err := s.authz.Authorize(ctx, domain.ActionDeletePolicy, domain.PolicyResource(id)); err != nil {
		return err
	}
	return s.policies.Delete(ctx, id)
}

// AttachToUser attaches a policy to a user.
func (s *PolicyService) AttachToUser(ctx context.Context, policyID, userID string) error {
	if err := s.authz.Authorize(ctx, domain.ActionAttachPolicy, domain.UserResource(userID)); err != nil {
		return err
	}
	return s.policies.AttachToUser(ctx, policyID, userID)
}

// DetachFromUser detaches a policy from a user.
func (s *PolicyService) DetachFromUser(ctx context.Context, policyID, userID string) error {
	if err := s.authz.Authorize(ctx, domain.ActionDetachPolicy, domain.UserResource(userID)); err != nil {
		return err
	}
	return s.policies.DetachFromUser(ctx, policyID, userID)
}

// AttachToGroup attaches a policy to a group.
func (s *PolicyService) AttachToGroup(ctx context.Context, policyID, groupID string) error {
	if err := s.authz.Authorize(ctx, domain.ActionAttachPolicy, domain.GroupResource(groupID)); err != nil {
		return err
	}
	return s.policies.AttachToGroup(ctx, policyID, groupID)
}

// DetachFromGroup detaches a policy from a group.
func (s *PolicyService) DetachFromGroup(ctx context.Context, policyID, groupID string) error {
	if err := s.authz.Authorize(ctx, domain.ActionDetachPolicy, domain.GroupResource(groupID)); err != nil {
		return err
	}
	return s.policies.DetachFromGroup(ctx, policyID, groupID)
}

// ListForUser returns the policies attached directly to a user. With
// effective set, group-attached policies are merged in, de-duplicated by id.
func (s *PolicyService) ListForUser(ctx context.Context, userID string, effective bool, params domain.ListParams) ([]domain.Policy, bool, error) {
	if err := s.authz.Authorize(ctx, domain.ActionReadUser, domain.UserResource(userID)); err != nil {
		return nil, false, err
	}
	if effective {
		return s.policies.ListEffectiveForUser(ctx, userID, params)
	}
	return s.policies.ListForUser(ctx, userID, params)
}

// ListForGroup returns the policies attached to a group.
func (s *PolicyService) ListForGroup(ctx context.Context, groupID string, params domain.ListParams) ([]domain.Policy, bool, error) {
	if err := s.authz.Authorize(ctx, domain.ActionReadGroup, domain.GroupResource(groupID)); err != nil {
		return nil, false, err
	}
	return s.policies.ListForGroup(ctx, groupID, params)
}
