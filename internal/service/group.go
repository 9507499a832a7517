package service

import (
	"context"

	"lakeauth/internal/domain"
)

// GroupService provides group and membership management operations.
type GroupService struct {
	groups domain.GroupRepository
	authz  *Authorizer
}

// NewGroupService creates a new GroupService.
func NewGroupService(groups domain.GroupRepository, authz *Authorizer) *GroupService {
	return &GroupService{groups: groups, authz: authz}
}

// Create validates and persists a new group.
func (s *GroupService) Create(ctx context.Context, req domain.CreateGroupRequest) (*domain.Group, error) {
	if err := s.authz.Authorize(ctx, domain.ActionCreateGroup, domain.GroupResource(req.ID)); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return s.groups.Create(ctx, &domain.Group{ID: req.ID})
}

// Get returns a group by id.
func (s *GroupService) Get(ctx context.Context, id string) (*domain.Group, error) {
	if err := s.authz.Authorize(ctx, domain.ActionReadGroup, domain.GroupResource(id)); err != nil {
		return nil, err
	}
	return s.groups.GetByID(ctx, id)
}

// List returns a page of groups ordered by id.
func (s *GroupService) List(ctx context.Context, params domain.ListParams) ([]domain.Group, bool, error) {
	if err := s.authz.Authorize(ctx, domain.ActionListGroups, domain.AllResources); err != nil {
		return nil, false, err
	}
	return s.groups.List(ctx, params)
}

// Delete removes a group and its memberships and policy attachments.
func (s *GroupService) Delete(ctx context.Context, id string) error {
	if err := s.authz.Authorize(ctx, domain.ActionDeleteGroup, domain.GroupResource(id)); err != nil {
		return err
	}
	return s.groups.Delete(ctx, id)
}

// AddMember adds a user to a group. Both sides must exist.
func (s *GroupService) AddMember(ctx context.Context, groupID, userID string) error {
	if err := s.authz.Authorize(ctx, domain.ActionAddGroupMember, domain.GroupResource(groupID)); err != nil {
		return err
	}
	return s.groups.AddMember(ctx, groupID, userID)
}

// RemoveMember removes a user from a group.
func (s *GroupService) RemoveMember(ctx context.Context, groupID, userID string) error {
	if err := s.authz.Authorize(ctx, domain.ActionRemoveGroupMember, domain.GroupResource(groupID)); err != nil {
		return err
	}
	return s.groups.RemoveMember(ctx, groupID, userID)
}

// ListMembers returns a page of the group's members ordered by user id.
func (s *GroupService) ListMembers(ctx context.Context, groupID string, params domain.ListParams) ([]domain.User, bool, error) {
	if err := s.authz.Authorize(ctx, domain.ActionReadGroup, domain.GroupResource(groupID)); err != nil {
		return nil, false, err
	}
	return s.groups.ListMembers(ctx, groupID, params)
}

// ListForUser returns a page of the groups the user belongs to.
func (s *GroupService) ListForUser(ctx context.Context, userID string, params domain.ListParams) ([]domain.Group, bool, error) {
	if err := s.authz.Authorize(ctx, domain.ActionReadUser, domain.UserResource(userID)); err != nil {
		return nil, false, err
	}
	return s.groups.ListGroupsForUser(ctx, userID, params)
}
