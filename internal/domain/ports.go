package domain

import "context"

// UserRepository persists users. List results are ordered by id; the bool
// return reports whether more results exist past the requested page.
type UserRepository interface {
	Create(ctx context.Context, u *User, passwordHash []byte) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context, params ListParams) ([]User, bool, error)
	Delete(ctx context.Context, id string) error
	HashedPassword(ctx context.Context, id string) ([]byte, error)
	UpdatePassword(ctx context.Context, id string, hash []byte) error
}

// GroupRepository persists groups and the user-group membership relation.
type GroupRepository interface {
	Create(ctx context.Context, g *Group) (*Group, error)
	GetByID(ctx context.Context, id string) (*Group, error)
	List(ctx context.Context, params ListParams) ([]Group, bool, error)
	Delete(ctx context.Context, id string) error
	AddMember(ctx context.Context, groupID, userID string) error
	RemoveMember(ctx context.Context, groupID, userID string) error
	ListMembers(ctx context.Context, groupID string, params ListParams) ([]User, bool, error)
	ListGroupsForUser(ctx context.Context, userID string, params ListParams) ([]Group, bool, error)
}

// PolicyRepository persists policies and their attachments to users and
// groups.
type PolicyRepository interface {
	Create(ctx context.Context, p *Policy) (*Policy, error)
	GetByID(ctx context.Context, id string) (*Policy, error)
	Update(ctx context.Context, p *Policy) (*Policy, error)
	List(ctx context.Context, params ListParams) ([]Policy, bool, error)
	Delete(ctx context.Context, id string) error
	AttachToUser(ctx context.Context, policyID, userID string) error
	DetachFromUser(ctx context.Context, policyID, userID string) error
	AttachToGroup(ctx context.Context, policyID, groupID string) error
	DetachFromGroup(ctx context.Context, policyID, groupID string) error
	ListForUser(ctx context.Context, userID string, params ListParams) ([]Policy, bool, error)
	ListForGroup(ctx context.Context, groupID string, params ListParams) ([]Policy, bool, error)
	// ListEffectiveForUser returns the union of policies attached to the
	// user directly and through group membership, de-duplicated by id.
	ListEffectiveForUser(ctx context.Context, userID string, params ListParams) ([]Policy, bool, error)
}

// CredentialRepository persists access-key pairs. The secret is stored
// encrypted; GetWithSecret returns it decrypted for login verification.
type CredentialRepository interface {
	Create(ctx context.Context, c *Credentials) (*Credentials, error)
	Get(ctx context.Context, userID, accessKeyID string) (*Credentials, error)
	GetWithSecret(ctx context.Context, accessKeyID string) (*Credentials, error)
	ListForUser(ctx context.Context, userID string, params ListParams) ([]Credentials, bool, error)
	Delete(ctx context.Context, userID, accessKeyID string) error
}
