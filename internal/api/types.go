package api

import "lakeauth/internal/domain"

// Wire types of the auth API. Timestamps travel as unix seconds.

type Error struct {
	Message string `json:"message"`
}

type User struct {
	ID           string `json:"id"`
	CreationDate int64  `json:"creation_date"`
	Email        string `json:"email,omitempty"`
	FriendlyName string `json:"friendly_name,omitempty"`
	Source       string `json:"source,omitempty"`
}

type CreateUserRequest struct {
	ID           string `json:"id"`
	Email        string `json:"email,omitempty"`
	FriendlyName string `json:"friendly_name,omitempty"`
	Password     string `json:"password,omitempty"`
}

type Group struct {
	ID           string `json:"id"`
	CreationDate int64  `json:"creation_date"`
}

type CreateGroupRequest struct {
	ID string `json:"id"`
}

type Statement struct {
	Effect   string   `json:"effect"`
	Resource string   `json:"resource"`
	Action   []string `json:"action"`
}

type Policy struct {
	ID           string      `json:"id"`
	CreationDate int64       `json:"creation_date"`
	Statement    []Statement `json:"statement"`
}

type Credentials struct {
	AccessKeyID  string `json:"access_key_id"`
	CreationDate int64  `json:"creation_date"`
}

type CredentialsWithSecret struct {
	AccessKeyID     string `json:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key"`
	CreationDate    int64  `json:"creation_date"`
}

type LoginRequest struct {
	AccessKeyID     string `json:"access_key_id,omitempty"`
	SecretAccessKey string `json:"secret_access_key,omitempty"`
	Username        string `json:"username,omitempty"`
	Password        string `json:"password,omitempty"`
}

type AuthenticationToken struct {
	Token           string `json:"token"`
	TokenExpiration int64  `json:"token_expiration"`
}

type AuthCapabilities struct {
	InviteUser     bool `json:"invite_user"`
	ForgotPassword bool `json:"forgot_password"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type UpdatePasswordRequest struct {
	NewPassword string `json:"new_password"`
}

type Pagination struct {
	HasMore    bool   `json:"has_more"`
	NextOffset string `json:"next_offset"`
	MaxPerPage int    `json:"max_per_page"`
	Results    int    `json:"results"`
}

type UserList struct {
	Pagination Pagination `json:"pagination"`
	Results    []User     `json:"results"`
}

type GroupList struct {
	Pagination Pagination `json:"pagination"`
	Results    []Group    `json:"results"`
}

type PolicyList struct {
	Pagination Pagination `json:"pagination"`
	Results    []Policy   `json:"results"`
}

type CredentialsList struct {
	Pagination Pagination    `json:"pagination"`
	Results    []Credentials `json:"results"`
}

// === Mapping helpers ===

func userToAPI(u domain.User) User {
	return User{
		ID:           u.ID,
		CreationDate: u.CreatedAt.Unix(),
		Email:        u.Email,
		FriendlyName: u.FriendlyName,
		Source:       u.Source,
	}
}

func groupToAPI(g domain.Group) Group {
	return Group{ID: g.ID, CreationDate: g.CreatedAt.Unix()}
}

func policyToAPI(p domain.Policy) Policy {
	stmts := make([]Statement, len(p.Statement))
	for i, s := range p.Statement {
		stmts[i] = Statement{Effect: s.Effect, Resource: s.Resource, Action: s.Action}
	}
	return Policy{ID: p.ID, CreationDate: p.CreatedAt.Unix(), Statement: stmts}
}

func policyFromAPI(p Policy) *domain.Policy {
	stmts := make([]domain.Statement, len(p.Statement))
	for i, s := range p.Statement {
		stmts[i] = domain.Statement{Effect: s.Effect, Resource: s.Resource, Action: s.Action}
	}
	return &domain.Policy{ID: p.ID, Statement: stmts}
}

func credentialsToAPI(c domain.Credentials) Credentials {
	return Credentials{AccessKeyID: c.AccessKeyID, CreationDate: c.CreatedAt.Unix()}
}

func paginationToAPI(p domain.Pagination) Pagination {
	return Pagination{
		HasMore:    p.HasMore,
		NextOffset: p.NextOffset,
		MaxPerPage: p.MaxPerPage,
		Results:    p.Results,
	}
}
