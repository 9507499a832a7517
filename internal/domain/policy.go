package domain

import (
	"strings"
	"time"
)

// Statement effects.
const (
	EffectAllow = "allow"
	EffectDeny  = "deny"
)

// Auth actions that statements can grant or deny. The wildcard forms
// ("auth:*", "auth:Read*") are accepted in statements and expanded during
// permission checks.
const (
	ActionReadUser          = "auth:ReadUser"
	ActionCreateUser        = "auth:CreateUser"
	ActionDeleteUser        = "auth:DeleteUser"
	ActionListUsers         = "auth:ListUsers"
	ActionReadGroup         = "auth:ReadGroup"
	ActionCreateGroup       = "auth:CreateGroup"
	ActionDeleteGroup       = "auth:DeleteGroup"
	ActionListGroups        = "auth:ListGroups"
	ActionAddGroupMember    = "auth:AddGroupMember"
	ActionRemoveGroupMember = "auth:RemoveGroupMember"
	ActionReadPolicy        = "auth:ReadPolicy"
	ActionCreatePolicy      = "auth:CreatePolicy"
	ActionUpdatePolicy      = "auth:UpdatePolicy"
	ActionDeletePolicy      = "auth:DeletePolicy"
	ActionListPolicies      = "auth:ListPolicies"
	ActionAttachPolicy      = "auth:AttachStoragePolicy"
	ActionDetachPolicy      = "auth:DetachStoragePolicy"
	ActionCreateCredentials = "auth:CreateCredentials"
	ActionDeleteCredentials = "auth:DeleteCredentials"
	ActionReadCredentials   = "auth:ReadCredentials"
	ActionListCredentials   = "auth:ListCredentials"
)

// AllResources matches any resource in a statement.
const AllResources = "*"

// Statement is a single allow/deny rule within a policy document.
type Statement struct {
	Effect   string   `json:"effect"`
	Resource string   `json:"resource"`
	Action   []string `json:"action"`
}

// Policy is a named document of statements attachable to users and groups.
type Policy struct {
	ID        string
	Statement []Statement
	CreatedAt time.Time
}

// Validate checks that the policy id and all statements are well-formed.
func (p *Policy) Validate() error {
	if p.ID == "" {
		return ErrValidation("policy id is required")
	}
	if strings.ContainsAny(p.ID, " /") {
		return ErrValidation("policy id must not contain spaces or slashes")
	}
	if len(p.Statement) == 0 {
		return ErrValidation("policy must have at least one statement")
	}
	for i, s := range p.Statement {
		if s.Effect != EffectAllow && s.Effect != EffectDeny {
			return ErrValidation("statement %d: effect must be %q or %q", i, EffectAllow, EffectDeny)
		}
		if s.Resource == "" {
			return ErrValidation("statement %d: resource is required", i)
		}
		if len(s.Action) == 0 {
			return ErrValidation("statement %d: at least one action is required", i)
		}
		for _, a := range s.Action {
			if !validActionPattern(a) {
				return ErrValidation("statement %d: invalid action %q", i, a)
			}
		}
	}
	return nil
}

// validActionPattern accepts "<service>:<Name>" where Name may contain '*'
// wildcards, or the bare "*".
func validActionPattern(a string) bool {
	if a == "*" {
		return true
	}
	svc, name, ok := strings.Cut(a, ":")
	if !ok || svc == "" || name == "" {
		return false
	}
	for _, r := range svc {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '*':
		default:
			return false
		}
	}
	return true
}

// MatchPattern reports whether value matches pattern, where '*' in the
// pattern matches any (possibly empty) run of characters.
func MatchPattern(pattern, value string) bool {
	if pattern == "*" {
		return true
	}
	parts := strings.Split(pattern, "*")
	if len(parts) == 1 {
		return pattern == value
	}
	if !strings.HasPrefix(value, parts[0]) {
		return false
	}
	value = value[len(parts[0]):]
	for _, part := range parts[1 : len(parts)-1] {
		idx := strings.Index(value, part)
		if idx < 0 {
			return false
		}
		value = value[idx+len(part):]
	}
	return strings.HasSuffix(value, parts[len(parts)-1])
}

// Resource identifiers used in policy statements.
func UserResource(id string) string   { return "auth/user/" + id }
func GroupResource(id string) string  { return "auth/group/" + id }
func PolicyResource(id string) string { return "auth/policy/" + id }
