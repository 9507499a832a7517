package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPolicyValidate_OK(t *testing.T) {
	p := &Policy{
		ID: "ReadAll",
		Statement: []Statement{
			{Effect: EffectAllow, Resource: AllResources, Action: []string{"auth:Read*", "auth:ListUsers"}},
		},
	}
	require.NoError(t, p.Validate())
}

func TestPolicyValidate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		policy Policy
	}{
		{name: "empty id", policy: Policy{Statement: []Statement{{Effect: EffectAllow, Resource: "*", Action: []string{"auth:ReadUser"}}}}},
		{name: "id with slash", policy: Policy{ID: "a/b", Statement: []Statement{{Effect: EffectAllow, Resource: "*", Action: []string{"auth:ReadUser"}}}}},
		{name: "no statements", policy: Policy{ID: "p"}},
		{name: "bad effect", policy: Policy{ID: "p", Statement: []Statement{{Effect: "permit", Resource: "*", Action: []string{"auth:ReadUser"}}}}},
		{name: "empty resource", policy: Policy{ID: "p", Statement: []Statement{{Effect: EffectAllow, Action: []string{"auth:ReadUser"}}}}},
		{name: "no actions", policy: Policy{ID: "p", Statement: []Statement{{Effect: EffectAllow, Resource: "*"}}}},
		{name: "action without service", policy: Policy{ID: "p", Statement: []Statement{{Effect: EffectAllow, Resource: "*", Action: []string{"ReadUser"}}}}},
		{name: "action with digits", policy: Policy{ID: "p", Statement: []Statement{{Effect: EffectAllow, Resource: "*", Action: []string{"auth:Read2"}}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.policy.Validate()
			require.Error(t, err)
			var validation *ValidationError
			assert.ErrorAs(t, err, &validation)
		})
	}
}

func TestMatchPattern(t *testing.T) {
	tests := []struct {
		pattern string
		value   string
		want    bool
	}{
		{"*", "anything", true},
		{"auth:ReadUser", "auth:ReadUser", true},
		{"auth:ReadUser", "auth:readuser", false},
		{"auth:Read*", "auth:ReadUser", true},
		{"auth:Read*", "auth:ReadGroup", true},
		{"auth:Read*", "auth:CreateUser", false},
		{"auth:*", "auth:DeletePolicy", true},
		{"auth/user/*", "auth/user/jane", true},
		{"auth/user/*", "auth/group/ops", false},
		{"auth/user/jane", "auth/user/jane", true},
		{"*User", "auth:ReadUser", true},
		{"a*c*e", "abcde", true},
		{"a*c*e", "abde", false},
	}
	for _, tt := range tests {
		t.Run(tt.pattern+"~"+tt.value, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchPattern(tt.pattern, tt.value))
		})
	}
}

func TestListParams_Limit(t *testing.T) {
	assert.Equal(t, DefaultAmount, ListParams{}.Limit())
	assert.Equal(t, 5, ListParams{Amount: 5}.Limit())
	assert.Equal(t, MaxAmount, ListParams{Amount: MaxAmount + 1}.Limit())
	assert.Equal(t, DefaultAmount, ListParams{Amount: -1}.Limit())
}

func TestPaginationFor(t *testing.T) {
	p := PaginationFor(true, 10, "user-10")
	assert.True(t, p.HasMore)
	assert.Equal(t, "user-10", p.NextOffset)
	assert.Equal(t, 10, p.Results)

	p = PaginationFor(false, 3, "user-3")
	assert.False(t, p.HasMore)
	assert.Empty(t, p.NextOffset)
}
