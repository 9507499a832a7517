package authclient

// User is an identity known to the auth service.
type User struct {
	ID           string `json:"id"`
	CreationDate int64  `json:"creation_date"`
	Email        string `json:"email,omitempty"`
	FriendlyName string `json:"friendly_name,omitempty"`
	Source       string `json:"source,omitempty"`
}

// CreateUserRequest creates a user. Password is optional; without one the
// user can only authenticate with an access key pair.
type CreateUserRequest struct {
	ID           string `json:"id"`
	Email        string `json:"email,omitempty"`
	FriendlyName string `json:"friendly_name,omitempty"`
	Password     string `json:"password,omitempty"`
}

// Group is a named set of users.
type Group struct {
	ID           string `json:"id"`
	CreationDate int64  `json:"creation_date"`
}

// CreateGroupRequest creates a group.
type CreateGroupRequest struct {
	ID string `json:"id"`
}

// Statement is a single allow or deny rule inside a policy.
type Statement struct {
	Effect   string   `json:"effect"`
	Resource string   `json:"resource"`
	Action   []string `json:"action"`
}

// Policy is a named list of statements.
type Policy struct {
	ID           string      `json:"id"`
	CreationDate int64       `json:"creation_date"`
	Statement    []Statement `json:"statement"`
}

// Credentials identifies an access key pair. The secret is only present in
// CredentialsWithSecret, returned once at creation time.
type Credentials struct {
	AccessKeyID  string `json:"access_key_id"`
	CreationDate int64  `json:"creation_date"`
}

// CredentialsWithSecret is returned by CreateCredentials only.
type CredentialsWithSecret struct {
	AccessKeyID     string `json:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key"`
	CreationDate    int64  `json:"creation_date"`
}

// LoginRequest authenticates with either an access key pair or a
// username/password pair.
type LoginRequest struct {
	AccessKeyID     string `json:"access_key_id,omitempty"`
	SecretAccessKey string `json:"secret_access_key,omitempty"`
	Username        string `json:"username,omitempty"`
	Password        string `json:"password,omitempty"`
}

// AuthenticationToken is a session token and its expiry (unix seconds).
type AuthenticationToken struct {
	Token           string `json:"token"`
	TokenExpiration int64  `json:"token_expiration"`
}

// AuthCapabilities reports which optional auth flows the server supports.
type AuthCapabilities struct {
	InviteUser     bool `json:"invite_user"`
	ForgotPassword bool `json:"forgot_password"`
}

// Pagination is the cursor envelope attached to every list response.
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
