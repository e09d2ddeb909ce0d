package model

// Role is the authorization level reported by the login endpoint.
type Role string

const RoleAdmin Role = "Admin"

type Identity struct {
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// Session is the client's authentication state. Token and Identity are
// either both set or both empty.
type Session struct {
	Token    string
	Identity *Identity
}

func (s Session) Authenticated() bool {
	return s.Token != "" && s.Identity != nil
}

type SessionState int

const (
	Anonymous SessionState = iota
	AuthenticatedNonAdmin
	AuthenticatedAdmin
)

func (s SessionState) String() string {
	switch s {
	case AuthenticatedNonAdmin:
		return "authenticated"
	case AuthenticatedAdmin:
		return "admin"
	default:
		return "anonymous"
	}
}

func (s Session) State() SessionState {
	if !s.Authenticated() {
		return Anonymous
	}
	if s.Identity.IsAdmin() {
		return AuthenticatedAdmin
	}
	return AuthenticatedNonAdmin
}

// Capability is derived once per session state and consulted by every
// mutation entry point.
type Capability struct {
	CanRead  bool
	CanWrite bool
}

func (s Session) Capability() Capability {
	return Capability{
		CanRead:  true,
		CanWrite: s.State() == AuthenticatedAdmin,
	}
}

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResult struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}
