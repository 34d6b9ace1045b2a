package model

type Role string

const (
	RoleClient Role = "client"
	RoleMaster Role = "master"
	RoleAdmin  Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleClient, RoleMaster, RoleAdmin:
		return true
	}
	return false
}

// Actor is the authenticated caller, as established by the upstream
// authenticator. The engine never verifies identity itself.
type Actor struct {
	ID   string
	Role Role
}
