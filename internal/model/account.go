package model

import "time"

// Role distinguishes the two kinds of accounts. Usernames are unique per
// role, so the same name may exist once as a player and once as a developer.
type Role string

const (
	RolePlayer    Role = "player"
	RoleDeveloper Role = "developer"
)

// Valid reports whether r is one of the known account roles.
func (r Role) Valid() bool {
	return r == RolePlayer || r == RoleDeveloper
}

// Account is a registered player or developer. Accounts are immutable after
// registration.
type Account struct {
	Role         Role      `json:"role"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
}

// AccountTable is the persisted account store, keyed by role then username.
type AccountTable map[Role]map[string]Account

// NewAccountTable returns a table with both role groups initialized.
func NewAccountTable() AccountTable {
	return AccountTable{
		RolePlayer:    {},
		RoleDeveloper: {},
	}
}

// Group returns the username map for a role, creating it if absent.
func (t AccountTable) Group(role Role) map[string]Account {
	group, ok := t[role]
	if !ok {
		group = map[string]Account{}
		t[role] = group
	}
	return group
}
