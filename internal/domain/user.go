package domain

// Role governs endpoint access. The set is closed: anything outside it is
// rejected loudly instead of silently granting nothing.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleRep      Role = "rep"
	RoleAdmin    Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleRep, RoleAdmin:
		return true
	}
	return false
}

// User is an account record. Password is stored as-is in the users file;
// this service deliberately carries no hashing.
type User struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
	Role     Role   `json:"role"`
}

// UserInfo is the password-free projection of a User. It is what auth
// responses return and what orders snapshot at creation time.
type UserInfo struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Role  Role   `json:"role"`
}

func (u User) Info() UserInfo {
	return UserInfo{ID: u.ID, Name: u.Name, Phone: u.Phone, Role: u.Role}
}
