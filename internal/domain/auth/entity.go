package auth

type Role string

const (
	RoleStudent      Role = "student"
	RoleParent       Role = "parent"
	RoleWarden       Role = "warden"
	RoleHostelWarden Role = "hostel_warden"
	RoleMessWarden   Role = "mess_warden"
	RoleAdmin        Role = "admin"
)

// Wardens are the roles allowed to administer residents and review leaves.
var Wardens = []Role{RoleWarden, RoleHostelWarden, RoleAdmin}

// Claims are the fields this service reads from a dashboard token.
type Claims struct {
	UserID string
	Role   Role
	// ResidentID is set for student tokens only.
	ResidentID string
	Type       string
}

// TokenTypeAccess and TokenTypeStream distinguish dashboard tokens from the
// short-lived tokens used by EventSource, which cannot send headers.
const (
	TokenTypeAccess = "access"
	TokenTypeStream = "sse"
)

// ClaimsFromMap reads Claims out of decoded JWT claims. Missing fields stay empty.
func ClaimsFromMap(m map[string]interface{}) Claims {
	str := func(key string) string {
		s, _ := m[key].(string)
		return s
	}
	return Claims{
		UserID:     str("user_id"),
		Role:       Role(str("role")),
		ResidentID: str("resident_id"),
		Type:       str("type"),
	}
}

func (c Claims) HasRole(roles ...Role) bool {
	for _, r := range roles {
		if c.Role == r {
			return true
		}
	}
	return false
}

func (c Claims) IsWarden() bool {
	return c.HasRole(Wardens...)
}
