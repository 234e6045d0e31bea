package model

// Session is the authenticated caller, passed explicitly from the auth middleware
// into every service call.
type Session struct {
	UID           string
	Email         string
	Name          string
	EmailVerified bool
	// User is nil until the user document has been created.
	User *User
}

// Role is empty while the user has not selected one yet.
func (s *Session) Role() Role {
	if s == nil || s.User == nil {
		return ""
	}
	return s.User.Role
}

func (s *Session) HasRole(roles ...Role) bool {
	current := s.Role()
	for _, r := range roles {
		if current == r {
			return true
		}
	}
	return false
}

func (s *Session) DisplayName() string {
	if s.User != nil {
		return s.User.DisplayName()
	}
	if s.Name != "" {
		return s.Name
	}
	return s.Email
}
