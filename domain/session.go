package domain

// Session is the persisted (user, token) pair identifying the signed-in actor.
type Session struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

// Valid reports whether both halves of the session are present.
func (s *Session) Valid() bool {
	return s != nil && s.User.ID != "" && s.Token != ""
}
