package shared

// shared types across the application
// 1st: actor identity passed explicitly into every service call
// 2nd: auth claims structure for the session JWT

// Actor is the identity behind a request. The zero value is an anonymous visitor.
type Actor struct {
	UserID   string `json:"user_id"`
	UserName string `json:"username"`
	Role     string `json:"role"`
}

// Anonymous is the actor for requests without a valid session.
var Anonymous = Actor{}

func (a Actor) IsAuthenticated() bool {
	return a.UserID != ""
}

func (a Actor) IsAdmin() bool {
	return a.IsAuthenticated() && a.Role == "admin"
}

type AuthClaims struct {
	UserID   string `json:"user_id"`  // user identifier(UUID)
	UserName string `json:"username"` // username
	Role     string `json:"role"`
}

// Actor converts validated claims into the request identity.
func (c AuthClaims) Actor() Actor {
	return Actor{UserID: c.UserID, UserName: c.UserName, Role: c.Role}
}
