package auth

// Profile is the application row for an identity in the users table.
type Profile struct {
	ID        string  `json:"id"`
	Role      string  `json:"role"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
}

// LoginUser is the user block returned by a successful login.
type LoginUser struct {
	ID        string  `json:"id"`
	Email     string  `json:"email"`
	Role      string  `json:"role"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
}

// LoginResult is returned by POST /auth/login.
type LoginResult struct {
	Token string    `json:"token"`
	User  LoginUser `json:"user"`
}
