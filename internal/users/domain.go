package users

// CreateInput is the body of POST /users.
type CreateInput struct {
	Email     string `json:"email" validate:"required"`
	Password  string `json:"password" validate:"required"`
	Role      string `json:"role" validate:"required"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
	Subject   string `json:"subject"`
}

// CreateResult is returned once the identity user exists. The profile row
// is created by a database trigger.
type CreateResult struct {
	Success bool   `json:"success"`
	UserID  string `json:"user_id"`
}

// metadata builds the user_metadata block; empty strings become null.
func (in CreateInput) metadata(role string) map[string]any {
	return map[string]any{
		"first_name": nullable(in.FirstName),
		"last_name":  nullable(in.LastName),
		"phone":      nullable(in.Phone),
		"role":       role,
		"subject":    nullable(in.Subject),
	}
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
