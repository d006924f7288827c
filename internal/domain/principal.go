package domain

// Principal is the authenticated caller, resolved upstream from the bearer token.
type Principal struct {
	UserID       string
	Role         Role
	Constituency string
}

func (p Principal) IsZero() bool { return p.UserID == "" }
