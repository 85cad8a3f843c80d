package model

// Principal is the authenticated identity established for one request.
// It is built by the request authenticator from verified token claims,
// lives in the request context only, and is never persisted.
type Principal struct {
	Subject string
	Roles   []string
}

func (p *Principal) HasRole(name string) bool {
	if p == nil {
		return false
	}
	for _, role := range p.Roles {
		if role == name {
			return true
		}
	}
	return false
}

func (p *Principal) HasAnyRole(names ...string) bool {
	for _, name := range names {
		if p.HasRole(name) {
			return true
		}
	}
	return false
}
