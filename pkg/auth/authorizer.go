package auth

// Authorize permits an authenticated identity whose role is a member of
// required. It takes an Identity value: there is no way to ask about an
// unauthenticated request.
func Authorize(id Identity, required RoleSet) error {
	if !required.Contains(id.Role) {
		return ErrForbidden
	}
	return nil
}
