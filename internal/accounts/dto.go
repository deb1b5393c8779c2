package accounts

// UpdateProfileInput holds a partial account profile update.
type UpdateProfileInput struct {
	Name *string
}
