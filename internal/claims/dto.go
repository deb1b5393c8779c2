package claims

// ProgressInput toggles the independent progress flags on a claim; nil fields
// are left unchanged.
type ProgressInput struct {
	Purchased *bool
	Received  *bool
	Wrapped   *bool
}
