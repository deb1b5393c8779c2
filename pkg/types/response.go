// Package types holds the wire envelopes shared by every API response.
package types

type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError carries only the coded message shown to clients. The error
// mapping keeps authorization denials generic, so nothing here names who
// added a hidden gift.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
