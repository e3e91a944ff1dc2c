package domain

// Shared validation messages used in ValidationError fields so that entity
// packages and DTO validation produce identical wording.
const (
	MsgRequired     = "is required"
	MsgMustNotEmpty = "must not be empty"
)
