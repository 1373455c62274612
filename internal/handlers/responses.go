package handlers

// RegistrationStatusResponse reports whether registration is open and the
// active submission deadline, if any.
type RegistrationStatusResponse struct {
	Open     bool   `json:"open"`
	Deadline string `json:"deadline,omitempty"`
}

// ResetTablesResponse confirms which tables a reset cleared.
type ResetTablesResponse struct {
	Tables  []string `json:"tables"`
	Message string   `json:"message"`
}
