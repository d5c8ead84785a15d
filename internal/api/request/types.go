package request

// RegisterRequest is the request body for registering an account
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

// LoginRequest is the request body for logging in. Role is an optional
// equality filter against the stored account role.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

// StartScenarioRequest is the request body for starting a scenario.
// Pct is optional; zero means the default starting percentage.
type StartScenarioRequest struct {
	Pct int `json:"pct,omitempty"`
}

// ChoiceRequest is the request body for recording a scenario choice
type ChoiceRequest struct {
	Choice string `json:"choice"`
}

// NotesRequest is the request body for saving notes
type NotesRequest struct {
	Notes string `json:"notes"`
}

// PreferencesRequest is the request body for saving accessibility preferences
type PreferencesRequest struct {
	Preferences map[string]bool `json:"preferences"`
}
