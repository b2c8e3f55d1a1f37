package loft

// UserDetails identify the currently authenticated user.
type UserDetails struct {
	UserID string `json:"id"   yaml:"id"`
	Name   string `json:"name" yaml:"name"`
}

// Outcome is the result of an authentication or authorization request.
type Outcome string

// Possible outcomes.
const (
	OutcomeAllow Outcome = "allow"
	OutcomeDeny  Outcome = "deny"
)

// IsAllowed reports whether the outcome grants access.
func (o Outcome) IsAllowed() bool {
	return o == OutcomeAllow
}

// AuthenticationRequest asks the user service to verify access token
// credentials.
type AuthenticationRequest struct {
	UserID string `json:"userId"      yaml:"userId"`
	Token  string `json:"accessToken" yaml:"accessToken"`
}

// AuthenticationResponse carries the outcome of an authentication request,
// plus user details when access was granted.
type AuthenticationResponse struct {
	Outcome Outcome      `json:"outcome"           yaml:"outcome"`
	Details *UserDetails `json:"details,omitempty" yaml:"details,omitempty"`
}

// AuthorizationRequest asks whether a user holds a role on an application.
type AuthorizationRequest struct {
	Application string `json:"application"      yaml:"application"`
	Permission  Role   `json:"permission"       yaml:"permission"`
	UserID      string `json:"userId,omitempty" yaml:"userId,omitempty"`
	Roles       []Role `json:"roles,omitempty"  yaml:"roles,omitempty"`
}

// AuthorizationResponse carries the outcome of an authorization request.
type AuthorizationResponse struct {
	Outcome Outcome `json:"outcome" yaml:"outcome"`
}
