package authsdk

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Message string `json:"message" example:"Invalid credentials"`
}

// MessageResponse is returned by endpoints with nothing else to say.
type MessageResponse struct {
	Message string `json:"message" example:"Invitation sent successfully"`
}

type RegisterRequest struct {
	CompanyName string `json:"companyName" example:"Stone & Sod"`
	Username    string `json:"username" example:"owner"`
	Password    string `json:"password" example:"correct horse"`
}

type RegisterResponse struct {
	Message   string `json:"message"`
	UserID    string `json:"userId"`
	CompanyID string `json:"companyId"`
	Token     string `json:"token"`
}

type LoginRequest struct {
	Username string `json:"username" example:"owner"`
	Password string `json:"password" example:"correct horse"`
}

type LoginResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

type InviteRequest struct {
	Email string `json:"email" example:"crew@example.com"`
	Role  string `json:"role" example:"user" enums:"admin,manager,user"`
}

type AcceptInviteRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

type AcceptInviteResponse struct {
	Message string `json:"message"`
	UserID  string `json:"userId"`
	Token   string `json:"token"`
}

type VerifyTokenRequest struct {
	Token string `json:"token"`
}

// Claims is the decoded identity of a session token.
type Claims struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Role      string `json:"role"`
	CompanyID string `json:"companyId,omitempty"`
	ExpiresAt int64  `json:"exp"`
}

// ClaimsResponse is returned by /verify-token and /dashboard.
type ClaimsResponse struct {
	Message string `json:"message"`
	Claims  Claims `json:"claims"`
}

type HealthChecks struct {
	Database string `json:"database,omitempty"`
	Denylist string `json:"denylist,omitempty"`
}

type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}
