package dto

// LoginRequest represents staff login data
type LoginRequest struct {
	Username string `json:"username" binding:"required" example:"admin"`
	Password string `json:"password" binding:"required,min=8" example:"Admin123!"`
}

// TokenResponse represents the issued access token
type TokenResponse struct {
	AccessToken string `json:"accessToken" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	TokenType   string `json:"tokenType" example:"Bearer"`
	ExpiresIn   int    `json:"expiresIn" example:"3600"`
	Username    string `json:"username" example:"admin"`
	RoleType    string `json:"roleType" example:"ADMIN"`
}
