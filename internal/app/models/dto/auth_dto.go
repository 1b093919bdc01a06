package dto

// LoginRequest is the login payload for students and lecturers
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"student@example.edu"`
	Password string `json:"password" binding:"required" example:"secret"`
}

// RegisterRequest registers a new student account
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email" example:"student@example.edu"`
	Password string `json:"password" binding:"required,min=8" example:"secret123"`
	Name     string `json:"name" binding:"required" example:"Jane Tan"`
	Phone    string `json:"phone" example:"+60123456789"`
}

// RefreshRequest exchanges a refresh token for a new pair
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// TokenResponse carries an issued token pair
type TokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int    `json:"expiresIn" example:"3600"`
	TokenType    string `json:"tokenType" example:"Bearer"`
}
