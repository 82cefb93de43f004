package dto

type RegisterRequest struct {
	FirstName string    `json:"firstName" binding:"required,min=2,max=50"`
	LastName  string    `json:"lastName" binding:"required,min=2,max=50"`
	Email     string    `json:"email" binding:"required,email"`
	Phone     string    `json:"phone" binding:"omitempty,min=10,max=15"`
	Password  string    `json:"password" binding:"required,min=8,max=100"`
	Location  []float64 `json:"location" binding:"omitempty,geopoint"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

type TokenResponse struct {
	Token        string       `json:"token"`
	RefreshToken string       `json:"refreshToken"`
	ExpiresIn    int          `json:"expiresIn"` // seconds
	User         UserResponse `json:"user"`
}
