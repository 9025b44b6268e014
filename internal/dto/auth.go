package dto

// LoginRequest captures admin credential input.
type LoginRequest struct {
	Password string `json:"password"`
}

// LoginResponse contains the issued access token.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
}
