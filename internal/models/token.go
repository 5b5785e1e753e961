package models

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	// RefreshToken is absent on impersonation tokens.
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
}
