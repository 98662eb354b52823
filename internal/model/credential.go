package model

import "time"

// Credential is the stored access/refresh secret pair plus the computed
// expiry instant. Exactly one instance exists at a time and it is owned by
// the token manager; nothing else reads or writes the credential store.
type Credential struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

func (c Credential) Complete() bool {
	return c.AccessToken != "" && c.RefreshToken != ""
}

// Session is the wire shape returned by login, signup and refresh.
type Session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}
