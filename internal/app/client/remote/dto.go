package remote

// Wire shapes for the passkeeper server API. Title, username and secret
// of a record are opaque base64 ciphertext at this boundary, in both
// directions; the server never sees plaintext.

// AuthResult is the payload of a successful login, token login or
// registration.
type AuthResult struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Token    string `json:"token"`
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type groupRequest struct {
	Name    string `json:"name"`
	Comment string `json:"comment,omitempty"`
}

type recordRequest struct {
	GroupID  int64  `json:"group_id"`
	Title    string `json:"title"`
	Username string `json:"username"`
	Secret   string `json:"secret"`
	Link     string `json:"link,omitempty"`
	Note     string `json:"note,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}
