package messages

import "github.com/automoto/retrorealms/shared/netconfig"

// Login results reported by the server.
const (
	LoginSuccess      = "success"
	LoginInvalidLogin = "invalidLogin"
	LoginServerError  = "serverError"
)

// LoginRequest is sent by a client right after the socket connects.
type LoginRequest struct {
	Username string
	Password string
}

// LoginResponse is the server's answer to a LoginRequest. ID is only meaningful on success.
type LoginResponse struct {
	ID     netconfig.EntityID
	Result string
}
