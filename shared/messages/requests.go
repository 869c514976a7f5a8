package messages

// MoveStartRequest asks the server to start moving the local player.
// The server alone decides whether the move is legal.
type MoveStartRequest struct {
	Dir string
}

// MoveStopRequest asks the server to stop moving the local player.
type MoveStopRequest struct{}
