package room

import "errors"

// Client-facing rejection kinds. Handlers wrap them with a specific reason
// via fmt.Errorf("%w: ...") and the gateway maps them back with Kind. A
// rejected command never mutates room state.
var (
	ErrRoomNotFound       = errors.New("room_not_found")
	ErrGameAlreadyStarted = errors.New("game_already_started")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrNotEnoughPlayers   = errors.New("not_enough_players")
	ErrRoomFull           = errors.New("room_full")
	ErrInvalidSubmission  = errors.New("invalid_submission")
	ErrInvalidVote        = errors.New("invalid_vote")
)

var kinds = []error{
	ErrRoomNotFound,
	ErrGameAlreadyStarted,
	ErrUnauthorized,
	ErrNotEnoughPlayers,
	ErrRoomFull,
	ErrInvalidSubmission,
	ErrInvalidVote,
}

// Kind returns the wire code for a rejection, or "internal_error" for
// anything that is not one of the known kinds.
func Kind(err error) string {
	for _, kind := range kinds {
		if errors.Is(err, kind) {
			return kind.Error()
		}
	}
	return "internal_error"
}
