package handlers

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/gofiber/contrib/websocket"

	"fakeout/internal/broadcast"
	"fakeout/internal/models"
	"fakeout/internal/room"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 54 * time.Second
	outBuffer  = 32
)

// wsMessage is the channel frame in both directions.
type wsMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// reply answers one pushed command.
type reply struct {
	Event    string           `json:"event"`
	Status   string           `json:"status"`
	Error    string           `json:"error,omitempty"`
	Reason   string           `json:"reason,omitempty"`
	PlayerID string           `json:"player_id,omitempty"`
	Token    string           `json:"token,omitempty"`
	State    *models.Snapshot `json:"state,omitempty"`
}

type joinPayload struct {
	PlayerName string `json:"player_name" validate:"required,max=120"`
}

type rejoinPayload struct {
	Token string `json:"token" validate:"required,uuid4"`
}

type answerPayload struct {
	Answer string `json:"answer" validate:"required,max=1000"`
}

type votePayload struct {
	AnswerID string `json:"answer_id" validate:"required,max=120"`
}

// handleSocket runs one websocket session. The connection starts as a
// spectator subscribed to the room topic; join_room or rejoin binds it to a
// player identity. All game rules stay in the room engine, so a dropped or
// malformed frame can never corrupt state.
func (g *Gateway) handleSocket(c *websocket.Conn) {
	code := c.Params("code")
	log := g.log.With("room", code)

	rm, ok := g.registry.Get(code)
	if !ok {
		data, _ := json.Marshal(reply{Event: "connect", Status: "error", Error: room.Kind(room.ErrRoomNotFound)})
		c.WriteMessage(websocket.TextMessage, mustFrame("reply", data))
		c.Close()
		return
	}

	sub := g.hub.Subscribe(broadcast.Topic(code))
	out := make(chan []byte, outBuffer)
	done := make(chan struct{})
	var playerID string

	defer func() {
		close(done)
		g.hub.Unsubscribe(sub)
		if playerID != "" {
			rm.Disconnect(playerID)
		}
		c.Close()
	}()

	go writePump(c, out, done, log)
	go forwardStates(sub, out, log)

	// Initial snapshot so late subscribers and spectators render immediately.
	if snap, err := rm.Snapshot(""); err == nil {
		enqueue(out, stateFrame(snap), log)
	}

	for {
		_, raw, err := c.ReadMessage()
		if err != nil {
			return
		}
		var msg wsMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			log.Warn("invalid frame", "err", err)
			continue
		}
		resp := g.dispatch(rm, code, &playerID, msg)
		resp.Event = msg.Type
		data, err := json.Marshal(resp)
		if err != nil {
			log.Error("reply marshal failed", "err", err)
			continue
		}
		enqueue(out, mustFrame("reply", data), log)
	}
}

// dispatch runs one command against the engine and shapes the reply.
func (g *Gateway) dispatch(rm *room.Room, code string, playerID *string, msg wsMessage) reply {
	switch msg.Type {
	case "join_room":
		var p joinPayload
		if err := g.decode(msg.Data, &p); err != nil {
			return errorReply(err)
		}
		id, token, err := rm.Join(p.PlayerName)
		if err != nil {
			return errorReply(err)
		}
		*playerID = id
		return reply{Status: "ok", PlayerID: id, Token: token}

	case "rejoin":
		var p rejoinPayload
		if err := g.decode(msg.Data, &p); err != nil {
			return errorReply(err)
		}
		_, snap, id, err := g.registry.Rejoin(code, p.Token)
		if err != nil {
			return errorReply(err)
		}
		*playerID = id
		return reply{Status: "ok", PlayerID: id, State: &snap}

	case "start_game":
		if err := rm.StartGame(*playerID); err != nil {
			return errorReply(err)
		}
		return reply{Status: "ok"}

	case "start_round":
		if err := rm.StartRound(*playerID); err != nil {
			return errorReply(err)
		}
		return reply{Status: "ok"}

	case "submit_answer":
		var p answerPayload
		if err := g.decode(msg.Data, &p); err != nil {
			return errorReply(err)
		}
		if err := rm.SubmitAnswer(*playerID, p.Answer); err != nil {
			return errorReply(err)
		}
		return reply{Status: "ok"}

	case "vote_correct":
		var p votePayload
		if err := g.decode(msg.Data, &p); err != nil {
			return errorReply(err)
		}
		if err := rm.VoteCorrect(*playerID, p.AnswerID); err != nil {
			return errorReply(err)
		}
		return reply{Status: "ok"}

	case "vote_funniest":
		var p votePayload
		if err := g.decode(msg.Data, &p); err != nil {
			return errorReply(err)
		}
		if err := rm.VoteFunniest(*playerID, p.AnswerID); err != nil {
			return errorReply(err)
		}
		return reply{Status: "ok"}

	case "get_state":
		snap, err := rm.Snapshot(*playerID)
		if err != nil {
			return errorReply(err)
		}
		return reply{Status: "ok", State: &snap}

	default:
		return reply{Status: "error", Error: "unknown_command"}
	}
}

// decode unmarshals and validates a command payload.
func (g *Gateway) decode(data json.RawMessage, out any) error {
	if err := json.Unmarshal(data, out); err != nil {
		return err
	}
	return g.validate.Struct(out)
}

func errorReply(err error) reply {
	return reply{Status: "error", Error: room.Kind(err), Reason: err.Error()}
}

// writePump is the single writer for the connection; replies and state
// pushes both funnel through out, keeping concurrent writes off the socket.
func writePump(c *websocket.Conn, out <-chan []byte, done <-chan struct{}, log *slog.Logger) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case frame := <-out:
			c.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.WriteMessage(websocket.TextMessage, frame); err != nil {
				log.Warn("write failed", "err", err)
				return
			}
		case <-ticker.C:
			c.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// forwardStates wraps hub payloads into state_update frames. Ends when the
// subscriber channel closes on unsubscribe.
func forwardStates(sub *broadcast.Subscriber, out chan<- []byte, log *slog.Logger) {
	for data := range sub.C {
		enqueue(out, mustFrame("state_update", data), log)
	}
}

func enqueue(out chan<- []byte, frame []byte, log *slog.Logger) {
	select {
	case out <- frame:
	default:
		log.Warn("dropping frame for slow connection")
	}
}

func stateFrame(snap models.Snapshot) []byte {
	data, _ := json.Marshal(snap)
	return mustFrame("state_update", data)
}

func mustFrame(typ string, data json.RawMessage) []byte {
	frame, _ := json.Marshal(wsMessage{Type: typ, Data: data})
	return frame
}
