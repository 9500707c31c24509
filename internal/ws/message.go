package ws

import "encoding/json"

// InboundEnvelope is the generic envelope for all client-to-server control
// plane messages. The Action field is used for routing; Raw holds the full
// JSON payload.
type InboundEnvelope struct {
	Action string          `json:"action"`
	Raw    json.RawMessage `json:"-"`
}

func (e *InboundEnvelope) UnmarshalJSON(data []byte) error {
	type actionOnly struct {
		Action string `json:"action"`
	}
	var a actionOnly
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	e.Action = a.Action
	e.Raw = json.RawMessage(data)
	return nil
}

// JoinQueueMsg is sent by the client to enter the queue.
type JoinQueueMsg struct {
	Action      string `json:"action"`
	TimeControl string `json:"time_control"`
}

// LeaveQueueMsg is sent by the client to leave the queue.
type LeaveQueueMsg struct {
	Action      string `json:"action"`
	TimeControl string `json:"time_control"`
}

// ControlResponse answers a join_queue/leave_queue request.
type ControlResponse struct {
	Status  string `json:"status"` // "success" | "error"
	Message string `json:"message,omitempty"`
}

// GameMatchedMsg is pushed to each matched player's own session.
type GameMatchedMsg struct {
	Action      string `json:"action"`
	GameID      string `json:"game_id"`
	OpponentID  string `json:"opponent_id"`
	Color       string `json:"color"`
	TimeControl string `json:"time_control"`
}
