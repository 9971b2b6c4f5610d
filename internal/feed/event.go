// Package feed carries order change notifications from mutations to every
// connected board. Events travel through a Postgres NOTIFY channel so that
// all server instances share one feed, and fan out in-process through a
// Broker to the open push streams.
package feed

import "encoding/json"

type Type string

const (
	TypeConnected Type = "connected"
	TypeInsert    Type = "insert"
	TypeUpdate    Type = "update"
	TypeReplace   Type = "replace"
	TypeDelete    Type = "delete"
	TypeError     Type = "error"
)

// Event is the wire payload of the push channel. Data events carry the
// affected order document; delete events carry only its id.
type Event struct {
	Type    Type            `json:"type"`
	Order   json.RawMessage `json:"order,omitempty"`
	ID      string          `json:"id,omitempty"`
	Message string          `json:"message,omitempty"`
}

// ForOrder builds a data event around the given order document.
func ForOrder(t Type, order any) (Event, error) {
	raw, err := json.Marshal(order)
	if err != nil {
		return Event{}, err
	}
	return Event{Type: t, Order: raw}, nil
}

func ForDelete(id string) Event {
	return Event{Type: TypeDelete, ID: id}
}

func ForError(msg string) Event {
	return Event{Type: TypeError, Message: msg}
}
