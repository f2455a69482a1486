package journal

import "github.com/go-json-experiment/json/jsontext"

const (
	CommandInsert    = "insert"
	CommandRemove    = "remove"
	CommandReplace   = "replace"
	CommandIndex     = "index"
	CommandDropIndex = "drop_index"
	CommandSnapshot  = "snapshot"
)

// Command is one journal entry. Handle is the slot the command applies to;
// for inserts it is the handle that was assigned, so replays can detect
// divergence.
type Command struct {
	Name      string         `json:"name"`
	Uuid      string         `json:"uuid"`
	Timestamp int64          `json:"timestamp"`
	Handle    int            `json:"handle"`
	Payload   jsontext.Value `json:"payload,omitzero"`
}
