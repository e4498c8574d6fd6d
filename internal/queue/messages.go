package queue

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/patrickkostjens/firefly-iii/internal/types"
)

// RuleRunMessage requests that a rule group is executed against the
// historical journals of a set of accounts.
//
// The message only carries identifiers, the worker resolves the group and
// rules from the database when it runs. Delivery is at least once: running
// the same message twice is safe because all rule actions are idempotent.
type RuleRunMessage struct {
	RuleGroupID uuid.UUID   `json:"ruleGroupId"`
	AccountIDs  []uuid.UUID `json:"accountIds"`
	Start       types.Date  `json:"start"`
	End         types.Date  `json:"end"`
	Timestamp   time.Time   `json:"timestamp"`
}

// NewRuleRunMessage creates a rule run request for the group and accounts.
func NewRuleRunMessage(groupID uuid.UUID, accountIDs []uuid.UUID, window types.Range) *RuleRunMessage {
	return &RuleRunMessage{
		RuleGroupID: groupID,
		AccountIDs:  accountIDs,
		Start:       window.Start,
		End:         window.End,
		Timestamp:   time.Now().In(time.UTC),
	}
}

// Window returns the date range of the message.
func (m *RuleRunMessage) Window() (types.Range, error) {
	return types.NewRange(m.Start, m.End)
}

// ToJSON converts the message to JSON bytes.
func (m *RuleRunMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// RuleRunMessageFromJSON creates a message from JSON bytes.
func RuleRunMessageFromJSON(data []byte) (*RuleRunMessage, error) {
	var msg RuleRunMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
