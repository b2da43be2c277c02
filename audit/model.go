// audit/model.go
package audit

import (
	"encoding/json"
	"time"
)

// Entry is one recorded policy decision or domain write.
type Entry struct {
	Timestamp     time.Time       `json:"timestamp"`
	UserID        string          `json:"user_id"`
	Action        string          `json:"action"`
	ResourceType  string          `json:"resource_type"`
	ResourceID    string          `json:"resource_id"`
	AccessGranted bool            `json:"access_granted"`
	Policy        string          `json:"policy,omitempty"`
	Reason        string          `json:"reason,omitempty"`
	ChangeDetails json.RawMessage `json:"change_details,omitempty"`
}
