// server/internal/models/ledger_event.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LedgerEvent là một change event đã commit, được indexer ghi vào Mongo
// sau khi ledger phát ra. Seq giữ lại thứ tự commit; Payload là event
// struct gốc dưới dạng document.
type LedgerEvent struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	EventID   string             `bson:"eventID" json:"eventID"` // uuid, cấp lúc index
	Seq       uint64             `bson:"seq" json:"seq"`
	Name      string             `bson:"name" json:"name"` // e.g. "BatchCreated", "BeansRoasted"
	Payload   interface{}        `bson:"payload" json:"payload"`
	IndexedAt time.Time          `bson:"indexedAt" json:"indexedAt"`
}

// RoleGrant là một dòng của bảng role -> capability.
type RoleGrant struct {
	Role         string   `bson:"role" json:"role"`
	Capabilities []string `bson:"capabilities" json:"capabilities"`
}
