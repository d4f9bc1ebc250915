// server/internal/authz/guard.go
package authz

import (
	"context"
	"fmt"
	"sync"

	"coffee-coop-ledger-api-server/internal/ledger"
	"coffee-coop-ledger-api-server/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// DefaultGrants là bảng role -> capability mặc định, được seed vào Mongo
// lần chạy đầu và có thể chỉnh qua admin sau đó.
var DefaultGrants = map[string][]string{
	"superadmin": {
		ledger.CapCreateBatch,
		ledger.CapRoastBatch,
		ledger.CapCreateProject,
		ledger.CapAdvanceProject,
	},
	"admin": {
		ledger.CapCreateBatch,
		ledger.CapCreateProject,
		ledger.CapAdvanceProject,
	},
	"roaster":    {ledger.CapRoastBatch},
	"agronomist": {ledger.CapAdvanceProject},
}

// Guard là implementation của ledger.Guard dựa trên bảng role->capability
// và bảng principal->role trong Mongo. Cả hai được nạp vào bộ nhớ nên
// HasCapability luôn đồng bộ và không chạm I/O (yêu cầu của ledger).
type Guard struct {
	db *mongo.Database

	mu    sync.RWMutex
	roles map[string]string   // principalID -> role
	caps  map[string][]string // role -> capabilities
}

func NewGuard(db *mongo.Database) *Guard {
	return &Guard{
		db:    db,
		roles: make(map[string]string),
		caps:  make(map[string][]string),
	}
}

// Refresh nạp lại bảng role và capability từ Mongo. Được gọi lúc boot và
// sau mỗi lần admin tạo user hoặc sửa grant.
func (g *Guard) Refresh(ctx context.Context) error {
	roles := make(map[string]string)
	caps := make(map[string][]string)

	cursor, err := g.db.Collection("users").Find(ctx, bson.M{"status": "active"})
	if err != nil {
		return fmt.Errorf("failed to load users: %w", err)
	}
	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return fmt.Errorf("failed to decode users: %w", err)
	}
	for _, u := range users {
		roles[u.PrincipalID] = u.Role
	}

	grantCursor, err := g.db.Collection("role_grants").Find(ctx, bson.M{})
	if err != nil {
		return fmt.Errorf("failed to load role grants: %w", err)
	}
	var grants []models.RoleGrant
	if err := grantCursor.All(ctx, &grants); err != nil {
		return fmt.Errorf("failed to decode role grants: %w", err)
	}
	for _, grant := range grants {
		caps[grant.Role] = grant.Capabilities
	}

	g.mu.Lock()
	g.roles = roles
	g.caps = caps
	g.mu.Unlock()
	return nil
}

// HasCapability trả lời câu hỏi duy nhất mà ledger cần: principal này có
// đang giữ capability cho operation này không.
func (g *Guard) HasCapability(principal, operation string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()

	role, ok := g.roles[principal]
	if !ok {
		return false
	}
	for _, cap := range g.caps[role] {
		if cap == operation {
			return true
		}
	}
	return false
}

// StaticGuard giữ trực tiếp principal -> capabilities, dùng cho test và
// cho chế độ chạy không có Mongo.
type StaticGuard map[string][]string

func (g StaticGuard) HasCapability(principal, operation string) bool {
	for _, cap := range g[principal] {
		if cap == operation {
			return true
		}
	}
	return false
}
