// internal/ledger/ledger.go
package ledger

import "sync"

// Các capability mà Guard kiểm tra trước mỗi mutation.
const (
	CapCreateBatch    = "batch:create"
	CapRoastBatch     = "batch:roast"
	CapCreateProject  = "project:create"
	CapAdvanceProject = "project:advance"
)

// RegistryHolder là holder đại diện cho chính registry: inventory vừa
// mint xong nằm ở đây cho tới khi được chuyển cho một identity bên ngoài.
// Registry không phải trường hợp đặc biệt, chỉ là một holder như mọi
// holder khác trong bảng custody.
const RegistryHolder = "registry"

// Guard là capability check được inject từ ngoài. Check phải đồng bộ và
// không có side effect; ledger gọi nó ở đầu mọi mutating operation.
type Guard interface {
	HasCapability(principal, operation string) bool
}

// Ledger giữ trạng thái canonical của mọi batch và greenfield project.
//
// Mọi mutation chạy dưới một writer lock duy nhất: validate hết
// precondition trước, rồi mới commit, nên một lời gọi bị từ chối không
// để lại thay đổi nào. Notifier được gọi ngay sau commit, vẫn trong
// critical section, để thứ tự event trùng với thứ tự commit.
type Ledger struct {
	mu       sync.RWMutex
	guard    Guard
	notifier Notifier

	// Id được cấp riêng cho từng loại entity, tăng dần, không tái sử dụng.
	nextBatchID   uint64
	nextProjectID uint64

	batches  map[uint64]*Batch
	projects map[uint64]*Project

	// allBatchIDs giữ thứ tự cấp id cho mục đích audit; activeBatches là
	// index các batch còn currentQuantity > 0.
	allBatchIDs   []uint64
	activeBatches map[uint64]struct{}

	// custody: batchID -> holder -> số kg đang nắm giữ.
	custody map[uint64]map[string]int64
}

// New tạo một ledger rỗng. Guard và Notifier là bắt buộc.
func New(guard Guard, notifier Notifier) *Ledger {
	return &Ledger{
		guard:         guard,
		notifier:      notifier,
		nextBatchID:   1,
		nextProjectID: 1,
		batches:       make(map[uint64]*Batch),
		projects:      make(map[uint64]*Project),
		activeBatches: make(map[uint64]struct{}),
		custody:       make(map[uint64]map[string]int64),
	}
}

// NextBatchID trả về id sẽ được cấp cho batch kế tiếp (chỉ để quan sát,
// ví dụ trong admin API; không bao giờ được dùng để tự cấp id).
func (l *Ledger) NextBatchID() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.nextBatchID
}

// NextProjectID tương tự NextBatchID cho greenfield project.
func (l *Ledger) NextProjectID() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.nextProjectID
}

// AllBatchIDs trả về toàn bộ id đã cấp theo thứ tự cấp.
func (l *Ledger) AllBatchIDs() []uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]uint64, len(l.allBatchIDs))
	copy(out, l.allBatchIDs)
	return out
}

// ActiveBatchIDs trả về id các batch còn inventory.
func (l *Ledger) ActiveBatchIDs() []uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]uint64, 0, len(l.activeBatches))
	for _, id := range l.allBatchIDs {
		if _, ok := l.activeBatches[id]; ok {
			out = append(out, id)
		}
	}
	return out
}

func (l *Ledger) authorize(principal, operation string) error {
	if !l.guard.HasCapability(principal, operation) {
		return authorizationErr(operation, principal)
	}
	return nil
}

// emit gọi notifier nếu có. Chỉ được gọi sau khi mọi mutation của
// operation đã hoàn tất.
func (l *Ledger) emit(event Event) {
	if l.notifier != nil {
		l.notifier.Notify(event)
	}
}
