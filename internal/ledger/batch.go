// internal/ledger/batch.go
package ledger

import "time"

// TokenType phân biệt cà phê xanh và cà phê đã rang.
type TokenType string

const (
	TokenGreen   TokenType = "GREEN"
	TokenRoasted TokenType = "ROASTED"
)

// Batch là một ledger entry đại diện cho một lượng cà phê ở một công đoạn
// của chuỗi giá trị. Số lượng tính bằng kg; giá và collateral tính bằng
// đơn vị nhỏ nhất của tiền tệ (ví dụ: VND, cent).
type Batch struct {
	ID              uint64    `json:"batchID"`
	TokenType       TokenType `json:"tokenType"`
	ProductionDate  time.Time `json:"productionDate"`
	ExpiryDate      time.Time `json:"expiryDate"`
	CurrentQuantity int64     `json:"currentQuantity"`
	PricePerUnit    int64     `json:"pricePerUnit"`
	CollateralValue int64     `json:"collateralValue"`
	Verified        bool      `json:"verified"`
	MetadataRef     string    `json:"metadataRef"`
	// SourceBatchID khác 0 khi batch này được tạo từ một roasting
	// conversion; trỏ về batch GREEN gốc và không bao giờ thay đổi.
	SourceBatchID uint64 `json:"sourceBatchID,omitempty"`
}

// CreateBatch đăng ký một batch GREEN mới và mint toàn bộ quantity vào
// custody của registry. Trả về id vừa cấp.
func (l *Ledger) CreateBatch(principal string, productionDate, expiryDate time.Time, quantity, pricePerUnit, collateralValue int64, metadataRef string) (uint64, error) {
	const op = "CreateBatch"

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.authorize(principal, CapCreateBatch); err != nil {
		return 0, err
	}
	if !productionDate.Before(expiryDate) {
		return 0, validationErr(op, "productionDate must be before expiryDate")
	}
	if quantity <= 0 {
		return 0, validationErr(op, "quantity must be positive, got %d", quantity)
	}
	if pricePerUnit <= 0 {
		return 0, validationErr(op, "pricePerUnit must be positive, got %d", pricePerUnit)
	}
	if collateralValue < 0 {
		return 0, validationErr(op, "collateralValue must not be negative, got %d", collateralValue)
	}
	if metadataRef == "" {
		return 0, validationErr(op, "metadataRef must not be empty")
	}

	// Commit
	id := l.nextBatchID
	l.nextBatchID++

	l.batches[id] = &Batch{
		ID:              id,
		TokenType:       TokenGreen,
		ProductionDate:  productionDate,
		ExpiryDate:      expiryDate,
		CurrentQuantity: quantity,
		PricePerUnit:    pricePerUnit,
		CollateralValue: collateralValue,
		MetadataRef:     metadataRef,
	}
	l.allBatchIDs = append(l.allBatchIDs, id)
	l.activeBatches[id] = struct{}{}
	l.custody[id] = map[string]int64{RegistryHolder: quantity}

	l.emit(BatchCreated{
		BatchID:         id,
		Quantity:        quantity,
		CollateralValue: collateralValue,
		MetadataRef:     metadataRef,
	})
	return id, nil
}

// GetBatch trả về bản sao của batch. Batch đã tiêu thụ hết
// (currentQuantity = 0) vẫn truy vấn được để phục vụ audit.
func (l *Ledger) GetBatch(id uint64) (Batch, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	b, ok := l.batches[id]
	if !ok {
		return Batch{}, notFoundErr("GetBatch", "batch %d does not exist", id)
	}
	return *b, nil
}

// BatchExists là pure lookup: true cho mọi id đã từng được cấp.
func (l *Ledger) BatchExists(id uint64) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return id >= 1 && id < l.nextBatchID
}

// CustodyOf trả về bảng holder -> quantity của một batch.
func (l *Ledger) CustodyOf(id uint64) (map[string]int64, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	holders, ok := l.custody[id]
	if !ok {
		return nil, notFoundErr("CustodyOf", "batch %d does not exist", id)
	}
	out := make(map[string]int64, len(holders))
	for holder, qty := range holders {
		out[holder] = qty
	}
	return out, nil
}
