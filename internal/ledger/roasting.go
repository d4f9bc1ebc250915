// internal/ledger/roasting.go
package ledger

import "time"

// RoastRequest mô tả một yêu cầu chuyển đổi GREEN -> ROASTED.
type RoastRequest struct {
	SourceBatchID  uint64
	InputQuantity  int64 // kg lấy ra từ batch nguồn
	OutputQuantity int64 // kg thành phẩm kỳ vọng, bắt buộc < InputQuantity
	// RoasterIdentity nhận custody của batch thành phẩm.
	RoasterIdentity string
	// RoastProfileRef là metadata reference của hồ sơ rang.
	RoastProfileRef string
	// RoastedAt + ShelfLife quyết định expiryDate của batch thành phẩm.
	RoastedAt time.Time
	ShelfLife time.Duration
}

// ConvertToRoasted thực hiện chuyển đổi một chiều từ batch GREEN sang một
// batch ROASTED mới. Batch nguồn không bị sửa tại chỗ mà chỉ bị trừ
// quantity, nên lineage từ nguyên liệu tới thành phẩm luôn truy vết được.
//
// Toàn bộ precondition được kiểm tra trước khi chạm vào state; một lỗi ở
// bất kỳ bước nào đồng nghĩa với không có thay đổi nào cả.
func (l *Ledger) ConvertToRoasted(principal string, req RoastRequest) (uint64, error) {
	const op = "ConvertToRoasted"

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.authorize(principal, CapRoastBatch); err != nil {
		return 0, err
	}
	if req.InputQuantity <= 0 {
		return 0, validationErr(op, "inputQuantity must be positive, got %d", req.InputQuantity)
	}
	if req.OutputQuantity <= 0 {
		return 0, validationErr(op, "expectedOutputQuantity must be positive, got %d", req.OutputQuantity)
	}
	if req.RoasterIdentity == "" {
		return 0, validationErr(op, "roasterIdentity must not be empty")
	}
	if req.RoastProfileRef == "" {
		return 0, validationErr(op, "roastProfileRef must not be empty")
	}
	if req.RoastedAt.IsZero() || req.ShelfLife <= 0 {
		return 0, validationErr(op, "roast timestamp and shelf life are required")
	}

	source, ok := l.batches[req.SourceBatchID]
	if !ok {
		return 0, notFoundErr(op, "source batch %d does not exist", req.SourceBatchID)
	}
	if source.TokenType != TokenGreen {
		return 0, stateErr(op, "source batch %d is %s, only GREEN batches can be roasted", source.ID, source.TokenType)
	}
	if source.CurrentQuantity < req.InputQuantity {
		return 0, stateErr(op, "source batch %d holds %d kg, requested %d", source.ID, source.CurrentQuantity, req.InputQuantity)
	}
	// Rang luôn mất khối lượng: output phải nhỏ hơn input một cách
	// nghiêm ngặt, không có roast "không hao" hay tăng cân.
	if req.OutputQuantity >= req.InputQuantity {
		return 0, stateErr(op, "outputQuantity %d must be strictly less than inputQuantity %d", req.OutputQuantity, req.InputQuantity)
	}

	// Commit. Collateral của batch mới tỷ lệ thuận với phần output,
	// làm tròn xuống.
	roastedCollateral := source.CollateralValue * req.OutputQuantity / req.InputQuantity

	source.CurrentQuantity -= req.InputQuantity
	if source.CurrentQuantity == 0 {
		delete(l.activeBatches, source.ID)
	}
	// Burn phần input khỏi custody của registry.
	l.custody[source.ID][RegistryHolder] -= req.InputQuantity
	if l.custody[source.ID][RegistryHolder] == 0 {
		delete(l.custody[source.ID], RegistryHolder)
	}

	id := l.nextBatchID
	l.nextBatchID++

	l.batches[id] = &Batch{
		ID:              id,
		TokenType:       TokenRoasted,
		ProductionDate:  source.ProductionDate,
		ExpiryDate:      req.RoastedAt.Add(req.ShelfLife),
		CurrentQuantity: req.OutputQuantity,
		PricePerUnit:    source.PricePerUnit,
		CollateralValue: roastedCollateral,
		MetadataRef:     req.RoastProfileRef,
		SourceBatchID:   source.ID,
	}
	l.allBatchIDs = append(l.allBatchIDs, id)
	l.activeBatches[id] = struct{}{}
	l.custody[id] = map[string]int64{req.RoasterIdentity: req.OutputQuantity}

	l.emit(BeansRoasted{
		SourceBatchID:   source.ID,
		RoastedBatchID:  id,
		InputQuantity:   req.InputQuantity,
		OutputQuantity:  req.OutputQuantity,
		RoastProfileRef: req.RoastProfileRef,
	})
	return id, nil
}
