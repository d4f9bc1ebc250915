// internal/ledger/greenfield.go
package ledger

import "time"

// Stage là giai đoạn đầu tư của một greenfield project. Project chỉ đi
// tiến, không bao giờ lùi, và dừng hẳn ở StageFullProduction.
type Stage int

const (
	StagePlanning Stage = iota
	StageLandPreparation
	StagePlanting
	StageGrowth
	StageInitialProduction
	StageFullProduction
)

func (s Stage) String() string {
	switch s {
	case StagePlanning:
		return "Planning"
	case StageLandPreparation:
		return "LandPreparation"
	case StagePlanting:
		return "Planting"
	case StageGrowth:
		return "Growth"
	case StageInitialProduction:
		return "InitialProduction"
	case StageFullProduction:
		return "FullProduction"
	}
	return "Unknown"
}

// Project đại diện cho một dự án trồng cà phê chưa có inventory thu
// hoạch được. ProjectedYield tính bằng kg/năm.
type Project struct {
	ID              uint64    `json:"projectID"`
	MetadataRef     string    `json:"metadataRef"`
	PlantingDate    time.Time `json:"plantingDate"`
	MaturityDate    time.Time `json:"maturityDate"`
	ProjectedYield  int64     `json:"projectedYield"`
	CollateralValue int64     `json:"collateralValue"`
	Stage           Stage     `json:"investmentStage"`
}

// CreateProject đăng ký một greenfield project mới ở StagePlanning.
func (l *Ledger) CreateProject(principal, metadataRef string, plantingDate, maturityDate time.Time, projectedYield, collateralValue int64) (uint64, error) {
	const op = "CreateProject"

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.authorize(principal, CapCreateProject); err != nil {
		return 0, err
	}
	if !plantingDate.Before(maturityDate) {
		return 0, validationErr(op, "plantingDate must be before maturityDate")
	}
	if projectedYield <= 0 {
		return 0, validationErr(op, "projectedYield must be positive, got %d", projectedYield)
	}
	if collateralValue < 0 {
		return 0, validationErr(op, "collateralValue must not be negative, got %d", collateralValue)
	}
	if metadataRef == "" {
		return 0, validationErr(op, "metadataRef must not be empty")
	}

	id := l.nextProjectID
	l.nextProjectID++

	l.projects[id] = &Project{
		ID:              id,
		MetadataRef:     metadataRef,
		PlantingDate:    plantingDate,
		MaturityDate:    maturityDate,
		ProjectedYield:  projectedYield,
		CollateralValue: collateralValue,
		Stage:           StagePlanning,
	}

	l.emit(ProjectCreated{
		ProjectID:       id,
		PlantingDate:    plantingDate,
		MaturityDate:    maturityDate,
		ProjectedYield:  projectedYield,
		CollateralValue: collateralValue,
		MetadataRef:     metadataRef,
	})
	return id, nil
}

// AdvanceStage đưa project sang một stage cao hơn, kèm yield cập nhật và
// một evidence reference (nội dung evidence do collaborator bên ngoài
// lưu và thẩm định).
func (l *Ledger) AdvanceStage(principal string, projectID uint64, newStage Stage, updatedYield int64, evidenceRef string) error {
	const op = "AdvanceStage"

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.authorize(principal, CapAdvanceProject); err != nil {
		return err
	}
	if updatedYield <= 0 {
		return validationErr(op, "updatedYield must be positive, got %d", updatedYield)
	}
	if evidenceRef == "" {
		return validationErr(op, "evidenceRef must not be empty")
	}

	p, ok := l.projects[projectID]
	if !ok {
		return notFoundErr(op, "project %d does not exist", projectID)
	}
	if newStage > StageFullProduction {
		return stateErr(op, "stage %d is out of range, maximum is %d (%s)", newStage, StageFullProduction, StageFullProduction)
	}
	if newStage <= p.Stage {
		return stateErr(op, "project %d is at stage %d (%s), cannot move to %d", p.ID, p.Stage, p.Stage, newStage)
	}

	previous := p.Stage
	p.Stage = newStage
	p.ProjectedYield = updatedYield

	l.emit(StageAdvanced{
		ProjectID:     p.ID,
		PreviousStage: previous,
		NewStage:      newStage,
		UpdatedYield:  updatedYield,
		EvidenceRef:   evidenceRef,
	})
	return nil
}

// GetProject trả về bản sao của project.
func (l *Ledger) GetProject(id uint64) (Project, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	p, ok := l.projects[id]
	if !ok {
		return Project{}, notFoundErr("GetProject", "project %d does not exist", id)
	}
	return *p, nil
}

// ProjectExists là pure lookup, đối xứng với BatchExists.
func (l *Ledger) ProjectExists(id uint64) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return id >= 1 && id < l.nextProjectID
}

// ProjectBatchView là hình chiếu read-only của một project dưới dạng
// batch, cho các consumer chỉ hiểu batch (ví dụ phía quản lý collateral).
// Không có record batch thứ hai nào được lưu cho project; view này được
// dựng lại từ chính record project mỗi lần gọi.
func (l *Ledger) ProjectBatchView(id uint64) (Batch, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	p, ok := l.projects[id]
	if !ok {
		return Batch{}, notFoundErr("ProjectBatchView", "project %d does not exist", id)
	}
	return Batch{
		ID:              p.ID,
		TokenType:       TokenGreen,
		ProductionDate:  p.PlantingDate,
		ExpiryDate:      p.MaturityDate,
		CurrentQuantity: 0, // chưa có inventory thật cho tới khi vào production
		PricePerUnit:    1,
		CollateralValue: p.CollateralValue,
		MetadataRef:     p.MetadataRef,
	}, nil
}
