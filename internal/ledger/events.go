// internal/ledger/events.go
package ledger

import "time"

// Event là sự kiện phát ra sau mỗi mutation đã commit. Event chỉ chứa
// id, các con số thay đổi và một metadata reference (content-addressed);
// nội dung metadata do indexer bên ngoài quản lý.
type Event interface {
	Name() string
}

// Notifier nhận event sau khi commit. Không bao giờ được gọi cho một
// operation bị abort; mỗi mutation thành công phát đúng một event.
type Notifier interface {
	Notify(event Event)
}

// Notifiers fan-out một event tới nhiều sink.
type Notifiers []Notifier

func (ns Notifiers) Notify(event Event) {
	for _, n := range ns {
		n.Notify(event)
	}
}

type BatchCreated struct {
	BatchID         uint64 `json:"batchID"`
	Quantity        int64  `json:"quantity"`
	CollateralValue int64  `json:"collateralValue"`
	MetadataRef     string `json:"metadataRef"`
}

func (BatchCreated) Name() string { return "BatchCreated" }

type BeansRoasted struct {
	SourceBatchID   uint64 `json:"sourceBatchID"`
	RoastedBatchID  uint64 `json:"roastedBatchID"`
	InputQuantity   int64  `json:"inputQuantity"`
	OutputQuantity  int64  `json:"outputQuantity"`
	RoastProfileRef string `json:"roastProfileRef"`
}

func (BeansRoasted) Name() string { return "BeansRoasted" }

type ProjectCreated struct {
	ProjectID       uint64    `json:"projectID"`
	PlantingDate    time.Time `json:"plantingDate"`
	MaturityDate    time.Time `json:"maturityDate"`
	ProjectedYield  int64     `json:"projectedYield"`
	CollateralValue int64     `json:"collateralValue"`
	MetadataRef     string    `json:"metadataRef"`
}

func (ProjectCreated) Name() string { return "ProjectCreated" }

type StageAdvanced struct {
	ProjectID     uint64 `json:"projectID"`
	PreviousStage Stage  `json:"previousStage"`
	NewStage      Stage  `json:"newStage"`
	UpdatedYield  int64  `json:"updatedYield"`
	EvidenceRef   string `json:"evidenceRef"`
}

func (StageAdvanced) Name() string { return "StageAdvanced" }
