package results

import (
	"time"

	"github.com/google/uuid"
)

// Result aggregates the tracking state of one paid order.
type Result struct {
	ID        uuid.UUID `db:"id" json:"id"`
	OrderID   uuid.UUID `db:"order_id" json:"order_id"`
	Status    string    `db:"status" json:"status"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// ResultDetail is the tracking unit: one atomic exam under one order line.
type ResultDetail struct {
	ID            uuid.UUID `db:"id" json:"id"`
	ResultID      uuid.UUID `db:"result_id" json:"result_id"`
	OrderDetailID uuid.UUID `db:"order_detail_id" json:"order_detail_id"`
	ExamID        uuid.UUID `db:"exam_id" json:"exam_id"`
	Status        string    `db:"status" json:"status"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// Summary is a result row joined with its order and patient for listings.
type Summary struct {
	Result
	OrderCode       string `db:"order_code" json:"order_code"`
	PatientName     string `db:"patient_name" json:"patient_name"`
	PatientDocument string `db:"patient_document" json:"patient_document"`
}

// ListFilters narrows the result listing.
type ListFilters struct {
	StatusGroup     string
	PatientDocument string
	PatientName     string
	OrderCode       string
}
