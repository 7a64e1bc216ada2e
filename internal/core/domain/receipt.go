package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Receipt is one uploaded proof of bank deposit. Receipts are immutable once
// created; corrections happen by soft-deleting and re-uploading.
type Receipt struct {
	ReceiptID   string `json:"receiptID"`
	OperationID string `json:"operationID"`
	Filename    string `json:"filename"`
	FileRef     string `json:"fileRef"` // storage path of the raw file

	// Fields extracted by OCR. Amount is zero when extraction found none.
	Amount             decimal.Decimal `json:"amount"`
	DepositDate        *time.Time      `json:"depositDate,omitempty"`
	IssuingBank        string          `json:"issuingBank,omitempty"`
	DestinationAccount string          `json:"destinationAccount,omitempty"` // CLABE the funds went to
	BeneficiaryName    string          `json:"beneficiaryName,omitempty"`
	TrackingKey        string          `json:"trackingKey,omitempty"` // clave de rastreo
	OriginAccount      string          `json:"originAccount,omitempty"`

	IsValid           bool   `json:"isValid"`
	ValidationMessage string `json:"validationMessage"`

	UploadedAt time.Time  `json:"uploadedAt"`
	UploadedBy string     `json:"uploadedBy"`
	DeletedAt  *time.Time `json:"deletedAt,omitempty"`
	DeletedBy  string     `json:"deletedBy,omitempty"`
}

// ExtractedFields is the structured result of OCR extraction over one file.
// The extractor is an external capability; the core only consumes this.
type ExtractedFields struct {
	Amount             decimal.Decimal
	DepositDate        *time.Time
	IssuingBank        string
	DestinationAccount string
	BeneficiaryName    string
	TrackingKey        string
	OriginAccount      string
}
