// Package ocr calls the external receipt-extraction service over HTTP.
package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker"

	"github.com/mbco-platform/netcash-backend/internal/core/domain"
	portssvc "github.com/mbco-platform/netcash-backend/internal/core/ports/services"
)

// extractionResponse mirrors the JSON contract of the extraction service.
type extractionResponse struct {
	Amount             string `json:"monto"`
	DepositDate        string `json:"fechaDeposito"` // 2006-01-02
	IssuingBank        string `json:"bancoEmisor"`
	DestinationAccount string `json:"cuentaDestino"`
	BeneficiaryName    string `json:"beneficiario"`
	TrackingKey        string `json:"claveRastreo"`
	OriginAccount      string `json:"cuentaOrigen"`
}

// Extractor is an HTTP client for the OCR service with a circuit breaker in
// front, so a degraded extractor fails fast instead of queueing uploads.
type Extractor struct {
	baseURL string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
}

// NewExtractor creates a new Extractor for the given service URL.
func NewExtractor(baseURL string, timeout time.Duration) *Extractor {
	return &Extractor{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "receipt-ocr",
			MaxRequests: 3,
			Interval:    30 * time.Second,
			Timeout:     15 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
				return counts.Requests >= 5 && failureRatio >= 0.6
			},
		}),
	}
}

var _ portssvc.ReceiptExtractor = (*Extractor)(nil)

func (e *Extractor) Extract(ctx context.Context, data []byte, filename string) (domain.ExtractedFields, error) {
	result, err := e.breaker.Execute(func() (interface{}, error) {
		return e.extract(ctx, data, filename)
	})
	if err != nil {
		return domain.ExtractedFields{}, err
	}
	return result.(domain.ExtractedFields), nil
}

func (e *Extractor) extract(ctx context.Context, data []byte, filename string) (domain.ExtractedFields, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("comprobante", filename)
	if err != nil {
		return domain.ExtractedFields{}, err
	}
	if _, err := part.Write(data); err != nil {
		return domain.ExtractedFields{}, err
	}
	if err := writer.Close(); err != nil {
		return domain.ExtractedFields{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/extract", &body)
	if err != nil {
		return domain.ExtractedFields{}, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := e.client.Do(req)
	if err != nil {
		return domain.ExtractedFields{}, fmt.Errorf("ocr request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return domain.ExtractedFields{}, fmt.Errorf("ocr service returned %d: %s", resp.StatusCode, payload)
	}

	var parsed extractionResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return domain.ExtractedFields{}, fmt.Errorf("failed to decode ocr response: %w", err)
	}
	return parsed.toFields()
}

func (r extractionResponse) toFields() (domain.ExtractedFields, error) {
	fields := domain.ExtractedFields{
		IssuingBank:        r.IssuingBank,
		DestinationAccount: r.DestinationAccount,
		BeneficiaryName:    r.BeneficiaryName,
		TrackingKey:        r.TrackingKey,
		OriginAccount:      r.OriginAccount,
	}

	// Missing fields are a validation concern, not a transport error; only
	// a malformed payload fails the extraction itself.
	if r.Amount != "" {
		amount, err := decimal.NewFromString(r.Amount)
		if err != nil {
			return domain.ExtractedFields{}, fmt.Errorf("ocr returned unparseable amount %q: %w", r.Amount, err)
		}
		fields.Amount = amount
	}
	if r.DepositDate != "" {
		date, err := time.Parse("2006-01-02", r.DepositDate)
		if err != nil {
			return domain.ExtractedFields{}, fmt.Errorf("ocr returned unparseable date %q: %w", r.DepositDate, err)
		}
		fields.DepositDate = &date
	}
	return fields, nil
}
