package stock

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/culturepass/cp-stock/pkg/errors"
	"github.com/culturepass/cp-stock/pkg/status"
)

type StockRepository interface {
	FindManyByOfferID(ctx context.Context, offerID string) ([]Stock, error)
	BulkUpsert(ctx context.Context, offerID string, payloads []Payload) ([]Stock, error)
	Delete(ctx context.Context, stockID string) error
}

type stockRepository struct {
	baseURL string
	apiKey  string
	logger  *logrus.Logger
	hc      *http.Client
}

func NewStockRepository(baseURL string, apiKey string, logger *logrus.Logger, hc *http.Client) StockRepository {
	return &stockRepository{
		baseURL: baseURL,
		apiKey:  apiKey,
		logger:  logger,
		hc:      hc,
	}
}

type stocksEnvelope struct {
	Stocks []Stock `json:"stocks"`
}

type fieldErrorsEnvelope struct {
	Errors map[string][]string `json:"errors"`
}

func (r *stockRepository) do(ctx context.Context, method, url string, body []byte) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewBuffer(body)
	}

	hr, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return 0, nil, err
	}

	hr.Header.Add("Content-Type", "application/json")
	hr.Header.Add("Accept", "application/json")
	hr.Header.Add("Authorization", fmt.Sprintf("Bearer %s", r.apiKey))

	hresp, err := r.hc.Do(hr)
	if err != nil {
		return 0, nil, err
	}

	defer hresp.Body.Close()

	respBody, err := io.ReadAll(hresp.Body)
	if err != nil {
		return 0, nil, err
	}

	return hresp.StatusCode, respBody, nil
}

// FindManyByOfferID implements StockRepository.
func (r *stockRepository) FindManyByOfferID(ctx context.Context, offerID string) ([]Stock, error) {
	url := fmt.Sprintf("%s/offers/%s/stocks", r.baseURL, offerID)

	statusCode, respBody, err := r.do(ctx, http.MethodGet, url, nil)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return nil, errors.New(http.StatusBadGateway, status.BAD_GATEWAY, "an error occurred while getting the offer's stocks")
	}

	if statusCode < 200 || statusCode > 299 {
		err := fmt.Errorf("unexpected catalog response %d: %s", statusCode, string(respBody))
		r.logger.WithContext(ctx).WithError(err).Error()
		return nil, errors.New(http.StatusBadGateway, status.BAD_GATEWAY, "an error occurred while getting the offer's stocks")
	}

	var envelope stocksEnvelope
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return nil, errors.New(http.StatusBadGateway, status.BAD_GATEWAY, "an error occurred while getting the offer's stocks")
	}

	return envelope.Stocks, nil
}

// BulkUpsert implements StockRepository. A 400 with a field-keyed error map
// is returned as *FieldValidationError so the caller can attach each error to
// the offending row.
func (r *stockRepository) BulkUpsert(ctx context.Context, offerID string, payloads []Payload) ([]Stock, error) {
	url := fmt.Sprintf("%s/offers/%s/stocks/bulk", r.baseURL, offerID)

	reqBody, _ := json.Marshal(map[string]interface{}{"stocks": payloads})

	statusCode, respBody, err := r.do(ctx, http.MethodPost, url, reqBody)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return nil, errors.New(http.StatusBadGateway, status.BAD_GATEWAY, "an error occurred while saving the offer's stocks")
	}

	if statusCode == http.StatusBadRequest {
		var envelope fieldErrorsEnvelope
		if err := json.Unmarshal(respBody, &envelope); err == nil && len(envelope.Errors) > 0 {
			fields := make(map[string]string, len(envelope.Errors))
			for field, messages := range envelope.Errors {
				if len(messages) > 0 {
					fields[field] = messages[0]
				}
			}
			return nil, &FieldValidationError{Fields: fields}
		}
	}

	if statusCode < 200 || statusCode > 299 {
		err := fmt.Errorf("unexpected catalog response %d: %s", statusCode, string(respBody))
		r.logger.WithContext(ctx).WithError(err).Error()
		return nil, errors.New(http.StatusBadGateway, status.BAD_GATEWAY, "an error occurred while saving the offer's stocks")
	}

	var envelope stocksEnvelope
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return nil, errors.New(http.StatusBadGateway, status.BAD_GATEWAY, "an error occurred while saving the offer's stocks")
	}

	return envelope.Stocks, nil
}

// Delete implements StockRepository.
func (r *stockRepository) Delete(ctx context.Context, stockID string) error {
	url := fmt.Sprintf("%s/stocks/%s", r.baseURL, stockID)

	statusCode, respBody, err := r.do(ctx, http.MethodDelete, url, nil)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return errors.New(http.StatusBadGateway, status.BAD_GATEWAY, "an error occurred while deleting the stock")
	}

	if statusCode < 200 || statusCode > 299 {
		err := fmt.Errorf("unexpected catalog response %d: %s", statusCode, string(respBody))
		r.logger.WithContext(ctx).WithError(err).Error()
		return errors.New(http.StatusBadGateway, status.BAD_GATEWAY, "an error occurred while deleting the stock")
	}

	return nil
}
