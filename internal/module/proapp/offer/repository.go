package offer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/culturepass/cp-stock/pkg/errors"
	"github.com/culturepass/cp-stock/pkg/status"
)

type OfferRepository interface {
	FindByID(ctx context.Context, offerID string) (Offer, error)
}

type offerRepository struct {
	baseURL string
	apiKey  string
	logger  *logrus.Logger
	hc      *http.Client
}

func NewOfferRepository(baseURL string, apiKey string, logger *logrus.Logger, hc *http.Client) OfferRepository {
	return &offerRepository{
		baseURL: baseURL,
		apiKey:  apiKey,
		logger:  logger,
		hc:      hc,
	}
}

// FindByID implements OfferRepository.
func (r *offerRepository) FindByID(ctx context.Context, offerID string) (Offer, error) {
	url := fmt.Sprintf("%s/offers/%s", r.baseURL, offerID)

	hr, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return Offer{}, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while getting the offer's properties")
	}

	hr.Header.Add("Accept", "application/json")
	hr.Header.Add("Authorization", fmt.Sprintf("Bearer %s", r.apiKey))

	hresp, err := r.hc.Do(hr)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return Offer{}, errors.New(http.StatusBadGateway, status.BAD_GATEWAY, "an error occurred while getting the offer's properties")
	}

	defer hresp.Body.Close()

	respBody, err := io.ReadAll(hresp.Body)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return Offer{}, errors.New(http.StatusBadGateway, status.BAD_GATEWAY, "an error occurred while getting the offer's properties")
	}

	if hresp.StatusCode == http.StatusNotFound {
		return Offer{}, errors.New(http.StatusNotFound, status.NOT_FOUND, "offer could not be found")
	}

	if hresp.StatusCode < 200 || hresp.StatusCode > 299 {
		err := fmt.Errorf("unexpected catalog response %d: %s", hresp.StatusCode, string(respBody))
		r.logger.WithContext(ctx).WithError(err).Error()
		return Offer{}, errors.New(http.StatusBadGateway, status.BAD_GATEWAY, "an error occurred while getting the offer's properties")
	}

	var o Offer
	if err := json.Unmarshal(respBody, &o); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return Offer{}, errors.New(http.StatusBadGateway, status.BAD_GATEWAY, "an error occurred while getting the offer's properties")
	}

	return o, nil
}
