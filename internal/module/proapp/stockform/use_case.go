package stockform

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"cloud.google.com/go/cloudtasks/apiv2/cloudtaskspb"
	"github.com/sirupsen/logrus"

	"github.com/culturepass/cp-stock/internal/module/proapp/offer"
	"github.com/culturepass/cp-stock/internal/module/proapp/stock"
	"github.com/culturepass/cp-stock/pkg/errors"
	"github.com/culturepass/cp-stock/pkg/gctasks"
	"github.com/culturepass/cp-stock/pkg/pubsub"
	"github.com/culturepass/cp-stock/pkg/status"
)

const expireActivationCodesQueue = "expire-activation-codes"

type StockFormUseCase interface {
	OpenForm(ctx context.Context, offerID string) (FormResponse, error)
	AddRow(ctx context.Context, offerID string) (FormResponse, error)
	UpdateRow(ctx context.Context, offerID string, rowID string, req UpdateRowRequest) (FormResponse, error)
	UploadActivationCodes(ctx context.Context, offerID string, rowID string, req UploadActivationCodesRequest) (FormResponse, error)
	ConfirmActivationCodes(ctx context.Context, offerID string, rowID string, req ConfirmActivationCodesRequest) (FormResponse, error)
	DiscardActivationCodes(ctx context.Context, offerID string, rowID string) (FormResponse, error)
	DeleteRow(ctx context.Context, offerID string, rowID string) (FormResponse, error)
	Submit(ctx context.Context, offerID string) (FormResponse, error)
	OnActivationCodesExpire(ctx context.Context, e ActivationCodesExpireEvent) error
}

// formSession holds the in-flight form state of one offer. The mutex
// serializes every mutation so two submits, or a submit and a delete, on the
// same offer can never interleave.
type formSession struct {
	mu         sync.Mutex
	collection *Collection
	formErrors []string
}

type stockFormUseCase struct {
	logger          *logrus.Logger
	timeout         time.Duration
	baseURL         string
	offerRepository offer.OfferRepository
	stockRepository stock.StockRepository
	publisher       pubsub.Publisher
	cloudTask       gctasks.Client
	now             func() time.Time

	sessionsMu sync.Mutex
	sessions   map[string]*formSession
}

type StockFormUseCaseProperty struct {
	Logger          *logrus.Logger
	Timeout         time.Duration
	BaseURL         string
	OfferRepository offer.OfferRepository
	StockRepository stock.StockRepository
	Publisher       pubsub.Publisher
	CloudTask       gctasks.Client
	Now             func() time.Time
}

func NewStockFormUseCase(props StockFormUseCaseProperty) StockFormUseCase {
	now := props.Now
	if now == nil {
		now = time.Now
	}

	return &stockFormUseCase{
		logger:          props.Logger,
		timeout:         props.Timeout,
		baseURL:         props.BaseURL,
		offerRepository: props.OfferRepository,
		stockRepository: props.StockRepository,
		publisher:       props.Publisher,
		cloudTask:       props.CloudTask,
		now:             now,
		sessions:        map[string]*formSession{},
	}
}

func (u *stockFormUseCase) session(offerID string) *formSession {
	u.sessionsMu.Lock()
	defer u.sessionsMu.Unlock()

	s, ok := u.sessions[offerID]
	if !ok {
		s = &formSession{}
		u.sessions[offerID] = s
	}

	return s
}

func (u *stockFormUseCase) render(s *formSession) FormResponse {
	return buildFormResponse(s.collection, u.now(), s.formErrors)
}

// OpenForm implements StockFormUseCase.
func (u *stockFormUseCase) OpenForm(ctx context.Context, offerID string) (FormResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	s := u.session(offerID)
	s.mu.Lock()
	defer s.mu.Unlock()

	o, err := u.offerRepository.FindByID(ctx, offerID)
	if err != nil {
		return FormResponse{}, err
	}

	stocks, err := u.stockRepository.FindManyByOfferID(ctx, offerID)
	if err != nil {
		return FormResponse{}, err
	}

	if s.collection == nil {
		s.collection = NewCollection(o)
	} else {
		s.collection.UpdateOffer(o)
	}
	s.collection.Hydrate(stocks)

	return u.render(s), nil
}

// AddRow implements StockFormUseCase.
func (u *stockFormUseCase) AddRow(ctx context.Context, offerID string) (FormResponse, error) {
	s, err := u.openedSession(offerID)
	if err != nil {
		return FormResponse{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.collection.InsertNewRow(); err != nil {
		return u.render(s), err
	}

	return u.render(s), nil
}

// UpdateRow implements StockFormUseCase.
func (u *stockFormUseCase) UpdateRow(ctx context.Context, offerID string, rowID string, req UpdateRowRequest) (FormResponse, error) {
	s, err := u.openedSession(offerID)
	if err != nil {
		return FormResponse{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.collection.Row(rowID)
	if !ok {
		return u.render(s), errors.New(http.StatusNotFound, status.NOT_FOUND, "stock row not found")
	}

	o := s.collection.Offer()
	updates := map[Field]*string{
		FieldPrice:            req.Price,
		FieldQuantity:         req.Quantity,
		FieldBeginningDate:    req.BeginningDate,
		FieldBeginningHour:    req.BeginningHour,
		FieldBookingLimitDate: req.BookingLimitDate,
	}
	for _, field := range allFields {
		value := updates[field]
		if value == nil {
			continue
		}
		if err := r.SetField(o, field, *value); err != nil {
			return u.render(s), err
		}
	}

	r.ClearFieldErrors()
	for field, message := range r.Validate(o) {
		r.ApplyFieldError(field, message)
	}

	return u.render(s), nil
}

// UploadActivationCodes implements StockFormUseCase.
func (u *stockFormUseCase) UploadActivationCodes(ctx context.Context, offerID string, rowID string, req UploadActivationCodesRequest) (FormResponse, error) {
	s, err := u.openedSession(offerID)
	if err != nil {
		return FormResponse{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.collection.Row(rowID)
	if !ok {
		return u.render(s), errors.New(http.StatusNotFound, status.NOT_FOUND, "stock row not found")
	}

	preview, err := IngestActivationCodes(req.FileContents)
	if err != nil {
		return u.render(s), err
	}

	if err := r.StageActivationCodes(s.collection.Offer(), preview); err != nil {
		return u.render(s), err
	}

	return u.render(s), nil
}

// ConfirmActivationCodes implements StockFormUseCase.
func (u *stockFormUseCase) ConfirmActivationCodes(ctx context.Context, offerID string, rowID string, req ConfirmActivationCodesRequest) (FormResponse, error) {
	s, err := u.openedSession(offerID)
	if err != nil {
		return FormResponse{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.collection.Row(rowID)
	if !ok {
		return u.render(s), errors.New(http.StatusNotFound, status.NOT_FOUND, "stock row not found")
	}

	if err := r.ConfirmActivationCodes(req.ExpirationDate); err != nil {
		return u.render(s), err
	}

	return u.render(s), nil
}

// DiscardActivationCodes implements StockFormUseCase.
func (u *stockFormUseCase) DiscardActivationCodes(ctx context.Context, offerID string, rowID string) (FormResponse, error) {
	s, err := u.openedSession(offerID)
	if err != nil {
		return FormResponse{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.collection.Row(rowID)
	if !ok {
		return u.render(s), errors.New(http.StatusNotFound, status.NOT_FOUND, "stock row not found")
	}

	r.DiscardActivationCodes()

	return u.render(s), nil
}

// DeleteRow implements StockFormUseCase.
func (u *stockFormUseCase) DeleteRow(ctx context.Context, offerID string, rowID string) (FormResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	s, err := u.openedSession(offerID)
	if err != nil {
		return FormResponse{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.collection.Row(rowID)
	if !ok {
		return u.render(s), errors.New(http.StatusNotFound, status.NOT_FOUND, "stock row not found")
	}

	deletable, reason := r.Deletability(s.collection.Offer(), u.now())
	if !deletable {
		return u.render(s), errors.New(http.StatusForbidden, status.FORBIDDEN, reason)
	}

	if r.IsNew() {
		s.collection.RemoveRow(rowID)
		return u.render(s), nil
	}

	if err := u.stockRepository.Delete(ctx, rowID); err != nil {
		return u.render(s), err
	}

	s.collection.RemoveRow(rowID)

	stocks, err := u.stockRepository.FindManyByOfferID(ctx, offerID)
	if err == nil {
		s.collection.Hydrate(stocks)
	} else {
		u.logger.WithContext(ctx).WithError(err).Error("refreshing stocks after a delete")
	}

	eventBuff, _ := json.Marshal(StockDeletedEvent{
		OfferID:   offerID,
		StockID:   rowID,
		DeletedAt: u.now(),
	})
	u.publisher.Publish(ctx, TopicStockDeleted, offerID, nil, eventBuff)

	return u.render(s), nil
}

// Submit implements StockFormUseCase.
func (u *stockFormUseCase) Submit(ctx context.Context, offerID string) (FormResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	s, err := u.openedSession(offerID)
	if err != nil {
		return FormResponse{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.formErrors = nil
	for _, r := range s.collection.Rows() {
		r.ClearFieldErrors()
	}

	if rowErrors := s.collection.Validate(); len(rowErrors) > 0 {
		for rowID, fields := range rowErrors {
			r, ok := s.collection.Row(rowID)
			if !ok {
				continue
			}
			for field, message := range fields {
				r.ApplyFieldError(field, message)
			}
		}
		return u.render(s), errors.New(http.StatusBadRequest, status.BAD_REQUEST, MsgFormHasErrors)
	}

	entries, err := s.collection.SubmissionEntries()
	if err != nil {
		return u.render(s), err
	}

	if len(entries) == 0 {
		return u.render(s), nil
	}

	payloads := make([]stock.Payload, 0, len(entries))
	for _, entry := range entries {
		payloads = append(payloads, entry.Payload)
	}

	saved, err := u.stockRepository.BulkUpsert(ctx, offerID, payloads)
	if err != nil {
		var fieldErr *stock.FieldValidationError
		if stderrors.As(err, &fieldErr) {
			s.formErrors = s.collection.ApplyFieldErrors(entries, fieldErr.Fields)
			return u.render(s), errors.New(http.StatusBadRequest, status.BAD_REQUEST, MsgFormHasErrors)
		}
		return u.render(s), err
	}

	stocks, err := u.stockRepository.FindManyByOfferID(ctx, offerID)
	if err != nil {
		u.logger.WithContext(ctx).WithError(err).Error("refreshing stocks after a submission")
		stocks = saved
	}
	s.collection.Reset(stocks)

	stockIDs := make([]string, 0, len(saved))
	for _, st := range saved {
		stockIDs = append(stockIDs, st.ID)
	}

	eventBuff, _ := json.Marshal(StockBatchSavedEvent{
		OfferID:  offerID,
		StockIDs: stockIDs,
		SavedAt:  u.now(),
	})
	u.publisher.Publish(ctx, TopicStockBatchSaved, offerID, nil, eventBuff)

	u.scheduleActivationCodesExpiry(ctx, offerID, saved)

	return u.render(s), nil
}

func (u *stockFormUseCase) scheduleActivationCodesExpiry(ctx context.Context, offerID string, stocks []stock.Stock) {
	for _, st := range stocks {
		if !st.HasActivationCodes() || st.ActivationCodesExpirationDatetime == nil {
			continue
		}

		taskBuff, _ := json.Marshal(ActivationCodesExpireEvent{
			OfferID:   offerID,
			StockID:   st.ID,
			ExpiresAt: *st.ActivationCodesExpirationDatetime,
		})
		tasksRequest := gctasks.Request{
			URL:    fmt.Sprintf("%s/cp-stock/v1/proapp/stocks/on-activation-codes-expire", u.baseURL),
			Method: cloudtaskspb.HttpMethod_POST,
			Body:   taskBuff,
		}
		if err := u.cloudTask.DeferCreateTaskAt(ctx, expireActivationCodesQueue, tasksRequest, *st.ActivationCodesExpirationDatetime); err != nil {
			u.logger.WithContext(ctx).WithError(err).
				WithField("stock_id", st.ID).
				Error("scheduling the activation codes expiry task")
		}
	}
}

// OnActivationCodesExpire implements StockFormUseCase.
func (u *stockFormUseCase) OnActivationCodesExpire(ctx context.Context, e ActivationCodesExpireEvent) error {
	ctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	eventBuff, _ := json.Marshal(e)
	u.publisher.Publish(ctx, TopicStockActivationCodesExpired, e.OfferID, nil, eventBuff)

	return nil
}

// openedSession returns the session of an offer whose form has already been
// opened. A session only ever gains a collection, so the check does not need
// to hold the lock across the caller's use.
func (u *stockFormUseCase) openedSession(offerID string) (*formSession, error) {
	u.sessionsMu.Lock()
	s, ok := u.sessions[offerID]
	u.sessionsMu.Unlock()

	if !ok {
		return nil, errors.New(http.StatusNotFound, status.NOT_FOUND, "no open stock form for this offer")
	}

	s.mu.Lock()
	opened := s.collection != nil
	s.mu.Unlock()

	if !opened {
		return nil, errors.New(http.StatusNotFound, status.NOT_FOUND, "no open stock form for this offer")
	}

	return s, nil
}
