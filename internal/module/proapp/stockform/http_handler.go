package stockform

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"github.com/culturepass/cp-stock/internal/pkg/middleware"
	"github.com/culturepass/cp-stock/pkg/errors"
	publicMiddleware "github.com/culturepass/cp-stock/pkg/middleware"
	"github.com/culturepass/cp-stock/pkg/response"
	"github.com/culturepass/cp-stock/pkg/status"
)

type HTTPHandler struct {
	SessionMiddleware *middleware.ProSession
	Validate          *validator.Validate
	StockFormUseCase  StockFormUseCase
}

func InitHTTPHandler(router *mux.Router, proSession *middleware.ProSession, validate *validator.Validate, stockFormUseCase StockFormUseCase) {
	handler := &HTTPHandler{
		Validate:         validate,
		StockFormUseCase: stockFormUseCase,
	}

	router.HandleFunc("/cp-stock/v1/proapp/offers/{offerId}/stock-form", publicMiddleware.SetRouteChain(handler.OpenForm, proSession.Verify)).Methods(http.MethodGet)
	router.HandleFunc("/cp-stock/v1/proapp/offers/{offerId}/stock-form/rows", publicMiddleware.SetRouteChain(handler.AddRow, proSession.Verify)).Methods(http.MethodPost)
	router.HandleFunc("/cp-stock/v1/proapp/offers/{offerId}/stock-form/rows/{rowId}", publicMiddleware.SetRouteChain(handler.UpdateRow, proSession.Verify)).Methods(http.MethodPatch)
	router.HandleFunc("/cp-stock/v1/proapp/offers/{offerId}/stock-form/rows/{rowId}", publicMiddleware.SetRouteChain(handler.DeleteRow, proSession.Verify)).Methods(http.MethodDelete)
	router.HandleFunc("/cp-stock/v1/proapp/offers/{offerId}/stock-form/rows/{rowId}/activation-codes", publicMiddleware.SetRouteChain(handler.UploadActivationCodes, proSession.Verify)).Methods(http.MethodPost)
	router.HandleFunc("/cp-stock/v1/proapp/offers/{offerId}/stock-form/rows/{rowId}/activation-codes/confirm", publicMiddleware.SetRouteChain(handler.ConfirmActivationCodes, proSession.Verify)).Methods(http.MethodPost)
	router.HandleFunc("/cp-stock/v1/proapp/offers/{offerId}/stock-form/rows/{rowId}/activation-codes", publicMiddleware.SetRouteChain(handler.DiscardActivationCodes, proSession.Verify)).Methods(http.MethodDelete)
	router.HandleFunc("/cp-stock/v1/proapp/offers/{offerId}/stock-form/submit", publicMiddleware.SetRouteChain(handler.Submit, proSession.Verify)).Methods(http.MethodPost)
	router.HandleFunc("/cp-stock/v1/proapp/stocks/on-activation-codes-expire", publicMiddleware.SetRouteChain(handler.OnActivationCodesExpire)).Methods(http.MethodPost)
}

func (handler HTTPHandler) validate(ctx context.Context, payload interface{}) error {
	err := handler.Validate.StructCtx(ctx, payload)
	if err == nil {
		return nil
	}

	errorFields := err.(validator.ValidationErrors)

	errMessages := make([]string, len(errorFields))

	for k, errorField := range errorFields {
		errMessages[k] = fmt.Sprintf("invalid '%s' with value '%v'", errorField.Field(), errorField.Value())
	}

	return fmt.Errorf("%s", strings.Join(errMessages, ", "))
}

// writeForm writes the use case result. Errors carry the rendered form along
// when one exists, so the caller can show field errors in place.
func (handler HTTPHandler) writeForm(w http.ResponseWriter, resp FormResponse, message string, err error) {
	if err != nil {
		ae := errors.Destruct(err)
		envelope := response.RESTEnvelope{
			Status:  ae.Status,
			Message: ae.Message,
		}
		if resp.OfferID != "" {
			envelope.Data = resp
		}
		response.JSON(w, ae.HTTPStatusCode, envelope)

		return
	}

	response.JSON(w, http.StatusOK, response.RESTEnvelope{
		Status:  status.OK,
		Message: message,
		Data:    resp,
	})
}

func (handler HTTPHandler) OpenForm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	offerID := mux.Vars(r)["offerId"]

	resp, err := handler.StockFormUseCase.OpenForm(ctx, offerID)
	handler.writeForm(w, resp, "stock form", err)
}

func (handler HTTPHandler) AddRow(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	offerID := mux.Vars(r)["offerId"]

	resp, err := handler.StockFormUseCase.AddRow(ctx, offerID)
	handler.writeForm(w, resp, "stock row added", err)
}

func (handler HTTPHandler) UpdateRow(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	vars := mux.Vars(r)

	req := UpdateRowRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.JSON(w, http.StatusUnprocessableEntity, response.RESTEnvelope{
			Status:  status.UNPROCESSABLE_ENTITY,
			Message: err.Error(),
		})

		return
	}

	if err := handler.validate(ctx, req); err != nil {
		response.JSON(w, http.StatusBadRequest, response.RESTEnvelope{
			Status:  status.BAD_REQUEST,
			Message: err.Error(),
		})

		return
	}

	resp, err := handler.StockFormUseCase.UpdateRow(ctx, vars["offerId"], vars["rowId"], req)
	handler.writeForm(w, resp, "stock row updated", err)
}

func (handler HTTPHandler) UploadActivationCodes(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	vars := mux.Vars(r)

	req := UploadActivationCodesRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.JSON(w, http.StatusUnprocessableEntity, response.RESTEnvelope{
			Status:  status.UNPROCESSABLE_ENTITY,
			Message: err.Error(),
		})

		return
	}

	if err := handler.validate(ctx, req); err != nil {
		response.JSON(w, http.StatusBadRequest, response.RESTEnvelope{
			Status:  status.BAD_REQUEST,
			Message: err.Error(),
		})

		return
	}

	resp, err := handler.StockFormUseCase.UploadActivationCodes(ctx, vars["offerId"], vars["rowId"], req)
	handler.writeForm(w, resp, "activation codes staged", err)
}

func (handler HTTPHandler) ConfirmActivationCodes(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	vars := mux.Vars(r)

	req := ConfirmActivationCodesRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.JSON(w, http.StatusUnprocessableEntity, response.RESTEnvelope{
			Status:  status.UNPROCESSABLE_ENTITY,
			Message: err.Error(),
		})

		return
	}

	if err := handler.validate(ctx, req); err != nil {
		response.JSON(w, http.StatusBadRequest, response.RESTEnvelope{
			Status:  status.BAD_REQUEST,
			Message: err.Error(),
		})

		return
	}

	resp, err := handler.StockFormUseCase.ConfirmActivationCodes(ctx, vars["offerId"], vars["rowId"], req)
	handler.writeForm(w, resp, "activation codes applied", err)
}

func (handler HTTPHandler) DiscardActivationCodes(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	vars := mux.Vars(r)

	resp, err := handler.StockFormUseCase.DiscardActivationCodes(ctx, vars["offerId"], vars["rowId"])
	handler.writeForm(w, resp, "activation codes discarded", err)
}

func (handler HTTPHandler) DeleteRow(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	vars := mux.Vars(r)

	resp, err := handler.StockFormUseCase.DeleteRow(ctx, vars["offerId"], vars["rowId"])
	handler.writeForm(w, resp, "stock row deleted", err)
}

func (handler HTTPHandler) Submit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	offerID := mux.Vars(r)["offerId"]

	resp, err := handler.StockFormUseCase.Submit(ctx, offerID)
	handler.writeForm(w, resp, "stocks saved", err)
}

func (handler HTTPHandler) OnActivationCodesExpire(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	e := ActivationCodesExpireEvent{}
	if err := json.NewDecoder(r.Body).Decode(&e); err != nil {
		response.JSON(w, http.StatusUnprocessableEntity, response.RESTEnvelope{
			Status:  status.UNPROCESSABLE_ENTITY,
			Message: err.Error(),
		})

		return
	}

	if err := handler.validate(ctx, e); err != nil {
		response.JSON(w, http.StatusBadRequest, response.RESTEnvelope{
			Status:  status.BAD_REQUEST,
			Message: err.Error(),
		})

		return
	}

	if err := handler.StockFormUseCase.OnActivationCodesExpire(ctx, e); err != nil {
		ae := errors.Destruct(err)
		response.JSON(w, ae.HTTPStatusCode, response.RESTEnvelope{
			Status:  ae.Status,
			Message: ae.Message,
		})

		return
	}

	response.JSON(w, http.StatusOK, response.RESTEnvelope{
		Status:  status.OK,
		Message: "activation codes expiry processed",
	})
}
