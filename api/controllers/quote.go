package controllers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cartonq/cartonq-backend/api/responses"
	"github.com/cartonq/cartonq-backend/api/validators"
	"github.com/cartonq/cartonq-backend/internal/pdf"
	"github.com/cartonq/cartonq-backend/internal/quote"
	pkgerrors "github.com/cartonq/cartonq-backend/pkg/errors"
	"github.com/cartonq/cartonq-backend/pkg/logger"
)

// QuoteService runs the quote pipeline for a validated request.
type QuoteService interface {
	Generate(ctx context.Context, req quote.Request) (*quote.Outcome, error)
}

type quoteForm struct {
	FEFCO string `json:"fefco" validate:"required,oneof=0201 0202 0203 0204 0205 0206 0207 0208 0209 0210"`
	XMM   int    `json:"x_mm" validate:"required,gte=20,lte=1200"`
	YMM   int    `json:"y_mm" validate:"required,gte=20,lte=1200"`
	ZMM   int    `json:"z_mm" validate:"required,gte=20,lte=1200"`

	Material string `json:"material" validate:"required,max=100"`
	Print    string `json:"print" validate:"required,oneof=1+0 1+1 2+0 2+1 4+0 4+1"`
	Qty      int    `json:"qty" validate:"required,gte=1,lte=100000"`
	SLAType  string `json:"sla_type" validate:"required,oneof=standard rush strategic"`

	Company     string `json:"company" validate:"required,max=200"`
	ContactName string `json:"contact_name" validate:"required,max=100"`
	City        string `json:"city" validate:"required,max=100"`
	Phone       string `json:"phone" validate:"required,max=20"`
	Email       string `json:"email" validate:"required,email"`
	TGUsername  string `json:"tg_username" validate:"omitempty,max=50"`

	ConsentGiven bool `json:"consent_given"`
}

type quoteResponse struct {
	OK     bool   `json:"ok"`
	PDFURL string `json:"pdf_url"`
	LeadID string `json:"lead_id"`
}

// CreateQuote validates the quote form and runs the pipeline.
func CreateQuote(svc QuoteService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "quote service unavailable"))
			return
		}

		var form quoteForm
		if err := validators.DecodeJSONBody(r, &form); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		req := quote.Request{
			FEFCO:       form.FEFCO,
			XMM:         form.XMM,
			YMM:         form.YMM,
			ZMM:         form.ZMM,
			Material:    validators.SanitizeString(form.Material, 100),
			Print:       form.Print,
			SLAType:     form.SLAType,
			Qty:         form.Qty,
			Company:     validators.SanitizeString(form.Company, 200),
			ContactName: validators.SanitizeString(form.ContactName, 100),
			City:        validators.SanitizeString(form.City, 100),
			Phone:       validators.SanitizeString(form.Phone, 20),
			Email:       validators.SanitizeString(form.Email, 254),
			TGUsername:  validators.SanitizeString(form.TGUsername, 50),
		}

		outcome, err := svc.Generate(r.Context(), req)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, quoteResponse{
			OK:     true,
			PDFURL: outcome.PDFURL,
			LeadID: outcome.LeadID,
		})
	}
}

// ServeQuotePDF streams a rendered quote artifact by lead ID.
func ServeQuotePDF(store *pdf.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "artifact store unavailable"))
			return
		}

		leadID := chi.URLParam(r, "leadID")
		if !pdf.ValidLeadID(leadID) {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid lead id"))
			return
		}
		if !store.Exists(leadID) {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "pdf not found"))
			return
		}

		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", `inline; filename="`+leadID+`.pdf"`)
		http.ServeFile(w, r, store.Path(leadID))
	}
}
