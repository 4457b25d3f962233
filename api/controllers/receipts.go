package controllers

import (
	"net/http"
	"strconv"

	"github.com/varejolabs/pdv-terminal/api/responses"
	"github.com/varejolabs/pdv-terminal/internal/receipts"
	pkgerrors "github.com/varejolabs/pdv-terminal/pkg/errors"
	"github.com/varejolabs/pdv-terminal/pkg/logger"
)

// LastReceipt serves the newest journaled receipt for this register.
func LastReceipt(svc receipts.Service, registerLocalID string, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		receipt, err := svc.Last(ctx, registerLocalID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if receipt == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "no receipt journaled yet"))
			return
		}
		responses.WriteSuccess(w, receipt)
	}
}

// RecentReceipts serves up to ?limit= receipts, newest first.
func RecentReceipts(svc receipts.Service, registerLocalID string, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		limit := 0
		if raw := r.URL.Query().Get("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed <= 0 {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "limit must be a positive integer"))
				return
			}
			limit = parsed
		}

		rows, err := svc.Recent(ctx, registerLocalID, limit)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}
