package finalize

import (
	"strings"

	pkgerrors "github.com/varejolabs/pdv-terminal/pkg/errors"
)

// Classify maps a ledger rejection to its operator-facing category. The
// backend re-validates everything, so its wording is authoritative; matching
// is by substring over the backend message.
func Classify(err error) *pkgerrors.Error {
	if err == nil {
		return nil
	}
	if typed := pkgerrors.As(err); typed != nil {
		return typed
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "insufficient stock"):
		return pkgerrors.Wrap(pkgerrors.CodeStockInsufficient, err, err.Error())
	case strings.Contains(msg, "missing stock record"), strings.Contains(msg, "no stock record"):
		return pkgerrors.Wrap(pkgerrors.CodeStockMissing, err, err.Error())
	case strings.Contains(msg, "insufficient payment"):
		return pkgerrors.Wrap(pkgerrors.CodePaymentInsufficient, err, err.Error())
	default:
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sale commit failed")
	}
}
