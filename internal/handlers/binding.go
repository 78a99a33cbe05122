package handlers

import (
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/quillbooks/quillbooks_backend/internal/core/domain"
)

// RegisterCustomValidators installs the ledger-specific binding rules into
// gin's validator engine. Must run once before the router handles requests.
func RegisterCustomValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	if err := v.RegisterValidation("accounttype", validAccountType); err != nil {
		return err
	}
	return v.RegisterValidation("txnside", validTxnSide)
}

func validAccountType(fl validator.FieldLevel) bool {
	return domain.AccountType(fl.Field().String()).IsValid()
}

func validTxnSide(fl validator.FieldLevel) bool {
	return domain.Side(strings.ToUpper(fl.Field().String())).IsValid()
}
