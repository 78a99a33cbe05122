package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/quillbooks/quillbooks_backend/internal/apperrors"
	portssvc "github.com/quillbooks/quillbooks_backend/internal/core/ports/services"
	"github.com/quillbooks/quillbooks_backend/internal/core/services"
	"github.com/quillbooks/quillbooks_backend/internal/dto"
	"github.com/quillbooks/quillbooks_backend/internal/middleware"
)

// ledgerHandler handles HTTP requests for transaction validation, posting
// and reversal.
type ledgerHandler struct {
	ledgerService portssvc.LedgerSvc
}

func newLedgerHandler(ls portssvc.LedgerSvc) *ledgerHandler {
	return &ledgerHandler{ledgerService: ls}
}

// registerLedgerRoutes registers routes related to transactions.
func registerLedgerRoutes(rg *gin.RouterGroup, ledgerService portssvc.LedgerSvc) {
	h := newLedgerHandler(ledgerService)

	transactions := rg.Group("/transactions")
	{
		transactions.POST("", h.postTransaction)
		transactions.POST("/validate", h.validateTransaction)
		transactions.GET("/:id", h.getTransaction)
		transactions.POST("/:id/reverse", h.reverseTransaction)
	}
}

// validateTransaction godoc
// @Summary Validate a transaction without posting it
// @Description Runs every ledger check on the proposed transaction and reports all violations. Never writes.
// @Tags transactions
// @Accept  json
// @Produce  json
// @Param   transaction body dto.CreateTransactionRequest true "Proposed transaction"
// @Success 200 {object} dto.ValidationResponse
// @Failure 400 {object} map[string]string "Invalid input format"
// @Failure 500 {object} map[string]string "Validation failed"
// @Security BearerAuth
// @Router /transactions/validate [post]
func (h *ledgerHandler) validateTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for ValidateTransaction", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	result, err := h.ledgerService.ValidateTransaction(c.Request.Context(), req)
	if err != nil {
		logger.Error("Failed to validate transaction", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to validate transaction"})
		return
	}
	c.JSON(http.StatusOK, dto.ToValidationResponse(result))
}

// postTransaction godoc
// @Summary Post a transaction to the ledger
// @Description Validates and atomically appends a balanced transaction. Rejections return the full violation list.
// @Tags transactions
// @Accept  json
// @Produce  json
// @Param   transaction body dto.CreateTransactionRequest true "Transaction to post"
// @Success 201 {object} dto.TransactionResponse
// @Failure 400 {object} map[string]string "Invalid input format"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 409 {object} map[string]string "An account was deactivated concurrently"
// @Failure 422 {object} dto.ValidationResponse "Transaction rejected by ledger rules"
// @Failure 500 {object} map[string]string "Failed to post transaction"
// @Security BearerAuth
// @Router /transactions [post]
func (h *ledgerHandler) postTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for PostTransaction", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	creatorUserID, ok := middleware.GetUserIDFromCtx(c.Request.Context())
	if !ok {
		logger.Error("Creator user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	txn, err := h.ledgerService.PostTransaction(c.Request.Context(), req, creatorUserID)
	if err != nil {
		h.writeLedgerError(c, logger, err, "Failed to post transaction")
		return
	}

	logger.Info("Transaction posted",
		slog.String("transaction_id", txn.TransactionID),
		slog.Int("line_count", len(txn.Lines)),
	)
	c.JSON(http.StatusCreated, dto.ToTransactionResponse(txn))
}

// getTransaction godoc
// @Summary Get a transaction by ID
// @Description Retrieves a posted transaction with its lines
// @Tags transactions
// @Produce  json
// @Param   id path string true "Transaction ID"
// @Success 200 {object} dto.TransactionResponse
// @Failure 404 {object} map[string]string "Transaction not found"
// @Failure 500 {object} map[string]string "Failed to retrieve transaction"
// @Security BearerAuth
// @Router /transactions/{id} [get]
func (h *ledgerHandler) getTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	transactionID := c.Param("id")

	txn, err := h.ledgerService.GetTransaction(c.Request.Context(), transactionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Transaction not found"})
			return
		}
		logger.Error("Failed to get transaction", slog.String("transaction_id", transactionID), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve transaction"})
		return
	}
	c.JSON(http.StatusOK, dto.ToTransactionResponse(txn))
}

// reverseTransaction godoc
// @Summary Reverse a posted transaction
// @Description Posts a new transaction with every line's side swapped and links it to the original. The original entry is never removed.
// @Tags transactions
// @Produce  json
// @Param   id path string true "Transaction ID to reverse"
// @Success 201 {object} dto.TransactionResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Transaction not found"
// @Failure 409 {object} map[string]string "Already reversed, is itself a reversal, or concurrent modification"
// @Failure 422 {object} dto.ValidationResponse "Reversal rejected by ledger rules"
// @Failure 500 {object} map[string]string "Failed to reverse transaction"
// @Security BearerAuth
// @Router /transactions/{id}/reverse [post]
func (h *ledgerHandler) reverseTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	transactionID := c.Param("id")

	userID, ok := middleware.GetUserIDFromCtx(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	reversal, err := h.ledgerService.ReverseTransaction(c.Request.Context(), transactionID, userID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Transaction not found"})
		case errors.Is(err, services.ErrAlreadyReversed), errors.Is(err, services.ErrIsReversal):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			h.writeLedgerError(c, logger, err, "Failed to reverse transaction")
		}
		return
	}

	logger.Info("Transaction reversed",
		slog.String("transaction_id", transactionID),
		slog.String("reversal_id", reversal.TransactionID),
	)
	c.JSON(http.StatusCreated, dto.ToTransactionResponse(reversal))
}

// writeLedgerError maps posting errors onto HTTP responses. Domain rejections
// carry their full validation result to the client.
func (h *ledgerHandler) writeLedgerError(c *gin.Context, logger *slog.Logger, err error, fallback string) {
	if rejected, ok := apperrors.AsRejected(err); ok {
		logger.Warn("Transaction rejected", slog.Int("violation_count", len(rejected.Result.Violations)))
		c.JSON(http.StatusUnprocessableEntity, dto.ToValidationResponse(rejected.Result))
		return
	}
	if errors.Is(err, apperrors.ErrConcurrentModification) {
		logger.Warn("Concurrent modification while posting", slog.String("error", err.Error()))
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	logger.Error(fallback, slog.String("error", err.Error()))
	c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
}
