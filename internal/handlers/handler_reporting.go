package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/quillbooks/quillbooks_backend/internal/apperrors"
	"github.com/quillbooks/quillbooks_backend/internal/core/domain"
	portssvc "github.com/quillbooks/quillbooks_backend/internal/core/ports/services"
	"github.com/quillbooks/quillbooks_backend/internal/middleware"
)

// reportingHandler serves the financial reports. Report payloads are the
// typed domain structs; there is no ad-hoc map assembly here.
type reportingHandler struct {
	reportingService portssvc.ReportingSvc
	equationService  portssvc.EquationSvc
}

func newReportingHandler(rs portssvc.ReportingSvc, es portssvc.EquationSvc) *reportingHandler {
	return &reportingHandler{
		reportingService: rs,
		equationService:  es,
	}
}

// registerReportingRoutes registers the report and equation routes.
func registerReportingRoutes(rg *gin.RouterGroup, reportingService portssvc.ReportingSvc, equationService portssvc.EquationSvc) {
	h := newReportingHandler(reportingService, equationService)

	rg.GET("/equation", h.getEquation)

	reports := rg.Group("/reports")
	{
		reports.GET("/trial-balance", h.getTrialBalance)
		reports.GET("/balance-sheet", h.getBalanceSheet)
		reports.GET("/income-statement", h.getIncomeStatement)
		reports.GET("/general-ledger", h.getGeneralLedger)
		reports.GET("/cash-flow", h.getCashFlow)
		reports.GET("/dashboard", h.getDashboard)
	}
}

// getEquation godoc
// @Summary Check the accounting equation
// @Description Verifies Assets = Liabilities + Equity over the current ledger, with current earnings folded into equity
// @Tags reports
// @Produce  json
// @Success 200 {object} domain.EquationStatus
// @Failure 500 {object} map[string]string "Failed to check equation"
// @Security BearerAuth
// @Router /equation [get]
func (h *reportingHandler) getEquation(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	status, err := h.equationService.Check(c.Request.Context())
	if err != nil {
		logger.Error("Failed to check accounting equation", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check equation"})
		return
	}
	if !status.Balanced {
		logger.Error("Accounting equation violated",
			slog.String("total_assets", status.TotalAssets.String()),
			slog.String("total_liabilities", status.TotalLiabilities.String()),
			slog.String("total_equity", status.TotalEquity.String()),
		)
	}
	c.JSON(http.StatusOK, status)
}

// getTrialBalance godoc
// @Summary Trial balance report
// @Description Lists every active account with its balance in the debit or credit column; the columns must total equal
// @Tags reports
// @Produce  json
// @Param   asOf query string false "Report instant (RFC3339 or YYYY-MM-DD, default now)"
// @Success 200 {object} domain.TrialBalanceReport
// @Failure 400 {object} map[string]string "Invalid asOf timestamp"
// @Failure 500 {object} map[string]string "Failed to build report"
// @Security BearerAuth
// @Router /reports/trial-balance [get]
func (h *reportingHandler) getTrialBalance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	asOf, err := parseOptionalTime(c.Query("asOf"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid asOf timestamp: " + err.Error()})
		return
	}
	at := time.Now().UTC()
	if asOf != nil {
		at = *asOf
	}

	report, err := h.reportingService.TrialBalance(c.Request.Context(), at)
	if err != nil {
		logger.Error("Failed to build trial balance", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build report"})
		return
	}
	c.JSON(http.StatusOK, report)
}

// getBalanceSheet godoc
// @Summary Balance sheet report
// @Description Assets, liabilities and equity grouped by classification, with retained and current-period earnings split at periodStart
// @Tags reports
// @Produce  json
// @Param   asOf query string false "Report instant (default now)"
// @Param   periodStart query string false "Start of the current earnings period; earlier earnings report as retained"
// @Success 200 {object} domain.BalanceSheetReport
// @Failure 400 {object} map[string]string "Invalid timestamp"
// @Failure 500 {object} map[string]string "Failed to build report"
// @Security BearerAuth
// @Router /reports/balance-sheet [get]
func (h *reportingHandler) getBalanceSheet(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	asOf, err := parseOptionalTime(c.Query("asOf"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid asOf timestamp: " + err.Error()})
		return
	}
	periodStart, err := parseOptionalTime(c.Query("periodStart"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid periodStart timestamp: " + err.Error()})
		return
	}
	at := time.Now().UTC()
	if asOf != nil {
		at = *asOf
	}

	report, err := h.reportingService.BalanceSheet(c.Request.Context(), at, periodStart)
	if err != nil {
		logger.Error("Failed to build balance sheet", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build report"})
		return
	}
	c.JSON(http.StatusOK, report)
}

// getIncomeStatement godoc
// @Summary Income statement report
// @Description Income and expense activity within the period and the resulting net income
// @Tags reports
// @Produce  json
// @Param   from query string true "Period start (inclusive)"
// @Param   to query string true "Period end (inclusive)"
// @Success 200 {object} domain.IncomeStatementReport
// @Failure 400 {object} map[string]string "Missing or invalid period bounds"
// @Failure 500 {object} map[string]string "Failed to build report"
// @Security BearerAuth
// @Router /reports/income-statement [get]
func (h *reportingHandler) getIncomeStatement(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	from, err := parseOptionalTime(c.Query("from"))
	if err != nil || from == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing or invalid from timestamp"})
		return
	}
	to, err := parseOptionalTime(c.Query("to"))
	if err != nil || to == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing or invalid to timestamp"})
		return
	}
	if to.Before(*from) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Period end precedes period start"})
		return
	}

	report, err := h.reportingService.IncomeStatement(c.Request.Context(), *from, *to)
	if err != nil {
		logger.Error("Failed to build income statement", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build report"})
		return
	}
	c.JSON(http.StatusOK, report)
}

// getGeneralLedger godoc
// @Summary General ledger report
// @Description Per-account transaction history with running balances. With account set, a single account (active or not); otherwise all active accounts.
// @Tags reports
// @Produce  json
// @Param   account query string false "Restrict to one account ID"
// @Param   from query string false "Range start (inclusive)"
// @Param   to query string false "Range end (inclusive)"
// @Success 200 {object} domain.GeneralLedgerReport
// @Failure 400 {object} map[string]string "Invalid range"
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 500 {object} map[string]string "Failed to build report"
// @Security BearerAuth
// @Router /reports/general-ledger [get]
func (h *reportingHandler) getGeneralLedger(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	from, err := parseOptionalTime(c.Query("from"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid from timestamp: " + err.Error()})
		return
	}
	to, err := parseOptionalTime(c.Query("to"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid to timestamp: " + err.Error()})
		return
	}
	var accountID *string
	if raw := c.Query("account"); raw != "" {
		accountID = &raw
	}

	report, err := h.reportingService.GeneralLedger(c.Request.Context(), accountID, domain.DateRange{From: from, To: to})
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
			return
		}
		logger.Error("Failed to build general ledger", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build report"})
		return
	}
	c.JSON(http.StatusOK, report)
}

// getCashFlow godoc
// @Summary Cash flow report
// @Description Inflows and outflows through cash-classified accounts within the period
// @Tags reports
// @Produce  json
// @Param   from query string true "Period start (inclusive)"
// @Param   to query string false "Period end (inclusive, default now)"
// @Success 200 {object} domain.CashFlowReport
// @Failure 400 {object} map[string]string "Missing or invalid period bounds"
// @Failure 422 {object} map[string]string "No accounts are classified as cash"
// @Failure 500 {object} map[string]string "Failed to build report"
// @Security BearerAuth
// @Router /reports/cash-flow [get]
func (h *reportingHandler) getCashFlow(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	from, err := parseOptionalTime(c.Query("from"))
	if err != nil || from == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing or invalid from timestamp"})
		return
	}
	to, err := parseOptionalTime(c.Query("to"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid to timestamp: " + err.Error()})
		return
	}

	report, err := h.reportingService.CashFlow(c.Request.Context(), *from, to)
	if err != nil {
		if errors.Is(err, apperrors.ErrReportPrecondition) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
		logger.Error("Failed to build cash flow report", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build report"})
		return
	}
	c.JSON(http.StatusOK, report)
}

// getDashboard godoc
// @Summary Dashboard summary
// @Description Composite snapshot: equation status, net worth, year-to-date earnings and system health cross-checks
// @Tags reports
// @Produce  json
// @Success 200 {object} domain.DashboardReport
// @Failure 500 {object} map[string]string "Failed to build dashboard"
// @Security BearerAuth
// @Router /reports/dashboard [get]
func (h *reportingHandler) getDashboard(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	report, err := h.reportingService.Dashboard(c.Request.Context())
	if err != nil {
		logger.Error("Failed to build dashboard", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build dashboard"})
		return
	}
	c.JSON(http.StatusOK, report)
}
