package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/mbco-platform/netcash-backend/internal/core/ports/services"
	"github.com/mbco-platform/netcash-backend/internal/dto"
	"github.com/mbco-platform/netcash-backend/internal/middleware"
)

type depositAccountHandler struct {
	accountService portssvc.DepositAccountSvcFacade
}

// registerDepositAccountRoutes registers the deposit-account directory routes.
func registerDepositAccountRoutes(rg *gin.RouterGroup, accountService portssvc.DepositAccountSvcFacade) {
	h := &depositAccountHandler{accountService: accountService}

	cfg := rg.Group("/config")
	{
		cfg.POST("/cuenta-deposito", h.createAccount)
		cfg.GET("/cuentas-deposito", h.listAccounts)
		cfg.GET("/cuenta-deposito-activa", h.getActiveAccount)
		cfg.PUT("/cuenta-deposito/:id/activar", h.activateAccount)
	}
}

// createAccount godoc
// @Summary Register a deposit account
// @Description Registers a destination account; with activar=true it becomes the published one atomically
// @Tags cuentas-deposito
// @Accept json
// @Produce json
// @Param account body dto.CreateDepositAccountRequest true "Account details"
// @Success 201 {object} dto.DepositAccountResponse
// @Failure 400 {object} map[string]string "Invalid CLABE"
// @Security BearerAuth
// @Router /config/cuenta-deposito [post]
func (h *depositAccountHandler) createAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateDepositAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for createAccount", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	creatorUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	account, err := h.accountService.CreateAccount(c.Request.Context(), req, creatorUserID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToDepositAccountResponse(account))
}

// listAccounts godoc
// @Summary List deposit accounts
// @Tags cuentas-deposito
// @Produce json
// @Param incluir_inactivas query bool false "Include the rotation history" default(false)
// @Success 200 {array} dto.DepositAccountResponse
// @Security BearerAuth
// @Router /config/cuentas-deposito [get]
func (h *depositAccountHandler) listAccounts(c *gin.Context) {
	includeInactive := c.Query("incluir_inactivas") == "true"

	accounts, err := h.accountService.ListAccounts(c.Request.Context(), includeInactive)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToListDepositAccountResponse(accounts))
}

// getActiveAccount godoc
// @Summary Get the published deposit account
// @Tags cuentas-deposito
// @Produce json
// @Success 200 {object} dto.DepositAccountResponse
// @Failure 404 {object} map[string]string "No active account configured"
// @Security BearerAuth
// @Router /config/cuenta-deposito-activa [get]
func (h *depositAccountHandler) getActiveAccount(c *gin.Context) {
	account, err := h.accountService.GetActiveAccount(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToDepositAccountResponse(account))
}

// activateAccount godoc
// @Summary Activate a deposit account
// @Description Swaps the published account; the previous active account is deactivated in the same transaction
// @Tags cuentas-deposito
// @Param id path string true "Account ID"
// @Success 204 "Activated"
// @Failure 404 {object} map[string]string "Account not found"
// @Security BearerAuth
// @Router /config/cuenta-deposito/{id}/activar [put]
func (h *depositAccountHandler) activateAccount(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.accountService.ActivateAccount(c.Request.Context(), c.Param("id"), userID); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
