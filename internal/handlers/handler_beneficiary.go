package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/mbco-platform/netcash-backend/internal/core/ports/services"
	"github.com/mbco-platform/netcash-backend/internal/dto"
	"github.com/mbco-platform/netcash-backend/internal/middleware"
)

type beneficiaryHandler struct {
	beneficiaryService portssvc.BeneficiarySvcFacade
}

// registerBeneficiaryRoutes registers routes for frequent beneficiaries.
func registerBeneficiaryRoutes(rg *gin.RouterGroup, beneficiaryService portssvc.BeneficiarySvcFacade) {
	h := &beneficiaryHandler{beneficiaryService: beneficiaryService}

	beneficiaries := rg.Group("/beneficiarios-frecuentes")
	{
		beneficiaries.POST("", h.createBeneficiary)
		beneficiaries.GET("", h.listBeneficiaries)
		beneficiaries.PUT("/:id", h.updateBeneficiary)
		beneficiaries.DELETE("/:id", h.deleteBeneficiary)
	}
}

// createBeneficiary godoc
// @Summary Register a frequent beneficiary
// @Tags beneficiarios
// @Accept json
// @Produce json
// @Param beneficiary body dto.CreateBeneficiaryRequest true "Beneficiary details"
// @Success 201 {object} dto.BeneficiaryResponse
// @Failure 400 {object} map[string]string "Invalid name or IDMEX"
// @Failure 404 {object} map[string]string "Client not found"
// @Security BearerAuth
// @Router /beneficiarios-frecuentes [post]
func (h *beneficiaryHandler) createBeneficiary(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateBeneficiaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for createBeneficiary", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	creatorUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	b, err := h.beneficiaryService.CreateBeneficiary(c.Request.Context(), req, creatorUserID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToBeneficiaryResponse(b))
}

// listBeneficiaries godoc
// @Summary List a client's frequent beneficiaries
// @Tags beneficiarios
// @Produce json
// @Param clienteID query string true "Client ID"
// @Success 200 {array} dto.BeneficiaryResponse
// @Security BearerAuth
// @Router /beneficiarios-frecuentes [get]
func (h *beneficiaryHandler) listBeneficiaries(c *gin.Context) {
	clientID := c.Query("clienteID")
	if clientID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing 'clienteID' query parameter"})
		return
	}

	list, err := h.beneficiaryService.ListBeneficiaries(c.Request.Context(), clientID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToListBeneficiaryResponse(list))
}

// updateBeneficiary godoc
// @Summary Update a frequent beneficiary
// @Tags beneficiarios
// @Accept json
// @Produce json
// @Param id path string true "Beneficiary ID"
// @Param beneficiary body dto.UpdateBeneficiaryRequest true "Fields to change"
// @Success 200 {object} dto.BeneficiaryResponse
// @Failure 400 {object} map[string]string "Invalid name or IDMEX"
// @Failure 404 {object} map[string]string "Beneficiary not found"
// @Security BearerAuth
// @Router /beneficiarios-frecuentes/{id} [put]
func (h *beneficiaryHandler) updateBeneficiary(c *gin.Context) {
	var req dto.UpdateBeneficiaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	updaterUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	b, err := h.beneficiaryService.UpdateBeneficiary(c.Request.Context(), c.Param("id"), req, updaterUserID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToBeneficiaryResponse(b))
}

// deleteBeneficiary godoc
// @Summary Delete a frequent beneficiary
// @Tags beneficiarios
// @Param id path string true "Beneficiary ID"
// @Success 204 "Deleted"
// @Failure 404 {object} map[string]string "Beneficiary not found"
// @Security BearerAuth
// @Router /beneficiarios-frecuentes/{id} [delete]
func (h *beneficiaryHandler) deleteBeneficiary(c *gin.Context) {
	if err := h.beneficiaryService.DeleteBeneficiary(c.Request.Context(), c.Param("id")); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
