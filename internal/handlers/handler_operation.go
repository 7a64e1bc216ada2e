package handlers

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	portssvc "github.com/mbco-platform/netcash-backend/internal/core/ports/services"
	"github.com/mbco-platform/netcash-backend/internal/dto"
	"github.com/mbco-platform/netcash-backend/internal/middleware"
)

type operationHandler struct {
	operationService portssvc.OperationSvcFacade
}

// registerOperationRoutes registers the staff-facing operation routes.
func registerOperationRoutes(rg *gin.RouterGroup, operationService portssvc.OperationSvcFacade) {
	h := &operationHandler{operationService: operationService}

	ops := rg.Group("/operaciones")
	{
		ops.POST("", h.createOperation)
		ops.GET("", h.listOperations)
		ops.GET("/:id", h.getOperationByID)

		ops.POST("/:id/comprobante", h.submitReceipt)
		ops.DELETE("/:id/comprobantes/:receiptID", h.deleteReceipt)
		ops.POST("/:id/cerrar-captura", h.closeIntake)
		ops.POST("/:id/titular", h.setTitular)
		ops.POST("/:id/calcular", h.calculate)
		ops.POST("/:id/confirmar", h.confirm)
		ops.POST("/:id/mbcontrol", h.registerCode)
		ops.POST("/:id/avanzar", h.advance)
		ops.POST("/:id/cancelar", h.cancel)
		ops.POST("/:id/rechazar", h.reject)
	}
}

// createOperation godoc
// @Summary Create a new operation
// @Tags operaciones
// @Accept json
// @Produce json
// @Param operation body dto.CreateOperationRequest true "Operation details"
// @Success 201 {object} dto.OperationResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 409 {object} map[string]string "Client not active"
// @Security BearerAuth
// @Router /operaciones [post]
func (h *operationHandler) createOperation(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateOperationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for createOperation", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	creatorUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	op, err := h.operationService.CreateOperation(c.Request.Context(), req, creatorUserID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToOperationResponse(op))
}

// listOperations godoc
// @Summary List operations
// @Tags operaciones
// @Produce json
// @Param clienteID query string false "Filter by client"
// @Param limit query int false "Page size" default(20)
// @Param offset query int false "Page offset" default(0)
// @Success 200 {array} dto.OperationResponse
// @Security BearerAuth
// @Router /operaciones [get]
func (h *operationHandler) listOperations(c *gin.Context) {
	var params dto.ListOperationsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	var (
		ops []dto.OperationResponse
		err error
	)
	if clientID := c.Query("clienteID"); clientID != "" {
		result, lerr := h.operationService.ListOperationsByClient(c.Request.Context(), clientID, params.Limit, params.Offset)
		err = lerr
		if err == nil {
			ops = dto.ToListOperationResponse(result)
		}
	} else {
		result, lerr := h.operationService.ListOperations(c.Request.Context(), params.Limit, params.Offset)
		err = lerr
		if err == nil {
			ops = dto.ToListOperationResponse(result)
		}
	}
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, ops)
}

// getOperationByID godoc
// @Summary Get an operation
// @Tags operaciones
// @Produce json
// @Param id path string true "Operation ID"
// @Success 200 {object} dto.OperationResponse
// @Failure 404 {object} map[string]string "Operation not found"
// @Security BearerAuth
// @Router /operaciones/{id} [get]
func (h *operationHandler) getOperationByID(c *gin.Context) {
	op, err := h.operationService.GetOperationByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToOperationResponse(op))
}

// submitReceipt godoc
// @Summary Upload a deposit receipt
// @Description Accepts an image, PDF or ZIP of images; runs extraction and validation
// @Tags operaciones
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Operation ID"
// @Param comprobante formData file true "Receipt file"
// @Success 201 {array} dto.ReceiptResponse
// @Failure 400 {object} map[string]string "Unsupported file or invalid archive"
// @Failure 409 {object} map[string]string "Operation no longer accepts receipts"
// @Failure 413 {object} map[string]string "File too large"
// @Failure 502 {object} map[string]string "Extraction service unavailable"
// @Security BearerAuth
// @Router /operaciones/{id}/comprobante [post]
func (h *operationHandler) submitReceipt(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	fileHeader, err := c.FormFile("comprobante")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing 'comprobante' file field"})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		logger.Error("Failed to open uploaded file", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unreadable upload"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		logger.Error("Failed to read uploaded file", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unreadable upload"})
		return
	}

	receipts, err := h.operationService.SubmitReceipt(c.Request.Context(), c.Param("id"), data, fileHeader.Filename, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	responses := make([]dto.ReceiptResponse, len(receipts))
	for i := range receipts {
		responses[i] = dto.ToReceiptResponse(&receipts[i])
	}
	c.JSON(http.StatusCreated, responses)
}

// deleteReceipt godoc
// @Summary Remove a receipt
// @Description Soft-deletes a receipt; the remaining receipts keep their ids
// @Tags operaciones
// @Param id path string true "Operation ID"
// @Param receiptID path string true "Receipt ID"
// @Success 204 "Deleted"
// @Failure 404 {object} map[string]string "Receipt not found"
// @Failure 409 {object} map[string]string "Operation is read-only"
// @Security BearerAuth
// @Router /operaciones/{id}/comprobantes/{receiptID} [delete]
func (h *operationHandler) deleteReceipt(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.operationService.DeleteReceipt(c.Request.Context(), c.Param("id"), c.Param("receiptID"), userID); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// closeIntake godoc
// @Summary Close receipt intake
// @Tags operaciones
// @Produce json
// @Param id path string true "Operation ID"
// @Success 200 {object} dto.OperationResponse
// @Failure 409 {object} map[string]string "No valid receipts or wrong state"
// @Security BearerAuth
// @Router /operaciones/{id}/cerrar-captura [post]
func (h *operationHandler) closeIntake(c *gin.Context) {
	h.lifecycleAction(c, func(userID string) (*dto.OperationResponse, error) {
		op, err := h.operationService.CloseIntake(c.Request.Context(), c.Param("id"), userID)
		if err != nil {
			return nil, err
		}
		resp := dto.ToOperationResponse(op)
		return &resp, nil
	})
}

// setTitular godoc
// @Summary Capture the titular
// @Tags operaciones
// @Accept json
// @Produce json
// @Param id path string true "Operation ID"
// @Param titular body dto.SetTitularRequest true "Titular details"
// @Success 200 {object} dto.OperationResponse
// @Failure 400 {object} map[string]string "Invalid titular data"
// @Failure 409 {object} map[string]string "Titular already captured"
// @Security BearerAuth
// @Router /operaciones/{id}/titular [post]
func (h *operationHandler) setTitular(c *gin.Context) {
	var req dto.SetTitularRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	h.lifecycleAction(c, func(userID string) (*dto.OperationResponse, error) {
		op, err := h.operationService.SetTitular(c.Request.Context(), c.Param("id"), req, userID)
		if err != nil {
			return nil, err
		}
		resp := dto.ToOperationResponse(op)
		return &resp, nil
	})
}

// calculate godoc
// @Summary Compute the money snapshot
// @Description Computes commission, provider cost and net capital from the valid receipts
// @Tags operaciones
// @Produce json
// @Param id path string true "Operation ID"
// @Param comision_cliente_porcentaje query string false "Optional rate override, percent"
// @Success 200 {object} dto.OperationResponse
// @Failure 400 {object} map[string]string "Titular or rate missing"
// @Failure 409 {object} map[string]string "Calculation already exists"
// @Security BearerAuth
// @Router /operaciones/{id}/calcular [post]
func (h *operationHandler) calculate(c *gin.Context) {
	var overrideRate *decimal.Decimal
	if raw := c.Query("comision_cliente_porcentaje"); raw != "" {
		rate, err := decimal.NewFromString(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid comision_cliente_porcentaje: " + raw})
			return
		}
		overrideRate = &rate
	}

	h.lifecycleAction(c, func(userID string) (*dto.OperationResponse, error) {
		op, err := h.operationService.Calculate(c.Request.Context(), c.Param("id"), overrideRate, userID)
		if err != nil {
			return nil, err
		}
		resp := dto.ToOperationResponse(op)
		return &resp, nil
	})
}

// confirm godoc
// @Summary Confirm the calculation
// @Tags operaciones
// @Produce json
// @Param id path string true "Operation ID"
// @Success 200 {object} dto.OperationResponse
// @Failure 409 {object} map[string]string "Wrong state"
// @Security BearerAuth
// @Router /operaciones/{id}/confirmar [post]
func (h *operationHandler) confirm(c *gin.Context) {
	h.lifecycleAction(c, func(userID string) (*dto.OperationResponse, error) {
		op, err := h.operationService.Confirm(c.Request.Context(), c.Param("id"), userID)
		if err != nil {
			return nil, err
		}
		resp := dto.ToOperationResponse(op)
		return &resp, nil
	})
}

// registerCode godoc
// @Summary Register the MBControl code
// @Description Assigns the externally generated code and triggers layout generation
// @Tags operaciones
// @Accept json
// @Produce json
// @Param id path string true "Operation ID"
// @Param code body dto.RegisterCodeRequest true "MBControl code"
// @Success 200 {object} dto.OperationResponse
// @Failure 409 {object} map[string]string "Code already assigned"
// @Security BearerAuth
// @Router /operaciones/{id}/mbcontrol [post]
func (h *operationHandler) registerCode(c *gin.Context) {
	var req dto.RegisterCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	h.lifecycleAction(c, func(userID string) (*dto.OperationResponse, error) {
		op, err := h.operationService.RegisterMBControlCode(c.Request.Context(), c.Param("id"), req.Code, userID)
		if err != nil {
			return nil, err
		}
		resp := dto.ToOperationResponse(op)
		return &resp, nil
	})
}

// advance godoc
// @Summary Advance the operation one step
// @Tags operaciones
// @Accept json
// @Produce json
// @Param id path string true "Operation ID"
// @Param transition body dto.TransitionRequest false "Optional notes"
// @Success 200 {object} dto.OperationResponse
// @Failure 409 {object} map[string]string "Transition not allowed"
// @Security BearerAuth
// @Router /operaciones/{id}/avanzar [post]
func (h *operationHandler) advance(c *gin.Context) {
	req := h.bindTransition(c)
	if req == nil {
		return
	}
	h.lifecycleAction(c, func(userID string) (*dto.OperationResponse, error) {
		op, err := h.operationService.Advance(c.Request.Context(), c.Param("id"), userID, req.Notes)
		if err != nil {
			return nil, err
		}
		resp := dto.ToOperationResponse(op)
		return &resp, nil
	})
}

// cancel godoc
// @Summary Cancel the operation
// @Tags operaciones
// @Accept json
// @Produce json
// @Param id path string true "Operation ID"
// @Param transition body dto.TransitionRequest false "Optional notes"
// @Success 200 {object} dto.OperationResponse
// @Failure 409 {object} map[string]string "Operation already terminal"
// @Security BearerAuth
// @Router /operaciones/{id}/cancelar [post]
func (h *operationHandler) cancel(c *gin.Context) {
	req := h.bindTransition(c)
	if req == nil {
		return
	}
	h.lifecycleAction(c, func(userID string) (*dto.OperationResponse, error) {
		op, err := h.operationService.Cancel(c.Request.Context(), c.Param("id"), userID, req.Notes)
		if err != nil {
			return nil, err
		}
		resp := dto.ToOperationResponse(op)
		return &resp, nil
	})
}

// reject godoc
// @Summary Reject the operation
// @Tags operaciones
// @Accept json
// @Produce json
// @Param id path string true "Operation ID"
// @Param transition body dto.TransitionRequest false "Optional notes"
// @Success 200 {object} dto.OperationResponse
// @Failure 409 {object} map[string]string "Operation already terminal"
// @Security BearerAuth
// @Router /operaciones/{id}/rechazar [post]
func (h *operationHandler) reject(c *gin.Context) {
	req := h.bindTransition(c)
	if req == nil {
		return
	}
	h.lifecycleAction(c, func(userID string) (*dto.OperationResponse, error) {
		op, err := h.operationService.Reject(c.Request.Context(), c.Param("id"), userID, req.Notes)
		if err != nil {
			return nil, err
		}
		resp := dto.ToOperationResponse(op)
		return &resp, nil
	})
}

// bindTransition reads the optional notes body; a nil return means the
// request was already answered.
func (h *operationHandler) bindTransition(c *gin.Context) *dto.TransitionRequest {
	var req dto.TransitionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
			return nil
		}
	}
	return &req
}

// lifecycleAction handles the shared auth/response plumbing of the state
// machine endpoints.
func (h *operationHandler) lifecycleAction(c *gin.Context, action func(userID string) (*dto.OperationResponse, error)) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	resp, err := action(userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
