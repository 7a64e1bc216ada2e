package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/mbco-platform/netcash-backend/internal/core/ports/services"
	"github.com/mbco-platform/netcash-backend/internal/dto"
)

// netcashHandler serves the client-facing "solicitud" projections used by the
// messaging-bot channel. These views hide staff-only data: provider cost,
// state history and audit trail never cross this boundary.
type netcashHandler struct {
	operationService portssvc.OperationSvcFacade
	clientService    portssvc.ClientSvcFacade
}

// registerNetcashRoutes registers the bot-view projection routes.
func registerNetcashRoutes(rg *gin.RouterGroup, operationService portssvc.OperationSvcFacade, clientService portssvc.ClientSvcFacade) {
	h := &netcashHandler{operationService: operationService, clientService: clientService}

	netcash := rg.Group("/netcash")
	{
		netcash.GET("/solicitudes/:id", h.getSolicitud)
		netcash.GET("/solicitudes/cliente/:id", h.listSolicitudesByClient)
		netcash.GET("/chats/:chatID/solicitudes", h.listSolicitudesByChat)
	}
}

// getSolicitud godoc
// @Summary Get the client view of an operation
// @Tags netcash
// @Produce json
// @Param id path string true "Operation ID"
// @Success 200 {object} dto.SolicitudResponse
// @Failure 404 {object} map[string]string "Operation not found"
// @Security BearerAuth
// @Router /netcash/solicitudes/{id} [get]
func (h *netcashHandler) getSolicitud(c *gin.Context) {
	op, err := h.operationService.GetOperationByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToSolicitudResponse(op))
}

// listSolicitudesByClient godoc
// @Summary List a client's operations as client views
// @Tags netcash
// @Produce json
// @Param id path string true "Client ID"
// @Param limit query int false "Page size" default(20)
// @Param offset query int false "Page offset" default(0)
// @Success 200 {array} dto.SolicitudResponse
// @Security BearerAuth
// @Router /netcash/solicitudes/cliente/{id} [get]
func (h *netcashHandler) listSolicitudesByClient(c *gin.Context) {
	var params dto.ListOperationsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	ops, err := h.operationService.ListOperationsByClient(c.Request.Context(), c.Param("id"), params.Limit, params.Offset)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	solicitudes := make([]dto.SolicitudResponse, len(ops))
	for i := range ops {
		solicitudes[i] = dto.ToSolicitudResponse(&ops[i])
	}
	c.JSON(http.StatusOK, solicitudes)
}

// listSolicitudesByChat godoc
// @Summary List a bot chat's operations
// @Description Resolves the client linked to the chat and returns their operations as client views
// @Tags netcash
// @Produce json
// @Param chatID path string true "Bot chat ID"
// @Param limit query int false "Page size" default(20)
// @Param offset query int false "Page offset" default(0)
// @Success 200 {array} dto.SolicitudResponse
// @Failure 404 {object} map[string]string "No client linked to this chat"
// @Security BearerAuth
// @Router /netcash/chats/{chatID}/solicitudes [get]
func (h *netcashHandler) listSolicitudesByChat(c *gin.Context) {
	var params dto.ListOperationsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	client, err := h.clientService.GetClientByBotChatID(c.Request.Context(), c.Param("chatID"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	ops, err := h.operationService.ListOperationsByClient(c.Request.Context(), client.ClientID, params.Limit, params.Offset)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	solicitudes := make([]dto.SolicitudResponse, len(ops))
	for i := range ops {
		solicitudes[i] = dto.ToSolicitudResponse(&ops[i])
	}
	c.JSON(http.StatusOK, solicitudes)
}
