package ticket

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/orris-inc/archy/internal/application/archive/dto"
	"github.com/orris-inc/archy/internal/application/archive/usecases"
	"github.com/orris-inc/archy/internal/shared/errors"
	"github.com/orris-inc/archy/internal/shared/logger"
	"github.com/orris-inc/archy/internal/shared/utils"
)

type GetTicketExecutor interface {
	Execute(ctx context.Context, query usecases.GetTicketQuery) (*dto.TicketDTO, error)
}

type ListTicketMessagesExecutor interface {
	Execute(ctx context.Context, query usecases.ListTicketMessagesQuery) (*usecases.ListTicketMessagesResult, error)
}

type ExportTranscriptExecutor interface {
	Execute(ctx context.Context, query usecases.ExportTranscriptQuery) (*usecases.ExportTranscriptResult, error)
}

// TicketHandler serves archived tickets read-only.
type TicketHandler struct {
	getTicketUC    GetTicketExecutor
	listMessagesUC ListTicketMessagesExecutor
	exportUC       ExportTranscriptExecutor
	logger         logger.Interface
}

func NewTicketHandler(
	getTicketUC GetTicketExecutor,
	listMessagesUC ListTicketMessagesExecutor,
	exportUC ExportTranscriptExecutor,
	logger logger.Interface,
) *TicketHandler {
	return &TicketHandler{
		getTicketUC:    getTicketUC,
		listMessagesUC: listMessagesUC,
		exportUC:       exportUC,
		logger:         logger,
	}
}

// GetTicket returns the archived metadata of a channel
// @Summary Get archived ticket
// @Description Get the archived metadata of a ticket channel
// @Tags Tickets
// @Produce json
// @Security Bearer
// @Param channel_id path string true "Channel ID"
// @Success 200 {object} utils.APIResponse{data=dto.TicketDTO}
// @Failure 401 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Router /tickets/{channel_id} [get]
func (h *TicketHandler) GetTicket(c *gin.Context) {
	result, err := h.getTicketUC.Execute(c.Request.Context(), usecases.GetTicketQuery{
		ChannelID: c.Param("channel_id"),
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", result)
}

// ListMessages returns the archived messages of a channel, oldest first
// @Summary List archived messages
// @Tags Tickets
// @Produce json
// @Security Bearer
// @Param channel_id path string true "Channel ID"
// @Param text_only query bool false "Drop media-only messages"
// @Success 200 {object} utils.APIResponse{data=utils.ListResponse{items=[]dto.MessageDTO}}
// @Failure 400 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Router /tickets/{channel_id}/messages [get]
func (h *TicketHandler) ListMessages(c *gin.Context) {
	textOnly := false
	if raw := c.Query("text_only"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			utils.ErrorResponseWithError(c, errors.NewValidationError("invalid text_only value", raw))
			return
		}
		textOnly = parsed
	}

	result, err := h.listMessagesUC.Execute(c.Request.Context(), usecases.ListTicketMessagesQuery{
		ChannelID: c.Param("channel_id"),
		TextOnly:  textOnly,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.ListSuccessResponse(c, result.Messages, result.Total)
}

// GetTranscript renders the full archived conversation
// @Summary Export ticket transcript
// @Description Render a ticket as sanitised HTML, YAML or JSON
// @Tags Tickets
// @Produce html
// @Produce json
// @Security Bearer
// @Param channel_id path string true "Channel ID"
// @Param format query string false "html, yaml or json" Enums(html, yaml, json)
// @Success 200 {string} string
// @Failure 400 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Router /tickets/{channel_id}/transcript [get]
func (h *TicketHandler) GetTranscript(c *gin.Context) {
	format, err := usecases.ParseTranscriptFormat(c.Query("format"))
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.exportUC.Execute(c.Request.Context(), usecases.ExportTranscriptQuery{
		ChannelID: c.Param("channel_id"),
		Format:    format,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	if c.Query("download") == "true" {
		c.Header("Content-Disposition", `attachment; filename="`+result.Filename+`"`)
	}
	c.Data(http.StatusOK, result.ContentType, result.Body)
}
