package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/commonfund/treasury-api/internal/core/domain"
	"github.com/commonfund/treasury-api/internal/core/ports"
)

const (
	defaultActionLimit = 20
	maxActionLimit     = 100
)

// ActionHandler serves the append-only governance log.
type ActionHandler struct {
	repo ports.ActionRepository
}

func NewActionHandler(repo ports.ActionRepository) *ActionHandler {
	return &ActionHandler{repo: repo}
}

// List handles GET /v1/actions.
//
// @Summary      List governance actions in insertion order
// @Tags         actions
// @Produce      json
// @Security     BearerAuth
// @Param        kind   query     string  false  "Filter by action kind"
// @Param        actor  query     string  false  "Filter by acting identity"
// @Param        page   query     int     false  "Page number (1-based)"
// @Param        limit  query     int     false  "Page size (max 100)"
// @Success      200    {object}  listActionsResponse
// @Router       /v1/actions [get]
func (h *ActionHandler) List(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit < 1 {
		limit = defaultActionLimit
	}
	if limit > maxActionLimit {
		limit = maxActionLimit
	}

	filter := ports.ActionFilter{
		Kind:  c.QueryParam("kind"),
		Actor: domain.Identity(c.QueryParam("actor")),
		Page:  page,
		Limit: limit,
	}

	actions, total, err := h.repo.List(c.Request().Context(), filter)
	if err != nil {
		return err
	}

	data := make([]actionResponse, 0, len(actions))
	for i := range actions {
		data = append(data, toActionResponse(&actions[i]))
	}

	totalPages := int(total) / limit
	if int(total)%limit > 0 {
		totalPages++
	}

	return c.JSON(http.StatusOK, listActionsResponse{
		Data: data,
		Pagination: paginationResponse{
			Total:      total,
			Page:       page,
			Limit:      limit,
			TotalPages: totalPages,
		},
	})
}
