package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/commonfund/treasury-api/internal/core/ports"
)

// TreasuryHandler handles HTTP requests for contributions, balances and the
// caller's own membership views.
type TreasuryHandler struct {
	service ports.TreasuryService
}

func NewTreasuryHandler(service ports.TreasuryService) *TreasuryHandler {
	return &TreasuryHandler{service: service}
}

// Contribute handles POST /v1/treasury/contributions.
//
// @Summary      Contribute funds to the treasury pool
// @Tags         treasury
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      contributeRequest  true  "Contribution amount in base units"
// @Success      201   {object}  contributeResponse
// @Failure      400   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /v1/treasury/contributions [post]
func (h *TreasuryHandler) Contribute(c echo.Context) error {
	who, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req contributeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.service.Contribute(c.Request().Context(), ports.ContributeInput{
		Caller: who,
		Amount: req.Amount,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, contributeResponse{
		PoolBalance: result.PoolBalance,
		Roles:       roleTags(result.Roles),
	})
}

// Balance handles GET /v1/treasury/balance.
//
// @Summary      Get the treasury pool balance
// @Tags         treasury
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  balanceResponse
// @Router       /v1/treasury/balance [get]
func (h *TreasuryHandler) Balance(c echo.Context) error {
	balance, err := h.service.TotalBalance(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, balanceResponse{Balance: balance})
}

// Deployer handles GET /v1/treasury/deployer.
//
// @Summary      Get the deployer identity
// @Tags         treasury
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  deployerResponse
// @Router       /v1/treasury/deployer [get]
func (h *TreasuryHandler) Deployer(c echo.Context) error {
	deployer, err := h.service.Deployer(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, deployerResponse{Deployer: string(deployer)})
}

// MyVotes handles GET /v1/members/me/votes.
//
// @Summary      List proposal IDs the caller has voted on
// @Tags         members
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  memberVotesResponse
// @Failure      403  {object}  map[string]string
// @Router       /v1/members/me/votes [get]
func (h *TreasuryHandler) MyVotes(c echo.Context) error {
	who, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	ids, err := h.service.MemberVotes(c.Request().Context(), who)
	if err != nil {
		return err
	}
	if ids == nil {
		ids = []uint64{}
	}
	return c.JSON(http.StatusOK, memberVotesResponse{ProposalIDs: ids})
}

// MyStake handles GET /v1/members/me/stake.
//
// @Summary      Get the caller's stake balance
// @Tags         members
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  balanceResponse
// @Failure      403  {object}  map[string]string
// @Router       /v1/members/me/stake [get]
func (h *TreasuryHandler) MyStake(c echo.Context) error {
	who, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	stake, err := h.service.StakeBalance(c.Request().Context(), who)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, balanceResponse{Balance: stake})
}

// MyContribution handles GET /v1/members/me/contribution.
//
// @Summary      Get the caller's cumulative contribution
// @Tags         members
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  balanceResponse
// @Failure      403  {object}  map[string]string
// @Router       /v1/members/me/contribution [get]
func (h *TreasuryHandler) MyContribution(c echo.Context) error {
	who, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	total, err := h.service.ContributionBalance(c.Request().Context(), who)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, balanceResponse{Balance: total})
}

// MyStatus handles GET /v1/members/me/status.
//
// @Summary      Report which roles the caller holds
// @Tags         members
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  statusResponse
// @Router       /v1/members/me/status [get]
func (h *TreasuryHandler) MyStatus(c echo.Context) error {
	who, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	status, err := h.service.Status(c.Request().Context(), who)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, statusResponse{
		IsCollaborator: status.IsCollaborator,
		IsStakeholder:  status.IsStakeholder,
	})
}
