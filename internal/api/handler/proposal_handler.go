package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/commonfund/treasury-api/internal/core/domain"
	"github.com/commonfund/treasury-api/internal/core/ports"
)

// ProposalHandler handles HTTP requests for the proposal lifecycle: raising,
// listing, voting and paying out.
type ProposalHandler struct {
	service ports.TreasuryService
}

func NewProposalHandler(service ports.TreasuryService) *ProposalHandler {
	return &ProposalHandler{service: service}
}

func proposalID(c echo.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid proposal id")
	}
	return id, nil
}

// Create handles POST /v1/proposals.
//
// @Summary      Raise a spending proposal
// @Tags         proposals
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createProposalRequest  true  "Proposal details"
// @Success      201   {object}  proposalResponse
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /v1/proposals [post]
func (h *ProposalHandler) Create(c echo.Context) error {
	who, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req createProposalRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	view, err := h.service.CreateProposal(c.Request().Context(), ports.CreateProposalInput{
		Caller:      who,
		Title:       req.Title,
		Description: req.Description,
		Beneficiary: domain.Identity(req.Beneficiary),
		Amount:      req.Amount,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, toProposalResponse(view))
}

// List handles GET /v1/proposals.
//
// @Summary      List all proposals
// @Tags         proposals
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  listProposalsResponse
// @Router       /v1/proposals [get]
func (h *ProposalHandler) List(c echo.Context) error {
	views, err := h.service.Proposals(c.Request().Context())
	if err != nil {
		return err
	}

	data := make([]proposalResponse, 0, len(views))
	for i := range views {
		data = append(data, toProposalResponse(&views[i]))
	}
	return c.JSON(http.StatusOK, listProposalsResponse{Data: data})
}

// Get handles GET /v1/proposals/:id.
//
// @Summary      Get a proposal by ID
// @Tags         proposals
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Proposal ID"
// @Success      200  {object}  proposalResponse
// @Failure      404  {object}  map[string]string
// @Router       /v1/proposals/{id} [get]
func (h *ProposalHandler) Get(c echo.Context) error {
	id, err := proposalID(c)
	if err != nil {
		return err
	}

	view, err := h.service.Proposal(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toProposalResponse(view))
}

// Votes handles GET /v1/proposals/:id/votes.
//
// @Summary      List the votes recorded on a proposal
// @Tags         proposals
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Proposal ID"
// @Success      200  {object}  listVotesResponse
// @Failure      404  {object}  map[string]string
// @Router       /v1/proposals/{id}/votes [get]
func (h *ProposalHandler) Votes(c echo.Context) error {
	id, err := proposalID(c)
	if err != nil {
		return err
	}

	votes, err := h.service.ProposalVotes(c.Request().Context(), id)
	if err != nil {
		return err
	}

	data := make([]voteResponse, 0, len(votes))
	for _, v := range votes {
		data = append(data, voteResponse{
			Voter:   string(v.Voter),
			Approve: v.Choice,
			CastAt:  v.CastAt,
		})
	}
	return c.JSON(http.StatusOK, listVotesResponse{Data: data})
}

// Vote handles POST /v1/proposals/:id/votes.
//
// @Summary      Cast a vote on a proposal
// @Tags         proposals
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int              true  "Proposal ID"
// @Param        body  body      castVoteRequest  true  "Vote choice"
// @Success      201   {object}  voteResponse
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /v1/proposals/{id}/votes [post]
func (h *ProposalHandler) Vote(c echo.Context) error {
	who, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	id, err := proposalID(c)
	if err != nil {
		return err
	}

	var req castVoteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	vote, err := h.service.PerformVote(c.Request().Context(), who, id, *req.Approve)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, voteResponse{
		Voter:   string(vote.Voter),
		Approve: vote.Choice,
		CastAt:  vote.CastAt,
	})
}

// Payout handles POST /v1/proposals/:id/payout.
//
// @Summary      Pay out a passing proposal to its beneficiary
// @Tags         proposals
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Proposal ID"
// @Success      200  {object}  payoutResponse
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Failure      422  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /v1/proposals/{id}/payout [post]
func (h *ProposalHandler) Payout(c echo.Context) error {
	who, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	id, err := proposalID(c)
	if err != nil {
		return err
	}

	remaining, err := h.service.PayBeneficiary(c.Request().Context(), who, id)
	if err != nil {
		return err
	}

	view, err := h.service.Proposal(c.Request().Context(), id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, payoutResponse{
		ProposalID:  id,
		Amount:      view.Amount,
		PoolBalance: remaining,
	})
}
