package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/commonfund/treasury-api/internal/core/domain"
	"github.com/commonfund/treasury-api/internal/core/ports"
)

func TestTreasuryHandler_Contribute_Success(t *testing.T) {
	e := newTestEcho()
	stub := &stubTreasuryService{
		t: t,
		contributeFn: func(ctx context.Context, in ports.ContributeInput) (*ports.ContributeResult, error) {
			if in.Caller != "0xAA" || in.Amount != 12 {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &ports.ContributeResult{
				PoolBalance: 12,
				Roles:       []domain.RoleTag{domain.RoleCollaborator, domain.RoleStakeholder},
			}, nil
		},
	}
	handler := NewTreasuryHandler(stub)

	req := httptest.NewRequest(http.MethodPost, "/v1/treasury/contributions", strings.NewReader(`{"amount":12}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := authedContext(e, req, rec, "0xAA")

	if err := handler.Contribute(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["pool_balance"] != float64(12) {
		t.Fatalf("unexpected pool balance: %v", resp["pool_balance"])
	}
	roles, ok := resp["roles"].([]any)
	if !ok || len(roles) != 2 {
		t.Fatalf("expected both roles, got %v", resp["roles"])
	}
}

func TestTreasuryHandler_Contribute_RejectsZeroAmount(t *testing.T) {
	e := newTestEcho()
	handler := NewTreasuryHandler(&stubTreasuryService{t: t})

	req := httptest.NewRequest(http.MethodPost, "/v1/treasury/contributions", strings.NewReader(`{"amount":0}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := authedContext(e, req, rec, "0xAA")

	err := handler.Contribute(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestTreasuryHandler_Balance(t *testing.T) {
	e := newTestEcho()
	stub := &stubTreasuryService{t: t}
	stub.totalBalanceFn = func(ctx context.Context) (int64, error) { return 42, nil }
	handler := NewTreasuryHandler(stub)

	req := httptest.NewRequest(http.MethodGet, "/v1/treasury/balance", nil)
	rec := httptest.NewRecorder()
	c := authedContext(e, req, rec, "0xAA")

	if err := handler.Balance(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["balance"] != float64(42) {
		t.Fatalf("unexpected balance: %v", resp["balance"])
	}
}

func TestTreasuryHandler_MyStake_ForbiddenForNonStakeholder(t *testing.T) {
	e := newTestEcho()
	stub := &stubTreasuryService{t: t}
	stub.stakeBalanceFn = func(ctx context.Context, caller domain.Identity) (int64, error) {
		return 0, domain.ErrUnauthorized
	}
	handler := NewTreasuryHandler(stub)

	req := httptest.NewRequest(http.MethodGet, "/v1/members/me/stake", nil)
	rec := httptest.NewRecorder()
	c := authedContext(e, req, rec, "0xBB")

	if err := handler.MyStake(c); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestTreasuryHandler_MyVotes_EmptyList(t *testing.T) {
	e := newTestEcho()
	stub := &stubTreasuryService{t: t}
	stub.memberVotesFn = func(ctx context.Context, caller domain.Identity) ([]uint64, error) {
		return nil, nil
	}
	handler := NewTreasuryHandler(stub)

	req := httptest.NewRequest(http.MethodGet, "/v1/members/me/votes", nil)
	rec := httptest.NewRecorder()
	c := authedContext(e, req, rec, "0xAA")

	if err := handler.MyVotes(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	ids, ok := resp["proposal_ids"].([]any)
	if !ok || len(ids) != 0 {
		t.Fatalf("expected empty list, got %v", resp["proposal_ids"])
	}
}
