package domain

import "errors"

// Governance failures. Every operation rejects as a whole: a returned error
// means no shared state changed (the voting-closed marker in PerformVote is
// the single documented exception).
var ErrUnauthorized = errors.New("caller lacks the required role")
var ErrInvalidInput = errors.New("invalid input")
var ErrProposalNotFound = errors.New("proposal not found")
var ErrAlreadyDone = errors.New("operation already performed")
var ErrClosedForVoting = errors.New("proposal closed for voting")
var ErrInsufficientState = errors.New("balance or vote tally insufficient")
var ErrTransferFailed = errors.New("beneficiary transfer failed")
var ErrReentrantCall = errors.New("reentrant call rejected")

// Account failures (identity substrate).
var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrAccountNotFound = errors.New("account not found")
var ErrAccountExists = errors.New("account already exists")
