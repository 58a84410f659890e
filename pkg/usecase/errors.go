package usecase

import "github.com/m-mizutani/goerr/v2"

var (
	ErrInvalidTask       = goerr.New("invalid task")
	ErrInvalidTransition = goerr.New("invalid status transition")
	ErrTenantMismatch    = goerr.New("task and participants belong to different workspaces")
	ErrNoBotToken        = goerr.New("no bot token available for workspace")
)
