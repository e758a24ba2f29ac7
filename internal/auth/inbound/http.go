package inbound

import (
	"context"

	"github.com/shandysiswandi/easymed/internal/auth/entity"
	"github.com/shandysiswandi/easymed/internal/auth/usecase"
	"github.com/shandysiswandi/easymed/internal/pkg/router"
)

// DevOTPPath is public and only registered when the simulated inbox is exposed.
const DevOTPPath = "/api/v1/auth/dev/otp/:phone"

type uc interface {
	SendCode(ctx context.Context, in usecase.SendCodeInput) (*usecase.SendCodeOutput, error)
	VerifyAndLogin(ctx context.Context, in usecase.VerifyAndLoginInput) (*usecase.VerifyAndLoginOutput, error)
	Register(ctx context.Context, in usecase.RegisterInput) (*usecase.SendCodeOutput, error)
	AuthenticateAdmin(ctx context.Context, in usecase.AuthenticateAdminInput) (*usecase.AuthenticateAdminOutput, error)

	Me(ctx context.Context) (*entity.User, error)
	Status(ctx context.Context) (*entity.Status, error)
	UserList(ctx context.Context) ([]entity.User, error)
	UserDetail(ctx context.Context, in usecase.UserDetailInput) (*entity.User, error)
	UserClear(ctx context.Context) (int, error)
	LinkExternalProfile(ctx context.Context, in usecase.LinkExternalProfileInput) (*usecase.LinkExternalProfileOutput, error)

	DevOTP(ctx context.Context, in usecase.DevOTPInput) (*usecase.DevOTPOutput, error)
	DevOTPEnabled() bool
}

func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	// Sign-in (public)
	r.POST("/api/v1/auth/otp/send", end.SendCode)
	r.POST("/api/v1/auth/otp/verify", end.VerifyAndLogin)
	r.POST("/api/v1/auth/register", end.Register)
	r.POST("/api/v1/auth/admin/login", end.AuthenticateAdmin)

	// Account (need authenticated)
	r.GET("/api/v1/auth/me", end.Me)
	r.GET("/api/v1/auth/users/:id", end.UserDetail)
	r.POST("/api/v1/auth/users/:id/health-profile", end.LinkExternalProfile)

	// Administration (need authenticated & authorization)
	r.GET("/api/v1/auth/status", end.Status)
	r.GET("/api/v1/auth/users", end.UserList)
	r.DELETE("/api/v1/auth/users", end.UserClear)

	if uc.DevOTPEnabled() {
		r.GET(DevOTPPath, end.DevOTP)
	}
}
