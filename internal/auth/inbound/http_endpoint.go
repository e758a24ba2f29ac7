package inbound

import (
	"github.com/samber/lo"
	"github.com/shandysiswandi/easymed/internal/auth/entity"
	"github.com/shandysiswandi/easymed/internal/auth/usecase"
	"github.com/shandysiswandi/easymed/internal/pkg/router"
)

const tokenType = "Bearer"

// HTTPEndpoint exposes HTTP handlers for phone sign-in and user administration.
type HTTPEndpoint struct {
	uc uc
}

// SendCode issues a one-time code to a phone.
// @Summary Send verification code
// @Description Normalizes the phone, sends a 6 digit code by SMS and opens a verification session.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body SendCodeRequest true "Phone payload"
// @Success 200 {object} router.successResponse{data=SendCodeResponse} "Code sent"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/auth/otp/send [post]
func (h *HTTPEndpoint) SendCode(r *router.Request) (any, error) {
	var req SendCodeRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.SendCode(r.Context(), usecase.SendCodeInput{Phone: req.Phone})
	if err != nil {
		return nil, err
	}

	return SendCodeResponse{
		Status:     resp.Status,
		Phone:      resp.Phone.String(),
		IssuanceID: resp.IssuanceID,
		ExpiresAt:  resp.ExpiresAt,
	}, nil
}

// VerifyAndLogin exchanges a code for an access token.
// @Summary Verify code and sign in
// @Description Verifies the code for an open session, creates the user on first sign-in and returns an access token.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body VerifyAndLoginRequest true "Verification payload"
// @Success 200 {object} router.successResponse{data=LoginResponse} "Signed in"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 401 {object} router.errorResponse "Invalid verification code"
// @Failure 404 {object} router.errorResponse "Verification session not found"
// @Failure 410 {object} router.errorResponse "Verification session or code expired"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/auth/otp/verify [post]
func (h *HTTPEndpoint) VerifyAndLogin(r *router.Request) (any, error) {
	var req VerifyAndLoginRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.VerifyAndLogin(r.Context(), usecase.VerifyAndLoginInput{Phone: req.Phone, Code: req.Code})
	if err != nil {
		return nil, err
	}

	return LoginResponse{
		AccessToken: resp.AccessToken,
		TokenType:   tokenType,
		ExpiresAt:   resp.ExpiresAt,
		Created:     resp.Created,
		User:        toUserResponse(resp.User),
	}, nil
}

// Register stores a registration draft and sends a code.
// @Summary Register user
// @Description Saves a role-specific registration draft that becomes a user once the phone is verified.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Registration payload"
// @Success 200 {object} router.successResponse{data=SendCodeResponse} "Code sent"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 409 {object} router.errorResponse "Phone already registered"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/auth/register [post]
func (h *HTTPEndpoint) Register(r *router.Request) (any, error) {
	var req RegisterRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.Register(r.Context(), usecase.RegisterInput{
		Phone:        req.Phone,
		Name:         req.Name,
		Email:        req.Email,
		Role:         req.Role,
		Specialty:    req.Specialty,
		Village:      req.Village,
		Organization: req.Organization,
	})
	if err != nil {
		return nil, err
	}

	return SendCodeResponse{
		Status:     resp.Status,
		Phone:      resp.Phone.String(),
		IssuanceID: resp.IssuanceID,
		ExpiresAt:  resp.ExpiresAt,
	}, nil
}

// AuthenticateAdmin signs in an allow-listed administrator.
// @Summary Administrator sign-in
// @Description A phone identifier receives a code; an email identifier with a password is authenticated directly.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body AdminLoginRequest true "Administrator credentials"
// @Success 200 {object} router.successResponse{data=AdminLoginResponse} "Code sent or signed in"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 403 {object} router.errorResponse "Not an administrator"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/auth/admin/login [post]
func (h *HTTPEndpoint) AuthenticateAdmin(r *router.Request) (any, error) {
	var req AdminLoginRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.AuthenticateAdmin(r.Context(), usecase.AuthenticateAdminInput{
		Identifier: req.Identifier,
		Password:   req.Password,
	})
	if err != nil {
		return nil, err
	}

	out := AdminLoginResponse{Kind: resp.Kind}
	if resp.Code != nil {
		out.Phone = resp.Code.Phone.String()
		out.IssuanceID = resp.Code.IssuanceID
		out.ExpiresAt = resp.Code.ExpiresAt
	}
	if resp.User != nil {
		out.AccessToken = resp.AccessToken
		out.TokenType = tokenType
		out.ExpiresAt = resp.ExpiresAt
		out.User = lo.ToPtr(toUserResponse(*resp.User))
	}

	return out, nil
}

// @Summary Current user
// @Description Returns the user that owns the access token.
// @Tags Auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} router.successResponse{data=UserResponse} "Current user"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 404 {object} router.errorResponse "User not found"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/auth/me [get]
func (h *HTTPEndpoint) Me(r *router.Request) (any, error) {
	resp, err := h.uc.Me(r.Context())
	if err != nil {
		return nil, err
	}

	return toUserResponse(*resp), nil
}

// @Summary Auth status
// @Description Returns directory size, live registration drafts, open sessions and the SMS transport mode.
// @Tags Auth, Administration
// @Security BearerAuth
// @Produce json
// @Success 200 {object} router.successResponse{data=StatusResponse} "Status"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 403 {object} router.errorResponse "Forbidden"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/auth/status [get]
func (h *HTTPEndpoint) Status(r *router.Request) (any, error) {
	resp, err := h.uc.Status(r.Context())
	if err != nil {
		return nil, err
	}

	return StatusResponse{
		TotalUsers:           resp.TotalUsers,
		PendingRegistrations: resp.PendingRegistrations,
		ActiveSessions:       resp.ActiveSessions,
		SMSMode:              resp.SMSMode,
	}, nil
}

// @Summary List users
// @Description Returns every user ordered by creation time.
// @Tags Auth, Administration
// @Security BearerAuth
// @Produce json
// @Success 200 {object} router.successResponse{data=UsersResponse} "Users"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 403 {object} router.errorResponse "Forbidden"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/auth/users [get]
func (h *HTTPEndpoint) UserList(r *router.Request) (any, error) {
	resp, err := h.uc.UserList(r.Context())
	if err != nil {
		return nil, err
	}

	return UsersResponse{Users: lo.Map(resp, func(u entity.User, _ int) UserResponse {
		return toUserResponse(u)
	})}, nil
}

// @Summary User detail
// @Description Returns a user. Users may read their own record; other records need the users read permission.
// @Tags Auth, Administration
// @Security BearerAuth
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} router.successResponse{data=UserResponse} "User"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 403 {object} router.errorResponse "Forbidden"
// @Failure 404 {object} router.errorResponse "User not found"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/auth/users/{id} [get]
func (h *HTTPEndpoint) UserDetail(r *router.Request) (any, error) {
	resp, err := h.uc.UserDetail(r.Context(), usecase.UserDetailInput{ID: r.GetParam("id")})
	if err != nil {
		return nil, err
	}

	return toUserResponse(*resp), nil
}

// @Summary Clear users
// @Description Removes every user from the directory and persists the empty snapshot.
// @Tags Auth, Administration
// @Security BearerAuth
// @Produce json
// @Success 200 {object} router.successResponse{data=UserClearResponse} "Users removed"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 403 {object} router.errorResponse "Forbidden"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/auth/users [delete]
func (h *HTTPEndpoint) UserClear(r *router.Request) (any, error) {
	n, err := h.uc.UserClear(r.Context())
	if err != nil {
		return nil, err
	}

	return UserClearResponse{Removed: n}, nil
}

// @Summary Link health profile
// @Description Attaches a national health-ID profile. When data is omitted the profile is fetched from the health-ID service.
// @Tags Auth
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param request body LinkProfileRequest false "Health profile"
// @Success 200 {object} router.successResponse{data=LinkProfileResponse} "Link result"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 403 {object} router.errorResponse "Forbidden"
// @Failure 404 {object} router.errorResponse "Health profile not found"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/auth/users/{id}/health-profile [post]
func (h *HTTPEndpoint) LinkExternalProfile(r *router.Request) (any, error) {
	var req LinkProfileRequest
	if r.ContentLength != 0 {
		if err := r.DecodeBody(&req); err != nil {
			return nil, err
		}
	}

	resp, err := h.uc.LinkExternalProfile(r.Context(), usecase.LinkExternalProfileInput{
		UserID:    r.GetParam("id"),
		Reference: req.Reference,
		Data:      req.Data,
	})
	if err != nil {
		return nil, err
	}

	out := LinkProfileResponse{Linked: resp.Linked}
	if resp.User != nil {
		out.User = lo.ToPtr(toUserResponse(*resp.User))
	}

	return out, nil
}

// @Summary Last delivered SMS
// @Description Development helper that returns the last message the simulated SMS transport delivered to a phone.
// @Tags Auth, Development
// @Produce json
// @Param phone path string true "Phone"
// @Success 200 {object} router.successResponse{data=DevOTPResponse} "Last message"
// @Failure 404 {object} router.errorResponse "No message delivered"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Router /api/v1/auth/dev/otp/{phone} [get]
func (h *HTTPEndpoint) DevOTP(r *router.Request) (any, error) {
	resp, err := h.uc.DevOTP(r.Context(), usecase.DevOTPInput{Phone: r.GetParam("phone")})
	if err != nil {
		return nil, err
	}

	return DevOTPResponse{Phone: resp.Phone, Body: resp.Body, SentAt: resp.SentAt}, nil
}
