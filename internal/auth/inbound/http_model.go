package inbound

import (
	"time"

	"github.com/samber/lo"
	"github.com/shandysiswandi/easymed/internal/auth/entity"
)

type SendCodeRequest struct {
	Phone string `json:"phone"`
}

type SendCodeResponse struct {
	Status     string    `json:"status"`
	Phone      string    `json:"phone"`
	IssuanceID string    `json:"issuance_id"`
	ExpiresAt  time.Time `json:"expires_at"`
}

func (SendCodeResponse) Message() string {
	return "Verification code sent."
}

type VerifyAndLoginRequest struct {
	Phone string `json:"phone"`
	Code  string `json:"code"`
}

type LoginResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresAt   time.Time    `json:"expires_at"`
	Created     bool         `json:"created,omitempty"`
	User        UserResponse `json:"user"`
}

type RegisterRequest struct {
	Phone        string `json:"phone"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	Specialty    string `json:"specialty"`
	Village      string `json:"village"`
	Organization string `json:"organization"`
}

type AdminLoginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

// AdminLoginResponse carries the code issuance fields for kind otp_sent and
// the token fields for kind authenticated.
type AdminLoginResponse struct {
	Kind        string        `json:"kind"`
	Phone       string        `json:"phone,omitempty"`
	IssuanceID  string        `json:"issuance_id,omitempty"`
	ExpiresAt   time.Time     `json:"expires_at"`
	AccessToken string        `json:"access_token,omitempty"`
	TokenType   string        `json:"token_type,omitempty"`
	User        *UserResponse `json:"user,omitempty"`
}

type UserResponse struct {
	ID            string                 `json:"id"`
	Name          string                 `json:"name"`
	Email         string                 `json:"email,omitempty"`
	Phone         string                 `json:"phone,omitempty"`
	Role          string                 `json:"role"`
	Specialty     string                 `json:"specialty,omitempty"`
	Village       string                 `json:"village,omitempty"`
	Organization  string                 `json:"organization,omitempty"`
	HealthProfile *HealthProfileResponse `json:"health_profile,omitempty"`
	Verified      bool                   `json:"verified"`
	CreatedAt     time.Time              `json:"created_at"`
	LastLogin     *time.Time             `json:"last_login,omitempty"`
}

type HealthProfileResponse struct {
	Reference string         `json:"reference"`
	Data      map[string]any `json:"data"`
	LinkedAt  time.Time      `json:"linked_at"`
}

type UsersResponse struct {
	Users []UserResponse `json:"users"`
}

func (r UsersResponse) Meta() map[string]any {
	return map[string]any{"total": len(r.Users)}
}

type UserClearResponse struct {
	Removed int `json:"removed"`
}

func (UserClearResponse) Message() string {
	return "All users have been removed."
}

type StatusResponse struct {
	TotalUsers           int    `json:"total_users"`
	PendingRegistrations int    `json:"pending_registrations"`
	ActiveSessions       int    `json:"active_sessions"`
	SMSMode              string `json:"sms_mode"`
}

type LinkProfileRequest struct {
	Reference string         `json:"reference"`
	Data      map[string]any `json:"data"`
}

type LinkProfileResponse struct {
	Linked bool          `json:"linked"`
	User   *UserResponse `json:"user,omitempty"`
}

type DevOTPResponse struct {
	Phone  string    `json:"phone"`
	Body   string    `json:"body"`
	SentAt time.Time `json:"sent_at"`
}

func toUserResponse(u entity.User) UserResponse {
	resp := UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Phone:     u.Phone.String(),
		Role:      u.Role.String(),
		Verified:  u.Verified,
		CreatedAt: u.CreatedAt,
	}

	switch p := u.Profile.(type) {
	case entity.DoctorProfile:
		resp.Specialty = p.Specialty
	case entity.AshaWorkerProfile:
		resp.Village = p.Village
	case entity.AdminProfile:
		resp.Organization = p.Organization
	}

	if hp := u.HealthProfile; hp != nil {
		resp.HealthProfile = &HealthProfileResponse{Reference: hp.Reference, Data: hp.Data, LinkedAt: hp.LinkedAt}
	}

	if !u.LastLogin.IsZero() {
		resp.LastLogin = lo.ToPtr(u.LastLogin)
	}

	return resp
}
