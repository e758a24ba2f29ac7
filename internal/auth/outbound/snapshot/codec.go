package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shandysiswandi/easymed/internal/auth/entity"
	"github.com/shandysiswandi/easymed/internal/pkg/valueobject"
)

var errUnsupportedVersion = errors.New("snapshot: unsupported version")

type envelope struct {
	Version int          `json:"version"`
	SavedAt string       `json:"saved_at"`
	Users   []userRecord `json:"users"`
}

type healthRecord struct {
	Reference string              `json:"reference"`
	Data      valueobject.JSONMap `json:"data,omitempty"`
	LinkedAt  string              `json:"linked_at"`
}

type userRecord struct {
	ID            string                `json:"id"`
	Name          string                `json:"name"`
	Email         string                `json:"email,omitempty"`
	Phone         string                `json:"phone,omitempty"`
	Profile       entity.EncodedProfile `json:"profile"`
	HealthProfile *healthRecord         `json:"health_profile,omitempty"`
	Verified      bool                  `json:"verified"`
	CreatedAt     string                `json:"created_at"`
	LastLogin     string                `json:"last_login,omitempty"`
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339Nano, s)
}

func encode(users []entity.User, now time.Time) ([]byte, error) {
	env := envelope{
		Version: formatVersion,
		SavedAt: formatTime(now),
		Users:   make([]userRecord, 0, len(users)),
	}

	for _, u := range users {
		profile := u.Profile
		if profile == nil || profile.Role() != u.Role {
			profile = entity.NewRoleProfile(u.Role, entity.ProfileAttributes{})
		}
		ep, err := entity.EncodeProfile(profile)
		if err != nil {
			return nil, fmt.Errorf("encode profile of user %s: %w", u.ID, err)
		}

		rec := userRecord{
			ID:        u.ID,
			Name:      u.Name,
			Email:     u.Email,
			Phone:     u.Phone.String(),
			Profile:   ep,
			Verified:  u.Verified,
			CreatedAt: formatTime(u.CreatedAt),
			LastLogin: formatTime(u.LastLogin),
		}
		if u.HealthProfile != nil {
			rec.HealthProfile = &healthRecord{
				Reference: u.HealthProfile.Reference,
				Data:      u.HealthProfile.Data,
				LinkedAt:  formatTime(u.HealthProfile.LinkedAt),
			}
		}
		env.Users = append(env.Users, rec)
	}

	return json.Marshal(env)
}

func decode(raw []byte) ([]entity.User, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, err
	}
	if env.Version != formatVersion {
		return nil, fmt.Errorf("%w: %d", errUnsupportedVersion, env.Version)
	}

	users := make([]entity.User, 0, len(env.Users))
	for _, rec := range env.Users {
		profile, err := entity.DecodeProfile(rec.Profile)
		if err != nil {
			return nil, fmt.Errorf("user %s: %w", rec.ID, err)
		}
		createdAt, err := parseTime(rec.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("user %s created_at: %w", rec.ID, err)
		}
		lastLogin, err := parseTime(rec.LastLogin)
		if err != nil {
			return nil, fmt.Errorf("user %s last_login: %w", rec.ID, err)
		}

		u := entity.User{
			ID:        rec.ID,
			Name:      rec.Name,
			Email:     rec.Email,
			Phone:     entity.Phone(rec.Phone),
			Role:      profile.Role(),
			Profile:   profile,
			Verified:  rec.Verified,
			CreatedAt: createdAt,
			LastLogin: lastLogin,
		}
		if rec.HealthProfile != nil {
			linkedAt, err := parseTime(rec.HealthProfile.LinkedAt)
			if err != nil {
				return nil, fmt.Errorf("user %s linked_at: %w", rec.ID, err)
			}
			u.HealthProfile = &entity.HealthProfile{
				Reference: rec.HealthProfile.Reference,
				Data:      rec.HealthProfile.Data,
				LinkedAt:  linkedAt,
			}
		}
		users = append(users, u)
	}

	return users, nil
}
