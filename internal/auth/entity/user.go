package entity

import "time"

// User is an identity record in the directory.
type User struct {
	ID            string
	Name          string
	Email         string
	Phone         Phone
	Role          Role
	Profile       RoleProfile
	HealthProfile *HealthProfile
	Verified      bool
	CreatedAt     time.Time
	LastLogin     time.Time
}

// Clone returns a deep copy of u.
func (u User) Clone() User {
	if u.HealthProfile != nil {
		hp := *u.HealthProfile
		hp.Data = u.HealthProfile.Data.Clone()
		u.HealthProfile = &hp
	}
	return u
}

// PendingRegistration is a draft user awaiting OTP confirmation.
type PendingRegistration struct {
	Phone     Phone
	Name      string
	Email     string
	Role      Role
	Profile   RoleProfile
	CreatedAt time.Time
	ExpiresAt time.Time
}

// IsExpired reports whether the draft lapsed at now.
func (p PendingRegistration) IsExpired(now time.Time) bool {
	return !p.ExpiresAt.IsZero() && now.After(p.ExpiresAt)
}

// Materialize turns the draft into a verified user.
func (p PendingRegistration) Materialize(id string, now time.Time) User {
	profile := p.Profile
	if profile == nil || profile.Role() != p.Role {
		profile = NewRoleProfile(p.Role, ProfileAttributes{})
	}

	return User{
		ID:        id,
		Name:      p.Name,
		Email:     p.Email,
		Phone:     p.Phone,
		Role:      p.Role,
		Profile:   profile,
		Verified:  true,
		CreatedAt: now,
	}
}

// DefaultPatient builds the placeholder patient created on first sign-in.
func DefaultPatient(id string, phone Phone, now time.Time) User {
	return User{
		ID:        id,
		Name:      "Patient " + phone.Last4(),
		Phone:     phone,
		Role:      RolePatient,
		Profile:   PatientProfile{},
		Verified:  true,
		CreatedAt: now,
	}
}
