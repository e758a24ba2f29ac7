package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/shandysiswandi/easymed/internal/auth/entity"
)

type otpRecord struct {
	Phone     string    `json:"phone"`
	CodeHash  string    `json:"code_hash"`
	ExpiresAt time.Time `json:"expires_at"`
	Attempts  int       `json:"attempts"`
}

type sessionRecord struct {
	Phone     string    `json:"phone"`
	StartedAt time.Time `json:"started_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

type pendingRecord struct {
	Phone     string                `json:"phone"`
	Name      string                `json:"name"`
	Email     string                `json:"email,omitempty"`
	Profile   entity.EncodedProfile `json:"profile"`
	CreatedAt time.Time             `json:"created_at"`
	ExpiresAt time.Time             `json:"expires_at"`
}

func (s *State) SaveOTP(ctx context.Context, e entity.OTPEntry) (err error) {
	ctx, span := s.startSpan(ctx, "SaveOTP")
	defer func() { s.endSpan(span, err) }()

	err = s.set(ctx, kindOTP, e.Phone, otpRecord{
		Phone:     e.Phone.String(),
		CodeHash:  e.CodeHash,
		ExpiresAt: e.ExpiresAt,
		Attempts:  e.Attempts,
	}, e.ExpiresAt)
	return err
}

func (s *State) GetOTP(ctx context.Context, phone entity.Phone) (_ *entity.OTPEntry, err error) {
	ctx, span := s.startSpan(ctx, "GetOTP")
	defer func() { s.endSpan(span, err) }()

	var rec otpRecord
	if err = s.get(ctx, kindOTP, phone, &rec); err != nil {
		return nil, err
	}

	return &entity.OTPEntry{
		Phone:     entity.Phone(rec.Phone),
		CodeHash:  rec.CodeHash,
		ExpiresAt: rec.ExpiresAt,
		Attempts:  rec.Attempts,
	}, nil
}

func (s *State) DeleteOTP(ctx context.Context, phone entity.Phone) (err error) {
	ctx, span := s.startSpan(ctx, "DeleteOTP")
	defer func() { s.endSpan(span, err) }()

	err = s.del(ctx, kindOTP, phone)
	return err
}

func (s *State) SaveSession(ctx context.Context, v entity.VerificationSession) (err error) {
	ctx, span := s.startSpan(ctx, "SaveSession")
	defer func() { s.endSpan(span, err) }()

	err = s.set(ctx, kindSession, v.Phone, sessionRecord{
		Phone:     v.Phone.String(),
		StartedAt: v.StartedAt,
		ExpiresAt: v.ExpiresAt,
	}, v.ExpiresAt)
	return err
}

func (s *State) GetSession(ctx context.Context, phone entity.Phone) (_ *entity.VerificationSession, err error) {
	ctx, span := s.startSpan(ctx, "GetSession")
	defer func() { s.endSpan(span, err) }()

	var rec sessionRecord
	if err = s.get(ctx, kindSession, phone, &rec); err != nil {
		return nil, err
	}

	return &entity.VerificationSession{
		Phone:     entity.Phone(rec.Phone),
		StartedAt: rec.StartedAt,
		ExpiresAt: rec.ExpiresAt,
	}, nil
}

func (s *State) DeleteSession(ctx context.Context, phone entity.Phone) (err error) {
	ctx, span := s.startSpan(ctx, "DeleteSession")
	defer func() { s.endSpan(span, err) }()

	err = s.del(ctx, kindSession, phone)
	return err
}

func (s *State) CountSessions(ctx context.Context, now time.Time) (_ int, err error) {
	ctx, span := s.startSpan(ctx, "CountSessions")
	defer func() { s.endSpan(span, err) }()

	return s.countLive(ctx, kindSession, now, func(raw []byte) (time.Time, error) {
		var rec sessionRecord
		err := json.Unmarshal(raw, &rec)
		return rec.ExpiresAt, err
	})
}

func (s *State) SavePending(ctx context.Context, v entity.PendingRegistration) (err error) {
	ctx, span := s.startSpan(ctx, "SavePending")
	defer func() { s.endSpan(span, err) }()

	profile, err := entity.EncodeProfile(v.Profile)
	if err != nil {
		return err
	}

	err = s.set(ctx, kindPending, v.Phone, pendingRecord{
		Phone:     v.Phone.String(),
		Name:      v.Name,
		Email:     v.Email,
		Profile:   profile,
		CreatedAt: v.CreatedAt,
		ExpiresAt: v.ExpiresAt,
	}, v.ExpiresAt)
	return err
}

func (s *State) GetPending(ctx context.Context, phone entity.Phone) (_ *entity.PendingRegistration, err error) {
	ctx, span := s.startSpan(ctx, "GetPending")
	defer func() { s.endSpan(span, err) }()

	var rec pendingRecord
	if err = s.get(ctx, kindPending, phone, &rec); err != nil {
		return nil, err
	}

	profile, err := entity.DecodeProfile(rec.Profile)
	if err != nil {
		return nil, err
	}

	return &entity.PendingRegistration{
		Phone:     entity.Phone(rec.Phone),
		Name:      rec.Name,
		Email:     rec.Email,
		Role:      profile.Role(),
		Profile:   profile,
		CreatedAt: rec.CreatedAt,
		ExpiresAt: rec.ExpiresAt,
	}, nil
}

func (s *State) DeletePending(ctx context.Context, phone entity.Phone) (err error) {
	ctx, span := s.startSpan(ctx, "DeletePending")
	defer func() { s.endSpan(span, err) }()

	err = s.del(ctx, kindPending, phone)
	return err
}

func (s *State) CountPending(ctx context.Context, now time.Time) (_ int, err error) {
	ctx, span := s.startSpan(ctx, "CountPending")
	defer func() { s.endSpan(span, err) }()

	return s.countLive(ctx, kindPending, now, func(raw []byte) (time.Time, error) {
		var rec pendingRecord
		err := json.Unmarshal(raw, &rec)
		return rec.ExpiresAt, err
	})
}

// DeleteExpired is a no-op; Redis evicts lapsed keys through their TTL.
func (s *State) DeleteExpired(context.Context, time.Time) (int, error) {
	return 0, nil
}
