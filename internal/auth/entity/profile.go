package entity

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shandysiswandi/easymed/internal/pkg/valueobject"
)

// ErrProfileRoleMismatch is returned when encoded attributes do not belong to the encoded role.
var ErrProfileRoleMismatch = errors.New("auth: profile does not match role")

// RoleProfile holds the attributes specific to one role.
type RoleProfile interface {
	Role() Role
}

// PatientProfile carries no extra attributes.
type PatientProfile struct{}

func (PatientProfile) Role() Role { return RolePatient }

// AshaWorkerProfile carries the village an ASHA worker serves.
type AshaWorkerProfile struct {
	Village string `json:"village,omitempty"`
}

func (AshaWorkerProfile) Role() Role { return RoleAshaWorker }

// DoctorProfile carries the doctor's specialty.
type DoctorProfile struct {
	Specialty string `json:"specialty,omitempty"`
}

func (DoctorProfile) Role() Role { return RoleDoctor }

// AdminProfile carries the administrator's organization.
type AdminProfile struct {
	Organization string `json:"organization,omitempty"`
}

func (AdminProfile) Role() Role { return RoleAdmin }

// ProfileAttributes are the loose role attributes accepted from callers.
type ProfileAttributes struct {
	Specialty    string
	Village      string
	Organization string
}

// NewRoleProfile keeps only the attributes that belong to role.
func NewRoleProfile(role Role, attrs ProfileAttributes) RoleProfile {
	switch role {
	case RoleAshaWorker:
		return AshaWorkerProfile{Village: attrs.Village}
	case RoleDoctor:
		return DoctorProfile{Specialty: attrs.Specialty}
	case RoleAdmin:
		return AdminProfile{Organization: attrs.Organization}
	default:
		return PatientProfile{}
	}
}

// EncodedProfile is the {role, attributes} wire form of a RoleProfile.
type EncodedProfile struct {
	Role       string          `json:"role"`
	Attributes json.RawMessage `json:"attributes,omitempty"`
}

// EncodeProfile converts p to its wire form. A nil profile encodes as a patient.
func EncodeProfile(p RoleProfile) (EncodedProfile, error) {
	if p == nil {
		p = PatientProfile{}
	}

	attrs, err := json.Marshal(p)
	if err != nil {
		return EncodedProfile{}, err
	}

	return EncodedProfile{Role: p.Role().String(), Attributes: attrs}, nil
}

// DecodeProfile converts the wire form back into the variant named by its role.
func DecodeProfile(ep EncodedProfile) (RoleProfile, error) {
	role := RoleFromString(ep.Role)

	var (
		p   RoleProfile
		err error
	)
	switch role {
	case RolePatient:
		p = PatientProfile{}
	case RoleAshaWorker:
		var v AshaWorkerProfile
		err = unmarshalAttributes(ep.Attributes, &v)
		p = v
	case RoleDoctor:
		var v DoctorProfile
		err = unmarshalAttributes(ep.Attributes, &v)
		p = v
	case RoleAdmin:
		var v AdminProfile
		err = unmarshalAttributes(ep.Attributes, &v)
		p = v
	default:
		return nil, fmt.Errorf("%w: %q", ErrProfileRoleMismatch, ep.Role)
	}
	if err != nil {
		return nil, err
	}

	return p, nil
}

func unmarshalAttributes(raw json.RawMessage, dst any) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, dst)
}

// HealthProfile is an opaque record linked from the national health-ID system.
type HealthProfile struct {
	Reference string
	Data      valueobject.JSONMap
	LinkedAt  time.Time
}
