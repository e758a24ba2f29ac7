// Package authz builds the role-based casbin enforcer from configured policies.
package authz

import (
	"errors"
	"fmt"
	"strings"

	"github.com/casbin/casbin/v3"
	"github.com/casbin/casbin/v3/model"
	"github.com/samber/lo"
)

const rbacModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && (p.obj == "*" || r.obj == p.obj) && (p.act == "*" || r.act == p.act)
`

// ErrInvalidPolicy is returned for a policy that is not "subject:object:action".
var ErrInvalidPolicy = errors.New("authz: policy must be subject:object:action")

// Enforcer decides whether a subject may perform an action on an object.
type Enforcer interface {
	Enforce(rvals ...any) (bool, error)
}

// ParsePolicies converts "subject:object:action" entries into casbin rules.
// Blank entries are skipped.
func ParsePolicies(raw []string) ([][]string, error) {
	entries := lo.Compact(lo.Map(raw, func(s string, _ int) string { return strings.TrimSpace(s) }))

	rules := make([][]string, 0, len(entries))
	for _, e := range entries {
		parts := strings.Split(e, ":")
		if len(parts) != 3 || lo.Contains(parts, "") {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPolicy, e)
		}
		rules = append(rules, parts)
	}

	return lo.UniqBy(rules, func(r []string) string { return strings.Join(r, ":") }), nil
}

// NewEnforcer returns an in-memory casbin enforcer loaded with policies.
func NewEnforcer(policies []string) (*casbin.Enforcer, error) {
	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, err
	}

	e, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, err
	}

	rules, err := ParsePolicies(policies)
	if err != nil {
		return nil, err
	}
	if len(rules) > 0 {
		if _, err := e.AddPolicies(rules); err != nil {
			return nil, err
		}
	}

	return e, nil
}
