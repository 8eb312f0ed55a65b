package usecase

import (
	"github.com/casbin/casbin/v3"
	"github.com/casbin/casbin/v3/model"
	"github.com/shandysiswandi/otpauth/internal/auth/entity"
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

// DefaultPolicies grants user management to admins. Subjects are roles.
var DefaultPolicies = [][]string{
	{entity.RoleAdmin.String(), entity.PermObjUsers, entity.PermActRead},
	{entity.RoleAdmin.String(), entity.PermObjUsers, entity.PermActDelete},
}

// NewEnforcer builds an in-memory RBAC enforcer loaded with policies.
func NewEnforcer(policies [][]string) (*casbin.Enforcer, error) {
	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, err
	}

	e, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, err
	}

	if len(policies) > 0 {
		if _, err := e.AddPolicies(policies); err != nil {
			return nil, err
		}
	}

	return e, nil
}
