package database

import (
	"github.com/casbin/casbin/v2"
	casbinmodel "github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"gorm.io/gorm"
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
m = g(r.sub, p.sub) && keyMatch(r.obj, p.obj) && regexMatch(r.act, p.act)
`

const (
	adminResource = "/v1/admin*"
	adminActions  = "(GET)|(POST)|(PUT)|(DELETE)"
)

// Casbin builds an enforcer whose policies live in db. Subjects are user ids,
// grouped into roles with AddGroupingPolicy.
func Casbin(db *gorm.DB) (*casbin.Enforcer, error) {
	adapter, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, err
	}

	m, err := casbinmodel.NewModelFromString(rbacModel)
	if err != nil {
		return nil, err
	}

	e, err := casbin.NewEnforcer(m, adapter)
	if err != nil {
		return nil, err
	}

	if hasPolicy, _ := e.HasPolicy("admin", adminResource, adminActions); !hasPolicy {
		if _, err := e.AddPolicy("admin", adminResource, adminActions); err != nil {
			return nil, err
		}
	}

	return e, e.LoadPolicy()
}
