// Package permission decides which chat roles may run privileged commands,
// backed by casbin policies stored in the database.
package permission

import (
	"context"
	"fmt"
	"sync"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"gorm.io/gorm"

	"github.com/orris-inc/archy/internal/shared/logger"
)

const (
	ResourceTicket = "ticket"
	ActionArchive  = "archive"
)

// rbacModel matches a role name exactly against (role, resource, action) policies.
const rbacModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = r.sub == p.sub && r.obj == p.obj && r.act == p.act
`

type Enforcer struct {
	enforcer *casbin.Enforcer
	mu       sync.RWMutex
	logger   logger.Interface
}

func NewEnforcer(db *gorm.DB, log logger.Interface) (*Enforcer, error) {
	adapter, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin adapter: %w", err)
	}

	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, fmt.Errorf("failed to parse casbin model: %w", err)
	}

	enforcer, err := casbin.NewEnforcer(m, adapter)
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin enforcer: %w", err)
	}

	if err := enforcer.LoadPolicy(); err != nil {
		return nil, fmt.Errorf("failed to load policy: %w", err)
	}

	return &Enforcer{
		enforcer: enforcer,
		logger:   log,
	}, nil
}

func (e *Enforcer) Enforce(role, resource, action string) (bool, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	allowed, err := e.enforcer.Enforce(role, resource, action)
	if err != nil {
		e.logger.Errorw("permission check failed", "error", err, "role", role, "resource", resource, "action", action)
		return false, fmt.Errorf("permission check failed: %w", err)
	}

	return allowed, nil
}

// CanArchive reports whether any of the member's role names may archive tickets.
func (e *Enforcer) CanArchive(_ context.Context, roleNames []string) (bool, error) {
	for _, role := range roleNames {
		allowed, err := e.Enforce(role, ResourceTicket, ActionArchive)
		if err != nil {
			return false, err
		}
		if allowed {
			return true, nil
		}
	}
	return false, nil
}

// SyncArchiveRoles makes the stored archive policies equal to roles.
func (e *Enforcer) SyncArchiveRoles(roles []string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	want := make(map[string]bool, len(roles))
	for _, r := range roles {
		want[r] = true
	}

	existing, err := e.enforcer.GetFilteredPolicy(1, ResourceTicket, ActionArchive)
	if err != nil {
		return fmt.Errorf("failed to read archive policies: %w", err)
	}
	for _, p := range existing {
		if want[p[0]] {
			delete(want, p[0])
			continue
		}
		if _, err := e.enforcer.RemovePolicy(p[0], ResourceTicket, ActionArchive); err != nil {
			e.logger.Errorw("failed to remove policy", "error", err, "role", p[0])
			return fmt.Errorf("failed to remove policy for %s: %w", p[0], err)
		}
	}

	for _, r := range roles {
		if !want[r] {
			continue
		}
		if _, err := e.enforcer.AddPolicy(r, ResourceTicket, ActionArchive); err != nil {
			e.logger.Errorw("failed to add policy", "error", err, "role", r)
			return fmt.Errorf("failed to add policy for %s: %w", r, err)
		}
		delete(want, r)
	}

	if err := e.enforcer.SavePolicy(); err != nil {
		return fmt.Errorf("failed to save policy: %w", err)
	}

	e.logger.Infow("archive roles synced", "roles", roles)
	return nil
}

func (e *Enforcer) ArchiveRoles() ([]string, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	policies, err := e.enforcer.GetFilteredPolicy(1, ResourceTicket, ActionArchive)
	if err != nil {
		return nil, fmt.Errorf("failed to read archive policies: %w", err)
	}
	roles := make([]string, 0, len(policies))
	for _, p := range policies {
		roles = append(roles, p[0])
	}
	return roles, nil
}

func (e *Enforcer) LoadPolicy() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.enforcer.LoadPolicy(); err != nil {
		return fmt.Errorf("failed to reload policy: %w", err)
	}

	e.logger.Info("policy reloaded successfully")
	return nil
}
