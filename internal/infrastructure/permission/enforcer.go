package permission

import (
	_ "embed"
	"fmt"
	"sort"
	"sync"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"

	"github.com/helpdesk-inc/helpdesk/internal/shared/logger"
)

//go:embed model.conf
var modelConf string

//go:embed policies.yaml
var defaultPolicies []byte

// PolicyFile is the YAML shape of the seeded permissions.
type PolicyFile struct {
	// Inherits maps a role onto the role whose permissions it also receives.
	Inherits map[string]string              `yaml:"inherits"`
	Roles    map[string]map[string][]string `yaml:"roles"`
}

// ParsePolicyFile decodes a policy document.
func ParsePolicyFile(data []byte) (*PolicyFile, error) {
	var pf PolicyFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("failed to parse policy file: %w", err)
	}
	return &pf, nil
}

// Rules flattens the document into sorted (role, resource, action) triples.
func (pf *PolicyFile) Rules() [][]string {
	var rules [][]string
	for role, resources := range pf.Roles {
		for resource, actions := range resources {
			for _, action := range actions {
				rules = append(rules, []string{role, resource, action})
			}
		}
	}
	sort.Slice(rules, func(i, j int) bool {
		a, b := rules[i], rules[j]
		if a[0] != b[0] {
			return a[0] < b[0]
		}
		if a[1] != b[1] {
			return a[1] < b[1]
		}
		return a[2] < b[2]
	})
	return rules
}

// Enforcer answers route-level permission checks for roles.
type Enforcer struct {
	enforcer *casbin.Enforcer
	mu       sync.RWMutex
	logger   logger.Interface
}

// NewEnforcer stores policies through the gorm adapter and seeds the embedded defaults.
func NewEnforcer(db *gorm.DB, log logger.Interface) (*Enforcer, error) {
	adapter, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin adapter: %w", err)
	}

	m, err := model.NewModelFromString(modelConf)
	if err != nil {
		return nil, fmt.Errorf("failed to load casbin model: %w", err)
	}

	enforcer, err := casbin.NewEnforcer(m, adapter)
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin enforcer: %w", err)
	}

	if err := enforcer.LoadPolicy(); err != nil {
		return nil, fmt.Errorf("failed to load policy: %w", err)
	}

	e := &Enforcer{enforcer: enforcer, logger: log}
	if err := e.Seed(defaultPolicies); err != nil {
		return nil, err
	}
	return e, nil
}

// Seed adds every rule of the policy document that is not stored yet.
func (e *Enforcer) Seed(data []byte) error {
	pf, err := ParsePolicyFile(data)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	added := 0
	for _, rule := range pf.Rules() {
		ok, err := e.enforcer.AddPolicy(rule[0], rule[1], rule[2])
		if err != nil {
			e.logger.Errorw("failed to add permission policy",
				"error", err,
				"role", rule[0],
				"resource", rule[1],
				"action", rule[2])
			return fmt.Errorf("failed to add policy [%s, %s, %s]: %w", rule[0], rule[1], rule[2], err)
		}
		if ok {
			added++
		}
	}
	for role, parent := range pf.Inherits {
		if _, err := e.enforcer.AddRoleForUser(role, parent); err != nil {
			return fmt.Errorf("failed to add role inheritance %s -> %s: %w", role, parent, err)
		}
	}

	e.logger.Infow("permission policies seeded", "added", added)
	return nil
}

// Enforce reports whether role may perform action on resource.
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

func (e *Enforcer) LoadPolicy() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.enforcer.LoadPolicy(); err != nil {
		return fmt.Errorf("failed to reload policy: %w", err)
	}

	e.logger.Infow("policy reloaded")
	return nil
}
