// Package authz decides what an event role may do, using a casbin RBAC model.
package authz

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	fileadapter "github.com/casbin/casbin/v2/persist/file-adapter"

	"eventcheckin/internal/domain"
)

//go:embed model.conf
var embeddedModel string

//go:embed policy.csv
var embeddedPolicy string

// Policy implements domain.AccessPolicy on a casbin enforcer.
type Policy struct {
	enforcer *casbin.SyncedEnforcer
}

// NewPolicy loads the embedded model with the policy at policyPath, or with the embedded policy
// when policyPath is empty.
func NewPolicy(policyPath string) (*Policy, error) {
	m, err := model.NewModelFromString(embeddedModel)
	if err != nil {
		return nil, fmt.Errorf("failed to load casbin model: %w", err)
	}

	var enforcer *casbin.SyncedEnforcer
	if policyPath != "" {
		if _, statErr := os.Stat(policyPath); statErr != nil {
			return nil, fmt.Errorf("policy file: %w", statErr)
		}
		enforcer, err = casbin.NewSyncedEnforcer(m, fileadapter.NewAdapter(policyPath))
	} else {
		enforcer, err = casbin.NewSyncedEnforcer(m)
		if err == nil {
			err = loadPolicy(enforcer, embeddedPolicy)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin enforcer: %w", err)
	}
	return &Policy{enforcer: enforcer}, nil
}

func loadPolicy(enforcer *casbin.SyncedEnforcer, policy string) error {
	for _, line := range strings.Split(policy, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.Split(line, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}

		switch rule := parts[1:]; parts[0] {
		case "p":
			if len(rule) != 3 {
				return fmt.Errorf("malformed policy line %q", line)
			}
			if _, err := enforcer.AddPolicy(rule[0], rule[1], rule[2]); err != nil {
				return fmt.Errorf("failed to add policy %v: %w", rule, err)
			}
		case "g":
			if len(rule) != 2 {
				return fmt.Errorf("malformed grouping line %q", line)
			}
			if _, err := enforcer.AddGroupingPolicy(rule[0], rule[1]); err != nil {
				return fmt.Errorf("failed to add grouping policy %v: %w", rule, err)
			}
		default:
			return fmt.Errorf("unknown policy type %q", parts[0])
		}
	}
	return nil
}

func (p *Policy) Allowed(role domain.EventRole, resource domain.Resource, action domain.Action) (bool, error) {
	allowed, err := p.enforcer.Enforce(string(role), string(resource), string(action))
	if err != nil {
		return false, fmt.Errorf("enforcement failed: %w", err)
	}
	return allowed, nil
}
