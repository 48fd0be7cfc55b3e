package rbac

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed routes.yaml
var defaultRoutes []byte

// Rule binds one route path to its accepted role set.
type Rule struct {
	Path    string
	Access  string
	Allowed RoleSet
}

// Policy is the route -> accepted set table evaluated by Guard.
type Policy struct {
	rules map[string]Rule
	order []string
}

type policyDoc struct {
	Routes []struct {
		Path   string   `yaml:"path"`
		Access string   `yaml:"access"`
		Roles  []string `yaml:"roles"`
	} `yaml:"routes"`
}

// DefaultPolicy is the embedded route table.
func DefaultPolicy() (Policy, error) {
	return LoadPolicy(bytes.NewReader(defaultRoutes))
}

func LoadPolicyFile(path string) (Policy, error) {
	f, err := os.Open(path)
	if err != nil {
		return Policy{}, fmt.Errorf("open route policy: %w", err)
	}
	defer f.Close()
	return LoadPolicy(f)
}

func LoadPolicy(r io.Reader) (Policy, error) {
	var doc policyDoc
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return Policy{}, fmt.Errorf("decode route policy: %w", err)
	}

	p := Policy{rules: make(map[string]Rule, len(doc.Routes))}
	for i, rt := range doc.Routes {
		path := strings.TrimSpace(rt.Path)
		if !strings.HasPrefix(path, "/") {
			return Policy{}, fmt.Errorf("route %d: path must start with /, got %q", i, rt.Path)
		}
		if _, dup := p.rules[path]; dup {
			return Policy{}, fmt.Errorf("route %q declared twice", path)
		}

		rule := Rule{Path: path, Access: strings.ToLower(strings.TrimSpace(rt.Access))}
		switch {
		case len(rt.Roles) > 0:
			set := NewRoleSet()
			for _, name := range rt.Roles {
				role, ok := ParseRole(name)
				if !ok {
					return Policy{}, fmt.Errorf("route %q: unknown role %q", path, name)
				}
				set[role] = struct{}{}
			}
			rule.Allowed = set
			if rule.Access == "" {
				rule.Access = "custom"
			}
		case rule.Access != "":
			set, ok := namedSet(rule.Access)
			if !ok {
				return Policy{}, fmt.Errorf("route %q: unknown access %q", path, rt.Access)
			}
			rule.Allowed = set
		default:
			return Policy{}, fmt.Errorf("route %q: access or roles required", path)
		}

		p.rules[path] = rule
		p.order = append(p.order, path)
	}
	return p, nil
}

func (p Policy) Rule(path string) (Rule, bool) {
	r, ok := p.rules[path]
	return r, ok
}

// Rules returns the table in declaration order.
func (p Policy) Rules() []Rule {
	out := make([]Rule, 0, len(p.order))
	for _, path := range p.order {
		out = append(out, p.rules[path])
	}
	return out
}
