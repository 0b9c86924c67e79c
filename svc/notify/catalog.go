package notify

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/dmitrymomot/churchbilling/pkg/billing"
)

//go:embed plans.yaml
var plansYAML []byte

// PlanInfo is the customer facing description of a plan.
type PlanInfo struct {
	Name    string `yaml:"name"`
	Summary string `yaml:"summary"`
}

// Catalog maps plan identifiers to display data.
type Catalog struct {
	plans map[billing.Plan]PlanInfo
}

// ParseCatalog reads a YAML document of the form
//
//	plans:
//	  gold:
//	    name: Gold
//	    summary: ...
func ParseCatalog(data []byte) (*Catalog, error) {
	var doc struct {
		Plans map[string]PlanInfo `yaml:"plans"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Join(ErrInvalidCatalog, err)
	}

	c := &Catalog{plans: make(map[billing.Plan]PlanInfo, len(doc.Plans))}
	for key, info := range doc.Plans {
		plan, err := billing.ParsePlan(key)
		if err != nil {
			return nil, fmt.Errorf("%w: unknown plan %q", ErrInvalidCatalog, key)
		}
		info.Name = strings.TrimSpace(info.Name)
		info.Summary = strings.TrimSpace(info.Summary)
		c.plans[plan] = info
	}
	return c, nil
}

var defaultCatalog = sync.OnceValue(func() *Catalog {
	c, err := ParseCatalog(plansYAML)
	if err != nil {
		panic(err)
	}
	return c
})

// DefaultCatalog returns the catalog embedded in the binary.
func DefaultCatalog() *Catalog {
	return defaultCatalog()
}

// PlanName returns the display name of plan. Plans missing from the catalog
// are title-cased.
func (c *Catalog) PlanName(plan string) string {
	plan = strings.TrimSpace(plan)
	if plan == "" {
		return ""
	}
	if c != nil {
		if p, err := billing.ParsePlan(plan); err == nil {
			if info, ok := c.plans[p]; ok && info.Name != "" {
				return info.Name
			}
		}
	}
	// Casers keep state between calls, so one per call.
	return cases.Title(language.English).String(strings.ReplaceAll(plan, "_", " "))
}

// Summary returns the plan summary or an empty string.
func (c *Catalog) Summary(plan string) string {
	if c == nil {
		return ""
	}
	p, err := billing.ParsePlan(plan)
	if err != nil {
		return ""
	}
	return c.plans[p].Summary
}
