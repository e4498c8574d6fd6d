// Package cache implements the composite-property cache used by the
// aggregation engines.
//
// Cache keys are built from an ordered list of serializable properties,
// usually a metric name plus its parameters. The same inputs always produce
// the same key, so concurrent identical requests may race to populate an
// entry. Last-write-wins is fine there because both writers computed the
// same value.
package cache

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/patrickkostjens/firefly-iii/internal/types"
)

// Properties is an ordered list of cache key components.
type Properties struct {
	parts []string
}

// NewProperties returns Properties seeded with the given values.
func NewProperties(values ...any) *Properties {
	p := &Properties{}
	for _, v := range values {
		p.Add(v)
	}

	return p
}

// Add appends a property to the key.
func (p *Properties) Add(value any) *Properties {
	var part string

	switch v := value.(type) {
	case string:
		part = v
	case types.Date:
		part = v.String()
	case types.Range:
		part = v.String()
	case uuid.UUID:
		part = v.String()
	case []uuid.UUID:
		ids := make([]string, 0, len(v))
		for _, id := range v {
			ids = append(ids, id.String())
		}
		part = strings.Join(ids, ",")
	case time.Time:
		part = v.In(time.UTC).Format(time.RFC3339)
	default:
		part = fmt.Sprintf("%v", v)
	}

	p.parts = append(p.parts, part)
	return p
}

// Key returns the deterministic composite key.
func (p *Properties) Key() string {
	return strings.Join(p.parts, "|")
}
