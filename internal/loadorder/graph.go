// Package loadorder computes the order in which tables can be created and filled so that
// every referenced table exists before the tables that reference it.
package loadorder

import (
	"errors"
	"fmt"
	"slices"

	"reshape/internal/integrity"
	"reshape/internal/models"
)

var (
	ErrCycle         = errors.New("dependency cycle")
	ErrUnknownTable  = errors.New("unknown table")
	ErrUnknownLayout = errors.New("unknown relational layout")
)

// Graph maps each table to the tables it depends on.
type Graph struct {
	deps map[string][]string
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{deps: make(map[string][]string)}
}

// Add declares table and the tables it depends on. Adding a table again extends its
// dependencies. A table depending on itself is ignored.
func (g *Graph) Add(table string, dependsOn ...string) {
	current := g.deps[table]
	for _, dep := range dependsOn {
		if dep == table || slices.Contains(current, dep) {
			continue
		}

		current = append(current, dep)
	}

	g.deps[table] = current
}

// Tables lists the declared tables in lexical order.
func (g *Graph) Tables() []string {
	tables := make([]string, 0, len(g.deps))
	for t := range g.deps {
		tables = append(tables, t)
	}

	slices.Sort(tables)

	return tables
}

// Order returns a topological order, parents first. Among tables that are ready at the
// same time, the lexically smallest goes first, so the order is deterministic.
func (g *Graph) Order() ([]string, error) {
	indegree := make(map[string]int, len(g.deps))
	dependents := make(map[string][]string, len(g.deps))

	for table, deps := range g.deps {
		indegree[table] = len(deps)
		for _, dep := range deps {
			if _, ok := g.deps[dep]; !ok {
				return nil, fmt.Errorf("%w: %s depends on %s", ErrUnknownTable, table, dep)
			}

			dependents[dep] = append(dependents[dep], table)
		}
	}

	var ready []string
	for table, n := range indegree {
		if n == 0 {
			ready = append(ready, table)
		}
	}

	order := make([]string, 0, len(g.deps))
	for len(ready) > 0 {
		slices.Sort(ready)
		next := ready[0]
		ready = ready[1:]
		order = append(order, next)

		for _, child := range dependents[next] {
			indegree[child]--
			if indegree[child] == 0 {
				ready = append(ready, child)
			}
		}
	}

	if len(order) != len(g.deps) {
		var stuck []string
		for table, n := range indegree {
			if n > 0 {
				stuck = append(stuck, table)
			}
		}

		slices.Sort(stuck)

		return nil, fmt.Errorf("%w among %v", ErrCycle, stuck)
	}

	return order, nil
}

// Reverse returns the order tables must be dropped in.
func (g *Graph) Reverse() ([]string, error) {
	order, err := g.Order()
	if err != nil {
		return nil, err
	}

	slices.Reverse(order)

	return order, nil
}

// FromRelations builds a graph over tables with one edge per relation.
func FromRelations(tables []models.Table, relations []integrity.Relation) *Graph {
	g := New()
	for _, t := range tables {
		g.Add(t.Name)
	}

	for _, rel := range relations {
		g.Add(rel.Table, rel.Target)
	}

	return g
}

// Normalized is the graph of the 3NF layout.
func Normalized() *Graph {
	return FromRelations(models.NewTableSet().Tables(), integrity.NormalizedRelations)
}

// Star is the graph of the star schema.
func Star() *Graph {
	return FromRelations((&models.StarSchema{}).Tables(), integrity.StarRelations)
}

// Snowflake is the graph of the snowflake schema.
func Snowflake() *Graph {
	return FromRelations((&models.SnowflakeSchema{}).Tables(), integrity.SnowflakeRelations)
}

// ForLayout returns the graph of a relational layout.
func ForLayout(layout string) (*Graph, error) {
	switch layout {
	case models.LayoutNormalized:
		return Normalized(), nil
	case models.LayoutStar:
		return Star(), nil
	case models.LayoutSnowflake:
		return Snowflake(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownLayout, layout)
	}
}
