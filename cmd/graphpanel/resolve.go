package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/recera/graphpanel/pkg/renderservice"
)

var errNoGraphs = errors.New("the Render Service has no graphs")

// resolveGraph finds the graph a user means by query: an exact ref, then a
// case-insensitive label, then the single closest label by edit distance
func resolveGraph(graphs []renderservice.Graph, query string) (renderservice.Graph, error) {
	if len(graphs) == 0 {
		return renderservice.Graph{}, errNoGraphs
	}
	for _, g := range graphs {
		if string(g.Ref) == query {
			return g, nil
		}
	}

	q := strings.ToLower(strings.TrimSpace(query))
	var exact []renderservice.Graph
	for _, g := range graphs {
		if strings.ToLower(g.Label) == q {
			exact = append(exact, g)
		}
	}
	switch len(exact) {
	case 1:
		return exact[0], nil
	case 0:
	default:
		return renderservice.Graph{}, ambiguous(query, exact)
	}

	best := -1
	var closest []renderservice.Graph
	for _, g := range graphs {
		d := levenshtein.ComputeDistance(q, strings.ToLower(g.Label))
		switch {
		case best < 0 || d < best:
			best, closest = d, []renderservice.Graph{g}
		case d == best:
			closest = append(closest, g)
		}
	}
	if best > maxDistance(q) {
		return renderservice.Graph{}, fmt.Errorf("no graph matches %q (closest: %q)", query, closest[0].Label)
	}
	if len(closest) > 1 {
		return renderservice.Graph{}, ambiguous(query, closest)
	}
	return closest[0], nil
}

// maxDistance tolerates about one typo per three characters
func maxDistance(q string) int {
	return max(2, len([]rune(q))/3)
}

func ambiguous(query string, graphs []renderservice.Graph) error {
	names := make([]string, len(graphs))
	for i, g := range graphs {
		names[i] = fmt.Sprintf("%s (%s)", g.Label, g.Ref)
	}
	return fmt.Errorf("%q is ambiguous: %s", query, strings.Join(names, ", "))
}
