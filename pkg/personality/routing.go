package personality

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Routing holds, per tag, the element-wise weights that turn a tag's average
// remembered delta into a long-term bias. A zero row routes nothing.
type Routing [TagCount]Vector

var (
	trustBuildingRoute = NewVector(0.2, 0.1, 0.4, 0.6)
	trustBreakingRoute = NewVector(0, 0.1, 0.8, 0.6)
	lossRoute          = NewVector(0.4, 0, 0, 0)
)

// DefaultRouting returns the stock routing table.
func DefaultRouting() Routing {
	var r Routing
	for _, t := range []Tag{
		TagPlayerComfort, TagPlayerEncourage, TagPlayerApologize,
		TagPlayerKeepPromise, TagMetaFrequentCheckIn, TagMetaUseResourceForHer,
	} {
		r[t] = trustBuildingRoute
	}
	for _, t := range []Tag{
		TagPlayerBreakPromise, TagPlayerLieDetected, TagMetaIgnoreHerNeed,
		TagMetaTalkOnlyWhenNeed, TagPlayerObjectify,
	} {
		r[t] = trustBreakingRoute
	}
	for _, t := range []Tag{TagCampLossDueToDecisionPlayer, TagCampCasualty} {
		r[t] = lossRoute
	}
	return r
}

// RouteSpec is one group in a routing file.
type RouteSpec struct {
	Tags      []string `yaml:"tags"`
	Hope      float64  `yaml:"hope"`
	Happiness float64  `yaml:"happiness"`
	Trust     float64  `yaml:"trust"`
	Affinity  float64  `yaml:"affinity"`
}

// RoutingFile is the on-disk shape of a routing table.
type RoutingFile struct {
	Routes []RouteSpec `yaml:"routes"`
}

// ParseRouting decodes a YAML routing table. Tags not mentioned route nothing.
func ParseRouting(data []byte) (Routing, error) {
	var rf RoutingFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return Routing{}, fmt.Errorf("failed to parse routing: %w", err)
	}

	var r Routing
	for i, spec := range rf.Routes {
		if len(spec.Tags) == 0 {
			return Routing{}, fmt.Errorf("route %d has no tags", i)
		}
		for _, name := range spec.Tags {
			tag, err := ParseTag(name)
			if err != nil {
				return Routing{}, fmt.Errorf("route %d: %w", i, err)
			}
			r[tag] = NewVector(spec.Hope, spec.Happiness, spec.Trust, spec.Affinity)
		}
	}
	return r, nil
}

// LoadRouting reads a YAML routing table from path.
func LoadRouting(path string) (Routing, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Routing{}, fmt.Errorf("failed to read routing file: %w", err)
	}
	return ParseRouting(data)
}
