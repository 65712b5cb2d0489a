// Package cocogen generates connector projects in two target
// languages from one declarative schema. The schema maps raw input
// fields (tabular columns or document paths) to the output properties
// of a connector; the generator resolves the declared types against a
// fixed type catalog, synthesizes composite types for entity mappings
// the catalog does not cover, and emits matching type declarations
// and transform functions for TypeScript and C#.
package cocogen

import (
	"github.com/sirupsen/logrus"

	"github.com/wictorwilen/cocogen-sub000/compiler/gen"
	"github.com/wictorwilen/cocogen-sub000/compiler/load"
)

// LoadGraph loads a schema file and runs the compilation pipeline
// without writing anything to disk.
func LoadGraph(schemaPath string, opts ...gen.Option) (*gen.Graph, error) {
	cfg := &gen.Config{}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}
	s, err := load.Load(schemaPath)
	if err != nil {
		return nil, err
	}
	return gen.NewGraph(cfg, s)
}

// Generate loads a schema file and writes the generated projects.
func Generate(schemaPath string, opts ...gen.Option) error {
	return GenerateWithLogger(schemaPath, logrus.StandardLogger(), opts...)
}

// GenerateWithLogger is Generate with an explicit logger.
func GenerateWithLogger(schemaPath string, log *logrus.Logger, opts ...gen.Option) error {
	g, err := LoadGraph(schemaPath, opts...)
	if err != nil {
		return err
	}
	return gen.NewWriter(log).Write(g)
}
