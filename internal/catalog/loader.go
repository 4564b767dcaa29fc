package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/scrypster/saleflow/pkg/types"
)

// catalogFile is the YAML layout of a catalog override file:
//
//	proposal_gate_stage: 1
//	stages:
//	  - id: 0
//	    label: Preparation
//	    required_document_categories: [certidao_permanente]
//	  - id: 1
//	    label: Listing & Proposals
//	  ...
//	  - id: 5
//	    label: Sold
//	    terminal: true
type catalogFile struct {
	ProposalGateStage int           `yaml:"proposal_gate_stage"`
	Stages            []types.Stage `yaml:"stages"`
}

// Load reads a stage catalog from a YAML file. Stage labels and required
// document categories are market-specific, so deployments can override the
// built-in pipeline without a rebuild. The loaded catalog is validated the
// same way as New.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: failed to read %s: %w", path, err)
	}

	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("catalog: failed to parse %s: %w", path, err)
	}

	c, err := New(f.Stages, f.ProposalGateStage)
	if err != nil {
		return nil, fmt.Errorf("catalog: invalid catalog in %s: %w", path, err)
	}
	return c, nil
}
