package knowledge

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Parse decodes a knowledge base definition from YAML. The result is not yet
// finalized; hand it to Registry.Register, which checks the structural
// invariants and builds lookup indexes.
//
// Definition shape mirrors the KnowledgeBase struct:
//
//	domain: real_estate
//	glossary:
//	  Grantor:
//	    aliases: [seller, conveyor]
//	    category: party
//	field_mappings:
//	  seller name: Grantor
//	rules:
//	  - name: purchase_price_range
//	    kind: range
//	    field: Purchase Price
//	    min: 0
//	    max: 100000000
//	    severity: CRITICAL
func Parse(data []byte) (*KnowledgeBase, error) {
	var kb KnowledgeBase
	if err := yaml.Unmarshal(data, &kb); err != nil {
		return nil, fmt.Errorf("parsing knowledge base: %w", err)
	}
	if kb.Domain == "" {
		return nil, fmt.Errorf("knowledge base definition has no domain")
	}
	// Glossary keys are the canonical forms; fill the redundant field so
	// entries read the same whether built from YAML or struct literals.
	for canonical, entry := range kb.Glossary {
		if entry.Canonical == "" {
			entry.Canonical = canonical
			kb.Glossary[canonical] = entry
		}
	}
	return &kb, nil
}

// LoadFile reads and parses a YAML knowledge base definition.
func LoadFile(path string) (*KnowledgeBase, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	kb, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return kb, nil
}
