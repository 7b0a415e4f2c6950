package services

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/lborres/oagate/core"
)

// catalogFile is the YAML layout of a destination catalog:
//
//	destinations:
//	  - id: inbox
//	    label: Inbox
//	    accountTypes: [business]
//	    requiresVerification: true
//	    minimumRole: support
type catalogFile struct {
	Destinations []core.Destination `yaml:"destinations"`
}

// LoadCatalog reads destinations from YAML, keeping file order as display
// order. The result still has to pass NewRegistry validation.
func LoadCatalog(r io.Reader) ([]core.Destination, error) {
	var file catalogFile

	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&file); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}

	if len(file.Destinations) == 0 {
		return nil, fmt.Errorf("%w: catalog has no destinations", core.ErrInvalidDestination)
	}

	return file.Destinations, nil
}
