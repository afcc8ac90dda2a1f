package app

import (
	"github.com/specialistvlad/exptgrid/internal/config"
	"github.com/specialistvlad/exptgrid/internal/hcl"
	"github.com/specialistvlad/exptgrid/internal/yamlcfg"
)

// coreLoaders is the definitive list of configuration formats compiled into
// the exptgrid binary.
func coreLoaders() []config.Loader {
	return []config.Loader{
		hcl.NewLoader(),
		yamlcfg.NewLoader(),
	}
}
