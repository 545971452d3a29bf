package commands

import (
	"fmt"

	"github.com/docpress/docpress/internal/config"
)

// InitCmd scaffolds a starter configuration file with placeholder
// store credentials.
type InitCmd struct {
	Force bool `help:"Replace the configuration file if it already exists"`
}

func (i *InitCmd) Run(_ *Global, root *CLI) error {
	if err := config.Init(root.Config, i.Force); err != nil {
		return err
	}
	fmt.Printf("Wrote example configuration to %s\n", root.Config)
	fmt.Println("Fill in the store endpoint and token, then run 'docpress build'.")
	return nil
}
