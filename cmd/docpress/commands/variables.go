package commands

import (
	"encoding/json"
	"fmt"

	"github.com/docpress/docpress/internal/variables"
)

// VariablesCmd implements the 'variables' command.
type VariablesCmd struct {
	Path string `arg:"" optional:"" default:"variables.rst" help:"variables.rst file to parse"`
}

func (v *VariablesCmd) Run(_ *Global, _ *CLI) error {
	set, err := variables.ParseFile(v.Path)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(set, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
