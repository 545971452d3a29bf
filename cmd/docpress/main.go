package main

import (
	"fmt"
	"log/slog"

	"github.com/alecthomas/kong"

	"github.com/docpress/docpress/cmd/docpress/commands"
	ferrors "github.com/docpress/docpress/internal/foundation/errors"
	"github.com/docpress/docpress/internal/version"
)

func main() {
	cli := commands.CLI{}
	ctx := kong.Parse(&cli,
		kong.Name("docpress"),
		kong.Description("Turn a git-backed content store into static-site pre-render inputs."),
		kong.UsageOnError(),
		kong.Vars{
			"version": fmt.Sprintf("docpress %s (commit %s, built %s)",
				version.Version, version.GitCommit, version.BuildTime),
		},
	)
	if err := ctx.Run(&commands.Global{}); err != nil {
		ferrors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).HandleError(err)
	}
}
