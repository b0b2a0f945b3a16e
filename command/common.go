package command

import (
	"fmt"
	"runtime"

	"github.com/frantjc/alticon"
	"github.com/spf13/cobra"
)

// SetCommon adds the -V flag to cmd, sets up its logger and
// silences cobra's own error and usage output.
func SetCommon(cmd *cobra.Command, version string) *cobra.Command {
	var verbosity int
	cmd.PersistentFlags().CountVarP(&verbosity, "verbose", "V", fmt.Sprintf("Verbosity for %s.", cmd.Name()))
	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		cmd.SetContext(alticon.WithLogger(cmd.Context(), alticon.NewLogger(cmd.ErrOrStderr(), verbosity)))
	}

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	cmd.Version = version
	cmd.SetVersionTemplate("{{ .Name }}{{ .Version }} " + runtime.Version() + "\n")

	return cmd
}
