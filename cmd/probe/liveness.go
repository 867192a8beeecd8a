package probe

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newLiveness() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "liveness",
		Short: "Probes the server liveness endpoint",
		Long: `Issues a GET request against the management liveness endpoint
and exits non-zero unless the server reports healthy.`,
		Run: func(cmd *cobra.Command, _ []string) {
			verbose, err := cmd.Flags().GetBool(verboseFlag)
			if err != nil {
				log.Fatal().Err(err).Msg("Failed to parse verbose flag")
			}

			runProbe("/-/healthy", verbose)
		},
	}

	cmd.Flags().BoolP(verboseFlag, "v", false, "Print the response body")

	return cmd
}
