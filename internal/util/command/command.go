package command

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// NewSubcommandGroup returns a cobra command that only exists to group its
// subcommands and prints usage when called directly.
func NewSubcommandGroup(name string, subcommands ...*cobra.Command) *cobra.Command {
	cmd := &cobra.Command{
		Use: name,
		Run: func(cmd *cobra.Command, _ []string) {
			if err := cmd.Help(); err != nil {
				log.Error().Err(err).Msg("Failed to print help")
			}
		},
	}

	cmd.AddCommand(subcommands...)

	return cmd
}
