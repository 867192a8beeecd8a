package probe

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github/chapool/hw-bridge/internal/config"
)

const probeTimeout = 5 * time.Second

func newReadiness() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "readiness",
		Short: "Probes the server readiness endpoint",
		Long: `Issues a GET request against the management readiness endpoint
and exits non-zero unless the server reports ready.`,
		Run: func(cmd *cobra.Command, _ []string) {
			verbose, err := cmd.Flags().GetBool(verboseFlag)
			if err != nil {
				log.Fatal().Err(err).Msg("Failed to parse verbose flag")
			}

			runProbe("/-/ready", verbose)
		},
	}

	cmd.Flags().BoolP(verboseFlag, "v", false, "Print the response body")

	return cmd
}

func runProbe(path string, verbose bool) {
	cfg := config.DefaultServiceConfigFromEnv()

	listenAddress := cfg.Echo.ListenAddress
	if strings.HasPrefix(listenAddress, ":") {
		listenAddress = "localhost" + listenAddress
	}

	url := fmt.Sprintf("http://%s%s", listenAddress, path)

	client := &http.Client{Timeout: probeTimeout}

	res, err := client.Get(url)
	if err != nil {
		log.Fatal().Err(err).Str("url", url).Msg("Probe request failed")
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		log.Fatal().Err(err).Str("url", url).Msg("Failed to read probe response")
	}

	if verbose {
		fmt.Println(string(body))
	}

	if res.StatusCode != http.StatusOK {
		log.Fatal().Int("status", res.StatusCode).Str("url", url).Msg("Probe failed")
	}
}
