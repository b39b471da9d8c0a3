// Command token mints capability tokens for devices that push sensor data.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/SkWeli/step-tracker/internal/auth"
	"github.com/SkWeli/step-tracker/internal/config"
)

func main() {
	if err := newRootCommand(config.Load).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type tokenCommand struct {
	loadConfig func() config.Config

	device string
	caps   []string
	ttl    string
}

func newRootCommand(loadConfig func() config.Config) *cobra.Command {
	tc := &tokenCommand{loadConfig: loadConfig}

	cmd := &cobra.Command{
		Use:           "token",
		Short:         "Mint a capability token for a tracking device",
		Long:          "Mint an HS256 token signed with JWT_SECRET that grants the listed capabilities (location, activity).",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          tc.run,
	}

	cmd.Flags().StringVarP(&tc.device, "device", "d", "", "Device id (required)")
	cmd.Flags().StringSliceVarP(&tc.caps, "caps", "c", []string{"location", "activity"}, "Granted capabilities (comma-separated)")
	cmd.Flags().StringVar(&tc.ttl, "ttl", auth.DefaultTokenTTL.String(), "Token lifetime")

	return cmd
}

func (tc *tokenCommand) run(cmd *cobra.Command, _ []string) error {
	if tc.device == "" {
		return fmt.Errorf("--device is required")
	}
	ttl, err := parseTTL(tc.ttl)
	if err != nil {
		return err
	}
	for _, c := range tc.caps {
		if !knownCapability(c) {
			return fmt.Errorf("unknown capability %q", c)
		}
	}

	cfg := tc.loadConfig()
	token, err := auth.NewService(cfg.JWTSecret).SignToken(tc.device, tc.caps, ttl)
	if err != nil {
		return fmt.Errorf("sign token: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}
