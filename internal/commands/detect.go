package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nvrdash/nvrdash/internal/logging"
)

var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Resolve host identity once and print it as JSON",
	Long: `Run every hardware, network, storage and container-identity
probe once and print the resolved result. Useful for verifying what the
dashboard can see from inside its sandbox.`,
	RunE: runDetect,
}

func runDetect(cmd *cobra.Command, args []string) error {
	log := logging.New(cfg.Logging)

	resolver, _, docker := buildServices(cfg, log)
	if docker != nil {
		defer docker.Close()
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	out := map[string]interface{}{
		"hardware":    resolver.Hardware(ctx),
		"accelerator": resolver.Accelerator(ctx),
		"network":     resolver.Network(ctx),
	}

	if identity, err := resolver.Identity(ctx); err == nil {
		out["identity"] = identity
	} else {
		log.Warn().Err(err).Msg("container identity unresolved")
	}

	if devices, err := resolver.Storage(ctx); err == nil {
		out["storage"] = devices
	} else {
		log.Warn().Err(err).Msg("storage enumeration failed")
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
