package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/nvrdash/nvrdash/internal/api"
	"github.com/nvrdash/nvrdash/internal/backup"
	"github.com/nvrdash/nvrdash/internal/config"
	"github.com/nvrdash/nvrdash/internal/logging"
	"github.com/nvrdash/nvrdash/internal/probe"
	"github.com/nvrdash/nvrdash/internal/resolve"
	"github.com/nvrdash/nvrdash/internal/stats"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the dashboard API server",
	Long:  `Start the HTTP API server with Echo framework`,
	RunE:  runServer,
}

// buildServices wires the probes, resolvers and aggregator. A dead
// runtime socket is tolerated; runtime-backed facts then resolve to
// their absent values.
func buildServices(cfg *config.Config, log zerolog.Logger) (*resolve.Service, *stats.Aggregator, *probe.Docker) {
	docker, err := probe.NewDocker(cfg.Docker.Socket, cfg.Docker.Timeout)
	if err != nil {
		log.Warn().Err(err).Msg("container runtime client unavailable")
		docker = nil
	}

	resolver := resolve.NewService(resolve.Options{
		HostRoot:              cfg.Hardware.HostRoot,
		AcceleratorDevice:     cfg.Hardware.AcceleratorDevice,
		AcceleratorDriver:     cfg.Hardware.AcceleratorDriver,
		AcceleratorVendor:     cfg.Hardware.AcceleratorVendor,
		BackupMount:           cfg.Hardware.BackupMount,
		ServiceName:           cfg.Docker.ServiceName,
		ContainerNameOverride: cfg.Docker.ContainerNameOverride,
		StaticNetwork: resolve.StaticNetwork{
			IP:      cfg.Network.IPOverride,
			Gateway: cfg.Network.Gateway,
			Subnet:  cfg.Network.Subnet,
		},
		InterfacePriority: cfg.Network.InterfacePriority,
		ProbeTimeout:      cfg.Cache.ProbeTimeout,
		HardwareTTL:       cfg.Cache.HardwareTTL,
		NetworkTTL:        cfg.Cache.NetworkTTL,
	}, docker, log)

	aggregator := stats.NewAggregator(cfg, resolver, docker, log)
	return resolver, aggregator, docker
}

func runServer(cmd *cobra.Command, args []string) error {
	log := logging.New(cfg.Logging)

	resolver, aggregator, docker := buildServices(cfg, log)

	backupProxy, err := backup.New(cfg.Backup)
	if err != nil {
		log.Warn().Err(err).Msg("backup proxy unavailable")
		backupProxy = nil
	}

	server := api.New(cfg, resolver, aggregator, docker, backupProxy, log)

	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
		syscall.SIGQUIT,
	)
	defer stop()

	errChan := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(
			context.Background(),
			cfg.Server.ShutdownTimeout,
		)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		return nil

	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	}
}
