// Command rentalctl is an operator tool: seed fixtures, browse the feed and inspect access tiers.
package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/example/rentalhub/internal/config"
	"github.com/example/rentalhub/internal/db"
	"github.com/example/rentalhub/internal/firebase"
	"github.com/example/rentalhub/internal/logging"
)

// env holds what every subcommand needs. It is filled by the root PersistentPreRunE.
type env struct {
	cfg      *config.Config
	logger   *zap.Logger
	clients  *firebase.Clients
	users    db.UserRepository
	listings db.ListingRepository
}

func (e *env) close() {
	if e.clients != nil {
		_ = e.clients.Close()
	}
	if e.logger != nil {
		_ = e.logger.Sync()
	}
}

func newRootCmd() *cobra.Command {
	e := &env{}
	var timeout time.Duration

	root := &cobra.Command{
		Use:           "rentalctl",
		Short:         "Operator tool for the Rentalhub backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if os.Getenv("GIN_MODE") != "release" {
				_ = godotenv.Load()
			}
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			logger, err := logging.New(cfg.IsRelease())
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			clients, err := firebase.Init(ctx, cfg, logger)
			if err != nil {
				return err
			}

			e.cfg, e.logger, e.clients = cfg, logger, clients
			e.users = db.NewFirestoreUserRepository(clients.Firestore)
			e.listings = db.NewFirestoreListingRepository(clients.Firestore)
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			e.close()
		},
	}
	root.PersistentFlags().DurationVar(&timeout, "init-timeout", 15*time.Second, "timeout for connecting to Firebase")

	root.AddCommand(newSeedCmd(e), newBrowseCmd(e), newTierCmd(e))
	return root
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		log.Fatalf("rentalctl: %v", err)
	}
}
