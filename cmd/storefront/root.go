package main

import (
	"fmt"

	"github.com/qkart/storefront/config"
	"github.com/qkart/storefront/internal/app"
	"github.com/qkart/storefront/internal/domain"
	"github.com/qkart/storefront/internal/platform/logger"
	"github.com/qkart/storefront/internal/usecase"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// cliSession is the session id used for the CLI's single user
const cliSession = "cli"

type cli struct {
	token   string
	verbose bool
	jsonOut bool

	cfg    *config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "storefront",
		Short: "QKart storefront client and backend-for-frontend",
		Long: `storefront browses the QKart catalog and manages a cart against the shop API.

The shop API base URL comes from STOREFRONT_SHOP_BASE_URL or config.yaml.
Cart commands authenticate with --token or STOREFRONT_TOKEN.
Notifications are printed to stderr.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.logger != nil {
				_ = c.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&c.token, "token", "", "bearer token for cart requests (default $STOREFRONT_TOKEN)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().BoolVar(&c.jsonOut, "json", false, "print results as JSON")

	root.AddCommand(
		c.serveCmd(),
		c.productsCmd(),
		c.searchCmd(),
		c.cartCmd(),
		c.addCmd(),
		c.checkoutCmd(),
	)
	return root
}

func (c *cli) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	c.cfg = cfg

	if c.token == "" {
		c.token = config.LookupToken()
	}

	level := "warn"
	if c.verbose {
		level = "debug"
	}
	if cmd.Name() == "serve" {
		level = cfg.Log.Level
	}
	c.logger, err = logger.New(logger.Options{
		Environment: cfg.Server.Environment,
		Level:       level,
		Service:     "storefront",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

// session returns the CLI user's session, nil without a token
func (c *cli) session() *domain.Session {
	if c.token == "" {
		return nil
	}
	return &domain.Session{ID: cliSession, Username: cliSession, Token: c.token}
}

// loadView builds a storefront view and loads the catalog and cart.
// Notifications raised while loading go to stderr.
func (c *cli) loadView(cmd *cobra.Command) (*usecase.StorefrontView, error) {
	svc := usecase.NewStorefrontService(app.NewShopClient(c.cfg, c.logger), c.logger)
	view := usecase.NewStorefrontView(svc, c.session(), app.ViewOptions(c.cfg))

	err := view.Load(cmd.Context())
	flushNotifications(cmd, view)
	if err != nil {
		view.Close()
		return nil, err
	}
	return view, nil
}
