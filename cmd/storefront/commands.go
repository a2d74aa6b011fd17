package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/qkart/storefront/internal/app"
	"github.com/qkart/storefront/internal/domain"
	"github.com/qkart/storefront/internal/usecase"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func (c *cli) serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the storefront HTTP backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			srv, err := app.New(cmd.Context(), c.cfg, c.logger)
			if err != nil {
				return err
			}
			defer func() {
				if err := srv.Close(); err != nil {
					c.logger.Warn("close failed", zap.Error(err))
				}
			}()
			return srv.Run(cmd.Context())
		},
	}
}

func (c *cli) productsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "products",
		Short: "List the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			view, err := c.loadView(cmd)
			if err != nil {
				return err
			}
			defer view.Close()

			return c.printProducts(cmd.OutOrStdout(), view.Snapshot())
		},
	}
}

func (c *cli) searchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Search the catalog by name or category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			view, err := c.loadView(cmd)
			if err != nil {
				return err
			}
			defer view.Close()

			err = view.Search(cmd.Context(), args[0])
			flushNotifications(cmd, view)
			if err != nil {
				return err
			}
			return c.printProducts(cmd.OutOrStdout(), view.Snapshot())
		},
	}
}

func (c *cli) cartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cart",
		Short: "Show the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.token == "" {
				return domain.ErrNotLoggedIn
			}
			view, err := c.loadView(cmd)
			if err != nil {
				return err
			}
			defer view.Close()

			return c.printCart(cmd.OutOrStdout(), view.Snapshot())
		},
	}
}

func (c *cli) addCmd() *cobra.Command {
	var qty int

	cmd := &cobra.Command{
		Use:   "add <productId>",
		Short: "Add a product to the cart, or set its quantity with --qty",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			view, err := c.loadView(cmd)
			if err != nil {
				return err
			}
			defer view.Close()

			if cmd.Flags().Changed("qty") {
				err = view.SetQuantity(cmd.Context(), args[0], qty)
			} else {
				err = view.AddToCart(cmd.Context(), args[0])
			}
			flushNotifications(cmd, view)
			if err != nil {
				return err
			}
			return c.printCart(cmd.OutOrStdout(), view.Snapshot())
		},
	}
	cmd.Flags().IntVar(&qty, "qty", 1, "quantity to set; 0 removes the product")
	return cmd
}

func (c *cli) checkoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "checkout",
		Short: "Show the order details for the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.token == "" {
				return domain.ErrNotLoggedIn
			}
			view, err := c.loadView(cmd)
			if err != nil {
				return err
			}
			defer view.Close()

			checkout, err := view.Checkout()
			if err != nil {
				return err
			}
			return c.printCheckout(cmd.OutOrStdout(), checkout)
		},
	}
}

// flushNotifications prints the view's pending notifications to stderr
func flushNotifications(cmd *cobra.Command, view *usecase.StorefrontView) {
	for _, n := range view.DrainNotifications() {
		fmt.Fprintf(cmd.ErrOrStderr(), "[%s] %s\n", n.Variant, n.Message)
	}
}

func (c *cli) printProducts(w io.Writer, state usecase.ViewState) error {
	if c.jsonOut {
		return writeJSON(w, state.Products)
	}
	if state.NoProductsFound {
		_, err := fmt.Fprintln(w, usecase.MsgNoProductsFound)
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tCOST\tRATING")
	for _, p := range state.Products {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\n", p.ID, p.Name, p.Category, p.Cost, p.Rating)
	}
	return tw.Flush()
}

func (c *cli) printCart(w io.Writer, state usecase.ViewState) error {
	if c.jsonOut {
		return writeJSON(w, struct {
			Items []domain.CartLineItem `json:"items"`
			Total int64                 `json:"total"`
		}{state.CartItems, state.Total})
	}
	if len(state.CartItems) == 0 {
		_, err := fmt.Fprintln(w, "Cart is empty")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tQTY\tCOST\tSUBTOTAL")
	for _, item := range state.CartItems {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\n", item.ProductID, item.Name, item.Quantity, item.Cost, item.LineTotal())
	}
	fmt.Fprintf(tw, "\t\t\tTotal\t%d\n", state.Total)
	return tw.Flush()
}

func (c *cli) printCheckout(w io.Writer, checkout *domain.Checkout) error {
	if c.jsonOut {
		return writeJSON(w, checkout)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "Order Details")
	fmt.Fprintf(tw, "Products\t%d\n", checkout.ProductCount)
	fmt.Fprintf(tw, "Subtotal\t%d\n", checkout.Subtotal)
	fmt.Fprintf(tw, "Shipping Charges\t%d\n", checkout.ShippingCharges)
	fmt.Fprintf(tw, "Total\t%d\n", checkout.Total)
	return tw.Flush()
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
