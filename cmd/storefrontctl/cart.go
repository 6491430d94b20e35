package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/rollingtrayco/storefront/internal/domain"
	"github.com/rollingtrayco/storefront/internal/view"
	"github.com/spf13/cobra"
)

func cartCmd(build builder, opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Show or change the cart of a session",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the session cart, creating it when none exists",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, build, opts, func(ctx context.Context, a *app) error {
				c, err := a.carts.Resolve(ctx, opts.session)
				if err != nil {
					return err
				}
				return printCart(cmd.OutOrStdout(), c, opts.json)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "add [variant-id]",
		Short: "Add one unit of a variant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, build, opts, func(ctx context.Context, a *app) error {
				c, err := a.carts.AddLine(ctx, opts.session, args[0])
				if err != nil {
					return err
				}
				return printCart(cmd.OutOrStdout(), c, opts.json)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "remove [line-id]",
		Short: "Remove a cart line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, build, opts, func(ctx context.Context, a *app) error {
				c, err := a.carts.RemoveLine(ctx, opts.session, args[0])
				if err != nil {
					return err
				}
				return printCart(cmd.OutOrStdout(), c, opts.json)
			})
		},
	})

	return cmd
}

func printCart(w io.Writer, c *domain.Cart, asJSON bool) error {
	if asJSON {
		return writeJSON(w, c)
	}

	fmt.Fprintf(w, "Cart:     %s\n", c.ID)
	fmt.Fprintf(w, "Items:    %d\n", view.CartBadge(c))
	fmt.Fprintf(w, "Subtotal: %s\n", view.FormatPrice(c.Subtotal))
	if view.CheckoutEnabled(c) {
		fmt.Fprintf(w, "Checkout: %s\n", c.CheckoutURL)
	}

	if c.IsEmpty() {
		fmt.Fprintln(w, view.EmptyCartMessage)
		return nil
	}

	fmt.Fprintln(w)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "LINE\tPRODUCT\tQTY\tPRICE")
	for _, l := range c.Lines {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", l.ID, l.Merchandise.ProductTitle, l.Quantity, view.FormatPrice(l.Merchandise.UnitPrice))
	}
	return tw.Flush()
}
