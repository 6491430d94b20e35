package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/rollingtrayco/storefront/internal/catalog"
	"github.com/rollingtrayco/storefront/internal/domain"
	"github.com/rollingtrayco/storefront/internal/view"
	"github.com/spf13/cobra"
)

func productsCmd(build builder, opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "products",
		Short: "List the products shown on the storefront grid",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, build, opts, func(ctx context.Context, a *app) error {
				products, err := a.catalog.FetchProductList(ctx)
				if errors.Is(err, catalog.ErrNoProducts) {
					products = []domain.Product{}
				} else if err != nil {
					return err
				}

				if opts.json {
					return writeJSON(cmd.OutOrStdout(), products)
				}
				if len(products) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), view.GridEmptyMessage)
					return nil
				}
				return printProducts(cmd.OutOrStdout(), products)
			})
		},
	}
}

func productCmd(build builder, opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "product [handle]",
		Short: "Show one product by handle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, build, opts, func(ctx context.Context, a *app) error {
				p, err := a.catalog.FetchProductDetail(ctx, args[0])
				if err != nil {
					return fmt.Errorf("product %q: %w", args[0], err)
				}

				if opts.json {
					return writeJSON(cmd.OutOrStdout(), p)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Title:    %s\n", p.Title)
				fmt.Fprintf(out, "Handle:   %s\n", p.Handle)
				fmt.Fprintf(out, "Price:    %s\n", view.FormatPrice(p.Price))
				fmt.Fprintf(out, "Variant:  %s\n", p.Variant.ID)
				fmt.Fprintf(out, "In stock: %s\n", stockLabel(p))
				fmt.Fprintf(out, "Images:   %d\n", len(p.Images))
				return nil
			})
		},
	}
}

func printProducts(w io.Writer, products []domain.Product) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "HANDLE\tTITLE\tPRICE\tSTOCK\tVARIANT")
	for i := range products {
		p := &products[i]
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", p.Handle, p.Title, view.FormatPrice(p.Price), stockLabel(p), p.Variant.ID)
	}
	return tw.Flush()
}

func stockLabel(p *domain.Product) string {
	if p.InStock() {
		return "yes"
	}
	return "sold out"
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
