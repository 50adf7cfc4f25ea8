package main

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/example/rentalhub/internal/core"
	"github.com/example/rentalhub/internal/feed"
	"github.com/example/rentalhub/internal/models"
)

func newBrowseCmd(e *env) *cobra.Command {
	var (
		status   string
		pageSize int
		pages    int
		search   string
	)
	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Page through the listings feed the way the web client does",
		RunE: func(cmd *cobra.Command, _ []string) error {
			// FetchPage only touches the listing repository.
			svc := core.NewListingService(e.listings, e.users, nil, nil, nil, 0, nil, e.logger)
			ctrl := feed.NewController(svc, pageSize)

			ctx := cmd.Context()
			if err := ctrl.ApplyFilter(ctx, models.ListingFilter{Status: models.ListingStatus(status)}); err != nil {
				return err
			}
			for i := 1; i < pages; i++ {
				err := ctrl.LoadMore(ctx)
				if errors.Is(err, feed.ErrNoMore) {
					break
				}
				if err != nil {
					return err
				}
			}

			snap := ctrl.Snapshot()
			printListings(cmd.OutOrStdout(), ctrl.Visible(search))
			fmt.Fprintf(cmd.OutOrStdout(), "\nloaded=%d hasMore=%t cursor=%s\n", len(snap.Items), snap.HasMore, snap.Cursor)
			return nil
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "filter by status (available, taken, withdrawn)")
	cmd.Flags().IntVar(&pageSize, "page-size", core.DefaultPageSize, "listings per page")
	cmd.Flags().IntVar(&pages, "pages", 1, "number of pages to load")
	cmd.Flags().StringVar(&search, "search", "", "case-insensitive filter on title and description")
	return cmd
}

func printListings(w io.Writer, listings []*models.Listing) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tPRICE\tSTATUS\tCREATED")
	for _, l := range listings {
		fmt.Fprintf(tw, "%s\t%s\t%.2f\t%s\t%s\n", l.ID, l.Title, l.Price, l.Status, l.CreatedAt.Format("2006-01-02 15:04"))
	}
	tw.Flush()
}
