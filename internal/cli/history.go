package cli

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/piwi3910/HoleCut/internal/model"
)

func newHistoryCommand(g *globals) *cobra.Command {
	var (
		document string
		batchID  string
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "list journaled placement batches",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := g.requireJournal()
			if err != nil {
				return err
			}
			defer s.Close()

			if batchID != "" {
				b, err := s.Batch(batchID)
				if err != nil {
					return err
				}
				printBatchDetail(cmd.OutOrStdout(), b)
				return nil
			}

			batches, err := s.Batches(document)
			if err != nil {
				return err
			}
			if len(batches) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no batches")
				return nil
			}
			return printBatchTable(cmd.OutOrStdout(), batches)
		},
	}
	cmd.Flags().StringVarP(&document, "document", "d", "", "only batches targeting this document")
	cmd.Flags().StringVar(&batchID, "batch", "", "show the placements and failures of one batch")
	return cmd
}

func printBatchTable(w io.Writer, batches []model.BatchResult) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDOCUMENT\tSTATE\tSTARTED\tOPENINGS\tFAILURES")
	for _, b := range batches {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\n",
			b.ID, b.Document, b.State, b.StartedAt.Local().Format(time.DateTime), b.OpeningCount(), len(b.Failures))
	}
	return tw.Flush()
}

func printBatchDetail(w io.Writer, b model.BatchResult) {
	printBatch(w, b)
	for _, p := range b.Placements {
		fmt.Fprintf(w, "  opening %s: run %s, wall %s at (%.3f, %.3f, %.3f), %.3f x %.3f\n",
			p.OpeningID, p.RunID, p.WallID, p.Position.X, p.Position.Y, p.Position.Z, p.Width, p.Height)
	}
}
