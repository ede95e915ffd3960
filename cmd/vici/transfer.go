package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jaekwang-park/vici/internal/transfer"
)

func exportCmd(a *app) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write all tasks to a dated JSON file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.loadStore(cmd.Context())
			if err != nil {
				return err
			}
			if dir == "-" {
				return transfer.Export(a.out, st.Tasks())
			}
			path, err := transfer.ExportFile(dir, st.Tasks(), time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%s Exported %d tasks to %s\n", boldGreen("✓"), len(st.Tasks()), path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&dir, "dir", "d", ".", `Target directory, or "-" for stdout`)
	return cmd
}

func importCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Create tasks from an exported JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening %s: %w", args[0], err)
			}
			defer f.Close()

			parsed, err := transfer.ImportDetailed(f)
			if err != nil {
				a.logger.Debug("import parse failed", "file", args[0], "error", err)
				return errors.New(transfer.Message(err))
			}
			if parsed.Dropped > 0 {
				fmt.Fprintf(a.errOut, "%s skipped %d malformed entries\n", yellow("!"), parsed.Dropped)
			}

			res, err := a.newStore().ImportBatch(cmd.Context(), parsed.Tasks)
			for _, it := range res.Items {
				if it.OK() {
					fmt.Fprintf(a.out, "%s %3d. %s %s\n", green("✓"), it.Index+1, it.Task.Task, dim(it.Created.ID))
					continue
				}
				fmt.Fprintf(a.out, "%s %3d. %s %s\n", red("✗"), it.Index+1, it.Task.Task, dim(it.Err.Error()))
			}
			if err != nil {
				return err
			}
			if failed := len(res.Failed()); failed > 0 {
				return fmt.Errorf("%d of %d tasks failed to import", failed, len(res.Items))
			}
			return nil
		},
	}
}
