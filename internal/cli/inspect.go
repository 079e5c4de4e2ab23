package cli

import (
	"fmt"
	"strconv"

	"github.com/Rokon-556/recipe-gen/pkg/archive"
	"github.com/spf13/cobra"
)

// NewInspectCmd creates the inspect command.
func NewInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect ARCHIVE",
		Short: "List the images inside an exported archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd, args[0])
		},
	}

	return cmd
}

func runInspect(cmd *cobra.Command, path string) error {
	entries, err := archive.List(cmd.Context(), path)
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(entries))
	var total int64
	for _, e := range entries {
		rows = append(rows, []string{e.Path, strconv.FormatInt(e.Size, 10)})
		total += e.Size
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintln(out, renderTable([]string{"NAME", "BYTES"}, rows, []columnAlignment{alignLeft, alignRight}))
	_, _ = fmt.Fprintf(out, "%d image(s), %d bytes\n", len(entries), total)
	return nil
}
