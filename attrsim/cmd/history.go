package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sarchlab/attrsim/datarecording"
	"github.com/sarchlab/attrsim/tracing"
)

func newHistoryCmd() *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Print the attribute events of a recording.",
		Long: "`history --db run.sqlite3` lists the events recorded by " +
			"`run`, in simulated time order.",
		Args: cobra.NoArgs,
		RunE: printHistory,
	}

	historyCmd.Flags().String("db", "", "The SQLite file written by run.")
	_ = historyCmd.MarkFlagRequired("db")
	historyCmd.Flags().String("attribute", "", "Only show this attribute.")
	historyCmd.Flags().String("what", "",
		"Only show this kind of event, such as recharge or stop.")
	historyCmd.Flags().Int("limit", 50,
		"The maximum number of events to show. 0 shows all.")

	return historyCmd
}

func printHistory(cmd *cobra.Command, _ []string) error {
	dbFile, _ := cmd.Flags().GetString("db")
	attrName, _ := cmd.Flags().GetString("attribute")
	what, _ := cmd.Flags().GetString("what")
	limit, _ := cmd.Flags().GetInt("limit")

	reader, err := datarecording.NewReader(dbFile)
	if err != nil {
		return err
	}
	defer reader.Close()

	reader.MapTable(tracing.AttributeEventTable, tracing.AttributeEvent{})

	params := datarecording.QueryParams{
		OrderBy: "Time, rowid",
		Limit:   limit,
	}

	var conds []string
	if attrName != "" {
		conds = append(conds, "Attribute = ?")
		params.Args = append(params.Args, attrName)
	}

	if what != "" {
		conds = append(conds, "What = ?")
		params.Args = append(params.Args, what)
	}

	params.Where = strings.Join(conds, " AND ")

	rows, total, err := reader.Query(cmd.Context(),
		tracing.AttributeEventTable, params)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tATTRIBUTE\tEVENT\tVALUE\tDETAIL")

	for _, row := range rows {
		e := row.(*tracing.AttributeEvent)
		fmt.Fprintf(tw, "%.10f\t%s\t%s\t%s\t%s\n",
			e.Time, e.Attribute, e.What, e.Value, e.Detail)
	}

	tw.Flush()

	if len(rows) < total {
		fmt.Fprintf(cmd.OutOrStdout(), "... %d of %d events shown\n",
			len(rows), total)
	}

	return nil
}
