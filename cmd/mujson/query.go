package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/ssrmu/mujson/internal/mudb"
)

var queryCSV bool
var queryJSONL bool

func init() {
	rootCmd.AddCommand(queryCmd)
	queryCmd.Flags().BoolVar(&queryCSV, "csv", false, "Output CSV")
	queryCmd.Flags().BoolVar(&queryJSONL, "jsonl", false, "Output JSONL")
}

var queryCmd = &cobra.Command{
	Use:   "query <sql>",
	Short: "Query the accounts using SQL",
	Long: `Execute a read-only SQL query against the SQLite index of the accounts.

The index is refreshed first if the database changed. The table is named
accounts and has one row per account with a position column giving its
order in the file.

Examples:
  # Accounts over quota
  mujson query "SELECT user, port FROM accounts WHERE u + d > transfer_enable"

  # Disabled accounts
  mujson query "SELECT user, port FROM accounts WHERE enable = 0" --human

  # Output formats
  mujson query "SELECT user, u, d FROM accounts" --csv
  mujson query "SELECT user, u, d FROM accounts" --jsonl`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func runQuery(cmd *cobra.Command, args []string) error {
	store, ix := mustOpenIndex()

	if _, err := ix.Sync(store); err != nil {
		exitWithError(exitCodeFor(err), "refreshing index: %v", err)
	}

	res, err := ix.Query(args[0])
	if err != nil {
		exitWithError(ExitError, "SQL error: %v", err)
	}

	switch {
	case queryCSV:
		outputCSV(os.Stdout, res)
	case queryJSONL:
		outputJSONL(os.Stdout, res)
	case humanOutput:
		outputTable(os.Stdout, res)
	default:
		rows := res.Rows
		if rows == nil {
			rows = []mudb.Row{}
		}
		outputJSON(rows)
	}
	return nil
}

// outputCSV writes rows as CSV with columns in SELECT order.
func outputCSV(w io.Writer, res *mudb.QueryResult) {
	if len(res.Rows) == 0 {
		return
	}

	cw := csv.NewWriter(w)
	cw.Write(res.Columns)
	for _, row := range res.Rows {
		var rec []string
		for _, col := range res.Columns {
			rec = append(rec, formatCell(row[col]))
		}
		cw.Write(rec)
	}
	cw.Flush()
}

// outputJSONL writes rows as JSONL.
func outputJSONL(w io.Writer, res *mudb.QueryResult) {
	for _, row := range res.Rows {
		data, _ := json.Marshal(row)
		fmt.Fprintln(w, string(data))
	}
}

// outputTable writes rows as a formatted table with columns in SELECT order.
func outputTable(w io.Writer, res *mudb.QueryResult) {
	if len(res.Rows) == 0 {
		fmt.Fprintln(w, "(0 rows)")
		return
	}

	cols := res.Columns

	widths := make(map[string]int)
	for _, col := range cols {
		widths[col] = len(col)
	}
	for _, row := range res.Rows {
		for _, col := range cols {
			if n := len(formatCell(row[col])); n > widths[col] {
				widths[col] = n
			}
		}
	}

	// Cap column widths at 40 characters
	for col := range widths {
		if widths[col] > 40 {
			widths[col] = 40
		}
	}

	var header []string
	for _, col := range cols {
		header = append(header, padRight(strings.ToUpper(col), widths[col]))
	}
	fmt.Fprintln(w, strings.Join(header, "  "))

	for _, row := range res.Rows {
		var line []string
		for _, col := range cols {
			val := formatCell(row[col])
			if len(val) > widths[col] {
				val = val[:widths[col]-3] + "..."
			}
			line = append(line, padRight(val, widths[col]))
		}
		fmt.Fprintln(w, strings.Join(line, "  "))
	}

	fmt.Fprintf(w, "(%d rows)\n", len(res.Rows))
}

// formatCell renders a SQL value; NULL prints as an empty cell.
func formatCell(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%v", v)
}
