package main

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/ssrmu/mujson/internal/account"
	"github.com/ssrmu/mujson/internal/mudb"
)

func init() {
	rootCmd.AddCommand(infoCmd)
}

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show database statistics",
	Long: `Display the database path and size, the number of accounts, total quota and
usage, and the state of the SQLite query index.`,
	Args: cobra.NoArgs,
	RunE: runInfo,
}

// InfoResponse is the response for the info command.
type InfoResponse struct {
	Path          string          `json:"path"`
	Size          int64           `json:"size"`
	Accounts      int             `json:"accounts"`
	Enabled       int             `json:"enabled"`
	TotalQuota    int64           `json:"total_quota"`
	TotalUpload   int64           `json:"total_upload"`
	TotalDownload int64           `json:"total_download"`
	OverQuota     int             `json:"over_quota"`
	Index         *mudb.IndexInfo `json:"index,omitempty"`
}

// summarize totals the counters of records.
func summarize(records []account.Record) InfoResponse {
	var resp InfoResponse
	resp.Accounts = len(records)
	for _, r := range records {
		if r.Enable {
			resp.Enabled++
		}
		resp.TotalQuota += r.TransferEnable
		resp.TotalUpload += r.U
		resp.TotalDownload += r.D
		if r.U+r.D >= r.TransferEnable {
			resp.OverQuota++
		}
	}
	return resp
}

func runInfo(cmd *cobra.Command, args []string) error {
	store, ix := mustOpenIndex()

	c, err := store.Load()
	if err != nil {
		exitWithError(exitCodeFor(err), "%v", err)
	}

	resp := summarize(c.Records)
	resp.Path = store.Path()
	if stat, err := os.Stat(store.Path()); err == nil {
		resp.Size = stat.Size()
	}
	if info, err := ix.Info(store.Path()); err == nil {
		resp.Index = info
	}

	if !humanOutput {
		outputJSON(resp)
		return nil
	}

	fmt.Printf("Database: %s (%s)\n\n", resp.Path, humanize.IBytes(uint64(resp.Size)))
	fmt.Printf("Accounts:   %s (%s enabled)\n", humanize.Comma(int64(resp.Accounts)), humanize.Comma(int64(resp.Enabled)))
	fmt.Printf("Quota:      %s\n", formatSize(resp.TotalQuota))
	fmt.Printf("Upload:     %s\n", formatSize(resp.TotalUpload))
	fmt.Printf("Download:   %s\n", formatSize(resp.TotalDownload))
	fmt.Printf("Over quota: %d\n", resp.OverQuota)

	if resp.Index != nil {
		fmt.Printf("\nIndex: %s", resp.Index.Path)
		if resp.Index.Size > 0 {
			fmt.Printf(" (%s)", humanize.IBytes(uint64(resp.Index.Size)))
		}
		fmt.Println()
		if resp.Index.InSync {
			fmt.Printf("Sync Status: In sync (%d accounts, %s)\n", resp.Index.Records, humanize.Time(resp.Index.LastSync))
		} else {
			fmt.Println("Sync Status: Out of sync (run 'mujson index')")
		}
	}
	return nil
}

// formatSize renders a byte total with binary units.
func formatSize(n int64) string {
	if n < 0 {
		return "-" + humanize.IBytes(uint64(-n))
	}
	return humanize.IBytes(uint64(n))
}
