package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/ssrmu/mujson/internal/account"
	"github.com/ssrmu/mujson/internal/mudb"
)

func TestSummarize(t *testing.T) {
	records := []account.Record{
		{User: "a", Enable: true, TransferEnable: 100, U: 60, D: 50},
		{User: "b", Enable: false, TransferEnable: 1000, U: 1, D: 2},
		{User: "c", Enable: true, TransferEnable: 10, U: 10},
	}

	got := summarize(records)
	if got.Accounts != 3 || got.Enabled != 2 {
		t.Errorf("Accounts/Enabled = %d/%d, want 3/2", got.Accounts, got.Enabled)
	}
	if got.TotalQuota != 1110 || got.TotalUpload != 71 || got.TotalDownload != 52 {
		t.Errorf("totals = %+v", got)
	}
	if got.OverQuota != 2 {
		t.Errorf("OverQuota = %d, want 2", got.OverQuota)
	}
}

func TestFormatSize(t *testing.T) {
	if got := formatSize(1024); got != "1.0 KiB" {
		t.Errorf("formatSize(1024) = %q", got)
	}
	if got := formatSize(-1024); got != "-1.0 KiB" {
		t.Errorf("formatSize(-1024) = %q", got)
	}
}

func TestOutputCSV_SelectOrder(t *testing.T) {
	res := &mudb.QueryResult{
		Columns: []string{"user", "port", "forbidden_port"},
		Rows:    []mudb.Row{{"user": "a", "port": int64(1), "forbidden_port": nil}},
	}

	var buf bytes.Buffer
	outputCSV(&buf, res)
	want := "user,port,forbidden_port\na,1,\n"
	if buf.String() != want {
		t.Errorf("outputCSV = %q, want %q", buf.String(), want)
	}

	buf.Reset()
	outputTable(&buf, res)
	header := strings.SplitN(buf.String(), "\n", 2)[0]
	if !strings.HasPrefix(header, "USER  PORT  FORBIDDEN_PORT") {
		t.Errorf("table header = %q", header)
	}
}

func TestCells(t *testing.T) {
	if formatCell(nil) != "" || formatCell(int64(8388)) != "8388" {
		t.Error("formatCell rendering")
	}
	if padRight("ab", 4) != "ab  " || padRight("abcd", 2) != "abcd" {
		t.Error("padRight")
	}
}
