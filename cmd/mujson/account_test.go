package main

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/ssrmu/mujson/internal/account"
)

// parseFlags registers the account flags on a fresh set and parses args.
func parseFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("mujson", pflag.ContinueOnError)
	registerAccountFlags(fs)
	if err := fs.Parse(args); err != nil {
		t.Fatalf("Parse(%v): %v", args, err)
	}
	return fs
}

func TestParseAction(t *testing.T) {
	tests := []struct {
		args    []string
		want    action
		wantErr bool
	}{
		{nil, actionNone, false},
		{[]string{"-a"}, actionAdd, false},
		{[]string{"-d"}, actionDelete, false},
		{[]string{"-e"}, actionEdit, false},
		{[]string{"-c"}, actionClear, false},
		{[]string{"-l"}, actionList, false},
		{[]string{"--list"}, actionList, false},
		{[]string{"-a", "-d"}, actionNone, true},
	}

	for _, tt := range tests {
		got, err := parseAction(parseFlags(t, tt.args...))
		if (err != nil) != tt.wantErr {
			t.Errorf("parseAction(%v) error = %v, wantErr %v", tt.args, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("parseAction(%v) = %v, want %v", tt.args, got, tt.want)
		}
	}
}

func TestBuildPatch(t *testing.T) {
	fs := parseFlags(t, "-a", "-u", "alice", "-p", "8388", "-k", "pw", "-m", "chacha20",
		"-O", "origin", "-o", "plain", "-t", "10", "-f", "1-79,81-100")

	p, err := buildPatch(fs)
	if err != nil {
		t.Fatalf("buildPatch: %v", err)
	}

	if p.User == nil || *p.User != "alice" {
		t.Errorf("User = %v", p.User)
	}
	if p.Port == nil || *p.Port != 8388 {
		t.Errorf("Port = %v", p.Port)
	}
	if p.Passwd == nil || *p.Passwd != "pw" {
		t.Errorf("Passwd = %v", p.Passwd)
	}
	if p.Method == nil || *p.Method != "chacha20" {
		t.Errorf("Method = %v", p.Method)
	}
	if p.Protocol == nil || *p.Protocol != "origin" {
		t.Errorf("Protocol = %v", p.Protocol)
	}
	if p.Obfs == nil || *p.Obfs != "plain" {
		t.Errorf("Obfs = %v", p.Obfs)
	}
	if p.TransferEnable == nil || *p.TransferEnable != 10*account.GiB {
		t.Errorf("TransferEnable = %v", p.TransferEnable)
	}
	if p.ForbiddenPort == nil || *p.ForbiddenPort != "1-79,81-100" {
		t.Errorf("ForbiddenPort = %v", p.ForbiddenPort)
	}
	if p.U != nil || p.D != nil || p.Enable != nil {
		t.Error("counters and enable are never set from flags")
	}
}

func TestBuildPatch_OnlyChangedFields(t *testing.T) {
	p, err := buildPatch(parseFlags(t, "-l", "-p", "0"))
	if err != nil {
		t.Fatalf("buildPatch: %v", err)
	}
	if p.Port == nil || *p.Port != 0 {
		t.Errorf("explicit port 0 should be present: %v", p.Port)
	}
	if p.User != nil || p.Passwd != nil || p.TransferEnable != nil {
		t.Errorf("unset flags should be absent: %+v", p)
	}

	p, err = buildPatch(parseFlags(t, "-l"))
	if err != nil {
		t.Fatalf("buildPatch: %v", err)
	}
	if !p.IsEmpty() {
		t.Errorf("no field flags should give an empty patch: %+v", p)
	}
}

func TestBuildPatch_BadTransfer(t *testing.T) {
	if _, err := buildPatch(parseFlags(t, "-e", "-u", "a", "-t", "lots")); err == nil {
		t.Error("expected error for non-numeric transfer")
	}
}

func TestParseTransfer(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"1", 1073741824},
		{"0", 0},
		{"1.5", 1610612736},
		{"0.5", 536870912},
		{"1048576", 1125899906842624},
		{"8589934591", 8589934591 * 1073741824},
	}
	for _, tt := range tests {
		got, err := parseTransfer(tt.in)
		if err != nil {
			t.Errorf("parseTransfer(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parseTransfer(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestParseTransfer_OutOfRange(t *testing.T) {
	for _, in := range []string{"-1", "-0.5", "8589934592", "10000000000", "1e10", "9e18", "NaN", "Inf", "ten"} {
		if got, err := parseTransfer(in); err == nil {
			t.Errorf("parseTransfer(%q) = %d, want error", in, got)
		}
	}
}

func TestPrepareSelector(t *testing.T) {
	t.Run("add defaults user to port", func(t *testing.T) {
		p := account.Patch{Port: account.Ptr(8388)}
		if err := prepareSelector(actionAdd, &p); err != nil {
			t.Fatalf("prepareSelector: %v", err)
		}
		if p.User == nil || *p.User != "8388" {
			t.Errorf("User = %v, want \"8388\"", p.User)
		}
	})

	t.Run("add keeps given user", func(t *testing.T) {
		p := account.Patch{User: account.Ptr("alice"), Port: account.Ptr(8388)}
		if err := prepareSelector(actionAdd, &p); err != nil {
			t.Fatalf("prepareSelector: %v", err)
		}
		if *p.User != "alice" {
			t.Errorf("User = %q", *p.User)
		}
	})

	t.Run("add requires port", func(t *testing.T) {
		p := account.Patch{User: account.Ptr("alice")}
		if err := prepareSelector(actionAdd, &p); err != errNeedPort {
			t.Errorf("error = %v, want %v", err, errNeedPort)
		}
	})

	for _, act := range []action{actionEdit, actionDelete} {
		p := account.Patch{Passwd: account.Ptr("x")}
		if err := prepareSelector(act, &p); err != errNeedUser {
			t.Errorf("action %v without user/port: error = %v, want %v", act, err, errNeedUser)
		}
		p.Port = account.Ptr(1)
		if err := prepareSelector(act, &p); err != nil {
			t.Errorf("action %v with port: %v", act, err)
		}
	}

	for _, act := range []action{actionClear, actionList} {
		p := account.Patch{}
		if err := prepareSelector(act, &p); err != nil {
			t.Errorf("action %v with empty selector: %v", act, err)
		}
	}
}

func TestResultResponse(t *testing.T) {
	miss := resultResponse("deleted", account.Result{Outcome: account.NotMatched})
	if miss.Status != "not_found" || miss.Account != nil {
		t.Errorf("miss = %+v", miss)
	}

	hit := resultResponse("deleted", account.Result{Outcome: account.Matched, Record: account.Record{User: "a"}})
	if hit.Status != "deleted" || hit.Account == nil || hit.Account.User != "a" {
		t.Errorf("hit = %+v", hit)
	}
}
