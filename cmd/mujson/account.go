package main

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/ssrmu/mujson/internal/account"
	"github.com/ssrmu/mujson/internal/config"
)

// action is the operation selected by one of the action flags.
type action int

const (
	actionNone action = iota
	actionAdd
	actionDelete
	actionEdit
	actionClear
	actionList
)

// actionFlags maps each action flag name to its action.
var actionFlags = []struct {
	name      string
	shorthand string
	usage     string
	action    action
}{
	{"add", "a", "Add a user", actionAdd},
	{"delete", "d", "Delete a user", actionDelete},
	{"edit", "e", "Edit a user", actionEdit},
	{"clear", "c", "Set u/d to zero", actionClear},
	{"list", "l", "Display a user's information or all users", actionList},
}

var (
	errNeedPort    = errors.New("you have to set the port with -p")
	errNeedUser    = errors.New("you have to set the user name or port with -u/-p")
	errManyActions = errors.New("only one of -a, -d, -e, -c, -l may be given")
)

// registerAccountFlags adds the action and field flags to fs.
func registerAccountFlags(fs *pflag.FlagSet) {
	for _, f := range actionFlags {
		fs.BoolP(f.name, f.shorthand, false, f.usage)
	}
	fs.StringP("user", "u", "", "The user name")
	fs.IntP("port", "p", 0, "Server port")
	fs.StringP("passwd", "k", "", "Password")
	fs.StringP("method", "m", "", "Encryption method, default: "+account.DefaultMethod)
	fs.StringP("protocol", "O", "", "Protocol plugin, default: "+account.DefaultProtocol)
	fs.StringP("obfs", "o", "", "Obfs plugin, default: "+account.DefaultObfs)
	fs.StringP("transfer", "t", "", "Max transfer in G bytes, default: 1048576, can be a float")
	fs.StringP("forbidden-port", "f", "", `Forbidden ports, e.g. "1-79,81-100"`)
}

// parseAction returns the single action requested in fs.
func parseAction(fs *pflag.FlagSet) (action, error) {
	selected := actionNone
	for _, f := range actionFlags {
		on, err := fs.GetBool(f.name)
		if err != nil {
			return actionNone, err
		}
		if !on {
			continue
		}
		if selected != actionNone {
			return actionNone, errManyActions
		}
		selected = f.action
	}
	return selected, nil
}

// buildPatch turns the field flags that were set into a patch.
func buildPatch(fs *pflag.FlagSet) (account.Patch, error) {
	var p account.Patch

	str := func(name string) *string {
		if !fs.Changed(name) {
			return nil
		}
		v, _ := fs.GetString(name)
		return &v
	}

	p.User = str("user")
	p.Passwd = str("passwd")
	p.Method = str("method")
	p.Protocol = str("protocol")
	p.Obfs = str("obfs")
	p.ForbiddenPort = str("forbidden-port")

	if fs.Changed("port") {
		port, err := fs.GetInt("port")
		if err != nil {
			return p, err
		}
		p.Port = &port
	}

	if t := str("transfer"); t != nil {
		bytes, err := parseTransfer(*t)
		if err != nil {
			return p, err
		}
		p.TransferEnable = &bytes
	}

	return p, nil
}

// maxTransferGB is the largest whole quota in GiB whose byte count fits an
// int64.
const maxTransferGB = math.MaxInt64 / account.GiB

// parseTransfer converts a quota given in GiB, integer or float, to bytes.
// Negative quotas and quotas overflowing int64 bytes are rejected.
func parseTransfer(s string) (int64, error) {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		if n < 0 || n > maxTransferGB {
			return 0, fmt.Errorf("invalid transfer %q: must be between 0 and %d G bytes", s, maxTransferGB)
		}
		return n * account.GiB, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid transfer %q: must be a number of G bytes", s)
	}
	if !(f >= 0) || f*float64(account.GiB) >= math.MaxInt64 {
		return 0, fmt.Errorf("invalid transfer %q: must be between 0 and %d G bytes", s, maxTransferGB)
	}
	return config.GBToBytes(f), nil
}

// prepareSelector checks the fields each action requires. For add, a missing
// user defaults to the port number.
func prepareSelector(act action, p *account.Patch) error {
	switch act {
	case actionAdd:
		if p.Port == nil {
			return errNeedPort
		}
		if p.User == nil {
			p.User = account.Ptr(strconv.Itoa(*p.Port))
		}
	case actionDelete, actionEdit:
		if !p.HasKey() {
			return errNeedUser
		}
	}
	return nil
}

func runAccount(cmd *cobra.Command, args []string) error {
	act, err := parseAction(cmd.Flags())
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}
	if act == actionNone {
		return cmd.Help()
	}

	patch, err := buildPatch(cmd.Flags())
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}
	if err := prepareSelector(act, &patch); err != nil {
		exitWithError(ExitError, "%v", err)
	}

	mgr, _ := mustOpenManager()

	switch act {
	case actionAdd:
		runAdd(mgr, patch)
	case actionEdit:
		runEdit(mgr, patch)
	case actionDelete:
		runDelete(mgr, patch)
	case actionClear:
		runClear(mgr, patch)
	case actionList:
		runList(mgr, patch)
	}
	return nil
}

func runAdd(mgr *account.Manager, patch account.Patch) {
	rec, err := mgr.Add(patch)
	if err != nil {
		exitWithError(exitCodeFor(err), "%v", err)
	}

	if humanOutput {
		outputHuman("### add user info %s\n", rec.Summary())
	} else {
		outputJSON(AccountResponse{Status: "added", Account: &rec})
	}
}

func runEdit(mgr *account.Manager, patch account.Patch) {
	res, err := mgr.Edit(patch)
	if err != nil {
		exitWithError(exitCodeFor(err), "%v", err)
	}

	if humanOutput {
		if res.Matched() {
			outputHuman("edit user [%s]\n", res.Record.User)
			outputHuman("### new user info %s\n", res.Record.Summary())
		}
		return
	}
	outputJSON(resultResponse("edited", res))
}

func runDelete(mgr *account.Manager, patch account.Patch) {
	res, err := mgr.Delete(patch)
	if err != nil {
		exitWithError(exitCodeFor(err), "%v", err)
	}

	if humanOutput {
		if res.Matched() {
			outputHuman("delete user [%s]\n", res.Record.User)
		}
		return
	}
	outputJSON(resultResponse("deleted", res))
}

// resultResponse reports a single-record result; a miss is "not_found".
func resultResponse(status string, res account.Result) AccountResponse {
	if !res.Matched() {
		return AccountResponse{Status: "not_found"}
	}
	return AccountResponse{Status: status, Account: &res.Record}
}

func runClear(mgr *account.Manager, patch account.Patch) {
	cleared, err := mgr.Clear(patch)
	if err != nil {
		exitWithError(exitCodeFor(err), "%v", err)
	}

	if humanOutput {
		for _, r := range cleared {
			outputHuman("clear user [%s]\n", r.User)
		}
		return
	}
	if cleared == nil {
		cleared = []account.Record{}
	}
	outputJSON(ClearResponse{Status: "cleared", Count: len(cleared), Accounts: cleared})
}

func runList(mgr *account.Manager, patch account.Patch) {
	records, err := mgr.List(patch)
	if err != nil {
		exitWithError(exitCodeFor(err), "%v", err)
	}

	if !humanOutput {
		outputJSON(records)
		return
	}
	for _, r := range records {
		if patch.IsEmpty() {
			outputHuman("user [%s] port %d\n", r.User, r.Port)
		} else {
			outputHuman("### user [%s] info %s\n", r.User, r.Summary())
		}
	}
}
