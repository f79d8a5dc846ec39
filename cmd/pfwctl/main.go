// Command pfwctl is the §6 test harness: an interactive REPL over a
// constructed System, excluded from the core framework. It exists to
// exercise a system from the command line while developing criteria and
// settings files, not as a production entry point.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/openvela/go-pfw"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var criteriaPath, settingsPath string

	root := &cobra.Command{
		Use:   "pfwctl",
		Short: "Interactive test harness for a Parameter Framework system",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runREPL(criteriaPath, settingsPath)
		},
	}
	root.Flags().StringVar(&criteriaPath, "criteria", "", "path to the criteria file")
	root.Flags().StringVar(&settingsPath, "settings", "", "path to the settings file")
	root.MarkFlagRequired("criteria")
	root.MarkFlagRequired("settings")
	return root
}

// runREPL drives the interactive loop described by §6: every command
// accepts up to three whitespace-separated arguments, and a truthy third
// argument triggers an implicit apply.
func runREPL(criteriaPath, settingsPath string) error {
	logger := logrus.StandardLogger()

	noopPlugin := func(params string) {
		logger.WithField("params", params).Info("act fired")
	}

	sys, err := pfw.Create(criteriaPath, settingsPath, discoverPlugins(criteriaPath, settingsPath, noopPlugin))
	if err != nil {
		return fmt.Errorf("create: %w", err)
	}
	defer sys.Destroy()

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		cmd, args := fields[0], fields[1:]
		if cmd == "q" {
			return nil
		}
		runCommand(sys, cmd, args)
	}
	return scanner.Err()
}

func runCommand(sys *pfw.System, cmd string, args []string) {
	implicitApply := len(args) >= 3 && isTruthy(args[2])

	var out string
	var err error

	switch cmd {
	case "apply":
		sys.Apply()
		out = "ok"
	case "dump":
		out = sys.Dump()
	case "setint":
		v, perr := strconv.ParseInt(arg(args, 1), 0, 32)
		if perr != nil {
			err = perr
			break
		}
		err = sys.SetInt(arg(args, 0), int32(v))
		out = "ok"
	case "setstring":
		err = sys.SetString(arg(args, 0), arg(args, 1))
		out = "ok"
	case "include":
		err = sys.Include(arg(args, 0), arg(args, 1))
		out = "ok"
	case "exclude":
		err = sys.Exclude(arg(args, 0), arg(args, 1))
		out = "ok"
	case "increase":
		err = sys.Increase(arg(args, 0))
		out = "ok"
	case "decrease":
		err = sys.Decrease(arg(args, 0))
		out = "ok"
	case "getint":
		var v int32
		v, err = sys.GetInt(arg(args, 0))
		out = strconv.FormatInt(int64(v), 10)
	case "getstring":
		out, err = sys.GetString(arg(args, 0))
	case "getrange":
		var lo, hi int32
		lo, hi, err = sys.GetRange(arg(args, 0))
		out = fmt.Sprintf("%d %d", lo, hi)
	case "subscribe", "unsubscribe":
		err = fmt.Errorf("%s is not supported from the REPL; use the Go API", cmd)
	default:
		err = fmt.Errorf("unknown command %q", cmd)
	}

	if err != nil {
		fmt.Printf("error: %v\n", err)
		return
	}
	fmt.Println(out)

	if implicitApply {
		sys.Apply()
	}
}

func arg(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}

func isTruthy(s string) bool {
	switch strings.ToLower(s) {
	case "", "0", "false", "no":
		return false
	default:
		return true
	}
}

// discoverPlugins builds a placeholder plugin registry for every plugin
// name referenced by the settings file, each bound to logFn, since pfwctl
// has no real downstream components to drive.
func discoverPlugins(criteriaPath, settingsPath string, logFn func(string)) []pfw.PluginDef {
	names := settingsFilePluginNames(settingsPath)
	defs := make([]pfw.PluginDef, 0, len(names))
	for _, name := range names {
		defs = append(defs, pfw.PluginDef{Name: name, Func: logFn})
	}
	return defs
}
