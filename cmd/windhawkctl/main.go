// Command windhawkctl is the operator CLI: list-mods, reload and
// dump-session each dial the running engine session's internal/ipc pipe by
// the pid of the process the session runs in and print the decoded response. Grounded on saferwall/pe's
// own cmd/pedumper.go cobra layout (one persistent root command, plain
// sibling subcommands, flags read back out of cmd.Flags() inside Run).
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ramensoftware/windhawk-go/internal/ipc"
)

var (
	pid uint32
	raw bool
)

// commonFlags is built directly against pflag rather than through cobra's
// wrapper, then merged into the root command: the --raw flag for printing
// responses verbatim is shared by every subcommand and easier to define
// once this way than to repeat per command.
func commonFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("windhawkctl", pflag.ExitOnError)
	fs.BoolVar(&raw, "raw", false, "print the raw JSON response instead of pretty-printing it")
	return fs
}

func dial(cmd *cobra.Command) (*ipc.Client, error) {
	p, err := cmd.Flags().GetUint32("pid")
	if err != nil {
		return nil, err
	}
	if p == 0 {
		return nil, fmt.Errorf("windhawkctl: --pid is required")
	}
	return ipc.Dial(p)
}

func callAndPrint(cmd *cobra.Command, command ipc.Command) error {
	client, err := dial(cmd)
	if err != nil {
		return err
	}
	defer client.Close()

	resp, err := client.Call(command)
	if err != nil {
		return err
	}
	if !resp.OK {
		return fmt.Errorf("windhawkctl: %s", resp.Error)
	}
	if len(resp.Data) == 0 {
		fmt.Println("ok")
		return nil
	}
	if raw {
		fmt.Println(string(resp.Data))
		return nil
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, resp.Data, "", "  "); err != nil {
		fmt.Println(string(resp.Data))
		return nil
	}
	fmt.Println(pretty.String())
	return nil
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "windhawkctl",
		Short: "Inspect and control a running Windhawk engine session",
		Long:  "windhawkctl dials the internal/ipc pipe of a running engine session by the pid of the process it runs in.",
	}
	rootCmd.PersistentFlags().Uint32VarP(&pid, "pid", "p", 0, "process id of the process the session runs in")
	rootCmd.PersistentFlags().AddFlagSet(commonFlags())

	listModsCmd := &cobra.Command{
		Use:   "list-mods",
		Short: "List mods currently loaded in the session's own process",
		RunE: func(cmd *cobra.Command, args []string) error {
			return callAndPrint(cmd, ipc.CommandListMods)
		},
	}

	reloadCmd := &cobra.Command{
		Use:   "reload",
		Short: "Trigger an immediate mod-eligibility reload",
		RunE: func(cmd *cobra.Command, args []string) error {
			return callAndPrint(cmd, ipc.CommandReload)
		},
	}

	dumpSessionCmd := &cobra.Command{
		Use:   "dump-session",
		Short: "Print the session's orchestrator identity and loaded mods",
		RunE: func(cmd *cobra.Command, args []string) error {
			return callAndPrint(cmd, ipc.CommandDumpSession)
		},
	}

	rootCmd.AddCommand(listModsCmd, reloadCmd, dumpSessionCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
