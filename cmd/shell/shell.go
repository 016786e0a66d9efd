package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/fatih/color"
	"github.com/robertkrimen/isatty"
	"github.com/spf13/cobra"
	semnet "github.com/vilterp/semnet/pkg"
	clog "github.com/vilterp/semnet/pkg/log"
	"github.com/vilterp/semnet/pkg/scenario"
)

var (
	url         string
	scenarioDir string
	useScenario string
)

var rootCmd = &cobra.Command{
	Use:   "semnet-shell",
	Short: "Interactive shell for evaluating and forcing formulas",
	Long: `Connects to a semnet server, or with --scenarios loads scenario files
and answers requests in-process.

\h lists the shell commands.`,
	Args: cobra.NoArgs,
	RunE: run,
}

func init() {
	flags := rootCmd.Flags()
	flags.StringVar(&url, "url", "ws://localhost:9000/ws", "URL of the server to connect to")
	flags.StringVarP(&scenarioDir, "scenarios", "s", "", "answer in-process from this scenario directory instead of connecting")
	flags.StringVarP(&useScenario, "use", "u", "", "scenario to start with")
}

func run(_ *cobra.Command, _ []string) error {
	var caller semnet.Caller
	if scenarioDir != "" {
		catalog, err := scenario.LoadDir(scenarioDir)
		if err != nil {
			return err
		}
		caller = semnet.NewServer(catalog, semnet.DefaultConfig())
	} else {
		client, err := semnet.NewClient(url)
		if err != nil {
			return fmt.Errorf("couldn't connect: %w", err)
		}
		defer client.Close()
		go waitForServerClose(client)
		caller = client
	}

	// check if is TTY
	isInputTty := isatty.Check(os.Stdin.Fd())
	if !isInputTty {
		color.NoColor = true
	}

	sess := newSession(caller, os.Stdout)
	if useScenario != "" {
		sess.exec(`\u ` + useScenario)
	}

	if isInputTty {
		fmt.Println("semnet shell")
		fmt.Println(`\h for help`)
	}

	l, err := readline.NewEx(&readline.Config{
		Prompt:            "",
		HistoryFile:       "/tmp/.semnet-history",
		InterruptPrompt:   "^C",
		EOFPrompt:         "bye!",
		HistorySearchFold: true,
	})
	if err != nil {
		return err
	}
	defer l.Close()

	for {
		if isInputTty {
			l.SetPrompt(sess.prompt())
		}
		line, readlineErr := l.Readline()
		if readlineErr == readline.ErrInterrupt {
			continue
		}
		if readlineErr != nil {
			fmt.Println("bye!")
			return nil
		}
		if len(strings.Trim(line, "\t ")) == 0 {
			continue
		}
		if sess.exec(line) {
			return nil
		}
	}
}

func waitForServerClose(client *semnet.Client) {
	<-client.ServerClosed
	clog.L().Warn("server closed the connection")
	fmt.Println("server closed the connection")
	os.Exit(0)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
