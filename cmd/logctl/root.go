package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/loglens/internal/api"
	"github.com/phrazzld/loglens/internal/client"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Output formats
const (
	outputTable = "table"
	outputJSON  = "json"
	outputYAML  = "yaml"
)

// cli carries settings shared by all subcommands.
type cli struct {
	v *viper.Viper
}

func newRootCmd() *cobra.Command {
	c := &cli{v: viper.New()}
	c.v.SetEnvPrefix("LOGCTL")
	c.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.v.AutomaticEnv()

	root := &cobra.Command{
		Use:   "logctl",
		Short: "Submit logs to loglens and inspect analysis results",
		Long: `logctl talks to a loglens server.
- submit: send a batch of log lines (from a file or stdin) for analysis.
- result: show the current record for a task.
- watch: poll a task until it completes or fails.
- health: show queue load and worker count.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			switch c.output() {
			case outputTable, outputJSON, outputYAML:
				return nil
			default:
				return fmt.Errorf("unknown output format %q (want table, json or yaml)", c.output())
			}
		},
	}

	root.PersistentFlags().StringP("server", "s", "http://localhost:8080", "loglens server URL")
	root.PersistentFlags().StringP("output", "o", outputTable, "output format: table, json or yaml")
	root.PersistentFlags().Duration("timeout", client.DefaultTimeout, "per-request timeout")
	_ = c.v.BindPFlag("server", root.PersistentFlags().Lookup("server"))
	_ = c.v.BindPFlag("output", root.PersistentFlags().Lookup("output"))
	_ = c.v.BindPFlag("timeout", root.PersistentFlags().Lookup("timeout"))

	root.AddCommand(c.submitCmd())
	root.AddCommand(c.resultCmd())
	root.AddCommand(c.watchCmd())
	root.AddCommand(c.healthCmd())
	return root
}

func (c *cli) client() *client.Client {
	cl := client.New(c.v.GetString("server"))
	cl.HTTPClient.Timeout = c.v.GetDuration("timeout")
	return cl
}

func (c *cli) output() string {
	return strings.ToLower(c.v.GetString("output"))
}

func (c *cli) submitCmd() *cobra.Command {
	var (
		analysisType string
		wait         bool
		interval     time.Duration
		retries      uint64
	)
	cmd := &cobra.Command{
		Use:   "submit [file]",
		Short: "Submit logs for analysis (reads stdin when no file or '-' is given)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logs, err := readLogs(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}

			cl := c.client()
			cl.SubmitRetries = retries

			accepted, err := cl.Submit(cmd.Context(), logs, analysisType)
			if err != nil {
				return err
			}
			if !wait {
				return renderSubmit(cmd.OutOrStdout(), c.output(), accepted)
			}

			result, err := cl.Wait(cmd.Context(), accepted.TaskID, interval, nil)
			if err != nil {
				return err
			}
			return renderResult(cmd.OutOrStdout(), c.output(), result)
		},
	}
	cmd.Flags().StringVarP(&analysisType, "type", "t", "full", "analysis type: full, errors_only or performance")
	cmd.Flags().BoolVarP(&wait, "wait", "w", false, "wait for the analysis to finish and print the result")
	cmd.Flags().DurationVar(&interval, "interval", client.DefaultPollInterval, "poll interval with --wait")
	cmd.Flags().Uint64Var(&retries, "retries", 3, "retries while the server queue is full")
	return cmd
}

func (c *cli) resultCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "result <task-id>",
		Short: "Show the current record for a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID, err := parseTaskID(args[0])
			if err != nil {
				return err
			}
			result, err := c.client().Result(cmd.Context(), taskID)
			if client.IsNotFound(err) {
				return fmt.Errorf("task %s not found: %w", taskID, err)
			}
			if err != nil {
				return err
			}
			return renderResult(cmd.OutOrStdout(), c.output(), result)
		},
	}
}

func (c *cli) watchCmd() *cobra.Command {
	var interval time.Duration
	cmd := &cobra.Command{
		Use:   "watch <task-id>",
		Short: "Poll a task until it completes or fails",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID, err := parseTaskID(args[0])
			if err != nil {
				return err
			}
			errOut := cmd.ErrOrStderr()
			result, err := c.client().Wait(cmd.Context(), taskID, interval, func(r api.AnalysisResultResponse) {
				fmt.Fprintf(errOut, "%s  %s\n", time.Now().Format(time.TimeOnly), r.Status)
			})
			if err != nil {
				return err
			}
			return renderResult(cmd.OutOrStdout(), c.output(), result)
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", client.DefaultPollInterval, "poll interval")
	return cmd
}

func (c *cli) healthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Show server health and queue load",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			health, err := c.client().Health(cmd.Context())
			if err != nil {
				return err
			}
			return renderHealth(cmd.OutOrStdout(), c.output(), health)
		},
	}
}

func parseTaskID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid task id %q: %w", s, err)
	}
	return id, nil
}

func readLogs(stdin io.Reader, args []string) (string, error) {
	var (
		data []byte
		err  error
	)
	if len(args) == 0 || args[0] == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		return "", fmt.Errorf("failed to read logs: %w", err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return "", fmt.Errorf("no log lines to submit")
	}
	return string(data), nil
}
