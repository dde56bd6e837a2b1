package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// NewRunCmd создаёт команду запуска flow через движок.
func NewRunCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var (
		engine string
		inputs string
	)

	cmd := &cobra.Command{
		Use:   "run FLOW_ID",
		Short: "Run a flow through an orchestration engine",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			req := RunRequest{FlowID: args[0], Engine: engine}
			if inputs != "" {
				if err := json.Unmarshal([]byte(inputs), &req.Inputs); err != nil {
					return fmt.Errorf("invalid --inputs JSON: %w", err)
				}
			}

			result, err := client.Run(req)
			if err != nil {
				return err
			}

			if out.jsonMode {
				out.JSON(result)
				return nil
			}

			out.Success(fmt.Sprintf("Run completed: flow %s, engine %s", result.FlowID, result.Engine))
			if result.Plan != nil {
				out.JSON(result.Plan)
				printLogs(out, result.Logs)
			} else {
				out.JSON(result.Result)
				out.Success(fmt.Sprintf("Duration: %d ms", result.DurationMS))
			}
			if result.RequestID != "" {
				out.Success("Request ID: " + result.RequestID)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&engine, "engine", "fake", "Engine name (crewai | robotgreen | fake)")
	cmd.Flags().StringVar(&inputs, "inputs", "", "Run inputs as a JSON object")

	return cmd
}

// printLogs печатает строки логов движка. Структурированные записи
// ({ts, node, msg}) разворачиваются в колонки, остальные идут как есть.
func printLogs(out *Output, logs []string) {
	if len(logs) == 0 {
		return
	}

	headers := []string{"TS", "NODE", "MSG"}
	rows := make([][]string, 0, len(logs))
	for _, line := range logs {
		var record struct {
			TS   string `json:"ts"`
			Node string `json:"node"`
			Msg  string `json:"msg"`
		}
		if err := json.Unmarshal([]byte(line), &record); err == nil && record.Msg != "" {
			rows = append(rows, []string{record.TS, record.Node, record.Msg})
			continue
		}
		rows = append(rows, []string{"", "", line})
	}
	out.Table(headers, rows)
}
