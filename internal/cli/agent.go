package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// NewAgentCmd создаёт группу команд для управления агентами.
func NewAgentCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agent",
		Short: "Manage agents",
	}

	cmd.AddCommand(
		newAgentListCmd(clientFn, outputFn),
		newAgentCreateCmd(clientFn, outputFn),
		newAgentShowCmd(clientFn, outputFn),
		newAgentUpdateCmd(clientFn, outputFn),
		newAgentDeleteCmd(clientFn, outputFn),
		newAgentConvertCmd(clientFn, outputFn),
	)

	return cmd
}

func agentRow(a AgentResponse) []string {
	return []string{a.ID, a.Name, a.Role, strings.Join(a.Tools, ","), a.CreatedAt}
}

var agentHeaders = []string{"ID", "NAME", "ROLE", "TOOLS", "CREATED"}

func newAgentListCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all agents",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			agents, err := client.ListAgents()
			if err != nil {
				return err
			}

			rows := make([][]string, len(agents))
			for i, a := range agents {
				rows[i] = agentRow(a)
			}

			out.Print(agentHeaders, rows, agents)
			return nil
		},
	}
}

func newAgentCreateCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var req CreateAgentRequest

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new agent",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			agent, err := client.CreateAgent(req)
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Agent created: %s", agent.ID))
			out.Print(agentHeaders, [][]string{agentRow(*agent)}, agent)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Name, "name", "", "Agent name (required)")
	cmd.Flags().StringVar(&req.Role, "role", "", "Agent role (required)")
	cmd.Flags().StringVar(&req.Goal, "goal", "", "Agent goal (required)")
	cmd.Flags().StringVar(&req.Backstory, "backstory", "", "Agent backstory (required)")
	cmd.Flags().StringSliceVar(&req.Tools, "tools", nil, "Agent tools")
	cmd.MarkFlagRequired("name")
	cmd.MarkFlagRequired("role")
	cmd.MarkFlagRequired("goal")
	cmd.MarkFlagRequired("backstory")

	return cmd
}

func newAgentShowCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show agent details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			agent, err := client.GetAgent(args[0])
			if err != nil {
				return err
			}

			out.Print(agentHeaders, [][]string{agentRow(*agent)}, agent)
			return nil
		},
	}
}

func newAgentUpdateCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var (
		name      string
		role      string
		goal      string
		backstory string
		tools     []string
	)

	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Update an agent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			req := UpdateAgentRequest{}
			if cmd.Flags().Changed("name") {
				req.Name = &name
			}
			if cmd.Flags().Changed("role") {
				req.Role = &role
			}
			if cmd.Flags().Changed("goal") {
				req.Goal = &goal
			}
			if cmd.Flags().Changed("backstory") {
				req.Backstory = &backstory
			}
			if cmd.Flags().Changed("tools") {
				req.Tools = &tools
			}

			agent, err := client.UpdateAgent(args[0], req)
			if err != nil {
				return err
			}

			out.Success("Agent updated")
			out.Print(agentHeaders, [][]string{agentRow(*agent)}, agent)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "New agent name")
	cmd.Flags().StringVar(&role, "role", "", "New agent role")
	cmd.Flags().StringVar(&goal, "goal", "", "New agent goal")
	cmd.Flags().StringVar(&backstory, "backstory", "", "New agent backstory")
	cmd.Flags().StringSliceVar(&tools, "tools", nil, "New agent tools")

	return cmd
}

func newAgentDeleteCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete an agent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			if err := client.DeleteAgent(args[0]); err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Agent deleted: %s", args[0]))
			return nil
		},
	}
}

func newAgentConvertCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert a Markdown document into an agent draft",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("failed to read markdown file: %w", err)
			}

			result, err := client.ConvertAgentMarkdown(string(data))
			if err != nil {
				return err
			}

			if !result.OK {
				out.Error(result.Message)
				for _, msg := range result.Errors {
					out.Error("  " + msg)
				}
				return fmt.Errorf("conversion failed")
			}

			out.Success("Conversion ok (draft, not saved)")
			out.JSON(result.Agent)
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "Path to markdown file (required)")
	cmd.MarkFlagRequired("file")

	return cmd
}
