package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// NewEvalCmd создаёт группу команд для управления оценками.
func NewEvalCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Manage flow evaluations",
	}

	cmd.AddCommand(
		newEvalListCmd(clientFn, outputFn),
		newEvalCreateCmd(clientFn, outputFn),
	)

	return cmd
}

var evalHeaders = []string{"ID", "FLOW_ID", "SCORE", "FEEDBACK", "CREATED"}

func evalRow(e EvaluationResponse) []string {
	return []string{e.ID, e.FlowID, strconv.FormatFloat(e.Score, 'f', -1, 64), e.Feedback, e.CreatedAt}
}

func newEvalListCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all evaluations",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			evaluations, err := client.ListEvaluations()
			if err != nil {
				return err
			}

			rows := make([][]string, len(evaluations))
			for i, e := range evaluations {
				rows[i] = evalRow(e)
			}

			out.Print(evalHeaders, rows, evaluations)
			return nil
		},
	}
}

func newEvalCreateCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var req CreateEvaluationRequest

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an evaluation for a flow",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			evaluation, err := client.CreateEvaluation(req)
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Evaluation created: %s", evaluation.ID))
			out.Print(evalHeaders, [][]string{evalRow(*evaluation)}, evaluation)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.FlowID, "flow-id", "", "Flow ID (required)")
	cmd.Flags().Float64Var(&req.Score, "score", 0, "Score, expected range 0-100 (required)")
	cmd.Flags().StringVar(&req.Feedback, "feedback", "", "Feedback text")
	cmd.MarkFlagRequired("flow-id")
	cmd.MarkFlagRequired("score")

	return cmd
}
