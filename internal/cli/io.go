package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewExportCmd создаёт команду экспорта сущностей.
func NewExportCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var (
		format string
		file   string
	)

	cmd := &cobra.Command{
		Use:       "export KIND",
		Short:     "Export agents or flows",
		Long:      "Export all entities of the given kind (agents | flows) as a JSON or YAML document.",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"agents", "flows"},
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			data, err := client.Export(args[0], format)
			if err != nil {
				return err
			}

			if file == "" {
				fmt.Print(string(data))
				return nil
			}
			if err := os.WriteFile(file, data, 0o644); err != nil {
				return fmt.Errorf("failed to write file: %w", err)
			}
			out.Success(fmt.Sprintf("Exported %s to %s", args[0], file))
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "json", "Document format (json | yaml)")
	cmd.Flags().StringVarP(&file, "output", "o", "", "Write to file instead of stdout")

	return cmd
}

// NewImportCmd создаёт команду импорта сущностей.
func NewImportCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var (
		format string
		file   string
	)

	cmd := &cobra.Command{
		Use:       "import KIND",
		Short:     "Import agents or flows",
		Long:      "Import a batch of entities (agents | flows). The batch is committed atomically: one invalid item rejects the whole batch.",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"agents", "flows"},
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("failed to read file: %w", err)
			}

			created, err := client.Import(args[0], format, data)
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Imported %s from %s", args[0], file))
			if out.jsonMode {
				out.JSON(created)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "json", "Document format (json | yaml)")
	cmd.Flags().StringVarP(&file, "file", "f", "", "Path to document file (required)")
	cmd.MarkFlagRequired("file")

	return cmd
}

// NewValidateCmd создаёт команду проверки документа без импорта.
func NewValidateCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var (
		format string
		file   string
	)

	cmd := &cobra.Command{
		Use:       "validate KIND",
		Short:     "Validate an import document without committing",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"agents", "flows"},
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("failed to read file: %w", err)
			}

			report, err := client.Validate(args[0], format, data)
			if err != nil {
				return err
			}

			if out.jsonMode {
				out.JSON(report)
			}
			if !report.OK {
				out.Error(report.Message)
				for _, msg := range report.Errors {
					out.Error("  " + msg)
				}
				return fmt.Errorf("validation failed")
			}

			out.Success("Document is valid")
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "json", "Document format (json | yaml)")
	cmd.Flags().StringVarP(&file, "file", "f", "", "Path to document file (required)")
	cmd.MarkFlagRequired("file")

	return cmd
}
