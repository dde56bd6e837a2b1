// Ensemble CLI — инструмент командной строки для управления
// агентами, flows и оценками через HTTP API.
//
// Использование:
//
//	ensemble [--api-url URL] [--json] <command> <subcommand> [flags]
//
// Команды:
//
//	agent     Управление агентами
//	flow      Управление flows
//	eval      Управление оценками
//	export    Экспорт agents / flows
//	import    Импорт agents / flows
//	validate  Проверка документа без импорта
//	run       Запуск flow через движок
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shaiso/Ensemble/internal/cli"
)

// version задаётся через ldflags при сборке.
var version = "dev"

func main() {
	var apiURL string
	var jsonOutput bool

	rootCmd := &cobra.Command{
		Use:           "ensemble",
		Short:         "Ensemble CLI — agent flow orchestration tool",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "http://localhost:8080", "API server URL")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	clientFn := func() *cli.Client { return cli.NewClient(apiURL) }
	outputFn := func() *cli.Output { return cli.NewOutput(jsonOutput) }

	rootCmd.AddCommand(
		cli.NewAgentCmd(clientFn, outputFn),
		cli.NewFlowCmd(clientFn, outputFn),
		cli.NewEvalCmd(clientFn, outputFn),
		cli.NewExportCmd(clientFn, outputFn),
		cli.NewImportCmd(clientFn, outputFn),
		cli.NewValidateCmd(clientFn, outputFn),
		cli.NewRunCmd(clientFn, outputFn),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
