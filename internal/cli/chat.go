package cli

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"docqa/internal/tui"
)

var chatDoc string

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Ask questions interactively",
	Long: `Open an interactive screen for asking questions about the ingested document.
Type 'info' for document details, 'help' for commands and 'quit' to leave.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := openPipeline(cmd.Context(), chatDoc)
		if err != nil {
			return err
		}

		_, err = tea.NewProgram(tui.New(cmd.Context(), p), tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
		return err
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().StringVar(&chatDoc, "doc", "", "ingest this document instead of using the saved index")
}
