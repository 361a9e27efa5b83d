package cmd

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/curator/internal/enrich"
)

var prefillURLCmd = &cobra.Command{
	Use:   "prefill-url <url>",
	Short: "Suggest title, description, tags and category for a URL",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := scope()
		if err != nil {
			return err
		}
		suggestion, err := components.Service.PrefillFromURL(cmd.Context(), args[0], s)
		if err != nil {
			return err
		}
		return printJSON(cmd, suggestion)
	},
}

var prefillDocCmd = &cobra.Command{
	Use:   "prefill-doc <path>",
	Short: "Suggest description, tags and category for a local file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := scope()
		if err != nil {
			return err
		}
		content, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		suggestion, err := components.Service.PrefillFromDocument(cmd.Context(), enrich.Document{
			Filename:    filepath.Base(args[0]),
			ContentType: http.DetectContentType(content),
			Content:     content,
		}, s)
		if err != nil {
			return err
		}
		return printJSON(cmd, suggestion)
	},
}

func init() {
	rootCmd.AddCommand(prefillURLCmd)
	rootCmd.AddCommand(prefillDocCmd)
}
