package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/remkit/remkit/internal/tree"
	"github.com/remkit/remkit/internal/ui"
)

var showCmd = &cobra.Command{
	Use:   "show PATH",
	Short: "Show a document or folder's metadata",
	Long: `Print the path, identifier, file type (for documents), and every metadata
field of the node at PATH.

Examples:
  remkit show Books
  remkit show Books/Report`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]

		client, cleanup, err := connectClient(cmd.Context())
		if err != nil {
			return handleError(codeForErr(err), err, "")
		}
		defer cleanup()

		node, err := tree.Resolve(client.Tree(), path)
		if errors.Is(err, tree.ErrNotFound) {
			return reportResolution(ErrPathNotFound,
				fmt.Sprintf("Path '%s' not found.", path),
				"Run 'remkit ls' to see the top level")
		}
		if node.Record == nil {
			return reportResolution(ErrPathNotFound,
				"The root has no metadata.",
				"Pass a folder or document path")
		}

		if isJSONOutput() {
			meta := make(map[string]string, 12)
			for _, f := range node.Record.Fields() {
				meta[f.Key] = f.Value
			}
			outputSuccess(map[string]any{
				"path":     node.Path,
				"id":       node.ID(),
				"filetype": node.FileType,
				"metadata": meta,
			})
			return nil
		}

		fmt.Printf("path: %s\n", ui.DevicePath(node.Path))
		fmt.Printf("uuid: %s\n", node.ID())
		if node.FileType != "" {
			fmt.Printf("filetype: %s\n", node.FileType)
		}
		fmt.Println()
		fmt.Println("metadata:")

		fields := node.Record.Fields()
		width := 0
		for _, f := range fields {
			if len(f.Key) > width {
				width = len(f.Key)
			}
		}
		for _, f := range fields {
			fmt.Printf("%-*s : %s\n", width, f.Key, f.Value)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
}
