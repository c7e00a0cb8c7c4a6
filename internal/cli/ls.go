package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/remkit/remkit/internal/tree"
)

var lsCmd = &cobra.Command{
	Use:   "ls [PATH]",
	Short: "List the children of a device folder",
	Long: `List the immediate children of a folder on the device, one path per line.
Folder paths end with a slash. With no PATH, lists the top level.

Examples:
  remkit ls
  remkit ls Books
  remkit ls "Books/Work Notes"`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := ""
		if len(args) == 1 {
			path = args[0]
		}

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
		if !node.IsFolder() {
			return reportResolution(ErrNotAFolder,
				fmt.Sprintf("Path '%s' is not a folder.", path),
				"")
		}

		if isJSONOutput() {
			children := make([]string, 0, len(node.Children))
			for _, c := range node.Children {
				children = append(children, c.Path)
			}
			outputSuccess(map[string]any{"path": node.Path, "children": children})
			return nil
		}

		for _, c := range node.Children {
			fmt.Println(c.Path)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(lsCmd)
}
