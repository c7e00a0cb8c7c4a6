package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/remkit/remkit/internal/device"
	"github.com/remkit/remkit/internal/sidecar"
	"github.com/remkit/remkit/internal/tree"
	"github.com/remkit/remkit/internal/ui"
)

var putForce bool

var putCmd = &cobra.Command{
	Use:   "put [-f] FILE [FOLDER]",
	Short: "Upload a document to the device",
	Long: `Upload a PDF or EPUB into a device folder. With no FOLDER, the document
lands at the top level. The device UI restarts after the transfer to pick up
the new document.

Uploading onto an existing document replaces it in place (same identifier)
after confirmation; -f skips the prompt.

Examples:
  remkit put paper.pdf
  remkit put notes.epub Books
  remkit put -f notes.epub Books`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		file := args[0]
		folder := ""
		if len(args) == 2 {
			folder = args[1]
		}

		if _, err := os.Stat(file); err != nil {
			return handleErrorMsg(ErrFileNotFound,
				fmt.Sprintf("File '%s' does not exist", file),
				"Check the local file path")
		}

		client, cleanup, err := connectClient(cmd.Context())
		if err != nil {
			return handleError(codeForErr(err), err, "")
		}
		defer cleanup()

		confirm := promptForConfirm
		if putForce {
			confirm = func(string) bool { return true }
		}

		res, err := client.Put(cmd.Context(), device.PutRequest{
			File:    file,
			Folder:  folder,
			Confirm: confirm,
		})
		switch {
		case err == nil:
		case errors.Is(err, tree.ErrNotFound):
			return reportResolution(ErrPathNotFound,
				fmt.Sprintf("Folder '%s' does not exist.", folder),
				"Run 'remkit ls' to see the top level")
		case errors.Is(err, sidecar.ErrNotFolder):
			return reportResolution(ErrNotAFolder,
				fmt.Sprintf("'%s' is not a folder.", folder),
				"")
		case errors.Is(err, device.ErrDeclined):
			if isJSONOutput() {
				outputError(ErrOverwriteDeclined, "overwrite declined", "Pass -f to replace without confirmation")
				return nil
			}
			fmt.Println("Cancelled.")
			return nil
		case errors.Is(err, sidecar.ErrUnsupportedType):
			return handleError(ErrUnsupportedFileType, err,
				"Only pdf and epub documents are supported")
		default:
			return handleError(codeForErr(err), err, "")
		}

		if isJSONOutput() {
			outputSuccess(res)
			return nil
		}

		fmt.Println(ui.Successf("%s sent to reMarkable.", filepath.Base(file)))
		fmt.Printf("  %s\n", ui.DevicePath(res.Path))
		if res.Overwrote {
			fmt.Println(ui.Hint("  replaced existing document"))
		}
		return nil
	},
}

func init() {
	putCmd.Flags().BoolVarP(&putForce, "force", "f", false, "Replace an existing document without confirmation")
	rootCmd.AddCommand(putCmd)
}
