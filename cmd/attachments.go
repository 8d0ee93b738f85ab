package cmd

import (
	"context"
	"fmt"
	"sync"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/s0up4200/cfclient/confluence"
)

var (
	attachmentOpts confluence.GetAttachmentsOptions
	concurrency    int
	purge          bool
)

// attachmentsCmd represents the attachments command
var attachmentsCmd = &cobra.Command{
	Use:   "attachments <content-id>",
	Short: "List attachments of a page or blog post",
	Example: `  cfclient attachments 12345
  cfclient attachments 12345 --media-type application/pdf
  cfclient attachments 12345 -f 'FileSize > 10485760'`,
	Args:    cobra.ExactArgs(1),
	PreRunE: initializeApp,
	RunE:    runAttachments,
}

// attachCmd represents the attach command
var attachCmd = &cobra.Command{
	Use:     "attach <content-id> <file>...",
	Short:   "Upload files as attachments",
	Long:    `Upload one or more files to a page or blog post. Files are uploaded concurrently; a failed upload does not stop the others.`,
	Args:    cobra.MinimumNArgs(2),
	PreRunE: initializeApp,
	RunE:    runAttach,
}

// detachCmd represents the detach command
var detachCmd = &cobra.Command{
	Use:     "detach <attachment-id>",
	Short:   "Delete an attachment",
	Long:    `Move an attachment to the trash, or remove it for good with --purge.`,
	Args:    cobra.ExactArgs(1),
	PreRunE: initializeApp,
	RunE:    runDetach,
}

func init() {
	rootCmd.AddCommand(attachmentsCmd, attachCmd, detachCmd)

	attachmentsCmd.Flags().StringVar(&attachmentOpts.Filename, "filename", "", "only attachments with this file name")
	attachmentsCmd.Flags().StringVar(&attachmentOpts.MediaType, "media-type", "", "only attachments with this media type")
	attachmentsCmd.Flags().IntVar(&attachmentOpts.Start, "start", 0, "index of the first result")
	attachmentsCmd.Flags().IntVar(&attachmentOpts.Limit, "limit", 0, "maximum number of results")
	attachmentsCmd.Flags().StringVarP(&filterExpr, "filter", "f", "", "filter expression")
	attachmentsCmd.Flags().StringVarP(&preset, "preset", "p", "", "use a preset filter from config")

	attachCmd.Flags().IntVarP(&concurrency, "concurrency", "c", 0, "parallel uploads (default from upload.concurrency)")

	detachCmd.Flags().BoolVar(&purge, "purge", false, "remove the attachment instead of trashing it")
}

func runAttachments(cmd *cobra.Command, args []string) error {
	opts := attachmentOpts
	opts.ID = args[0]

	req, err := confluence.NewGetAttachmentsRequest(opts)
	if err != nil {
		return err
	}

	attachments, err := client.GetAttachments(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("failed to get attachments: %w", err)
	}

	attachments, err = applyFilter(cmd, filterExpr, preset, attachments)
	if err != nil {
		return err
	}

	return printContents(cmd.OutOrStdout(), attachments, false)
}

func runAttach(cmd *cobra.Command, args []string) error {
	limit := cfg.Upload.Concurrency
	if concurrency > 0 {
		limit = concurrency
	}

	results, err := uploadAttachments(cmd.Context(), client, args[0], args[1:], limit)
	for _, r := range results {
		if r.Attachment == nil {
			continue
		}
		logger.Info().
			Str("file", r.File).
			Str("id", r.Attachment.ID).
			Msg("Uploaded attachment")
		if perr := printContent(cmd.OutOrStdout(), r.Attachment); perr != nil {
			return perr
		}
	}

	if err != nil {
		failed := len(multierr.Errors(err))
		return fmt.Errorf("%d of %d uploads failed: %w", failed, len(args)-1, err)
	}
	return nil
}

func runDetach(cmd *cobra.Command, args []string) error {
	req, err := confluence.NewDeleteAttachmentRequest(confluence.DeleteAttachmentOptions{
		ID:    args[0],
		Purge: purge,
	})
	if err != nil {
		return err
	}

	if _, err := client.DeleteAttachment(cmd.Context(), req); err != nil {
		return fmt.Errorf("failed to delete attachment: %w", err)
	}

	action := "Trashed"
	if purge {
		action = "Purged"
	}
	logger.Info().Str("id", args[0]).Bool("purge", purge).Msg("Deleted attachment")
	fmt.Fprintf(cmd.OutOrStdout(), "✓ %s attachment %s\n", action, args[0])
	return nil
}

// uploadResult pairs a file with the attachment created for it
type uploadResult struct {
	File       string
	Attachment *confluence.Content
}

// uploadAttachments uploads files with at most limit requests in flight.
// Every file is attempted; results keep the order of files and failures are
// combined into one error.
func uploadAttachments(ctx context.Context, api confluence.API, contentID string, files []string, limit int) ([]uploadResult, error) {
	results := make([]uploadResult, len(files))

	var (
		mu   sync.Mutex
		errs error
	)

	var g errgroup.Group
	g.SetLimit(max(limit, 1))

	for i, file := range files {
		results[i].File = file
		g.Go(func() error {
			attachment, err := uploadAttachment(ctx, api, contentID, file)
			if err != nil {
				mu.Lock()
				errs = multierr.Append(errs, fmt.Errorf("%s: %w", file, err))
				mu.Unlock()
				return nil
			}
			results[i].Attachment = attachment
			return nil
		})
	}

	_ = g.Wait()
	return results, errs
}

func uploadAttachment(ctx context.Context, api confluence.API, contentID, file string) (*confluence.Content, error) {
	req, err := confluence.NewAddAttachmentRequest(confluence.AddAttachmentOptions{
		ID:   contentID,
		File: file,
	})
	if err != nil {
		return nil, err
	}
	return api.AddAttachment(ctx, req)
}
