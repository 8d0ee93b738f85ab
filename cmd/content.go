package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/s0up4200/cfclient/confluence"
)

var (
	// get flags
	getOpts    confluence.GetContentOptions
	getType    string
	getStatus  string
	withBody   bool
	filterExpr string
	preset     string

	// create and update flags
	contentType string
	title       string
	spaceKey    string
	parentID    string
	body        string
	bodyFile    string
	bodyType    string
	status      string
	draftID     string
	newVersion  int
	minorEdit   bool
)

// testCmd represents the test command
var testCmd = &cobra.Command{
	Use:     "test",
	Short:   "Test connection to Confluence",
	Long:    `Test the connection to your Confluence site and check that the configured credentials are accepted.`,
	PreRunE: initializeApp,
	RunE:    runTest,
}

// getCmd represents the get command
var getCmd = &cobra.Command{
	Use:   "get",
	Short: "List content matching a query",
	Long: `List pages, blog posts or other content by space, title, type or status.
The result can be narrowed further with a filter expression or preset.`,
	Example: `  cfclient get --space DOCS --type page
  cfclient get --space DOCS -f 'Modified < daysAgo(180)'
  cfclient get --type blogpost --space NEWS --posting-day 2024-05-01`,
	PreRunE: initializeApp,
	RunE:    runGet,
}

// createCmd represents the create command
var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a page or blog post",
	Example: `  cfclient create --space DOCS --title "Runbook" --body "<p>Steps</p>"
  cfclient create --space DOCS --title "Child" --parent 12345 --body-file child.xhtml`,
	PreRunE: initializeApp,
	RunE:    runCreate,
}

// updateCmd represents the update command
var updateCmd = &cobra.Command{
	Use:   "update <content-id>",
	Short: "Write a new version of existing content",
	Long: `Replace the title, body, status or parent of existing content.
--version must be the number of the new version, one above the current one.`,
	Args:    cobra.ExactArgs(1),
	PreRunE: initializeApp,
	RunE:    runUpdate,
}

func init() {
	rootCmd.AddCommand(testCmd, getCmd, createCmd, updateCmd)

	getCmd.Flags().StringVar(&getOpts.SpaceKey, "space", "", "space key")
	getCmd.Flags().StringVar(&getOpts.Title, "title", "", "exact title")
	getCmd.Flags().StringVar(&getType, "type", "", "content type (page, blogpost)")
	getCmd.Flags().StringVar(&getStatus, "status", "", "content status (current, trashed, historical, draft)")
	getCmd.Flags().StringVar(&getOpts.PostingDay, "posting-day", "", "blog post day as yyyy-mm-dd")
	getCmd.Flags().IntVar(&getOpts.Start, "start", 0, "index of the first result")
	getCmd.Flags().IntVar(&getOpts.Limit, "limit", 0, "maximum number of results")
	getCmd.Flags().BoolVar(&withBody, "body", false, "include the storage body")
	getCmd.Flags().StringVarP(&filterExpr, "filter", "f", "", "filter expression")
	getCmd.Flags().StringVarP(&preset, "preset", "p", "", "use a preset filter from config")

	for _, c := range []*cobra.Command{createCmd, updateCmd} {
		c.Flags().StringVar(&contentType, "type", string(confluence.TypePage), "content type")
		c.Flags().StringVar(&title, "title", "", "content title")
		c.Flags().StringVar(&parentID, "parent", "", "id of the parent page")
		c.Flags().StringVar(&body, "body", "", "content body")
		c.Flags().StringVar(&bodyFile, "body-file", "", "read the body from a file ('-' for stdin)")
		c.Flags().StringVar(&bodyType, "body-type", confluence.BodyStorage.String(), "body representation")
		c.Flags().StringVar(&status, "status", "", "content status")
		c.MarkFlagsMutuallyExclusive("body", "body-file")
	}

	createCmd.Flags().StringVar(&spaceKey, "space", "", "space key")
	createCmd.Flags().StringVar(&draftID, "id", "", "content id, required when creating a draft")
	_ = createCmd.MarkFlagRequired("space")

	updateCmd.Flags().IntVar(&newVersion, "version", 0, "new version number")
	updateCmd.Flags().BoolVar(&minorEdit, "minor", false, "mark as a minor edit")
	_ = updateCmd.MarkFlagRequired("version")
	_ = updateCmd.MarkFlagRequired("title")
}

func runTest(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	auth := "anonymous"
	if cfg.Auth.AuthMethod() != nil {
		auth = "authenticated"
	}
	fmt.Fprintf(out, "Testing connection to Confluence at %s (%s)...\n", cfg.Confluence.URL, auth)

	req, err := confluence.NewGetContentRequest(confluence.GetContentOptions{Limit: 1})
	if err != nil {
		return err
	}
	if _, err := client.GetContent(cmd.Context(), req); err != nil {
		var reqErr *confluence.RequestError
		if errors.As(err, &reqErr) && reqErr.IsUnauthorized() {
			return fmt.Errorf("credentials were rejected: %w", err)
		}
		return fmt.Errorf("connection failed: %w", err)
	}

	fmt.Fprintln(out, "✓ Connection successful!")
	return nil
}

func runGet(cmd *cobra.Command, args []string) error {
	opts := getOpts
	opts.Type = confluence.ContentType(getType)
	if getStatus != "" {
		s, err := confluence.ParseContentStatus(getStatus)
		if err != nil {
			return err
		}
		opts.Status = s
	}

	expand := confluence.NewExpandBuilder().Space().Version().Ancestors()
	if withBody {
		expand.Body(confluence.BodyStorage, confluence.BodyFormat{}.Value())
	}
	opts.Expand = expand.Build()

	req, err := confluence.NewGetContentRequest(opts)
	if err != nil {
		return err
	}

	logger.Info().
		Str("space", opts.SpaceKey).
		Str("type", getType).
		Msg("Searching content")

	contents, err := client.GetContent(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("failed to get content: %w", err)
	}

	contents, err = applyFilter(cmd, filterExpr, preset, contents)
	if err != nil {
		return err
	}

	return printContents(cmd.OutOrStdout(), contents, withBody)
}

func runCreate(cmd *cobra.Command, args []string) error {
	value, err := readBody(cmd.InOrStdin())
	if err != nil {
		return err
	}
	bt, st, err := parseBodyAndStatus()
	if err != nil {
		return err
	}

	req, err := confluence.NewCreateContentRequest(confluence.CreateContentOptions{
		ID:         draftID,
		Type:       confluence.ContentType(contentType),
		Title:      title,
		SpaceKey:   spaceKey,
		Status:     st,
		BodyType:   bt,
		Body:       value,
		AncestorID: parentID,
		Expand:     confluence.NewExpandBuilder().Space().Version().Build(),
	})
	if err != nil {
		return err
	}

	created, err := client.CreateContent(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("failed to create content: %w", err)
	}

	logger.Info().Str("id", created.ID).Str("title", created.Title).Msg("Created content")
	return printContent(cmd.OutOrStdout(), created)
}

func runUpdate(cmd *cobra.Command, args []string) error {
	value, err := readBody(cmd.InOrStdin())
	if err != nil {
		return err
	}
	bt, st, err := parseBodyAndStatus()
	if err != nil {
		return err
	}

	req, err := confluence.NewUpdateContentRequest(confluence.UpdateContentOptions{
		ID:         args[0],
		Type:       confluence.ContentType(contentType),
		Title:      title,
		Status:     st,
		Version:    newVersion,
		MinorEdit:  minorEdit,
		BodyType:   bt,
		Body:       value,
		AncestorID: parentID,
	})
	if err != nil {
		return err
	}

	updated, err := client.UpdateContent(cmd.Context(), req)
	if err != nil {
		var reqErr *confluence.RequestError
		if errors.As(err, &reqErr) && reqErr.IsConflict() {
			return fmt.Errorf("version %d was rejected, fetch the current version and retry: %w", newVersion, err)
		}
		return fmt.Errorf("failed to update content: %w", err)
	}

	logger.Info().
		Str("id", updated.ID).
		Int("version", updated.VersionNumber()).
		Msg("Updated content")
	return printContent(cmd.OutOrStdout(), updated)
}

// readBody returns --body, or the contents of --body-file
func readBody(stdin io.Reader) (string, error) {
	switch bodyFile {
	case "":
		return body, nil
	case "-":
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read body from stdin: %w", err)
		}
		return string(data), nil
	default:
		data, err := os.ReadFile(bodyFile)
		if err != nil {
			return "", fmt.Errorf("failed to read body file: %w", err)
		}
		return string(data), nil
	}
}

func parseBodyAndStatus() (confluence.BodyType, confluence.ContentStatus, error) {
	bt, err := confluence.ParseBodyType(bodyType)
	if err != nil {
		return confluence.BodyType{}, "", err
	}
	if status == "" {
		return bt, "", nil
	}
	st, err := confluence.ParseContentStatus(status)
	if err != nil {
		return confluence.BodyType{}, "", err
	}
	return bt, st, nil
}

// printContents writes a list in the selected output format
func printContents(w io.Writer, contents []confluence.Content, showBody bool) error {
	if outputFormat == "json" {
		return writeJSON(w, contents)
	}

	if len(contents) == 0 {
		fmt.Fprintln(w, "No content found matching the criteria.")
		return nil
	}

	fmt.Fprintf(w, "\nFound %d items:\n", len(contents))
	fmt.Fprintln(w, strings.Repeat("-", 80))
	for i := range contents {
		writeContentLine(w, &contents[i])
		if showBody && contents[i].Body != nil {
			fmt.Fprintf(w, "  Body: %s\n", contents[i].Body.Value)
		}
	}
	return nil
}

// printContent writes a single result in the selected output format
func printContent(w io.Writer, c *confluence.Content) error {
	if outputFormat == "json" {
		return writeJSON(w, c)
	}
	writeContentLine(w, c)
	return nil
}

func writeContentLine(w io.Writer, c *confluence.Content) {
	fmt.Fprintf(w, "• %s [%s] (ID: %s)\n", c.Title, c.Type, c.ID)
	if key := c.SpaceKey(); key != "" {
		fmt.Fprintf(w, "  Space: %s\n", key)
	}
	if v := c.VersionNumber(); v > 0 {
		fmt.Fprintf(w, "  Version: %d\n", v)
	}
	if c.Status != "" && c.Status != confluence.StatusCurrent {
		fmt.Fprintf(w, "  Status: %s\n", c.Status)
	}
	if parent := c.ParentID(); parent != "" {
		fmt.Fprintf(w, "  Parent: %s\n", parent)
	}
	if ext := c.Extensions; ext != nil && ext.MediaType != "" {
		fmt.Fprintf(w, "  File: %s, %s\n", ext.MediaType, formatSize(ext.FileSize))
	}
	if c.Links != nil && c.Links.WebUI != "" {
		fmt.Fprintf(w, "  Link: %s\n", c.Links.WebUI)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
