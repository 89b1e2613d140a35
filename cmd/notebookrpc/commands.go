package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/GriffinCanCode/NotebookRPC/internal/shared/types"
	"github.com/spf13/cobra"
)

func newListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List notebooks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := ctx.ensureClient(cmd.Context())
			if err != nil {
				return err
			}
			notebooks, err := c.ListNotebooks(cmd.Context())
			if err != nil {
				return err
			}
			if ctx.jsonFlag {
				return writeJSON(cmd, notebooks)
			}

			rows := make([][]string, 0, len(notebooks))
			for _, nb := range notebooks {
				rows = append(rows, []string{
					nb.ID,
					nb.Title,
					strconv.Itoa(nb.SourceCount),
					ownership(nb),
					formatTime(nb.ModifiedAt),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"ID", "Title", "Sources", "Access", "Modified"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignLeft},
			))
			return nil
		},
	}
}

func newSourcesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "sources <notebook-id>",
		Short: "List the sources of a notebook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := ctx.ensureClient(cmd.Context())
			if err != nil {
				return err
			}
			sources, err := c.ListSources(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if ctx.jsonFlag {
				return writeJSON(cmd, sources)
			}

			rows := make([][]string, 0, len(sources))
			for _, s := range sources {
				rows = append(rows, []string{s.ID, s.Title, s.Kind.Name(), s.URL})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"ID", "Title", "Kind", "URL"}, rows, nil))
			return nil
		},
	}
}

func newContentCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "content <source-id>",
		Short: "Print the indexed text of a source",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := ctx.ensureClient(cmd.Context())
			if err != nil {
				return err
			}
			sc, err := c.GetSourceContent(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if ctx.jsonFlag {
				return writeJSON(cmd, sc)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "# %s (%s, %d chars)\n\n%s\n", sc.Title, sc.Kind.Name(), sc.CharCount(), sc.Content)
			return nil
		},
	}
}

func newQueryCommand(ctx *commandContext) *cobra.Command {
	var (
		conversationID string
		sourceIDs      []string
		timeout        time.Duration
	)

	cmd := &cobra.Command{
		Use:   "query <notebook-id> <question...>",
		Short: "Ask a question against a notebook",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := ctx.ensureClient(cmd.Context())
			if err != nil {
				return err
			}
			req := types.QueryRequest{
				NotebookID:     args[0],
				Text:           strings.Join(args[1:], " "),
				ConversationID: conversationID,
				Timeout:        timeout,
			}
			if len(sourceIDs) > 0 {
				req.SourceIDs = sourceIDs
			}

			res, err := c.Query(cmd.Context(), req)
			if err != nil {
				return err
			}
			if ctx.jsonFlag {
				return writeJSON(cmd, res)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n\nconversation %s, turn %d\n", res.Answer, res.ConversationID, res.TurnNumber)
			return nil
		},
	}

	cmd.Flags().StringVar(&conversationID, "conversation", "", "Continue this conversation")
	cmd.Flags().StringSliceVar(&sourceIDs, "source", nil, "Limit the answer to these source ids")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Per-attempt timeout (default from config)")
	return cmd
}

func newAddCommand(ctx *commandContext) *cobra.Command {
	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Add a source to a notebook",
	}

	addCmd.AddCommand(&cobra.Command{
		Use:   "url <notebook-id> <url>",
		Short: "Add a web page or video URL",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := ctx.ensureClient(cmd.Context())
			if err != nil {
				return err
			}
			src, err := c.AddURLSource(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return printSource(cmd, ctx, src)
		},
	})

	var title string
	textCmd := &cobra.Command{
		Use:   "text <notebook-id> <text...>",
		Short: "Add pasted text",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := ctx.ensureClient(cmd.Context())
			if err != nil {
				return err
			}
			src, err := c.AddTextSource(cmd.Context(), args[0], title, strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			return printSource(cmd, ctx, src)
		},
	}
	textCmd.Flags().StringVar(&title, "title", "", "Source title")
	addCmd.AddCommand(textCmd)

	return addCmd
}

func printSource(cmd *cobra.Command, ctx *commandContext, src *types.Source) error {
	if ctx.jsonFlag {
		return writeJSON(cmd, src)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "added %s (%s)\n", src.ID, src.Title)
	return nil
}

func ownership(nb types.Notebook) string {
	switch {
	case nb.IsOwned && nb.IsShared:
		return "owned, shared"
	case nb.IsOwned:
		return "owned"
	default:
		return "shared with me"
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}
