package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/vaidya-ai/clinicalmap/pkg/errors"
	"github.com/vaidya-ai/clinicalmap/pkg/markup"
	"github.com/vaidya-ai/clinicalmap/pkg/session"
)

// sessionsCommand creates the command for managing saved maps.
func (c *CLI) sessionsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "sessions",
		Aliases: []string{"maps"},
		Short:   "Manage saved concept maps",
	}

	cmd.AddCommand(c.sessionsListCommand())
	cmd.AddCommand(c.sessionsSaveCommand())
	cmd.AddCommand(c.sessionsShowCommand())
	cmd.AddCommand(c.sessionsDeleteCommand())
	cmd.AddCommand(c.sessionsCleanupCommand())

	return cmd
}

func (c *CLI) sessionsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved maps, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := c.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			list, err := store.List(cmd.Context())
			if err != nil {
				return fmt.Errorf("list sessions: %w", err)
			}
			if len(list) == 0 {
				printInfo("No saved maps")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), sessionTable(list, time.Now()))
			return nil
		},
	}
}

// sessionTable renders summaries as a bordered table.
func sessionTable(list []session.Summary, now time.Time) string {
	rows := make([][]string, 0, len(list))
	for _, s := range list {
		topic := s.Topic
		if topic == "" {
			topic = "—"
		}
		rows = append(rows, []string{s.ID, topic, formatRelativeTime(s.CreatedAt, now)})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("ID", "Topic", "Created").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col == 0 {
				return lipgloss.NewStyle().Foreground(colorDim)
			}
			return lipgloss.NewStyle()
		}).
		Render()
}

func (c *CLI) sessionsSaveCommand() *cobra.Command {
	var (
		topic string
		ttl   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "save [file]",
		Short: "Save markup as a new map",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := ""
			if len(args) == 1 {
				input = args[0]
			}
			data, err := readInput(cmd, input)
			if err != nil {
				return err
			}
			content := string(data)
			if err := errors.ValidateContent(content); err != nil {
				return err
			}
			if topic == "" {
				if env, ok := markup.ParseEnvelope(content); ok {
					topic = env.Topic
				}
			}
			if err := errors.ValidateTopic(topic); err != nil {
				return err
			}

			cfg, err := c.config()
			if err != nil {
				return err
			}
			if ttl <= 0 {
				ttl = cfg.Sessions.TTL.Std()
			}

			store, err := c.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			sess, err := session.New(topic, content, ttl)
			if err != nil {
				return err
			}
			if err := store.Set(cmd.Context(), sess); err != nil {
				return fmt.Errorf("save session: %w", err)
			}

			printSuccess("Saved map")
			printKeyValue("ID", sess.ID)
			if sess.Topic != "" {
				printKeyValue("Topic", sess.Topic)
			}
			printKeyValue("Expires", sess.ExpiresAt.Local().Format(time.DateTime))
			return nil
		},
	}

	cmd.Flags().StringVar(&topic, "topic", "", "map topic (default: envelope topic)")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "how long to keep the map (default from config)")

	return cmd
}

func (c *CLI) sessionsShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print the markup of a saved map",
		Args:  cobra.ExactArgs(1),

		ValidArgsFunction: c.completeSessionIDs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := c.loadSession(cmd, args[0])
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), sess.Content)
			if len(sess.Content) > 0 && sess.Content[len(sess.Content)-1] != '\n' {
				fmt.Fprintln(cmd.OutOrStdout())
			}
			return nil
		},
	}
}

func (c *CLI) sessionsDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a saved map",
		Args:  cobra.ExactArgs(1),

		ValidArgsFunction: c.completeSessionIDs,
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			if err := errors.ValidateSessionID(id); err != nil {
				return err
			}
			store, err := c.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Delete(cmd.Context(), id); err != nil {
				return fmt.Errorf("delete session: %w", err)
			}
			printSuccess("Deleted %s", id)
			return nil
		},
	}
}

func (c *CLI) sessionsCleanupCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup",
		Short: "Remove expired maps",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := c.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Cleanup(cmd.Context()); err != nil {
				return fmt.Errorf("cleanup sessions: %w", err)
			}
			printSuccess("Removed expired maps")
			return nil
		},
	}
}

func (c *CLI) loadSession(cmd *cobra.Command, id string) (*session.Session, error) {
	if err := errors.ValidateSessionID(id); err != nil {
		return nil, err
	}
	store, err := c.openStore(cmd.Context())
	if err != nil {
		return nil, err
	}
	defer store.Close()

	sess, err := store.Get(cmd.Context(), id)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if sess == nil {
		return nil, errors.New(errors.ErrCodeSessionNotFound, "map %s not found", id)
	}
	return sess, nil
}

// completeSessionIDs offers the ids of saved maps, described by topic.
func (c *CLI) completeSessionIDs(cmd *cobra.Command, args []string, toComplete string) ([]cobra.Completion, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	store, err := c.openStore(cmd.Context())
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	defer store.Close()

	list, err := store.List(cmd.Context())
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	var out []cobra.Completion
	for _, s := range list {
		if strings.HasPrefix(s.ID, toComplete) {
			out = append(out, cobra.CompletionWithDesc(s.ID, s.Topic))
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}

// formatRelativeTime renders t relative to now for listings.
func formatRelativeTime(t, now time.Time) string {
	diff := now.Sub(t)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	default:
		return t.Format("Jan 2, 2006")
	}
}
