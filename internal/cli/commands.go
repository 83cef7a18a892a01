package cli

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/lmt/todolist/internal/client/api"
	"github.com/lmt/todolist/internal/client/state"
	"github.com/lmt/todolist/internal/domain"
	"github.com/spf13/cobra"
)

func (r *RootCommand) newListCommand() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List every task",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := r.context(cmd)
			defer cancel()

			tasks, err := r.client.ListTasks(ctx)
			if err != nil {
				return userError(state.MsgFetchFailed, err)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(tasks)
			}
			if len(tasks) == 0 {
				printf(out, "No tasks yet.\n")
				return nil
			}
			printf(out, "%s\n", renderTable(tasks))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print tasks as JSON")
	return cmd
}

func renderTable(tasks []domain.Task) string {
	rows := make([][]string, 0, len(tasks))
	for _, t := range tasks {
		rows = append(rows, []string{t.ID, t.Status.Label(), t.Text})
	}
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "STATUS", "TASK").
		Rows(rows...).
		String()
}

func (r *RootCommand) newAddCommand() *cobra.Command {
	var rawStatus string
	cmd := &cobra.Command{
		Use:   "add [task text]",
		Short: "Create a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.TrimSpace(strings.Join(args, " "))
			if text == "" {
				return errors.New("task text is required")
			}
			var status domain.TaskStatus
			if rawStatus != "" {
				parsed, ok := domain.ParseTaskStatus(rawStatus)
				if !ok {
					return invalidStatus(rawStatus)
				}
				status = parsed
			}

			ctx, cancel := r.context(cmd)
			defer cancel()
			task, err := r.client.CreateTask(ctx, text, status)
			if err != nil {
				return userError(state.MsgCreateFailed, err)
			}
			printf(cmd.OutOrStdout(), "%s\n%s  %s  %s\n", state.MsgCreated, task.ID, task.Status.Label(), task.Text)
			return nil
		},
	}
	cmd.Flags().StringVarP(&rawStatus, "status", "s", "", "Initial status (pending, in_progress, completed)")
	return cmd
}

func (r *RootCommand) newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status [id] [status]",
		Short: "Change a task's status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, ok := domain.ParseTaskStatus(args[1])
			if !ok {
				return invalidStatus(args[1])
			}

			ctx, cancel := r.context(cmd)
			defer cancel()
			task, err := r.client.UpdateStatus(ctx, args[0], status)
			if err != nil {
				return userError(state.MsgStatusFailed, err)
			}
			printf(cmd.OutOrStdout(), "%s\n%s  %s  %s\n", state.MsgStatusUpdated, task.ID, task.Status.Label(), task.Text)
			return nil
		},
	}
}

func (r *RootCommand) newEditCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "edit [id] [task text]",
		Short: "Change a task's text",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.TrimSpace(strings.Join(args[1:], " "))
			if text == "" {
				return errors.New("task text is required")
			}

			ctx, cancel := r.context(cmd)
			defer cancel()
			task, err := r.client.UpdateText(ctx, args[0], text)
			if err != nil {
				return userError(state.MsgUpdateFailed, err)
			}
			printf(cmd.OutOrStdout(), "%s\n%s  %s  %s\n", state.MsgUpdated, task.ID, task.Status.Label(), task.Text)
			return nil
		},
	}
}

func (r *RootCommand) newRemoveCommand() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:     "rm [id]",
		Aliases: []string{"delete"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			out := cmd.OutOrStdout()

			if !yes {
				label := id
				ctx, cancel := r.context(cmd)
				tasks, err := r.client.ListTasks(ctx)
				cancel()
				if err == nil {
					for _, t := range tasks {
						if t.ID == id {
							label = t.Text
						}
					}
				}
				printf(out, "Delete %q? [y/N] ", label)
				answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				answer = strings.ToLower(strings.TrimSpace(answer))
				if answer != "y" && answer != "yes" {
					printf(out, "Delete cancelled.\n")
					return nil
				}
			}

			ctx, cancel := r.context(cmd)
			defer cancel()
			if err := r.client.DeleteTask(ctx, id); err != nil {
				return userError(state.MsgDeleteFailed, err)
			}
			printf(out, "%s\n", state.MsgDeleted)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Delete without asking")
	return cmd
}

func (r *RootCommand) newPingCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check that the service answers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := r.context(cmd)
			defer cancel()
			greeting, err := r.client.Ping(ctx)
			if err != nil {
				return fmt.Errorf("service at %s is not reachable: %w", r.client.BaseURL(), err)
			}
			printf(cmd.OutOrStdout(), "%s\n", greeting)
			return nil
		},
	}
}

func invalidStatus(raw string) error {
	return fmt.Errorf("invalid status %q: expected one of pending, in_progress, completed", raw)
}

// userError puts the fixed message first and the server's reason after it.
func userError(message string, err error) error {
	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		reason := apiErr.Message
		if len(apiErr.Details) > 0 {
			reason += " (" + strings.Join(apiErr.Details, "; ") + ")"
		}
		if reason != "" {
			return fmt.Errorf("%s: %s", message, reason)
		}
	}
	return fmt.Errorf("%s: %w", message, err)
}
