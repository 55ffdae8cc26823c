// taskctl manages the local follow-up task database that apply runs feed:
// adding tasks, listing and completing them, bulk imports, and pushing due
// dates to a calendar via the gog CLI.
package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"applybot/internal/calendar"
	"applybot/internal/config"
	"applybot/internal/secrets"
	"applybot/internal/taskdb"
)

func main() {
	log.SetFlags(0)
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

type app struct {
	cfg     config.Config
	cfgPath string
	dataDir string
}

func (a *app) openDB() (*taskdb.DB, error) {
	path := a.cfg.TaskDB.Path
	if !filepath.IsAbs(path) {
		path = filepath.Join(a.dataDir, path)
	}
	return taskdb.Open(path)
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "taskctl",
		Short:         "Manage job-hunt follow-up tasks",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a.dataDir = os.Getenv("APPLYBOT_DATA_DIR")
			if a.dataDir == "" {
				a.dataDir = "."
			}
			p, err := config.EnsureUserConfig(a.dataDir)
			if err != nil {
				return err
			}
			cfg, err := config.Load(p)
			if err != nil {
				return err
			}
			config.ApplyEnv(&cfg)
			a.cfg = cfg
			a.cfgPath = p
			return nil
		},
	}

	root.AddCommand(
		newAddCmd(a),
		newListCmd(a),
		newCompleteCmd(a),
		newBulkAddCmd(a),
		newScheduleCmd(a),
		newDedupeCmd(a),
		newCalendarSyncCmd(a),
		newSecretCmd(a),
		newConfigCmd(a),
	)
	return root
}

func newAddCmd(a *app) *cobra.Command {
	var (
		desc     string
		priority int
		due      string
		tags     string
		taskCtx  string
	)
	cmd := &cobra.Command{
		Use:   "add TITLE",
		Short: "Add a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			t := taskdb.Task{
				Title:       args[0],
				Description: desc,
				Priority:    priority,
				Tags:        tags,
				Context:     taskCtx,
			}
			if due != "" {
				d, err := parseDue(due)
				if err != nil {
					return err
				}
				t.DueDate = &d
			}
			id, err := db.Add(cmd.Context(), t)
			if err != nil {
				return err
			}
			fmt.Printf("Added task %d: %s\n", id, t.Title)
			return nil
		},
	}
	cmd.Flags().StringVarP(&desc, "description", "d", "", "task description")
	cmd.Flags().IntVarP(&priority, "priority", "p", 2, "priority (1=high, 3=low)")
	cmd.Flags().StringVar(&due, "due", "", "due date (YYYY-MM-DD or RFC3339)")
	cmd.Flags().StringVar(&tags, "tags", "", "comma-separated tags")
	cmd.Flags().StringVar(&taskCtx, "context", "", "free-form context note")
	return cmd
}

func newListCmd(a *app) *cobra.Command {
	var (
		status   string
		priority int
		all      bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			var tasks []taskdb.Task
			if all {
				tasks, err = db.All(cmd.Context())
			} else {
				tasks, err = db.List(cmd.Context(), taskdb.ListOpts{Status: status, Priority: priority})
			}
			if err != nil {
				return err
			}
			if len(tasks) == 0 {
				fmt.Println("No tasks.")
				return nil
			}
			for _, t := range tasks {
				printTask(t)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&status, "status", taskdb.StatusPending, "filter by status")
	cmd.Flags().IntVarP(&priority, "priority", "p", 0, "filter by priority, 0 for any")
	cmd.Flags().BoolVarP(&all, "all", "a", false, "include every status")
	return cmd
}

func newCompleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "complete ID",
		Short: "Mark a task completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("bad task id %q", args[0])
			}
			db, err := a.openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			if err := db.Complete(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Printf("Completed task %d\n", id)
			return nil
		},
	}
}

// bulkTask mirrors one entry of the YAML import file.
type bulkTask struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Priority    int    `yaml:"priority"`
	Due         string `yaml:"due"`
	Tags        string `yaml:"tags"`
	Context     string `yaml:"context"`
}

func newBulkAddCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "bulk-add FILE",
		Short: "Import tasks from a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			var entries []bulkTask
			if err := yaml.Unmarshal(b, &entries); err != nil {
				return fmt.Errorf("parse %s: %w", args[0], err)
			}

			db, err := a.openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			added := 0
			for _, e := range entries {
				t := taskdb.Task{
					Title:       e.Title,
					Description: e.Description,
					Priority:    e.Priority,
					Tags:        e.Tags,
					Context:     e.Context,
				}
				if e.Due != "" {
					d, err := parseDue(e.Due)
					if err != nil {
						return fmt.Errorf("task %q: %w", e.Title, err)
					}
					t.DueDate = &d
				}
				if _, err := db.Add(cmd.Context(), t); err != nil {
					return err
				}
				added++
			}
			fmt.Printf("Added %d tasks from %s\n", added, args[0])
			return nil
		},
	}
}

func newScheduleCmd(a *app) *cobra.Command {
	var notes string
	cmd := &cobra.Command{
		Use:   "schedule ID DUE",
		Short: "Set a task's due date",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("bad task id %q", args[0])
			}
			due, err := parseDue(args[1])
			if err != nil {
				return err
			}
			db, err := a.openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			if err := db.Reschedule(cmd.Context(), id, due, notes); err != nil {
				return err
			}
			fmt.Printf("Task %d due %s\n", id, due.Format("2006-01-02"))
			return nil
		},
	}
	cmd.Flags().StringVar(&notes, "notes", "", "replace the task notes")
	return cmd
}

func newDedupeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "dedupe",
		Short: "Remove duplicate tasks, keeping the oldest of each title",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			n, err := db.DeleteDuplicates(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("Removed %d duplicate tasks\n", n)
			return nil
		},
	}
}

func newCalendarSyncCmd(a *app) *cobra.Command {
	var account string
	cmd := &cobra.Command{
		Use:   "calendar-sync",
		Short: "Create calendar events for tasks with due dates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if account == "" {
				account = a.cfg.Calendar.Account
			}
			db, err := a.openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			tasks, err := db.All(cmd.Context())
			if err != nil {
				return err
			}
			sync := calendar.New(account, a.cfg.Calendar.GogPath)
			n, err := sync.Run(cmd.Context(), tasks)
			if err != nil {
				return err
			}
			fmt.Printf("Created %d calendar events\n", n)
			return nil
		},
	}
	cmd.Flags().StringVar(&account, "account", "", "calendar account, overrides config")
	return cmd
}

func newSecretCmd(a *app) *cobra.Command {
	secret := &cobra.Command{
		Use:   "secret",
		Short: "Manage keychain credentials",
	}

	mailAccount := func() string {
		host := a.cfg.Email.IMAPHost
		if a.cfg.Email.Protocol == "pop3" {
			host = a.cfg.Email.POP3Host
		}
		return secrets.MailAccount(a.cfg.Email.Address, host)
	}

	setCmd := &cobra.Command{
		Use:   "set-mail-password PASSWORD",
		Short: "Store the mailbox app password in the OS keychain",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.Email.Address == "" {
				return fmt.Errorf("set email.address in %s first", a.cfgPath)
			}
			if err := secrets.SetAppPassword(mailAccount(), args[0]); err != nil {
				return err
			}
			fmt.Println("Stored mailbox password in keychain")
			return nil
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear-mail-password",
		Short: "Remove the mailbox app password from the OS keychain",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := secrets.DeleteAppPassword(mailAccount()); err != nil {
				return err
			}
			fmt.Println("Removed mailbox password from keychain")
			return nil
		},
	}

	secret.AddCommand(setCmd, clearCmd)
	return secret
}

func newConfigCmd(a *app) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and validate the config file",
	}

	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "Validate the config and rewrite it normalized",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Validate(a.cfg); err != nil {
				return err
			}
			if err := config.SaveAtomic(a.cfgPath, a.cfg); err != nil {
				return err
			}
			fmt.Printf("Config OK: %s\n", a.cfgPath)
			return nil
		},
	}

	pathCmd := &cobra.Command{
		Use:   "path",
		Short: "Print the config file path",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(a.cfgPath)
		},
	}

	cfgCmd.AddCommand(checkCmd, pathCmd)
	return cfgCmd
}

func printTask(t taskdb.Task) {
	line := fmt.Sprintf("#%d [P%d] %s", t.ID, t.Priority, t.Title)
	if t.Status != taskdb.StatusPending {
		line += " (" + t.Status + ")"
	}
	if t.DueDate != nil {
		line += " due " + t.DueDate.Format("2006-01-02")
	}
	fmt.Println(line)
	if t.Description != "" {
		fmt.Println("    " + strings.ReplaceAll(t.Description, "\n", "\n    "))
	}
}

// parseDue accepts a bare date or a full timestamp.
func parseDue(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02", time.RFC3339, "2006-01-02T15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("bad due date %q (want YYYY-MM-DD)", s)
}
