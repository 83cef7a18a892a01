package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/lmt/todolist/internal/client/api"
	"github.com/lmt/todolist/internal/client/tui"
	"github.com/lmt/todolist/internal/config"
	"github.com/lmt/todolist/internal/infrastructure/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// RootCommand is todoctl: the interactive task view plus one-shot commands
// against the same API.
type RootCommand struct {
	cmd *cobra.Command
	v   *viper.Viper

	cfg    *config.Config
	log    *logger.Logger
	client *api.Client
}

func NewRootCommand() *RootCommand {
	root := &RootCommand{v: config.New()}
	_ = root.v.BindEnv("client.api_url", config.EnvPrefix+"_CLIENT_API_URL", config.EnvPrefix+"_API_URL")

	root.cmd = &cobra.Command{
		Use:   "todoctl",
		Short: "Terminal client for the LMT to-do service",
		Long: `todoctl talks to the to-do service over HTTP.

Run without a command to open the interactive view.

EXAMPLES:
  todoctl                                   # interactive view
  todoctl list                              # print every task
  todoctl add "Buy milk"                    # create a task
  todoctl status <id> in_progress           # change a task's status
  todoctl edit <id> "Buy oat milk"          # change a task's text
  todoctl rm <id>                           # delete a task (asks first)

CONFIGURATION:
  flags > environment > config file > defaults
    TODO_API_URL / --api-url                service base URL (default: http://localhost:5000)
    TODO_CLIENT_TIMEOUT / --timeout         request timeout (default: 10s)`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return root.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if root.log != nil {
				_ = root.log.Sync()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return root.runTUI(cmd)
		},
	}

	root.addGlobalFlags()
	root.addSubcommands()
	return root
}

func (r *RootCommand) Command() *cobra.Command {
	return r.cmd
}

func (r *RootCommand) Execute() error {
	return r.cmd.Execute()
}

func (r *RootCommand) addGlobalFlags() {
	flags := r.cmd.PersistentFlags()
	flags.String("config", "", "Config file (default: config/config.yaml when present)")
	flags.String("api-url", "", "Task service base URL (overrides TODO_API_URL)")
	flags.Duration("timeout", 0, "Request timeout (overrides TODO_CLIENT_TIMEOUT)")
	flags.String("log-file", "", "Client log file (default: todoctl.log in the user cache dir)")
	flags.Bool("dark", false, "Start the interactive view with the dark theme")

	_ = r.v.BindPFlag("client.api_url", flags.Lookup("api-url"))
	_ = r.v.BindPFlag("client.timeout", flags.Lookup("timeout"))
	_ = r.v.BindPFlag("client.log_path", flags.Lookup("log-file"))
}

func (r *RootCommand) addSubcommands() {
	r.cmd.AddCommand(
		r.newListCommand(),
		r.newAddCommand(),
		r.newStatusCommand(),
		r.newEditCommand(),
		r.newRemoveCommand(),
		r.newPingCommand(),
		&cobra.Command{
			Use:   "tui",
			Short: "Open the interactive view",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return r.runTUI(cmd)
			},
		},
	)
}

// setup loads configuration once flags are parsed and builds the API client.
func (r *RootCommand) setup() error {
	path, _ := r.cmd.PersistentFlags().GetString("config")
	if path == "" {
		path = config.ResolvePath("config/config.yaml", "../config/config.yaml")
	}
	cfg, err := config.LoadClient(r.v, path)
	if err != nil {
		return err
	}
	r.cfg = cfg

	logPath := cfg.Client.LogPath
	if logPath == "" {
		logPath = defaultLogPath()
	}
	log, err := logger.New(config.LoggerConfig{
		Level:            cfg.Logger.Level,
		Encoding:         "json",
		OutputPaths:      []string{logPath},
		ErrorOutputPaths: []string{logPath},
	})
	if err != nil {
		log = logger.NewNop()
	}
	r.log = log.Named("todoctl")

	client, err := api.NewClient(api.ClientConfig{
		BaseURL: cfg.Client.APIURL,
		Timeout: cfg.Client.Timeout,
		Logger:  r.log,
	})
	if err != nil {
		return err
	}
	r.client = client
	r.log.Infow("todoctl_start", "api_url", client.BaseURL())
	return nil
}

func defaultLogPath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "todoctl.log")
	}
	dir = filepath.Join(dir, "todoctl")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return filepath.Join(os.TempDir(), "todoctl.log")
	}
	return filepath.Join(dir, "todoctl.log")
}

func (r *RootCommand) timeout() time.Duration {
	if r.cfg != nil && r.cfg.Client.Timeout > 0 {
		return r.cfg.Client.Timeout
	}
	return 10 * time.Second
}

func (r *RootCommand) context(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(parent, r.timeout())
}

func (r *RootCommand) runTUI(cmd *cobra.Command) error {
	dark, _ := cmd.Flags().GetBool("dark")
	return tui.Run(r.client, tui.Options{
		Timeout: r.timeout(),
		Dark:    dark,
		Logger:  r.log,
	})
}

func printf(w io.Writer, format string, args ...interface{}) {
	_, _ = fmt.Fprintf(w, format, args...)
}
