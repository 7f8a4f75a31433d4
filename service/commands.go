package service

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"postboard/app/cache"
	"postboard/app/config"
	"postboard/app/logger"
	"postboard/app/services"
	"postboard/app/storage"

	"go.uber.org/zap"
)

// stdout replaces os.Stdout for command output when set.
var stdout io.Writer

func out() io.Writer {
	if stdout != nil {
		return stdout
	}
	return os.Stdout
}

// HandleCommand runs a subcommand and returns the process exit code.
func HandleCommand(args []string) int {
	if len(args) < 1 {
		printHelp()
		return 1
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "serve":
		return serve(rest)
	case "migrate":
		return migrate(rest)
	case "group":
		return group(rest)
	case "user":
		return user(rest)
	case "post", "comment":
		return deleteCommand(cmd, rest)
	case "cache":
		return cacheCommand(rest)
	case "media":
		return media(rest)
	case "help":
		printHelp()
		return 0
	default:
		fmt.Fprintf(out(), "Unknown command: %s\n\n", cmd)
		printHelp()
		return 1
	}
}

func printHelp() {
	helpText := `Usage: postboard <command> [options]

Commands:
  serve                                     Run the web server
  migrate                                   Create or update the database schema
  group create --title T --slug S [--description D]
                                            Create a group
  group delete --slug S                     Delete a group; its posts are kept
  group list                                List groups
  user create --username U --password P [--email E] [--first-name F] [--last-name L]
                                            Create an account
  post delete --id N                        Delete a post and its image; comments are kept
  comment delete --id N                     Delete a comment
  cache clear                               Drop every cached page in redis
  media backup --file F                     Write the badger media store to F
  media restore --file F                    Load a media backup from F
  help                                      Display this help message

Every command accepts --config <path> (default: ./config.toml or /etc/postboard/config.toml).
`
	fmt.Fprintln(out(), helpText)
}

// newFlagSet returns a flag set with the shared --config flag.
func newFlagSet(name string) (*flag.FlagSet, *string) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(out())
	path := fs.String("config", "", "path to config file")
	return fs, path
}

func loadConfig(path string) (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}
	log := logger.New(logger.ConfigForEnvironment(cfg.App.Env, cfg.Log.Level, cfg.Log.Format, cfg.Log.Output))
	return cfg, log, nil
}

// withApp loads the configuration, builds the application and runs fn with it.
func withApp(path string, fn func(ctx context.Context, app *App) error) int {
	cfg, log, err := loadConfig(path)
	if err != nil {
		fmt.Fprintf(out(), "Failed to load config: %v\n", err)
		return 1
	}
	defer log.Sync()

	ctx := context.Background()
	app, err := NewApp(ctx, cfg, log)
	if err != nil {
		fmt.Fprintf(out(), "Failed to start: %v\n", err)
		return 1
	}
	defer app.Close()

	if err := fn(ctx, app); err != nil {
		fmt.Fprintf(out(), "Error: %v\n", err)
		return 1
	}
	return 0
}

// serve runs the web server until SIGINT or SIGTERM.
func serve(args []string) int {
	fs, path := newFlagSet("serve")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, log, err := loadConfig(*path)
	if err != nil {
		fmt.Fprintf(out(), "Failed to load config: %v\n", err)
		return 1
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := RunAppServer(ctx, cfg, log); err != nil {
		log.Error("Server stopped", zap.Error(err))
		return 1
	}
	return 0
}

// migrate creates or updates the schema; NewApp already does the work.
func migrate(args []string) int {
	fs, path := newFlagSet("migrate")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	return withApp(*path, func(ctx context.Context, app *App) error {
		fmt.Fprintf(out(), "Database migrated (%s)\n", app.Config.Database.Driver)
		return nil
	})
}

func group(args []string) int {
	if len(args) < 1 {
		fmt.Fprintln(out(), "Error: group requires create, delete or list")
		return 1
	}

	switch args[0] {
	case "create":
		fs, path := newFlagSet("group create")
		title := fs.String("title", "", "group title")
		slug := fs.String("slug", "", "URL slug")
		description := fs.String("description", "", "group description")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		if *title == "" || *slug == "" {
			fmt.Fprintln(out(), "Error: --title and --slug are required")
			return 1
		}
		return withApp(*path, func(ctx context.Context, app *App) error {
			g, err := app.Groups.Create(ctx, *title, *slug, *description)
			if err != nil {
				return err
			}
			fmt.Fprintf(out(), "Group %q created with id %d\n", g.Slug, g.ID)
			return nil
		})
	case "delete":
		fs, path := newFlagSet("group delete")
		slug := fs.String("slug", "", "URL slug")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		if *slug == "" {
			fmt.Fprintln(out(), "Error: --slug is required")
			return 1
		}
		return withApp(*path, func(ctx context.Context, app *App) error {
			if err := app.Groups.Delete(ctx, *slug); err != nil {
				return err
			}
			fmt.Fprintf(out(), "Group %q deleted\n", *slug)
			return nil
		})
	case "list":
		fs, path := newFlagSet("group list")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		return withApp(*path, func(ctx context.Context, app *App) error {
			groups, err := app.Groups.List(ctx)
			if err != nil {
				return err
			}
			for _, g := range groups {
				fmt.Fprintf(out(), "%d\t%s\t%s\n", g.ID, g.Slug, g.Title)
			}
			return nil
		})
	default:
		fmt.Fprintf(out(), "Unknown group command: %s\n", args[0])
		return 1
	}
}

func user(args []string) int {
	if len(args) < 1 || args[0] != "create" {
		fmt.Fprintln(out(), "Error: user requires create")
		return 1
	}

	fs, path := newFlagSet("user create")
	in := services.RegisterInput{}
	fs.StringVar(&in.Username, "username", "", "login name")
	fs.StringVar(&in.Password, "password", "", "password")
	fs.StringVar(&in.Email, "email", "", "email address")
	fs.StringVar(&in.FirstName, "first-name", "", "first name")
	fs.StringVar(&in.LastName, "last-name", "", "last name")
	if err := fs.Parse(args[1:]); err != nil {
		return 2
	}
	if in.Username == "" || in.Password == "" {
		fmt.Fprintln(out(), "Error: --username and --password are required")
		return 1
	}

	return withApp(*path, func(ctx context.Context, app *App) error {
		u, err := app.Users.Register(ctx, in)
		if err != nil {
			return err
		}
		fmt.Fprintf(out(), "User %q created with id %d\n", u.Username, u.ID)
		return nil
	})
}

// deleteCommand handles "post delete" and "comment delete".
func deleteCommand(kind string, args []string) int {
	if len(args) < 1 || args[0] != "delete" {
		fmt.Fprintf(out(), "Error: %s requires delete\n", kind)
		return 1
	}
	fs, path := newFlagSet(kind + " delete")
	id := fs.Uint("id", 0, kind+" id")
	if err := fs.Parse(args[1:]); err != nil {
		return 2
	}
	if *id == 0 {
		fmt.Fprintln(out(), "Error: --id is required")
		return 1
	}

	return withApp(*path, func(ctx context.Context, app *App) error {
		if kind == "post" {
			post, err := app.Posts.Delete(ctx, *id)
			if err != nil {
				return err
			}
			fmt.Fprintf(out(), "Post %d deleted\n", post.ID)
			return nil
		}
		comment, err := app.Comments.Delete(ctx, *id)
		if err != nil {
			return err
		}
		fmt.Fprintf(out(), "Comment %d deleted\n", comment.ID)
		return nil
	})
}

func cacheCommand(args []string) int {
	if len(args) < 1 || args[0] != "clear" {
		fmt.Fprintln(out(), "Error: cache requires clear")
		return 1
	}
	fs, path := newFlagSet("cache clear")
	if err := fs.Parse(args[1:]); err != nil {
		return 2
	}
	cfg, log, err := loadConfig(*path)
	if err != nil {
		fmt.Fprintf(out(), "Failed to load config: %v\n", err)
		return 1
	}
	defer log.Sync()

	pages, err := cache.Connect(cfg.Cache, cache.WithLogger(log))
	if err != nil {
		fmt.Fprintf(out(), "Error: %v\n", err)
		if errors.Is(err, cache.ErrProcessLocal) {
			fmt.Fprintln(out(), "cache clear only reaches a redis page cache; restart the server to drop a badger cache")
		}
		return 1
	}
	defer pages.Close()

	if err := pages.Clear(context.Background()); err != nil {
		fmt.Fprintf(out(), "Error: %v\n", err)
		return 1
	}
	fmt.Fprintln(out(), "Page cache cleared")
	return 0
}

// badgerBackup is implemented by the embedded media store.
type badgerBackup interface {
	Backup(w io.Writer) error
	Restore(r io.Reader) error
}

func media(args []string) int {
	if len(args) < 1 || (args[0] != "backup" && args[0] != "restore") {
		fmt.Fprintln(out(), "Error: media requires backup or restore")
		return 1
	}
	action := args[0]

	fs, path := newFlagSet("media " + action)
	file := fs.String("file", "", "backup file")
	if err := fs.Parse(args[1:]); err != nil {
		return 2
	}
	if *file == "" {
		fmt.Fprintln(out(), "Error: --file is required")
		return 1
	}
	if cfg, err := config.Load(*path); err == nil && cfg.Media.Backend == "badger" && cfg.Media.BadgerDir == "" {
		fmt.Fprintf(out(), "Error: media %s needs media.badger_dir; an in-memory media store only exists inside the server\n", action)
		return 1
	}

	return withApp(*path, func(ctx context.Context, app *App) error {
		store, ok := app.Media.(badgerBackup)
		if !ok {
			return errors.New("media backup needs media.backend = badger")
		}
		if action == "backup" {
			return backupMedia(store, *file)
		}
		return restoreMedia(store, *file)
	})
}

func backupMedia(store badgerBackup, file string) error {
	f, err := os.Create(file)
	if err != nil {
		return fmt.Errorf("failed to create backup file: %w", err)
	}
	defer f.Close()

	if err := store.Backup(f); err != nil {
		return err
	}
	fmt.Fprintf(out(), "Media backed up successfully to %s\n", file)
	return nil
}

func restoreMedia(store badgerBackup, file string) error {
	f, err := os.Open(file)
	if err != nil {
		return fmt.Errorf("failed to open backup file: %w", err)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat backup file: %w", err)
	}
	if fi.Size() == 0 {
		return fmt.Errorf("backup file is empty: %s", file)
	}

	if err := store.Restore(f); err != nil {
		return err
	}
	fmt.Fprintln(out(), "Media restored successfully")
	return nil
}

var _ badgerBackup = (*storage.BadgerMediaStore)(nil)
