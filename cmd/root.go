package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	mtp "github.com/modeltoolsprotocol/go-sdk"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rogersnm/linkbook/internal/config"
	"github.com/rogersnm/linkbook/internal/id"
	"github.com/rogersnm/linkbook/internal/logger"
	"github.com/rogersnm/linkbook/internal/model"
	"github.com/rogersnm/linkbook/internal/storage"
	"github.com/rogersnm/linkbook/internal/store"
	"github.com/rogersnm/linkbook/internal/workspace"
)

var (
	version     = "dev"
	dataDirFlag string
	dataDir     string
	cfg         *config.Config
	log         *zap.Logger
	backend     storage.Backend
	st          *store.Store
)

var rootCmd = &cobra.Command{
	Use:     "linkbook",
	Short:   "Keep a collection of objects and the links between them",
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cwd, _ := os.Getwd()
		var err error
		dataDir, err = workspace.Resolve(dataDirFlag, cwd)
		if err != nil {
			return fmt.Errorf("resolving data directory: %w", err)
		}
		if err := os.MkdirAll(dataDir, 0755); err != nil {
			return fmt.Errorf("creating data directory: %w", err)
		}

		cfg, err = config.Load(dataDir)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		cfg.ApplyEnv(os.Getenv)

		log, err = logger.New(cfg.LogLevel)
		if err != nil {
			return err
		}

		// Config and init commands work without opening storage.
		if skipsStore(cmd) {
			return nil
		}
		return openStore(cmd.Context())
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return closeStore()
	},
	SilenceUsage: true,
}

func skipsStore(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c == configCmd || c == initCmd {
			return true
		}
	}
	return false
}

func openStore(ctx context.Context) error {
	var err error
	backend, err = storage.Open(ctx, cfg.Storage, dataDir, log)
	if err != nil {
		return fmt.Errorf("opening %s storage: %w", cfg.Storage.BackendName(), err)
	}
	st, err = store.New(ctx, backend, store.WithLogger(log))
	if err != nil {
		backend.Close()
		backend = nil
		return err
	}
	return nil
}

func closeStore() error {
	var err error
	if backend != nil {
		err = backend.Close()
		backend = nil
	}
	st = nil
	if log != nil {
		_ = log.Sync()
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dataDirFlag, "data-dir", "", "data directory path (default: nearest .linkbook, then ~/.linkbook)")

	mtpOpts := &mtp.DescribeOptions{
		Commands: map[string]*mtp.CommandAnnotation{
			"add": {
				Examples: []mtp.Example{
					{Description: "Create an object", Command: "linkbook add \"Core Router\" --description \"Rack 3\" --type network"},
					{Description: "Create an object linked to existing ones", Command: "linkbook add \"Disk 2\" -d \"Spare\" -t storage --related \"Core Router,12\""},
				},
			},
			"update": {
				Examples: []mtp.Example{
					{Description: "Rename an object", Command: "linkbook update 12 --name \"Edge Router\""},
					{Description: "Replace an object's links", Command: "linkbook update 12 --related 7,9"},
					{Description: "Remove all links", Command: "linkbook update 12 --related \"\""},
				},
			},
			"delete": {
				Examples: []mtp.Example{
					{Description: "Delete an object (interactive confirm)", Command: "linkbook delete 12"},
					{Description: "Delete an object (skip confirm)", Command: "linkbook delete 12 --force"},
				},
			},
			"link": {
				Examples: []mtp.Example{
					{Description: "Link two objects both ways", Command: "linkbook link \"Core Router\" \"Disk 2\""},
				},
			},
			"list": {
				Stdout: &mtp.IODescriptor{
					ContentType: "text/plain",
					Description: "Table of objects with ID, name, type, description and link count",
				},
				Examples: []mtp.Example{
					{Description: "List objects matching a query", Command: "linkbook list --query router"},
				},
			},
			"search": {
				Stdout: &mtp.IODescriptor{
					ContentType: "text/plain",
					Description: "One matching object per line: ID and name",
				},
			},
			"show": {
				Stdout: &mtp.IODescriptor{
					ContentType: "text/markdown",
					Description: "The object as markdown with YAML frontmatter (id, name, type, related)",
				},
			},
			"graph": {
				Stdout: &mtp.IODescriptor{
					ContentType: "text/plain",
					Description: "ASCII tree of each connected group of linked objects",
				},
			},
			"export": {
				Examples: []mtp.Example{
					{Description: "Write every object as a markdown file", Command: "linkbook export ./objects"},
				},
			},
		},
	}

	mtp.WithDescribe(rootCmd, mtpOpts)
}

func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

// resolveObject finds an object by numeric id or, failing that, by name.
func resolveObject(ref string) (model.ManagedObject, error) {
	if n, err := id.Parse(ref); err == nil {
		o, err := st.Get(n)
		if err == nil || !errors.Is(err, store.ErrNotFound) {
			return o, err
		}
	}
	o, err := st.FindByName(ref)
	if errors.Is(err, store.ErrNotFound) {
		return o, fmt.Errorf("object %s not found", ref)
	}
	return o, err
}

// resolveRefs resolves a comma-separated list of ids or names.
func resolveRefs(list string) ([]int64, error) {
	ids := []int64{}
	for _, ref := range strings.Split(list, ",") {
		ref = strings.TrimSpace(ref)
		if ref == "" {
			continue
		}
		o, err := resolveObject(ref)
		if err != nil {
			return nil, err
		}
		ids = append(ids, o.ID)
	}
	return ids, nil
}
