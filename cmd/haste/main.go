// Command haste is a CLI front end for the clipboard history engine:
// a development playground and bulk-ingest tool around the same facade
// the C boundary layer exposes.
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/hasteapp/hastecore/internal/engine"
	"github.com/hasteapp/hastecore/internal/storage"
	"github.com/hasteapp/hastecore/pkg/types"
)

var (
	version = "dev"

	dbPath         string
	blobDir        string
	indexFileNames bool
)

var rootCmd = &cobra.Command{
	Use:   "haste",
	Short: "Clipboard history storage and search",
	Long:  `Inspect and exercise the clipboard history engine: add captures, search, pin and prune.`,
}

// openEngine opens the engine with the root flags applied.
func openEngine() (*engine.Engine, error) {
	var opts []engine.Option
	if indexFileNames {
		opts = append(opts, engine.WithFileNameIndexing())
	}
	eng, err := engine.Open(dbPath, blobDir, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to open engine: %w", err)
	}
	return eng, nil
}

func parseKindFlag(cmd *cobra.Command) (types.Kind, error) {
	kindStr, _ := cmd.Flags().GetString("kind")
	return types.ParseKind(kindStr)
}

var addCmd = &cobra.Command{
	Use:   "add <content>",
	Short: "Insert an item unconditionally (no duplicate check)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := parseKindFlag(cmd)
		if err != nil {
			return err
		}
		source, _ := cmd.Flags().GetString("source")

		eng, err := openEngine()
		if err != nil {
			return err
		}
		defer eng.Close()

		id, err := eng.AddItem(context.Background(), &types.NewItem{
			Kind:       kind,
			ContentRef: args[0],
			SourceApp:  source,
		})
		if err != nil {
			return err
		}
		fmt.Printf("added item %d\n", id)
		return nil
	},
}

var pasteCmd = &cobra.Command{
	Use:   "paste <content>",
	Short: "Insert an item with duplicate suppression",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := parseKindFlag(cmd)
		if err != nil {
			return err
		}
		source, _ := cmd.Flags().GetString("source")

		eng, err := openEngine()
		if err != nil {
			return err
		}
		defer eng.Close()

		outcome, err := eng.DedupeInsert(context.Background(), &types.NewItem{
			Kind:       kind,
			ContentRef: args[0],
			SourceApp:  source,
		})
		if err != nil {
			return err
		}
		if outcome.Status == types.StatusRejected {
			fmt.Println("rejected (blank content)")
			return nil
		}
		fmt.Printf("%s item %d\n", outcome.Status, outcome.ID)
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the most recent items",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		eng, err := openEngine()
		if err != nil {
			return err
		}
		defer eng.Close()

		items, err := eng.Search(context.Background(), "", limit)
		if err != nil {
			return err
		}
		printItems(items)
		return nil
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search item text, best match first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		eng, err := openEngine()
		if err != nil {
			return err
		}
		defer eng.Close()

		items, err := eng.Search(context.Background(), args[0], limit)
		if err != nil {
			return err
		}
		printItems(items)
		return nil
	},
}

var getCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid id %q: %w", args[0], err)
		}

		eng, err := openEngine()
		if err != nil {
			return err
		}
		defer eng.Close()

		item, err := eng.GetItem(context.Background(), id)
		if err != nil {
			return err
		}
		printItems([]*types.Item{item})
		return nil
	},
}

var rmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete one item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid id %q: %w", args[0], err)
		}

		eng, err := openEngine()
		if err != nil {
			return err
		}
		defer eng.Close()

		if err := eng.DeleteItem(context.Background(), id); err != nil {
			return err
		}
		fmt.Printf("deleted item %d\n", id)
		return nil
	},
}

func pinCommand(use, short string, pinned bool) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid id %q: %w", args[0], err)
			}

			eng, err := openEngine()
			if err != nil {
				return err
			}
			defer eng.Close()

			return eng.PinItem(context.Background(), id, pinned)
		},
	}
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all unpinned items",
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := openEngine()
		if err != nil {
			return err
		}
		defer eng.Close()

		deleted, err := eng.Clear(context.Background())
		if err != nil {
			return err
		}
		fmt.Printf("deleted %d items\n", deleted)
		return nil
	},
}

var ingestCmd = &cobra.Command{
	Use:   "ingest [file]",
	Short: "Bulk-load newline-delimited text items (stdin by default)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var input io.Reader = os.Stdin
		if len(args) == 1 {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			input = f
		}

		eng, err := openEngine()
		if err != nil {
			return err
		}
		defer eng.Close()

		inserted, touched, rejected, err := ingest(context.Background(), eng, input)
		if err != nil {
			return err
		}
		fmt.Printf("inserted %d, touched %d, rejected %d\n", inserted, touched, rejected)
		return nil
	},
}

// ingest pipelines line reading and engine writes: the reader goroutine
// feeds a channel, the writer drives the engine from a single goroutine
// (the engine expects one logical caller at a time).
func ingest(ctx context.Context, eng *engine.Engine, input io.Reader) (inserted, touched, rejected int, err error) {
	lines := make(chan string, 256)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(lines)
		scanner := bufio.NewScanner(input)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return scanner.Err()
	})

	g.Go(func() error {
		for line := range lines {
			outcome, err := eng.DedupeInsert(gctx, &types.NewItem{
				Kind:       types.KindText,
				ContentRef: line,
			})
			if err != nil {
				return err
			}
			switch outcome.Status {
			case types.StatusInserted:
				inserted++
			case types.StatusTouched:
				touched++
			case types.StatusRejected:
				rejected++
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return inserted, touched, rejected, err
	}
	return inserted, touched, rejected, nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version and build information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("haste %s\n", version)
		fmt.Printf("Build Mode: %s\n", storage.BuildMode)
		fmt.Printf("SQLite Driver: %s\n", storage.DriverName)
		fmt.Printf("Schema Version: %s\n", storage.CurrentSchemaVersion)
	},
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".haste"
	}
	return filepath.Join(home, ".haste")
}

func main() {
	log.SetOutput(os.Stderr)

	dataDir := defaultDataDir()
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", filepath.Join(dataDir, "history.db"), "database file path")
	rootCmd.PersistentFlags().StringVar(&blobDir, "blobs", filepath.Join(dataDir, "blobs"), "blob directory path")
	rootCmd.PersistentFlags().BoolVar(&indexFileNames, "index-file-names", false, "make image/file display names searchable")

	for _, cmd := range []*cobra.Command{addCmd, pasteCmd} {
		cmd.Flags().String("kind", "text", "item kind (text, rtf, image, file)")
		cmd.Flags().String("source", "", "originating application name")
	}
	for _, cmd := range []*cobra.Command{listCmd, searchCmd} {
		cmd.Flags().Int("limit", 20, "maximum number of results")
	}

	rootCmd.AddCommand(addCmd, pasteCmd, listCmd, searchCmd, getCmd, rmCmd,
		pinCommand("pin <id>", "Pin an item", true),
		pinCommand("unpin <id>", "Unpin an item", false),
		clearCmd, ingestCmd, versionCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("haste: %v", err)
	}
}
