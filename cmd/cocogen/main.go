// Command cocogen generates dual-language connector projects from a
// declarative schema file.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	cocogen "github.com/wictorwilen/cocogen-sub000"
	"github.com/wictorwilen/cocogen-sub000/compiler/gen"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:           "cocogen",
		Short:         "generate connector projects from a declarative schema",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(*cobra.Command, []string) {
			if verbose {
				logrus.SetLevel(logrus.DebugLevel)
			}
		},
	}
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	cmd.AddCommand(newGenerateCmd(), newPreviewCmd())
	return cmd
}

func newGenerateCmd() *cobra.Command {
	var (
		schema    string
		out       string
		languages []string
		force     bool
		watch     bool
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "generate the target projects from a schema file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := buildOpts(out, languages, force)
			if err := cocogen.Generate(schema, opts...); err != nil {
				return err
			}
			if !watch {
				return nil
			}
			return watchSchema(cmd, schema, opts)
		},
	}
	cmd.Flags().StringVarP(&schema, "schema", "s", "schema.yaml", "schema file to compile")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output directory for the generated projects")
	cmd.Flags().StringSliceVarP(&languages, "language", "l", nil, "target languages (typescript, csharp); default both")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "regenerate even when the schema is unchanged")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "keep running and regenerate on schema changes")
	return cmd
}

func buildOpts(out string, languages []string, force bool) []gen.Option {
	var opts []gen.Option
	if out != "" {
		opts = append(opts, gen.WithTarget(out))
	}
	if len(languages) > 0 {
		opts = append(opts, gen.WithLanguages(languages...))
	}
	if force {
		opts = append(opts, gen.WithForce())
	}
	return opts
}

// watchSchema regenerates on every write to the schema file until the
// command context is cancelled. Generation errors are logged, not
// fatal, so a half-saved schema does not kill the watcher.
func watchSchema(cmd *cobra.Command, schema string, opts []gen.Option) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()
	if err := watcher.Add(schema); err != nil {
		return err
	}
	logrus.WithField("schema", schema).Info("watching for changes")
	for {
		select {
		case <-cmd.Context().Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if err := cocogen.Generate(schema, opts...); err != nil {
				logrus.WithError(err).Error("generation failed")
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logrus.WithError(err).Error("watch error")
		}
	}
}

func newPreviewCmd() *cobra.Command {
	var (
		schema string
		item   string
	)
	cmd := &cobra.Command{
		Use:   "preview",
		Short: "print the ingestion payload a sample raw item would produce",
		RunE: func(cmd *cobra.Command, _ []string) error {
			g, err := cocogen.LoadGraph(schema)
			if err != nil {
				return err
			}
			raw := map[string]any{}
			if item != "" {
				buf, err := os.ReadFile(item)
				if err != nil {
					return err
				}
				if err := json.Unmarshal(buf, &raw); err != nil {
					return fmt.Errorf("parsing sample item: %w", err)
				}
			}
			out, err := json.MarshalIndent(g.Preview(raw), "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
	cmd.Flags().StringVarP(&schema, "schema", "s", "schema.yaml", "schema file to compile")
	cmd.Flags().StringVarP(&item, "item", "i", "", "JSON file holding one sample raw item")
	return cmd
}
