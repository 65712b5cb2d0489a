package gen

import (
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Writer materializes a graph's generated projects on disk. The two
// targets are independent trees under the output directory, so they
// are emitted concurrently.
type Writer struct {
	log *logrus.Entry
}

// NewWriter creates a writer logging through the given logger. A nil
// logger falls back to the standard one.
func NewWriter(log *logrus.Logger) *Writer {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Writer{log: log.WithField("component", "writer")}
}

// Write emits every configured target project under the output
// directory. When the stored snapshot digest matches the current
// schema the run is skipped unless forced, then the snapshot is
// rewritten.
func (w *Writer) Write(g *Graph) error {
	targets, err := g.Config.targets()
	if err != nil {
		return err
	}
	out := g.Config.Target
	if out == "" {
		out = "."
	}
	if !g.Config.Force && g.Unchanged(out) {
		w.log.WithField("dir", out).Info("schema unchanged, skipping generation")
		return nil
	}

	var eg errgroup.Group
	for _, t := range targets {
		t := t
		eg.Go(func() error { return w.writeTarget(g, t, filepath.Join(out, string(t))) })
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	snap, err := g.Snapshot()
	if err != nil {
		return err
	}
	if err := snap.WriteFile(out); err != nil {
		return err
	}
	w.log.WithFields(logrus.Fields{
		"dir":        out,
		"targets":    len(targets),
		"properties": len(g.Properties),
		"types":      len(g.Types) + len(g.Derived),
	}).Info("generation complete")
	return nil
}

// writeTarget emits one target's project tree.
func (w *Writer) writeTarget(g *Graph, t Target, dir string) error {
	files, err := g.Files(t)
	if err != nil {
		return err
	}
	for _, f := range files {
		path := filepath.Join(dir, filepath.FromSlash(f.Path))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return err
		}
		if err := os.WriteFile(path, []byte(f.Body), 0644); err != nil {
			return err
		}
		w.log.WithFields(logrus.Fields{
			"target": t,
			"file":   path,
			"bytes":  len(f.Body),
		}).Debug("wrote file")
	}
	return nil
}
