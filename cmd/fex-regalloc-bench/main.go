// Command fex-regalloc-bench drives the register allocator against a
// register profile and one or more dumped SSA programs, for manual
// inspection and for exercising the allocator outside of a real
// compilation pipeline.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/errgroup"

	"github.com/FEX-Project/FEX/internal/cli"
	"github.com/FEX-Project/FEX/internal/regalloc"
	"github.com/FEX-Project/FEX/internal/ssair"
)

func main() {
	var (
		profilePath = flag.String("profile", "", "path to a register profile JSON file")
		irDir       = flag.String("dir", "", "directory of *.ir.json SSA program dumps to allocate")
		watch       = flag.Bool("watch", false, "re-run allocation whenever -profile or -dir changes")
		jsonOut     = flag.Bool("json", false, "emit results as JSON")
		verbose     = flag.Bool("verbose", false, "verbose logging")
		showVersion = flag.Bool("version", false, "print version information and exit")
	)

	flag.Parse()

	if *showVersion {
		cli.PrintVersion("fex-regalloc-bench", *jsonOut)
		return
	}

	if *profilePath == "" || *irDir == "" {
		cli.ExitWithError("both -profile and -dir are required")
	}

	logger := cli.NewLogger(*verbose, false)

	if err := runOnce(*profilePath, *irDir, *jsonOut, logger); err != nil {
		cli.ExitWithError("%v", err)
	}

	if !*watch {
		return
	}

	if err := watchAndRerun(*profilePath, *irDir, *jsonOut, logger); err != nil {
		cli.ExitWithError("%v", err)
	}
}

// result is one IR program's allocation outcome.
type result struct {
	File        string            `json:"file"`
	Changed     bool              `json:"changed"`
	Assignments map[string]uint32 `json:"assignments"` // nodeID -> reg
	ClassByNode map[string]uint32 `json:"class_by_node"`
}

func runOnce(profilePath, irDir string, jsonOut bool, logger *cli.Logger) error {
	profile, err := loadProfile(profilePath)
	if err != nil {
		return err
	}

	files, err := irFiles(irDir)
	if err != nil {
		return err
	}

	logger.Info("allocating %d program(s) against profile %q", len(files), profile.Name)

	results := make([]*result, len(files))

	g := new(errgroup.Group)

	for i, f := range files {
		i, f := i, f

		g.Go(func() error {
			r, err := allocateFile(profile, f)
			if err != nil {
				return fmt.Errorf("%s: %w", f, err)
			}

			results[i] = r

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	return printResults(results, jsonOut)
}

func allocateFile(profile *regalloc.Profile, path string) (*result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var dump ssair.ProgramDump
	if err := json.Unmarshal(data, &dump); err != nil {
		return nil, fmt.Errorf("parse IR dump: %w", err)
	}

	program, err := ssair.BuildFromDump(&dump)
	if err != nil {
		return nil, err
	}

	alloc := regalloc.NewAllocator(ssair.NoopCompactor{})
	profile.Configure(alloc)

	changed := alloc.Run(program)

	r := &result{
		File:        path,
		Changed:     changed,
		Assignments: map[string]uint32{},
		ClassByNode: map[string]uint32{},
	}

	for id := 0; id < program.SSACount(); id++ {
		rc := alloc.GetNodeRegister(ssair.NodeID(id))
		if rc.Unassigned() {
			continue
		}

		key := fmt.Sprintf("%d", id)
		r.Assignments[key] = rc.Reg
		r.ClassByNode[key] = rc.Class
	}

	return r, nil
}

func loadProfile(path string) (*regalloc.Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return regalloc.ParseProfile(data)
}

func irFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string

	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".ir.json") {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}

	return files, nil
}

func printResults(results []*result, jsonOut bool) error {
	if jsonOut {
		data, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return err
		}

		fmt.Println(string(data))

		return nil
	}

	for _, r := range results {
		fmt.Printf("%s: changed=%t assignments=%d\n", r.File, r.Changed, len(r.Assignments))
	}

	return nil
}

// watchAndRerun re-runs runOnce whenever the profile file or any file in
// irDir changes, grounded on the teacher's fsnotify-backed filesystem
// watcher.
func watchAndRerun(profilePath, irDir string, jsonOut bool, logger *cli.Logger) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(profilePath); err != nil {
		return err
	}

	if err := w.Add(irDir); err != nil {
		return err
	}

	logger.Info("watching %s and %s for changes", profilePath, irDir)

	for {
		select {
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}

			logger.Info("change detected: %s", ev.Name)

			if err := runOnce(profilePath, irDir, jsonOut, logger); err != nil {
				logger.Error("%v", err)
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}

			logger.Error("watch error: %v", err)
		}
	}
}
