// Command rostercheck validates roster files before they are dropped into
// the server's roster directory. For every file it checks:
//   - capacity matches the number of roles
//   - role names are unique
//   - teams and capabilities are known
//   - Spirits are a strict minority
//   - phase durations are positive and the avatar count fits the pool
//
// With no arguments every roster in --dir is checked. The exit status is
// non-zero when any file fails.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/urfave/cli/v3"

	"github.com/ekincelikten/rp-game-server/game/config"
	"github.com/ekincelikten/rp-game-server/game/engine"
)

var errInvalidRosters = errors.New("one or more rosters are invalid")

// CheckResult captures the outcome of validating a single file
type CheckResult struct {
	File      string `json:"file"`
	Valid     bool   `json:"valid"`
	Name      string `json:"name,omitempty"`
	Capacity  int    `json:"capacity,omitempty"`
	Spirits   int    `json:"spirits,omitempty"`
	Villagers int    `json:"villagers,omitempty"`
	Error     string `json:"error,omitempty"`
}

func main() {
	if err := newCommand(os.Stdout).Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newCommand(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "rostercheck",
		Usage:     "validate roster files",
		ArgsUsage: "[files...]",
		Writer:    out,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "dir",
				Value:   "configs",
				Usage:   "roster directory checked when no files are given",
				Sources: cli.EnvVars("CONFIG_DIR"),
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "print results as JSON",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			files := cmd.Args().Slice()
			if len(files) == 0 {
				found, err := rosterFiles(cmd.String("dir"))
				if err != nil {
					return err
				}
				files = found
			}
			if len(files) == 0 {
				return fmt.Errorf("no roster files found in %s", cmd.String("dir"))
			}

			results := make([]CheckResult, 0, len(files))
			for _, file := range files {
				results = append(results, checkRoster(file))
			}

			if cmd.Bool("json") {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(results); err != nil {
					return err
				}
			} else {
				printResults(out, results)
			}

			for _, r := range results {
				if !r.Valid {
					return errInvalidRosters
				}
			}
			return nil
		},
	}
}

// rosterFiles lists the roster files of a directory in name order
func rosterFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read roster directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !config.IsRosterFile(entry.Name()) {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(files)
	return files, nil
}

func checkRoster(path string) CheckResult {
	result := CheckResult{File: filepath.Base(path)}

	roster, err := config.ReadRosterFile(path)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	result.Valid = true
	result.Name = roster.Name
	result.Capacity = roster.Capacity
	result.Spirits, result.Villagers = engine.CountTeams(roster.Roles)
	return result
}

func printResults(out io.Writer, results []CheckResult) {
	valid := 0
	for _, r := range results {
		if r.Valid {
			valid++
			fmt.Fprintf(out, "✅ %s: %s, %d players (%d Spirits, %d Villagers)\n",
				r.File, r.Name, r.Capacity, r.Spirits, r.Villagers)
			continue
		}
		fmt.Fprintf(out, "❌ %s: %s\n", r.File, r.Error)
	}
	fmt.Fprintf(out, "\n%d/%d rosters valid\n", valid, len(results))
}
