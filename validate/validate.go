// Command validate checks the ruleset files in a config directory
// (default ../configs). For each .yaml, .yml or .json file it reports:
//   - parse errors
//   - engine validation failures (grid range, win threshold, start cell, heading)
//   - how much of the board the winning snake occupies
//   - a start heading that leaves the board on the first tick
//
// It exits with non-zero status if any ruleset is invalid.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/wricardo/snake-game-server/game/config"
	"github.com/wricardo/snake-game-server/game/engine"
)

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

// validateConfig loads a ruleset through the server's loader and adds
// playability notes.
func validateConfig(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	cfg, err := config.LoadFile(filePath)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, err.Error())
		return result
	}

	cells := cfg.GridSize * cfg.GridSize
	finalLength := cfg.WinThreshold + 1
	result.Errors = append(result.Errors,
		fmt.Sprintf("✓ Board: %dx%d (%d cells)", cfg.GridSize, cfg.GridSize, cells),
		fmt.Sprintf("✓ Win at %d apples: snake of %d fills %.0f%% of the board",
			cfg.WinThreshold, finalLength, 100*float64(finalLength)/float64(cells)),
	)

	result.Errors = append(result.Errors, validateStart(cfg)...)

	return result
}

// validateStart warns when holding the starting heading crashes on the first tick
func validateStart(cfg *engine.GameConfig) []string {
	next := engine.ComputeNewHead(cfg.Start, cfg.StartDirection)
	if !engine.InBounds(next, cfg.GridSize) {
		return []string{fmt.Sprintf("⚠ Start %s heading %s leaves the board on the first tick",
			cfg.Start, cfg.StartDirection)}
	}
	return []string{fmt.Sprintf("✓ Start %s heading %s", cfg.Start, cfg.StartDirection)}
}

// rulesetFiles lists the supported files in dir, sorted
func rulesetFiles(dir string) ([]string, error) {
	var files []string
	for _, pattern := range []string{"*.yaml", "*.yml", "*.json"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, err
		}
		files = append(files, matches...)
	}
	sort.Strings(files)
	return files, nil
}

// main validates each ruleset in the directory given as the first argument,
// printing a concise report.
func main() {
	configDir := "../configs"
	if len(os.Args) > 1 {
		configDir = os.Args[1]
	}

	files, err := rulesetFiles(configDir)
	if err != nil {
		fmt.Printf("Error finding config files: %v\n", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Printf("No rulesets found in %s\n", configDir)
		os.Exit(1)
	}

	allValid := true
	for _, file := range files {
		result := validateConfig(file)

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Errors {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				fmt.Println("  ❌ " + err)
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All rulesets are valid!")
	} else {
		fmt.Println("❌ Some rulesets have errors")
		os.Exit(1)
	}
}
