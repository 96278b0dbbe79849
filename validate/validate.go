// Command validate provides a small CLI that validates the locale files in
// the ../locales directory. It checks:
//   - JSON or YAML structure and known categories
//   - Every required category has entries (map_names may be empty)
//   - No translation is empty
//   - Every built-in civilization has a translation
//   - Every map size resolves to a map_sizes entry
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wricardo/mcp-training/recminimap/game/locale"
	"github.com/wricardo/mcp-training/recminimap/game/replay"
	"github.com/wricardo/mcp-training/recminimap/game/report"
)

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

func (r *ValidationResult) fail(format string, args ...interface{}) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// validateLocale loads and validates a single locale file.
func validateLocale(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	loc, err := locale.LoadFile(filePath)
	if err != nil {
		result.fail("Invalid locale: %v", err)
		return result
	}

	// Validate categories
	for _, category := range locale.Categories {
		if category != locale.MapNames && loc.Len(category) == 0 {
			result.fail("Category %s is empty", category)
		}
		for _, key := range loc.Keys(category) {
			if value, _ := loc.Lookup(category, key); strings.TrimSpace(value) == "" {
				result.fail("Empty translation for %s/%s", category, key)
			}
		}
	}

	// Validate coverage
	if result.Valid {
		coverage := validateCoverage(loc)
		if !coverage.Valid {
			result.Valid = false
		}
		result.Errors = append(result.Errors, coverage.Errors...)
	}

	// Add informational data
	if result.Valid {
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Name: %s", loc.Name))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Team battle: %s", loc.TeamBattleLabel()))
		for _, category := range locale.Categories {
			result.Errors = append(result.Errors, fmt.Sprintf("✓ %s: %d", category, loc.Len(category)))
		}
	}

	return result
}

// validateCoverage ensures the locale translates every built-in civilization
// and that every map size resolves to a map_sizes entry the way reports
// resolve them.
func validateCoverage(loc *locale.Locale) ValidationResult {
	result := ValidationResult{Valid: true}

	for _, civ := range replay.CivilizationNames() {
		if _, err := loc.Lookup(locale.Civilizations, civ); err != nil {
			result.fail("Missing civilization: %s", civ)
		}
	}

	builder := report.NewBuilder(loc)
	for _, size := range replay.MapSizes {
		if !builder.ResolvesMapSize(size.Name) {
			result.fail("Map size %s has no map_sizes entry", size.Name)
		}
	}

	return result
}

// main scans ../locales (or the directory given as argument) for locale
// files and validates each one, printing a concise report and exiting with
// non-zero status if any are invalid.
func main() {
	localeDir := "../locales"
	if len(os.Args) > 1 {
		localeDir = os.Args[1]
	}

	files, err := localeFiles(localeDir)
	if err != nil {
		fmt.Printf("Error finding locale files: %v\n", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Printf("No locale files found in %s\n", localeDir)
		os.Exit(1)
	}

	allValid := true
	for _, file := range files {
		result := validateLocale(file)

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
				if !strings.HasPrefix(err, "✓") {
					fmt.Println("  ❌ " + err)
				}
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All locales are valid!")
	} else {
		fmt.Println("❌ Some locales have errors")
		os.Exit(1)
	}
}

func localeFiles(dir string) ([]string, error) {
	var files []string
	for _, pattern := range []string{"*.json", "*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, err
		}
		files = append(files, matches...)
	}
	return files, nil
}
