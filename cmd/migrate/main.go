package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const disclaimer = "Independent reseller. Not affiliated with or endorsed by H-E-B."

const disclaimerParagraph = `          <p className="text-sm text-charcoal-500 italic mt-8">
            ` + disclaimer + `
          </p>
`

func main() {
	logger, err := zap.NewDevelopment(zap.WithCaller(false))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	zap.ReplaceGlobals(logger)
	defer logger.Sync()

	if len(os.Args) < 3 {
		zap.S().Fatal("Usage: migrate <add-disclaimer|remove-partial> <locations-directory>")
	}

	command := os.Args[1]
	locationsDir := os.Args[2]

	switch command {
	case "add-disclaimer":
		updated, err := addDisclaimers(locationsDir)
		if err != nil {
			zap.S().Fatal(err)
		}
		fmt.Printf("Added disclaimer to %d pages\n", updated)
	case "remove-partial":
		removed, err := removePartial(locationsDir, os.Stdin, os.Stdout)
		if err != nil {
			zap.S().Fatal(err)
		}
		fmt.Printf("\nRemoved %d partial city directories\n", removed)
	default:
		zap.S().Fatalf("Unknown command %q", command)
	}
}

// addDisclaimers returns how many page.tsx files were changed.
func addDisclaimers(locationsDir string) (int, error) {
	updated := 0
	err := filepath.WalkDir(locationsDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // Continue on errors
		}

		if !d.IsDir() && d.Name() == "page.tsx" {
			changed, err := processPage(path)
			if err != nil {
				zap.S().Errorf("Error processing %s: %v", path, err)
			}
			if changed {
				updated++
			}
		}
		return nil
	})
	if err != nil {
		return updated, errors.Wrap(err, "walking directory")
	}
	return updated, nil
}

func processPage(path string) (bool, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return false, errors.Wrapf(err, "reading file %s", path)
	}

	page, ok := insertDisclaimer(string(content))
	if !ok {
		return false, nil
	}

	zap.S().Infof("Adding disclaimer to %s", path)
	if err := os.WriteFile(path, []byte(page), 0644); err != nil {
		return false, errors.Wrapf(err, "writing file %s", path)
	}
	return true, nil
}

// insertDisclaimer places the paragraph before the last closing article or
// main tag. Pages that already carry it, or have neither tag, are unchanged.
func insertDisclaimer(page string) (string, bool) {
	if strings.Contains(page, disclaimer) {
		return page, false
	}
	for _, tag := range []string{"</article>", "</main>"} {
		if i := strings.LastIndex(page, tag); i >= 0 {
			lineStart := strings.LastIndex(page[:i], "\n") + 1
			return page[:lineStart] + disclaimerParagraph + page[lineStart:], true
		}
	}
	return page, false
}

// findPartial lists city directories holding content.md without page.tsx.
func findPartial(locationsDir string) ([]string, error) {
	var dirs []string
	err := filepath.WalkDir(locationsDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // Continue on errors
		}

		if d.IsDir() || d.Name() != "content.md" {
			return nil
		}
		dir := filepath.Dir(path)
		if _, err := os.Stat(filepath.Join(dir, "page.tsx")); os.IsNotExist(err) {
			dirs = append(dirs, dir)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "walking directory")
	}
	return dirs, nil
}

func removePartial(locationsDir string, in io.Reader, out io.Writer) (int, error) {
	dirs, err := findPartial(locationsDir)
	if err != nil {
		return 0, err
	}

	reader := bufio.NewReader(in)
	removed := 0
	fmt.Fprintf(out, "Found %d partial city directories\n", len(dirs))
	for _, dir := range dirs {
		if !confirmDelete(reader, out, dir) {
			fmt.Fprintf(out, "  SKIP: %s\n", dir)
			continue
		}
		if err := os.RemoveAll(dir); err != nil {
			zap.S().Errorf("Error removing %s: %v", dir, err)
			continue
		}
		removed++
		fmt.Fprintf(out, "  REMOVED: %s\n", dir)
	}
	return removed, nil
}

func confirmDelete(reader *bufio.Reader, out io.Writer, path string) bool {
	for {
		fmt.Fprintf(out, "  DELETE %s? [y/N]: ", path)
		input, err := reader.ReadString('\n')
		if err != nil && input == "" {
			return false
		}
		response := strings.ToLower(strings.TrimSpace(input))
		switch response {
		case "y", "yes":
			return true
		case "", "n", "no":
			return false
		default:
			if err != nil {
				return false
			}
			fmt.Fprintln(out, "  Please enter y or n.")
		}
	}
}
