package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/abdul-hamid-achik/hitmatch/packages/core/parser"
)

// collectFiles expands args into suite files. Directories are walked
// recursively; files named explicitly are kept whatever their suffix.
func collectFiles(args []string) ([]string, error) {
	var files []string
	seen := make(map[string]bool)

	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
	}

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("cannot access %s: %w", arg, err)
		}

		if !info.IsDir() {
			add(arg)
			continue
		}

		var found []string
		err = filepath.Walk(arg, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if !info.IsDir() && parser.IsSuiteFile(path) {
				found = append(found, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		sort.Strings(found)
		for _, path := range found {
			add(path)
		}
	}

	return files, nil
}

func noFilesError() error {
	return fmt.Errorf("no suite files found (expected *%s or *%s)", parser.Extensions[0], parser.Extensions[1])
}
