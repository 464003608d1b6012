package translate

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/minios-linux/sugoikit/jpcache"
)

// ScriptsFromFolder reads every .txt file under dir as a script. Files with
// the same name in different folders are merged into one script.
func ScriptsFromFolder(dir string) ([]Script, error) {
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}

	byName := make(map[string][]string)
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // skip unreadable entries
		}
		if info.IsDir() || !strings.EqualFold(filepath.Ext(path), ".txt") {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		name := strings.TrimSuffix(info.Name(), filepath.Ext(info.Name()))
		for _, l := range strings.Split(string(data), "\n") {
			byName[name] = append(byName[name], strings.TrimSuffix(l, "\r"))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(byName))
	for n := range byName {
		names = append(names, n)
	}
	sort.Strings(names)

	scripts := make([]Script, 0, len(names))
	for _, n := range names {
		scripts = append(scripts, Script{Name: n, Lines: distinctLines(byName[n])})
	}
	return scripts, nil
}

// ScriptsFromStore returns every script of the Japanese line cache.
func ScriptsFromStore(ctx context.Context, store *jpcache.Store) ([]Script, error) {
	names, err := store.Scripts(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing cached scripts: %w", err)
	}
	scripts := make([]Script, 0, len(names))
	for _, n := range names {
		lines, err := store.Lines(ctx, n)
		if err != nil {
			return nil, fmt.Errorf("reading cached script %s: %w", n, err)
		}
		scripts = append(scripts, Script{Name: n, Lines: lines})
	}
	return scripts, nil
}
