package ifaceparse

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/devicelink/devicelink-go/pkg/model"
)

// ErrDuplicateInterface is returned by LoadDir when two files define the
// same interface name.
var ErrDuplicateInterface = errors.New("interface defined more than once")

// LoadDir loads every definition file directly inside dir, in file name
// order. Subdirectories and files with other extensions are skipped. The
// first bad file aborts loading.
func LoadDir(dir string) ([]*model.Interface, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	var out []*model.Interface
	seen := make(map[string]string)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		path := filepath.Join(dir, e.Name())
		if _, err := FormatFromPath(path); err != nil {
			continue
		}

		iface, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		if prev, dup := seen[iface.Name()]; dup {
			return nil, fmt.Errorf("%w: %s in %s and %s", ErrDuplicateInterface, iface.Name(), prev, path)
		}
		seen[iface.Name()] = path
		out = append(out, iface)
	}
	return out, nil
}
