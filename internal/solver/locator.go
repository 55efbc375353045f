package solver

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/ChuLiYu/sokoban-player/pkg/types"
)

// BaseExecutableName is the solver binary name without platform suffix.
const BaseExecutableName = "sokoban_solver"

// DefaultExecutableName returns the solver binary name for this platform.
func DefaultExecutableName() string {
	if runtime.GOOS == "windows" {
		return BaseExecutableName + ".exe"
	}
	return BaseExecutableName
}

// Locator finds the solver executable.
//
// Search order:
//  1. Name itself, when it contains a path separator
//  2. the directory of the running application
//  3. the current working directory
//  4. ExtraDirs, in order
type Locator struct {
	Name      string
	ExtraDirs []string

	// overridable for tests
	executable func() (string, error)
	getwd      func() (string, error)
}

// NewLocator returns a Locator for name (DefaultExecutableName when empty).
func NewLocator(name string, extraDirs ...string) *Locator {
	if name == "" {
		name = DefaultExecutableName()
	}
	return &Locator{
		Name:       name,
		ExtraDirs:  extraDirs,
		executable: os.Executable,
		getwd:      os.Getwd,
	}
}

// Candidates lists the paths probed, in search order.
func (l *Locator) Candidates() []string {
	if strings.ContainsRune(l.Name, filepath.Separator) || strings.ContainsRune(l.Name, '/') {
		return []string{l.Name}
	}

	var dirs []string
	if l.executable != nil {
		if exe, err := l.executable(); err == nil {
			dirs = append(dirs, filepath.Dir(exe))
		}
	}
	if l.getwd != nil {
		if wd, err := l.getwd(); err == nil {
			dirs = append(dirs, wd)
		}
	}
	dirs = append(dirs, l.ExtraDirs...)

	seen := make(map[string]bool, len(dirs))
	paths := make([]string, 0, len(dirs))
	for _, d := range dirs {
		p := filepath.Join(d, l.Name)
		if seen[p] {
			continue
		}
		seen[p] = true
		paths = append(paths, p)
	}
	return paths
}

// Find returns the first candidate that is an existing regular file.
func (l *Locator) Find() (string, error) {
	candidates := l.Candidates()
	for _, p := range candidates {
		info, err := os.Stat(p)
		if err == nil && !info.IsDir() {
			return p, nil
		}
	}
	return "", types.NewError(types.KindExecutableNotFound,
		"executable '%s' not found (searched: %s)", l.Name, strings.Join(candidates, ", "))
}
