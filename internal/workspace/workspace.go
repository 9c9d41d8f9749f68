package workspace

import (
	"os"
	"path/filepath"
)

// DirName marks a directory tree that keeps its own collection.
const DirName = ".linkbook"

// Find walks up from startDir looking for a .linkbook directory and returns
// its path, or "" if there is none.
func Find(startDir string) (string, error) {
	dir := startDir
	for {
		candidate := filepath.Join(dir, DirName)
		info, err := os.Stat(candidate)
		switch {
		case err == nil && info.IsDir():
			return candidate, nil
		case err != nil && !os.IsNotExist(err):
			return "", err
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

// Init creates dir/.linkbook and returns its path.
func Init(dir string) (string, error) {
	path := filepath.Join(dir, DirName)
	if err := os.MkdirAll(path, 0755); err != nil {
		return "", err
	}
	return path, nil
}

// Home returns ~/.linkbook, or ./.linkbook when the home directory is unknown.
func Home() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", DirName)
	}
	return filepath.Join(home, DirName)
}

// Resolve picks the data directory: an explicit flag value wins, then the
// nearest .linkbook above cwd, then the home directory.
func Resolve(flag, cwd string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	if cwd != "" {
		found, err := Find(cwd)
		if err != nil {
			return "", err
		}
		if found != "" {
			return found, nil
		}
	}
	return Home(), nil
}
