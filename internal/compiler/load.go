package compiler

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"

	"github.com/xldenis/prusti-dev/internal/crate"
)

// Load compiles the crate at path, which is either a single .cue file or a
// directory holding one CUE package.
func Load(path string) (*crate.Crate, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("crate not found: %w", err)
	}
	if info.IsDir() {
		return LoadDir(path)
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading crate file: %w", err)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	v := cuecontext.New().CompileBytes(src, cue.Filename(path))
	return CompileCrate(name, v)
}

// LoadDir loads the CUE package in dir. The crate is named after the
// directory unless the package sets "crate".
func LoadDir(dir string) (*crate.Crate, error) {
	files, err := FindCUEFiles(dir)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", dir, err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no CUE files found in %s", dir)
	}

	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, fmt.Errorf("no CUE instances loaded from %s", dir)
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, formatCUEError("cue", inst.Err)
	}
	name := filepath.Base(filepath.Clean(dir))
	if abs, err := filepath.Abs(dir); err == nil {
		name = filepath.Base(abs)
	}
	v := cuecontext.New().BuildInstance(inst)
	return CompileCrate(name, v)
}

// CompileString compiles crate source held in memory.
func CompileString(name, src string) (*crate.Crate, error) {
	v := cuecontext.New().CompileString(src, cue.Filename(name+".cue"))
	return CompileCrate(name, v)
}

// FindCUEFiles walks the directory and returns all .cue file paths.
func FindCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}
