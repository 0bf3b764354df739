package carddef

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/feakit/bulkgridgo/internal/fsutil"
)

//go:embed manifests/*.hcl
var builtinFS embed.FS

// LoadBuiltin registers the embedded card library.
func LoadBuiltin(reg *Registry) error {
	entries, err := fs.Glob(builtinFS, "manifests/*.hcl")
	if err != nil {
		return fmt.Errorf("listing builtin manifests: %w", err)
	}
	sort.Strings(entries)
	parser := hclparse.NewParser()
	for _, name := range entries {
		src, err := builtinFS.ReadFile(name)
		if err != nil {
			return fmt.Errorf("reading builtin manifest %s: %w", name, err)
		}
		if err := loadBytes(parser, reg, name, src); err != nil {
			return err
		}
	}
	return nil
}

// LoadDir registers every .hcl manifest found under path, recursively.
// User manifests extend the builtin library; a user card type that collides
// with a builtin one fails registration rather than silently shadowing it.
func LoadDir(reg *Registry, path string) error {
	files, err := fsutil.FindFilesByExtensions(path, ".hcl")
	if err != nil {
		return fmt.Errorf("discovering card manifests under %s: %w", path, err)
	}
	parser := hclparse.NewParser()
	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return fmt.Errorf("parsing card manifest %s: %w", file, diags)
		}
		var manifest Manifest
		if diags := gohcl.DecodeBody(hclFile.Body, nil, &manifest); diags.HasErrors() {
			return fmt.Errorf("decoding card manifest %s: %w", file, diags)
		}
		if err := registerManifest(reg, &manifest); err != nil {
			return fmt.Errorf("manifest %s: %w", file, err)
		}
	}
	return nil
}

// LoadBytes registers the manifests contained in an in-memory buffer. Tests
// and embedding callers use this to define cards without touching disk.
func LoadBytes(reg *Registry, filename string, src []byte) error {
	return loadBytes(hclparse.NewParser(), reg, filename, src)
}

func loadBytes(parser *hclparse.Parser, reg *Registry, filename string, src []byte) error {
	hclFile, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return fmt.Errorf("parsing card manifest %s: %w", filename, diags)
	}
	var manifest Manifest
	if diags := gohcl.DecodeBody(hclFile.Body, nil, &manifest); diags.HasErrors() {
		return fmt.Errorf("decoding card manifest %s: %w", filename, diags)
	}
	if err := registerManifest(reg, &manifest); err != nil {
		return fmt.Errorf("manifest %s: %w", filename, err)
	}
	return nil
}

func registerManifest(reg *Registry, manifest *Manifest) error {
	for _, block := range manifest.Cards {
		def, err := translateCard(block)
		if err != nil {
			return err
		}
		if err := reg.Register(def); err != nil {
			return err
		}
	}
	return nil
}
