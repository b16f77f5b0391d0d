package domain_test

import (
	"go/parser"
	"go/token"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const modulePath = "github.com/reglet-dev/reglet-numerics/"

var domainPackages = []string{"entities", "errors", "numeric"}

// TestDomainHasNoOuterDependencies verifies that the domain layer does not
// import the bridge, the export table or any host binding.
func TestDomainHasNoOuterDependencies(t *testing.T) {
	fset := token.NewFileSet()

	for _, pkg := range domainPackages {
		files, err := filepath.Glob(filepath.Join("../domain", pkg, "*.go"))
		require.NoError(t, err, "failed to glob %s files", pkg)

		for _, file := range files {
			// Tests may use internal/testutil.
			if strings.HasSuffix(file, "_test.go") {
				continue
			}
			checkFileImports(t, fset, file, pkg)
		}
	}
}

func checkFileImports(t *testing.T, fset *token.FileSet, filename, pkg string) {
	t.Helper()

	f, err := parser.ParseFile(fset, filename, nil, parser.ImportsOnly)
	require.NoError(t, err, "failed to parse %s", filename)

	for _, imp := range f.Imports {
		importPath := strings.Trim(imp.Path.Value, `"`)
		if !strings.HasPrefix(importPath, modulePath) {
			// Only the standard library is allowed outside the module.
			assert.NotContains(t, strings.SplitN(importPath, "/", 2)[0], ".",
				"domain/%s package (%s) imports third-party package %s",
				pkg, filepath.Base(filename), importPath)
			continue
		}

		assert.True(t,
			strings.HasPrefix(importPath, modulePath+"domain/"),
			"domain/%s package (%s) imports non-domain package: %s",
			pkg, filepath.Base(filename), importPath)
	}
}

// TestDomainPackagesExist verifies that required domain packages exist.
func TestDomainPackagesExist(t *testing.T) {
	for _, dir := range domainPackages {
		files, err := filepath.Glob(filepath.Join("../domain", dir, "*.go"))
		require.NoError(t, err, "failed to check %s directory", dir)
		assert.NotEmpty(t, files, "domain/%s should contain Go files", dir)
	}
}
