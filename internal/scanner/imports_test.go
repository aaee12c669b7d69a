// internal/scanner/imports_test.go
package scanner

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestImportStems(t *testing.T) {
	t.Parallel()

	t.Run("python from-import", func(t *testing.T) {
		t.Parallel()
		// A dotted module path is cut at the first dot, so only the
		// package root survives; the imported name is a second candidate.
		stems := ImportStems("from src.Utils import helper\n")
		assert.Equal(t, []string{"src", "helper"}, stems)
	})

	t.Run("undotted python from-import keeps the module name", func(t *testing.T) {
		t.Parallel()
		stems := ImportStems("from Utils import helper\n")
		assert.Equal(t, []string{"Utils", "helper"}, stems)
	})

	t.Run("quoted es module path", func(t *testing.T) {
		t.Parallel()
		stems := ImportStems(`import { x } from "./lib/Format.ts"` + "\n")
		assert.Equal(t, []string{"Format"}, stems)
	})

	t.Run("scoped package keeps last segment", func(t *testing.T) {
		t.Parallel()
		stems := ImportStems(`import "@scope/widgets"` + "\n")
		assert.Equal(t, []string{"widgets"}, stems)
	})

	t.Run("c style include", func(t *testing.T) {
		t.Parallel()
		stems := ImportStems(`include "legacy/Parser.cpp"` + "\n")
		assert.Equal(t, []string{"Parser"}, stems)
	})

	t.Run("multiple statements", func(t *testing.T) {
		t.Parallel()
		// A python from-import contributes both the module and the
		// imported name; the linker tolerates the extra candidate.
		content := "import os\nimport re\nfrom models import order\n"
		assert.Equal(t, []string{"os", "re", "models", "order"}, ImportStems(content))
	})

	t.Run("no imports", func(t *testing.T) {
		t.Parallel()
		assert.Empty(t, ImportStems("x = 1\ny = 2\n"))
	})

	t.Run("dotfile token yields no stem", func(t *testing.T) {
		t.Parallel()
		assert.Empty(t, ImportStems(`import ".hidden"` + "\n"))
	})
}
