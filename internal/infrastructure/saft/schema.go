package saft

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/beevik/etree"

	"github.com/moztech/fiscal-mz/internal/domain"
)

// SchemaValidator checks generated documents against a manifest of
// required element paths. Validation is opportunistic: a missing
// manifest file means no validation, the same way exports proceed when
// no XSD is installed. A present manifest that the document violates
// fails the export.
type SchemaValidator struct {
	manifestPath string
}

// NewSchemaValidator creates the validator; manifestPath may point at a
// file that does not exist.
func NewSchemaValidator(manifestPath string) *SchemaValidator {
	return &SchemaValidator{manifestPath: manifestPath}
}

// Validate parses the document and checks every path listed in the
// manifest resolves against the root element. Lines starting with # are
// comments.
func (v *SchemaValidator) Validate(data []byte, fileType string) error {
	if v.manifestPath == "" {
		return nil
	}
	f, err := os.Open(v.manifestPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return domain.NewGenerationError(fileType, "validate", fmt.Errorf("open schema manifest: %w", err))
	}
	defer f.Close()

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return domain.NewGenerationError(fileType, "validate", fmt.Errorf("parse xml: %w", err))
	}
	root := doc.Root()
	if root == nil {
		return domain.NewGenerationError(fileType, "validate", fmt.Errorf("document has no root element"))
	}

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		path := strings.TrimSpace(scanner.Text())
		if path == "" || strings.HasPrefix(path, "#") {
			continue
		}
		if root.FindElement(path) == nil {
			return domain.NewGenerationError(fileType, "validate",
				fmt.Errorf("required element missing: %s", path))
		}
	}
	if err := scanner.Err(); err != nil {
		return domain.NewGenerationError(fileType, "validate", fmt.Errorf("read schema manifest: %w", err))
	}
	return nil
}
