package combiner

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/agentstation/pricemap/pkg/constants"
	"github.com/agentstation/pricemap/pkg/errors"
	"github.com/agentstation/pricemap/pkg/products"
)

// WriteDocument writes doc to path as indented JSON. The file is written to a
// temporary sibling first and renamed into place, so readers never observe a
// partial document.
func WriteDocument(path string, doc products.Document) error {
	if doc.Products == nil {
		doc.Products = []products.CombinedProduct{}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, constants.DirPermissions); err != nil {
		return errors.WrapIO("create", dir, err)
	}

	tempFile, err := os.CreateTemp(dir, ".pricemap-*.tmp")
	if err != nil {
		return errors.WrapIO("create", "temp file", err)
	}
	tempPath := tempFile.Name()

	enc := json.NewEncoder(tempFile)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(doc); err != nil {
		_ = tempFile.Close()
		_ = os.Remove(tempPath)
		return errors.WrapIO("write", path, err)
	}
	if err := tempFile.Close(); err != nil {
		_ = os.Remove(tempPath)
		return errors.WrapIO("write", path, err)
	}
	if err := os.Chmod(tempPath, constants.FilePermissions); err != nil {
		_ = os.Remove(tempPath)
		return errors.WrapIO("chmod", path, err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		_ = os.Remove(tempPath)
		return errors.WrapIO("rename", path, err)
	}
	return nil
}

// ReadDocument reads a combiner output file.
func ReadDocument(path string) (*products.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}
	var doc products.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.WrapParse("json", path, err)
	}
	return &doc, nil
}
