package test

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
)

// TmpFile returns the path for a unique sqlite database file, isolating the
// test from all others. The file is cleaned up with the test's temp dir.
func TmpFile(t *testing.T) string {
	return filepath.Join(t.TempDir(), fmt.Sprintf("%s.db", uuid.New()))
}
