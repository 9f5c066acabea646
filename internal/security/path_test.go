package security

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPathValidator(t *testing.T) {
	_, err := NewPathValidator("")
	assert.Error(t, err)

	v, err := NewPathValidator(t.TempDir())
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(v.RootDirectory()))
}

func TestPathValidator_ValidatePath(t *testing.T) {
	root := t.TempDir()
	v, err := NewPathValidator(root)
	require.NoError(t, err)

	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"empty path", "", true},
		{"root itself", root, false},
		{"file inside root", filepath.Join(root, "doc.pdf"), false},
		{"nested inside root", filepath.Join(root, "a", "b", "doc.pdf"), false},
		{"outside root", filepath.Join(os.TempDir(), "elsewhere.pdf"), true},
		{"dot-dot escape", filepath.Join(root, "..", "escape.pdf"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidatePath(tt.path)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPathValidator_NormalizePath(t *testing.T) {
	root := t.TempDir()
	v, err := NewPathValidator(root)
	require.NoError(t, err)

	got, err := v.NormalizePath("sub/doc.pdf")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(v.RootDirectory(), "sub", "doc.pdf"), got)

	_, err = v.NormalizePath("../outside.pdf")
	assert.Error(t, err)

	_, err = v.NormalizePath("")
	assert.Error(t, err)
}

func TestPathValidator_SymlinkEscape(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()
	target := filepath.Join(outside, "secret.pdf")
	require.NoError(t, os.WriteFile(target, []byte("x"), 0o644))

	link := filepath.Join(root, "link.pdf")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	v, err := NewPathValidator(root)
	require.NoError(t, err)
	assert.Error(t, v.ValidatePath(link), "a symlink escaping the root must be rejected")
}
