// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package rawzip

import (
	"fmt"
	"path/filepath"
	"strings"
)

// sanitizeName normalizes an entry name into a relative slash-separated
// path: backslashes become slashes, leading "../" runs, leading slashes and
// a drive-letter prefix are stripped. This is a normalization convenience
// only; securePath's post-resolution containment check is the authoritative
// guard.
func sanitizeName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")

	// drive letter prefix ("C:/..." or bare "C:")
	if len(name) >= 2 && name[1] == ':' && isDriveLetter(name[0]) {
		name = name[2:]
	}
	for {
		switch {
		case strings.HasPrefix(name, "../"):
			name = name[3:]
		case strings.HasPrefix(name, "/"):
			name = name[1:]
		case name == "..":
			name = ""
		default:
			return name
		}
	}
}

func isDriveLetter(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

// securePath resolves an entry name against the destination directory and
// returns the absolute path to write to. It fails with a
// [*PathTraversalError] if the resolved path is not the destination itself
// or a strict descendant of it.
func securePath(name, dst string) (string, error) {
	sanitized := sanitizeName(name)

	// convert to a platform specific path
	parts := strings.Split(sanitized, "/")
	rel := filepath.Join(parts...)

	// post-resolution containment check
	if !filepath.IsLocal(rel) && rel != "" && rel != "." {
		return "", &PathTraversalError{Name: name}
	}

	absDst, err := filepath.Abs(dst)
	if err != nil {
		return "", fmt.Errorf("cannot resolve destination: %w", err)
	}
	path := filepath.Join(absDst, rel)
	if path != absDst && !strings.HasPrefix(path, absDst+string(filepath.Separator)) {
		return "", &PathTraversalError{Name: name}
	}
	return path, nil
}
