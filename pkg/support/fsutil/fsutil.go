// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package fsutil contains utilities for working with the file system.
package fsutil

import (
	"io/fs"
	"os"
	"os/user"
	"path/filepath"
	"slices"
	"strings"

	"github.com/pkg/errors"
)

// ReplaceTilde replaces a leading "~" (or "~user") in filePath by the user's home directory.
// Returns filePath unchanged if it doesn't start with "~".
//
// It returns an error if the user is unknown (e.g: `~unknown/...`).
func ReplaceTilde(filePath string) (string, error) {
	if !strings.HasPrefix(filePath, "~") {
		return filePath, nil
	}
	userName, rest, _ := strings.Cut(filePath[1:], "/")
	var (
		usr *user.User
		err error
	)
	if userName == "" {
		usr, err = user.Current()
	} else {
		usr, err = user.Lookup(userName)
	}
	if err != nil {
		return "", errors.Wrapf(err, "failed to lookup home directory for user in path %q", filePath)
	}
	return filepath.Join(usr.HomeDir, rest), nil
}

// FindFiles returns the files under root with the given extension (e.g. ".json"), searched
// recursively and sorted. If root is a file it is returned as is, whatever its extension.
func FindFiles(root, extension string) ([]string, error) {
	root, err := ReplaceTilde(root)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to access %q", root)
	}
	if !info.IsDir() {
		return []string{root}, nil
	}
	var files []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(d.Name()), extension) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to search for %q files in %q", extension, root)
	}
	slices.Sort(files)
	return files, nil
}
