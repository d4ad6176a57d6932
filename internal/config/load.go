// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-getter/v2"
	"github.com/matt-FFFFFF/conrun/internal/ctxlog"
	"github.com/spf13/afero"
)

// ErrGetConfigFile is returned when the configuration file cannot be read or fetched.
var ErrGetConfigFile = errors.New("failed to get config file")

// Load reads the configuration from src.
// A src that exists on the local filesystem is read directly and its directory
// becomes the base for relative paths. Anything else is treated as a go-getter
// URL, fetched into a temporary directory and resolved against the current directory.
func Load(ctx context.Context, src string) (*Config, error) {
	if src == "" {
		src = DefaultFileName
	}

	fs := FsFactory()

	if ok, _ := afero.Exists(fs, src); ok {
		data, err := afero.ReadFile(fs, src)
		if err != nil {
			return nil, errors.Join(ErrGetConfigFile, err)
		}

		ctxlog.Debug(ctx, "loaded local configuration", "path", src)

		return Parse(ctx, data, filepath.Dir(src))
	}

	data, err := fetch(ctx, src)
	if err != nil {
		return nil, err
	}

	wd, err := os.Getwd()
	if err != nil {
		return nil, errors.Join(ErrGetConfigFile, err)
	}

	ctxlog.Debug(ctx, "fetched remote configuration", "url", src)

	return Parse(ctx, data, wd)
}

// fetch retrieves a single file using Hashicorp's go-getter.
// The temporary download directory is removed before returning.
func fetch(ctx context.Context, url string) ([]byte, error) {
	tmpDir, err := os.MkdirTemp("", "conrun-getter-*")
	if err != nil {
		return nil, errors.Join(ErrGetConfigFile, err)
	}

	defer os.RemoveAll(tmpDir) //nolint:errcheck

	wd, err := os.Getwd()
	if err != nil {
		return nil, errors.Join(ErrGetConfigFile, err)
	}

	client := getter.Client{
		DisableSymlinks: true,
	}

	src, fileName := splitFileNameFromGetterURL(url)
	if src == "" || fileName == "" {
		return nil, fmt.Errorf("%w: invalid URL format: %s", ErrGetConfigFile, url)
	}

	req := &getter.Request{
		Src:     src,
		Dst:     filepath.Join(tmpDir, "g"),
		Pwd:     wd,
		GetMode: getter.ModeDir,
	}

	res, err := client.Get(ctx, req)
	if err != nil {
		return nil, errors.Join(ErrGetConfigFile, err)
	}

	data, err := os.ReadFile(filepath.Join(res.Dst, fileName))
	if err != nil {
		return nil, errors.Join(ErrGetConfigFile, err)
	}

	return data, nil
}

const (
	goGetterPathSeparator = "//"
	goGetterRefSeparator  = "?"
	minimumGetterParts    = 3 // scheme, host and path
)

// splitFileNameFromGetterURL splits a go-getter URL such as
// "git::https://github.com/org/repo//dir/conrun.yaml?ref=v1" into the
// directory URL ("git::https://github.com/org/repo//dir?ref=v1") and the
// file name ("conrun.yaml").
func splitFileNameFromGetterURL(url string) (string, string) {
	var ref string

	parts := strings.Split(url, goGetterPathSeparator)
	if len(parts) < minimumGetterParts {
		return "", ""
	}

	last := parts[len(parts)-1]
	if path, query, found := strings.Cut(last, goGetterRefSeparator); found {
		ref = query
		last = path
	}

	if last == "" || filepath.Clean(last) == filepath.Dir(last) {
		return "", ""
	}

	fileName := filepath.Base(last)
	parts[len(parts)-1] = filepath.Dir(last)

	if parts[len(parts)-1] == "." {
		parts = parts[:len(parts)-1]
	}

	newURL := strings.Join(parts, goGetterPathSeparator)

	if ref != "" {
		newURL += goGetterRefSeparator + ref
	}

	return newURL, fileName
}
