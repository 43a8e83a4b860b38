/*
SPDX-License-Identifier: Apache-2.0

Copyright 2024 The Exprtree Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    https://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package watch re-parses an expression file every time it changes on disk.
package watch

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/exprtree/core/expr"
)

// DefaultDebounce collapses the burst of events an editor produces on save
const DefaultDebounce = 100 * time.Millisecond

// Options controls a Watch call
type Options struct {
	ParserOptions []expr.Option
	Debounce      time.Duration // 0 means DefaultDebounce
}

// Callback receives each parse result along with the text that was parsed.
// Exactly one of e and err is non-nil; err is either a *expr.ParseError or
// the error from reading the file, in which case src is empty.
type Callback func(src string, e *expr.Expression, err error)

// Watch parses path once, then again after each change, until ctx is done.
// The parent directory is watched so that editors which save by renaming a
// temporary file over path are picked up.
func Watch(ctx context.Context, path string, opts Options, fn Callback) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}

	reparse := func() {
		data, err := os.ReadFile(abs)
		if err != nil {
			fn("", nil, err)
			return
		}
		src := string(data)
		e, err := expr.Compile(src, opts.ParserOptions...)
		fn(src, e, err)
	}
	reparse()

	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			timer.Reset(debounce)
		case <-timer.C:
			if _, err := os.Stat(abs); err != nil {
				// Renamed away and not yet replaced; the next Create retriggers.
				continue
			}
			reparse()
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Printf("watch %s: %v", abs, err)
		}
	}
}
