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

package rendering

import (
	"embed"
	"fmt"
	"io"

	"github.com/google/exprtree/core/views"
	"github.com/google/safehtml/template"
)

//go:embed templates/*
var templateFS embed.FS

// Every page is executed through the "layout" template, which calls the
// page's own "content" block.
const (
	layoutFile = "templates/layout.html"
	partsFile  = "templates/parts.html"

	pageTree    = "tree.html"
	pageError   = "error.html"
	pageLanding = "landing.html"
)

// TreeRenderer handles rendering of parse view models to HTML
type TreeRenderer struct {
	pages map[string]*template.Template
}

// NewTreeRenderer parses the layout once per page so that each page can
// define its own content block.
func NewTreeRenderer() (*TreeRenderer, error) {
	trustedFS := template.TrustedFSFromEmbed(templateFS)

	pages := make(map[string]*template.Template)
	for _, page := range []string{pageTree, pageError, pageLanding} {
		t, err := template.New(page).ParseFS(trustedFS, layoutFile, partsFile, "templates/"+page)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", page, err)
		}
		pages[page] = t
	}
	return &TreeRenderer{pages: pages}, nil
}

// Render renders a TreeViewModel to the provided writer. A model carrying
// an error gets the error page in place of the tree.
func (r *TreeRenderer) Render(w io.Writer, vm views.TreeViewModel) error {
	if vm.Error != nil {
		return r.execute(w, pageError, vm)
	}
	return r.execute(w, pageTree, vm)
}

// RenderLanding renders a LandingViewModel to the provided writer
func (r *TreeRenderer) RenderLanding(w io.Writer, vm views.LandingViewModel) error {
	return r.execute(w, pageLanding, vm)
}

func (r *TreeRenderer) execute(w io.Writer, page string, data any) error {
	t, ok := r.pages[page]
	if !ok {
		return fmt.Errorf("no template for page %q", page)
	}
	return t.ExecuteTemplate(w, "layout", data)
}
