/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package api

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed web
var webAssets embed.FS

// setupStaticRoutes serves the embedded dashboard at the root. Registered
// last so it never shadows /api or /ws.
func (s *APIServer) setupStaticRoutes() {
	sub, err := fs.Sub(webAssets, "web")
	if err != nil {
		// The embed is part of the binary; a missing subdirectory is a
		// build defect, not a runtime condition.
		panic(err)
	}

	s.router.PathPrefix("/").Handler(http.FileServer(http.FS(sub)))
}
