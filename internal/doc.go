// Package internal contains the core implementation packages for thematic.
//
// This package follows Go's internal package convention, making these
// packages unavailable for import by external modules while providing
// all the core functionality for the thematic CLI tool.
//
// # Package Organization
//
// The internal packages are organized by functional domain:
//
//   - resource: path-addressed node store, two-root overlay and typed adaptation
//   - model: typed projections of component types, views, variations,
//     frameworks, themes and vendor libraries
//   - resolver: component type, view and variation resolution with overlay
//     and supertype fallback
//   - framework: ui framework, version, theme and vendor library catalog
//   - pagecontext: effective framework of a render request
//   - scripts: script path resolution behind a wholesale-invalidated cache
//   - compile: aggregation of compiled html, css and js in precedence order
//   - build: compiled-output cache, manifest, memory front and purger
//   - render: variation class decoration of rendered markup
//   - watcher: file system monitoring with debouncing
//   - services: the engine wiring every package over one store
//   - config, errors, logging, version: ambient support
//
// # Data Flow
//
// A render request resolves a component instance's type, the effective ui
// framework of its page and finally a script path, consulting the script
// cache first. Independently the build package walks every framework,
// vendor library and theme and persists their aggregated output under the
// cache root. Store changes outside the cache root purge every cache and
// trigger a rebuild.
package internal
