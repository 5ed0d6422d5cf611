// File: api/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Package api defines the stable contracts and error taxonomy of the
// hioload-jobs scheduler. Subsystems that submit work (renderers, asset
// loaders, pollers) should depend on this package rather than on the
// concrete scheduler implementation.
package api
