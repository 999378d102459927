// Package handlers provides HTTP request handlers for the gallery server.
//
// It includes handlers for:
//   - Deep Zoom manifests and tile resolution
//   - Blob streaming for tiles and derivatives
//   - Pyramid lifecycle operations consumed by the CRUD layer
//   - Health checks and version information
package handlers
