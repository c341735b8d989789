// Package handlers provides HTTP request handlers for the SKU renamer API.
//
// It includes handlers for:
//   - Batch state, SKU entry and validation
//   - Image upload, previews and descriptor assignment
//   - Archive export and optional publishing to object storage
//   - Health checks and build information
package handlers
