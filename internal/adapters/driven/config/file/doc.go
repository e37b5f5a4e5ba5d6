// Package file persists folio settings under the user's config directory
// (~/.folio by default). Settings live in config.toml as nested tables; the
// store flattens them to dotted keys such as "viewer.page_gap".
package file
