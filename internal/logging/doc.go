// Package logging provides the leveled logger shared by the sku-renamer
// service and CLI.
//
// It supports the following log levels:
//   - DEBUG: Verbose debugging information (segment scans, decode attempts)
//   - INFO: General operational messages
//   - WARN: Degraded results such as placeholder previews or rejected files
//   - ERROR: Error conditions
//   - FATAL: Fatal errors that terminate the application
//
// The level comes from the DEBUG or LOG_LEVEL environment variables and can be
// overridden at runtime with SetLevel (the CLI does this for --verbose).
package logging
