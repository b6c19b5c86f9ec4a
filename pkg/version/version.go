// Package version provides sxc version information.
package version

// Version is the current sxc version.
const Version = "0.1.0"
