// Package version holds the application version, set at build time with
// -ldflags "-X github.com/ndewijer/Energy-Portfolio-Cashflow-Backend/internal/version.Version=x.y.z".
package version

// Version is the running application version.
var Version = "dev"
