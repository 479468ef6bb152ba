package tandem

// Version is the release of the module, overridden at build time with
// -ldflags "-X github.com/aretw0/tandem.Version=...".
var Version = "v0.1.0-dev"
