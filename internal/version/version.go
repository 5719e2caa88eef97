package version

// Version is overridden at link time with -ldflags "-X matchchains/internal/version.Version=...".
var Version = "dev"
