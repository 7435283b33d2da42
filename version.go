package gss

// Version is stamped at build time with -ldflags "-X github.com/aretw0/gss.Version=...".
var Version = "dev"
