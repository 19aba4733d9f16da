package internal

// Version is the faunareel release, overridable at build time with
// -ldflags "-X codeberg.org/okrause/faunareel/internal.Version=...".
var Version = "0.1.0"
