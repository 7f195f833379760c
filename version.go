package fetchkit

// Version is the current fetchkit release version.
const Version = "0.1.0"
