package tablebot

// Version is the library version, substituted by the release pipeline.
var Version = "0.1.0"
