package main

// Flag names for Viper binding
const (
	// Global flags
	FlagVerbose    = "verbose"
	FlagConfig     = "config"
	FlagBackendURL = "backend-url"
	FlagTimeout    = "timeout"

	// Explore command flags
	FlagChatEnabled = "chat-enabled"

	// Export command flags
	FlagOutput = "output"
	FlagWidth  = "width"
	FlagHeight = "height"
	FlagTitle  = "title"
)
