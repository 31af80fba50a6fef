package config

// Version is injected at build time via ldflags:
//
//	go build -ldflags "-X 'github.com/mirrorbot/mirrorbot/internal/config.Version=v1.2.3'"
var Version = "dev"
