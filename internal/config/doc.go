// Package config provides configuration parsing for tabdeck.
//
// The configuration is stored in tabdeck.yaml. This package handles
// loading, saving and validating it. The server saves the configuration
// back on shutdown, so settings changed at runtime survive a restart.
//
// # Configuration File Structure
//
//	showHomeOnStartup: true
//	server:
//	  address: localhost:7420
//	log:
//	  level: info
//	  format: text
//	session:
//	  path: .tabdeck/session.db
//	  restore: true
//	watch:
//	  enabled: true
//	s3:
//	  region: eu-west-1
//	  endpoint: http://localhost:9000
//	  pathStyle: true
//	  maxSize: 10485760
//	metrics:
//	  namespace: tabdeck
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    return err
//	}
//	logger := cfg.Logger(os.Stderr)
package config
