// Package config provides configuration parsing for pagekit projects.
//
// The configuration is stored in pagekit.json at the project root.
// This package handles loading, saving, and validating configuration.
//
// # Configuration File Structure
//
//	{
//	  "name": "my-site",
//	  "mode": "ssr",
//	  "pages": {
//	    "dir": "pages",
//	    "ext": ".html"
//	  },
//	  "static": {
//	    "dir": "public",
//	    "prefix": "/assets"
//	  },
//	  "server": {
//	    "host": "localhost",
//	    "port": 3000
//	  },
//	  "bridge": {
//	    "prefix": "/api",
//	    "output": "src/functions.ts"
//	  },
//	  "dev": {
//	    "hotReload": true,
//	    "debounce": "100ms"
//	  },
//	  "metrics": {
//	    "enabled": true,
//	    "path": "/metrics"
//	  }
//	}
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Address:", cfg.Address())
package config
