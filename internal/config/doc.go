// Package config loads consolenav configuration.
//
// Configuration lives in consolenav.json, consolenav.yaml or consolenav.yml.
// Every field is optional; omitted fields take the defaults shown below.
//
//	{
//	  "server": {
//	    "address": ":8080",
//	    "readTimeout": "60s",
//	    "heartbeatInterval": "30s",
//	    "navigateTimeout": "5s"
//	  },
//	  "navigation": {
//	    "maxRedirects": 10,
//	    "fallback": "/",
//	    "cacheSize": 512
//	  },
//	  "log": {"level": "info", "format": "text"},
//	  "metrics": {"enabled": true, "namespace": "consolenav"},
//	  "export": {"output": "dist/routes.json", "bucket": "", "key": "routes.json"}
//	}
//
// After loading, CONSOLENAV_* environment variables override file values,
// for example CONSOLENAV_ADDRESS, CONSOLENAV_LOG_LEVEL and
// CONSOLENAV_EXPORT_BUCKET. See Config.ApplyEnv.
package config
