// Package config defines configuration for the gofile-dl CLI.
//
// Configuration can be provided via:
//   - Command-line flags
//   - Environment variables (GF_ prefix)
//   - YAML configuration file
//
// GF_DOWNLOADDIR and GF_USERAGENT keep the names the original tool used,
// so existing environments keep working.
//
// # Structure
//
//	type Config struct {
//	    URL         string
//	    Password    string
//	    DownloadDir string
//	    UserAgent   string
//	    Workers     int
//	    ChunkSize   int64
//	    Sequential  bool
//	    Delay       time.Duration
//	}
package config
