package configuration

import "time"

type Configuration struct {
	HttpAddr          string        `usage:"HTTP address"`
	Dir               string        `usage:"data directory, one journal per table"`
	FlushInterval     time.Duration `usage:"how often journals are synced to disk, 0 syncs only on close"`
	ApiKey            string        `usage:"required X-Api-Key header, empty disables authentication"`
	ApiSecret         string        `usage:"required X-Api-Secret header"`
	EnableCompression bool          `usage:"gzip responses when the client accepts it"`
	Version           bool          `usage:"show version and exit"`
	ShowBanner        bool          `usage:"show big banner"`
	ShowConfig        bool          `usage:"print config"`
}

func Default() Configuration {
	return Configuration{
		HttpAddr:          "127.0.0.1:8080",
		Dir:               "data",
		FlushInterval:     time.Second,
		EnableCompression: true,
		ShowBanner:        true,
	}
}
