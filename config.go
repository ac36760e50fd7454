package ledgerxgo

type Config struct {
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	Snapshot struct {
		// Path of the CSV snapshot; DefaultSnapshotPath when empty.
		Path string `yaml:"path"`
	} `yaml:"snapshot"`
	Limits struct {
		InFlight         int64 `yaml:"in_flight"`
		AcquireTimeoutMS int   `yaml:"acquire_timeout_ms"`
	} `yaml:"limits"`
}
