package domain

// BatchStatus tracks the lifecycle of a single batch conversion run.
type BatchStatus string

const (
	BatchStatusIdle       BatchStatus = "idle"
	BatchStatusPreparing  BatchStatus = "preparing"
	BatchStatusConverting BatchStatus = "converting"
	BatchStatusDone       BatchStatus = "done"
	BatchStatusFailed     BatchStatus = "failed"
	BatchStatusCancelled  BatchStatus = "cancelled"
)

// Settings contains user-selectable runtime configuration.
type Settings struct {
	OutputDir    string  `json:"outputDir"`
	OutputFormat string  `json:"outputFormat"`
	Bitrate      string  `json:"bitrate"`
	SampleRate   int     `json:"sampleRate"`
	Channels     int     `json:"channels"`
	GainDB       float64 `json:"gainDb"`
	Workers      int     `json:"workers"`
	KeepHistory  bool    `json:"keepHistory"`
	MaxHistory   int     `json:"maxHistory"`
}

// Batch stores the current batch identity, lifecycle status, and totals.
type Batch struct {
	ID        string      `json:"id"`
	Status    BatchStatus `json:"status"`
	Total     int         `json:"total"`
	Succeeded int         `json:"succeeded"`
	Failed    int         `json:"failed"`
}

// FileInfo describes one candidate input file for the file list UI.
type FileInfo struct {
	Path       string  `json:"path"`
	Name       string  `json:"name"`
	Format     string  `json:"format"`
	SizeBytes  int64   `json:"sizeBytes"`
	SizeLabel  string  `json:"sizeLabel"`
	SampleRate int     `json:"sampleRate,omitempty"`
	Channels   int     `json:"channels,omitempty"`
	Seconds    float64 `json:"seconds,omitempty"`
}

// Preset is a named bundle of conversion parameters selectable in the UI.
type Preset struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	OutputFormat string  `json:"outputFormat"`
	Bitrate      string  `json:"bitrate,omitempty"`
	SampleRate   int     `json:"sampleRate,omitempty"`
	Channels     int     `json:"channels,omitempty"`
	GainDB       float64 `json:"gainDb,omitempty"`
}
