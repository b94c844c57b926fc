package store

// Run is one encoding run over a crate.
type Run struct {
	ID             string
	Crate          string
	EncoderVersion string
	IVLVersion     string

	// Options records the encoder options the run used.
	Options map[string]any

	Procedures int
	Succeeded  int
	Failed     int
	Finished   bool
}

// Method is one encoded method as produced by a run.
type Method struct {
	// ID is the content address from canon.MethodID.
	ID       string
	Def      string
	BodyHash string
	Text     string

	// Seq is the logical completion order within the run.
	Seq int64
}

// EncodeError is one procedure that failed to encode.
type EncodeError struct {
	// ID is the content address from canon.ErrorID.
	ID       string
	RunID    string
	Seq      int64
	Def      string
	Class    string
	Code     string
	Message  string
	Location string
}
