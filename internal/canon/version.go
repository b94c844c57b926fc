package canon

// Version constants recorded with every encoding run.
const (
	// IVLVersion is the version of the printed IVL format.
	IVLVersion = "1"

	// EncoderVersion is the prusti-encode version.
	EncoderVersion = "0.1.0"
)
