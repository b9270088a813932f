package belenios

// These variables will be linked in at build time
// and are to do with the build/source
var (
	BuildDate string
	Commit    string
	Version   string = "dev"
)

// ProtocolVersion is the Belenios data format these types follow.
var ProtocolVersion = "1.0"
