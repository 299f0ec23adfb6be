package codec

// InspectReport is the diagnostic result of Inspect: everything that can
// be learned about a blob without committing to a successful Thaw,
// per spec.md §6.2's inspect function.
type InspectReport struct {
	HeaderPresent  bool
	Magic          string
	MetaByte       byte
	MetaRecognized bool
	Compressor     string
	Encryptor      string
	PayloadOffset  int
	PayloadLength  int
	ThawSucceeded  bool
	ThawError      error
	Value          any
}

// Inspect reports header presence and metadata, payload boundaries, and
// whether a full Thaw of data would succeed, without requiring the caller
// to already know which options would work.
func Inspect(data []byte, opts ...Option) InspectReport {
	var report InspectReport

	if len(data) >= 4 && data[0] == headerMagic[0] && data[1] == headerMagic[1] && data[2] == headerMagic[2] {
		report.HeaderPresent = true
		report.Magic = string(headerMagic[:])
		report.MetaByte = data[3]
		if int(report.MetaByte) < len(metaTable) {
			report.MetaRecognized = true
			row := metaTable[report.MetaByte]
			report.Compressor = row.compressor
			report.Encryptor = row.encryptor
		}
		report.PayloadOffset = 4
		report.PayloadLength = len(data) - 4
	} else {
		report.PayloadOffset = 0
		report.PayloadLength = len(data)
	}

	v, err := Thaw(data, opts...)
	report.ThawSucceeded = err == nil
	report.ThawError = err
	report.Value = v
	return report
}
